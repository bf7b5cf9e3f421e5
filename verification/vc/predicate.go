package vc

import (
	"fmt"
	"math/big"
	"strings"
)

// TermKind describes the shape of a Term.
type TermKind int

const (
	// TermConst describes an integer constant.
	TermConst TermKind = iota
	// TermVar describes a reference to a named variable.
	TermVar
	// TermArrayLen describes the declared size of a named array, rendered "name.size".
	TermArrayLen
	// TermNatCast describes a widening of a term into the naturals, rendered "t.toNat".
	TermNatCast
	// TermAdd describes the sum of two terms.
	TermAdd
	// TermSub describes the difference of two terms.
	TermSub
	// TermMul describes the product of two terms.
	TermMul
	// TermMod describes the remainder of dividing one term by another.
	TermMod
)

// Term describes one side of a comparison within a Predicate. Terms are immutable once
// constructed; operations that would modify a term build a new one.
type Term struct {
	// Kind describes the shape of the term.
	Kind TermKind

	// Value holds the constant for TermConst terms.
	Value *big.Int

	// Name holds the referenced name for TermVar and TermArrayLen terms.
	Name string

	// Left and Right hold the operands of TermAdd, TermSub, and TermMul terms.
	Left  *Term
	Right *Term

	// Inner holds the operand of TermNatCast terms.
	Inner *Term
}

// ConstTerm returns a constant term for the provided big integer. The value is copied so
// later mutation of the argument cannot alter the term.
func ConstTerm(value *big.Int) *Term {
	return &Term{Kind: TermConst, Value: new(big.Int).Set(value)}
}

// Int64Term returns a constant term for the provided int64 value.
func Int64Term(value int64) *Term {
	return &Term{Kind: TermConst, Value: big.NewInt(value)}
}

// VarTerm returns a term referencing the named variable.
func VarTerm(name string) *Term {
	return &Term{Kind: TermVar, Name: name}
}

// ArrayLenTerm returns a term referencing the declared size of the named array.
func ArrayLenTerm(name string) *Term {
	return &Term{Kind: TermArrayLen, Name: name}
}

// NatCastTerm returns a term widening the provided term into the naturals.
func NatCastTerm(inner *Term) *Term {
	return &Term{Kind: TermNatCast, Inner: inner}
}

// AddTerm returns the sum of two terms.
func AddTerm(left *Term, right *Term) *Term {
	return &Term{Kind: TermAdd, Left: left, Right: right}
}

// SubTerm returns the difference of two terms.
func SubTerm(left *Term, right *Term) *Term {
	return &Term{Kind: TermSub, Left: left, Right: right}
}

// MulTerm returns the product of two terms.
func MulTerm(left *Term, right *Term) *Term {
	return &Term{Kind: TermMul, Left: left, Right: right}
}

// ModTerm returns the remainder of dividing the left term by the right term.
func ModTerm(left *Term, right *Term) *Term {
	return &Term{Kind: TermMod, Left: left, Right: right}
}

// Render returns the Lean-style textual form of the term.
func (t *Term) Render() string {
	switch t.Kind {
	case TermConst:
		return t.Value.String()
	case TermVar:
		return t.Name
	case TermArrayLen:
		return t.Name + ".size"
	case TermNatCast:
		return t.Inner.Render() + ".toNat"
	case TermAdd:
		return fmt.Sprintf("(%s + %s)", t.Left.Render(), t.Right.Render())
	case TermSub:
		return fmt.Sprintf("(%s - %s)", t.Left.Render(), t.Right.Render())
	case TermMul:
		return fmt.Sprintf("(%s * %s)", t.Left.Render(), t.Right.Render())
	case TermMod:
		return fmt.Sprintf("(%s %% %s)", t.Left.Render(), t.Right.Render())
	default:
		return "?"
	}
}

// Equal indicates whether two terms are structurally identical.
func (t *Term) Equal(other *Term) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TermConst:
		return t.Value.Cmp(other.Value) == 0
	case TermVar, TermArrayLen:
		return t.Name == other.Name
	case TermNatCast:
		return t.Inner.Equal(other.Inner)
	case TermAdd, TermSub, TermMul, TermMod:
		return t.Left.Equal(other.Left) && t.Right.Equal(other.Right)
	default:
		return false
	}
}

// CmpOp describes a comparison operator within a Comparison predicate.
type CmpOp int

const (
	// CmpEq describes equality.
	CmpEq CmpOp = iota
	// CmpNeq describes inequality.
	CmpNeq
	// CmpLt describes less-than.
	CmpLt
	// CmpLeq describes less-than-or-equal.
	CmpLeq
	// CmpGt describes greater-than.
	CmpGt
	// CmpGeq describes greater-than-or-equal.
	CmpGeq
)

// Render returns the Lean-style spelling of the comparison operator.
func (op CmpOp) Render() string {
	switch op {
	case CmpEq:
		return "="
	case CmpNeq:
		return "≠"
	case CmpLt:
		return "<"
	case CmpLeq:
		return "≤"
	case CmpGt:
		return ">"
	case CmpGeq:
		return "≥"
	default:
		return "?"
	}
}

// Negated returns the complementary comparison operator, so that
// ¬(a op b) ⇔ (a op.Negated() b) over the integers.
func (op CmpOp) Negated() CmpOp {
	switch op {
	case CmpEq:
		return CmpNeq
	case CmpNeq:
		return CmpEq
	case CmpLt:
		return CmpGeq
	case CmpLeq:
		return CmpGt
	case CmpGt:
		return CmpLeq
	case CmpGeq:
		return CmpLt
	default:
		return op
	}
}

// Holds evaluates the comparison over two known integers.
func (op CmpOp) Holds(lhs *big.Int, rhs *big.Int) bool {
	cmp := lhs.Cmp(rhs)
	switch op {
	case CmpEq:
		return cmp == 0
	case CmpNeq:
		return cmp != 0
	case CmpLt:
		return cmp < 0
	case CmpLeq:
		return cmp <= 0
	case CmpGt:
		return cmp > 0
	case CmpGeq:
		return cmp >= 0
	default:
		return false
	}
}

// Predicate describes a claim attached to a VerificationCondition, either as the property
// to prove or as a contextual assumption. Predicates are structured so that the generator
// and the prover share one formula representation; the rendered Lean-style string form is
// kept only for export and diagnostics.
type Predicate interface {
	// Render returns the Lean-style textual form of the predicate.
	Render() string

	predicateNode()
}

// Comparison describes a binary comparison between two terms, e.g. "y ≠ 0" or
// "idx < arr.size".
type Comparison struct {
	// Op describes the comparison operator.
	Op CmpOp

	// Lhs describes the left-hand term.
	Lhs *Term

	// Rhs describes the right-hand term.
	Rhs *Term
}

func (p *Comparison) predicateNode() {}

// Render returns the Lean-style textual form of the comparison.
func (p *Comparison) Render() string {
	return fmt.Sprintf("%s %s %s", p.Lhs.Render(), p.Op.Render(), p.Rhs.Render())
}

// NewComparison returns a comparison predicate over the provided terms.
func NewComparison(op CmpOp, lhs *Term, rhs *Term) *Comparison {
	return &Comparison{Op: op, Lhs: lhs, Rhs: rhs}
}

// Conjunction describes the conjunction of two or more predicates, rendered
// "(p) ∧ (q)".
type Conjunction struct {
	// Operands describes the conjoined predicates, in order.
	Operands []Predicate
}

func (p *Conjunction) predicateNode() {}

// Render returns the Lean-style textual form of the conjunction.
func (p *Conjunction) Render() string {
	parts := make([]string, len(p.Operands))
	for i, operand := range p.Operands {
		parts[i] = "(" + operand.Render() + ")"
	}
	return strings.Join(parts, " ∧ ")
}

// NewConjunction returns the conjunction of the provided predicates.
func NewConjunction(operands ...Predicate) *Conjunction {
	return &Conjunction{Operands: operands}
}

// Negation describes the negation of a predicate, rendered "¬(p)".
type Negation struct {
	// Operand describes the negated predicate.
	Operand Predicate
}

func (p *Negation) predicateNode() {}

// Render returns the Lean-style textual form of the negation.
func (p *Negation) Render() string {
	return "¬(" + p.Operand.Render() + ")"
}

// NewNegation returns the negation of the provided predicate.
func NewNegation(operand Predicate) *Negation {
	return &Negation{Operand: operand}
}

// Fact describes an established protocol-level fact about named objects, e.g.
// "account_is_signer(payer)". Facts are matched by name and arguments, a deliberately
// syntactic proxy for "this was established earlier in the same path".
type Fact struct {
	// Name describes the fact, e.g. "account_is_signer".
	Name string

	// Args describes the object names the fact ranges over.
	Args []string
}

func (p *Fact) predicateNode() {}

// Render returns the textual form of the fact.
func (p *Fact) Render() string {
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(p.Args, ", "))
}

// NewFact returns a fact predicate with the provided name and arguments.
func NewFact(name string, args ...string) *Fact {
	return &Fact{Name: name, Args: args}
}

// Atom describes an opaque predicate carried as free-form text, used for refinement
// predicates and any formula outside the structured grammar. Atoms never entail anything
// on their own; the prover treats unparseable atoms as Unknown evidence.
type Atom struct {
	// Text describes the rendered predicate text.
	Text string
}

func (p *Atom) predicateNode() {}

// Render returns the predicate text.
func (p *Atom) Render() string {
	return p.Text
}

// NewAtom returns an opaque predicate carrying the provided text.
func NewAtom(text string) *Atom {
	return &Atom{Text: text}
}
