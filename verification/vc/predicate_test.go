package vc

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTermRendering ensures terms render in the expected Lean-style spelling.
func TestTermRendering(t *testing.T) {
	assert.EqualValues(t, "42", Int64Term(42).Render())
	assert.EqualValues(t, "balance", VarTerm("balance").Render())
	assert.EqualValues(t, "arr.size", ArrayLenTerm("arr").Render())
	assert.EqualValues(t, "balance.toNat", NatCastTerm(VarTerm("balance")).Render())
	assert.EqualValues(t, "(a + b)", AddTerm(VarTerm("a"), VarTerm("b")).Render())
	assert.EqualValues(t, "(a - 1)", SubTerm(VarTerm("a"), Int64Term(1)).Render())
	assert.EqualValues(t, "(offset % 8)", ModTerm(VarTerm("offset"), Int64Term(8)).Render())
}

// TestPredicateRendering ensures predicates render with the expected comparison and
// connective symbols.
func TestPredicateRendering(t *testing.T) {
	divisor := NewComparison(CmpNeq, VarTerm("y"), Int64Term(0))
	assert.EqualValues(t, "y ≠ 0", divisor.Render())

	bounds := NewComparison(CmpLt, VarTerm("idx"), ArrayLenTerm("arr"))
	assert.EqualValues(t, "idx < arr.size", bounds.Render())

	underflow := NewComparison(CmpGeq, NatCastTerm(VarTerm("a")), NatCastTerm(VarTerm("b")))
	assert.EqualValues(t, "a.toNat ≥ b.toNat", underflow.Render())

	conjunction := NewConjunction(divisor, bounds)
	assert.EqualValues(t, "(y ≠ 0) ∧ (idx < arr.size)", conjunction.Render())

	negation := NewNegation(divisor)
	assert.EqualValues(t, "¬(y ≠ 0)", negation.Render())

	fact := NewFact("account_is_signer", "payer")
	assert.EqualValues(t, "account_is_signer(payer)", fact.Render())
}

// TestCmpOpNegated ensures negation produces the complementary operator for every
// comparison.
func TestCmpOpNegated(t *testing.T) {
	assert.EqualValues(t, CmpNeq, CmpEq.Negated())
	assert.EqualValues(t, CmpEq, CmpNeq.Negated())
	assert.EqualValues(t, CmpGeq, CmpLt.Negated())
	assert.EqualValues(t, CmpGt, CmpLeq.Negated())
	assert.EqualValues(t, CmpLeq, CmpGt.Negated())
	assert.EqualValues(t, CmpLt, CmpGeq.Negated())
}

// TestCmpOpHolds ensures comparison evaluation over known integers matches arithmetic.
func TestCmpOpHolds(t *testing.T) {
	three, five := big.NewInt(3), big.NewInt(5)

	assert.True(t, CmpLt.Holds(three, five))
	assert.False(t, CmpLt.Holds(five, three))
	assert.True(t, CmpGeq.Holds(five, five))
	assert.True(t, CmpNeq.Holds(three, five))
	assert.False(t, CmpEq.Holds(three, five))
}

// TestTermImmutability ensures constant terms copy their value so later mutation of the
// source integer cannot alter the term.
func TestTermImmutability(t *testing.T) {
	value := big.NewInt(10)
	term := ConstTerm(value)
	value.SetInt64(99)

	assert.EqualValues(t, "10", term.Render())
}

// TestConditionSnapshotsAssumptions ensures a condition owns a copy of the assumption
// stack taken at emission time.
func TestConditionSnapshotsAssumptions(t *testing.T) {
	assumptions := []Predicate{NewComparison(CmpGt, VarTerm("y"), Int64Term(0))}
	condition := NewVerificationCondition("division-safety-0001", CategoryDivisionByZero,
		"divisor y is non-zero", nil, NewComparison(CmpNeq, VarTerm("y"), Int64Term(0)), assumptions, "assumption")

	// Mutating the caller's slice must not reach into the emitted condition.
	assumptions[0] = NewAtom("False")
	assert.EqualValues(t, []string{"y > 0"}, condition.AssumptionTexts())
	assert.EqualValues(t, "y ≠ 0", condition.PropertyText())
}
