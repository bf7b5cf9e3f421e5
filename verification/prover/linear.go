package prover

import (
	"math/big"
	"sort"
	"strings"

	"github.com/solisp-lang/solisp/verification/symbolic"
	"github.com/solisp-lang/solisp/verification/vc"
)

var bigZero = big.NewInt(0)

// linearForm describes a term reduced to a constant plus a sum of variable terms with
// integer coefficients. Subtracting two forms cancels matched variables, which is how the
// prover recognizes that opposing balance deltas or identical subterms annihilate.
type linearForm struct {
	// constant describes the constant part of the form.
	constant *big.Int

	// coefficients describes the coefficient of each unresolved variable. Entries are
	// never zero; cancellation deletes them.
	coefficients map[string]*big.Int
}

// newLinearForm returns a form equal to the provided constant.
func newLinearForm(constant *big.Int) *linearForm {
	return &linearForm{
		constant:     new(big.Int).Set(constant),
		coefficients: make(map[string]*big.Int),
	}
}

// variableForm returns a form equal to the named variable.
func variableForm(name string) *linearForm {
	form := newLinearForm(bigZero)
	form.coefficients[name] = big.NewInt(1)
	return form
}

// add returns the sum of two forms.
func (f *linearForm) add(other *linearForm) *linearForm {
	result := newLinearForm(new(big.Int).Add(f.constant, other.constant))
	for name, coefficient := range f.coefficients {
		result.coefficients[name] = new(big.Int).Set(coefficient)
	}
	for name, coefficient := range other.coefficients {
		combined := new(big.Int).Set(coefficient)
		if existing, ok := result.coefficients[name]; ok {
			combined.Add(combined, existing)
		}
		if combined.Sign() == 0 {
			delete(result.coefficients, name)
		} else {
			result.coefficients[name] = combined
		}
	}
	return result
}

// sub returns the difference of two forms.
func (f *linearForm) sub(other *linearForm) *linearForm {
	return f.add(other.scale(big.NewInt(-1)))
}

// scale returns the form multiplied by a constant.
func (f *linearForm) scale(factor *big.Int) *linearForm {
	result := newLinearForm(new(big.Int).Mul(f.constant, factor))
	if factor.Sign() == 0 {
		return result
	}
	for name, coefficient := range f.coefficients {
		result.coefficients[name] = new(big.Int).Mul(coefficient, factor)
	}
	return result
}

// constantValue returns the form's value when it contains no unresolved variables.
func (f *linearForm) constantValue() (*big.Int, bool) {
	if len(f.coefficients) != 0 {
		return nil, false
	}
	return f.constant, true
}

// singleVariableComparison rearranges "form op 0" into "variable op bound" when the form
// contains exactly one variable with coefficient ±1. A negative coefficient reverses the
// comparison's direction.
func (f *linearForm) singleVariableComparison(op vc.CmpOp) (string, vc.CmpOp, *big.Int, bool) {
	if len(f.coefficients) != 1 {
		return "", 0, nil, false
	}
	for name, coefficient := range f.coefficients {
		switch {
		case coefficient.Cmp(big.NewInt(1)) == 0:
			// v + c op 0  ⇔  v op -c
			return name, op, new(big.Int).Neg(f.constant), true
		case coefficient.Cmp(big.NewInt(-1)) == 0:
			// -v + c op 0  ⇔  v reversed(op) c
			return name, reverseOp(op), new(big.Int).Set(f.constant), true
		}
	}
	return "", 0, nil, false
}

// render returns a diagnostic rendering of the form.
func (f *linearForm) render() string {
	if len(f.coefficients) == 0 {
		return f.constant.String()
	}
	names := make([]string, 0, len(f.coefficients))
	for name := range f.coefficients {
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	for i, name := range names {
		if i > 0 {
			builder.WriteString(" + ")
		}
		coefficient := f.coefficients[name]
		if coefficient.Cmp(big.NewInt(1)) != 0 {
			builder.WriteString(coefficient.String())
			builder.WriteString("*")
		}
		builder.WriteString(name)
	}
	if f.constant.Sign() != 0 {
		builder.WriteString(" + ")
		builder.WriteString(f.constant.String())
	}
	return builder.String()
}

// termToLinear reduces a predicate term to a linear form over the environment, resolving
// known constants and declared array sizes along the way. Returns false when the term
// falls outside the linear fragment, e.g. a product of two unresolved variables.
func termToLinear(env *symbolic.Environment, term *vc.Term) (*linearForm, bool) {
	switch term.Kind {
	case vc.TermConst:
		return newLinearForm(term.Value), true

	case vc.TermVar:
		if value, ok := env.Get(term.Name); ok && value.Kind == symbolic.ValueConstant {
			return newLinearForm(value.Constant), true
		}
		return variableForm(term.Name), true

	case vc.TermArrayLen:
		if size, ok := env.ArraySize(term.Name); ok {
			return newLinearForm(big.NewInt(size)), true
		}
		return variableForm(term.Name + ".size"), true

	case vc.TermNatCast:
		// The widening itself is value-preserving over the non-negative integers the
		// language computes with; the cast exists for the export rendering.
		return termToLinear(env, term.Inner)

	case vc.TermAdd:
		left, leftOK := termToLinear(env, term.Left)
		right, rightOK := termToLinear(env, term.Right)
		if !leftOK || !rightOK {
			return nil, false
		}
		return left.add(right), true

	case vc.TermSub:
		left, leftOK := termToLinear(env, term.Left)
		right, rightOK := termToLinear(env, term.Right)
		if !leftOK || !rightOK {
			return nil, false
		}
		return left.sub(right), true

	case vc.TermMul:
		left, leftOK := termToLinear(env, term.Left)
		right, rightOK := termToLinear(env, term.Right)
		if !leftOK || !rightOK {
			return nil, false
		}
		// Multiplication stays linear only when one side is fully resolved.
		if factor, ok := left.constantValue(); ok {
			return right.scale(factor), true
		}
		if factor, ok := right.constantValue(); ok {
			return left.scale(factor), true
		}
		return nil, false

	case vc.TermMod:
		left, leftOK := termToLinear(env, term.Left)
		right, rightOK := termToLinear(env, term.Right)
		if !leftOK || !rightOK {
			return nil, false
		}
		dividend, dividendOK := left.constantValue()
		divisor, divisorOK := right.constantValue()
		if !dividendOK || !divisorOK || divisor.Sign() == 0 {
			return nil, false
		}
		return newLinearForm(new(big.Int).Mod(dividend, divisor)), true

	default:
		return nil, false
	}
}

// reverseOp returns the comparison with its sides exchanged, so that
// (a op b) ⇔ (b reverseOp(op) a).
func reverseOp(op vc.CmpOp) vc.CmpOp {
	switch op {
	case vc.CmpLt:
		return vc.CmpGt
	case vc.CmpLeq:
		return vc.CmpGeq
	case vc.CmpGt:
		return vc.CmpLt
	case vc.CmpGeq:
		return vc.CmpLeq
	default:
		return op
	}
}
