package prover

import (
	"math/big"

	"github.com/solisp-lang/solisp/verification/symbolic"
	"github.com/solisp-lang/solisp/verification/vc"
)

// valueDecides checks whether a symbolic value alone settles "variable op bound". Exactly
// one of the results may be true; both false means the value carries no decisive
// evidence.
func valueDecides(value *symbolic.Value, op vc.CmpOp, bound *big.Int) (proved bool, disproved bool) {
	boundPlusOne := new(big.Int).Add(bound, big.NewInt(1))

	switch value.Kind {
	case symbolic.ValueConstant:
		if op.Holds(value.Constant, bound) {
			return true, false
		}
		return false, true

	case symbolic.ValueRange, symbolic.ValueSymbol:
		switch op {
		case vc.CmpLt:
			return value.EntailsLt(bound), value.EntailsGeq(bound)
		case vc.CmpLeq:
			return value.EntailsLt(boundPlusOne), value.EntailsGeq(boundPlusOne)
		case vc.CmpGt:
			return value.EntailsGeq(boundPlusOne), value.EntailsLt(boundPlusOne)
		case vc.CmpGeq:
			return value.EntailsGeq(bound), value.EntailsLt(bound)
		case vc.CmpEq:
			// Equality over a non-constant value is proved only by a pinned range and
			// disproved whenever the bound falls outside what the value allows.
			if value.Kind == symbolic.ValueRange && value.Lower.Cmp(bound) == 0 && value.Upper.Cmp(bound) == 0 {
				return true, false
			}
			if value.EntailsLt(bound) || value.EntailsGeq(boundPlusOne) {
				return false, true
			}
			if bound.Sign() == 0 && value.EntailsNonZero() {
				return false, true
			}
			return false, false
		case vc.CmpNeq:
			if bound.Sign() == 0 && value.EntailsNonZero() {
				return true, false
			}
			if value.EntailsLt(bound) || value.EntailsGeq(boundPlusOne) {
				return true, false
			}
			if value.Kind == symbolic.ValueRange && value.Lower.Cmp(bound) == 0 && value.Upper.Cmp(bound) == 0 {
				return false, true
			}
			return false, false
		}
	}
	return false, false
}

// applyComparisonAssumption folds an assumed comparison into the environment as path
// conditions. Comparisons outside the variable-against-constant and variable-against-
// variable shapes narrow nothing and are left to structural matching.
func applyComparisonAssumption(env *symbolic.Environment, cmp *vc.Comparison) {
	lhs := stripNatCast(cmp.Lhs)
	rhs := stripNatCast(cmp.Rhs)
	op := cmp.Op

	// Normalize so the variable, when there is exactly one, sits on the left.
	if lhs.Kind == vc.TermConst && rhs.Kind == vc.TermVar {
		lhs, rhs = rhs, lhs
		op = reverseOp(op)
	}

	switch {
	case lhs.Kind == vc.TermVar && rhs.Kind == vc.TermConst:
		pushVariableConstant(env, lhs.Name, op, rhs.Value)

	case lhs.Kind == vc.TermVar && rhs.Kind == vc.TermVar:
		switch op {
		case vc.CmpGeq, vc.CmpGt:
			// A strict ordering is recorded as its non-strict weakening; the loss is
			// conservative.
			env.PushPathCondition(lhs.Name, symbolic.GeqVariablePathConstraint(rhs.Name))
		case vc.CmpLt:
			env.PushPathCondition(lhs.Name, symbolic.LtVariablePathConstraint(rhs.Name))
		case vc.CmpLeq:
			env.PushPathCondition(rhs.Name, symbolic.GeqVariablePathConstraint(lhs.Name))
		}
	}
}

// pushVariableConstant records "variable op constant" as the matching path constraint.
func pushVariableConstant(env *symbolic.Environment, variable string, op vc.CmpOp, constant *big.Int) {
	switch op {
	case vc.CmpGt:
		env.PushPathCondition(variable, symbolic.GeqPathConstraint(new(big.Int).Add(constant, big.NewInt(1))))
	case vc.CmpGeq:
		env.PushPathCondition(variable, symbolic.GeqPathConstraint(constant))
	case vc.CmpLt:
		env.PushPathCondition(variable, symbolic.LtPathConstraint(constant))
	case vc.CmpLeq:
		env.PushPathCondition(variable, symbolic.LtPathConstraint(new(big.Int).Add(constant, big.NewInt(1))))
	case vc.CmpEq:
		env.PushPathCondition(variable, symbolic.EqPathConstraint(constant))
	case vc.CmpNeq:
		if constant.Sign() == 0 {
			env.PushPathCondition(variable, symbolic.NonZeroPathConstraint())
		} else {
			env.PushPathCondition(variable, symbolic.NeqPathConstraint(constant))
		}
	}
}

// assumptionEntails scans the in-scope assumptions for a comparison that structurally
// entails the target and returns its rendering when found.
func assumptionEntails(assumptions []vc.Predicate, target *vc.Comparison) (string, bool) {
	targetLhs := stripNatCast(target.Lhs)
	targetRhs := stripNatCast(target.Rhs)

	for _, comparison := range flattenComparisons(assumptions) {
		lhs := stripNatCast(comparison.Lhs)
		rhs := stripNatCast(comparison.Rhs)

		if lhs.Equal(targetLhs) && rhs.Equal(targetRhs) && opEntails(comparison.Op, target.Op) {
			return comparison.Render(), true
		}
		// The same claim with sides exchanged.
		if lhs.Equal(targetRhs) && rhs.Equal(targetLhs) && opEntails(reverseOp(comparison.Op), target.Op) {
			return comparison.Render(), true
		}
	}
	return "", false
}

// flattenComparisons extracts every comparison reachable in the assumption list, folding
// negations into their complementary operators and walking into conjunctions.
func flattenComparisons(assumptions []vc.Predicate) []*vc.Comparison {
	var comparisons []*vc.Comparison
	for _, assumption := range assumptions {
		switch assumption := assumption.(type) {
		case *vc.Comparison:
			comparisons = append(comparisons, assumption)
		case *vc.Negation:
			if cmp, ok := assumption.Operand.(*vc.Comparison); ok {
				comparisons = append(comparisons, vc.NewComparison(cmp.Op.Negated(), cmp.Lhs, cmp.Rhs))
			}
		case *vc.Conjunction:
			comparisons = append(comparisons, flattenComparisons(assumption.Operands)...)
		}
	}
	return comparisons
}

// opEntails indicates whether "a assumed b" implies "a target b" over identical sides.
func opEntails(assumed vc.CmpOp, target vc.CmpOp) bool {
	if assumed == target {
		return true
	}
	switch assumed {
	case vc.CmpEq:
		return target == vc.CmpLeq || target == vc.CmpGeq
	case vc.CmpLt:
		return target == vc.CmpLeq || target == vc.CmpNeq
	case vc.CmpGt:
		return target == vc.CmpGeq || target == vc.CmpNeq
	default:
		return false
	}
}

// stripNatCast removes widening casts from a term so structural matching sees through
// them.
func stripNatCast(term *vc.Term) *vc.Term {
	for term.Kind == vc.TermNatCast {
		term = term.Inner
	}
	return term
}
