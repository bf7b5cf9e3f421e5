package prover

import (
	"math/big"
	"testing"

	"github.com/solisp-lang/solisp/verification/symbolic"
	"github.com/solisp-lang/solisp/verification/vc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// condition builds a minimal verification condition for one property under the provided
// assumptions.
func condition(category vc.Category, property vc.Predicate, assumptions ...vc.Predicate) *vc.VerificationCondition {
	return vc.NewVerificationCondition(string(category)+"-0001", category, "test obligation", nil, property, assumptions, "assumption")
}

// TestLiteralBoundsDisproved ensures a constant out-of-bounds index is disproved with a
// counterexample naming both evaluated sides.
func TestLiteralBoundsDisproved(t *testing.T) {
	env := symbolic.NewEnvironment()
	env.DeclareArray("arr", 10)
	prover := NewProver(env)

	result := prover.Prove(condition(vc.CategoryArrayBounds,
		vc.NewComparison(vc.CmpLt, vc.Int64Term(15), vc.ArrayLenTerm("arr"))))

	require.True(t, result.Disproved())
	assert.Contains(t, result.Counterexample, "15")
	assert.Contains(t, result.Counterexample, "10")
}

// TestLiteralBoundsProved ensures a constant in-bounds index is proved by arithmetic.
func TestLiteralBoundsProved(t *testing.T) {
	env := symbolic.NewEnvironment()
	env.DeclareArray("arr", 10)
	prover := NewProver(env)

	result := prover.Prove(condition(vc.CategoryArrayBounds,
		vc.NewComparison(vc.CmpLt, vc.Int64Term(3), vc.ArrayLenTerm("arr"))))

	assert.True(t, result.Proved())
}

// TestPathConditionProvesDivisor ensures a guard assumption narrows the divisor enough to
// prove it non-zero.
func TestPathConditionProvesDivisor(t *testing.T) {
	prover := NewProver(nil)

	result := prover.Prove(condition(vc.CategoryDivisionByZero,
		vc.NewComparison(vc.CmpNeq, vc.VarTerm("y"), vc.Int64Term(0)),
		vc.NewComparison(vc.CmpGt, vc.VarTerm("y"), vc.Int64Term(0))))

	assert.True(t, result.Proved(), "expected proved, got %s: %s", result.Status, result.Reason)
}

// TestUnguardedDivisorUnknown ensures a divisor with no narrowing evidence resolves to
// Unknown with a remedy in the reason.
func TestUnguardedDivisorUnknown(t *testing.T) {
	prover := NewProver(nil)

	result := prover.Prove(condition(vc.CategoryDivisionByZero,
		vc.NewComparison(vc.CmpNeq, vc.VarTerm("y"), vc.Int64Term(0))))

	require.True(t, result.Unknown())
	assert.Contains(t, result.Reason, "guard")
}

// TestStructuralUnderflowProof ensures an underflow obligation over casts is discharged
// by a structurally matching assumption.
func TestStructuralUnderflowProof(t *testing.T) {
	prover := NewProver(nil)

	// (>= balance amount) established by a guard proves balance.toNat ≥ amount.toNat.
	result := prover.Prove(condition(vc.CategoryIntegerUnderflow,
		vc.NewComparison(vc.CmpGeq, vc.NatCastTerm(vc.VarTerm("balance")), vc.NatCastTerm(vc.VarTerm("amount"))),
		vc.NewComparison(vc.CmpGeq, vc.VarTerm("balance"), vc.VarTerm("amount"))))

	assert.True(t, result.Proved(), "expected proved, got %s: %s", result.Status, result.Reason)
}

// TestStrongerAssumptionEntails ensures a strictly stronger assumption discharges a
// weaker obligation.
func TestStrongerAssumptionEntails(t *testing.T) {
	prover := NewProver(nil)

	// x = k entails x ≤ k, and a < b entails a ≠ b.
	result := prover.Prove(condition(vc.CategoryIntegerOverflow,
		vc.NewComparison(vc.CmpLeq, vc.VarTerm("x"), vc.VarTerm("k")),
		vc.NewComparison(vc.CmpEq, vc.VarTerm("x"), vc.VarTerm("k"))))
	assert.True(t, result.Proved())

	result = prover.Prove(condition(vc.CategoryDivisionByZero,
		vc.NewComparison(vc.CmpNeq, vc.VarTerm("a"), vc.VarTerm("b")),
		vc.NewComparison(vc.CmpLt, vc.VarTerm("a"), vc.VarTerm("b"))))
	assert.True(t, result.Proved())
}

// TestConservationCancellation ensures matched debits and credits cancel symbolically,
// proving the aggregate conservation property.
func TestConservationCancellation(t *testing.T) {
	prover := NewProver(nil)

	// ((0 - amount) + amount) = 0: the delta sum of one debit and one matching credit.
	sum := vc.AddTerm(vc.SubTerm(vc.Int64Term(0), vc.VarTerm("amount")), vc.VarTerm("amount"))
	result := prover.Prove(condition(vc.CategoryBalanceConservation,
		vc.NewComparison(vc.CmpEq, sum, vc.Int64Term(0))))

	assert.True(t, result.Proved(), "expected proved, got %s: %s", result.Status, result.Reason)
}

// TestUnbalancedDeltasNotProved ensures a delta sum that does not cancel is not claimed
// proved.
func TestUnbalancedDeltasNotProved(t *testing.T) {
	prover := NewProver(nil)

	sum := vc.AddTerm(vc.SubTerm(vc.Int64Term(0), vc.VarTerm("amount")), vc.VarTerm("fee"))
	result := prover.Prove(condition(vc.CategoryBalanceConservation,
		vc.NewComparison(vc.CmpEq, sum, vc.Int64Term(0))))

	assert.True(t, result.Unknown())
}

// TestFactDischarge ensures protocol facts are proved exactly when established on the
// path, with a category-specific remedy otherwise.
func TestFactDischarge(t *testing.T) {
	prover := NewProver(nil)

	established := prover.Prove(condition(vc.CategorySignerCheck,
		vc.NewFact("account_is_signer", "payer"),
		vc.NewFact("account_is_signer", "payer")))
	assert.True(t, established.Proved())

	missing := prover.Prove(condition(vc.CategorySignerCheck,
		vc.NewFact("account_is_signer", "payer")))
	require.True(t, missing.Unknown())
	assert.Contains(t, missing.Reason, "assert-signer")

	// A fact about a different account does not discharge the obligation.
	wrongAccount := prover.Prove(condition(vc.CategorySignerCheck,
		vc.NewFact("account_is_signer", "payer"),
		vc.NewFact("account_is_signer", "vault")))
	assert.True(t, wrongAccount.Unknown())
}

// TestAdvisoryDispatch ensures advisory categories always resolve to Advisory carrying
// the description.
func TestAdvisoryDispatch(t *testing.T) {
	prover := NewProver(nil)

	result := prover.Prove(vc.NewVerificationCondition("flash-loan-0001", vc.CategoryFlashLoan,
		"balance-sensitive logic inside a borrow window", nil, vc.NewFact("advisory", "flash-borrow"), nil, "advisory"))

	require.True(t, result.Advisory())
	assert.Contains(t, result.Warning, "borrow window")
}

// TestConstructionResolvedDispatch ensures statically detected violations resolve to
// Disproved without consulting the environment.
func TestConstructionResolvedDispatch(t *testing.T) {
	prover := NewProver(nil)

	result := prover.Prove(vc.NewVerificationCondition("double-free-detected-0001", vc.CategoryDoubleFreeDetected,
		"account 'vault' is closed twice on the same path", nil, vc.NewFact("closed_once", "vault"), nil, "decide"))

	require.True(t, result.Disproved())
	assert.Contains(t, result.Counterexample, "vault")
}

// TestDeclaredArrayNonNull ensures null obligations over declared arrays are discharged
// by construction.
func TestDeclaredArrayNonNull(t *testing.T) {
	env := symbolic.NewEnvironment()
	env.DeclareArray("arr", 4)
	prover := NewProver(env)

	result := prover.Prove(condition(vc.CategoryNullCheck,
		vc.NewComparison(vc.CmpNeq, vc.VarTerm("arr"), vc.VarTerm("none"))))
	assert.True(t, result.Proved())

	// An undeclared object has no such shortcut.
	result = prover.Prove(condition(vc.CategoryNullCheck,
		vc.NewComparison(vc.CmpNeq, vc.VarTerm("opt"), vc.VarTerm("none"))))
	assert.True(t, result.Unknown())
}

// TestConjunctionAndNegation ensures compound properties combine their operands'
// verdicts.
func TestConjunctionAndNegation(t *testing.T) {
	prover := NewProver(nil)

	proved := vc.NewComparison(vc.CmpLt, vc.Int64Term(1), vc.Int64Term(2))
	refuted := vc.NewComparison(vc.CmpLt, vc.Int64Term(2), vc.Int64Term(1))
	undecided := vc.NewComparison(vc.CmpLt, vc.VarTerm("x"), vc.Int64Term(2))

	assert.True(t, prover.Prove(condition(vc.CategoryArrayBounds, vc.NewConjunction(proved, proved))).Proved())
	assert.True(t, prover.Prove(condition(vc.CategoryArrayBounds, vc.NewConjunction(proved, refuted))).Disproved())
	assert.True(t, prover.Prove(condition(vc.CategoryArrayBounds, vc.NewConjunction(proved, undecided))).Unknown())

	assert.True(t, prover.Prove(condition(vc.CategoryArrayBounds, vc.NewNegation(refuted))).Proved())
	assert.True(t, prover.Prove(condition(vc.CategoryArrayBounds, vc.NewNegation(proved))).Disproved())
	assert.True(t, prover.Prove(condition(vc.CategoryArrayBounds, vc.NewNegation(undecided))).Unknown())
}

// TestAtomProperties ensures trivial atoms decide themselves and opaque atoms require a
// verbatim assumption.
func TestAtomProperties(t *testing.T) {
	prover := NewProver(nil)

	assert.True(t, prover.Prove(condition(vc.CategoryRefinementType, vc.NewAtom("True"))).Proved())
	assert.True(t, prover.Prove(condition(vc.CategoryRefinementType, vc.NewAtom("False"))).Disproved())
	assert.True(t, prover.Prove(condition(vc.CategoryRefinementType, vc.NewAtom("(custom-check x)"))).Unknown())
	assert.True(t, prover.Prove(condition(vc.CategoryRefinementType,
		vc.NewAtom("(custom-check x)"), vc.NewAtom("(custom-check x)"))).Proved())
}

// TestProveDoesNotMutateEnvironment ensures assumptions applied during one Prove call
// never leak into the Prover's base environment.
func TestProveDoesNotMutateEnvironment(t *testing.T) {
	env := symbolic.NewEnvironment()
	prover := NewProver(env)

	prover.Prove(condition(vc.CategoryDivisionByZero,
		vc.NewComparison(vc.CmpNeq, vc.VarTerm("y"), vc.Int64Term(0)),
		vc.NewComparison(vc.CmpGt, vc.VarTerm("y"), vc.Int64Term(0))))

	_, tracked := env.Get("y")
	assert.False(t, tracked)
	assert.Empty(t, env.PathConditions())
}

// TestNegatedAssumptionNarrows ensures a negated comparison assumption is folded into the
// complementary path condition.
func TestNegatedAssumptionNarrows(t *testing.T) {
	prover := NewProver(nil)

	// ¬(y = 0) narrows y to non-zero, proving the divisor obligation.
	result := prover.Prove(condition(vc.CategoryDivisionByZero,
		vc.NewComparison(vc.CmpNeq, vc.VarTerm("y"), vc.Int64Term(0)),
		vc.NewNegation(vc.NewComparison(vc.CmpEq, vc.VarTerm("y"), vc.Int64Term(0)))))

	assert.True(t, result.Proved(), "expected proved, got %s: %s", result.Status, result.Reason)
}

// TestConstantEnvironmentDecides ensures declared constants flow through the linear
// reduction.
func TestConstantEnvironmentDecides(t *testing.T) {
	env := symbolic.NewEnvironment()
	env.Set("n", symbolic.NewInt64Value(8))
	prover := NewProver(env)

	result := prover.Prove(condition(vc.CategoryDivisionByZero,
		vc.NewComparison(vc.CmpNeq, vc.VarTerm("n"), vc.Int64Term(0))))
	assert.True(t, result.Proved())

	env.Set("z", symbolic.NewInt64Value(0))
	result = NewProver(env).Prove(condition(vc.CategoryDivisionByZero,
		vc.NewComparison(vc.CmpNeq, vc.VarTerm("z"), vc.Int64Term(0))))
	assert.True(t, result.Disproved())
}

// TestRangeValueDecides ensures interval values decide single-variable comparisons.
func TestRangeValueDecides(t *testing.T) {
	env := symbolic.NewEnvironment()
	env.Set("i", symbolic.NewRangeValue(big.NewInt(0), big.NewInt(9)))
	prover := NewProver(env)

	inBounds := prover.Prove(condition(vc.CategoryArrayBounds,
		vc.NewComparison(vc.CmpLt, vc.VarTerm("i"), vc.Int64Term(10))))
	assert.True(t, inBounds.Proved())

	tooTight := prover.Prove(condition(vc.CategoryArrayBounds,
		vc.NewComparison(vc.CmpLt, vc.VarTerm("i"), vc.Int64Term(9))))
	assert.True(t, tooTight.Unknown())
}
