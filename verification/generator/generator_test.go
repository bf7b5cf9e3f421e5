package generator

import (
	"testing"

	"github.com/solisp-lang/solisp/compiler/ast"
	"github.com/solisp-lang/solisp/verification/config"
	"github.com/solisp-lang/solisp/verification/prover"
	"github.com/solisp-lang/solisp/verification/vc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generate runs one generation pass over the provided statements with the provided
// configuration and fails the test on error.
func generate(t *testing.T, properties *config.VerificationProperties, statements ...ast.Statement) []*vc.VerificationCondition {
	conditions, err := NewGenerator(properties).Generate(&ast.Program{Statements: statements})
	require.NoError(t, err)
	return conditions
}

// ofCategory filters conditions down to one category.
func ofCategory(conditions []*vc.VerificationCondition, category vc.Category) []*vc.VerificationCondition {
	var matched []*vc.VerificationCondition
	for _, condition := range conditions {
		if condition.Category == category {
			matched = append(matched, condition)
		}
	}
	return matched
}

// TestDivisionEmitsObligation ensures a division by a non-literal divisor emits exactly
// one divisor-non-zero obligation.
func TestDivisionEmitsObligation(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.LetStatement{Name: "q", Value: &ast.BinaryExpr{
			Op: ast.OpDiv, Left: ast.NewIdentifier("x"), Right: ast.NewIdentifier("y"),
		}},
	)

	divisions := ofCategory(conditions, vc.CategoryDivisionByZero)
	require.Len(t, divisions, 1)
	assert.EqualValues(t, "y ≠ 0", divisions[0].PropertyText())
	assert.Empty(t, divisions[0].Assumptions)
}

// TestLiteralDivisionSkipped ensures fully static division emits nothing, except a
// literal-zero divisor which emits even with every check disabled.
func TestLiteralDivisionSkipped(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.LetStatement{Name: "q", Value: &ast.BinaryExpr{
			Op: ast.OpDiv, Left: ast.NewIntLiteral(10), Right: ast.NewIntLiteral(2),
		}},
	)
	assert.Empty(t, ofCategory(conditions, vc.CategoryDivisionByZero))

	conditions = generate(t, config.None(),
		&ast.LetStatement{Name: "q", Value: &ast.BinaryExpr{
			Op: ast.OpDiv, Left: ast.NewIntLiteral(10), Right: ast.NewIntLiteral(0),
		}},
	)
	divisions := ofCategory(conditions, vc.CategoryDivisionByZero)
	require.Len(t, divisions, 1)
	assert.Contains(t, divisions[0].Description, "always faults")

	// The obligation's property is 0 ≠ 0, so proving it must surface the fault.
	result := prover.NewProver(nil).Prove(divisions[0])
	assert.True(t, result.Disproved())
}

// TestGuardNarrowsFollowingCode ensures a guard's condition is in force as an assumption
// for obligations emitted after it in the same block.
func TestGuardNarrowsFollowingCode(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.GuardStatement{
			Condition: &ast.BinaryExpr{Op: ast.OpGt, Left: ast.NewIdentifier("y"), Right: ast.NewIntLiteral(0)},
			Else:      []ast.Statement{&ast.ReturnStatement{}},
		},
		&ast.LetStatement{Name: "q", Value: &ast.BinaryExpr{
			Op: ast.OpDiv, Left: ast.NewIdentifier("x"), Right: ast.NewIdentifier("y"),
		}},
	)

	divisions := ofCategory(conditions, vc.CategoryDivisionByZero)
	require.Len(t, divisions, 1)
	assert.EqualValues(t, []string{"y > 0"}, divisions[0].AssumptionTexts())
}

// TestBranchAssumptionsDoNotLeak ensures an if branch's condition never reaches
// obligations emitted after the branch.
func TestBranchAssumptionsDoNotLeak(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.IfStatement{
			Condition: &ast.BinaryExpr{Op: ast.OpGt, Left: ast.NewIdentifier("y"), Right: ast.NewIntLiteral(0)},
			Then: []ast.Statement{
				&ast.LetStatement{Name: "a", Value: &ast.BinaryExpr{
					Op: ast.OpDiv, Left: ast.NewIdentifier("x"), Right: ast.NewIdentifier("y"),
				}},
			},
		},
		&ast.LetStatement{Name: "b", Value: &ast.BinaryExpr{
			Op: ast.OpDiv, Left: ast.NewIdentifier("x"), Right: ast.NewIdentifier("y"),
		}},
	)

	divisions := ofCategory(conditions, vc.CategoryDivisionByZero)
	require.Len(t, divisions, 2)
	assert.EqualValues(t, []string{"y > 0"}, divisions[0].AssumptionTexts())
	assert.Empty(t, divisions[1].Assumptions)
}

// TestBranchAccountFactsRollBack ensures a signer check established inside a branch does
// not discharge obligations after the branch.
func TestBranchAccountFactsRollBack(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.IfStatement{
			Condition: ast.NewIdentifier("flag"),
			Then: []ast.Statement{
				&ast.ExpressionStatement{Expr: &ast.CallExpr{
					Callee: "assert-signer", Args: []ast.Expression{ast.NewIdentifier("payer")},
				}},
			},
		},
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: "sub-lamports",
			Args:   []ast.Expression{ast.NewIdentifier("payer"), ast.NewIdentifier("amount")},
		}},
	)

	signers := ofCategory(conditions, vc.CategorySignerCheck)
	require.Len(t, signers, 1)
	assert.Contains(t, signers[0].Description, "payer")
}

// TestFunctionBodyFactsDoNotLeak ensures a signer check established inside a function
// definition does not discharge obligations in the surrounding code, which never runs on
// the body's control-flow path.
func TestFunctionBodyFactsDoNotLeak(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.FunctionStatement{Name: "helper", Body: []ast.Statement{
			&ast.ExpressionStatement{Expr: &ast.CallExpr{
				Callee: "assert-signer", Args: []ast.Expression{ast.NewIdentifier("payer")},
			}},
		}},
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: "sub-lamports",
			Args:   []ast.Expression{ast.NewIdentifier("payer"), ast.NewIdentifier("amount")},
		}},
	)

	signers := ofCategory(conditions, vc.CategorySignerCheck)
	require.Len(t, signers, 1)
	assert.Contains(t, signers[0].Description, "payer")
}

// TestVerificationCallDischargesLaterObligation ensures an assert on the same path
// suppresses the keyword obligation it establishes.
func TestVerificationCallDischargesLaterObligation(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: "assert-signer", Args: []ast.Expression{ast.NewIdentifier("payer")},
		}},
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: "assert-writable", Args: []ast.Expression{ast.NewIdentifier("payer")},
		}},
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: "sub-lamports",
			Args:   []ast.Expression{ast.NewIdentifier("payer"), ast.NewIdentifier("amount")},
		}},
	)

	assert.Empty(t, ofCategory(conditions, vc.CategorySignerCheck))
	assert.Empty(t, ofCategory(conditions, vc.CategoryWritableCheck))
	// The underflow obligation remains, carrying the established facts as assumptions.
	underflows := ofCategory(conditions, vc.CategoryIntegerUnderflow)
	require.Len(t, underflows, 1)
	assert.Contains(t, underflows[0].AssumptionTexts(), "account_is_signer(payer)")
}

// TestIndexedAccessObligations ensures an indexed access emits a null guard and a bounds
// obligation, with the account table flagged under its own category.
func TestIndexedAccessObligations(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.LetStatement{Name: "v", Value: &ast.IndexExpr{
			Array: ast.NewIdentifier("arr"), Index: ast.NewIdentifier("i"),
		}},
		&ast.LetStatement{Name: "payer", Value: &ast.IndexExpr{
			Array: ast.NewIdentifier("accounts"), Index: ast.NewIntLiteral(0),
		}},
	)

	nulls := ofCategory(conditions, vc.CategoryNullCheck)
	require.Len(t, nulls, 2)
	assert.EqualValues(t, "arr ≠ none", nulls[0].PropertyText())

	bounds := ofCategory(conditions, vc.CategoryArrayBounds)
	require.Len(t, bounds, 1)
	assert.EqualValues(t, "i < arr.size", bounds[0].PropertyText())

	accountBounds := ofCategory(conditions, vc.CategoryAccountIndexBounds)
	require.Len(t, accountBounds, 1)
	assert.EqualValues(t, "0 < accounts.size", accountBounds[0].PropertyText())
}

// TestGenerationIsDeterministic ensures two runs over one program produce identical
// condition identifiers in identical order.
func TestGenerationIsDeterministic(t *testing.T) {
	program := &ast.Program{Statements: []ast.Statement{
		&ast.LetStatement{Name: "q", Value: &ast.BinaryExpr{
			Op: ast.OpDiv, Left: ast.NewIdentifier("x"), Right: ast.NewIdentifier("y"),
		}},
		&ast.LetStatement{Name: "v", Value: &ast.IndexExpr{
			Array: ast.NewIdentifier("arr"), Index: ast.NewIdentifier("i"),
		}},
	}}

	generator := NewGenerator(config.All())
	first, err := generator.Generate(program)
	require.NoError(t, err)
	second, err := generator.Generate(program)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.EqualValues(t, first[i].ID, second[i].ID)
	}
	assert.EqualValues(t, "division-safety-0001", first[0].ID)
}

// TestBalanceConservationAggregates ensures multiple balance mutations produce one
// aggregate conservation obligation over their signed deltas.
func TestBalanceConservationAggregates(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: "sub-lamports",
			Args:   []ast.Expression{ast.NewIdentifier("from"), ast.NewIdentifier("amount")},
		}},
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: "add-lamports",
			Args:   []ast.Expression{ast.NewIdentifier("to"), ast.NewIdentifier("amount")},
		}},
	)

	conservation := ofCategory(conditions, vc.CategoryBalanceConservation)
	require.Len(t, conservation, 1)
	assert.Contains(t, conservation[0].Description, "2 balance mutations")
	assert.Contains(t, conservation[0].PropertyText(), "= 0")

	// Both mutations lacked verified signers, so each carries its own obligation.
	assert.Len(t, ofCategory(conditions, vc.CategorySignerCheck), 2)
}

// TestLoopInvariantObligations ensures an annotated loop emits both inductive
// obligations, with only the preservation obligation under the loop condition.
func TestLoopInvariantObligations(t *testing.T) {
	invariant := &ast.BinaryExpr{Op: ast.OpGeq, Left: ast.NewIdentifier("total"), Right: ast.NewIntLiteral(0)}
	conditions := generate(t, config.All(),
		&ast.WhileStatement{
			Condition:  &ast.BinaryExpr{Op: ast.OpLt, Left: ast.NewIdentifier("i"), Right: ast.NewIdentifier("n")},
			Invariants: []ast.Expression{invariant},
			Body: []ast.Statement{
				&ast.AssignStatement{Name: "i", Value: &ast.BinaryExpr{
					Op: ast.OpAdd, Left: ast.NewIdentifier("i"), Right: ast.NewIntLiteral(1),
				}},
			},
		},
	)

	entries := ofCategory(conditions, vc.CategoryLoopInvariantEntry)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Assumptions)
	assert.EqualValues(t, "total ≥ 0", entries[0].PropertyText())

	preservations := ofCategory(conditions, vc.CategoryLoopInvariantPreservation)
	require.Len(t, preservations, 1)
	assert.EqualValues(t, []string{"i < n"}, preservations[0].AssumptionTexts())
}

// TestUnannotatedLoopEmitsNoInductiveObligation ensures loops without invariant
// annotations receive no inductive obligation.
func TestUnannotatedLoopEmitsNoInductiveObligation(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.WhileStatement{
			Condition: &ast.BinaryExpr{Op: ast.OpLt, Left: ast.NewIdentifier("i"), Right: ast.NewIdentifier("n")},
			Body: []ast.Statement{
				&ast.AssignStatement{Name: "i", Value: &ast.BinaryExpr{
					Op: ast.OpAdd, Left: ast.NewIdentifier("i"), Right: ast.NewIntLiteral(1),
				}},
			},
		},
	)

	assert.Empty(t, ofCategory(conditions, vc.CategoryLoopInvariantEntry))
	assert.Empty(t, ofCategory(conditions, vc.CategoryLoopInvariantPreservation))
}

// TestRecursionDetected ensures a function calling itself emits the statically resolved
// recursion obligation.
func TestRecursionDetected(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.FunctionStatement{
			Name: "spin",
			Body: []ast.Statement{
				&ast.ExpressionStatement{Expr: &ast.CallExpr{Callee: "spin"}},
			},
		},
	)

	recursions := ofCategory(conditions, vc.CategoryRecursionDetected)
	require.Len(t, recursions, 1)
	assert.Contains(t, recursions[0].Description, "spin")
}

// TestCrossProgramInvocationObligations ensures an invoke emits the depth, identity, and
// reentrancy obligations, and that nesting past the runtime limit is flagged as certain.
func TestCrossProgramInvocationObligations(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: "invoke", Args: []ast.Expression{ast.NewIdentifier("token-program")},
		}},
	)
	assert.Len(t, ofCategory(conditions, vc.CategoryCPIDepth), 1)
	assert.Len(t, ofCategory(conditions, vc.CategoryProgramIDCheck), 1)
	assert.Len(t, ofCategory(conditions, vc.CategoryExecutableCheck), 1)
	assert.Len(t, ofCategory(conditions, vc.CategoryReentrancy), 1)
	assert.Empty(t, ofCategory(conditions, vc.CategoryReentrancyDepthExceeded))

	// Five statically nested invokes exceed the runtime limit of four.
	nested := ast.Expression(&ast.CallExpr{Callee: "invoke", Args: []ast.Expression{ast.NewIdentifier("p")}})
	for i := 0; i < 4; i++ {
		nested = &ast.CallExpr{Callee: "invoke", Args: []ast.Expression{nested}}
	}
	conditions = generate(t, config.All(), &ast.ExpressionStatement{Expr: nested})
	assert.Len(t, ofCategory(conditions, vc.CategoryReentrancyDepthExceeded), 1)
}

// TestDoubleCloseDetected ensures closing an account twice on one path is flagged as a
// statically certain double free.
func TestDoubleCloseDetected(t *testing.T) {
	closeCall := func() ast.Statement {
		return &ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: "close-account", Args: []ast.Expression{ast.NewIdentifier("vault")},
		}}
	}
	conditions := generate(t, config.All(), closeCall(), closeCall())

	detected := ofCategory(conditions, vc.CategoryDoubleFreeDetected)
	require.Len(t, detected, 1)
	assert.Contains(t, detected[0].Description, "vault")
}

// TestRefinementObligationSubstitutes ensures a refinement obligation is instantiated
// with the bound name in place of the refinement variable.
func TestRefinementObligationSubstitutes(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.LetStatement{
			Name:  "fee",
			Value: ast.NewIntLiteral(3),
			Type: &ast.TypeAnnotation{Name: "u64", Refinement: &ast.RefinedTypeExpr{
				BaseType: "u64",
				Variable: "v",
				Predicate: &ast.BinaryExpr{
					Op: ast.OpGt, Left: ast.NewIdentifier("v"), Right: ast.NewIntLiteral(0),
				},
			}},
		},
	)

	refinements := ofCategory(conditions, vc.CategoryRefinementType)
	require.Len(t, refinements, 1)
	assert.EqualValues(t, "fee > 0", refinements[0].PropertyText())
}

// TestOverflowBalanceBias ensures additions over balance-named operands emit overflow
// obligations without the strict flag, while neutral names stay silent.
func TestOverflowBalanceBias(t *testing.T) {
	addition := func(name string) ast.Statement {
		return &ast.LetStatement{Name: "r", Value: &ast.BinaryExpr{
			Op: ast.OpAdd, Left: ast.NewIdentifier(name), Right: ast.NewIdentifier("x"),
		}}
	}

	conditions := generate(t, config.All(), addition("total_balance"))
	assert.Len(t, ofCategory(conditions, vc.CategoryIntegerOverflow), 1)

	conditions = generate(t, config.All(), addition("color"))
	assert.Empty(t, ofCategory(conditions, vc.CategoryIntegerOverflow))

	conditions = generate(t, config.Maximum(), addition("color"))
	assert.Len(t, ofCategory(conditions, vc.CategoryIntegerOverflow), 1)
}

// TestMemoryAccessObligations ensures a raw store emits bounds, alignment, and
// writability obligations.
func TestMemoryAccessObligations(t *testing.T) {
	conditions := generate(t, config.All(),
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: "store-u64",
			Args: []ast.Expression{
				ast.NewIdentifier("buf"), ast.NewIdentifier("offset"), ast.NewIdentifier("value"),
			},
		}},
	)

	assert.Len(t, ofCategory(conditions, vc.CategoryBufferUnderrun), 1)
	overruns := ofCategory(conditions, vc.CategoryBufferOverrun)
	require.Len(t, overruns, 1)
	assert.EqualValues(t, "(offset + 8) ≤ buf.size", overruns[0].PropertyText())
	alignments := ofCategory(conditions, vc.CategoryMemoryAlignment)
	require.Len(t, alignments, 1)
	assert.EqualValues(t, "(offset % 8) = 0", alignments[0].PropertyText())
	assert.Len(t, ofCategory(conditions, vc.CategoryWritableCheck), 1)
}
