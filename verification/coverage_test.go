package verification

import (
	"testing"

	"github.com/solisp-lang/solisp/compiler/ast"
	"github.com/solisp-lang/solisp/verification/vc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coverageResult assembles a result with known verdict tallies across two categories and
// two source lines.
func coverageResult() *Result {
	location := func(line int) *ast.SourceLocation {
		return &ast.SourceLocation{File: "transfer.sol", Line: line, Column: 1}
	}
	outcome := func(category vc.Category, line int, result *vc.ProofResult) *ConditionOutcome {
		return &ConditionOutcome{
			Condition: vc.NewVerificationCondition(string(category)+"-0001", category, "test",
				location(line), vc.NewAtom("True"), nil, "decide"),
			Result: result,
		}
	}

	return &Result{Outcomes: []*ConditionOutcome{
		outcome(vc.CategoryDivisionByZero, 3, vc.NewProvedResult("", "")),
		outcome(vc.CategoryDivisionByZero, 3, vc.NewUnknownResult("")),
		outcome(vc.CategoryArrayBounds, 7, vc.NewProvedResult("", "")),
		outcome(vc.CategoryFlashLoan, 7, vc.NewAdvisoryResult("")),
	}}
}

// TestComputeCoverageCategories ensures per-category tallies and ordering.
func TestComputeCoverageCategories(t *testing.T) {
	report := ComputeCoverage(coverageResult())

	require.Len(t, report.Categories, 3)
	// Sorted by category tag.
	assert.EqualValues(t, vc.CategoryArrayBounds, report.Categories[0].Category)
	assert.EqualValues(t, vc.CategoryDivisionByZero, report.Categories[1].Category)
	assert.EqualValues(t, vc.CategoryFlashLoan, report.Categories[2].Category)

	division := report.Categories[1]
	assert.EqualValues(t, 2, division.Total)
	assert.EqualValues(t, 1, division.Proved)
	assert.EqualValues(t, 1, division.Unknown)
	assert.EqualValues(t, "50", division.ProvedPercent().String())
}

// TestComputeCoverageLines ensures per-line tallies mark lines with undischarged
// obligations.
func TestComputeCoverageLines(t *testing.T) {
	report := ComputeCoverage(coverageResult())

	require.Len(t, report.Lines, 2)
	assert.EqualValues(t, 3, report.Lines[0].Line)
	assert.False(t, report.Lines[0].AllProved)

	// Line 7 carries one proved obligation and one advisory; advisories do not spoil it.
	assert.EqualValues(t, 7, report.Lines[1].Line)
	assert.True(t, report.Lines[1].AllProved)
}

// TestReportProvedPercentExcludesAdvisories ensures advisories are excluded from the
// overall percentage's denominator.
func TestReportProvedPercentExcludesAdvisories(t *testing.T) {
	report := ComputeCoverage(coverageResult())

	// 2 proved out of 3 genuine obligations; the advisory does not count.
	assert.EqualValues(t, "66.67", report.ProvedPercent().String())

	empty := ComputeCoverage(&Result{})
	assert.True(t, empty.ProvedPercent().IsZero())
}
