package vc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAdvisoryCategories ensures exactly the heuristic categories report as advisory.
func TestAdvisoryCategories(t *testing.T) {
	advisory := []Category{
		CategoryPDACollision, CategoryFlashLoan, CategoryOracleManipulation,
		CategoryFrontRunning, CategoryTimelock,
	}
	for _, category := range advisory {
		assert.True(t, category.IsAdvisory(), "expected %s to be advisory", category)
	}

	assert.False(t, CategoryDivisionByZero.IsAdvisory())
	assert.False(t, CategorySignerCheck.IsAdvisory())
	assert.False(t, CategoryBalanceConservation.IsAdvisory())
}

// TestConstructionResolvedCategories ensures the statically detected categories report
// as construction-resolved.
func TestConstructionResolvedCategories(t *testing.T) {
	assert.True(t, CategoryReentrancyDepthExceeded.IsConstructionResolved())
	assert.True(t, CategoryDoubleFreeDetected.IsConstructionResolved())
	assert.True(t, CategoryRecursionDetected.IsConstructionResolved())

	assert.False(t, CategoryDoubleFree.IsConstructionResolved())
	assert.False(t, CategoryReentrancy.IsConstructionResolved())
	assert.False(t, CategoryCPIDepth.IsConstructionResolved())
}

// TestCustomCategories ensures custom categories are marked and never collide with the
// fixed catalogue.
func TestCustomCategories(t *testing.T) {
	custom := NewCustomCategory("escrow-release-order")

	assert.True(t, custom.IsCustom())
	assert.EqualValues(t, "custom/escrow-release-order", custom.String())
	assert.False(t, custom.IsAdvisory())
	assert.False(t, custom.IsConstructionResolved())
	assert.False(t, CategoryDivisionByZero.IsCustom())
}
