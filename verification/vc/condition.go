package vc

import (
	"github.com/solisp-lang/solisp/compiler/ast"
)

// VerificationCondition describes one proof obligation emitted by the generator: a claim
// about one program point, tied to one risk category, together with the contextual
// assumptions that held when it was emitted. A VerificationCondition is immutable once
// constructed; proving produces a separate ProofResult and never edits the condition.
type VerificationCondition struct {
	// ID describes the unique identifier of the condition, derived from its category and
	// a counter scoped to one generation run.
	ID string

	// Category describes the risk class of the condition.
	Category Category

	// Description describes the obligation in human-readable terms.
	Description string

	// Location optionally describes the source position the obligation is tied to.
	Location *ast.SourceLocation

	// Property describes the claim to prove.
	Property Predicate

	// Assumptions describes the ordered snapshot of the assumption stack at the point of
	// emission. The slice is owned by the condition and must not be mutated.
	Assumptions []Predicate

	// Tactic describes a suggested discharge strategy for the property. Informational
	// only; the prover selects its own strategy by category.
	Tactic string
}

// NewVerificationCondition returns a VerificationCondition with its own copy of the
// provided assumption snapshot, so subsequent mutation of the generator's assumption
// stack cannot alter an already emitted condition.
func NewVerificationCondition(id string, category Category, description string, location *ast.SourceLocation, property Predicate, assumptions []Predicate, tactic string) *VerificationCondition {
	snapshot := make([]Predicate, len(assumptions))
	copy(snapshot, assumptions)
	return &VerificationCondition{
		ID:          id,
		Category:    category,
		Description: description,
		Location:    location,
		Property:    property,
		Assumptions: snapshot,
		Tactic:      tactic,
	}
}

// PropertyText returns the Lean-style rendering of the property, for export and
// diagnostics.
func (c *VerificationCondition) PropertyText() string {
	if c.Property == nil {
		return ""
	}
	return c.Property.Render()
}

// AssumptionTexts returns the Lean-style renderings of the assumption snapshot, in order.
func (c *VerificationCondition) AssumptionTexts() []string {
	texts := make([]string, len(c.Assumptions))
	for i, assumption := range c.Assumptions {
		texts[i] = assumption.Render()
	}
	return texts
}
