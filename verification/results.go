package verification

import (
	"github.com/solisp-lang/solisp/verification/vc"
)

// ConditionOutcome pairs one verification condition with its final verdict.
type ConditionOutcome struct {
	// Condition describes the proof obligation.
	Condition *vc.VerificationCondition

	// Result describes the verdict the pipeline settled on.
	Result *vc.ProofResult
}

// Result describes the aggregated outcome of one verification run.
type Result struct {
	// RunID describes the unique identifier of the run.
	RunID string

	// Success indicates whether the run found no disproved conditions. Unknown and
	// advisory verdicts do not fail a run; they are surfaced for review instead.
	Success bool

	// Proved counts conditions the pipeline established.
	Proved int

	// Failed counts conditions that are definitely false.
	Failed int

	// Unknown counts conditions static evidence could not decide.
	Unknown int

	// Advisory counts heuristic warnings.
	Advisory int

	// TimeMS describes the wall-clock duration of the run, in milliseconds.
	TimeMS int64

	// Outcomes describes every condition with its verdict, in generation order.
	Outcomes []*ConditionOutcome
}

// record appends one outcome and updates the tallies.
func (r *Result) record(condition *vc.VerificationCondition, verdict *vc.ProofResult) {
	r.Outcomes = append(r.Outcomes, &ConditionOutcome{Condition: condition, Result: verdict})
	switch {
	case verdict.Proved():
		r.Proved++
	case verdict.Disproved():
		r.Failed++
	case verdict.Advisory():
		r.Advisory++
	default:
		r.Unknown++
	}
}

// Disproved returns the outcomes whose conditions are definitely false, in generation
// order.
func (r *Result) Disproved() []*ConditionOutcome {
	var disproved []*ConditionOutcome
	for _, outcome := range r.Outcomes {
		if outcome.Result.Disproved() {
			disproved = append(disproved, outcome)
		}
	}
	return disproved
}

// Unresolved returns the outcomes static evidence could not decide, in generation order.
func (r *Result) Unresolved() []*ConditionOutcome {
	var unresolved []*ConditionOutcome
	for _, outcome := range r.Outcomes {
		if outcome.Result.Unknown() {
			unresolved = append(unresolved, outcome)
		}
	}
	return unresolved
}
