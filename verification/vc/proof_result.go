package vc

const (
	// StatusProved describes a verdict where the property was established from literal
	// arithmetic, symbolic values, or in-scope assumptions.
	StatusProved string = "PROVED"
	// StatusDisproved describes a verdict where the property is definitely false.
	// Disproved is never returned on mere lack of evidence.
	StatusDisproved = "DISPROVED"
	// StatusUnknown describes a verdict where static evidence was insufficient to decide
	// the property either way.
	StatusUnknown = "UNKNOWN"
	// StatusAdvisory describes a verdict for heuristic categories which are surfaced as
	// warnings rather than genuine safety proofs.
	StatusAdvisory = "ADVISORY"
)

// ProofResult describes the outcome of attempting to discharge one
// VerificationCondition.
type ProofResult struct {
	// Status describes the verdict, one of the Status constants.
	Status string

	// ProofSketch describes the reasoning steps behind a Proved verdict.
	ProofSketch string

	// Explanation describes a Proved verdict in human-readable terms.
	Explanation string

	// Counterexample describes a witness for a Disproved verdict.
	Counterexample string

	// Reason describes, for an Unknown verdict, what evidence was missing and how the
	// source could supply it.
	Reason string

	// Warning describes the heuristic concern behind an Advisory verdict.
	Warning string
}

// NewProvedResult returns a Proved verdict with the provided proof sketch and
// explanation.
func NewProvedResult(proofSketch string, explanation string) *ProofResult {
	return &ProofResult{Status: StatusProved, ProofSketch: proofSketch, Explanation: explanation}
}

// NewDisprovedResult returns a Disproved verdict with the provided counterexample.
func NewDisprovedResult(counterexample string) *ProofResult {
	return &ProofResult{Status: StatusDisproved, Counterexample: counterexample}
}

// NewUnknownResult returns an Unknown verdict with the provided reason.
func NewUnknownResult(reason string) *ProofResult {
	return &ProofResult{Status: StatusUnknown, Reason: reason}
}

// NewAdvisoryResult returns an Advisory verdict with the provided warning.
func NewAdvisoryResult(warning string) *ProofResult {
	return &ProofResult{Status: StatusAdvisory, Warning: warning}
}

// Proved indicates whether the verdict is Proved.
func (r *ProofResult) Proved() bool { return r.Status == StatusProved }

// Disproved indicates whether the verdict is Disproved.
func (r *ProofResult) Disproved() bool { return r.Status == StatusDisproved }

// Unknown indicates whether the verdict is Unknown.
func (r *ProofResult) Unknown() bool { return r.Status == StatusUnknown }

// Advisory indicates whether the verdict is Advisory.
func (r *ProofResult) Advisory() bool { return r.Status == StatusAdvisory }
