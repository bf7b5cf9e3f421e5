// Package verification ties the engine together: the Verifier runs the generator over a
// program, discharges every emitted condition through the built-in prover, optionally
// escalates unresolved conditions to the external Lean bridge, and reports results,
// coverage statistics, and exportable proof certificates.
package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/solisp-lang/solisp/compiler/ast"
	"github.com/solisp-lang/solisp/events"
	"github.com/solisp-lang/solisp/logging"
	"github.com/solisp-lang/solisp/verification/config"
	"github.com/solisp-lang/solisp/verification/generator"
	"github.com/solisp-lang/solisp/verification/leanbridge"
	"github.com/solisp-lang/solisp/verification/prover"
	"github.com/solisp-lang/solisp/verification/symbolic"
	"github.com/solisp-lang/solisp/verification/vc"
)

// VerificationStartedEvent describes the start of one verification run.
type VerificationStartedEvent struct {
	// RunID describes the unique identifier of the run.
	RunID string

	// ConditionCount describes how many conditions the generator emitted.
	ConditionCount int
}

// ConditionCheckedEvent describes one condition receiving its verdict.
type ConditionCheckedEvent struct {
	// Condition describes the checked condition.
	Condition *vc.VerificationCondition

	// Result describes the verdict.
	Result *vc.ProofResult
}

// VerificationCompletedEvent describes the end of one verification run.
type VerificationCompletedEvent struct {
	// Result describes the run's aggregated outcome.
	Result *Result
}

// VerifierEvents describes the event emitters a Verifier publishes progress through.
type VerifierEvents struct {
	// VerificationStarted emits when generation finished and proving begins.
	VerificationStarted events.EventEmitter[VerificationStartedEvent]

	// ConditionChecked emits once per condition, after its verdict is final.
	ConditionChecked events.EventEmitter[ConditionCheckedEvent]

	// VerificationCompleted emits after the aggregated result is assembled.
	VerificationCompleted events.EventEmitter[VerificationCompletedEvent]
}

// Verifier runs the full pipeline over programs under one configuration.
type Verifier struct {
	// Events describes the emitters progress is published through.
	Events VerifierEvents

	// properties describes which checks are enabled.
	properties *config.VerificationProperties

	// bridge optionally describes the external prover used for unresolved conditions.
	bridge *leanbridge.Bridge

	// logger describes the Verifier's log output.
	logger *logging.Logger
}

// NewVerifier returns a Verifier for the provided configuration.
func NewVerifier(properties *config.VerificationProperties) *Verifier {
	return &Verifier{
		properties: properties,
		logger:     logging.GlobalLogger.NewSubLogger("module", "verifier"),
	}
}

// UseExternalProver attaches an external prover bridge. Conditions the built-in prover
// leaves Unknown are escalated to it; it can only ever upgrade verdicts to Proved.
func (v *Verifier) UseExternalProver(bridge *leanbridge.Bridge) {
	v.bridge = bridge
}

// Verify runs generation and proving over the provided program and returns the
// aggregated result. The context bounds the external prover's subprocess calls and
// cancels the run between conditions.
func (v *Verifier) Verify(ctx context.Context, program *ast.Program) (*Result, error) {
	startTime := time.Now()

	// Constant propagation over top-level bindings gives the prover its base knowledge.
	env := symbolic.BuildEnvironment(program)

	conditions, err := generator.NewGenerator(v.properties).Generate(program)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.New().String()}
	v.Events.VerificationStarted.Publish(VerificationStartedEvent{
		RunID:          result.RunID,
		ConditionCount: len(conditions),
	})

	engine := prover.NewProver(env)
	for _, condition := range conditions {
		if err = ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "verification interrupted")
		}

		verdict := engine.Prove(condition)
		verdict = v.escalateUnknown(ctx, condition, verdict)

		result.record(condition, verdict)
		v.Events.ConditionChecked.Publish(ConditionCheckedEvent{Condition: condition, Result: verdict})
	}

	result.Success = result.Failed == 0
	result.TimeMS = time.Since(startTime).Milliseconds()
	v.Events.VerificationCompleted.Publish(VerificationCompletedEvent{Result: result})

	v.logger.Info("verification complete: ", result.Proved, " proved, ", result.Failed,
		" disproved, ", result.Unknown, " unknown, ", result.Advisory, " advisory")
	return result, nil
}

// escalateUnknown hands an unresolved condition to the external prover, when one is
// attached and available. Only a Proved verdict from the bridge replaces the built-in
// Unknown; anything else keeps the built-in verdict and its reason.
func (v *Verifier) escalateUnknown(ctx context.Context, condition *vc.VerificationCondition, verdict *vc.ProofResult) *vc.ProofResult {
	if !verdict.Unknown() || v.bridge == nil || !v.bridge.Available() {
		return verdict
	}
	external, err := v.bridge.Check(ctx, condition)
	if err != nil {
		v.logger.Warn("external prover check failed for ", condition.ID, ": ", err)
		return verdict
	}
	if external.Proved() {
		return external
	}
	return verdict
}
