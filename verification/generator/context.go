package generator

import (
	"fmt"

	"github.com/solisp-lang/solisp/compiler/ast"
	"github.com/solisp-lang/solisp/verification/config"
	"github.com/solisp-lang/solisp/verification/vc"
	"golang.org/x/exp/maps"
)

// maxCPIDepth describes the runtime's cross-program invocation nesting limit.
const maxCPIDepth = 4

// lamportDelta describes one recorded balance change: which account it applies to, the
// term describing the change, and whether the change is a debit.
type lamportDelta struct {
	// account describes the affected account name.
	account string

	// delta describes the magnitude of the change.
	delta *vc.Term

	// negative indicates the change is a debit.
	negative bool
}

// analysisContext describes the mutable state threaded through one generation run. A
// fresh context is created per Generate call and discarded at the end; no generation may
// observe context from a sibling statement's already-popped assumption.
type analysisContext struct {
	// properties describes which checks are enabled for this run.
	properties *config.VerificationProperties

	// conditions accumulates the emitted verification conditions, in emission order.
	conditions []*vc.VerificationCondition

	// assumptions describes the strict-LIFO assumption stack. Branches push on entry and
	// pop on exit and never see each other's assumptions.
	assumptions []vc.Predicate

	// verifiedSigners records accounts whose signer status was established on the current
	// control-flow path.
	verifiedSigners map[string]bool

	// verifiedWritable records accounts whose writability was established on the current
	// control-flow path.
	verifiedWritable map[string]bool

	// verifiedOwners records accounts whose owner was validated on the current
	// control-flow path.
	verifiedOwners map[string]bool

	// closedAccounts records accounts already closed on the current control-flow path.
	closedAccounts map[string]bool

	// initialized records variables bound by let or assignment so far.
	initialized map[string]bool

	// lamportDeltas records balance changes, consumed once at the end of the run to emit
	// a single aggregate conservation obligation.
	lamportDeltas []lamportDelta

	// cpiDepth describes the static cross-program invocation nesting at the current
	// program point.
	cpiDepth int

	// loopInvariants describes the stack of invariant annotations of enclosing loops.
	loopInvariants [][]ast.Expression

	// callStack describes the names of in-flight function applications, used only to
	// detect textual self-recursion.
	callStack []string

	// nextSequence describes the monotonically increasing id counter, scoped to this run.
	nextSequence int
}

// newAnalysisContext returns a fresh context for one generation run.
func newAnalysisContext(properties *config.VerificationProperties) *analysisContext {
	return &analysisContext{
		properties:       properties,
		verifiedSigners:  make(map[string]bool),
		verifiedWritable: make(map[string]bool),
		verifiedOwners:   make(map[string]bool),
		closedAccounts:   make(map[string]bool),
		initialized:      make(map[string]bool),
	}
}

// emit appends a verification condition carrying a snapshot of the current assumption
// stack.
func (ctx *analysisContext) emit(category vc.Category, description string, location *ast.SourceLocation, property vc.Predicate, tactic string) {
	ctx.nextSequence++
	id := fmt.Sprintf("%s-%04d", category, ctx.nextSequence)
	ctx.conditions = append(ctx.conditions, vc.NewVerificationCondition(id, category, description, location, property, ctx.assumptions, tactic))
}

// pushAssumption pushes a fact onto the assumption stack.
func (ctx *analysisContext) pushAssumption(assumption vc.Predicate) {
	ctx.assumptions = append(ctx.assumptions, assumption)
}

// popAssumptions pops the provided number of facts from the assumption stack.
func (ctx *analysisContext) popAssumptions(count int) {
	if count > len(ctx.assumptions) {
		count = len(ctx.assumptions)
	}
	ctx.assumptions = ctx.assumptions[:len(ctx.assumptions)-count]
}

// accountFactSnapshot describes a saved copy of the per-account verification maps, taken
// before entering a branch so sibling branches cannot observe each other's established
// facts.
type accountFactSnapshot struct {
	verifiedSigners  map[string]bool
	verifiedWritable map[string]bool
	verifiedOwners   map[string]bool
	closedAccounts   map[string]bool
}

// snapshotAccountFacts returns a copy of the per-account verification maps.
func (ctx *analysisContext) snapshotAccountFacts() accountFactSnapshot {
	return accountFactSnapshot{
		verifiedSigners:  maps.Clone(ctx.verifiedSigners),
		verifiedWritable: maps.Clone(ctx.verifiedWritable),
		verifiedOwners:   maps.Clone(ctx.verifiedOwners),
		closedAccounts:   maps.Clone(ctx.closedAccounts),
	}
}

// restoreAccountFacts reinstates a previously taken snapshot.
func (ctx *analysisContext) restoreAccountFacts(snapshot accountFactSnapshot) {
	ctx.verifiedSigners = snapshot.verifiedSigners
	ctx.verifiedWritable = snapshot.verifiedWritable
	ctx.verifiedOwners = snapshot.verifiedOwners
	ctx.closedAccounts = snapshot.closedAccounts
}
