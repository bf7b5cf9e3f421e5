// Package generator implements the verification-condition generator: a single
// path-sensitive pass over a program's AST which emits one proof obligation for every
// enabled risk the program could realize. The generator may over-approximate risk but
// must never under-generate for an enabled category; it never mutates the AST.
package generator

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/solisp-lang/solisp/compiler/ast"
	"github.com/solisp-lang/solisp/logging"
	"github.com/solisp-lang/solisp/verification/config"
	"github.com/solisp-lang/solisp/verification/vc"
	"golang.org/x/exp/maps"
)

// Generator produces verification conditions for programs under one configuration. A
// Generator is stateless across runs: every Generate call builds a fresh analysis
// context, so concurrent generation over different programs is safe.
type Generator struct {
	// properties describes which checks are enabled.
	properties *config.VerificationProperties

	// logger describes the Generator's log output.
	logger *logging.Logger
}

// NewGenerator returns a Generator for the provided configuration.
func NewGenerator(properties *config.VerificationProperties) *Generator {
	return &Generator{
		properties: properties,
		logger:     logging.GlobalLogger.NewSubLogger("module", "generator"),
	}
}

// Generate walks the program and returns the complete set of proof obligations for it,
// in emission order. Returns an error for malformed input; analysis itself cannot fail.
func (g *Generator) Generate(program *ast.Program) ([]*vc.VerificationCondition, error) {
	if program == nil {
		return nil, errors.New("vc generation requires a non-nil program")
	}

	ctx := newAnalysisContext(g.properties)
	g.walkStatements(ctx, program.Statements)

	// If any lamport deltas were recorded, append the single aggregate conservation
	// obligation over all of them.
	g.emitBalanceConservation(ctx)

	g.logger.Debug("vc generation complete", " conditions generated: ", len(ctx.conditions))
	return ctx.conditions, nil
}

// walkStatements visits a block of statements in program order. Guards, assumes, and
// verification calls narrow the remainder of the block by leaving assumptions on the
// stack; those assumptions are popped together when the block ends.
func (g *Generator) walkStatements(ctx *analysisContext, statements []ast.Statement) {
	pushed := 0
	for _, statement := range statements {
		pushed += g.walkStatement(ctx, statement)
	}
	ctx.popAssumptions(pushed)
}

// walkStatement visits one statement and returns how many assumptions it left on the
// stack for the remainder of the enclosing block.
func (g *Generator) walkStatement(ctx *analysisContext, statement ast.Statement) int {
	switch stmt := statement.(type) {
	case *ast.ExpressionStatement:
		if call, ok := stmt.Expr.(*ast.CallExpr); ok {
			return g.handleCall(ctx, call, true)
		}
		g.walkExpression(ctx, stmt.Expr)
		return 0

	case *ast.LetStatement:
		g.walkExpression(ctx, stmt.Value)
		ctx.initialized[stmt.Name] = true
		g.emitRefinementObligation(ctx, stmt)
		return 0

	case *ast.AssignStatement:
		g.walkExpression(ctx, stmt.Value)
		if !ctx.initialized[stmt.Name] {
			ctx.emit(vc.CategoryUninitializedRead, fmt.Sprintf("assignment to '%s' before any binding introduces it", stmt.Name), stmt.Location(), vc.NewFact("variable_bound", stmt.Name), "assumption")
			ctx.initialized[stmt.Name] = true
		}
		return 0

	case *ast.IfStatement:
		g.walkExpression(ctx, stmt.Condition)
		condition := conditionToPredicate(stmt.Condition)

		// Each branch gets the (possibly negated) condition pushed on entry and popped on
		// exit; account facts established inside a branch are rolled back so siblings
		// never observe them.
		snapshot := ctx.snapshotAccountFacts()
		ctx.pushAssumption(condition)
		recordEstablishedFacts(ctx, condition)
		g.walkStatements(ctx, stmt.Then)
		ctx.popAssumptions(1)
		ctx.restoreAccountFacts(snapshot)

		if len(stmt.Else) > 0 {
			snapshot = ctx.snapshotAccountFacts()
			ctx.pushAssumption(negatePredicate(condition))
			g.walkStatements(ctx, stmt.Else)
			ctx.popAssumptions(1)
			ctx.restoreAccountFacts(snapshot)
		}
		return 0

	case *ast.GuardStatement:
		g.walkExpression(ctx, stmt.Condition)
		condition := conditionToPredicate(stmt.Condition)

		// The failure branch runs under the negated condition.
		snapshot := ctx.snapshotAccountFacts()
		ctx.pushAssumption(negatePredicate(condition))
		g.walkStatements(ctx, stmt.Else)
		ctx.popAssumptions(1)
		ctx.restoreAccountFacts(snapshot)

		// A guard's success narrows all following code: the unnegated condition stays on
		// the stack for the remainder of the enclosing block.
		ctx.pushAssumption(condition)
		recordEstablishedFacts(ctx, condition)
		return 1

	case *ast.WhileStatement:
		g.walkExpression(ctx, stmt.Condition)
		condition := conditionToPredicate(stmt.Condition)
		g.walkLoop(ctx, condition, stmt.Invariants, stmt.Body)
		return 0

	case *ast.ForStatement:
		g.walkExpression(ctx, stmt.From)
		g.walkExpression(ctx, stmt.To)
		ctx.initialized[stmt.Variable] = true

		// Inside the body, the counter is known to lie within [from, to).
		counter := vc.VarTerm(stmt.Variable)
		rangeFact := vc.NewConjunction(
			vc.NewComparison(vc.CmpGeq, counter, exprToTerm(stmt.From)),
			vc.NewComparison(vc.CmpLt, counter, exprToTerm(stmt.To)),
		)
		g.walkLoop(ctx, rangeFact, stmt.Invariants, stmt.Body)
		return 0

	case *ast.FunctionStatement:
		// The body runs only when the function is applied, never on the control-flow path
		// of the surrounding code, so nothing it establishes may leak past the definition.
		snapshot := ctx.snapshotAccountFacts()
		initialized := maps.Clone(ctx.initialized)
		for _, param := range stmt.Params {
			ctx.initialized[param] = true
		}
		ctx.callStack = append(ctx.callStack, stmt.Name)
		g.walkStatements(ctx, stmt.Body)
		ctx.callStack = ctx.callStack[:len(ctx.callStack)-1]
		ctx.restoreAccountFacts(snapshot)
		ctx.initialized = initialized
		return 0

	case *ast.ReturnStatement:
		if stmt.Value != nil {
			g.walkExpression(ctx, stmt.Value)
		}
		return 0

	case *ast.BlockStatement:
		g.walkStatements(ctx, stmt.Statements)
		return 0

	default:
		return 0
	}
}

// walkLoop emits the inductive obligations of an annotated loop and walks its body under
// the loop condition. Loops without invariant annotations receive no inductive
// obligation at all; that soundness gap is inherited deliberately from the language
// design, and surfaced in the project documentation rather than papered over here.
func (g *Generator) walkLoop(ctx *analysisContext, condition vc.Predicate, invariants []ast.Expression, body []ast.Statement) {
	// "Holds on entry" is proved under the assumptions in force before the loop.
	for _, invariant := range invariants {
		ctx.emit(vc.CategoryLoopInvariantEntry,
			fmt.Sprintf("loop invariant %s holds on entry", renderExpr(invariant)),
			invariant.Location(), conditionToPredicate(invariant), "simp")
	}

	snapshot := ctx.snapshotAccountFacts()
	ctx.pushAssumption(condition)

	// "Preserved by one iteration" is proved under the loop condition. The invariant is
	// intentionally not assumed here: assuming it would let the prover discharge the
	// obligation against itself.
	for _, invariant := range invariants {
		ctx.emit(vc.CategoryLoopInvariantPreservation,
			fmt.Sprintf("loop invariant %s is preserved by one iteration", renderExpr(invariant)),
			invariant.Location(), conditionToPredicate(invariant), "induction")
	}

	ctx.loopInvariants = append(ctx.loopInvariants, invariants)
	g.walkStatements(ctx, body)
	ctx.loopInvariants = ctx.loopInvariants[:len(ctx.loopInvariants)-1]

	ctx.popAssumptions(1)
	ctx.restoreAccountFacts(snapshot)
}

// walkExpression visits one expression tree, emitting obligations for the risky
// operations it contains.
func (g *Generator) walkExpression(ctx *analysisContext, expression ast.Expression) {
	switch expr := expression.(type) {
	case *ast.BinaryExpr:
		g.walkExpression(ctx, expr.Left)
		g.walkExpression(ctx, expr.Right)
		g.emitArithmeticObligations(ctx, expr)

	case *ast.UnaryExpr:
		g.walkExpression(ctx, expr.Operand)
		g.emitNegationObligation(ctx, expr)

	case *ast.CallExpr:
		// Calls in expression position establish account facts but cannot narrow the
		// enclosing block, so any assumption they would push is discarded.
		pushed := g.handleCall(ctx, expr, false)
		ctx.popAssumptions(pushed)

	case *ast.IndexExpr:
		g.walkExpression(ctx, expr.Array)
		g.walkExpression(ctx, expr.Index)
		g.emitIndexObligations(ctx, expr)

	case *ast.ArrayLiteral:
		for _, element := range expr.Elements {
			g.walkExpression(ctx, element)
		}
	}
}

// emitIndexObligations emits the null-guard and bounds obligations for an indexed
// access.
func (g *Generator) emitIndexObligations(ctx *analysisContext, expr *ast.IndexExpr) {
	if !ctx.properties.ArrayBounds {
		return
	}

	arrayName := renderExpr(expr.Array)
	if identifier, ok := expr.Array.(*ast.Identifier); ok {
		arrayName = identifier.Name
	}
	indexTerm := exprToTerm(expr.Index)

	ctx.emit(vc.CategoryNullCheck,
		fmt.Sprintf("indexed object '%s' is non-null", arrayName),
		expr.Location(),
		vc.NewComparison(vc.CmpNeq, vc.VarTerm(arrayName), vc.VarTerm("none")),
		"simp")

	category := vc.CategoryArrayBounds
	if nameLooksAccountTable(arrayName) {
		category = vc.CategoryAccountIndexBounds
	}
	ctx.emit(category,
		fmt.Sprintf("index %s is within the bounds of '%s'", renderExpr(expr.Index), arrayName),
		expr.Location(),
		vc.NewComparison(vc.CmpLt, indexTerm, vc.ArrayLenTerm(arrayName)),
		"omega")
}

// emitRefinementObligation emits the refinement obligation for an annotated binding.
func (g *Generator) emitRefinementObligation(ctx *analysisContext, stmt *ast.LetStatement) {
	if !ctx.properties.RefinementTypes || stmt.Type == nil || stmt.Type.Refinement == nil {
		return
	}

	refinement := stmt.Type.Refinement
	instantiated := substituteVariable(refinement.Predicate, refinement.Variable, stmt.Name)
	ctx.emit(vc.CategoryRefinementType,
		fmt.Sprintf("binding '%s' satisfies its refinement %s", stmt.Name, renderExpr(refinement.Predicate)),
		stmt.Location(), conditionToPredicate(instantiated), "simp")
}

// emitBalanceConservation appends the aggregate conservation obligation when any lamport
// deltas were recorded during the run.
func (g *Generator) emitBalanceConservation(ctx *analysisContext) {
	if len(ctx.lamportDeltas) == 0 {
		return
	}

	// Fold the recorded deltas into one signed sum. Debits subtract; credits add.
	var sum *vc.Term
	for _, delta := range ctx.lamportDeltas {
		term := delta.delta
		if sum == nil {
			if delta.negative {
				term = vc.SubTerm(vc.Int64Term(0), term)
			}
			sum = term
			continue
		}
		if delta.negative {
			sum = vc.SubTerm(sum, term)
		} else {
			sum = vc.AddTerm(sum, term)
		}
	}

	ctx.emit(vc.CategoryBalanceConservation,
		fmt.Sprintf("lamport deltas across %d balance mutations sum to zero", len(ctx.lamportDeltas)),
		nil,
		vc.NewComparison(vc.CmpEq, sum, vc.Int64Term(0)),
		"omega")
}

// recordEstablishedFacts updates the per-account verification maps from a fact
// established by a successful guard or verification call on the current path.
func recordEstablishedFacts(ctx *analysisContext, predicate vc.Predicate) {
	switch p := predicate.(type) {
	case *vc.Conjunction:
		for _, operand := range p.Operands {
			recordEstablishedFacts(ctx, operand)
		}
	case *vc.Fact:
		if len(p.Args) == 0 {
			return
		}
		account := p.Args[0]
		switch p.Name {
		case "account_is_signer":
			ctx.verifiedSigners[account] = true
		case "account_is_writable":
			ctx.verifiedWritable[account] = true
		case "account_owner_checked":
			ctx.verifiedOwners[account] = true
		}
	}
}

// nameLooksAccountTable indicates whether an indexed object is the instruction's account
// table rather than an ordinary array.
func nameLooksAccountTable(name string) bool {
	return name == "accounts" || name == "account-infos" || name == "remaining-accounts"
}
