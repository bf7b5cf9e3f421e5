package generator

import (
	"fmt"
	"strings"

	"github.com/solisp-lang/solisp/compiler/ast"
	"github.com/solisp-lang/solisp/verification/vc"
)

// booleanPredicateCalls maps source-level boolean query callees onto the protocol facts
// they establish when used as a guard condition.
var booleanPredicateCalls = map[string]string{
	"account-is-signer":     "account_is_signer",
	"account-is-writable":   "account_is_writable",
	"account-owner-is":      "account_owner_checked",
	"has-discriminator":     "discriminator_checked",
	"is-sysvar":             "sysvar_checked",
	"is-rent-exempt":        "rent_exempt_checked",
	"is-program":            "program_id_checked",
	"account-is-closed":     "account_is_closed",
	"token-owner-is":        "token_owner_checked",
	"bump-is-canonical":     "bump_canonical",
	"account-is-executable": "executable_checked",
}

// balanceNameFragments describes the variable-name substrings that mark an operand as
// balance-relevant. Matching is deliberately aggressive: the engine biases sensitivity
// toward financial code.
var balanceNameFragments = []string{
	"bal", "lamport", "amount", "fee", "stake", "total", "price",
	"deposit", "withdraw", "supply", "reward", "debt", "escrow",
}

// exprToTerm converts an expression into a predicate term. Expressions outside the term
// grammar become opaque variable terms carrying their source rendering, which the prover
// cannot resolve and therefore treats conservatively.
func exprToTerm(expr ast.Expression) *vc.Term {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return vc.ConstTerm(e.Value)
	case *ast.Identifier:
		return vc.VarTerm(e.Name)
	case *ast.UnaryExpr:
		if e.Op == ast.OpNeg {
			return vc.SubTerm(vc.Int64Term(0), exprToTerm(e.Operand))
		}
	case *ast.BinaryExpr:
		switch e.Op {
		case ast.OpAdd:
			return vc.AddTerm(exprToTerm(e.Left), exprToTerm(e.Right))
		case ast.OpSub:
			return vc.SubTerm(exprToTerm(e.Left), exprToTerm(e.Right))
		case ast.OpMul:
			return vc.MulTerm(exprToTerm(e.Left), exprToTerm(e.Right))
		case ast.OpMod:
			return vc.ModTerm(exprToTerm(e.Left), exprToTerm(e.Right))
		}
	case *ast.CallExpr:
		// Balance reads become per-account lamport terms so deltas and comparisons over
		// the same account line up textually.
		if (e.Callee == "get-lamports" || e.Callee == "account-lamports") && len(e.Args) == 1 {
			if account, ok := e.Args[0].(*ast.Identifier); ok {
				return vc.VarTerm(account.Name + ".lamports")
			}
		}
	}
	return vc.VarTerm(renderExpr(expr))
}

// conditionToPredicate converts a boolean condition expression into a structured
// predicate. Conditions outside the structured grammar degrade to opaque atoms.
func conditionToPredicate(expr ast.Expression) vc.Predicate {
	switch e := expr.(type) {
	case *ast.BoolLiteral:
		if e.Value {
			return vc.NewAtom("True")
		}
		return vc.NewAtom("False")
	case *ast.Identifier:
		// A bare identifier condition asserts the value is non-zero.
		return vc.NewComparison(vc.CmpNeq, vc.VarTerm(e.Name), vc.Int64Term(0))
	case *ast.UnaryExpr:
		if e.Op == ast.OpNot {
			return negatePredicate(conditionToPredicate(e.Operand))
		}
	case *ast.BinaryExpr:
		switch e.Op {
		case ast.OpEq:
			return vc.NewComparison(vc.CmpEq, exprToTerm(e.Left), exprToTerm(e.Right))
		case ast.OpNeq:
			return vc.NewComparison(vc.CmpNeq, exprToTerm(e.Left), exprToTerm(e.Right))
		case ast.OpLt:
			return vc.NewComparison(vc.CmpLt, exprToTerm(e.Left), exprToTerm(e.Right))
		case ast.OpLeq:
			return vc.NewComparison(vc.CmpLeq, exprToTerm(e.Left), exprToTerm(e.Right))
		case ast.OpGt:
			return vc.NewComparison(vc.CmpGt, exprToTerm(e.Left), exprToTerm(e.Right))
		case ast.OpGeq:
			return vc.NewComparison(vc.CmpGeq, exprToTerm(e.Left), exprToTerm(e.Right))
		case ast.OpAnd:
			return vc.NewConjunction(conditionToPredicate(e.Left), conditionToPredicate(e.Right))
		}
	case *ast.CallExpr:
		if fact, ok := booleanPredicateCalls[e.Callee]; ok {
			return vc.NewFact(fact, argNames(e.Args)...)
		}
	}
	return vc.NewAtom(renderExpr(expr))
}

// negatePredicate returns the negation of a predicate, folding comparison operators
// structurally so "¬(x < k)" is carried as "x ≥ k".
func negatePredicate(predicate vc.Predicate) vc.Predicate {
	switch p := predicate.(type) {
	case *vc.Comparison:
		return vc.NewComparison(p.Op.Negated(), p.Lhs, p.Rhs)
	case *vc.Negation:
		return p.Operand
	default:
		return vc.NewNegation(predicate)
	}
}

// argNames returns the identifier names of the provided arguments, rendering
// non-identifier arguments to source text.
func argNames(args []ast.Expression) []string {
	names := make([]string, len(args))
	for i, arg := range args {
		if identifier, ok := arg.(*ast.Identifier); ok {
			names[i] = identifier.Name
		} else {
			names[i] = renderExpr(arg)
		}
	}
	return names
}

// accountName returns the identifier name of a syscall's account argument, or a source
// rendering when the argument is a computed expression.
func accountName(args []ast.Expression, index int) string {
	if index >= len(args) {
		return "?"
	}
	if identifier, ok := args[index].(*ast.Identifier); ok {
		return identifier.Name
	}
	return renderExpr(args[index])
}

// isBalanceRelevant applies the balance heuristic: an operand is balance-relevant if its
// name contains a balance fragment or it is the result of a known balance-reading call.
func isBalanceRelevant(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		return nameLooksBalanceRelevant(e.Name)
	case *ast.CallExpr:
		return balanceReadingCalls[e.Callee]
	case *ast.BinaryExpr:
		return isBalanceRelevant(e.Left) || isBalanceRelevant(e.Right)
	case *ast.UnaryExpr:
		return isBalanceRelevant(e.Operand)
	case *ast.IndexExpr:
		return isBalanceRelevant(e.Array)
	default:
		return false
	}
}

// balanceReadingCalls describes callee names whose results carry balances.
var balanceReadingCalls = map[string]bool{
	"get-lamports":      true,
	"account-lamports":  true,
	"token-balance":     true,
	"get-token-balance": true,
}

// nameLooksBalanceRelevant indicates whether a variable name matches the balance
// heuristic.
func nameLooksBalanceRelevant(name string) bool {
	lowered := strings.ToLower(name)
	for _, fragment := range balanceNameFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}

// renderExpr returns a source-level rendering of an expression for descriptions and
// opaque predicate text.
func renderExpr(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return e.Value.String()
	case *ast.BoolLiteral:
		if e.Value {
			return "true"
		}
		return "false"
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", e.Value)
	case *ast.Identifier:
		return e.Name
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s %s)", e.Op.String(), renderExpr(e.Operand))
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", e.Op.String(), renderExpr(e.Left), renderExpr(e.Right))
	case *ast.CallExpr:
		parts := make([]string, 0, len(e.Args)+1)
		parts = append(parts, e.Callee)
		for _, arg := range e.Args {
			parts = append(parts, renderExpr(arg))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *ast.IndexExpr:
		return fmt.Sprintf("(nth %s %s)", renderExpr(e.Array), renderExpr(e.Index))
	case *ast.ArrayLiteral:
		parts := make([]string, 0, len(e.Elements)+1)
		parts = append(parts, "array")
		for _, element := range e.Elements {
			parts = append(parts, renderExpr(element))
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return "?"
	}
}

// substituteVariable returns a copy of the expression with every occurrence of the named
// identifier replaced by another identifier, used to instantiate refinement predicates at
// their binding site.
func substituteVariable(expr ast.Expression, from string, to string) ast.Expression {
	switch e := expr.(type) {
	case *ast.Identifier:
		if e.Name == from {
			return ast.NewIdentifier(to)
		}
		return e
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: e.Op, Operand: substituteVariable(e.Operand, from, to)}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{
			Op:    e.Op,
			Left:  substituteVariable(e.Left, from, to),
			Right: substituteVariable(e.Right, from, to),
		}
	case *ast.CallExpr:
		args := make([]ast.Expression, len(e.Args))
		for i, arg := range e.Args {
			args[i] = substituteVariable(arg, from, to)
		}
		return &ast.CallExpr{Callee: e.Callee, Args: args}
	case *ast.IndexExpr:
		return &ast.IndexExpr{
			Array: substituteVariable(e.Array, from, to),
			Index: substituteVariable(e.Index, from, to),
		}
	default:
		return expr
	}
}
