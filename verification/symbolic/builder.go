package symbolic

import (
	"math/big"

	"github.com/solisp-lang/solisp/compiler/ast"
)

// balanceReadingCalls describes callee names whose results are treated as unresolved
// balance symbols rather than fully unknown values.
var balanceReadingCalls = map[string]bool{
	"get-lamports":      true,
	"account-lamports":  true,
	"token-balance":     true,
	"get-token-balance": true,
}

// BuildEnvironment runs a constant-propagation pre-pass over the program and returns the
// base environment the prover starts from: constants for straight-line literal bindings,
// declared array sizes, and named symbols for everything else. Bindings mutated under
// conditional control flow degrade to unknown, never to a guessed constant. The
// environment is one map for the whole program, so a name bound more than once has no
// single trustworthy value and degrades to unknown as well.
func BuildEnvironment(program *ast.Program) *Environment {
	env := NewEnvironment()
	rebound := reboundNames(program.Statements)
	buildFromStatements(env, program.Statements, false, rebound)
	return env
}

// reboundNames returns the names bound at more than one program point. Their values
// differ between points, so no single entry in the environment can describe them.
func reboundNames(statements []ast.Statement) map[string]bool {
	counts := make(map[string]int)
	countBindings(counts, statements)

	rebound := make(map[string]bool)
	for name, count := range counts {
		if count > 1 {
			rebound[name] = true
		}
	}
	return rebound
}

// countBindings tallies every binding occurrence of every name in the statement tree.
func countBindings(counts map[string]int, statements []ast.Statement) {
	for _, statement := range statements {
		switch stmt := statement.(type) {
		case *ast.LetStatement:
			counts[stmt.Name]++
		case *ast.AssignStatement:
			counts[stmt.Name]++
		case *ast.IfStatement:
			countBindings(counts, stmt.Then)
			countBindings(counts, stmt.Else)
		case *ast.GuardStatement:
			countBindings(counts, stmt.Else)
		case *ast.WhileStatement:
			countBindings(counts, stmt.Body)
		case *ast.ForStatement:
			counts[stmt.Variable]++
			countBindings(counts, stmt.Body)
		case *ast.FunctionStatement:
			for _, param := range stmt.Params {
				counts[param]++
			}
			countBindings(counts, stmt.Body)
		case *ast.BlockStatement:
			countBindings(counts, stmt.Statements)
		}
	}
}

// buildFromStatements folds the provided statements into the environment. The
// conditional flag indicates the statements execute under a branch or loop, in which
// case bindings they touch cannot be trusted as straight-line facts.
func buildFromStatements(env *Environment, statements []ast.Statement, conditional bool, rebound map[string]bool) {
	for _, statement := range statements {
		switch stmt := statement.(type) {
		case *ast.LetStatement:
			bind(env, stmt.Name, stmt.Value, conditional || rebound[stmt.Name])
		case *ast.AssignStatement:
			if conditional || rebound[stmt.Name] {
				// The assignment may or may not run, or the name holds different values at
				// different points; discard whatever was known.
				env.Set(stmt.Name, NewUnknownValue())
			} else {
				bind(env, stmt.Name, stmt.Value, false)
			}
		case *ast.IfStatement:
			buildFromStatements(env, stmt.Then, true, rebound)
			buildFromStatements(env, stmt.Else, true, rebound)
		case *ast.GuardStatement:
			buildFromStatements(env, stmt.Else, true, rebound)
		case *ast.WhileStatement:
			buildFromStatements(env, stmt.Body, true, rebound)
		case *ast.ForStatement:
			env.Set(stmt.Variable, NewUnknownValue())
			buildFromStatements(env, stmt.Body, true, rebound)
		case *ast.FunctionStatement:
			for _, param := range stmt.Params {
				if rebound[param] {
					env.Set(param, NewUnknownValue())
				} else {
					env.Set(param, NewSymbolValue(param))
				}
			}
			buildFromStatements(env, stmt.Body, conditional, rebound)
		case *ast.BlockStatement:
			buildFromStatements(env, stmt.Statements, conditional, rebound)
		}
	}
}

// bind records what is statically known about the named binding's value.
func bind(env *Environment, name string, value ast.Expression, conditional bool) {
	if conditional {
		env.Set(name, NewUnknownValue())
		return
	}

	switch expr := value.(type) {
	case *ast.IntLiteral:
		env.Set(name, NewConstantValue(expr.Value))
	case *ast.ArrayLiteral:
		env.DeclareArray(name, int64(len(expr.Elements)))
		env.Set(name, NewUnknownValue())
	case *ast.CallExpr:
		if balanceReadingCalls[expr.Callee] {
			env.Set(name, NewSymbolValue(name))
		} else if expr.Callee == "make-array" && len(expr.Args) > 0 {
			if size, ok := FoldConstant(env, expr.Args[0]); ok {
				env.DeclareArray(name, size.Int64())
			}
			env.Set(name, NewUnknownValue())
		} else {
			env.Set(name, NewSymbolValue(name))
		}
	default:
		if folded, ok := FoldConstant(env, value); ok {
			env.Set(name, NewConstantValue(folded))
		} else {
			env.Set(name, NewSymbolValue(name))
		}
	}
}

// FoldConstant attempts to evaluate the expression to a single integer using only
// literals and constants already recorded in the environment. The second return value
// indicates success; division by a zero constant does not fold.
func FoldConstant(env *Environment, expr ast.Expression) (*big.Int, bool) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return new(big.Int).Set(e.Value), true
	case *ast.Identifier:
		if value, ok := env.Get(e.Name); ok && value.Kind == ValueConstant {
			return new(big.Int).Set(value.Constant), true
		}
		return nil, false
	case *ast.UnaryExpr:
		if e.Op != ast.OpNeg {
			return nil, false
		}
		operand, ok := FoldConstant(env, e.Operand)
		if !ok {
			return nil, false
		}
		return operand.Neg(operand), true
	case *ast.BinaryExpr:
		left, ok := FoldConstant(env, e.Left)
		if !ok {
			return nil, false
		}
		right, ok := FoldConstant(env, e.Right)
		if !ok {
			return nil, false
		}
		switch e.Op {
		case ast.OpAdd:
			return new(big.Int).Add(left, right), true
		case ast.OpSub:
			return new(big.Int).Sub(left, right), true
		case ast.OpMul:
			return new(big.Int).Mul(left, right), true
		case ast.OpDiv:
			if right.Sign() == 0 {
				return nil, false
			}
			return new(big.Int).Quo(left, right), true
		case ast.OpMod:
			if right.Sign() == 0 {
				return nil, false
			}
			return new(big.Int).Rem(left, right), true
		default:
			return nil, false
		}
	default:
		return nil, false
	}
}
