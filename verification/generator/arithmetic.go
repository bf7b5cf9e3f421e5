package generator

import (
	"fmt"
	"math"
	"math/big"

	"github.com/solisp-lang/solisp/compiler/ast"
	"github.com/solisp-lang/solisp/verification/vc"
)

// maxU64 describes the largest value representable in the target's 64-bit machine word.
// The engine reasons with big integers so bounds like this never wrap during analysis.
var maxU64 = new(big.Int).SetUint64(math.MaxUint64)

// minI64 describes the smallest value representable as a signed 64-bit integer.
var minI64 = big.NewInt(math.MinInt64)

// wordBits describes the machine word width, bounding shift amounts.
var wordBits = big.NewInt(64)

// emitArithmeticObligations emits the category-specific obligations for one binary
// arithmetic operation. Purely static arithmetic (both operands literal) cannot fail at
// runtime and emits nothing, with one exception: a literal-zero divisor is a guaranteed
// fault and always emits, flagged as such.
func (g *Generator) emitArithmeticObligations(ctx *analysisContext, expr *ast.BinaryExpr) {
	if !expr.Op.IsArithmetic() {
		return
	}

	_, leftIsLiteral := expr.Left.(*ast.IntLiteral)
	rightLiteral, rightIsLiteral := expr.Right.(*ast.IntLiteral)
	bothLiteral := leftIsLiteral && rightIsLiteral
	balanceRelevant := isBalanceRelevant(expr.Left) || isBalanceRelevant(expr.Right)

	switch expr.Op {
	case ast.OpDiv, ast.OpMod:
		category := vc.CategoryDivisionByZero
		operation := "division"
		if expr.Op == ast.OpMod {
			category = vc.CategoryModuloByZero
			operation = "modulo"
		}

		if rightIsLiteral && rightLiteral.Value.Sign() == 0 {
			// Guaranteed failure: emitted regardless of configuration so it can never be
			// silenced.
			ctx.emit(category,
				fmt.Sprintf("%s by constant zero in %s always faults", operation, renderExpr(expr)),
				expr.Location(),
				vc.NewComparison(vc.CmpNeq, exprToTerm(expr.Right), vc.Int64Term(0)),
				"decide")
			return
		}
		if !ctx.properties.DivisionSafety || bothLiteral {
			return
		}
		tactic := "assumption"
		if rightIsLiteral {
			tactic = "decide"
		}
		ctx.emit(category,
			fmt.Sprintf("divisor %s of %s is non-zero", renderExpr(expr.Right), operation),
			expr.Location(),
			vc.NewComparison(vc.CmpNeq, exprToTerm(expr.Right), vc.Int64Term(0)),
			tactic)

	case ast.OpAdd, ast.OpMul:
		// Overflow obligations are emitted under strict arithmetic; balance-relevant
		// operands emit unconditionally even when the strict flag is off, biasing
		// sensitivity toward financial code.
		if bothLiteral || !ctx.properties.OverflowCheck {
			return
		}
		if !ctx.properties.StrictArithmetic && !balanceRelevant {
			return
		}
		result := vc.AddTerm(exprToTerm(expr.Left), exprToTerm(expr.Right))
		if expr.Op == ast.OpMul {
			result = vc.MulTerm(exprToTerm(expr.Left), exprToTerm(expr.Right))
		}
		ctx.emit(vc.CategoryIntegerOverflow,
			fmt.Sprintf("result of %s fits the 64-bit machine word", renderExpr(expr)),
			expr.Location(),
			vc.NewComparison(vc.CmpLeq, result, vc.ConstTerm(maxU64)),
			"omega")

	case ast.OpSub:
		if bothLiteral || !ctx.properties.UnderflowCheck {
			return
		}
		if !ctx.properties.StrictArithmetic && !balanceRelevant {
			return
		}
		ctx.emit(vc.CategoryIntegerUnderflow,
			fmt.Sprintf("%s does not wrap below zero", renderExpr(expr)),
			expr.Location(),
			vc.NewComparison(vc.CmpGeq,
				vc.NatCastTerm(exprToTerm(expr.Left)),
				vc.NatCastTerm(exprToTerm(expr.Right))),
			"omega")

	case ast.OpShl, ast.OpShr:
		if bothLiteral || !ctx.properties.StrictArithmetic {
			return
		}
		ctx.emit(vc.CategoryShiftRange,
			fmt.Sprintf("shift amount %s is below the word width", renderExpr(expr.Right)),
			expr.Location(),
			vc.NewComparison(vc.CmpLt, exprToTerm(expr.Right), vc.ConstTerm(wordBits)),
			"omega")
	}
}

// emitNegationObligation emits the signed-overflow obligation for a unary negation,
// which faults on the single value whose negation is unrepresentable.
func (g *Generator) emitNegationObligation(ctx *analysisContext, expr *ast.UnaryExpr) {
	if expr.Op != ast.OpNeg || !ctx.properties.StrictArithmetic {
		return
	}
	if _, isLiteral := expr.Operand.(*ast.IntLiteral); isLiteral {
		return
	}
	ctx.emit(vc.CategorySignedOverflow,
		fmt.Sprintf("negation operand %s is not the minimum signed value", renderExpr(expr.Operand)),
		expr.Location(),
		vc.NewComparison(vc.CmpNeq, exprToTerm(expr.Operand), vc.ConstTerm(minI64)),
		"decide")
}
