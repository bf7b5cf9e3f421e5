package ast

// BinaryOp describes the operator of a BinaryExpr.
type BinaryOp int

const (
	// OpAdd describes integer addition.
	OpAdd BinaryOp = iota
	// OpSub describes integer subtraction.
	OpSub
	// OpMul describes integer multiplication.
	OpMul
	// OpDiv describes integer division.
	OpDiv
	// OpMod describes the integer remainder operation.
	OpMod
	// OpEq describes the equality comparison.
	OpEq
	// OpNeq describes the inequality comparison.
	OpNeq
	// OpLt describes the less-than comparison.
	OpLt
	// OpLeq describes the less-than-or-equal comparison.
	OpLeq
	// OpGt describes the greater-than comparison.
	OpGt
	// OpGeq describes the greater-than-or-equal comparison.
	OpGeq
	// OpAnd describes boolean conjunction.
	OpAnd
	// OpOr describes boolean disjunction.
	OpOr
	// OpShl describes a left bit shift.
	OpShl
	// OpShr describes a right bit shift.
	OpShr
)

// String returns the source-level spelling of the operator.
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLeq:
		return "<="
	case OpGt:
		return ">"
	case OpGeq:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	default:
		return "?"
	}
}

// IsComparison indicates whether the operator produces a boolean from two integers.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLeq, OpGt, OpGeq:
		return true
	default:
		return false
	}
}

// IsArithmetic indicates whether the operator produces an integer from two integers.
func (op BinaryOp) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpShl, OpShr:
		return true
	default:
		return false
	}
}

// UnaryOp describes the operator of a UnaryExpr.
type UnaryOp int

const (
	// OpNot describes boolean negation.
	OpNot UnaryOp = iota
	// OpNeg describes arithmetic negation.
	OpNeg
)

// String returns the source-level spelling of the operator.
func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "not"
	case OpNeg:
		return "-"
	default:
		return "?"
	}
}
