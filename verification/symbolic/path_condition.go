package symbolic

import (
	"fmt"
	"math/big"
)

// PathConstraintKind describes the kind of fact a PathCondition records about its
// variable.
type PathConstraintKind int

const (
	// PathIsNonZero describes the fact that the variable is non-zero.
	PathIsNonZero PathConstraintKind = iota
	// PathGeq describes the fact that the variable is ≥ an integer bound.
	PathGeq
	// PathLt describes the fact that the variable is < an integer bound.
	PathLt
	// PathEq describes the fact that the variable equals an integer.
	PathEq
	// PathNeq describes the fact that the variable differs from an integer.
	PathNeq
	// PathGeqVariable describes the fact that the variable is ≥ another named variable.
	PathGeqVariable
	// PathLtVariable describes the fact that the variable is < another named variable.
	PathLtVariable
)

// PathConstraint describes the payload of a PathCondition.
type PathConstraint struct {
	// Kind describes the kind of constraint.
	Kind PathConstraintKind

	// Bound holds the integer bound for value-relative constraints.
	Bound *big.Int

	// Other holds the variable name for variable-relative constraints.
	Other string
}

// NonZeroPathConstraint returns a constraint stating the variable is non-zero.
func NonZeroPathConstraint() PathConstraint {
	return PathConstraint{Kind: PathIsNonZero}
}

// GeqPathConstraint returns a constraint stating the variable is ≥ bound.
func GeqPathConstraint(bound *big.Int) PathConstraint {
	return PathConstraint{Kind: PathGeq, Bound: new(big.Int).Set(bound)}
}

// LtPathConstraint returns a constraint stating the variable is < bound.
func LtPathConstraint(bound *big.Int) PathConstraint {
	return PathConstraint{Kind: PathLt, Bound: new(big.Int).Set(bound)}
}

// EqPathConstraint returns a constraint stating the variable equals bound.
func EqPathConstraint(bound *big.Int) PathConstraint {
	return PathConstraint{Kind: PathEq, Bound: new(big.Int).Set(bound)}
}

// NeqPathConstraint returns a constraint stating the variable differs from bound.
func NeqPathConstraint(bound *big.Int) PathConstraint {
	return PathConstraint{Kind: PathNeq, Bound: new(big.Int).Set(bound)}
}

// GeqVariablePathConstraint returns a constraint stating the variable is ≥ other.
func GeqVariablePathConstraint(other string) PathConstraint {
	return PathConstraint{Kind: PathGeqVariable, Other: other}
}

// LtVariablePathConstraint returns a constraint stating the variable is < other.
func LtVariablePathConstraint(other string) PathConstraint {
	return PathConstraint{Kind: PathLtVariable, Other: other}
}

// String returns a diagnostic rendering of the constraint.
func (c PathConstraint) String() string {
	switch c.Kind {
	case PathIsNonZero:
		return "≠ 0"
	case PathGeq:
		return "≥ " + c.Bound.String()
	case PathLt:
		return "< " + c.Bound.String()
	case PathEq:
		return "= " + c.Bound.String()
	case PathNeq:
		return "≠ " + c.Bound.String()
	case PathGeqVariable:
		return "≥ " + c.Other
	case PathLtVariable:
		return "< " + c.Other
	default:
		return "?"
	}
}

// PathCondition describes one fact established by a guard, if, or while condition
// currently in scope, attached to a named variable.
type PathCondition struct {
	// Variable describes the variable the fact ranges over.
	Variable string

	// Constraint describes the fact.
	Constraint PathConstraint
}

// String returns a diagnostic rendering of the path condition.
func (p PathCondition) String() string {
	return fmt.Sprintf("%s %s", p.Variable, p.Constraint.String())
}
