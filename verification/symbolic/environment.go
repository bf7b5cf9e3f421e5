package symbolic

import (
	"math/big"
)

// Environment describes the prover's view of a program: a mapping of variable names to
// symbolic values, a mapping of array names to their declared sizes, and the stack of
// path conditions currently in scope.
type Environment struct {
	// values describes the variable → symbolic value mapping.
	values map[string]*Value

	// arraySizes describes the array name → declared element count mapping.
	arraySizes map[string]int64

	// pathConditions describes the facts established by enclosing control flow, in the
	// order they were pushed.
	pathConditions []PathCondition
}

// NewEnvironment returns an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		values:     make(map[string]*Value),
		arraySizes: make(map[string]int64),
	}
}

// Clone returns a deep copy of the environment. Each prove call operates on a private
// clone so facts derived for one condition can never leak into another.
func (e *Environment) Clone() *Environment {
	clone := &Environment{
		values:         make(map[string]*Value, len(e.values)),
		arraySizes:     make(map[string]int64, len(e.arraySizes)),
		pathConditions: make([]PathCondition, len(e.pathConditions)),
	}
	for name, value := range e.values {
		clone.values[name] = value.Clone()
	}
	for name, size := range e.arraySizes {
		clone.arraySizes[name] = size
	}
	copy(clone.pathConditions, e.pathConditions)
	return clone
}

// Set records a symbolic value for the named variable.
func (e *Environment) Set(name string, value *Value) {
	e.values[name] = value
}

// Get returns the symbolic value of the named variable, if one is recorded.
func (e *Environment) Get(name string) (*Value, bool) {
	value, ok := e.values[name]
	return value, ok
}

// DeclareArray records the declared element count of the named array.
func (e *Environment) DeclareArray(name string, size int64) {
	e.arraySizes[name] = size
}

// ArraySize returns the declared element count of the named array, if one is recorded.
func (e *Environment) ArraySize(name string) (int64, bool) {
	size, ok := e.arraySizes[name]
	return size, ok
}

// PathConditions returns the path conditions currently in scope, oldest first. The
// returned slice is owned by the environment and must not be mutated.
func (e *Environment) PathConditions() []PathCondition {
	return e.pathConditions
}

// ConditionsFor returns the in-scope path conditions attached to the named variable.
func (e *Environment) ConditionsFor(variable string) []PathConstraint {
	var constraints []PathConstraint
	for _, condition := range e.pathConditions {
		if condition.Variable == variable {
			constraints = append(constraints, condition.Constraint)
		}
	}
	return constraints
}

// PushPathCondition records a fact established by a guard condition and opportunistically
// narrows the matching environment entry. Popping does not retroactively widen the entry,
// so callers must pair pushes and pops with the exact scope that introduced the fact.
func (e *Environment) PushPathCondition(variable string, constraint PathConstraint) {
	e.pathConditions = append(e.pathConditions, PathCondition{Variable: variable, Constraint: constraint})
	e.narrow(variable, constraint)
}

// PopPathCondition removes the most recently pushed path condition. Popping an empty
// stack is a no-op.
func (e *Environment) PopPathCondition() {
	if len(e.pathConditions) == 0 {
		return
	}
	e.pathConditions = e.pathConditions[:len(e.pathConditions)-1]
}

// narrow tightens the recorded value of the named variable using the provided fact.
func (e *Environment) narrow(variable string, constraint PathConstraint) {
	value, ok := e.values[variable]
	if !ok || value.Kind == ValueUnknown {
		// Nothing recorded yet: start a symbol carrying the fact.
		value = NewSymbolValue(variable)
		e.values[variable] = value
	}

	switch value.Kind {
	case ValueConstant:
		// A constant cannot be narrowed further.
		return
	case ValueRange:
		switch constraint.Kind {
		case PathGeq:
			if value.Lower.Cmp(constraint.Bound) < 0 {
				value.Lower = new(big.Int).Set(constraint.Bound)
			}
		case PathLt:
			upper := new(big.Int).Sub(constraint.Bound, big.NewInt(1))
			if value.Upper.Cmp(upper) > 0 {
				value.Upper = upper
			}
		case PathEq:
			e.values[variable] = NewConstantValue(constraint.Bound)
		case PathIsNonZero, PathNeq:
			excluded := big.NewInt(0)
			if constraint.Kind == PathNeq {
				excluded = constraint.Bound
			}
			// Excluding an endpoint tightens the corresponding bound by one.
			if value.Lower.Cmp(excluded) == 0 {
				value.Lower = new(big.Int).Add(value.Lower, big.NewInt(1))
			}
			if value.Upper.Cmp(excluded) == 0 {
				value.Upper = new(big.Int).Sub(value.Upper, big.NewInt(1))
			}
		}
	case ValueSymbol:
		value.Constraints = append(value.Constraints, constraintFromPath(constraint))
	}
}

// constraintFromPath converts a path constraint into the equivalent symbol constraint.
func constraintFromPath(constraint PathConstraint) Constraint {
	switch constraint.Kind {
	case PathIsNonZero:
		return Constraint{Kind: ConstraintNonZero}
	case PathGeq:
		return Constraint{Kind: ConstraintLowerBound, Bound: new(big.Int).Set(constraint.Bound)}
	case PathLt:
		return Constraint{Kind: ConstraintUpperBound, Bound: new(big.Int).Sub(constraint.Bound, big.NewInt(1))}
	case PathEq:
		return Constraint{Kind: ConstraintEqual, Bound: new(big.Int).Set(constraint.Bound)}
	case PathNeq:
		return Constraint{Kind: ConstraintNotEqual, Bound: new(big.Int).Set(constraint.Bound)}
	case PathGeqVariable:
		return Constraint{Kind: ConstraintGeqVariable, Other: constraint.Other}
	case PathLtVariable:
		return Constraint{Kind: ConstraintLtVariable, Other: constraint.Other}
	default:
		return Constraint{Kind: ConstraintNonZero}
	}
}
