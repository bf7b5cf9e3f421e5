// Package symbolic implements the prover's symbolic domain: abstract values over
// arbitrary-precision integers, constraints attached to unresolved symbols, and the
// path-condition stack recording facts established by enclosing control flow.
package symbolic

import (
	"fmt"
	"math/big"
)

// ValueKind describes the shape of a symbolic Value.
type ValueKind int

const (
	// ValueConstant describes a fully known integer.
	ValueConstant ValueKind = iota
	// ValueRange describes an integer known to lie within an inclusive range.
	ValueRange
	// ValueSymbol describes an unresolved named integer carrying a constraint list.
	ValueSymbol
	// ValueUnknown describes an integer about which nothing is known.
	ValueUnknown
)

// Value describes what the prover knows about one variable. All arithmetic over values
// uses big integers so reasoning about 64-bit machine-word overflow cannot itself
// overflow.
type Value struct {
	// Kind describes the shape of the value.
	Kind ValueKind

	// Constant holds the known integer for ValueConstant values.
	Constant *big.Int

	// Lower and Upper hold the inclusive bounds for ValueRange values.
	Lower *big.Int
	Upper *big.Int

	// Name holds the symbol name for ValueSymbol values.
	Name string

	// Constraints holds the facts known about a ValueSymbol value.
	Constraints []Constraint
}

// NewConstantValue returns a constant value. The integer is copied.
func NewConstantValue(value *big.Int) *Value {
	return &Value{Kind: ValueConstant, Constant: new(big.Int).Set(value)}
}

// NewInt64Value returns a constant value for the provided int64.
func NewInt64Value(value int64) *Value {
	return &Value{Kind: ValueConstant, Constant: big.NewInt(value)}
}

// NewRangeValue returns a value bounded by the provided inclusive range.
func NewRangeValue(lower *big.Int, upper *big.Int) *Value {
	return &Value{Kind: ValueRange, Lower: new(big.Int).Set(lower), Upper: new(big.Int).Set(upper)}
}

// NewSymbolValue returns an unresolved named value carrying the provided constraints.
func NewSymbolValue(name string, constraints ...Constraint) *Value {
	return &Value{Kind: ValueSymbol, Name: name, Constraints: constraints}
}

// NewUnknownValue returns a value about which nothing is known.
func NewUnknownValue() *Value {
	return &Value{Kind: ValueUnknown}
}

// Clone returns a deep copy of the value.
func (v *Value) Clone() *Value {
	clone := &Value{Kind: v.Kind, Name: v.Name}
	if v.Constant != nil {
		clone.Constant = new(big.Int).Set(v.Constant)
	}
	if v.Lower != nil {
		clone.Lower = new(big.Int).Set(v.Lower)
	}
	if v.Upper != nil {
		clone.Upper = new(big.Int).Set(v.Upper)
	}
	if v.Constraints != nil {
		clone.Constraints = make([]Constraint, len(v.Constraints))
		copy(clone.Constraints, v.Constraints)
	}
	return clone
}

// String returns a diagnostic rendering of the value.
func (v *Value) String() string {
	switch v.Kind {
	case ValueConstant:
		return v.Constant.String()
	case ValueRange:
		return fmt.Sprintf("[%s, %s]", v.Lower.String(), v.Upper.String())
	case ValueSymbol:
		return fmt.Sprintf("sym(%s)", v.Name)
	default:
		return "unknown"
	}
}

// EntailsNonZero indicates whether the value alone establishes that the variable cannot
// be zero.
func (v *Value) EntailsNonZero() bool {
	zero := big.NewInt(0)
	switch v.Kind {
	case ValueConstant:
		return v.Constant.Sign() != 0
	case ValueRange:
		return v.Lower.Cmp(zero) > 0 || v.Upper.Cmp(zero) < 0
	case ValueSymbol:
		for _, constraint := range v.Constraints {
			switch constraint.Kind {
			case ConstraintNonZero:
				return true
			case ConstraintLowerBound:
				if constraint.Bound.Sign() > 0 {
					return true
				}
			case ConstraintUpperBound:
				if constraint.Bound.Sign() < 0 {
					return true
				}
			case ConstraintEqual:
				if constraint.Bound.Sign() != 0 {
					return true
				}
			case ConstraintNotEqual:
				if constraint.Bound.Sign() == 0 {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// EntailsGeq indicates whether the value alone establishes variable ≥ bound.
func (v *Value) EntailsGeq(bound *big.Int) bool {
	switch v.Kind {
	case ValueConstant:
		return v.Constant.Cmp(bound) >= 0
	case ValueRange:
		return v.Lower.Cmp(bound) >= 0
	case ValueSymbol:
		for _, constraint := range v.Constraints {
			if constraint.Kind == ConstraintLowerBound && constraint.Bound.Cmp(bound) >= 0 {
				return true
			}
			if constraint.Kind == ConstraintEqual && constraint.Bound.Cmp(bound) >= 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// EntailsLt indicates whether the value alone establishes variable < bound.
func (v *Value) EntailsLt(bound *big.Int) bool {
	switch v.Kind {
	case ValueConstant:
		return v.Constant.Cmp(bound) < 0
	case ValueRange:
		return v.Upper.Cmp(bound) < 0
	case ValueSymbol:
		for _, constraint := range v.Constraints {
			if constraint.Kind == ConstraintUpperBound && constraint.Bound.Cmp(bound) < 0 {
				return true
			}
			if constraint.Kind == ConstraintEqual && constraint.Bound.Cmp(bound) < 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// RefutesGeq indicates whether the value alone establishes variable < bound, i.e. that
// variable ≥ bound is definitely false.
func (v *Value) RefutesGeq(bound *big.Int) bool {
	return v.EntailsLt(bound)
}

// RefutesLt indicates whether the value alone establishes variable ≥ bound, i.e. that
// variable < bound is definitely false.
func (v *Value) RefutesLt(bound *big.Int) bool {
	return v.EntailsGeq(bound)
}

// ConstraintKind describes the kind of a symbol Constraint.
type ConstraintKind int

const (
	// ConstraintNonZero describes the fact that the symbol is non-zero.
	ConstraintNonZero ConstraintKind = iota
	// ConstraintLowerBound describes an inclusive lower bound on the symbol.
	ConstraintLowerBound
	// ConstraintUpperBound describes an inclusive upper bound on the symbol.
	ConstraintUpperBound
	// ConstraintEqual describes an exact known value for the symbol.
	ConstraintEqual
	// ConstraintNotEqual describes a value the symbol cannot take.
	ConstraintNotEqual
	// ConstraintGeqVariable describes that the symbol is ≥ another named variable.
	ConstraintGeqVariable
	// ConstraintLtVariable describes that the symbol is < another named variable.
	ConstraintLtVariable
)

// Constraint describes one fact attached to a ValueSymbol value.
type Constraint struct {
	// Kind describes the kind of constraint.
	Kind ConstraintKind

	// Bound holds the integer bound for value-relative constraints.
	Bound *big.Int

	// Other holds the variable name for variable-relative constraints.
	Other string
}

// NewNonZeroConstraint returns a constraint stating the symbol is non-zero.
func NewNonZeroConstraint() Constraint {
	return Constraint{Kind: ConstraintNonZero}
}

// NewLowerBoundConstraint returns a constraint stating symbol ≥ bound.
func NewLowerBoundConstraint(bound *big.Int) Constraint {
	return Constraint{Kind: ConstraintLowerBound, Bound: new(big.Int).Set(bound)}
}

// NewUpperBoundConstraint returns a constraint stating symbol ≤ bound.
func NewUpperBoundConstraint(bound *big.Int) Constraint {
	return Constraint{Kind: ConstraintUpperBound, Bound: new(big.Int).Set(bound)}
}

// NewGeqVariableConstraint returns a constraint stating symbol ≥ the named variable.
func NewGeqVariableConstraint(other string) Constraint {
	return Constraint{Kind: ConstraintGeqVariable, Other: other}
}

// NewLtVariableConstraint returns a constraint stating symbol < the named variable.
func NewLtVariableConstraint(other string) Constraint {
	return Constraint{Kind: ConstraintLtVariable, Other: other}
}
