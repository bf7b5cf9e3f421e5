// Package config defines the verification engine's configuration: per-category check
// toggles with named presets, and settings for the optional external prover.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// VerificationProperties describes which checks the VC generator emits obligations for.
// Disabling a toggle suppresses emission for its categories; it never suppresses the
// balance-sensitivity bias (see StrictArithmetic).
type VerificationProperties struct {
	// DivisionSafety describes whether division and modulo operations emit
	// divisor-non-zero obligations.
	DivisionSafety bool `json:"divisionSafety"`

	// ArrayBounds describes whether indexed accesses emit bounds obligations.
	ArrayBounds bool `json:"arrayBounds"`

	// OverflowCheck describes whether additions and multiplications emit machine-word
	// overflow obligations.
	OverflowCheck bool `json:"overflowCheck"`

	// UnderflowCheck describes whether subtractions emit wrap-below-zero obligations.
	UnderflowCheck bool `json:"underflowCheck"`

	// RefinementTypes describes whether refinement-annotated bindings emit predicate
	// obligations.
	RefinementTypes bool `json:"refinementTypes"`

	// BalanceSafety describes whether lamport-mutating operations are tracked and an
	// aggregate conservation obligation is emitted.
	BalanceSafety bool `json:"balanceSafety"`

	// StrictArithmetic describes whether overflow/underflow obligations are emitted for
	// every arithmetic operation. Even when disabled, operands that look balance-relevant
	// still emit them, biasing sensitivity toward financial code.
	StrictArithmetic bool `json:"strictArithmetic"`

	// ExternalProver describes the configuration for the optional Lean fallback used on
	// obligations the built-in prover leaves Unknown.
	ExternalProver ExternalProverConfig `json:"externalProver"`
}

// ExternalProverConfig describes how the external prover bridge locates and invokes the
// Lean toolchain.
type ExternalProverConfig struct {
	// Enabled describes whether unresolved obligations are handed to the external prover.
	Enabled bool `json:"enabled"`

	// Path describes an explicit path to the lean binary. If empty, the binary is located
	// through the system PATH.
	Path string `json:"path"`

	// LibraryPath describes the directory of the companion proof library, exported to the
	// subprocess through LEAN_PATH.
	LibraryPath string `json:"libraryPath"`

	// TimeoutSeconds describes the subprocess timeout. On timeout every obligation of the
	// run is reported Unknown, never silently dropped. A zero value applies the default.
	TimeoutSeconds int `json:"timeoutSeconds"`
}

// All returns a configuration with every check enabled except strict arithmetic.
func All() *VerificationProperties {
	return &VerificationProperties{
		DivisionSafety:  true,
		ArrayBounds:     true,
		OverflowCheck:   true,
		UnderflowCheck:  true,
		RefinementTypes: true,
		BalanceSafety:   true,
	}
}

// None returns a configuration with every check disabled. Only obligations resolved at
// generation time, such as a literal zero divisor, are still emitted.
func None() *VerificationProperties {
	return &VerificationProperties{}
}

// CriticalOnly returns a configuration enabling only the checks whose violations are
// unconditionally exploitable: division, bounds, underflow, and balance conservation.
func CriticalOnly() *VerificationProperties {
	return &VerificationProperties{
		DivisionSafety: true,
		ArrayBounds:    true,
		UnderflowCheck: true,
		BalanceSafety:  true,
	}
}

// Maximum returns a configuration with every check enabled, including strict arithmetic.
func Maximum() *VerificationProperties {
	properties := All()
	properties.StrictArithmetic = true
	return properties
}

// Validate checks the configuration for inconsistencies and returns an error describing
// the first one found.
func (p *VerificationProperties) Validate() error {
	if p.ExternalProver.TimeoutSeconds < 0 {
		return errors.Errorf("invalid external prover timeout: %d, timeouts must be non-negative", p.ExternalProver.TimeoutSeconds)
	}
	if p.ExternalProver.Enabled && p.ExternalProver.LibraryPath == "" {
		return errors.New("external prover is enabled but no proof library path is configured")
	}
	return nil
}

// ReadFile reads a VerificationProperties configuration from the provided JSON file
// path, validating it before returning.
func ReadFile(path string) (*VerificationProperties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Start from the default preset so omitted fields keep their documented defaults.
	properties := All()
	if err = json.Unmarshal(data, properties); err != nil {
		return nil, errors.WithStack(err)
	}

	if err = properties.Validate(); err != nil {
		return nil, err
	}
	return properties, nil
}

// WriteFile writes the configuration to the provided path as indented JSON.
func (p *VerificationProperties) WriteFile(path string) error {
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, data, 0644))
}
