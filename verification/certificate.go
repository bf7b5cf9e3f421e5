package verification

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/fxamacker/cbor"
	"github.com/pkg/errors"
	"github.com/solisp-lang/solisp/version"
	"golang.org/x/crypto/sha3"
)

// certificateFormatVersion describes the certificate schema version, bumped on any
// incompatible change so consumers can reject records they do not understand.
const certificateFormatVersion = 1

// CertificateEntry describes one condition's verdict inside a certificate.
type CertificateEntry struct {
	// ID describes the condition's identifier.
	ID string `json:"id" cbor:"1,keyasint"`

	// Category describes the condition's risk class.
	Category string `json:"category" cbor:"2,keyasint"`

	// Status describes the verdict.
	Status string `json:"status" cbor:"3,keyasint"`

	// Property describes the Lean-style rendering of the proved claim.
	Property string `json:"property" cbor:"4,keyasint"`

	// Location describes the source position as "file:line:column", when known.
	Location string `json:"location,omitempty" cbor:"5,keyasint,omitempty"`

	// Detail carries the proof sketch, counterexample, reason, or warning matching the
	// status.
	Detail string `json:"detail,omitempty" cbor:"6,keyasint,omitempty"`
}

// Certificate describes a portable, self-contained record of one verification run,
// suitable for audit trails and for skipping reverification of unchanged sources.
type Certificate struct {
	// FormatVersion describes the certificate schema version.
	FormatVersion int `json:"format_version" cbor:"1,keyasint"`

	// RunID describes the unique identifier of the producing run.
	RunID string `json:"run_id" cbor:"2,keyasint"`

	// SourceHash describes the hex-encoded SHA3-256 digest of the verified source.
	SourceHash string `json:"source_hash" cbor:"3,keyasint"`

	// EngineVersion describes the engine build that produced the certificate.
	EngineVersion string `json:"engine_version" cbor:"4,keyasint"`

	// CreatedAt describes when the certificate was produced, in UTC.
	CreatedAt time.Time `json:"created_at" cbor:"5,keyasint"`

	// Success indicates whether the run found no disproved conditions.
	Success bool `json:"success" cbor:"6,keyasint"`

	// Proved, Failed, Unknown, and Advisory carry the run's verdict tallies.
	Proved   int `json:"proved" cbor:"7,keyasint"`
	Failed   int `json:"failed" cbor:"8,keyasint"`
	Unknown  int `json:"unknown" cbor:"9,keyasint"`
	Advisory int `json:"advisory" cbor:"10,keyasint"`

	// Entries describes every condition's verdict, in generation order.
	Entries []CertificateEntry `json:"entries" cbor:"11,keyasint"`
}

// HashSource returns the hex-encoded SHA3-256 digest of a source text, the key
// certificates are stored and looked up under.
func HashSource(source []byte) string {
	digest := sha3.Sum256(source)
	return hex.EncodeToString(digest[:])
}

// NewCertificate builds a certificate for the provided run over the provided source.
func NewCertificate(source []byte, result *Result) *Certificate {
	certificate := &Certificate{
		FormatVersion: certificateFormatVersion,
		RunID:         result.RunID,
		SourceHash:    HashSource(source),
		EngineVersion: version.GetInfo().Short(),
		CreatedAt:     time.Now().UTC(),
		Success:       result.Success,
		Proved:        result.Proved,
		Failed:        result.Failed,
		Unknown:       result.Unknown,
		Advisory:      result.Advisory,
	}

	for _, outcome := range result.Outcomes {
		entry := CertificateEntry{
			ID:       outcome.Condition.ID,
			Category: outcome.Condition.Category.String(),
			Status:   outcome.Result.Status,
			Property: outcome.Condition.PropertyText(),
		}
		if location := outcome.Condition.Location; location != nil {
			entry.Location = location.String()
		}
		switch {
		case outcome.Result.Proved():
			entry.Detail = outcome.Result.ProofSketch
		case outcome.Result.Disproved():
			entry.Detail = outcome.Result.Counterexample
		case outcome.Result.Advisory():
			entry.Detail = outcome.Result.Warning
		default:
			entry.Detail = outcome.Result.Reason
		}
		certificate.Entries = append(certificate.Entries, entry)
	}
	return certificate
}

// EncodeJSON returns the indented JSON encoding of the certificate.
func (c *Certificate) EncodeJSON() ([]byte, error) {
	encoded, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return encoded, nil
}

// EncodeCBOR returns the compact CBOR encoding of the certificate.
func (c *Certificate) EncodeCBOR() ([]byte, error) {
	encoded, err := cbor.Marshal(c, cbor.EncOptions{})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return encoded, nil
}

// DecodeCertificateJSON parses a JSON-encoded certificate and validates its schema
// version.
func DecodeCertificateJSON(encoded []byte) (*Certificate, error) {
	certificate := &Certificate{}
	if err := json.Unmarshal(encoded, certificate); err != nil {
		return nil, errors.WithStack(err)
	}
	return certificate, validateFormatVersion(certificate)
}

// DecodeCertificateCBOR parses a CBOR-encoded certificate and validates its schema
// version.
func DecodeCertificateCBOR(encoded []byte) (*Certificate, error) {
	certificate := &Certificate{}
	if err := cbor.Unmarshal(encoded, certificate); err != nil {
		return nil, errors.WithStack(err)
	}
	return certificate, validateFormatVersion(certificate)
}

// validateFormatVersion rejects certificates from a different schema version.
func validateFormatVersion(certificate *Certificate) error {
	if certificate.FormatVersion != certificateFormatVersion {
		return errors.Errorf("unsupported certificate format version %d, expected %d",
			certificate.FormatVersion, certificateFormatVersion)
	}
	return nil
}
