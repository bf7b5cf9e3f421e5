package verification

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/solisp-lang/solisp/compiler/ast"
	"github.com/solisp-lang/solisp/verification/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runResult verifies a small program and returns its result for certificate tests.
func runResult(t *testing.T) *Result {
	program := &ast.Program{Statements: []ast.Statement{
		&ast.GuardStatement{
			Condition: &ast.BinaryExpr{Op: ast.OpGt, Left: ast.NewIdentifier("y"), Right: ast.NewIntLiteral(0)},
			Else:      []ast.Statement{&ast.ReturnStatement{}},
		},
		&ast.LetStatement{Name: "q", Value: &ast.BinaryExpr{
			Op: ast.OpDiv, Left: ast.NewIdentifier("x"), Right: ast.NewIdentifier("y"),
		}},
	}}
	result, err := NewVerifier(config.All()).Verify(context.Background(), program)
	require.NoError(t, err)
	return result
}

// TestCertificateJSONRoundTrip ensures a certificate survives JSON encoding unchanged.
func TestCertificateJSONRoundTrip(t *testing.T) {
	source := []byte("(defun transfer (from to amount) ...)")
	certificate := NewCertificate(source, runResult(t))

	encoded, err := certificate.EncodeJSON()
	require.NoError(t, err)
	decoded, err := DecodeCertificateJSON(encoded)
	require.NoError(t, err)

	assert.EqualValues(t, certificate.RunID, decoded.RunID)
	assert.EqualValues(t, certificate.SourceHash, decoded.SourceHash)
	assert.EqualValues(t, certificate.Entries, decoded.Entries)
	assert.True(t, decoded.Success)
}

// TestCertificateCBORRoundTrip ensures a certificate survives CBOR encoding unchanged
// and stays meaningfully smaller than its JSON form.
func TestCertificateCBORRoundTrip(t *testing.T) {
	source := []byte("(defun transfer (from to amount) ...)")
	certificate := NewCertificate(source, runResult(t))

	encoded, err := certificate.EncodeCBOR()
	require.NoError(t, err)
	decoded, err := DecodeCertificateCBOR(encoded)
	require.NoError(t, err)

	assert.EqualValues(t, certificate.RunID, decoded.RunID)
	assert.EqualValues(t, certificate.Entries, decoded.Entries)

	jsonEncoded, err := certificate.EncodeJSON()
	require.NoError(t, err)
	assert.Less(t, len(encoded), len(jsonEncoded))
}

// TestDecodeRejectsUnknownFormatVersion ensures certificates from a different schema
// version are rejected.
func TestDecodeRejectsUnknownFormatVersion(t *testing.T) {
	certificate := NewCertificate([]byte("src"), runResult(t))
	certificate.FormatVersion = 99

	encoded, err := certificate.EncodeJSON()
	require.NoError(t, err)
	_, err = DecodeCertificateJSON(encoded)
	assert.Error(t, err)
}

// TestHashSourceIsStable ensures the source digest is deterministic and input-sensitive.
func TestHashSourceIsStable(t *testing.T) {
	assert.EqualValues(t, HashSource([]byte("a")), HashSource([]byte("a")))
	assert.NotEqualValues(t, HashSource([]byte("a")), HashSource([]byte("b")))
	assert.Len(t, HashSource([]byte("a")), 64)
}

// TestCertificateStoreRoundTrip ensures certificates persist across store handles, keyed
// by source hash.
func TestCertificateStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certificates.db")
	source := []byte("(defun main () 0)")
	certificate := NewCertificate(source, runResult(t))

	store, err := OpenCertificateStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(certificate))
	require.NoError(t, store.Close())

	store, err = OpenCertificateStore(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Lookup(HashSource(source))
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.EqualValues(t, certificate.RunID, loaded.RunID)
	assert.EqualValues(t, certificate.Entries, loaded.Entries)
}

// TestCertificateStoreLookupMissing ensures looking up an unknown source returns nil
// without error.
func TestCertificateStoreLookupMissing(t *testing.T) {
	store, err := OpenCertificateStore(filepath.Join(t.TempDir(), "certificates.db"))
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Lookup(HashSource([]byte("never seen")))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
