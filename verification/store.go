package verification

import (
	"time"

	"github.com/pkg/errors"
	"github.com/solisp-lang/solisp/logging"
	bolt "go.etcd.io/bbolt"
)

// certificatesBucket names the bucket certificates are stored in, keyed by source hash.
var certificatesBucket = []byte("certificates")

// CertificateStore persists certificates in a bbolt database keyed by source hash, so a
// caller can skip reverification of sources whose certificate already records a clean
// run.
type CertificateStore struct {
	// database describes the underlying bbolt handle.
	database *bolt.DB

	// logger describes the store's log output.
	logger *logging.Logger
}

// OpenCertificateStore opens or creates a certificate store at the provided path.
func OpenCertificateStore(path string) (*CertificateStore, error) {
	database, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open certificate store at %s", path)
	}

	err = database.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(certificatesBucket)
		return err
	})
	if err != nil {
		database.Close()
		return nil, errors.Wrap(err, "could not initialize certificate store")
	}

	return &CertificateStore{
		database: database,
		logger:   logging.GlobalLogger.NewSubLogger("module", "certstore"),
	}, nil
}

// Save writes the certificate under its source hash, replacing any previous certificate
// for the same source.
func (s *CertificateStore) Save(certificate *Certificate) error {
	encoded, err := certificate.EncodeCBOR()
	if err != nil {
		return err
	}
	err = s.database.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(certificatesBucket).Put([]byte(certificate.SourceHash), encoded)
	})
	if err != nil {
		return errors.Wrap(err, "could not save certificate")
	}
	s.logger.Debug("saved certificate ", certificate.RunID, " for source ", certificate.SourceHash)
	return nil
}

// Lookup returns the stored certificate for the provided source hash, or nil when none
// exists. A certificate that fails to decode is treated as absent rather than fatal, so
// a corrupted store entry can only cost a reverification.
func (s *CertificateStore) Lookup(sourceHash string) (*Certificate, error) {
	var encoded []byte
	err := s.database.View(func(tx *bolt.Tx) error {
		if value := tx.Bucket(certificatesBucket).Get([]byte(sourceHash)); value != nil {
			encoded = make([]byte, len(value))
			copy(encoded, value)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not read certificate store")
	}
	if encoded == nil {
		return nil, nil
	}

	certificate, err := DecodeCertificateCBOR(encoded)
	if err != nil {
		s.logger.Warn("discarding undecodable certificate for source ", sourceHash, ": ", err)
		return nil, nil
	}
	return certificate, nil
}

// Close releases the underlying database handle.
func (s *CertificateStore) Close() error {
	return s.database.Close()
}
