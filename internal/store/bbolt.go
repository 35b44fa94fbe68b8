package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// BoltFileName is the database file created inside the vault directory
const BoltFileName = "vault.db"

// RecordsBucket holds one key per Record
var RecordsBucket = []byte("records")

// BoltBackend keeps the vault records in a single BoltDB file
type BoltBackend struct {
	db   *bbolt.DB
	path string
}

// NewBoltBackend opens (creating if needed) the BoltDB file in dir
func NewBoltBackend(dir string) (*BoltBackend, error) {
	cleanDir := filepath.Clean(dir)
	if err := os.MkdirAll(cleanDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}

	path := filepath.Join(cleanDir, BoltFileName)
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open vault database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(RecordsBucket); err != nil {
			return fmt.Errorf("failed to create records bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := EnsureFilePermissions(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify vault permissions: %w", err)
	}

	return &BoltBackend{db: db, path: path}, nil
}

func (bb *BoltBackend) check(rec Record) error {
	if bb.db == nil {
		return ErrClosed
	}
	if !rec.valid() {
		return fmt.Errorf("%w: %s", ErrUnknownRecord, rec)
	}
	return nil
}

// Read returns a copy of the stored record
func (bb *BoltBackend) Read(rec Record) ([]byte, error) {
	if err := bb.check(rec); err != nil {
		return nil, err
	}

	var data []byte
	err := bb.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(RecordsBucket).Get([]byte(rec))
		if value == nil {
			return ErrNotFound
		}
		// Values are only valid for the life of the transaction
		data = make([]byte, len(value))
		copy(data, value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write replaces the record in a single transaction
func (bb *BoltBackend) Write(rec Record, data []byte) error {
	if err := bb.check(rec); err != nil {
		return err
	}

	return bb.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(RecordsBucket).Put([]byte(rec), data); err != nil {
			return fmt.Errorf("failed to store %s: %w", rec, err)
		}
		return nil
	})
}

// Exists reports whether the record key is present
func (bb *BoltBackend) Exists(rec Record) (bool, error) {
	if err := bb.check(rec); err != nil {
		return false, err
	}

	var found bool
	err := bb.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(RecordsBucket).Get([]byte(rec)) != nil
		return nil
	})
	return found, err
}

// Location returns the database file path
func (bb *BoltBackend) Location() string {
	return bb.path
}

// Close closes the database and releases its file lock
func (bb *BoltBackend) Close() error {
	if bb.db == nil {
		return nil
	}
	err := bb.db.Close()
	bb.db = nil
	return err
}
