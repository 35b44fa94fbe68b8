// Package store persists the raw vault records: the salt, the password
// verifier and the encrypted account blob. It knows nothing about their
// contents; encryption and authentication live in package vault.
package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Error variables for vault store operations
var (
	// ErrNotFound is returned when a record has never been written
	ErrNotFound = errors.New("record not found")
	// ErrUnknownRecord is returned for a record name outside the vault layout
	ErrUnknownRecord = errors.New("unknown record")
	// ErrClosed is returned when the backend has been closed
	ErrClosed = errors.New("store is closed")
	// ErrUnknownBackend is returned for an unsupported backend kind
	ErrUnknownBackend = errors.New("unknown backend")
)

// Record names one persisted vault item.
type Record string

const (
	// RecordSalt holds the 16 raw salt bytes (unencrypted)
	RecordSalt Record = "salt"
	// RecordVerifier holds the 32-byte password digest (unencrypted)
	RecordVerifier Record = "password_hash"
	// RecordBlob holds the sealed account map
	RecordBlob Record = "passwords"
)

// Records lists every record of the vault layout.
var Records = []Record{RecordSalt, RecordVerifier, RecordBlob}

func (r Record) valid() bool {
	switch r {
	case RecordSalt, RecordVerifier, RecordBlob:
		return true
	}
	return false
}

// Backend defines the interface for vault storage operations
type Backend interface {
	// Read returns the record contents or ErrNotFound.
	Read(rec Record) ([]byte, error)
	// Write replaces the record wholesale.
	Write(rec Record, data []byte) error
	// Exists reports whether the record has been written.
	Exists(rec Record) (bool, error)
	// Location describes where the vault lives, for messages.
	Location() string
	// Close releases any resources held by the backend.
	Close() error
}

// Kind selects a Backend implementation.
type Kind string

const (
	KindDir  Kind = "dir"
	KindBolt Kind = "bolt"
)

// ParseKind validates a backend name from configuration.
func ParseKind(name string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(name))) {
	case "", KindDir:
		return KindDir, nil
	case KindBolt:
		return KindBolt, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
}

// Open opens the backend of the given kind rooted at dir.
func Open(kind Kind, dir string) (Backend, error) {
	switch kind {
	case KindDir, "":
		return NewDirBackend(dir)
	case KindBolt:
		return NewBoltBackend(dir)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, kind)
	}
}

// EnsureFilePermissions drops any group or other access from the file at path
func EnsureFilePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.Mode().Perm()&0o077 != 0 {
		return os.Chmod(path, 0o600)
	}
	return nil
}
