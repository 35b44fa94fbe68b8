package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DirBackend keeps each record in its own file inside the vault directory:
// salt, password_hash and passwords.
type DirBackend struct {
	dir    string
	closed bool
}

// NewDirBackend creates the vault directory if needed and returns a backend
// rooted at it.
func NewDirBackend(dir string) (*DirBackend, error) {
	cleanDir := filepath.Clean(dir)
	if err := os.MkdirAll(cleanDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}
	return &DirBackend{dir: cleanDir}, nil
}

func (d *DirBackend) path(rec Record) (string, error) {
	if d.closed {
		return "", ErrClosed
	}
	if !rec.valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownRecord, rec)
	}
	return filepath.Join(d.dir, string(rec)), nil
}

// Read returns the contents of the record file
func (d *DirBackend) Read(rec Record) ([]byte, error) {
	path, err := d.path(rec)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", rec, err)
	}
	return data, nil
}

// Write replaces the record file atomically with owner-only permissions
func (d *DirBackend) Write(rec Record, data []byte) error {
	path, err := d.path(rec)
	if err != nil {
		return err
	}

	if err := d.writeRecord(rec, path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", rec, err)
	}
	return nil
}

// writeRecord stages data in a hidden 0600 temp file next to the record,
// syncs it and renames it over path. On failure the previous record file is
// left as it was and the temp file is removed.
func (d *DirBackend) writeRecord(rec Record, path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(d.dir, "."+string(rec)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to stage record: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o600); err != nil {
		return fmt.Errorf("failed to restrict staged record: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to stage record: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync staged record: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close staged record: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace record: %w", err)
	}
	return nil
}

// Exists reports whether the record file is present
func (d *DirBackend) Exists(rec Record) (bool, error) {
	path, err := d.path(rec)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Location returns the vault directory
func (d *DirBackend) Location() string {
	return d.dir
}

// Close marks the backend closed; files need no cleanup
func (d *DirBackend) Close() error {
	d.closed = true
	return nil
}
