// Package session holds an authenticated vault in memory. A Session is
// created by Open once the master password has been verified, mediates every
// read and write of the account map, and persists the whole map after each
// change.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/awnumar/memguard"

	"github.com/vault-cli/credvault/internal/domain"
	"github.com/vault-cli/credvault/internal/fuzzy"
	"github.com/vault-cli/credvault/internal/store"
	"github.com/vault-cli/credvault/internal/vault"
)

// ErrClosed is returned by mutations on a closed session
var ErrClosed = errors.New("session is closed")

// LoadStatus tells the caller how the account map was obtained.
type LoadStatus int

const (
	// LoadedExisting means the encrypted data was decrypted and parsed.
	LoadedExisting LoadStatus = iota
	// LoadedEmpty means no encrypted data exists yet.
	LoadedEmpty
	// LoadedRecovered means the data decrypted but did not parse; the
	// session started from an empty map and the next save replaces it.
	LoadedRecovered
)

func (s LoadStatus) String() string {
	switch s {
	case LoadedExisting:
		return "existing"
	case LoadedEmpty:
		return "empty"
	case LoadedRecovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// Options configure a session. Zero values select the defaults.
type Options struct {
	Codec   *vault.Codec
	Matcher *fuzzy.Matcher
	Logger  *slog.Logger
}

// Session owns the decrypted account map for the lifetime of one
// authenticated use of the vault. It does not own the backend.
type Session struct {
	backend  store.Backend
	gate     *vault.Gate
	codec    *vault.Codec
	matcher  *fuzzy.Matcher
	logger   *slog.Logger
	password *memguard.Enclave
	accounts domain.AccountMap
	status   LoadStatus
}

// Open verifies password against the vault's verifier and loads the account
// map. The password buffer is wiped before Open returns, on every path.
func Open(backend store.Backend, password []byte, opts Options) (*Session, LoadStatus, error) {
	defer memguard.WipeBytes(password)

	if len(password) == 0 {
		return nil, 0, vault.ErrEmptyPassword
	}

	s := &Session{
		backend: backend,
		gate:    vault.NewGate(backend),
		codec:   opts.Codec,
		matcher: opts.Matcher,
		logger:  opts.Logger,
	}
	if s.codec == nil {
		s.codec = vault.NewDefaultCodec()
	}
	if s.matcher == nil {
		s.matcher = fuzzy.NewDefaultMatcher()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	ok, err := s.gate.Authenticate(password)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		s.logger.Debug("master password rejected by verifier", "location", backend.Location())
		return nil, 0, vault.ErrWrongPassword
	}

	// NewEnclave copies the password into encrypted memory and wipes the source
	s.password = memguard.NewEnclave(password)

	status, err := s.Load()
	if err != nil {
		s.Close()
		return nil, 0, err
	}

	return s, status, nil
}

// withKey derives the data key, hands it to fn and wipes it afterwards,
// whatever fn returns.
func (s *Session) withKey(iterations int, fn func(key []byte) error) error {
	salt, err := s.gate.Salt()
	if err != nil {
		return err
	}

	buf, err := s.password.Open()
	if err != nil {
		return fmt.Errorf("failed to open password enclave: %w", err)
	}
	key := vault.DeriveKey(buf.Bytes(), salt, iterations)
	buf.Destroy()
	defer memguard.WipeBytes(key)

	return fn(key)
}

// Load replaces the in-memory map with the persisted one. A missing blob
// yields an empty map. A blob that fails authentication is reported as
// ErrWrongPassword; it is never read as plaintext.
func (s *Session) Load() (LoadStatus, error) {
	if s.password == nil {
		return 0, ErrClosed
	}

	blob, err := s.backend.Read(store.RecordBlob)
	if errors.Is(err, store.ErrNotFound) {
		s.accounts = domain.NewAccountMap()
		s.status = LoadedEmpty
		s.logger.Debug("no encrypted data yet, starting empty", "location", s.backend.Location())
		return s.status, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read encrypted data: %w", err)
	}

	iterations := s.codec.Iterations()
	if header, _, err := vault.ParseHeader(blob); err == nil {
		iterations = int(header.Iterations)
	}

	var plaintext []byte
	err = s.withKey(iterations, func(key []byte) error {
		var openErr error
		plaintext, openErr = s.codec.Open(key, blob)
		return openErr
	})
	if err != nil {
		if errors.Is(err, vault.ErrDecryptionFailed) {
			// The verifier accepted the password, so the data file disagrees with it
			s.logger.Warn("encrypted data failed authentication after password verification; the vault file may be corrupted",
				"location", s.backend.Location())
			return 0, fmt.Errorf("%w: %w", vault.ErrWrongPassword, err)
		}
		return 0, err
	}
	defer memguard.WipeBytes(plaintext)

	accounts, err := domain.DecodeAccountMap(plaintext)
	if err != nil {
		s.logger.Warn("decrypted data is not a valid account map, continuing with an empty vault",
			"location", s.backend.Location(), "error", err)
		s.accounts = domain.NewAccountMap()
		s.status = LoadedRecovered
		return s.status, nil
	}

	s.accounts = accounts
	s.status = LoadedExisting
	s.logger.Debug("vault loaded", "websites", len(accounts), "accounts", accounts.Count())
	return s.status, nil
}

// Status returns how the current map was loaded
func (s *Session) Status() LoadStatus {
	return s.status
}

// Save seals the whole account map and replaces the stored blob.
func (s *Session) Save() error {
	if s.password == nil {
		return ErrClosed
	}
	return s.save(s.accounts)
}

func (s *Session) save(accounts domain.AccountMap) error {
	plaintext, err := domain.EncodeAccountMap(accounts)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(plaintext)

	var blob []byte
	err = s.withKey(s.codec.Iterations(), func(key []byte) error {
		var sealErr error
		blob, sealErr = s.codec.Seal(key, plaintext)
		return sealErr
	})
	if err != nil {
		return fmt.Errorf("failed to encrypt accounts: %w", err)
	}

	if err := s.backend.Write(store.RecordBlob, blob); err != nil {
		return fmt.Errorf("failed to save encrypted data: %w", err)
	}

	s.logger.Debug("vault saved", "websites", len(accounts), "algorithm", s.codec.Algorithm().String())
	return nil
}

// mutate applies change to a copy of the map and commits it only once the
// copy has been persisted, so a failed save leaves memory and disk as they
// were. Unchanged maps are not saved.
func (s *Session) mutate(change func(m domain.AccountMap) bool) (bool, error) {
	if s.password == nil {
		return false, ErrClosed
	}

	next := s.accounts.Clone()
	if !change(next) {
		return false, nil
	}

	if err := s.save(next); err != nil {
		return false, err
	}

	s.accounts = next
	return true, nil
}

// Close discards the password and the decrypted accounts.
func (s *Session) Close() {
	s.password = nil
	s.accounts = nil
}
