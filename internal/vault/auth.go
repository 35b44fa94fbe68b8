package vault

import (
	"errors"
	"fmt"

	"github.com/vault-cli/credvault/internal/store"
)

var (
	// ErrIntegrity is returned when vault metadata expected in the Ready state is missing or damaged
	ErrIntegrity = errors.New("integrity error")
	// ErrWrongPassword is returned when the master password does not match
	ErrWrongPassword = errors.New("incorrect master password")
	// ErrNotInitialized is returned when no vault has been set up yet
	ErrNotInitialized = errors.New("vault is not initialized")
	// ErrAlreadyInitialized is returned when initializing a Ready vault
	ErrAlreadyInitialized = errors.New("vault is already initialized")
	// ErrPasswordMismatch is returned when the confirmation differs from the password
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrTooManyAttempts is returned when the initialization retry budget is spent
	ErrTooManyAttempts = errors.New("too many attempts")
	// ErrEmptyPassword is returned for a zero-length master password
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// State is the initialization state of a vault.
type State int

const (
	// StateUninitialized means no verifier and no encrypted data exist.
	StateUninitialized State = iota
	// StateReady means the verifier and salt are present.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// InitPrompter collects a new master password and its confirmation.
// attempt starts at 1 and grows after each mismatch.
type InitPrompter interface {
	PromptNewPassword(attempt int) (password, confirmation []byte, err error)
}

// Gate guards the vault: it owns the salt and password verifier records.
type Gate struct {
	backend store.Backend
}

// NewGate creates a gate over the backend
func NewGate(backend store.Backend) *Gate {
	return &Gate{backend: backend}
}

// State inspects the persisted records. A verifier without a salt, or an
// encrypted blob without a verifier, means files were removed out-of-band and
// is reported as ErrIntegrity; recreating them would orphan the blob.
// A lone salt left by an interrupted initialization protects nothing and is
// treated as uninitialized.
func (g *Gate) State() (State, error) {
	hasVerifier, err := g.backend.Exists(store.RecordVerifier)
	if err != nil {
		return 0, fmt.Errorf("failed to check password hash: %w", err)
	}
	hasSalt, err := g.backend.Exists(store.RecordSalt)
	if err != nil {
		return 0, fmt.Errorf("failed to check salt: %w", err)
	}
	hasBlob, err := g.backend.Exists(store.RecordBlob)
	if err != nil {
		return 0, fmt.Errorf("failed to check encrypted data: %w", err)
	}

	switch {
	case hasVerifier && hasSalt:
		return StateReady, nil
	case !hasVerifier && !hasBlob:
		return StateUninitialized, nil
	case hasVerifier:
		return 0, fmt.Errorf("%w: salt missing from %s", ErrIntegrity, g.backend.Location())
	default:
		return 0, fmt.Errorf("%w: password hash missing from %s", ErrIntegrity, g.backend.Location())
	}
}

// Initialize performs a single first-time setup attempt: it stores a fresh
// salt and the verifier digest of password.
func (g *Gate) Initialize(password, confirmation []byte) error {
	state, err := g.State()
	if err != nil {
		return err
	}
	if state == StateReady {
		return ErrAlreadyInitialized
	}

	if len(password) == 0 {
		return ErrEmptyPassword
	}
	if !SecureCompare(password, confirmation) {
		return ErrPasswordMismatch
	}

	salt, err := GenerateSalt()
	if err != nil {
		return err
	}
	if err := g.backend.Write(store.RecordSalt, salt); err != nil {
		return fmt.Errorf("failed to save salt: %w", err)
	}

	// The verifier is written last: its presence is what marks the vault Ready.
	if err := g.backend.Write(store.RecordVerifier, HashPassword(password)); err != nil {
		return fmt.Errorf("failed to save password hash: %w", err)
	}

	return nil
}

// EnsureInitialized runs first-time setup when the vault is uninitialized,
// prompting again after each mismatched confirmation up to maxAttempts times.
// It reports whether a vault was created.
func (g *Gate) EnsureInitialized(p InitPrompter, maxAttempts int) (bool, error) {
	state, err := g.State()
	if err != nil {
		return false, err
	}
	if state == StateReady {
		return false, nil
	}

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		password, confirmation, err := p.PromptNewPassword(attempt)
		if err != nil {
			return false, err
		}

		err = g.Initialize(password, confirmation)
		Zeroize(password)
		Zeroize(confirmation)

		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrEmptyPassword):
			continue
		default:
			return false, err
		}
	}

	return false, fmt.Errorf("%w: %d initialization attempts failed", ErrTooManyAttempts, maxAttempts)
}

// Authenticate checks password against the stored verifier.
func (g *Gate) Authenticate(password []byte) (bool, error) {
	state, err := g.State()
	if err != nil {
		return false, err
	}
	if state == StateUninitialized {
		return false, ErrNotInitialized
	}

	stored, err := g.backend.Read(store.RecordVerifier)
	if err != nil {
		return false, g.missing(store.RecordVerifier, err)
	}
	if len(stored) != VerifierSize {
		return false, fmt.Errorf("%w: password hash has %d bytes", ErrIntegrity, len(stored))
	}

	return SecureCompare(HashPassword(password), stored), nil
}

// Salt returns the persisted key-derivation salt.
func (g *Gate) Salt() ([]byte, error) {
	salt, err := g.backend.Read(store.RecordSalt)
	if err != nil {
		return nil, g.missing(store.RecordSalt, err)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt has %d bytes", ErrIntegrity, len(salt))
	}
	return salt, nil
}

func (g *Gate) missing(rec store.Record, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s missing from %s", ErrIntegrity, rec, g.backend.Location())
	}
	return fmt.Errorf("failed to read %s: %w", rec, err)
}
