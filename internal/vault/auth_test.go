package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vault-cli/credvault/internal/store"
)

// scriptedInit answers PromptNewPassword from a list of pairs
type scriptedInit struct {
	pairs [][2]string
	calls []int
}

func (s *scriptedInit) PromptNewPassword(attempt int) ([]byte, []byte, error) {
	s.calls = append(s.calls, attempt)
	pair := s.pairs[0]
	s.pairs = s.pairs[1:]
	return []byte(pair[0]), []byte(pair[1]), nil
}

func newTestGate(t *testing.T) (*Gate, store.Backend) {
	t.Helper()
	backend, err := store.NewDirBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return NewGate(backend), backend
}

func TestGateInitializeAndAuthenticate(t *testing.T) {
	gate, backend := newTestGate(t)

	state, err := gate.State()
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, state)

	_, err = gate.Authenticate([]byte("Secr3t!"))
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, gate.Initialize([]byte("Secr3t!"), []byte("Secr3t!")))

	state, err = gate.State()
	require.NoError(t, err)
	assert.Equal(t, StateReady, state)

	verifier, err := backend.Read(store.RecordVerifier)
	require.NoError(t, err)
	assert.Equal(t, HashPassword([]byte("Secr3t!")), verifier)

	salt, err := gate.Salt()
	require.NoError(t, err)
	assert.Len(t, salt, SaltSize)

	ok, err := gate.Authenticate([]byte("Secr3t!"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.Authenticate([]byte("wrong"))
	require.NoError(t, err)
	assert.False(t, ok)

	err = gate.Initialize([]byte("other"), []byte("other"))
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestGateInitializeRejects(t *testing.T) {
	gate, _ := newTestGate(t)

	assert.ErrorIs(t, gate.Initialize([]byte("a"), []byte("b")), ErrPasswordMismatch)
	assert.ErrorIs(t, gate.Initialize(nil, nil), ErrEmptyPassword)

	state, err := gate.State()
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, state)
}

func TestGateEnsureInitializedRetries(t *testing.T) {
	gate, _ := newTestGate(t)

	prompter := &scriptedInit{pairs: [][2]string{
		{"one", "two"},
		{"", ""},
		{"Secr3t!", "Secr3t!"},
	}}

	created, err := gate.EnsureInitialized(prompter, 3)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []int{1, 2, 3}, prompter.calls)

	// Ready vaults are left alone without prompting
	created, err = gate.EnsureInitialized(prompter, 3)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, prompter.calls, 3)
}

func TestGateEnsureInitializedGivesUp(t *testing.T) {
	gate, _ := newTestGate(t)

	prompter := &scriptedInit{pairs: [][2]string{{"a", "b"}, {"c", "d"}}}
	_, err := gate.EnsureInitialized(prompter, 2)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	state, err := gate.State()
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, state)
}

func TestGateEnsureInitializedSingleAttemptMinimum(t *testing.T) {
	gate, _ := newTestGate(t)

	prompter := &scriptedInit{pairs: [][2]string{{"a", "b"}}}
	_, err := gate.EnsureInitialized(prompter, 0)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	assert.Equal(t, []int{1}, prompter.calls)
}

func TestGateIntegrityErrors(t *testing.T) {
	tests := []struct {
		name    string
		records []store.Record
		want    error
	}{
		{"verifier without salt", []store.Record{store.RecordVerifier}, ErrIntegrity},
		{"blob without verifier", []store.Record{store.RecordSalt, store.RecordBlob}, ErrIntegrity},
		{"blob alone", []store.Record{store.RecordBlob}, ErrIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, backend := newTestGate(t)
			for _, rec := range tt.records {
				require.NoError(t, backend.Write(rec, []byte("x")))
			}

			_, err := gate.State()
			assert.ErrorIs(t, err, tt.want)

			_, err = gate.Authenticate([]byte("pw"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGateLoneSaltIsUninitialized(t *testing.T) {
	gate, backend := newTestGate(t)
	require.NoError(t, backend.Write(store.RecordSalt, make([]byte, SaltSize)))

	state, err := gate.State()
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, state)

	require.NoError(t, gate.Initialize([]byte("pw"), []byte("pw")))
}

func TestGateDamagedRecords(t *testing.T) {
	gate, backend := newTestGate(t)
	require.NoError(t, gate.Initialize([]byte("pw"), []byte("pw")))

	require.NoError(t, backend.Write(store.RecordVerifier, []byte("short")))
	_, err := gate.Authenticate([]byte("pw"))
	assert.ErrorIs(t, err, ErrIntegrity)

	require.NoError(t, backend.Write(store.RecordSalt, []byte("short")))
	_, err = gate.Salt()
	assert.ErrorIs(t, err, ErrIntegrity)
}
