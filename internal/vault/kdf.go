package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the derived key length (AES-256 / XChaCha20).
	KeySize = 32
	// SaltSize is the length of the persisted salt.
	SaltSize = 16
	// VerifierSize is the length of the persisted password digest.
	VerifierSize = sha256.Size

	// DefaultIterations is the PBKDF2 work factor for new envelopes.
	DefaultIterations = 100000
	// MinIterations is the lowest work factor DeriveKey will use.
	MinIterations = 100000
	// MaxIterations is the highest work factor DeriveKey will use or a blob
	// header may carry.
	MaxIterations = 10000000
)

// GenerateSalt creates a cryptographically secure random salt
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// clampIterations keeps a work factor within MinIterations..MaxIterations
func clampIterations(iterations int) int {
	switch {
	case iterations < MinIterations:
		return MinIterations
	case iterations > MaxIterations:
		return MaxIterations
	}
	return iterations
}

// DeriveKey derives a symmetric key from the master password and salt using
// PBKDF2-HMAC-SHA256. The iteration count is clamped to
// MinIterations..MaxIterations. The caller owns the returned key and must
// Zeroize it.
func DeriveKey(password, salt []byte, iterations int) []byte {
	return pbkdf2.Key(password, salt, clampIterations(iterations), KeySize, sha256.New)
}

// HashPassword returns the one-way verifier digest of the master password.
// It is independent of DeriveKey: the verifier never yields key material.
func HashPassword(password []byte) []byte {
	sum := sha256.Sum256(password)
	return sum[:]
}

// Zeroize securely clears a byte slice
func Zeroize(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// SecureCompare performs constant-time comparison of two byte slices
func SecureCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
