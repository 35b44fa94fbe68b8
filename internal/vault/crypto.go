package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// EnvelopeVersion is the current blob format version
	EnvelopeVersion = 1

	// version(1) + algorithm(1) + iterations(4) + nonce length(1)
	headerFixedSize = 7
)

var (
	ErrInvalidEnvelope  = errors.New("invalid envelope format")
	ErrInvalidVersion   = errors.New("unsupported envelope version")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrInvalidKeySize   = errors.New("invalid key size")
	ErrUnknownAlgorithm = errors.New("unknown cipher algorithm")
)

// Algorithm identifies the AEAD construction used for a blob.
type Algorithm uint8

const (
	AlgorithmAESGCM            Algorithm = 1
	AlgorithmXChaCha20Poly1305 Algorithm = 2
)

// String returns the configuration name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmAESGCM:
		return "aes-256-gcm"
	case AlgorithmXChaCha20Poly1305:
		return "xchacha20-poly1305"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ParseAlgorithm maps a configuration name onto an Algorithm.
// An empty name selects AES-256-GCM.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "aes-256-gcm", "aes":
		return AlgorithmAESGCM, nil
	case "xchacha20-poly1305", "xchacha20", "chacha":
		return AlgorithmXChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
}

// Header is the unencrypted prefix of a sealed blob. It carries everything
// Open needs besides the key, and is authenticated as additional data.
type Header struct {
	Version    uint8
	Algorithm  Algorithm
	Iterations uint32
	Nonce      []byte
}

// Codec seals and opens the vault payload.
type Codec struct {
	algorithm  Algorithm
	iterations int
}

// NewCodec creates a codec that seals with the given algorithm and records
// iterations as the KDF work factor in every header it writes.
func NewCodec(algorithm Algorithm, iterations int) *Codec {
	return &Codec{
		algorithm:  algorithm,
		iterations: clampIterations(iterations),
	}
}

// NewDefaultCodec creates a codec with AES-256-GCM and the default work factor
func NewDefaultCodec() *Codec {
	return NewCodec(AlgorithmAESGCM, DefaultIterations)
}

// Iterations returns the work factor new blobs are sealed with.
func (c *Codec) Iterations() int {
	return c.iterations
}

// Algorithm returns the algorithm new blobs are sealed with.
func (c *Codec) Algorithm() Algorithm {
	return c.algorithm
}

func newAEAD(algorithm Algorithm, key []byte) (cipher.AEAD, error) {
	switch algorithm {
	case AlgorithmAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create cipher: %w", err)
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCM: %w", err)
		}
		return gcm, nil
	case AlgorithmXChaCha20Poly1305:
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create XChaCha20-Poly1305: %w", err)
		}
		return aead, nil
	default:
		return nil, ErrUnknownAlgorithm
	}
}

// Seal encrypts plaintext under key. The result is self-describing:
// header | ciphertext | tag.
func (c *Codec) Seal(key, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	aead, err := newAEAD(c.algorithm, key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	header := encodeHeader(&Header{
		Version:    EnvelopeVersion,
		Algorithm:  c.algorithm,
		Iterations: uint32(c.iterations),
		Nonce:      nonce,
	})

	blob := make([]byte, len(header), len(header)+len(plaintext)+aead.Overhead())
	copy(blob, header)
	return aead.Seal(blob, nonce, plaintext, header), nil
}

// Open verifies and decrypts a blob produced by Seal. Every failure to
// authenticate, including a truncated or mangled header, is reported as
// ErrDecryptionFailed.
func (c *Codec) Open(key, blob []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	header, offset, err := ParseHeader(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	aead, err := newAEAD(header.Algorithm, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	if len(header.Nonce) != aead.NonceSize() || len(blob)-offset < aead.Overhead() {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrInvalidEnvelope)
	}

	plaintext, err := aead.Open(nil, header.Nonce, blob[offset:], blob[:offset])
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

func encodeHeader(h *Header) []byte {
	buf := make([]byte, headerFixedSize, headerFixedSize+len(h.Nonce))
	buf[0] = h.Version
	buf[1] = uint8(h.Algorithm)
	binary.LittleEndian.PutUint32(buf[2:6], h.Iterations)
	buf[6] = uint8(len(h.Nonce))
	return append(buf, h.Nonce...)
}

// ParseHeader decodes the unencrypted header of a blob and returns the offset
// at which the ciphertext begins.
func ParseHeader(blob []byte) (*Header, int, error) {
	if len(blob) < headerFixedSize {
		return nil, 0, ErrInvalidEnvelope
	}

	if blob[0] != EnvelopeVersion {
		return nil, 0, ErrInvalidVersion
	}

	algorithm := Algorithm(blob[1])
	if algorithm != AlgorithmAESGCM && algorithm != AlgorithmXChaCha20Poly1305 {
		return nil, 0, ErrUnknownAlgorithm
	}

	iterations := binary.LittleEndian.Uint32(blob[2:6])
	if iterations < MinIterations || iterations > MaxIterations {
		return nil, 0, fmt.Errorf("%w: work factor %d out of range", ErrInvalidEnvelope, iterations)
	}

	nonceLen := int(blob[6])
	offset := headerFixedSize + nonceLen
	if len(blob) < offset {
		return nil, 0, ErrInvalidEnvelope
	}

	nonce := make([]byte, nonceLen)
	copy(nonce, blob[headerFixedSize:offset])

	return &Header{
		Version:    blob[0],
		Algorithm:  algorithm,
		Iterations: iterations,
		Nonce:      nonce,
	}, offset, nil
}
