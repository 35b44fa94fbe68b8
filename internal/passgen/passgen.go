// Package passgen generates random passwords for new accounts.
package passgen

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"sync"
)

// Charset names the alphabet a password is drawn from
type Charset string

const (
	// CharsetAlpha uses a-z and A-Z
	CharsetAlpha Charset = "alpha"
	// CharsetAlnum uses a-z, A-Z and 0-9
	CharsetAlnum Charset = "alnum"
	// CharsetAlnumSymbols adds punctuation to CharsetAlnum
	CharsetAlnumSymbols Charset = "alnum_symbols"

	// DefaultLength is used when no length is requested
	DefaultLength = 20
)

var (
	ErrInvalidLength  = errors.New("length must be positive")
	ErrUnknownCharset = errors.New("unknown charset")
)

const (
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
	symbols = "!@#$%^&*()-_=+[]{}<>?,.:;/~"
)

var (
	charsets = map[Charset][]rune{
		CharsetAlpha:        []rune(letters),
		CharsetAlnum:        []rune(letters + digits),
		CharsetAlnumSymbols: []rune(letters + digits + symbols),
	}
	randSource io.Reader = rand.Reader
	randMux    sync.RWMutex
)

// ParseCharset validates a charset name; empty selects CharsetAlnum.
func ParseCharset(name string) (Charset, error) {
	if strings.TrimSpace(name) == "" {
		return CharsetAlnum, nil
	}
	c := Charset(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := charsets[c]; !ok {
		return "", ErrUnknownCharset
	}
	return c, nil
}

// SetRandomSource replaces the random source; nil restores crypto/rand.
func SetRandomSource(r io.Reader) {
	randMux.Lock()
	defer randMux.Unlock()
	if r == nil {
		randSource = rand.Reader
		return
	}
	randSource = r
}

// Generate returns a password of length runes drawn uniformly from charset.
func Generate(length int, charset Charset) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	chars, ok := charsets[charset]
	if !ok {
		return "", ErrUnknownCharset
	}

	randMux.RLock()
	src := randSource
	randMux.RUnlock()

	var b strings.Builder
	b.Grow(length)

	for i := 0; i < length; i++ {
		idx, err := randomIndex(src, len(chars))
		if err != nil {
			return "", err
		}
		b.WriteRune(chars[idx])
	}

	return b.String(), nil
}

// randomIndex draws an unbiased index below n by rejection sampling.
func randomIndex(r io.Reader, n int) (int, error) {
	if n <= 0 || n > 65536 {
		return 0, ErrInvalidLength
	}

	if n <= 256 {
		var buf [1]byte
		usable := 256 - (256 % n)
		for {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return 0, err
			}
			if int(buf[0]) < usable {
				return int(buf[0]) % n, nil
			}
		}
	}

	var buf [2]byte
	usable := 65536 - (65536 % n)
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		val := int(binary.BigEndian.Uint16(buf[:]))
		if val < usable {
			return val % n, nil
		}
	}
}
