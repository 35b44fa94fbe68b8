package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vault-cli/credvault/internal/config"
	"github.com/vault-cli/credvault/internal/passgen"
	"github.com/vault-cli/credvault/internal/util"
)

type testReader struct {
	next byte
}

func (r *testReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}

func TestPassgenGeneratePassword(t *testing.T) {
	passgen.SetRandomSource(&testReader{})
	t.Cleanup(func() { passgen.SetRandomSource(nil) })

	var out bytes.Buffer
	opts := &passgenOptions{length: 24, charset: "alnum", ttl: -1}
	require.NoError(t, runPassgen(&out, opts, config.DefaultConfig()))

	password := strings.TrimSpace(out.String())
	assert.Len(t, password, 24)

	allowed := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for _, r := range password {
		assert.Contains(t, allowed, string(r))
	}
}

func TestPassgenCommand(t *testing.T) {
	h := NewTestHelper(t)

	out, err := h.Run(t, &scriptedPrompter{}, "passgen", "--length", "12", "--charset", "alpha")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 12)
}

func TestPassgenInvalidOptions(t *testing.T) {
	var out bytes.Buffer

	err := runPassgen(&out, &passgenOptions{length: 0, charset: "alnum", ttl: -1}, nil)
	assert.Equal(t, util.ExitInvalidInput, util.ExitCode(err))

	err = runPassgen(&out, &passgenOptions{length: 8, charset: "emoji", ttl: -1}, nil)
	assert.ErrorIs(t, err, passgen.ErrUnknownCharset)
}

func TestPassgenCopyToClipboard(t *testing.T) {
	spy := stubClipboard(t, true)

	cfg := config.DefaultConfig()
	cfg.ClipboardTTL = 45 * time.Second

	var out bytes.Buffer
	opts := &passgenOptions{length: 16, charset: "alnum", copy: true, ttl: -1}
	require.NoError(t, runPassgen(&out, opts, cfg))

	assert.True(t, spy.called)
	assert.Len(t, spy.secret, 16)
	assert.Equal(t, 45*time.Second, spy.ttl)
	assert.Contains(t, out.String(), "clears in 45s")
	assert.NotContains(t, out.String(), spy.secret)
}

func TestResolveClipboardTTL(t *testing.T) {
	ttl, err := resolveClipboardTTL(10, nil)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, ttl)

	ttl, err = resolveClipboardTTL(-1, nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, ttl)

	_, err = resolveClipboardTTL(-5, nil)
	assert.Error(t, err)
}
