package util

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vault-cli/credvault/internal/config"
	"github.com/vault-cli/credvault/internal/domain"
	"github.com/vault-cli/credvault/internal/vault"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("disk full"), ExitError},
		{"wrong password", fmt.Errorf("open: %w", vault.ErrWrongPassword), ExitAuthFailed},
		{"too many attempts", vault.ErrTooManyAttempts, ExitAuthFailed},
		{"integrity", fmt.Errorf("gate: %w", vault.ErrIntegrity), ExitIntegrityErr},
		{"bad columns", domain.ErrInvalidColumns, ExitInvalidInput},
		{"invalid text", fmt.Errorf("failed to add account: %w", domain.ErrInvalidText), ExitInvalidInput},
		{"empty website", domain.ErrEmptyWebsite, ExitInvalidInput},
		{"bad config", fmt.Errorf("%w: cipher", config.ErrInvalidConfig), ExitInvalidInput},
		{"usage", fmt.Errorf("%w: website required", ErrInvalidInput), ExitInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, ExitOK, Report(&buf, nil))
	assert.Empty(t, buf.String())

	code := Report(&buf, vault.ErrIntegrity)
	assert.Equal(t, ExitIntegrityErr, code)
	assert.Contains(t, buf.String(), "Error:")
	assert.Contains(t, buf.String(), "backup")
}
