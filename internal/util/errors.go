// Package util provides the exit code mapping shared by the credvault commands.
package util

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vault-cli/credvault/internal/config"
	"github.com/vault-cli/credvault/internal/domain"
	"github.com/vault-cli/credvault/internal/fuzzy"
	"github.com/vault-cli/credvault/internal/passgen"
	"github.com/vault-cli/credvault/internal/vault"
)

// Exit codes returned by the credvault binary
const (
	ExitOK           = 0
	ExitError        = 1
	ExitInvalidInput = 2
	ExitAuthFailed   = 3
	ExitIntegrityErr = 4
)

// ErrInvalidInput marks a usage error detected by a command
var ErrInvalidInput = errors.New("invalid input")

// ExitCode maps an error onto the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, vault.ErrIntegrity):
		return ExitIntegrityErr
	case errors.Is(err, vault.ErrWrongPassword),
		errors.Is(err, vault.ErrNotInitialized),
		errors.Is(err, vault.ErrTooManyAttempts):
		return ExitAuthFailed
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, vault.ErrEmptyPassword),
		errors.Is(err, vault.ErrUnknownAlgorithm),
		errors.Is(err, domain.ErrInvalidColumns),
		errors.Is(err, domain.ErrInvalidText),
		errors.Is(err, domain.ErrEmptyWebsite),
		errors.Is(err, passgen.ErrInvalidLength),
		errors.Is(err, passgen.ErrUnknownCharset),
		errors.Is(err, fuzzy.ErrUnknownScorer),
		errors.Is(err, config.ErrInvalidConfig):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

// Report writes err to w with a hint for integrity failures and returns the
// exit code for it.
func Report(w io.Writer, err error) int {
	code := ExitCode(err)
	if code == ExitOK {
		return code
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	if code == ExitIntegrityErr {
		fmt.Fprintln(w, "The vault directory holds a partial set of files. Restore it from a backup or remove it to start over.")
	}
	return code
}

// HandleError reports err on stderr and exits with the matching code
func HandleError(err error) {
	if err == nil {
		return
	}
	os.Exit(Report(os.Stderr, err))
}
