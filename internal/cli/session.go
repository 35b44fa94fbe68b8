package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vault-cli/credvault/internal/session"
	"github.com/vault-cli/credvault/internal/store"
	"github.com/vault-cli/credvault/internal/vault"
)

// openedVault is an authenticated session together with its backend
type openedVault struct {
	*session.Session
	backend store.Backend
}

func (v *openedVault) close() error {
	v.Session.Close()
	return v.backend.Close()
}

// openBackend opens the configured backend and reports its gate state
func openBackend(e *env) (store.Backend, *vault.Gate, vault.State, error) {
	backend, err := e.cfg.OpenBackend()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to open vault: %w", err)
	}

	gate := vault.NewGate(backend)
	state, err := gate.State()
	if err != nil {
		backend.Close()
		return nil, nil, 0, err
	}
	return backend, gate, state, nil
}

// ensureVault runs first-time setup when needed and reports whether it did
func ensureVault(e *env, out io.Writer, gate *vault.Gate) (bool, error) {
	prompter := newPasswordPrompter{p: e.prompter, out: out, max: e.cfg.MaxInitAttempts}
	created, err := gate.EnsureInitialized(prompter, e.cfg.MaxInitAttempts)
	if err != nil {
		return false, err
	}
	if created {
		e.logger.Info("vault initialized", "location", e.cfg.VaultDir)
	}
	return created, nil
}

// openVault prompts for the master password and opens a session. With
// initialize set, an empty vault directory is set up first.
func openVault(cmd *cobra.Command, e *env, initialize bool) (*openedVault, error) {
	backend, gate, state, err := openBackend(e)
	if err != nil {
		return nil, err
	}

	if state == vault.StateUninitialized {
		if !initialize {
			backend.Close()
			return nil, fmt.Errorf("%w: run 'credvault init' first", vault.ErrNotInitialized)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "No vault found, creating a new one.")
		if _, err := ensureVault(e, cmd.ErrOrStderr(), gate); err != nil {
			backend.Close()
			return nil, err
		}
	}

	password, err := e.prompter.Password("Master password: ")
	if err != nil {
		backend.Close()
		return nil, err
	}

	codec, err := e.cfg.Codec()
	if err != nil {
		backend.Close()
		return nil, err
	}
	matcher, err := e.cfg.Matcher()
	if err != nil {
		backend.Close()
		return nil, err
	}

	s, status, err := session.Open(backend, password, session.Options{
		Codec:   codec,
		Matcher: matcher,
		Logger:  e.logger,
	})
	if err != nil {
		backend.Close()
		if errors.Is(err, vault.ErrDecryptionFailed) {
			return nil, fmt.Errorf("%w; the encrypted data does not match the password hash and may be corrupted", err)
		}
		return nil, err
	}

	if status == session.LoadedRecovered {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: the stored accounts could not be read and the vault was opened empty.")
		fmt.Fprintln(cmd.ErrOrStderr(), "The next change will overwrite the unreadable data.")
	}

	return &openedVault{Session: s, backend: backend}, nil
}

// resolveWebsite maps a typed website onto a stored one, asking before it
// substitutes a fuzzy match. Unknown names come back unchanged.
func resolveWebsite(e *env, out io.Writer, v *openedVault, query string) (string, error) {
	if slices.Contains(v.Websites(), query) {
		return query, nil
	}

	best := v.BestMatch(query)
	if best == query {
		return query, nil
	}
	if e.assumeYes {
		fmt.Fprintf(out, "Using %s\n", best)
		return best, nil
	}

	ok, err := promptConfirm(e.prompter, fmt.Sprintf("Did you mean %s?", best), true)
	if err != nil {
		return "", err
	}
	if ok {
		return best, nil
	}
	return query, nil
}

// resolveUsername picks the account under website. An empty username
// selects the only account or asks when there are several.
func resolveUsername(e *env, out io.Writer, v *openedVault, website, username string) (string, bool, error) {
	accounts := v.GetAccounts(website)
	if username != "" {
		for _, acc := range accounts {
			if acc.Username == username {
				return username, true, nil
			}
		}
		return "", false, nil
	}

	switch len(accounts) {
	case 0:
		return "", false, nil
	case 1:
		return accounts[0].Username, true, nil
	}

	names := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		names = append(names, acc.Username)
	}
	return promptChoice(e.prompter, out, fmt.Sprintf("Accounts for %s:", website), names)
}

// confirmDestructive asks before an irreversible change unless --yes was
// given or confirmations are disabled.
func confirmDestructive(e *env, prompt string) (bool, error) {
	if e.assumeYes || !e.cfg.ConfirmDestructive {
		return true, nil
	}
	return promptConfirm(e.prompter, prompt, false)
}
