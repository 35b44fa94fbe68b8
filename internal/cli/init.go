package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vault-cli/credvault/internal/vault"
)

func newInitCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new vault",
		Long: `Create a new vault by choosing a master password.

The password is asked for twice. A mismatch is retried up to
max_init_attempts times. The password itself is never stored, only a
one-way digest used to verify it.

Example:
  credvault init
  credvault init --vault-dir ~/secrets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, e)
		},
	}
}

func runInit(cmd *cobra.Command, e *env) error {
	backend, gate, state, err := openBackend(e)
	if err != nil {
		return err
	}
	defer backend.Close()

	if state == vault.StateReady {
		return fmt.Errorf("%w at %s", vault.ErrAlreadyInitialized, backend.Location())
	}

	if _, err := ensureVault(e, cmd.ErrOrStderr(), gate); err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), "✓ Vault created at %s\n", backend.Location())
}

func newVerifyCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the master password and the encrypted data",
		Long: `Verify asks for the master password, checks it against the stored digest
and decrypts the accounts. It changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, e)
		},
	}
}

func runVerify(cmd *cobra.Command, e *env) (err error) {
	v, err := openVault(cmd, e, false)
	if err != nil {
		return err
	}
	defer checkDeferredErr(e, &err, "close vault", v.close)

	return writeOutput(cmd.OutOrStdout(), "✓ Master password verified (%d accounts, %d websites, %s)\n",
		v.Count(), len(v.Websites()), v.Status())
}
