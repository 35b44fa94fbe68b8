package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newEraseCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "erase <website> [username]",
		Short: "Delete an account",
		Long: `Delete one account. A website without accounts left is removed.

Example:
  credvault erase github.com alice
  credvault erase github.com alice --yes`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			v, err := openVault(cmd, e, false)
			if err != nil {
				return err
			}
			defer checkDeferredErr(e, &err, "close vault", v.close)

			username := ""
			if len(args) == 2 {
				username = args[1]
			}
			return runErase(e, cmd.OutOrStdout(), v, args[0], username)
		},
	}
}

func runErase(e *env, out io.Writer, v *openedVault, website, username string) error {
	website, err := resolveWebsite(e, out, v, website)
	if err != nil {
		return err
	}

	if len(v.GetAccounts(website)) == 0 {
		return reportUnknownWebsite(out, v, website)
	}

	username, ok, err := resolveUsername(e, out, v, website, username)
	if err != nil {
		return err
	}
	if !ok {
		return writeOutput(out, "No matching account for %s\n", website)
	}

	confirmed, err := confirmDestructive(e, fmt.Sprintf("Delete %s from %s?", username, website))
	if err != nil {
		return fmt.Errorf("failed to get confirmation: %w", err)
	}
	if !confirmed {
		return writeOutput(out, "Deletion cancelled\n")
	}

	removed, err := v.RemoveAccount(website, username)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if !removed {
		return writeOutput(out, "No matching account for %s\n", website)
	}

	return writeOutput(out, "✓ Deleted %s from %s\n", username, website)
}

func newEraseAllCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "erase-all",
		Short: "Delete every account",
		Long: `Delete every stored account. The vault and its master password remain.

Example:
  credvault erase-all --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			v, err := openVault(cmd, e, false)
			if err != nil {
				return err
			}
			defer checkDeferredErr(e, &err, "close vault", v.close)

			return runEraseAll(e, cmd.OutOrStdout(), v)
		},
	}
}

func runEraseAll(e *env, out io.Writer, v *openedVault) error {
	confirmed, err := confirmDestructive(e, fmt.Sprintf("Delete all %d accounts?", v.Count()))
	if err != nil {
		return fmt.Errorf("failed to get confirmation: %w", err)
	}
	if !confirmed {
		return writeOutput(out, "Deletion cancelled\n")
	}

	if err := v.ResetAll(); err != nil {
		return fmt.Errorf("failed to delete accounts: %w", err)
	}

	return writeOutput(out, "✓ All accounts deleted\n")
}
