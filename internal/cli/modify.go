package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newModifyCommand(e *env) *cobra.Command {
	opts := &secretOptions{}

	cmd := &cobra.Command{
		Use:   "modify <website> [username]",
		Short: "Change the password of an account",
		Long: `Replace the password of an existing account. The new password is prompted
for twice, or generated with --generate.

Example:
  credvault modify github.com alice
  credvault modify github.com alice --generate 32`,
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
			return runModify(e, cmd.OutOrStdout(), v, args[0], username, opts)
		},
	}

	opts.bind(cmd)
	return cmd
}

func runModify(e *env, out io.Writer, v *openedVault, website, username string, opts *secretOptions) error {
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

	password, err := readNewSecret(e, out, opts)
	if err != nil {
		return err
	}

	modified, err := v.ModifyPassword(website, username, password)
	if err != nil {
		return fmt.Errorf("failed to modify password: %w", err)
	}
	if !modified {
		return writeOutput(out, "Password for %s on %s is unchanged\n", username, website)
	}

	return writeOutput(out, "✓ Password for %s on %s updated\n", username, website)
}
