package cli

import (
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/vault-cli/credvault/internal/passgen"
	"github.com/vault-cli/credvault/internal/util"
	"github.com/vault-cli/credvault/internal/vault"
)

type secretOptions struct {
	generate int
	charset  string
}

func (o *secretOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.generate, "generate", "g", 0, "Generate a random password of this length instead of prompting")
	cmd.Flags().StringVar(&o.charset, "charset", string(passgen.CharsetAlnum), "Character set for --generate (alpha|alnum|alnum_symbols)")
}

func newAddCommand(e *env) *cobra.Command {
	opts := &secretOptions{}

	cmd := &cobra.Command{
		Use:   "add <website> <username> [password]",
		Short: "Add an account to the vault",
		Long: `Add an account for a website.

If the website looks like one already stored, you are asked whether you
meant that one. Without a password argument the password is prompted for
twice, or generated with --generate.

Example:
  credvault add github.com alice
  credvault add github.com alice --generate 24
  credvault add example.com bob 'p@ss'`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			v, err := openVault(cmd, e, false)
			if err != nil {
				return err
			}
			defer checkDeferredErr(e, &err, "close vault", v.close)

			password := ""
			if len(args) == 3 {
				password = args[2]
			}
			return runAdd(e, cmd.OutOrStdout(), v, args[0], args[1], password, opts)
		},
	}

	opts.bind(cmd)
	return cmd
}

func runAdd(e *env, out io.Writer, v *openedVault, website, username, password string, opts *secretOptions) error {
	if website == "" || username == "" {
		return fmt.Errorf("%w: website and username are required", util.ErrInvalidInput)
	}

	website, err := resolveWebsite(e, out, v, website)
	if err != nil {
		return err
	}

	if _, exists := v.GetPasswordByUsername(website, username); exists {
		return writeOutput(out, "Account %s already exists for %s, use modify to change its password\n", username, website)
	}

	if password == "" {
		password, err = readNewSecret(e, out, opts)
		if err != nil {
			return err
		}
	}

	added, err := v.AddAccount(website, username, password)
	if err != nil {
		return fmt.Errorf("failed to add account: %w", err)
	}
	if !added {
		return writeOutput(out, "Account %s already exists for %s\n", username, website)
	}

	return writeOutput(out, "✓ Added %s for %s\n", username, website)
}

// readNewSecret generates a password or prompts for one twice
func readNewSecret(e *env, out io.Writer, opts *secretOptions) (string, error) {
	if opts != nil && opts.generate > 0 {
		charset, err := passgen.ParseCharset(opts.charset)
		if err != nil {
			return "", err
		}
		secret, err := passgen.Generate(opts.generate, charset)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		if err := writeOutput(out, "Generated a %d character password\n", opts.generate); err != nil {
			return "", err
		}
		return secret, nil
	}

	secret, err := e.prompter.Password("Password: ")
	if err != nil {
		return "", err
	}
	defer memguard.WipeBytes(secret)

	confirm, err := e.prompter.Password("Confirm password: ")
	if err != nil {
		return "", err
	}
	defer memguard.WipeBytes(confirm)

	if len(secret) == 0 {
		return "", vault.ErrEmptyPassword
	}
	if !vault.SecureCompare(secret, confirm) {
		return "", vault.ErrPasswordMismatch
	}
	return string(secret), nil
}
