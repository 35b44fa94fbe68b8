package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vault-cli/credvault/internal/clipboard"
	"github.com/vault-cli/credvault/internal/config"
	"github.com/vault-cli/credvault/internal/util"
)

var (
	copyToClipboard      = clipboard.CopyWithTimeout
	clipboardIsAvailable = clipboard.IsAvailable
)

type getOptions struct {
	show bool
	ttl  int
	wait bool
}

func newGetCommand(e *env) *cobra.Command {
	opts := &getOptions{ttl: -1, wait: true}

	cmd := &cobra.Command{
		Use:   "get <website> [username]",
		Short: "Copy a password to the clipboard",
		Long: `Get the password of an account.

By default the password is copied to the clipboard and cleared after
clipboard_ttl; the command waits until then. Use --show to print it
instead. Without a username the only account is used, or you choose one.

Example:
  credvault get github.com
  credvault get gmai alice      # "Did you mean gmail.com?"
  credvault get github.com alice --show`,
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
			return runGet(e, cmd.OutOrStdout(), v, args[0], username, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.show, "show", false, "Print the password instead of copying it")
	cmd.Flags().IntVar(&opts.ttl, "ttl", opts.ttl, "Clipboard clear timeout in seconds (-1 to use config default)")
	cmd.Flags().BoolVar(&opts.wait, "wait", opts.wait, "Wait for the clipboard to be cleared before exiting")

	return cmd
}

func runGet(e *env, out io.Writer, v *openedVault, website, username string, opts *getOptions) error {
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

	password, _ := v.GetPasswordByUsername(website, username)

	if opts.show {
		return writeOutput(out, "%s\n", password)
	}

	if !clipboardIsAvailable() {
		return fmt.Errorf("%w: clipboard not available, use --show to print the password", util.ErrInvalidInput)
	}

	ttl, err := resolveClipboardTTL(opts.ttl, e.cfg)
	if err != nil {
		return err
	}

	done, err := copyToClipboard(password, ttl)
	if err != nil {
		return err
	}

	if ttl > 0 {
		err = writeOutput(out, "✓ Password for %s on %s copied to clipboard (clears in %s)\n", username, website, ttl.Round(time.Second))
	} else {
		err = writeOutput(out, "✓ Password for %s on %s copied to clipboard\n", username, website)
	}
	if err != nil {
		return err
	}

	if opts.wait {
		<-done
	}
	return nil
}

// reportUnknownWebsite lists the closest stored websites for a name with no accounts
func reportUnknownWebsite(out io.Writer, v *openedVault, website string) error {
	if err := writeOutput(out, "No accounts for %s\n", website); err != nil {
		return err
	}

	suggestions := v.TopMatches(website)
	if len(suggestions) == 0 {
		return nil
	}
	return writeOutput(out, "Closest websites: %s\n", strings.Join(suggestions, ", "))
}

func resolveClipboardTTL(override int, conf *config.Config) (time.Duration, error) {
	if override < -1 {
		return 0, fmt.Errorf("%w: --ttl must be -1 (config default) or a non-negative number of seconds", util.ErrInvalidInput)
	}

	if override >= 0 {
		return time.Duration(override) * time.Second, nil
	}

	if conf != nil {
		return conf.ClipboardTTL, nil
	}

	return 30 * time.Second, nil
}
