package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vault-cli/credvault/internal/config"
	"github.com/vault-cli/credvault/internal/passgen"
	"github.com/vault-cli/credvault/internal/util"
)

type passgenOptions struct {
	length  int
	charset string
	copy    bool
	ttl     int
}

func newPassgenCommand(e *env) *cobra.Command {
	opts := &passgenOptions{
		length:  passgen.DefaultLength,
		charset: string(passgen.CharsetAlnum),
		ttl:     -1,
	}

	cmd := &cobra.Command{
		Use:   "passgen",
		Short: "Generate a random password",
		Long: `Generate a random password from a configurable character set, with
optional clipboard support. The vault is not opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPassgen(cmd.OutOrStdout(), opts, e.cfg)
		},
	}

	cmd.Flags().IntVarP(&opts.length, "length", "l", opts.length, "Length of generated password (characters)")
	cmd.Flags().StringVar(&opts.charset, "charset", opts.charset, "Character set (alpha|alnum|alnum_symbols)")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the generated value to the clipboard")
	cmd.Flags().IntVar(&opts.ttl, "ttl", opts.ttl, "Clipboard clear timeout in seconds (-1 to use config default)")

	return cmd
}

func runPassgen(out io.Writer, opts *passgenOptions, conf *config.Config) error {
	charset, err := passgen.ParseCharset(opts.charset)
	if err != nil {
		return fmt.Errorf("%w: %s (valid: alpha, alnum, alnum_symbols)", err, opts.charset)
	}

	if opts.length <= 0 {
		return fmt.Errorf("%w: --length must be positive", util.ErrInvalidInput)
	}

	password, err := passgen.Generate(opts.length, charset)
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}

	return outputPassgen(out, password, opts, conf)
}

func outputPassgen(out io.Writer, secret string, opts *passgenOptions, conf *config.Config) error {
	if !opts.copy {
		return writeOutput(out, "%s\n", secret)
	}

	if !clipboardIsAvailable() {
		return fmt.Errorf("%w: clipboard not available, remove --copy to print instead", util.ErrInvalidInput)
	}

	ttl, err := resolveClipboardTTL(opts.ttl, conf)
	if err != nil {
		return err
	}

	done, err := copyToClipboard(secret, ttl)
	if err != nil {
		return err
	}

	msg := "✓ Password copied to clipboard\n"
	if ttl > 0 {
		msg = fmt.Sprintf("✓ Password copied to clipboard (clears in %s)\n", ttl.Round(time.Second))
	}
	if err := writeOutput(out, "%s", msg); err != nil {
		return err
	}
	<-done
	return nil
}
