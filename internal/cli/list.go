package cli

import (
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand(e *env) *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "list [website]",
		Short: "List websites, or the accounts of one website",
		Long: `Without an argument, list every stored website with its number of accounts.
With a website, list its usernames; --show adds the passwords.

Example:
  credvault list
  credvault list github.com
  credvault list github.com --show`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			v, err := openVault(cmd, e, false)
			if err != nil {
				return err
			}
			defer checkDeferredErr(e, &err, "close vault", v.close)

			if len(args) == 0 {
				return runListWebsites(cmd.OutOrStdout(), v)
			}
			return runListAccounts(e, cmd.OutOrStdout(), v, args[0], show)
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Show passwords")

	return cmd
}

func runListWebsites(out io.Writer, v *openedVault) error {
	websites := v.Websites()
	if len(websites) == 0 {
		return writeOutput(out, "No accounts stored\n")
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if err := writeOutput(w, "WEBSITE\tACCOUNTS\n"); err != nil {
		return err
	}
	for _, website := range websites {
		if err := writeOutput(w, "%s\t%d\n", website, len(v.GetAccounts(website))); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return writeOutput(out, "\n%d accounts in %d websites\n", v.Count(), len(websites))
}

func runListAccounts(e *env, out io.Writer, v *openedVault, website string, show bool) error {
	website, err := resolveWebsite(e, out, v, website)
	if err != nil {
		return err
	}

	accounts := v.GetAccounts(website)
	if len(accounts) == 0 {
		return reportUnknownWebsite(out, v, website)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := "USERNAME\n"
	if show {
		header = "USERNAME\tPASSWORD\n"
	}
	if err := writeOutput(w, header); err != nil {
		return err
	}

	for _, acc := range accounts {
		if show {
			err = writeOutput(w, "%s\t%s\n", acc.Username, acc.Password)
		} else {
			err = writeOutput(w, "%s\n", acc.Username)
		}
		if err != nil {
			return err
		}
	}
	return w.Flush()
}

func newSearchCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "List the stored websites closest to a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			v, err := openVault(cmd, e, false)
			if err != nil {
				return err
			}
			defer checkDeferredErr(e, &err, "close vault", v.close)

			return runSearch(cmd.OutOrStdout(), v, args[0])
		},
	}
}

func runSearch(out io.Writer, v *openedVault, query string) error {
	matches := v.TopMatches(query)
	if len(matches) == 0 {
		return writeOutput(out, "No websites stored\n")
	}

	for i, website := range matches {
		if err := writeOutput(out, "%d) %s\n", i+1, website); err != nil {
			return err
		}
	}
	return nil
}
