package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vault-cli/credvault/internal/domain"
	"github.com/vault-cli/credvault/internal/importer"
	"github.com/vault-cli/credvault/internal/passgen"
	"github.com/vault-cli/credvault/internal/util"
	"github.com/vault-cli/credvault/internal/vault"
)

type menuItem struct {
	key   string
	label string
	run   func(e *env, out io.Writer, v *openedVault) error
}

var menuItems = []menuItem{
	{"1", "Add an account", menuAdd},
	{"2", "Copy a password to the clipboard", menuGet},
	{"3", "Show the accounts of a website", menuShow},
	{"4", "List websites", func(e *env, out io.Writer, v *openedVault) error { return runListWebsites(out, v) }},
	{"5", "Search websites", menuSearch},
	{"6", "Modify a password", menuModify},
	{"7", "Delete an account", menuErase},
	{"8", "Delete all accounts", func(e *env, out io.Writer, v *openedVault) error { return runEraseAll(e, out, v) }},
	{"9", "Import accounts from a CSV file", menuImport},
	{"10", "Generate a password", menuGenerate},
}

func newMenuCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu",
		Long: `Start an interactive session. The master password is asked for once and
the vault stays open until you exit. A missing vault is created first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, e)
		},
	}
}

func runMenu(cmd *cobra.Command, e *env) (err error) {
	v, err := openVault(cmd, e, true)
	if err != nil {
		return err
	}
	defer checkDeferredErr(e, &err, "close vault", v.close)

	out := cmd.OutOrStdout()
	for {
		printMenu(out)

		choice, err := e.prompter.Input("Select an option: ")
		if errors.Is(err, ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		if choice == "0" || choice == "q" || choice == "quit" || choice == "exit" {
			return writeOutput(out, "Bye\n")
		}

		item, ok := findMenuItem(choice)
		if !ok {
			fmt.Fprintf(out, "Unknown option: %s\n", choice)
			continue
		}

		err = item.run(e, out, v)
		switch {
		case err == nil:
		case errors.Is(err, ErrAborted):
			return nil
		case errors.Is(err, vault.ErrIntegrity), errors.Is(err, vault.ErrWrongPassword):
			return err
		default:
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

func printMenu(out io.Writer) {
	fmt.Fprintln(out)
	for _, item := range menuItems {
		fmt.Fprintf(out, "%3s) %s\n", item.key, item.label)
	}
	fmt.Fprintf(out, "%3s) %s\n", "0", "Exit")
}

func findMenuItem(key string) (menuItem, bool) {
	for _, item := range menuItems {
		if item.key == key {
			return item, true
		}
	}
	return menuItem{}, false
}

// askRequired prompts until a non-empty answer is given
func askRequired(e *env, out io.Writer, prompt string) (string, error) {
	for {
		answer, err := e.prompter.Input(prompt)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintln(out, "A value is required.")
	}
}

func askLength(e *env) (int, error) {
	answer, err := e.prompter.Input(fmt.Sprintf("Length [%d]: ", passgen.DefaultLength))
	if err != nil {
		return 0, err
	}
	if answer == "" {
		return passgen.DefaultLength, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: length must be a positive number", util.ErrInvalidInput)
	}
	return n, nil
}

func menuAdd(e *env, out io.Writer, v *openedVault) error {
	website, err := askRequired(e, out, "Website: ")
	if err != nil {
		return err
	}
	username, err := askRequired(e, out, "Username: ")
	if err != nil {
		return err
	}

	opts := &secretOptions{charset: string(passgen.CharsetAlnum)}
	generate, err := promptConfirm(e.prompter, "Generate a random password?", false)
	if err != nil {
		return err
	}
	if generate {
		if opts.generate, err = askLength(e); err != nil {
			return err
		}
	}

	return runAdd(e, out, v, website, username, "", opts)
}

func menuGet(e *env, out io.Writer, v *openedVault) error {
	website, err := askRequired(e, out, "Website: ")
	if err != nil {
		return err
	}

	opts := &getOptions{ttl: -1, show: !clipboardIsAvailable()}
	if opts.show {
		fmt.Fprintln(out, "Clipboard not available, printing the password instead.")
	}
	return runGet(e, out, v, website, "", opts)
}

func menuShow(e *env, out io.Writer, v *openedVault) error {
	website, err := askRequired(e, out, "Website: ")
	if err != nil {
		return err
	}
	return runListAccounts(e, out, v, website, true)
}

func menuSearch(e *env, out io.Writer, v *openedVault) error {
	query, err := askRequired(e, out, "Search for: ")
	if err != nil {
		return err
	}
	return runSearch(out, v, query)
}

func menuModify(e *env, out io.Writer, v *openedVault) error {
	website, err := askRequired(e, out, "Website: ")
	if err != nil {
		return err
	}

	opts := &secretOptions{charset: string(passgen.CharsetAlnum)}
	generate, err := promptConfirm(e.prompter, "Generate a random password?", false)
	if err != nil {
		return err
	}
	if generate {
		if opts.generate, err = askLength(e); err != nil {
			return err
		}
	}

	return runModify(e, out, v, website, "", opts)
}

func menuErase(e *env, out io.Writer, v *openedVault) error {
	website, err := askRequired(e, out, "Website: ")
	if err != nil {
		return err
	}
	return runErase(e, out, v, website, "")
}

func menuImport(e *env, out io.Writer, v *openedVault) error {
	path, err := askRequired(e, out, "CSV file: ")
	if err != nil {
		return err
	}

	cols := e.cfg.Import.ImportColumns
	answer, err := e.prompter.Input(fmt.Sprintf("Columns for username,password,website [%d,%d,%d]: ",
		cols.Username, cols.Password, cols.Website))
	if err != nil {
		return err
	}
	if answer != "" {
		if cols, err = domain.ParseColumns(answer); err != nil {
			return err
		}
	}

	return importFile(e, out, v, path, cols, importer.Options{SkipHeader: e.cfg.Import.SkipHeader})
}

func menuGenerate(e *env, out io.Writer, v *openedVault) error {
	length, err := askLength(e)
	if err != nil {
		return err
	}

	opts := &passgenOptions{length: length, charset: string(passgen.CharsetAlnum), ttl: -1}
	return runPassgen(out, opts, e.cfg)
}
