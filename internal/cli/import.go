package cli

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/vault-cli/credvault/internal/domain"
	"github.com/vault-cli/credvault/internal/importer"
	"github.com/vault-cli/credvault/internal/util"
)

type importOptions struct {
	columns    string
	delimiter  string
	skipHeader bool
}

func newImportCommand(e *env) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import accounts from a CSV file",
		Long: `Import accounts from a delimited file such as a browser password export.

--columns gives the zero-based username, password and website fields,
defaulting to the import section of the config (1,2,5). Records with a
missing field are skipped and reported; accounts that already exist are
left untouched.

Example:
  credvault import passwords.csv
  credvault import export.csv --columns 0,1,2 --skip-header
  credvault import export.tsv --delimiter '\t'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			v, err := openVault(cmd, e, false)
			if err != nil {
				return err
			}
			defer checkDeferredErr(e, &err, "close vault", v.close)

			return runImport(cmd, e, v, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.columns, "columns", "", "Username, password and website field indices, e.g. 1,2,5")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", ",", "Field delimiter (a single character, or \\t)")
	cmd.Flags().BoolVar(&opts.skipHeader, "skip-header", false, "Skip the first line")

	return cmd
}

func (o *importOptions) resolve(cmd *cobra.Command, e *env) (domain.ImportColumns, importer.Options, error) {
	cols := e.cfg.Import.ImportColumns
	if o.columns != "" {
		parsed, err := domain.ParseColumns(o.columns)
		if err != nil {
			return cols, importer.Options{}, err
		}
		cols = parsed
	}

	delim := o.delimiter
	if delim == `\t` {
		delim = "\t"
	}
	comma, size := utf8.DecodeRuneInString(delim)
	if size == 0 || size != len(delim) {
		return cols, importer.Options{}, fmt.Errorf("%w: delimiter must be a single character", util.ErrInvalidInput)
	}

	skip := e.cfg.Import.SkipHeader
	if cmd != nil && cmd.Flags().Changed("skip-header") {
		skip = o.skipHeader
	}

	return cols, importer.Options{Comma: comma, SkipHeader: skip}, nil
}

func runImport(cmd *cobra.Command, e *env, v *openedVault, path string, opts *importOptions) error {
	cols, readOpts, err := opts.resolve(cmd, e)
	if err != nil {
		return err
	}
	return importFile(e, cmd.OutOrStdout(), v, path, cols, readOpts)
}

func importFile(e *env, out io.Writer, v *openedVault, path string, cols domain.ImportColumns, readOpts importer.Options) error {
	result, err := importer.ReadFile(path, readOpts)
	if err != nil {
		return err
	}

	for _, rejected := range result.Rejected {
		e.logger.Warn("unreadable import line", "line", rejected.Line, "reason", rejected.Reason)
	}

	report, err := v.ImportRecords(result.Records, cols)
	if err != nil {
		return fmt.Errorf("failed to import accounts: %w", err)
	}

	if err := writeOutput(out, "✓ Imported %d accounts from %s\n", report.Imported, path); err != nil {
		return err
	}
	if report.Duplicates > 0 {
		if err := writeOutput(out, "  %d already present\n", report.Duplicates); err != nil {
			return err
		}
	}
	if skipped := len(report.Skipped) + len(result.Rejected); skipped > 0 {
		if err := writeOutput(out, "  %d skipped (run with --verbose for details)\n", skipped); err != nil {
			return err
		}
	}
	return nil
}
