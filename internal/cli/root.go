package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vault-cli/credvault/internal/config"
	"github.com/vault-cli/credvault/internal/logging"
)

// env carries the state shared by every command of one invocation
type env struct {
	cfgFile   string
	vaultDir  string
	backend   string
	verbose   bool
	assumeYes bool

	cfg      *config.Config
	logger   *slog.Logger
	prompter Prompter
}

// NewRootCommand builds the command tree. Prompts are answered by p.
func NewRootCommand(p Prompter) *cobra.Command {
	e := &env{prompter: p}

	rootCmd := &cobra.Command{
		Use:   "credvault",
		Short: "A local, single-user encrypted credential vault",
		Long: `Credvault keeps website, username and password triples in a local
directory, encrypted under a key derived from a master password.

Features:
- PBKDF2-SHA256 key derivation with AES-256-GCM or XChaCha20-Poly1305
- Fuzzy website lookup ("Did you mean gmail.com?")
- CSV import with configurable columns
- Password generation and clipboard copy with auto-clear

Run without a subcommand to start the interactive menu.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, e)
		},
	}

	rootCmd.PersistentFlags().StringVar(&e.cfgFile, "config", "", "config file (default is $HOME/.config/credvault/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&e.vaultDir, "vault-dir", "", "vault directory (overrides vault_dir)")
	rootCmd.PersistentFlags().StringVar(&e.backend, "backend", "", "storage backend: dir or bolt (overrides backend)")
	rootCmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&e.assumeYes, "yes", "y", false, "answer yes to every confirmation")

	rootCmd.AddCommand(
		newInitCommand(e),
		newVerifyCommand(e),
		newAddCommand(e),
		newGetCommand(e),
		newListCommand(e),
		newSearchCommand(e),
		newModifyCommand(e),
		newEraseCommand(e),
		newEraseAllCommand(e),
		newImportCommand(e),
		newPassgenCommand(e),
		newMenuCommand(e),
	)

	return rootCmd
}

// Execute runs the command line against the terminal.
func Execute() error {
	return NewRootCommand(NewTerminalPrompter(os.Stdin, os.Stderr)).Execute()
}

func (e *env) load(cmd *cobra.Command) error {
	if e.cfgFile == "" {
		e.cfgFile = config.DefaultConfigPath()
	}

	cfg, err := config.LoadConfig(e.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if e.vaultDir != "" {
		cfg.VaultDir = e.vaultDir
	}
	if e.backend != "" {
		cfg.Backend = e.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if e.verbose {
		level = slog.LevelDebug
	}

	e.cfg = cfg
	e.logger = logging.New(cmd.ErrOrStderr(), level)
	e.logger.Debug("configuration loaded", "config", e.cfgFile, "vault_dir", cfg.VaultDir, "backend", cfg.Backend)
	return nil
}
