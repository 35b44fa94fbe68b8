// Package config handles the configuration management for the credential vault.
// It provides functionality to load, save, validate and apply configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vault-cli/credvault/internal/domain"
	"github.com/vault-cli/credvault/internal/fuzzy"
	"github.com/vault-cli/credvault/internal/logging"
	"github.com/vault-cli/credvault/internal/store"
	"github.com/vault-cli/credvault/internal/vault"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the vault configuration
type Config struct {
	VaultDir           string        `yaml:"vault_dir"`
	Backend            string        `yaml:"backend"`
	Cipher             string        `yaml:"cipher"`
	KDFIterations      int           `yaml:"kdf_iterations"`
	Fuzzy              FuzzyConfig   `yaml:"fuzzy"`
	Import             ImportConfig  `yaml:"import"`
	ClipboardTTL       time.Duration `yaml:"clipboard_ttl"`
	MaxInitAttempts    int           `yaml:"max_init_attempts"`
	ConfirmDestructive bool          `yaml:"confirm_destructive"`
	LogLevel           string        `yaml:"log_level"`
}

// FuzzyConfig tunes website lookup
type FuzzyConfig struct {
	Threshold int    `yaml:"threshold"`
	Limit     int    `yaml:"limit"`
	Scorer    string `yaml:"scorer"`
}

// ImportConfig selects the columns read from a delimited import file
type ImportConfig struct {
	domain.ImportColumns `yaml:",inline"`
	SkipHeader           bool `yaml:"skip_header"`
}

// DefaultConfigPath returns ~/.config/credvault/config.yaml
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "credvault", "config.yaml")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		VaultDir:      filepath.Join(home, ".local", "share", "credvault"),
		Backend:       string(store.KindDir),
		Cipher:        vault.AlgorithmAESGCM.String(),
		KDFIterations: vault.DefaultIterations,
		Fuzzy: FuzzyConfig{
			Threshold: fuzzy.DefaultThreshold,
			Limit:     fuzzy.DefaultLimit,
			Scorer:    "weighted",
		},
		Import: ImportConfig{
			ImportColumns: domain.DefaultImportColumns(),
		},
		ClipboardTTL:       30 * time.Second,
		MaxInitAttempts:    3,
		ConfirmDestructive: true,
		LogLevel:           "warn",
	}
}

// Validate checks every setting and reports the first one that is out of range
func (c *Config) Validate() error {
	if c.VaultDir == "" {
		return fmt.Errorf("%w: vault_dir must be set", ErrInvalidConfig)
	}
	if _, err := store.ParseKind(c.Backend); err != nil {
		return fmt.Errorf("%w: backend: %w", ErrInvalidConfig, err)
	}
	if _, err := vault.ParseAlgorithm(c.Cipher); err != nil {
		return fmt.Errorf("%w: cipher: %w", ErrInvalidConfig, err)
	}
	if c.KDFIterations < vault.MinIterations || c.KDFIterations > vault.MaxIterations {
		return fmt.Errorf("%w: kdf_iterations must be between %d and %d", ErrInvalidConfig, vault.MinIterations, vault.MaxIterations)
	}
	if c.Fuzzy.Threshold < 0 || c.Fuzzy.Threshold > 100 {
		return fmt.Errorf("%w: fuzzy.threshold must be between 0 and 100", ErrInvalidConfig)
	}
	if c.Fuzzy.Limit <= 0 {
		return fmt.Errorf("%w: fuzzy.limit must be positive", ErrInvalidConfig)
	}
	if _, err := fuzzy.ScorerByName(c.Fuzzy.Scorer); err != nil {
		return fmt.Errorf("%w: fuzzy.scorer: %w", ErrInvalidConfig, err)
	}
	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("%w: import: %w", ErrInvalidConfig, err)
	}
	if c.ClipboardTTL < 0 {
		return fmt.Errorf("%w: clipboard_ttl must not be negative", ErrInvalidConfig)
	}
	if c.MaxInitAttempts <= 0 {
		return fmt.Errorf("%w: max_init_attempts must be positive", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Codec returns the envelope codec for new saves
func (c *Config) Codec() (*vault.Codec, error) {
	alg, err := vault.ParseAlgorithm(c.Cipher)
	if err != nil {
		return nil, err
	}
	return vault.NewCodec(alg, c.KDFIterations), nil
}

// Matcher returns the website matcher
func (c *Config) Matcher() (*fuzzy.Matcher, error) {
	scorer, err := fuzzy.ScorerByName(c.Fuzzy.Scorer)
	if err != nil {
		return nil, err
	}
	m := fuzzy.NewMatcher(c.Fuzzy.Threshold, c.Fuzzy.Limit)
	m.Scorer = scorer
	return m, nil
}

// OpenBackend opens the configured storage backend in VaultDir
func (c *Config) OpenBackend() (store.Backend, error) {
	kind, err := store.ParseKind(c.Backend)
	if err != nil {
		return nil, err
	}
	return store.Open(kind, c.VaultDir)
}

// LoadConfig loads configuration from file or returns default
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveConfig(cfg, configPath); err != nil {
			return cfg, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, configPath string) error {
	cleanPath := filepath.Clean(configPath)

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
