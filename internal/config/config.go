package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andy/jumplog/internal/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Instructor details printed on invoice documents
	Instructor InstructorConfig `yaml:"instructor"`

	Log logger.LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type InvoiceConfig struct {
	OutputDir       string `yaml:"output_dir"`       // Directory for sent invoice documents
	StartingNumber  int    `yaml:"starting_number"`  // Numbering floor, first invoice is this + 1
	DefaultQuantity int    `yaml:"default_quantity"` // Quantity per line item
}

type InstructorConfig struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
	License string `yaml:"license"` // USPA/ratings shown under the name
}

func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "jumplog")
}

// DefaultConfigPath returns ~/.config/jumplog/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := baseDir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "jumplog.db"),
		},
		Invoice: InvoiceConfig{
			OutputDir:       filepath.Join(dir, "invoices"),
			StartingNumber:  1000,
			DefaultQuantity: 1,
		},
		Log: logger.DefaultConfig(),
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Invoice.DefaultQuantity <= 0 {
		cfg.Invoice.DefaultQuantity = 1
	}
	if cfg.Invoice.StartingNumber < 0 {
		return nil, fmt.Errorf("invoice.starting_number must not be negative")
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the database and invoice output directories
func (c *Config) EnsureDirectories() error {
	dbDir := filepath.Dir(c.Database.Path)
	if err := os.MkdirAll(dbDir, 0700); err != nil {
		return err
	}

	if err := os.MkdirAll(c.Invoice.OutputDir, 0755); err != nil {
		return err
	}

	return nil
}
