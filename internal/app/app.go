package app

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/andy/jumplog/internal/config"
	"github.com/andy/jumplog/internal/crypto"
	"github.com/andy/jumplog/internal/db"
	"github.com/andy/jumplog/internal/logger"
	"github.com/andy/jumplog/internal/repository"
	"github.com/andy/jumplog/internal/service"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Store  repository.Store
	Log    zerolog.Logger

	// Services
	JumpService     service.JumpService
	InvoiceService  service.InvoiceService
	SettingsService service.SettingsService
	BackupService   service.BackupService
	ReportService   service.ReportService
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Setting up logging
// 3. Getting encryption key from keyring
// 4. Opening database and running migrations
// 5. Creating the store and services
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config, prompting for a
// database password on first run
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := logger.Setup(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err != nil {
		if !errors.Is(err, crypto.ErrNoKey) {
			return nil, err
		}

		fmt.Println("Setting up database encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to set password: %w", err)
		}

		if err := keyring.SetKey(password); err != nil {
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	return Open(ctx, cfg, password)
}

// Open opens the encrypted database with the given password and wires the
// services on top of it
func Open(ctx context.Context, cfg *config.Config, password string) (*App, error) {
	log := logger.WithComponent("app")

	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := repository.NewSQLStore(database)

	a := &App{
		Config: cfg,
		DB:     database,
		Store:  store,
		Log:    log,

		JumpService:     service.NewJumpService(store, nil, logger.WithComponent("jumps")),
		SettingsService: service.NewSettingsService(store, nil, logger.WithComponent("settings")),
		BackupService:   service.NewBackupService(store, nil, logger.WithComponent("backup")),
		ReportService:   service.NewReportService(store),
		InvoiceService: service.NewInvoiceService(store, service.InvoiceOptions{
			StartingNumber:  cfg.Invoice.StartingNumber,
			DefaultQuantity: cfg.Invoice.DefaultQuantity,
		}, logger.WithComponent("invoices")),
	}

	log.Debug().Str("db", database.Path()).Msg("app ready")
	return a, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// Reset deletes all jumps, invoices, rates, registries and settings
func (a *App) Reset(ctx context.Context) error {
	if err := a.Store.Reset(ctx); err != nil {
		return err
	}
	a.Log.Warn().Msg("all data deleted")
	return nil
}

// promptForPassword prompts user for a new database password (first run)
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your logbook will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}
