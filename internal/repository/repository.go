package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andy/jumplog/internal/domain"
)

// ErrNotFound is wrapped by every lookup that matches no row
var ErrNotFound = errors.New("not found")

// Setting keys
const (
	SettingCurrentJumpNumber = "current_jump_number"
)

// JumpFilter narrows a jump listing. Zero values match everything.
type JumpFilter struct {
	DropZone string
	Status   domain.JumpBillingStatus
	WorkOnly bool
	From     *time.Time
	To       *time.Time
}

// InvoiceFilter narrows an invoice listing. Zero values match everything.
type InvoiceFilter struct {
	DropZone string
	Status   domain.InvoiceStatus
}

// JumpRepository manages jump persistence, billing fields included
type JumpRepository interface {
	Create(ctx context.Context, jump *domain.Jump) error
	Update(ctx context.Context, jump *domain.Jump) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Jump, error)
	GetByNumber(ctx context.Context, number int) (*domain.Jump, error)
	List(ctx context.Context, filter JumpFilter) ([]*domain.Jump, error)
	Numbers(ctx context.Context) ([]int, error)
}

// InvoiceRepository manages invoices and their line items. Items are
// written once on Create; Update only touches status and dates.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	Update(ctx context.Context, invoice *domain.Invoice) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number int) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error)
}

// RateRepository manages the configured service rates
type RateRepository interface {
	List(ctx context.Context) ([]domain.ServiceRate, error)
	Set(ctx context.Context, rate domain.ServiceRate) error
	Delete(ctx context.Context, service string) error
}

// RegistryRepository manages the dropzone, aircraft and jump type lists
type RegistryRepository interface {
	List(ctx context.Context, kind domain.RegistryKind) ([]string, error)
	Add(ctx context.Context, kind domain.RegistryKind, name string) error // no-op if present
	Remove(ctx context.Context, kind domain.RegistryKind, name string) error
}

// SettingsRepository is a string key/value store
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}

// EventRepository stores the invoice audit trail
type EventRepository interface {
	Append(ctx context.Context, event *domain.InvoiceEvent) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.InvoiceEvent, error)
	List(ctx context.Context) ([]*domain.InvoiceEvent, error)
}

// Store groups the repositories so a service can run one operation
// against all of them atomically.
type Store interface {
	Jumps() JumpRepository
	Invoices() InvoiceRepository
	Rates() RateRepository
	Registry() RegistryRepository
	Settings() SettingsRepository
	Events() EventRepository

	// WithTx runs fn against a transactional view of the store. Nothing fn
	// wrote is visible if it returns an error.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// Reset removes every row from every table
	Reset(ctx context.Context) error
}
