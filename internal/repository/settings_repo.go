package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/jumplog/internal/db"
	"github.com/andy/jumplog/internal/domain"
	"github.com/google/uuid"
)

// RateRepo is a SQLite implementation of RateRepository
type RateRepo struct {
	q db.Querier
}

func NewRateRepo(q db.Querier) *RateRepo {
	return &RateRepo{q: q}
}

// List returns all configured rates ordered by service name
func (r *RateRepo) List(ctx context.Context) ([]domain.ServiceRate, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT service, rate FROM service_rates ORDER BY service")
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	defer rows.Close()

	rates := make([]domain.ServiceRate, 0)
	for rows.Next() {
		var rate domain.ServiceRate
		if err := rows.Scan(&rate.Service, &rate.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rates: %w", err)
	}
	return rates, nil
}

// Set inserts or replaces the rate for a service
func (r *RateRepo) Set(ctx context.Context, rate domain.ServiceRate) error {
	query := `
		INSERT INTO service_rates (service, rate) VALUES (?, ?)
		ON CONFLICT(service) DO UPDATE SET rate = excluded.rate
	`
	if _, err := r.q.ExecContext(ctx, query, rate.Service, rate.Rate); err != nil {
		return fmt.Errorf("failed to set rate: %w", err)
	}
	return nil
}

func (r *RateRepo) Delete(ctx context.Context, service string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM service_rates WHERE service = ?", service)
	if err != nil {
		return fmt.Errorf("failed to delete rate: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("rate %q: %w", service, ErrNotFound)
	}
	return nil
}

// RegistryRepo is a SQLite implementation of RegistryRepository
type RegistryRepo struct {
	q db.Querier
}

func NewRegistryRepo(q db.Querier) *RegistryRepo {
	return &RegistryRepo{q: q}
}

func (r *RegistryRepo) List(ctx context.Context, kind domain.RegistryKind) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT name FROM registry WHERE kind = ? ORDER BY name", string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s names: %w", kind, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating names: %w", err)
	}
	return names, nil
}

func (r *RegistryRepo) Add(ctx context.Context, kind domain.RegistryKind, name string) error {
	query := "INSERT INTO registry (kind, name) VALUES (?, ?) ON CONFLICT(kind, name) DO NOTHING"
	if _, err := r.q.ExecContext(ctx, query, string(kind), name); err != nil {
		return fmt.Errorf("failed to add %s name: %w", kind, err)
	}
	return nil
}

func (r *RegistryRepo) Remove(ctx context.Context, kind domain.RegistryKind, name string) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM registry WHERE kind = ? AND name = ?", string(kind), name); err != nil {
		return fmt.Errorf("failed to remove %s name: %w", kind, err)
	}
	return nil
}

// SettingsRepo is a SQLite implementation of SettingsRepository
type SettingsRepo struct {
	q db.Querier
}

func NewSettingsRepo(q db.Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.q.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := r.q.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func (r *SettingsRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return settings, nil
}

// EventRepo is a SQLite implementation of EventRepository
type EventRepo struct {
	q db.Querier
}

func NewEventRepo(q db.Querier) *EventRepo {
	return &EventRepo{q: q}
}

// Append records an event, assigning an ID when it has none
func (r *EventRepo) Append(ctx context.Context, event *domain.InvoiceEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	query := `
		INSERT INTO invoice_events (id, invoice_id, action, from_status, to_status, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		event.ID,
		event.InvoiceID,
		event.Action,
		string(event.FromStatus),
		string(event.ToStatus),
		formatTime(event.OccurredAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append invoice event: %w", err)
	}
	return nil
}

// ListByInvoice returns the events of one invoice, oldest first
func (r *EventRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.InvoiceEvent, error) {
	query := `
		SELECT id, invoice_id, action, from_status, to_status, occurred_at
		FROM invoice_events
		WHERE invoice_id = ?
		ORDER BY occurred_at, rowid
	`
	return r.list(ctx, query, invoiceID)
}

// List returns every event, oldest first, deleted invoices included
func (r *EventRepo) List(ctx context.Context) ([]*domain.InvoiceEvent, error) {
	query := `
		SELECT id, invoice_id, action, from_status, to_status, occurred_at
		FROM invoice_events
		ORDER BY occurred_at, rowid
	`
	return r.list(ctx, query)
}

func (r *EventRepo) list(ctx context.Context, query string, args ...any) ([]*domain.InvoiceEvent, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.InvoiceEvent, 0)
	for rows.Next() {
		event := &domain.InvoiceEvent{}
		var from, to, occurredAt string

		if err := rows.Scan(&event.ID, &event.InvoiceID, &event.Action, &from, &to, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice event: %w", err)
		}

		event.FromStatus = domain.InvoiceStatus(from)
		event.ToStatus = domain.InvoiceStatus(to)
		if event.OccurredAt, err = parseTime(occurredAt); err != nil {
			return nil, fmt.Errorf("failed to parse occurred_at: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice events: %w", err)
	}
	return events, nil
}
