package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/jumplog/internal/db"
	"github.com/andy/jumplog/internal/domain"
)

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	q db.Querier
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(q db.Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, invoice_number, drop_zone, status, total,
	date_created, date_locked, date_sent, date_paid`

// Create inserts a new invoice together with its line items
func (r *InvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, query,
		invoice.ID,
		invoice.InvoiceNumber,
		invoice.DropZone,
		string(invoice.Status),
		invoice.Total,
		formatTime(invoice.DateCreated),
		nullableTime(invoice.DateLocked),
		nullableTime(invoice.DateSent),
		nullableTime(invoice.DatePaid),
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	for i := range invoice.Items {
		if err := r.addLineItem(ctx, invoice.ID, i, &invoice.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

// Update writes the status and lifecycle dates of an invoice
func (r *InvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		UPDATE invoices
		SET status = ?, date_locked = ?, date_sent = ?, date_paid = ?
		WHERE id = ?
	`

	result, err := r.q.ExecContext(ctx, query,
		string(invoice.Status),
		nullableTime(invoice.DateLocked),
		nullableTime(invoice.DateSent),
		nullableTime(invoice.DatePaid),
		invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("invoice %s: %w", invoice.ID, ErrNotFound)
	}
	return nil
}

// Delete removes an invoice and its line items
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM invoice_line_items WHERE invoice_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete line items: %w", err)
	}

	result, err := r.q.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetByID retrieves an invoice by ID
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`
	return r.getOne(ctx, query, id, fmt.Sprintf("invoice %s", id))
}

// GetByNumber retrieves an invoice by invoice number
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number int) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_number = ?`
	return r.getOne(ctx, query, number, fmt.Sprintf("invoice #%d", number))
}

func (r *InvoiceRepo) getOne(ctx context.Context, query string, arg any, label string) (*domain.Invoice, error) {
	invoice, err := scanInvoice(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", label, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.Items, err = r.lineItems(ctx, invoice.ID); err != nil {
		return nil, err
	}
	return invoice, nil
}

// List retrieves invoices with optional filters, newest number first
func (r *InvoiceRepo) List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := make([]any, 0)

	if filter.DropZone != "" {
		query += " AND drop_zone = ?"
		args = append(args, filter.DropZone)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}

	query += " ORDER BY invoice_number DESC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}
	// closed before loading items so a single connection is free again
	rows.Close()

	for _, invoice := range invoices {
		if invoice.Items, err = r.lineItems(ctx, invoice.ID); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func (r *InvoiceRepo) addLineItem(ctx context.Context, invoiceID string, position int, item *domain.LineItem) error {
	query := `
		INSERT INTO invoice_line_items (
			invoice_id, position, jump_id, jump_number, date,
			customer_name, service, quantity, rate, total
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		invoiceID,
		position,
		item.JumpID,
		item.JumpNumber,
		formatTime(item.Date),
		item.CustomerName,
		item.Service,
		item.Quantity,
		item.Rate,
		item.Total,
	)
	if err != nil {
		return fmt.Errorf("failed to add line item: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) lineItems(ctx context.Context, invoiceID string) ([]domain.LineItem, error) {
	query := `
		SELECT jump_id, jump_number, date, customer_name, service, quantity, rate, total
		FROM invoice_line_items
		WHERE invoice_id = ?
		ORDER BY position
	`

	rows, err := r.q.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var item domain.LineItem
		var date string

		err := rows.Scan(
			&item.JumpID,
			&item.JumpNumber,
			&date,
			&item.CustomerName,
			&item.Service,
			&item.Quantity,
			&item.Rate,
			&item.Total,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}

		if item.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}
	return items, nil
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var status, dateCreated string
	var dateLocked, dateSent, datePaid sql.NullString

	err := row.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.DropZone,
		&status,
		&invoice.Total,
		&dateCreated,
		&dateLocked,
		&dateSent,
		&datePaid,
	)
	if err != nil {
		return nil, err
	}

	invoice.Status = domain.InvoiceStatus(status)

	if invoice.DateCreated, err = parseTime(dateCreated); err != nil {
		return nil, fmt.Errorf("failed to parse date_created: %w", err)
	}
	if invoice.DateLocked, err = parseNullTime(dateLocked); err != nil {
		return nil, fmt.Errorf("failed to parse date_locked: %w", err)
	}
	if invoice.DateSent, err = parseNullTime(dateSent); err != nil {
		return nil, fmt.Errorf("failed to parse date_sent: %w", err)
	}
	if invoice.DatePaid, err = parseNullTime(datePaid); err != nil {
		return nil, fmt.Errorf("failed to parse date_paid: %w", err)
	}
	return invoice, nil
}
