package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/jumplog/internal/db"
	"github.com/andy/jumplog/internal/domain"
)

// JumpRepo is a SQLite implementation of JumpRepository
type JumpRepo struct {
	q db.Querier
}

// NewJumpRepo creates a new JumpRepo
func NewJumpRepo(q db.Querier) *JumpRepo {
	return &JumpRepo{q: q}
}

const jumpColumns = `
	id, jump_number, date, drop_zone, aircraft, jump_type,
	exit_altitude, deployment_altitude, freefall_seconds, gear, notes, cutaway,
	work_jump, customer_name, invoice_items, invoiced_services, pending_invoice_services,
	invoice_ids, invoice_status, rate_at_time_of_jump, settled, signature,
	created_at, updated_at`

// Create inserts a new jump
func (r *JumpRepo) Create(ctx context.Context, jump *domain.Jump) error {
	args, err := jumpArgs(jump)
	if err != nil {
		return err
	}

	query := `INSERT INTO jumps (` + jumpColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create jump: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing jump
func (r *JumpRepo) Update(ctx context.Context, jump *domain.Jump) error {
	args, err := jumpArgs(jump)
	if err != nil {
		return err
	}

	query := `
		UPDATE jumps
		SET jump_number = ?, date = ?, drop_zone = ?, aircraft = ?, jump_type = ?,
		    exit_altitude = ?, deployment_altitude = ?, freefall_seconds = ?, gear = ?,
		    notes = ?, cutaway = ?, work_jump = ?, customer_name = ?, invoice_items = ?,
		    invoiced_services = ?, pending_invoice_services = ?, invoice_ids = ?,
		    invoice_status = ?, rate_at_time_of_jump = ?, settled = ?, signature = ?,
		    created_at = ?, updated_at = ?
		WHERE id = ?
	`

	// id moves from the front to the WHERE clause
	args = append(args[1:], jump.ID)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update jump: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("jump %s: %w", jump.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a jump. Invoices that billed it keep their line items.
func (r *JumpRepo) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM jumps WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete jump: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("jump %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetByID retrieves a jump by ID
func (r *JumpRepo) GetByID(ctx context.Context, id string) (*domain.Jump, error) {
	query := `SELECT ` + jumpColumns + ` FROM jumps WHERE id = ?`

	jump, err := scanJump(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("jump %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get jump: %w", err)
	}
	return jump, nil
}

// GetByNumber retrieves a jump by its logbook number
func (r *JumpRepo) GetByNumber(ctx context.Context, number int) (*domain.Jump, error) {
	query := `SELECT ` + jumpColumns + ` FROM jumps WHERE jump_number = ?`

	jump, err := scanJump(r.q.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("jump #%d: %w", number, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get jump: %w", err)
	}
	return jump, nil
}

// List retrieves jumps with optional filters, newest jump number first
func (r *JumpRepo) List(ctx context.Context, filter JumpFilter) ([]*domain.Jump, error) {
	query := `SELECT ` + jumpColumns + ` FROM jumps WHERE 1=1`
	args := make([]any, 0)

	if filter.DropZone != "" {
		query += " AND drop_zone = ?"
		args = append(args, filter.DropZone)
	}
	if filter.Status != "" {
		query += " AND invoice_status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.WorkOnly {
		query += " AND work_jump = 1"
	}
	if filter.From != nil {
		query += " AND date >= ?"
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		query += " AND date <= ?"
		args = append(args, formatTime(*filter.To))
	}

	query += " ORDER BY jump_number DESC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jumps: %w", err)
	}
	defer rows.Close()

	jumps := make([]*domain.Jump, 0)
	for rows.Next() {
		jump, err := scanJump(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan jump: %w", err)
		}
		jumps = append(jumps, jump)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jumps: %w", err)
	}
	return jumps, nil
}

// Numbers returns every jump number in use
func (r *JumpRepo) Numbers(ctx context.Context) ([]int, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT jump_number FROM jumps ORDER BY jump_number")
	if err != nil {
		return nil, fmt.Errorf("failed to list jump numbers: %w", err)
	}
	defer rows.Close()

	numbers := make([]int, 0)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan jump number: %w", err)
		}
		numbers = append(numbers, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jump numbers: %w", err)
	}
	return numbers, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func jumpArgs(j *domain.Jump) ([]any, error) {
	gear, err := encodeList(j.Gear)
	if err != nil {
		return nil, err
	}
	items, err := encodeList(j.InvoiceItems)
	if err != nil {
		return nil, err
	}
	invoiced, err := encodeList(j.InvoicedServices)
	if err != nil {
		return nil, err
	}
	pending, err := encodeList(j.PendingInvoiceServices)
	if err != nil {
		return nil, err
	}
	invoiceIDs, err := encodeList(j.InvoiceIDs)
	if err != nil {
		return nil, err
	}
	snapshot, err := encodeList(j.RateAtTimeOfJump)
	if err != nil {
		return nil, err
	}

	return []any{
		j.ID,
		j.JumpNumber,
		formatTime(j.Date),
		j.DropZone,
		j.Aircraft,
		j.JumpType,
		j.ExitAltitude,
		j.DeploymentAltitude,
		j.FreefallSeconds,
		gear,
		j.Notes,
		j.Cutaway,
		j.WorkJump,
		j.CustomerName,
		items,
		invoiced,
		pending,
		invoiceIDs,
		string(j.InvoiceStatus),
		snapshot,
		j.Settled,
		j.Signature,
		formatTime(j.CreatedAt),
		formatTime(j.UpdatedAt),
	}, nil
}

func scanJump(row rowScanner) (*domain.Jump, error) {
	jump := &domain.Jump{}
	var date, createdAt, updatedAt, status string
	var gear, items, invoiced, pending, invoiceIDs, snapshot string

	err := row.Scan(
		&jump.ID,
		&jump.JumpNumber,
		&date,
		&jump.DropZone,
		&jump.Aircraft,
		&jump.JumpType,
		&jump.ExitAltitude,
		&jump.DeploymentAltitude,
		&jump.FreefallSeconds,
		&gear,
		&jump.Notes,
		&jump.Cutaway,
		&jump.WorkJump,
		&jump.CustomerName,
		&items,
		&invoiced,
		&pending,
		&invoiceIDs,
		&status,
		&snapshot,
		&jump.Settled,
		&jump.Signature,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	jump.InvoiceStatus = domain.JumpBillingStatus(status)

	if jump.Date, err = parseTime(date); err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}
	if jump.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if jump.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if jump.Gear, err = decodeList[string](gear); err != nil {
		return nil, err
	}
	if jump.InvoiceItems, err = decodeList[string](items); err != nil {
		return nil, err
	}
	if jump.InvoicedServices, err = decodeList[string](invoiced); err != nil {
		return nil, err
	}
	if jump.PendingInvoiceServices, err = decodeList[string](pending); err != nil {
		return nil, err
	}
	if jump.InvoiceIDs, err = decodeList[string](invoiceIDs); err != nil {
		return nil, err
	}
	if jump.RateAtTimeOfJump, err = decodeList[domain.ServiceRate](snapshot); err != nil {
		return nil, err
	}

	return jump, nil
}
