package billing

import (
	"errors"
	"fmt"

	"github.com/andy/jumplog/internal/domain"
)

var (
	ErrOpenInvoiceExists   = errors.New("open invoice exists for dropzone")
	ErrNothingToInvoice    = errors.New("no billable services available")
	ErrInvoiceNotDeletable = errors.New("only draft invoices can be deleted")
	ErrInvoicePaid         = errors.New("paid invoices cannot be reopened")
	ErrInvalidTransition   = errors.New("invalid invoice status transition")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrJumpNotFound        = errors.New("jump not found")
)

// ConflictError is returned when a dropzone already has a draft invoice.
// Existing is that draft so the caller can present it for review.
type ConflictError struct {
	Existing domain.Invoice
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: invoice #%d for %s is still a draft",
		ErrOpenInvoiceExists, e.Existing.InvoiceNumber, e.Existing.DropZone)
}

func (e *ConflictError) Unwrap() error {
	return ErrOpenInvoiceExists
}

// transitionError reports a status change the machine does not allow
func transitionError(inv domain.Invoice, to domain.InvoiceStatus) error {
	return fmt.Errorf("%w: invoice #%d is %s, cannot become %s",
		ErrInvalidTransition, inv.InvoiceNumber, inv.Status, to)
}
