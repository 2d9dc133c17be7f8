package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/domain"
)

// statusBadge renders an invoice status with color
func statusBadge(status domain.InvoiceStatus) string {
	switch status {
	case domain.InvoiceStatusDraft:
		return draftBadge.Render("DRAFT")
	case domain.InvoiceStatusLocked:
		return lockedBadge.Render("LOCKED")
	case domain.InvoiceStatusSent:
		return sentBadge.Render("SENT")
	case domain.InvoiceStatusPaid:
		return paidBadge.Render("PAID")
	default:
		return string(status)
	}
}

// jumpBadge renders the billing status of a jump
func jumpBadge(j *domain.Jump) string {
	if !j.WorkJump {
		return subtitleStyle.Render("-")
	}
	if j.Settled {
		return subtitleStyle.Render("settled")
	}
	switch j.InvoiceStatus {
	case domain.JumpUnbilled:
		return unbilledBadge.Render("unbilled")
	case domain.JumpPaid:
		return paidBadge.Render("paid")
	default:
		return statusBadge(domain.InvoiceStatus(j.InvoiceStatus))
	}
}

// errorLine renders a rejected operation as a single line
func errorLine(err error) string {
	var conflict *billing.ConflictError
	if errors.As(err, &conflict) {
		return errorStyle.Render(fmt.Sprintf("  Open invoice exists: #%d for %s is still a draft",
			conflict.Existing.InvoiceNumber, conflict.Existing.DropZone))
	}

	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		return errorStyle.Render("  " + strings.TrimPrefix(fields.Error(), "validation failed: "))
	}

	return errorStyle.Render(fmt.Sprintf("  Error: %v", err))
}
