package domain

import (
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusLocked InvoiceStatus = "locked"
	InvoiceStatusSent   InvoiceStatus = "sent"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// Rank orders statuses from least to most advanced
func (s InvoiceStatus) Rank() int {
	switch s {
	case InvoiceStatusDraft:
		return 1
	case InvoiceStatusLocked:
		return 2
	case InvoiceStatusSent:
		return 3
	case InvoiceStatusPaid:
		return 4
	default:
		return 0
	}
}

// Valid reports whether s is a known invoice status
func (s InvoiceStatus) Valid() bool {
	return s.Rank() > 0
}

// JumpStatus maps an invoice status onto the jump projection
func (s InvoiceStatus) JumpStatus() JumpBillingStatus {
	switch s {
	case InvoiceStatusDraft:
		return JumpDraft
	case InvoiceStatusLocked:
		return JumpLocked
	case InvoiceStatusSent:
		return JumpSent
	case InvoiceStatusPaid:
		return JumpPaid
	default:
		return JumpUnbilled
	}
}

// Invoice is a billing document for one dropzone. Items and Total are a
// snapshot taken at creation and never change afterwards.
type Invoice struct {
	ID            string        `json:"id"`
	InvoiceNumber int           `json:"invoiceNumber"`
	DropZone      string        `json:"dropZone"`
	Status        InvoiceStatus `json:"status"`
	Items         []LineItem    `json:"items"`
	Total         float64       `json:"total"`
	DateCreated   time.Time     `json:"dateCreated"`
	DateLocked    *time.Time    `json:"dateLocked,omitempty"`
	DateSent      *time.Time    `json:"dateSent,omitempty"`
	DatePaid      *time.Time    `json:"datePaid,omitempty"`
}

type LineItem struct {
	JumpID       string    `json:"jumpId"`
	JumpNumber   int       `json:"jumpNumber"`
	Date         time.Time `json:"date"`
	CustomerName string    `json:"customerName"`
	Service      string    `json:"service"`
	Quantity     int       `json:"quantity"`
	Rate         float64   `json:"rate"`
	Total        float64   `json:"total"`
}

// CanDelete returns true if the invoice may be removed
func (i *Invoice) CanDelete() bool {
	return i.Status == InvoiceStatusDraft
}

// ServicesFor returns the services this invoice bills for one jump
func (i *Invoice) ServicesFor(jumpID string) []string {
	services := make([]string, 0)
	for _, item := range i.Items {
		if item.JumpID == jumpID && !ContainsService(services, item.Service) {
			services = append(services, item.Service)
		}
	}
	return services
}

// JumpIDs returns the distinct jumps referenced by the line items
func (i *Invoice) JumpIDs() []string {
	ids := make([]string, 0)
	for _, item := range i.Items {
		if !ContainsService(ids, item.JumpID) {
			ids = append(ids, item.JumpID)
		}
	}
	return ids
}

// SumItems adds up the line item totals
func (i *Invoice) SumItems() float64 {
	total := 0.0
	for _, item := range i.Items {
		total += item.Total
	}
	return total
}

// Clone returns a deep copy of the invoice
func (i Invoice) Clone() Invoice {
	out := i
	if i.Items != nil {
		out.Items = make([]LineItem, len(i.Items))
		copy(out.Items, i.Items)
	}
	out.DateLocked = cloneTime(i.DateLocked)
	out.DateSent = cloneTime(i.DateSent)
	out.DatePaid = cloneTime(i.DatePaid)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
