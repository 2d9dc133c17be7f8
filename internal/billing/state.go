package billing

import (
	"github.com/andy/jumplog/internal/domain"
)

// Action names a billing transition
type Action string

const (
	ActionCreate Action = "create"
	ActionLock   Action = "lock"
	ActionSend   Action = "send"
	ActionPay    Action = "pay"
	ActionReopen Action = "reopen"
	ActionDelete Action = "delete"
)

// State is the combined jump and invoice store the machine operates on
type State struct {
	Jumps    []domain.Jump
	Invoices []domain.Invoice
}

// Transition describes what an operation changed, so a persistence layer
// can write exactly the touched records.
type Transition struct {
	Action     Action
	InvoiceID  string
	FromStatus domain.InvoiceStatus
	ToStatus   domain.InvoiceStatus

	// Invoice is the created or updated invoice, nil after a delete
	Invoice *domain.Invoice
	Deleted bool

	// JumpIDs lists the jumps whose billing fields changed
	JumpIDs []string
}

// Clone deep-copies the state
func (s State) Clone() State {
	out := State{
		Jumps:    make([]domain.Jump, len(s.Jumps)),
		Invoices: make([]domain.Invoice, len(s.Invoices)),
	}
	for i, j := range s.Jumps {
		out.Jumps[i] = j.Clone()
	}
	for i, inv := range s.Invoices {
		out.Invoices[i] = inv.Clone()
	}
	return out
}

// Jump returns the jump with the given ID
func (s State) Jump(id string) (domain.Jump, bool) {
	if i := s.jumpIndex(id); i >= 0 {
		return s.Jumps[i], true
	}
	return domain.Jump{}, false
}

// Invoice returns the invoice with the given ID
func (s State) Invoice(id string) (domain.Invoice, bool) {
	if i := s.invoiceIndex(id); i >= 0 {
		return s.Invoices[i], true
	}
	return domain.Invoice{}, false
}

// OpenInvoice returns the draft invoice for a dropzone, if any
func (s State) OpenInvoice(dropZone string) (domain.Invoice, bool) {
	for _, inv := range s.Invoices {
		if inv.DropZone == dropZone && inv.Status == domain.InvoiceStatusDraft {
			return inv, true
		}
	}
	return domain.Invoice{}, false
}

func (s State) jumpIndex(id string) int {
	for i := range s.Jumps {
		if s.Jumps[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) invoiceIndex(id string) int {
	for i := range s.Invoices {
		if s.Invoices[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) invoicesByID() map[string]domain.Invoice {
	m := make(map[string]domain.Invoice, len(s.Invoices))
	for _, inv := range s.Invoices {
		m[inv.ID] = inv
	}
	return m
}
