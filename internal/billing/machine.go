package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/andy/jumplog/internal/domain"
	"github.com/google/uuid"
)

// CreateRequest carries the inputs for a new draft invoice
type CreateRequest struct {
	DropZone    string
	JumpIDs     []string
	Rates       RateLookup
	StartNumber int       // invoice numbering floor, DefaultStartingInvoiceNumber when zero
	Quantity    int       // per line item, 1 when zero
	InvoiceID   string    // generated when empty
	Now         time.Time // creation timestamp
}

// CreateInvoice bills every available service of the requested jumps on a
// new draft invoice for the dropzone. Jumps made at another dropzone are
// skipped. An existing draft for the dropzone
// is returned as a *ConflictError and no invoice is created. If none of
// the jumps has an available service the result is ErrNothingToInvoice.
func CreateInvoice(s State, req CreateRequest) (State, Transition, error) {
	dropZone := strings.TrimSpace(req.DropZone)
	if existing, ok := s.OpenInvoice(dropZone); ok {
		return s, Transition{}, &ConflictError{Existing: existing.Clone()}
	}

	next := s.Clone()
	items := make([]domain.LineItem, 0)
	reserved := make(map[string][]string)
	order := make([]string, 0, len(req.JumpIDs))

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	for _, jumpID := range req.JumpIDs {
		idx := next.jumpIndex(jumpID)
		if idx < 0 {
			return s, Transition{}, fmt.Errorf("%w: %s", ErrJumpNotFound, jumpID)
		}
		j := next.Jumps[idx]
		if !j.WorkJump || len(j.PendingInvoiceServices) > 0 {
			// a jump with pending services is already reserved by another draft
			continue
		}
		if strings.TrimSpace(j.DropZone) != dropZone {
			continue
		}
		if _, seen := reserved[jumpID]; seen {
			continue
		}

		available := j.AvailableServices()
		if len(available) == 0 {
			continue
		}
		for _, service := range available {
			rate := ResolveRate(j, service, req.Rates)
			items = append(items, domain.LineItem{
				JumpID:       j.ID,
				JumpNumber:   j.JumpNumber,
				Date:         j.Date,
				CustomerName: j.CustomerName,
				Service:      service,
				Quantity:     quantity,
				Rate:         rate,
				Total:        rate * float64(quantity),
			})
		}
		reserved[jumpID] = available
		order = append(order, jumpID)
	}

	if len(items) == 0 {
		return s, Transition{}, ErrNothingToInvoice
	}

	start := req.StartNumber
	if start <= 0 {
		start = DefaultStartingInvoiceNumber
	}
	id := req.InvoiceID
	if id == "" {
		id = uuid.NewString()
	}

	inv := domain.Invoice{
		ID:            id,
		InvoiceNumber: NextInvoiceNumber(next.Invoices, start),
		DropZone:      dropZone,
		Status:        domain.InvoiceStatusDraft,
		Items:         items,
		DateCreated:   req.Now,
	}
	inv.Total = inv.SumItems()
	next.Invoices = append(next.Invoices, inv)

	for _, jumpID := range order {
		j := &next.Jumps[next.jumpIndex(jumpID)]
		j.InvoiceIDs = domain.Union(j.InvoiceIDs, []string{inv.ID})
		j.PendingInvoiceServices = reserved[jumpID]
		j.UpdatedAt = req.Now
	}
	next.reproject(order)

	created := inv.Clone()
	return next, Transition{
		Action:    ActionCreate,
		InvoiceID: inv.ID,
		ToStatus:  domain.InvoiceStatusDraft,
		Invoice:   &created,
		JumpIDs:   order,
	}, nil
}

// LockInvoice finalizes a draft: the services it reserved on each jump
// move from pending to permanently invoiced.
func LockInvoice(s State, invoiceID string, now time.Time) (State, Transition, error) {
	return advance(s, invoiceID, ActionLock, domain.InvoiceStatusLocked, now,
		[]domain.InvoiceStatus{domain.InvoiceStatusDraft},
		func(inv *domain.Invoice, j *domain.Jump) {
			moved := domain.Intersect(inv.ServicesFor(j.ID), j.PendingInvoiceServices)
			j.InvoicedServices = domain.Union(j.InvoicedServices, moved)
			j.PendingInvoiceServices = domain.Difference(j.PendingInvoiceServices, moved)
		})
}

// SendInvoice marks a locked invoice as sent. Service sets are untouched.
func SendInvoice(s State, invoiceID string, now time.Time) (State, Transition, error) {
	return advance(s, invoiceID, ActionSend, domain.InvoiceStatusSent, now,
		[]domain.InvoiceStatus{domain.InvoiceStatusLocked, domain.InvoiceStatusSent}, nil)
}

// MarkPaid marks a locked or sent invoice as paid. Service sets are untouched.
func MarkPaid(s State, invoiceID string, now time.Time) (State, Transition, error) {
	return advance(s, invoiceID, ActionPay, domain.InvoiceStatusPaid, now,
		[]domain.InvoiceStatus{domain.InvoiceStatusLocked, domain.InvoiceStatusSent}, nil)
}

// ReopenInvoice turns a locked or sent invoice back into a draft. It is
// the inverse of LockInvoice for the services the invoice billed. Paid
// invoices stay closed.
func ReopenInvoice(s State, invoiceID string, now time.Time) (State, Transition, error) {
	idx := s.invoiceIndex(invoiceID)
	if idx < 0 {
		return s, Transition{}, fmt.Errorf("%w: %s", ErrInvoiceNotFound, invoiceID)
	}
	current := s.Invoices[idx]

	switch current.Status {
	case domain.InvoiceStatusPaid:
		return s, Transition{}, ErrInvoicePaid
	case domain.InvoiceStatusDraft:
		return s, Transition{}, transitionError(current, domain.InvoiceStatusDraft)
	}

	if open, ok := s.OpenInvoice(current.DropZone); ok && open.ID != current.ID {
		return s, Transition{}, &ConflictError{Existing: open.Clone()}
	}

	next := s.Clone()
	inv := &next.Invoices[idx]
	from := inv.Status
	inv.Status = domain.InvoiceStatusDraft
	inv.DateLocked = nil
	inv.DateSent = nil

	touched := make([]string, 0)
	for i := range next.Jumps {
		j := &next.Jumps[i]
		if !j.HasInvoice(inv.ID) {
			continue
		}
		services := domain.Intersect(inv.ServicesFor(j.ID), j.InvoiceItems)
		j.InvoicedServices = domain.Difference(j.InvoicedServices, services)
		j.PendingInvoiceServices = domain.Union(j.PendingInvoiceServices, services)
		j.UpdatedAt = now
		touched = append(touched, j.ID)
	}
	next.reproject(touched)

	updated := inv.Clone()
	return next, Transition{
		Action:     ActionReopen,
		InvoiceID:  inv.ID,
		FromStatus: from,
		ToStatus:   domain.InvoiceStatusDraft,
		Invoice:    &updated,
		JumpIDs:    touched,
	}, nil
}

// DeleteOpenInvoice removes a draft invoice and releases the services it
// reserved. Jump status is recomputed from the invoices left.
func DeleteOpenInvoice(s State, invoiceID string, now time.Time) (State, Transition, error) {
	idx := s.invoiceIndex(invoiceID)
	if idx < 0 {
		return s, Transition{}, fmt.Errorf("%w: %s", ErrInvoiceNotFound, invoiceID)
	}
	current := s.Invoices[idx]
	if !current.CanDelete() {
		return s, Transition{}, fmt.Errorf("%w: invoice #%d is %s",
			ErrInvoiceNotDeletable, current.InvoiceNumber, current.Status)
	}

	next := s.Clone()
	next.Invoices = append(next.Invoices[:idx], next.Invoices[idx+1:]...)

	touched := make([]string, 0)
	for i := range next.Jumps {
		j := &next.Jumps[i]
		if !j.HasInvoice(invoiceID) {
			continue
		}
		j.InvoiceIDs = domain.Difference(j.InvoiceIDs, []string{invoiceID})
		j.PendingInvoiceServices = domain.Difference(j.PendingInvoiceServices, current.ServicesFor(j.ID))
		j.UpdatedAt = now
		touched = append(touched, j.ID)
	}
	next.reproject(touched)

	return next, Transition{
		Action:     ActionDelete,
		InvoiceID:  invoiceID,
		FromStatus: current.Status,
		Deleted:    true,
		JumpIDs:    touched,
	}, nil
}

// advance moves an invoice forward to status `to`. apply, when set, edits
// the service sets of each referencing jump.
func advance(
	s State,
	invoiceID string,
	action Action,
	to domain.InvoiceStatus,
	now time.Time,
	allowedFrom []domain.InvoiceStatus,
	apply func(inv *domain.Invoice, j *domain.Jump),
) (State, Transition, error) {
	idx := s.invoiceIndex(invoiceID)
	if idx < 0 {
		return s, Transition{}, fmt.Errorf("%w: %s", ErrInvoiceNotFound, invoiceID)
	}
	current := s.Invoices[idx]

	allowed := false
	for _, st := range allowedFrom {
		if current.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return s, Transition{}, transitionError(current, to)
	}

	next := s.Clone()
	inv := &next.Invoices[idx]
	from := inv.Status
	inv.Status = to
	stamp := now
	switch to {
	case domain.InvoiceStatusLocked:
		inv.DateLocked = &stamp
	case domain.InvoiceStatusSent:
		inv.DateSent = &stamp
	case domain.InvoiceStatusPaid:
		inv.DatePaid = &stamp
	}

	touched := make([]string, 0)
	for i := range next.Jumps {
		j := &next.Jumps[i]
		if !j.HasInvoice(inv.ID) {
			continue
		}
		if apply != nil {
			apply(inv, j)
		}
		j.UpdatedAt = now
		touched = append(touched, j.ID)
	}
	next.reproject(touched)

	updated := inv.Clone()
	return next, Transition{
		Action:     action,
		InvoiceID:  inv.ID,
		FromStatus: from,
		ToStatus:   to,
		Invoice:    &updated,
		JumpIDs:    touched,
	}, nil
}
