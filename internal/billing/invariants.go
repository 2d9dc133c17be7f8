package billing

import (
	"errors"
	"fmt"

	"github.com/andy/jumplog/internal/domain"
)

// ErrInvariant marks a data integrity violation. These should be
// unreachable through the state machine.
var ErrInvariant = errors.New("billing invariant violated")

// CheckInvariants validates the cross-entity billing rules and returns all
// violations joined together, or nil.
func CheckInvariants(s State) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
	}

	invoices := s.invoicesByID()

	drafts := make(map[string]string)
	for _, inv := range s.Invoices {
		if inv.Status != domain.InvoiceStatusDraft {
			continue
		}
		if other, ok := drafts[inv.DropZone]; ok {
			fail("dropzone %q has drafts %s and %s", inv.DropZone, other, inv.ID)
		}
		drafts[inv.DropZone] = inv.ID

		for _, jumpID := range inv.JumpIDs() {
			j, ok := s.Jump(jumpID)
			if !ok {
				continue // jump deleted after invoicing
			}
			if !j.HasInvoice(inv.ID) {
				fail("draft %s not referenced by jump %s", inv.ID, jumpID)
			}
			for _, service := range inv.ServicesFor(jumpID) {
				if !domain.ContainsService(j.PendingInvoiceServices, service) {
					fail("draft %s bills %q on jump %s but it is not pending", inv.ID, service, jumpID)
				}
			}
		}
	}

	for _, j := range s.Jumps {
		if both := domain.Intersect(j.InvoicedServices, j.PendingInvoiceServices); len(both) > 0 {
			fail("jump %s has %v both invoiced and pending", j.ID, both)
		}
		if extra := domain.Difference(j.InvoicedServices, j.InvoiceItems); len(extra) > 0 {
			fail("jump %s invoiced %v outside its invoice items", j.ID, extra)
		}
		if extra := domain.Difference(j.PendingInvoiceServices, j.InvoiceItems); len(extra) > 0 {
			fail("jump %s pending %v outside its invoice items", j.ID, extra)
		}

		covered := make([]string, 0)
		for _, id := range j.InvoiceIDs {
			if inv, ok := invoices[id]; ok && inv.Status == domain.InvoiceStatusDraft {
				covered = domain.Union(covered, inv.ServicesFor(j.ID))
			}
		}
		if orphan := domain.Difference(j.PendingInvoiceServices, covered); len(orphan) > 0 {
			fail("jump %s has pending %v without a draft invoice", j.ID, orphan)
		}

		if want := ProjectStatus(j, invoices); j.InvoiceStatus != want {
			fail("jump %s status %s, projection says %s", j.ID, j.InvoiceStatus, want)
		}
	}

	return errors.Join(errs...)
}
