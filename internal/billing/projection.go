package billing

import (
	"github.com/andy/jumplog/internal/domain"
)

// ProjectStatus derives a jump's billing status from the most advanced
// invoice it still references. Jumps with no live invoice are unbilled,
// or paid when their billing was settled outside the app.
func ProjectStatus(j domain.Jump, invoices map[string]domain.Invoice) domain.JumpBillingStatus {
	best := domain.InvoiceStatus("")
	for _, id := range j.InvoiceIDs {
		inv, ok := invoices[id]
		if !ok {
			continue
		}
		if inv.Status.Rank() > best.Rank() {
			best = inv.Status
		}
	}

	if best.Valid() {
		return best.JumpStatus()
	}
	if j.Settled {
		return domain.JumpPaid
	}
	return domain.JumpUnbilled
}

// Reproject recomputes InvoiceStatus on every jump in the state
func Reproject(s State) State {
	out := s.Clone()
	invoices := out.invoicesByID()
	for i := range out.Jumps {
		out.Jumps[i].InvoiceStatus = ProjectStatus(out.Jumps[i], invoices)
	}
	return out
}

func (s *State) reproject(jumpIDs []string) {
	invoices := s.invoicesByID()
	for _, id := range jumpIDs {
		if i := s.jumpIndex(id); i >= 0 {
			s.Jumps[i].InvoiceStatus = ProjectStatus(s.Jumps[i], invoices)
		}
	}
}
