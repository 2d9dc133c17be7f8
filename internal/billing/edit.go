package billing

import (
	"github.com/andy/jumplog/internal/domain"
)

// MergeEdit applies an edited jump on top of the stored record. Only the
// descriptive fields and the eligible service list come from the edit;
// billing state is carried over unchanged. Services already invoiced or
// pending stay in InvoiceItems even if the edit dropped them.
func MergeEdit(existing, edited domain.Jump) domain.Jump {
	out := edited.Clone()

	out.ID = existing.ID
	out.CreatedAt = existing.CreatedAt
	out.InvoicedServices = domain.Union(nil, existing.InvoicedServices)
	out.PendingInvoiceServices = domain.Union(nil, existing.PendingInvoiceServices)
	out.InvoiceIDs = domain.Union(nil, existing.InvoiceIDs)
	out.InvoiceStatus = existing.InvoiceStatus
	out.Settled = existing.Settled
	out.Signature = existing.Signature

	locked := domain.Union(existing.InvoicedServices, existing.PendingInvoiceServices)
	out.InvoiceItems = domain.Union(domain.NormalizeServices(edited.InvoiceItems), locked)
	if len(locked) > 0 {
		out.WorkJump = true
	}

	// keep snapshot prices for services that were already billed
	for _, r := range existing.RateAtTimeOfJump {
		if _, ok := out.SnapshotRate(r.Service); !ok && domain.ContainsService(locked, r.Service) {
			out.RateAtTimeOfJump = append(out.RateAtTimeOfJump, r)
		}
	}
	return out
}

// ResetBilling clears all billing state for a newly entered jump
func ResetBilling(j domain.Jump) domain.Jump {
	out := j.Clone()
	out.InvoiceItems = domain.NormalizeServices(out.InvoiceItems)
	out.InvoicedServices = nil
	out.PendingInvoiceServices = nil
	out.InvoiceIDs = nil
	out.InvoiceStatus = domain.JumpUnbilled
	out.Settled = false
	return out
}

// Settle marks an imported jump as billed outside the app so its services
// are never offered to a new invoice.
func Settle(j domain.Jump) domain.Jump {
	out := j.Clone()
	out.InvoiceItems = domain.NormalizeServices(out.InvoiceItems)
	out.InvoicedServices = domain.Union(nil, out.InvoiceItems)
	out.PendingInvoiceServices = nil
	out.InvoiceIDs = nil
	out.Settled = true
	out.InvoiceStatus = domain.JumpPaid
	return out
}
