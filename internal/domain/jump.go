package domain

import (
	"strings"
	"time"
)

// JumpBillingStatus is the billing state shown for a jump. It is a projection
// of the invoices the jump references and is never set directly by callers.
type JumpBillingStatus string

const (
	JumpUnbilled JumpBillingStatus = "unbilled"
	JumpDraft    JumpBillingStatus = "draft"
	JumpLocked   JumpBillingStatus = "locked"
	JumpSent     JumpBillingStatus = "sent"
	JumpPaid     JumpBillingStatus = "paid"
)

// ServiceRate is a price for a named service
type ServiceRate struct {
	Service string  `json:"service" yaml:"service" validate:"required"`
	Rate    float64 `json:"rate" yaml:"rate" validate:"gte=0"`
}

type Jump struct {
	ID         string `json:"id"`
	JumpNumber int    `json:"jumpNumber" validate:"gt=0"`

	// Descriptive fields
	Date               time.Time `json:"date" validate:"required"`
	DropZone           string    `json:"dropZone" validate:"required,max=120"`
	Aircraft           string    `json:"aircraft" validate:"max=120"`
	JumpType           string    `json:"jumpType" validate:"max=120"`
	ExitAltitude       int       `json:"exitAltitude" validate:"gte=0,lte=40000"`
	DeploymentAltitude int       `json:"deploymentAltitude" validate:"gte=0,lte=40000"`
	FreefallSeconds    int       `json:"freefallTime" validate:"gte=0"`
	Gear               []string  `json:"gearUsed,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	Cutaway            bool      `json:"cutaway"`

	// Billing fields
	WorkJump               bool              `json:"workJump"`
	CustomerName           string            `json:"customerName,omitempty"`
	InvoiceItems           []string          `json:"invoiceItems,omitempty" validate:"required_if=WorkJump true,dive,required"`
	InvoicedServices       []string          `json:"invoicedServices,omitempty"`
	PendingInvoiceServices []string          `json:"pendingInvoiceServices,omitempty"`
	InvoiceIDs             []string          `json:"invoiceIds,omitempty"`
	InvoiceStatus          JumpBillingStatus `json:"invoiceStatus"`
	RateAtTimeOfJump       []ServiceRate     `json:"rateAtTimeOfJump,omitempty" validate:"dive"`
	Settled                bool              `json:"settled,omitempty"` // billed outside jumplog (imports)
	Signature              string            `json:"signature,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewJump creates a jump with empty billing state
func NewJump(number int, date time.Time, dropZone string) *Jump {
	now := time.Now()
	return &Jump{
		JumpNumber:    number,
		Date:          date,
		DropZone:      strings.TrimSpace(dropZone),
		InvoiceStatus: JumpUnbilled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AvailableServices returns the services that a new invoice may bill:
// InvoiceItems minus those already invoiced or pending in a draft.
func (j *Jump) AvailableServices() []string {
	return Difference(Difference(j.InvoiceItems, j.InvoicedServices), j.PendingInvoiceServices)
}

// HasInvoice reports whether the jump references the given invoice
func (j *Jump) HasInvoice(invoiceID string) bool {
	return ContainsService(j.InvoiceIDs, invoiceID)
}

// SnapshotRate returns the rate recorded at save time for a service
func (j *Jump) SnapshotRate(service string) (float64, bool) {
	for _, r := range j.RateAtTimeOfJump {
		if r.Service == service {
			return r.Rate, true
		}
	}
	return 0, false
}

// Clone returns a deep copy so callers can derive new state without
// mutating the original record.
func (j Jump) Clone() Jump {
	out := j
	out.Gear = cloneStrings(j.Gear)
	out.InvoiceItems = cloneStrings(j.InvoiceItems)
	out.InvoicedServices = cloneStrings(j.InvoicedServices)
	out.PendingInvoiceServices = cloneStrings(j.PendingInvoiceServices)
	out.InvoiceIDs = cloneStrings(j.InvoiceIDs)
	if j.RateAtTimeOfJump != nil {
		out.RateAtTimeOfJump = make([]ServiceRate, len(j.RateAtTimeOfJump))
		copy(out.RateAtTimeOfJump, j.RateAtTimeOfJump)
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
