package domain

import "time"

// InvoiceEvent records one billing transition for the audit trail
type InvoiceEvent struct {
	ID         string        `json:"id"`
	InvoiceID  string        `json:"invoiceId"`
	Action     string        `json:"action"`
	FromStatus InvoiceStatus `json:"fromStatus,omitempty"` // empty for create
	ToStatus   InvoiceStatus `json:"toStatus,omitempty"`   // empty for delete
	OccurredAt time.Time     `json:"occurredAt"`
}

// NewInvoiceEvent creates an audit record for a transition
func NewInvoiceEvent(invoiceID, action string, from, to InvoiceStatus, at time.Time) *InvoiceEvent {
	return &InvoiceEvent{
		InvoiceID:  invoiceID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		OccurredAt: at,
	}
}
