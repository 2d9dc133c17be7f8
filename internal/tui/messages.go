package tui

import (
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/service"
)

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

type dashboardDataMsg struct {
	summary *service.Summary
	recent  []*domain.Jump
	err     error
}

type jumpsDataMsg struct {
	jumps []*domain.Jump
	err   error
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	err      error
}

// invoiceActionMsg carries the outcome of a lifecycle action. invoice is
// nil after a delete.
type invoiceActionMsg struct {
	invoice *domain.Invoice
	status  string
	err     error
}
