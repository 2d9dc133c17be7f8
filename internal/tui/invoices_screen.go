package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/jumplog/internal/app"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/render"
	"github.com/andy/jumplog/internal/repository"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type invoiceViewMode int

const (
	invoiceViewList    invoiceViewMode = iota
	invoiceViewDetail                  // Viewing a single invoice
	invoiceViewNew                     // Typing the dropzone for a new draft
	invoiceViewConfirm                 // Confirming a draft delete
)

// InvoicesModel displays invoices in list and detail views and drives
// the invoice lifecycle
type InvoicesModel struct {
	app       *app.App
	mode      invoiceViewMode
	invoices  []*domain.Invoice
	cursor    int
	selected  *domain.Invoice
	loading   bool
	err       error
	statusMsg string

	dropZoneInput textinput.Model
}

// IsCapturingInput returns true when the dropzone input is active
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.mode == invoiceViewNew
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	ti := textinput.New()
	ti.Placeholder = "Dropzone"
	ti.CharLimit = 120
	ti.Width = 40

	return &InvoicesModel{
		app:           a,
		mode:          invoiceViewList,
		loading:       true,
		dropZoneInput: ti,
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	return func() tea.Msg {
		invoices, err := m.app.InvoiceService.List(context.Background(), repository.InvoiceFilter{})
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

// createDraft bills every available service at the dropzone. An open
// draft comes back for review instead.
func (m *InvoicesModel) createDraft(dropZone string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx := context.Background()

		jumps, err := a.JumpService.Available(ctx, dropZone)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		ids := make([]string, 0, len(jumps))
		for _, j := range jumps {
			ids = append(ids, j.ID)
		}

		res, err := a.InvoiceService.CreateOrReview(ctx, dropZone, ids)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		if !res.Created {
			return invoiceActionMsg{
				invoice: res.Invoice,
				status:  fmt.Sprintf("Draft #%d is still open for %s", res.Invoice.InvoiceNumber, res.Invoice.DropZone),
			}
		}
		return invoiceActionMsg{
			invoice: res.Invoice,
			status:  fmt.Sprintf("Created draft #%d", res.Invoice.InvoiceNumber),
		}
	}
}

func (m *InvoicesModel) transition(verb string, op func(context.Context, string) (*domain.Invoice, error)) tea.Cmd {
	id := m.selected.ID
	return func() tea.Msg {
		inv, err := op(context.Background(), id)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{invoice: inv, status: fmt.Sprintf("Invoice #%d %s", inv.InvoiceNumber, verb)}
	}
}

// send marks the invoice sent and writes its text document
func (m *InvoicesModel) send() tea.Cmd {
	a := m.app
	id := m.selected.ID
	return func() tea.Msg {
		inv, err := a.InvoiceService.Send(context.Background(), id)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		path, err := render.WriteInvoiceFile(a.Config.Invoice.OutputDir, inv, a.Config.Instructor)
		if err != nil {
			return invoiceActionMsg{invoice: inv, err: fmt.Errorf("invoice #%d sent but not written: %w", inv.InvoiceNumber, err)}
		}
		return invoiceActionMsg{invoice: inv, status: fmt.Sprintf("Invoice #%d sent, saved to %s", inv.InvoiceNumber, path)}
	}
}

func (m *InvoicesModel) deleteDraft() tea.Cmd {
	a := m.app
	inv := m.selected
	return func() tea.Msg {
		if err := a.InvoiceService.DeleteOpen(context.Background(), inv.ID); err != nil {
			return invoiceActionMsg{invoice: inv, err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("Deleted draft #%d", inv.InvoiceNumber)}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		m.invoices = msg.invoices
		if m.cursor >= len(m.invoices) {
			m.cursor = max(len(m.invoices)-1, 0)
		}
		return m, nil

	case invoiceActionMsg:
		m.err = msg.err
		m.statusMsg = msg.status
		switch {
		case msg.invoice != nil:
			m.selected = msg.invoice
			m.mode = invoiceViewDetail
		case msg.err == nil:
			m.selected = nil
			m.mode = invoiceViewList
		case m.mode == invoiceViewConfirm:
			m.mode = invoiceViewDetail
		}
		return m, m.loadInvoices()

	case tea.KeyMsg:
		switch m.mode {
		case invoiceViewNew:
			return m.updateNew(msg)
		case invoiceViewConfirm:
			return m.updateConfirm(msg)
		case invoiceViewDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if m.cursor < len(m.invoices) {
			m.selected = m.invoices[m.cursor]
			m.mode = invoiceViewDetail
			m.err = nil
			m.statusMsg = ""
		}
	case key.Matches(msg, DefaultKeyMap.New):
		return m.startNew()
	}
	return m, nil
}

func (m *InvoicesModel) startNew() (tea.Model, tea.Cmd) {
	m.mode = invoiceViewNew
	m.err = nil
	m.statusMsg = ""
	m.dropZoneInput.SetValue("")
	return m, m.dropZoneInput.Focus()
}

func (m *InvoicesModel) updateNew(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.dropZoneInput.Blur()
		m.mode = invoiceViewList
		return m, nil
	case tea.KeyEnter:
		dropZone := strings.TrimSpace(m.dropZoneInput.Value())
		if dropZone == "" {
			return m, nil
		}
		m.dropZoneInput.Blur()
		m.mode = invoiceViewList
		return m, m.createDraft(dropZone)
	}

	var cmd tea.Cmd
	m.dropZoneInput, cmd = m.dropZoneInput.Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	svc := m.app.InvoiceService
	m.statusMsg = ""

	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
		m.selected = nil
		m.err = nil
	case key.Matches(msg, DefaultKeyMap.New):
		return m.startNew()
	case key.Matches(msg, DefaultKeyMap.Lock):
		return m, m.transition("locked", svc.Lock)
	case key.Matches(msg, DefaultKeyMap.Send):
		return m, m.send()
	case key.Matches(msg, DefaultKeyMap.Pay):
		return m, m.transition("marked paid", svc.MarkPaid)
	case key.Matches(msg, DefaultKeyMap.Reopen):
		return m, m.transition("reopened", svc.Reopen)
	case key.Matches(msg, DefaultKeyMap.Delete):
		m.err = nil
		m.mode = invoiceViewConfirm
	}
	return m, nil
}

func (m *InvoicesModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, DefaultKeyMap.Confirm) {
		return m, m.deleteDraft()
	}
	m.mode = invoiceViewDetail
	return m, nil
}

func (m *InvoicesModel) View() string {
	if m.loading && m.invoices == nil {
		return "Loading invoices..."
	}

	var out string
	switch m.mode {
	case invoiceViewNew:
		out = m.viewNew()
	case invoiceViewDetail, invoiceViewConfirm:
		out = m.viewDetail()
	default:
		out = m.viewList()
	}

	if m.statusMsg != "" {
		out += "\n" + statusStyle.Render("  "+m.statusMsg)
	}
	if m.err != nil {
		out += "\n" + errorLine(m.err)
	}
	return out
}

func (m *InvoicesModel) viewList() string {
	if len(m.invoices) == 0 {
		return subtitleStyle.Render("  No invoices yet") + "\n\n" + helpStyle.Render("  [n] New draft")
	}

	out := subtitleStyle.Render(fmt.Sprintf("  %-7s %-22s %-8s %6s %12s", "#", "Dropzone", "Status", "Items", "Total")) + "\n"
	for i, inv := range m.invoices {
		line := fmt.Sprintf("  %-7d %-22s ", inv.InvoiceNumber, render.Truncate(inv.DropZone, 22))
		rest := fmt.Sprintf(" %6d %12s", len(inv.Items), render.Money(inv.Total))
		badge := fmt.Sprintf("%-8s", strings.ToUpper(string(inv.Status)))
		if i == m.cursor {
			out += selectedStyle.Render(line+badge+rest) + "\n"
		} else {
			out += line + statusBadge(inv.Status) + strings.Repeat(" ", 8-len(inv.Status)) + rest + "\n"
		}
	}

	return out + "\n" + helpStyle.Render("  [enter] Details  [n] New draft")
}

func (m *InvoicesModel) viewNew() string {
	out := titleStyle.Render("  New Draft Invoice") + "\n\n"
	out += "  " + m.dropZoneInput.View() + "\n\n"
	return out + helpStyle.Render("  [enter] Create  [esc] Cancel")
}

func (m *InvoicesModel) viewDetail() string {
	inv := m.selected
	if inv == nil {
		return ""
	}

	out := titleStyle.Render(fmt.Sprintf("  Invoice #%d", inv.InvoiceNumber)) + "  " + statusBadge(inv.Status) + "\n\n"
	out += fmt.Sprintf("  Dropzone:  %s\n", inv.DropZone)
	out += fmt.Sprintf("  Created:   %s\n", inv.DateCreated.Format("Jan 2, 2006"))
	if inv.DateLocked != nil {
		out += fmt.Sprintf("  Locked:    %s\n", inv.DateLocked.Format("Jan 2, 2006"))
	}
	if inv.DateSent != nil {
		out += fmt.Sprintf("  Sent:      %s\n", inv.DateSent.Format("Jan 2, 2006"))
	}
	if inv.DatePaid != nil {
		out += fmt.Sprintf("  Paid:      %s\n", inv.DatePaid.Format("Jan 2, 2006"))
	}

	out += "\n" + subtitleStyle.Render(fmt.Sprintf("  %-7s %-8s %-18s %-12s %4s %10s", "Jump", "Date", "Customer", "Service", "Qty", "Amount")) + "\n"
	for _, item := range inv.Items {
		out += fmt.Sprintf("  %-7d %-8s %-18s %-12s %4d %10s\n",
			item.JumpNumber,
			item.Date.Format("Jan 02"),
			render.Truncate(item.CustomerName, 18),
			render.Truncate(item.Service, 12),
			item.Quantity,
			render.Money(item.Total),
		)
	}
	out += fmt.Sprintf("\n  %57s %10s\n", "TOTAL", render.Money(inv.Total))

	if m.mode == invoiceViewConfirm {
		return out + "\n" + errorStyle.Render(fmt.Sprintf("  Delete draft #%d? [y] Yes  [any] No", inv.InvoiceNumber))
	}
	return out + "\n" + helpStyle.Render("  [l] Lock  [s] Send  [p] Paid  [o] Reopen  [d] Delete  [esc] Back")
}
