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
	tea "github.com/charmbracelet/bubbletea"
)

// jumpFilters is the cycle order of the status filter; the empty
// status shows every jump.
var jumpFilters = []domain.JumpBillingStatus{
	"",
	domain.JumpUnbilled,
	domain.JumpDraft,
	domain.JumpLocked,
	domain.JumpSent,
	domain.JumpPaid,
}

const jumpsPageSize = 15

// JumpsModel lists logged jumps with a detail view
type JumpsModel struct {
	app *app.App

	jumps  []*domain.Jump
	cursor int
	filter int

	detail *domain.Jump

	loading bool
	err     error
}

// NewJumpsModel creates a new jumps list model
func NewJumpsModel(a *app.App) tea.Model {
	return &JumpsModel{
		app:     a,
		loading: true,
	}
}

func (m *JumpsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *JumpsModel) loadData() tea.Cmd {
	status := jumpFilters[m.filter]
	return func() tea.Msg {
		jumps, err := m.app.JumpService.List(context.Background(), repository.JumpFilter{Status: status})
		return jumpsDataMsg{jumps: jumps, err: err}
	}
}

func (m *JumpsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jumpsDataMsg:
		m.loading = false
		m.err = msg.err
		m.jumps = msg.jumps
		if m.cursor >= len(m.jumps) {
			m.cursor = max(len(m.jumps)-1, 0)
		}
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		m.detail = nil
		return m, m.loadData()

	case tea.KeyMsg:
		if m.detail != nil {
			if key.Matches(msg, DefaultKeyMap.Back) {
				m.detail = nil
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.jumps)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Select):
			if m.cursor < len(m.jumps) {
				m.detail = m.jumps[m.cursor]
			}
		case key.Matches(msg, DefaultKeyMap.Filter):
			m.filter = (m.filter + 1) % len(jumpFilters)
			m.cursor = 0
			m.loading = true
			return m, m.loadData()
		}
	}

	return m, nil
}

func (m *JumpsModel) filterLabel() string {
	if s := jumpFilters[m.filter]; s != "" {
		return string(s)
	}
	return "all"
}

func (m *JumpsModel) View() string {
	if m.loading {
		return "Loading jumps..."
	}
	if m.err != nil {
		return errorLine(m.err)
	}
	if m.detail != nil {
		return m.viewDetail(m.detail)
	}

	out := subtitleStyle.Render(fmt.Sprintf("  Filter: %s", m.filterLabel())) + "\n\n"
	if len(m.jumps) == 0 {
		out += subtitleStyle.Render("  No jumps") + "\n"
		return out + "\n" + helpStyle.Render("  [f] Filter")
	}

	out += subtitleStyle.Render(fmt.Sprintf("  %-7s %-11s %-20s %-18s %s", "#", "Date", "Dropzone", "Services", "Billing")) + "\n"

	// keep the cursor inside a scrolling window
	start := 0
	if m.cursor >= jumpsPageSize {
		start = m.cursor - jumpsPageSize + 1
	}
	end := min(start+jumpsPageSize, len(m.jumps))

	for i := start; i < end; i++ {
		j := m.jumps[i]
		line := fmt.Sprintf("  %-7d %-11s %-20s %-18s ",
			j.JumpNumber,
			j.Date.Format("2006-01-02"),
			render.Truncate(j.DropZone, 20),
			render.Truncate(strings.Join(j.InvoiceItems, ","), 18),
		)
		if i == m.cursor {
			out += selectedStyle.Render(line) + jumpBadge(j) + "\n"
		} else {
			out += line + jumpBadge(j) + "\n"
		}
	}

	out += "\n" + helpStyle.Render(fmt.Sprintf("  %d of %d  [enter] Details  [f] Filter", m.cursor+1, len(m.jumps)))
	return out
}

func (m *JumpsModel) viewDetail(j *domain.Jump) string {
	out := titleStyle.Render(fmt.Sprintf("  Jump #%d", j.JumpNumber)) + "\n\n"
	row := func(label, value string) {
		if value != "" {
			out += fmt.Sprintf("  %-12s %s\n", label+":", value)
		}
	}

	row("Date", j.Date.Format("Mon Jan 2, 2006"))
	row("Dropzone", j.DropZone)
	row("Aircraft", j.Aircraft)
	row("Type", j.JumpType)
	if j.ExitAltitude > 0 {
		row("Exit", fmt.Sprintf("%d ft", j.ExitAltitude))
	}
	if j.DeploymentAltitude > 0 {
		row("Deploy", fmt.Sprintf("%d ft", j.DeploymentAltitude))
	}
	if j.FreefallSeconds > 0 {
		row("Freefall", render.Freefall(j.FreefallSeconds))
	}
	row("Gear", strings.Join(j.Gear, ", "))
	if j.Cutaway {
		row("Cutaway", "yes")
	}
	row("Notes", j.Notes)

	if j.WorkJump {
		out += "\n"
		row("Customer", j.CustomerName)
		row("Services", strings.Join(j.InvoiceItems, ", "))
		row("Invoiced", strings.Join(j.InvoicedServices, ", "))
		row("Pending", strings.Join(j.PendingInvoiceServices, ", "))
		for _, r := range j.RateAtTimeOfJump {
			row("Rate", fmt.Sprintf("%s %s", r.Service, render.Money(r.Rate)))
		}
		out += fmt.Sprintf("  %-12s %s\n", "Billing:", jumpBadge(j))
	}

	return out + "\n" + helpStyle.Render("  [esc] Back")
}
