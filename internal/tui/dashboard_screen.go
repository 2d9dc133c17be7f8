package tui

import (
	"context"
	"fmt"

	"github.com/andy/jumplog/internal/app"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/render"
	"github.com/andy/jumplog/internal/repository"
	"github.com/andy/jumplog/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

const recentJumps = 8

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app *app.App

	summary *service.Summary
	recent  []*domain.Jump

	loading bool
	err     error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App) tea.Model {
	return &DashboardModel{
		app:     a,
		loading: true,
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		summary, err := m.app.ReportService.Summary(ctx)
		if err != nil {
			return dashboardDataMsg{err: fmt.Errorf("summary: %w", err)}
		}

		jumps, err := m.app.JumpService.List(ctx, repository.JumpFilter{})
		if err != nil {
			return dashboardDataMsg{err: fmt.Errorf("recent jumps: %w", err)}
		}
		if len(jumps) > recentJumps {
			jumps = jumps[:recentJumps]
		}

		return dashboardDataMsg{summary: summary, recent: jumps}
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.recent = msg.recent
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return errorLine(m.err)
	}

	s := m.summary
	var out string

	out += fmt.Sprintf("  Jumps:     %-8d Work:        %-8d Cutaways:  %d\n", s.TotalJumps, s.WorkJumps, s.Cutaways)
	out += fmt.Sprintf("  Freefall:  %-8s", render.Freefall(s.FreefallSeconds))
	if s.LastJump != nil {
		out += fmt.Sprintf(" Last jump:   %s", s.LastJump.Format("Jan 2, 2006"))
	}
	out += "\n\n"

	out += fmt.Sprintf("  Unbilled:  %-12s Draft:  %-12s Outstanding:  %-12s Paid:  %s\n",
		render.Money(s.Unbilled),
		render.Money(s.Draft),
		render.Money(s.Outstanding),
		render.Money(s.Paid),
	)

	if len(s.ByDropZone) > 0 {
		out += "\n" + titleStyle.Render("  By Dropzone") + "\n"
		out += subtitleStyle.Render(fmt.Sprintf("  %-22s %6s %12s %12s %12s", "Dropzone", "Jumps", "Unbilled", "Outstanding", "Paid")) + "\n"
		for _, d := range s.ByDropZone {
			out += fmt.Sprintf("  %-22s %6d %12s %12s %12s\n",
				render.Truncate(d.DropZone, 22),
				d.Jumps,
				render.Money(d.Unbilled),
				render.Money(d.Outstanding),
				render.Money(d.Paid),
			)
		}
	}

	out += "\n" + titleStyle.Render("  Recent Jumps") + "\n"
	if len(m.recent) == 0 {
		return out + subtitleStyle.Render("  No jumps logged yet") + "\n"
	}
	for _, j := range m.recent {
		out += fmt.Sprintf("  #%-6d %-12s %-22s %s\n",
			j.JumpNumber,
			j.Date.Format("Jan 2"),
			render.Truncate(j.DropZone, 22),
			jumpBadge(j),
		)
	}
	return out
}
