package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/state"
)

// Agent row states.
const (
	agentIdle    = "idle"
	agentRunning = "running"
	agentError   = "error"
)

type agentRow struct {
	id    string
	label string
}

// dashboardAgents are the agents that can be started from the dashboard.
var dashboardAgents = []agentRow{
	{"discovery", "Discovery Agent"},
	{"profiling", "Profiling Agent"},
	{"outreach", "Outreach Agent"},
}

type dashboardState struct {
	selected int
	agents   map[string]string
}

func newDashboardState() dashboardState {
	agents := make(map[string]string, len(dashboardAgents))
	for _, a := range dashboardAgents {
		agents[a.id] = agentIdle
	}
	return dashboardState{agents: agents}
}

type agentResultMsg struct {
	agent   string
	label   string
	toastID string
	result  api.AgentResult
	err     error
}

type agentIdleMsg struct{ agent string }

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.dash.selected > 0 {
			m.dash.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.dash.selected < len(dashboardAgents)-1 {
			m.dash.selected++
		}
	case key.Matches(msg, m.keys.StartAgent):
		return m.startAgent(dashboardAgents[m.dash.selected])
	case key.Matches(msg, m.keys.Refresh):
		if m.client != nil {
			return m, m.loadStatsCmd()
		}
	}
	return m, nil
}

// startAgent asks the backend to start an agent. A row that is already
// running ignores the request.
func (m Model) startAgent(row agentRow) (tea.Model, tea.Cmd) {
	if m.client == nil || m.dash.agents[row.id] == agentRunning {
		return m, nil
	}
	m.dash.agents[row.id] = agentRunning
	toastID := m.toasts.Loading(fmt.Sprintf("Starting %s...", row.label))

	ctx, client := m.ctx, m.client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		res, err := client.StartAgent(ctx, row.id)
		return agentResultMsg{agent: row.id, label: row.label, toastID: toastID, result: res, err: err}
	}
}

func (m Model) handleAgentResult(msg agentResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.dash.agents[msg.agent] = agentError
		m.toasts.Error(msg.toastID, "Network error: "+errorText(msg.err))
		m.logger.Sugar().Warnw("start agent failed", "agent", msg.agent, "error", msg.err)
		return m, nil
	}
	if !msg.result.Started() {
		m.dash.agents[msg.agent] = agentError
		m.toasts.Error(msg.toastID, "Failed: "+msg.result.Message)
		return m, nil
	}
	m.toasts.Success(msg.toastID, msg.label+" started")
	agent := msg.agent
	return m, tea.Tick(AgentIdleDelay, func(time.Time) tea.Msg {
		return agentIdleMsg{agent: agent}
	})
}

// renderDashboard renders stat cards, the counter chart and agent rows.
func (m Model) renderDashboard() string {
	height := m.contentHeight()
	cardHeight := 5
	if height < 14 {
		cardHeight = 4
	}

	stats := m.snapshot.Stats
	cards := []struct{ label, value string }{
		{"Total Papers", m.statValue(stats, func(s api.Stats) int { return s.PapersFound })},
		{"Total Authors", m.statValue(stats, func(s api.Stats) int { return s.AuthorsProfiled })},
		{"Emails Sent", m.statValue(stats, func(s api.Stats) int { return s.EmailsSent })},
	}
	cardRow := make([]string, 0, len(cards))
	remaining := m.width
	for i, c := range cards {
		w := m.width / len(cards)
		if i == len(cards)-1 {
			w = remaining
		}
		remaining -= w
		cardRow = append(cardRow, m.renderStatCard(c.label, c.value, w, cardHeight))
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, cardRow...)

	rest := max(height-cardHeight, 4)
	if m.width >= LayoutWideWidth {
		chartWidth := m.width * 60 / 100
		chart := m.renderTitledBox("Activity", m.renderChart(chartWidth-4), chartWidth, rest, false)
		agents := m.renderTitledBox(m.agentsTitle(), m.renderAgentRows(m.width-chartWidth-4), m.width-chartWidth, rest, true)
		return top + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, chart, agents)
	}

	agentsHeight := len(dashboardAgents) + 2
	chartHeight := max(rest-agentsHeight, 3)
	chart := m.renderTitledBox("Activity", m.renderChart(m.width-4), m.width, chartHeight, false)
	agents := m.renderTitledBox(m.agentsTitle(), m.renderAgentRows(m.width-4), m.width, agentsHeight, true)
	return top + "\n" + chart + "\n" + agents
}

func (m Model) statValue(res state.Resource[api.Stats], pick func(api.Stats) int) string {
	if v, ok := res.Data(); ok {
		return fmt.Sprint(pick(v))
	}
	switch res.View(nil) {
	case state.ViewError:
		return "-"
	default:
		return m.spinner.View()
	}
}

func (m Model) renderStatCard(label, value string, width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	content := "\n" + styles.Text.Bold(true).Render(value)
	if height > 4 {
		content = "\n" + content
	}
	return m.renderTitledBox(label, lipgloss.PlaceHorizontal(max(width-2, 0), lipgloss.Center, content), width, height, false)
}

func (m Model) agentsTitle() string {
	running := 0
	for _, s := range m.dash.agents {
		if s == agentRunning {
			running++
		}
	}
	if running == 0 {
		return "Agents"
	}
	return fmt.Sprintf("Agents · %d running", running)
}

func (m Model) renderAgentRows(width int) string {
	styles := m.theme.Styles()
	lines := make([]string, 0, len(dashboardAgents))
	for i, a := range dashboardAgents {
		status := m.dash.agents[a.id]
		badge := styles.StatusStyle(status).Render(status)
		marker := "  "
		if i == m.dash.selected {
			marker = "▶ "
		}
		labelWidth := max(width-lipgloss.Width(badge)-3, 8)
		label := marker + cell(a.label, labelWidth-2)
		if i == m.dash.selected {
			label = styles.Selected.Render(label)
		} else {
			label = styles.Text.Render(label)
		}
		lines = append(lines, label+" "+badge)
	}
	return strings.Join(lines, "\n")
}

type chartBar struct {
	label string
	value int
	color string
}

// renderChart draws the three counters as horizontal bars.
func (m Model) renderChart(width int) string {
	stats, ok := m.snapshot.Stats.Data()
	if !ok {
		if m.snapshot.Stats.View(nil) == state.ViewError {
			return m.theme.Styles().DangerText.Render("Stats unavailable: " + errorText(m.snapshot.Stats.Err()))
		}
		return m.spinner.View() + " Loading stats..."
	}

	bars := []chartBar{
		{"Papers", stats.PapersFound, m.theme.Accent},
		{"Authors", stats.AuthorsProfiled, m.theme.Info},
		{"Emails", stats.EmailsSent, m.theme.Warning},
	}

	labelWidth := 8
	valueWidth := 0
	values := make([]int, len(bars))
	for i, b := range bars {
		values[i] = b.value
		valueWidth = max(valueWidth, len(fmt.Sprint(b.value)))
	}
	barWidth := max(width-labelWidth-valueWidth-2, 1)
	lengths := barLengths(values, barWidth)

	styles := m.theme.Styles()
	lines := make([]string, 0, len(bars)*2)
	for i, b := range bars {
		fill := lipgloss.NewStyle().Foreground(lipgloss.Color(b.color)).Render(strings.Repeat("█", lengths[i]))
		line := styles.MutedText.Render(cell(b.label, labelWidth)) + fill +
			strings.Repeat(" ", barWidth-lengths[i]+1) + styles.Text.Render(fmt.Sprint(b.value))
		lines = append(lines, line, "")
	}
	return strings.Join(lines, "\n")
}

// barLengths scales values so the largest fills width. A positive value is
// always at least one cell wide.
func barLengths(values []int, width int) []int {
	out := make([]int, len(values))
	peak := 0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak <= 0 || width <= 0 {
		return out
	}
	for i, v := range values {
		if v <= 0 {
			continue
		}
		out[i] = max(v*width/peak, 1)
	}
	return out
}
