package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/state"
)

// Campaign states shown on the outreach view.
const (
	campaignIdle      = "idle"
	campaignRunning   = "running"
	campaignCompleted = "completed"
	campaignError     = "error"
)

type outreachState struct {
	status  string
	message string
}

type launchConfirmedMsg struct{}

type campaignMsg struct {
	toastID string
	result  api.AgentResult
	err     error
}

func (m Model) handleOutreachKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Launch):
		if m.client == nil || m.outreach.status == campaignRunning {
			return m, nil
		}
		m.modal = newConfirmModal(
			"Launch outreach campaign?",
			"This will send emails to all pending authors. Are you sure?",
			func() tea.Cmd {
				return func() tea.Msg { return launchConfirmedMsg{} }
			},
		)
	case key.Matches(msg, m.keys.Refresh):
		if m.client != nil {
			return m, m.loadStatsCmd()
		}
	}
	return m, nil
}

func (m Model) launchCampaign() (tea.Model, tea.Cmd) {
	if m.client == nil || m.outreach.status == campaignRunning {
		return m, nil
	}
	m.outreach = outreachState{status: campaignRunning}
	toastID := m.toasts.Loading("Starting outreach campaign...")

	ctx, client := m.ctx, m.client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		res, err := client.StartAgent(ctx, "outreach")
		return campaignMsg{toastID: toastID, result: res, err: err}
	}
}

func (m Model) handleCampaignResult(msg campaignMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err != nil:
		m.outreach = outreachState{status: campaignError, message: errorText(msg.err)}
		m.toasts.Error(msg.toastID, "Failed to start campaign: "+m.outreach.message)
		return m, nil
	case !msg.result.Started():
		m.outreach = outreachState{status: campaignError, message: msg.result.Message}
		m.toasts.Error(msg.toastID, "Failed: "+msg.result.Message)
		return m, nil
	}
	m.outreach = outreachState{status: campaignCompleted}
	m.toasts.Success(msg.toastID, "Outreach campaign started!")
	return m, m.loadStatsCmd()
}

// renderOutreach shows the email counters and campaign state. The backend
// only counts sent emails, so pending and failed stay at zero.
func (m Model) renderOutreach() string {
	height := m.contentHeight()
	styles := m.theme.Styles()

	sent := "-"
	if stats, ok := m.snapshot.Stats.Data(); ok {
		sent = fmt.Sprint(stats.EmailsSent)
	} else if m.snapshot.Stats.View(nil) == state.ViewLoading {
		sent = m.spinner.View()
	}

	cards := []struct {
		label, value string
		style        lipgloss.Style
	}{
		{"Sent", sent, styles.SuccessText},
		{"Pending", "0", styles.WarningText},
		{"Failed", "0", styles.DangerText},
	}
	cardHeight := 5
	row := make([]string, 0, len(cards))
	remaining := m.width
	for i, c := range cards {
		w := m.width / len(cards)
		if i == len(cards)-1 {
			w = remaining
		}
		remaining -= w
		content := "\n" + lipgloss.PlaceHorizontal(max(w-2, 0), lipgloss.Center, c.style.Bold(true).Render(c.value))
		row = append(row, m.renderTitledBox(c.label, content, w, cardHeight, false))
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, row...)

	var b strings.Builder
	b.WriteString(styles.Text.Render("Campaign status: "))
	b.WriteString(styles.StatusStyle(m.outreach.status).Render(m.outreach.status))
	b.WriteString("\n\n")
	switch m.outreach.status {
	case campaignRunning:
		b.WriteString(m.spinner.View() + styles.MutedText.Render(" Starting the outreach agent..."))
	case campaignError:
		b.WriteString(styles.DangerText.Render(m.outreach.message))
	case campaignCompleted:
		b.WriteString(styles.SuccessText.Render("The outreach agent is sending emails."))
	default:
		b.WriteString(styles.MutedText.Render("Press enter to launch a campaign to all pending authors."))
	}

	panel := m.renderTitledBox("Campaign", b.String(), m.width, max(height-cardHeight, 4), true)
	return top + "\n" + panel
}
