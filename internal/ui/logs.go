package ui

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bbrc/scout/internal/logtail"
)

// logState holds all log-related state.
type logState struct {
	rawLines []string
	follow   bool

	// Search
	searchActive   bool
	searchQuery    string
	searchRegex    *regexp.Regexp
	searchInput    textinput.Model
	searchErr      string
	searchMatches  []int // line indices that match
	searchMatchIdx int

	// Skip re-render when unchanged
	contentVersion uint64
	lastRendered   uint64
}

func newLogState() logState {
	ti := textinput.New()
	ti.Placeholder = "Search logs..."
	ti.CharLimit = 100
	return logState{follow: true, searchInput: ti}
}

type copyMsg struct {
	lines int
	err   error
}

func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 1), max(m.contentHeight()-3, 1))
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport resizes the viewport and re-renders its content when
// the lines or search highlighting changed.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		m.initLogViewport()
	}
	// Box borders plus the status line below the box.
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.contentHeight()-3, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.lastRendered == 0 || m.logState.contentVersion != m.logState.lastRendered {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.lastRendered = max(m.logState.contentVersion, 1)
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// syncLogLines copies the snapshot's log lines into the view buffer.
func (m *Model) syncLogLines() {
	lines := m.snapshot.Logs.Value()
	if over := len(lines) - LogBufferLimit; over > 0 {
		lines = lines[over:]
	}
	if slices.Equal(lines, m.logState.rawLines) {
		return
	}
	m.logState.rawLines = slices.Clone(lines)
	if m.logState.searchRegex != nil {
		m.findSearchMatches()
	}
	m.logState.contentVersion++
	if m.ready {
		m.updateLogViewport()
	}
}

func (m Model) renderLogs() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	height := m.contentHeight()

	title := "Agent Logs"
	if !m.logState.follow {
		title += " (paused)"
	}
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, height-1, true)
	return box + "\n" + bg.FillLine(m.renderLogStatus(styles, bg), m.width)
}

func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	if m.logState.searchActive {
		input := m.logState.searchInput
		input.Width = max(m.width-8, 10)
		return input.View()
	}
	if m.logState.searchErr != "" {
		return bg.Render("Invalid pattern: "+m.logState.searchErr, styles.DangerText)
	}
	if m.logState.searchRegex != nil {
		if len(m.logState.searchMatches) == 0 {
			return bg.Render("Pattern not found: "+m.logState.searchQuery, styles.DangerText)
		}
		return bg.Render("/"+m.logState.searchQuery, styles.AccentText) +
			bg.Render(" - ", styles.FaintText) +
			bg.Render(fmt.Sprintf("%d/%d", m.logState.searchMatchIdx+1, len(m.logState.searchMatches)), styles.WarningText) +
			bg.Render(" - n/N to move, Esc to clear", styles.FaintText)
	}

	counts := logtail.Count(m.logState.rawLines)
	parts := []string{
		bg.Render(fmt.Sprintf("%d lines", len(m.logState.rawLines)), styles.FaintText),
		bg.Render(fmt.Sprintf("%d errors", counts[logtail.LevelError]), styles.DangerText),
		bg.Render(fmt.Sprintf("%d warnings", counts[logtail.LevelWarning]), styles.WarningText),
		bg.Render("follow "+ternary(m.logState.follow, "on", "off"), styles.FaintText),
	}
	if err := m.snapshot.Logs.Err(); err != nil {
		parts = append(parts, bg.Render("fetch failed: "+errorText(err), styles.DangerText))
	}
	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return strings.Join(parts, sep)
}

// renderLogContent colours each line by its level and highlights search
// matches.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	width := m.logViewport.Width

	if len(m.logState.rawLines) == 0 {
		msg := "No log entries"
		if m.snapshot.Logs.Loading() || !m.snapshot.Logs.HasData() {
			msg = "Waiting for logs..."
		}
		return bg.FillLine(bg.Render(msg, styles.MutedText), width)
	}

	active := -1
	if n := len(m.logState.searchMatches); n > 0 && m.logState.searchMatchIdx < n {
		active = m.logState.searchMatches[m.logState.searchMatchIdx]
	}
	passive := make(map[int]bool, len(m.logState.searchMatches))
	for _, idx := range m.logState.searchMatches {
		passive[idx] = true
	}

	var b strings.Builder
	for i, line := range m.logState.rawLines {
		var content string
		switch {
		case i == active:
			hl := lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.Warning)).
				Foreground(lipgloss.Color(m.theme.Background))
			content = hl.Render(line)
		case passive[i]:
			content = bg.Render(line, styles.AccentText.Bold(true))
		default:
			content = bg.Render(line, styles.LevelStyle(logtail.Classify(line)))
		}
		b.WriteString(bg.FillLine(content, width))
		if i < len(m.logState.rawLines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.logState.searchActive {
		return m.handleLogSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.updateLogViewport()

	case key.Matches(msg, m.keys.Search):
		m.logState.searchActive = true
		m.logState.searchErr = ""
		m.logState.searchInput.SetValue("")
		return m, m.logState.searchInput.Focus()

	case key.Matches(msg, m.keys.NextMatch):
		m.stepSearchMatch(1)

	case key.Matches(msg, m.keys.PrevMatch):
		m.stepSearchMatch(-1)

	case key.Matches(msg, m.keys.CopyLogs):
		lines := slices.Clone(m.logState.rawLines)
		copyText := m.copyText
		return m, func() tea.Msg {
			err := copyText(strings.Join(lines, "\n"))
			return copyMsg{lines: len(lines), err: err}
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshLogs()

	case key.Matches(msg, m.keys.Escape):
		if m.logState.searchRegex != nil || m.logState.searchErr != "" {
			m.clearLogSearch()
			m.updateLogViewport()
		}

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.logState.follow = false
	}
	return m, nil
}

func (m Model) handleLogSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		query := strings.TrimSpace(m.logState.searchInput.Value())
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		if query == "" {
			m.clearLogSearch()
			m.updateLogViewport()
			return m, nil
		}
		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			m.clearLogSearch()
			m.logState.searchErr = err.Error()
			return m, nil
		}
		m.logState.searchErr = ""
		m.logState.searchRegex = re
		m.logState.searchQuery = query
		m.logState.searchMatchIdx = 0
		m.findSearchMatches()
		m.scrollToSearchMatch()
		m.updateLogViewport()
		return m, nil

	case tea.KeyEsc:
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		m.logState.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) clearLogSearch() {
	m.logState.searchRegex = nil
	m.logState.searchQuery = ""
	m.logState.searchErr = ""
	m.logState.searchMatches = nil
	m.logState.searchMatchIdx = 0
	m.logState.contentVersion++
}

func (m *Model) findSearchMatches() {
	m.logState.searchMatches = nil
	if m.logState.searchRegex == nil {
		return
	}
	for i, line := range m.logState.rawLines {
		if m.logState.searchRegex.MatchString(line) {
			m.logState.searchMatches = append(m.logState.searchMatches, i)
		}
	}
	if m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		m.logState.searchMatchIdx = 0
	}
	m.logState.contentVersion++
}

// stepSearchMatch moves delta matches forward, wrapping at either end.
func (m *Model) stepSearchMatch(delta int) {
	n := len(m.logState.searchMatches)
	if n == 0 {
		return
	}
	m.logState.searchMatchIdx = ((m.logState.searchMatchIdx+delta)%n + n) % n
	m.logState.contentVersion++
	m.scrollToSearchMatch()
	m.updateLogViewport()
}

// scrollToSearchMatch centres the current match and pauses follow.
func (m *Model) scrollToSearchMatch() {
	n := len(m.logState.searchMatches)
	if n == 0 || m.logState.searchMatchIdx >= n {
		return
	}
	target := m.logState.searchMatches[m.logState.searchMatchIdx]
	m.logState.follow = false
	m.logViewport.SetYOffset(max(target-m.logViewport.Height/2, 0))
}

// refreshLogs restarts the logs feed so it reads immediately. Without a
// feed the backend is asked directly.
func (m *Model) refreshLogs() tea.Cmd {
	restarted, err := m.feeds.restart(m.ctx, ViewLogs)
	if restarted {
		if err != nil {
			m.toasts.Error("", "Logs feed: "+err.Error())
		}
		return nil
	}
	if m.client == nil || m.store == nil {
		return nil
	}
	ctx, client, store := m.ctx, m.client, m.store
	store.BeginLogs()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		lines, err := client.FetchLogs(ctx)
		store.UpdateLogs(lines, err)
		return storeUpdatedMsg{}
	}
}
