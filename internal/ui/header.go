package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: backend state, counters and the time
// of the last successful poll.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("scout", styles.Logo)}
	parts = append(parts, m.backendIndicator(styles, bg)...)

	if stats, ok := m.snapshot.Stats.Data(); ok {
		counters := []string{
			bg.Render("Papers:", styles.MutedText) + bg.Space() + bg.Render(fmt.Sprint(stats.PapersFound), styles.Text),
			bg.Render("Authors:", styles.MutedText) + bg.Space() + bg.Render(fmt.Sprint(stats.AuthorsProfiled), styles.Text),
			bg.Render("Emails:", styles.MutedText) + bg.Space() + bg.Render(fmt.Sprint(stats.EmailsSent), styles.Text),
		}
		if compact {
			counters = counters[2:]
		}
		parts = append(parts, counters...)
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.FaintText))
	}

	if !compact && m.config != nil && m.config.APIURL != "" {
		parts = append(parts, bg.Render(truncate(m.config.APIURL, 40), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, bg.Spaces(2)))
}

// backendIndicator describes reachability. Two consecutive failed polls
// mark the backend offline; a single failure only shows a warning.
func (m Model) backendIndicator(styles Styles, bg BgStyle) []string {
	snap := m.snapshot
	lastErr := snap.LastError()

	switch {
	case snap.IsOffline():
		return []string{
			bg.Render("● "+classifyConnectionError(lastErr), styles.DangerText),
			bg.Render(fmt.Sprintf("Retrying... (%d failed)", max(snap.Stats.Failures(), snap.Status.Failures())), styles.WarningText.Bold(true)),
		}

	case snap.Status.HasData():
		status := snap.Status.Value()
		var parts []string
		if status.Online() {
			parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
		} else {
			label := strings.ToUpper(strings.TrimSpace(status.Status))
			if label == "" {
				label = "UNKNOWN"
			}
			parts = append(parts, bg.Render("● "+label, styles.WarningText.Bold(true)))
		}
		if v := strings.TrimSpace(status.Version); v != "" {
			parts = append(parts, bg.Render("v"+strings.TrimPrefix(v, "v"), styles.MutedText))
		}
		if lastErr != nil {
			parts = append(parts, bg.Render("⚠ poll failed", styles.WarningText))
		}
		return parts

	case lastErr != nil:
		return []string{bg.Render("BACKEND "+classifyConnectionError(lastErr), styles.DangerText)}

	default:
		return []string{bg.Render("Connecting to backend...", styles.WarningText.Bold(true))}
	}
}

// formatTimestamp formats the last update time with relative indicator.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}

	since := m.now().Sub(m.lastUpdated)
	out := m.lastUpdated.Format("15:04:05")

	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "returned status"):
		return "HTTP ERROR"
	default:
		return "ERROR"
	}
}

type barCommand struct{ key, desc string }

// renderCommandBar renders the key hints for the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	commands := m.viewCommands()

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+3)

	// View tabs
	var tabs []string
	for i, v := range viewOrder {
		label := fmt.Sprintf("F%d %s", i+1, v.Title())
		if v == m.currentView {
			tabs = append(tabs, bg.Render(label, styles.AccentText.Bold(true)))
		} else if m.width >= LayoutWideWidth {
			tabs = append(tabs, bg.Render(label, styles.FaintText))
		}
	}
	segments = append(segments, strings.Join(tabs, bg.Spaces(2)))

	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, bg.Spaces(2)))
}

func (m Model) viewCommands() []barCommand {
	switch m.currentView {
	case ViewAuthors:
		if m.authors.searching {
			return []barCommand{{"enter", "Done"}, {"esc", "Done"}}
		}
		cmds := []barCommand{{"/", "Search"}, {"1-5", "Sort"}, {"n/p", "Page"}}
		cmds = append(cmds, barCommand{"s", ternary(m.authors.syncing, "Syncing...", "Sync")})
		cmds = append(cmds, barCommand{"x", ternary(m.authors.exporting, "Exporting...", "Export")})
		if m.authors.query.Term != "" {
			cmds = append(cmds, barCommand{"esc", "Clear"})
		}
		return append(cmds, barCommand{"?", "More"})
	case ViewOutreach:
		return []barCommand{{"enter", "Launch"}, {"r", "Refresh"}, {"?", "More"}}
	case ViewLogs:
		if m.logState.searchActive {
			return []barCommand{{"enter", "Search"}, {"esc", "Cancel"}}
		}
		return []barCommand{
			{"Space", ternary(m.logState.follow, "Pause", "Follow")},
			{"/", "Search"},
			{"n/N", "Next/Prev"},
			{"y", "Copy"},
			{"r", "Refresh"},
			{"?", "More"},
		}
	case ViewSettings:
		if m.settings.editing {
			return []barCommand{{"tab", "Next"}, {"enter", "Apply"}, {"ctrl+s", "Save"}, {"esc", "Done"}}
		}
		return []barCommand{{"j/k", "Field"}, {"enter", "Edit"}, {"ctrl+s", "Save"}, {"r", "Reload"}, {"?", "More"}}
	default:
		return []barCommand{{"j/k", "Agent"}, {"enter", "Start"}, {"r", "Refresh"}, {"?", "More"}}
	}
}

// renderToasts renders active notifications on a single line.
func (m Model) renderToasts() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	active := m.toasts.Active()
	if len(active) == 0 {
		return bg.FillLine("", m.width)
	}

	parts := make([]string, 0, len(active))
	for i := len(active) - 1; i >= 0; i-- {
		t := active[i]
		parts = append(parts, m.renderToast(t.Kind, t.Message, styles, bg))
	}
	line := strings.Join(parts, bg.Spaces(3))
	return bg.FillLine(lipgloss.NewStyle().MaxWidth(m.width).Render(line), m.width)
}
