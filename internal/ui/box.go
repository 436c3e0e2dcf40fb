package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// renderTitledBox renders content in a box with the title embedded in the top border:
// ┌─── Title ───┐
// Focused boxes use BorderFocus and FocusBg.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleWidth := runewidth.StringWidth(title) + 2
	leftPad := max((innerWidth-titleWidth)/2, 0)
	rightPad := max(innerWidth-titleWidth-leftPad, 0)

	var b strings.Builder
	b.WriteString(bg.Render("┌"+strings.Repeat("─", leftPad), borderStyle))
	b.WriteString(bg.Render(" "+title+" ", titleStyle))
	b.WriteString(bg.Render(strings.Repeat("─", rightPad)+"┐", borderStyle))
	b.WriteString("\n")

	side := bg.Render("│", borderStyle)
	body := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColor))
	lines := strings.Split(content, "\n")
	for i := range max(height-2, 0) {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		b.WriteString(side + body.Render(line) + side)
		b.WriteString("\n")
	}

	b.WriteString(bg.Render("└"+strings.Repeat("─", innerWidth)+"┘", borderStyle))
	return b.String()
}

// renderPlaceholder centers a one-line message in the content area.
func (m Model) renderPlaceholder(msg string, style lipgloss.Style, height int) string {
	return lipgloss.Place(m.width, max(height, 1), lipgloss.Center, lipgloss.Center, style.Render(msg))
}
