package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/bbrc/scout/internal/logtail"
)

func TestThemeLookups(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa).Name = %q", got)
	}
	if got := GetTheme("nope").Name; got != "Nightfox" {
		t.Fatalf("GetTheme fallback = %q, want Nightfox", got)
	}

	names := ThemeNames()
	for i, name := range names {
		if got := NextTheme(name); got != names[(i+1)%len(names)] {
			t.Fatalf("NextTheme(%q) = %q", name, got)
		}
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}

	names[0] = "mutated"
	if ThemeNames()[0] == "mutated" {
		t.Fatal("ThemeNames exposes internal slice")
	}
}

func TestThemesDefineEveryColor(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for label, c := range map[string]string{
			"Background": th.Background, "Surface": th.Surface, "SurfaceAlt": th.SurfaceAlt,
			"FocusBg": th.FocusBg, "Border": th.Border, "BorderFocus": th.BorderFocus,
			"Text": th.Text, "Muted": th.Muted, "Faint": th.Faint, "Accent": th.Accent,
			"Success": th.Success, "Warning": th.Warning, "Danger": th.Danger, "Info": th.Info,
		} {
			if c == "" {
				t.Fatalf("%s theme has no %s color", name, label)
			}
		}
		for _, state := range []string{agentIdle, agentRunning, agentError, campaignCompleted} {
			if th.StatusColors[state] == "" {
				t.Fatalf("%s theme has no %q status color", name, state)
			}
		}
	}
}

func TestStatusStyle(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()

	if got := styles.StatusStyle(" Running ").GetBackground(); got != lipgloss.Color(th.StatusColors["running"]) {
		t.Fatalf("StatusStyle(running) background = %v, want %v", got, th.StatusColors["running"])
	}
	if got := styles.StatusStyle("mystery").GetBackground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("StatusStyle(unknown) background = %v, want %v", got, th.Muted)
	}
}

func TestLevelStyle(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.Styles()

	tests := []struct {
		level logtail.Level
		want  string
	}{
		{logtail.LevelError, th.Danger},
		{logtail.LevelWarning, th.Warning},
		{logtail.LevelSuccess, th.Success},
		{logtail.LevelPlain, th.Text},
	}
	for _, tt := range tests {
		if got := styles.LevelStyle(tt.level).GetForeground(); got != lipgloss.Color(tt.want) {
			t.Fatalf("LevelStyle(%v) foreground = %v, want %v", tt.level, got, tt.want)
		}
	}
}
