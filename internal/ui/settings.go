package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/state"
)

// Settings form fields, in display order.
const (
	fieldKeywords = iota
	fieldDaysBack
	fieldMaxResults
	fieldMaxDailyEmails
	fieldRetryAttempts
	fieldDelaySeconds
	fieldCount
)

type settingsField struct {
	section string
	label   string
	hint    string
	// get and set read and write the field on a draft. Only numeric fields
	// have them; keywords are handled separately. A nil value is a key the
	// backend did not send.
	get func(api.Config) *int
	set func(*api.Config, *int)
}

var settingsFields = [fieldCount]settingsField{
	fieldKeywords: {section: "Discovery", label: "Keywords", hint: "comma separated"},
	fieldDaysBack: {
		section: "Discovery", label: "Days back", hint: "how far back to search",
		get: func(c api.Config) *int { return c.Discovery.DaysBack },
		set: func(c *api.Config, v *int) { c.Discovery.DaysBack = v },
	},
	fieldMaxResults: {
		section: "Discovery", label: "Max results", hint: "papers per run",
		get: func(c api.Config) *int { return c.Discovery.MaxResults },
		set: func(c *api.Config, v *int) { c.Discovery.MaxResults = v },
	},
	fieldMaxDailyEmails: {
		section: "Outreach", label: "Max daily emails",
		get: func(c api.Config) *int { return c.Outreach.MaxDailyEmails },
		set: func(c *api.Config, v *int) { c.Outreach.MaxDailyEmails = v },
	},
	fieldRetryAttempts: {
		section: "Outreach", label: "Retry attempts",
		get: func(c api.Config) *int { return c.Outreach.RetryAttempts },
		set: func(c *api.Config, v *int) { c.Outreach.RetryAttempts = v },
	},
	fieldDelaySeconds: {
		section: "Outreach", label: "Delay seconds", hint: "between emails",
		get: func(c api.Config) *int { return c.Outreach.DelaySeconds },
		set: func(c *api.Config, v *int) { c.Outreach.DelaySeconds = v },
	},
}

type settingsState struct {
	res     state.Resource[api.Config]
	draft   api.Config
	inputs  [fieldCount]textinput.Model
	focus   int
	editing bool
	saving  bool
	errs    map[int]string
}

func newSettingsState() settingsState {
	s := settingsState{errs: make(map[int]string)}
	for i := range s.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		if i != fieldKeywords {
			ti.CharLimit = 9
		}
		s.inputs[i] = ti
	}
	return s
}

// load replaces the draft with a fetched config and refills the inputs.
func (s *settingsState) load(cfg api.Config) {
	s.draft = cfg.Clone()
	s.errs = make(map[int]string)
	for i := range s.inputs {
		s.inputs[i].SetValue(s.fieldText(i))
	}
}

func (s settingsState) fieldText(i int) string {
	if i == fieldKeywords {
		return s.draft.KeywordsText()
	}
	return intText(settingsFields[i].get(s.draft))
}

// intText renders an optional number; unset is blank.
func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// apply copies input i into the draft. Input that is not a non-negative
// whole number leaves the draft unchanged and records a message. A field the
// backend did not send stays unset while its input is blank.
func (s *settingsState) apply(i int) {
	raw := strings.TrimSpace(s.inputs[i].Value())
	if i == fieldKeywords {
		if raw != "" || s.draft.Discovery.Keywords != nil {
			s.draft.Discovery.Keywords = api.SplitKeywords(raw)
		}
		delete(s.errs, i)
		return
	}
	cur := settingsFields[i].get(s.draft)
	if raw == "" && cur == nil {
		delete(s.errs, i)
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		keep := "unset"
		if cur != nil {
			keep = strconv.Itoa(*cur)
		}
		s.errs[i] = fmt.Sprintf("%q is not a whole number >= 0; keeping %s", raw, keep)
		return
	}
	settingsFields[i].set(&s.draft, api.Int(n))
	delete(s.errs, i)
}

func (s *settingsState) applyAll() {
	for i := range s.inputs {
		s.apply(i)
	}
}

func (s *settingsState) focusField(i int) tea.Cmd {
	s.inputs[s.focus].Blur()
	s.focus = (i%fieldCount + fieldCount) % fieldCount
	if !s.editing {
		return nil
	}
	return s.inputs[s.focus].Focus()
}

type configMsg struct {
	config api.Config
	err    error
}

type saveMsg struct {
	toastID string
	config  api.Config
	err     error
}

func (m Model) fetchConfigCmd() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		cfg, err := client.FetchConfig(ctx)
		return configMsg{config: cfg, err: err}
	}
}

func (m *Model) handleConfig(msg configMsg) {
	if msg.err != nil {
		m.settings.res.Fail(msg.err)
		m.toasts.Error("", "Failed to load settings: "+errorText(msg.err))
		return
	}
	m.settings.res.Succeed(msg.config)
	m.settings.editing = false
	m.settings.load(msg.config)
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.settings
	if key.Matches(msg, m.keys.Save) {
		if s.editing {
			s.apply(s.focus)
		}
		return m.saveSettings()
	}
	if !s.res.HasData() {
		if key.Matches(msg, m.keys.Refresh) && m.client != nil {
			s.res.Begin()
			return m, m.fetchConfigCmd()
		}
		return m, nil
	}

	if s.editing {
		switch {
		case key.Matches(msg, m.keys.NextField):
			s.apply(s.focus)
			return m, s.focusField(s.focus + 1)
		case key.Matches(msg, m.keys.PrevField):
			s.apply(s.focus)
			return m, s.focusField(s.focus - 1)
		case msg.Type == tea.KeyEnter, msg.Type == tea.KeyEsc:
			s.apply(s.focus)
			s.editing = false
			s.inputs[s.focus].Blur()
			return m, nil
		}
		var cmd tea.Cmd
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		s.focusField(s.focus + 1)
	case key.Matches(msg, m.keys.Up):
		s.focusField(s.focus - 1)
	case key.Matches(msg, m.keys.Confirm):
		s.editing = true
		s.inputs[s.focus].CursorEnd()
		return m, s.inputs[s.focus].Focus()
	case key.Matches(msg, m.keys.Refresh):
		if m.client != nil {
			s.res.Begin()
			return m, m.fetchConfigCmd()
		}
	}
	return m, nil
}

// saveSettings posts the whole draft. Fields with validation errors keep
// their last valid value.
func (m Model) saveSettings() (tea.Model, tea.Cmd) {
	s := &m.settings
	if m.client == nil || s.saving || !s.res.HasData() {
		return m, nil
	}
	s.saving = true
	toastID := m.toasts.Loading("Saving changes...")
	cfg := s.draft.Clone()

	ctx, client := m.ctx, m.client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		_, err := client.UpdateConfig(ctx, cfg)
		return saveMsg{toastID: toastID, config: cfg, err: err}
	}
}

func (m *Model) handleSave(msg saveMsg) {
	m.settings.saving = false
	if msg.err != nil {
		m.toasts.Error(msg.toastID, "Failed to save settings: "+errorText(msg.err))
		m.logger.Warn("save settings failed", zap.Error(msg.err))
		return
	}
	m.settings.res.Succeed(msg.config)
	m.toasts.Success(msg.toastID, "Settings saved successfully")
}

func (m Model) renderSettings() string {
	height := m.contentHeight()
	styles := m.theme.Styles()
	s := m.settings

	var body string
	switch s.res.View(nil) {
	case state.ViewLoading:
		body = m.spinner.View() + " Loading settings..."
	case state.ViewError:
		body = styles.DangerText.Render("Failed to load settings: "+errorText(s.res.Err())) +
			"\n\n" + styles.MutedText.Render("Press r to retry.")
	default:
		body = m.renderSettingsForm(max(m.width-4, 20))
	}

	title := "Settings"
	if s.saving {
		title += " · saving"
	} else if m.settingsDirty() {
		title += " · unsaved"
	}
	return m.renderTitledBox(title, body, m.width, height, true)
}

func (m Model) settingsDirty() bool {
	cfg, ok := m.settings.res.Data()
	if !ok {
		return false
	}
	d := m.settings.draft
	if d.KeywordsText() != cfg.KeywordsText() {
		return true
	}
	for i := fieldDaysBack; i < fieldCount; i++ {
		if intText(settingsFields[i].get(d)) != intText(settingsFields[i].get(cfg)) {
			return true
		}
	}
	return false
}

func (m Model) renderSettingsForm(width int) string {
	styles := m.theme.Styles()
	s := m.settings
	labelWidth := 18
	inputWidth := max(width-labelWidth-4, 10)

	var b strings.Builder
	section := ""
	for i, f := range settingsFields {
		if f.section != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = f.section
			b.WriteString(styles.AccentText.Bold(true).Render(section))
			b.WriteString("\n")
		}

		marker := "  "
		label := styles.MutedText.Render(cell(f.label, labelWidth))
		if i == s.focus {
			marker = "▶ "
			label = styles.Text.Bold(true).Render(cell(f.label, labelWidth))
		}

		var value string
		if s.editing && i == s.focus {
			input := s.inputs[i]
			input.Width = inputWidth
			value = input.View()
		} else {
			value = styles.Text.Render(truncate(s.fieldText(i), inputWidth))
		}
		b.WriteString(marker + label + value)
		if f.hint != "" && width >= LayoutCompactWidth {
			b.WriteString("  " + styles.FaintText.Render(f.hint))
		}
		b.WriteString("\n")
		if msg, ok := s.errs[i]; ok {
			b.WriteString("  " + styles.DangerText.Render(msg))
			b.WriteString("\n")
		}
	}
	return b.String()
}
