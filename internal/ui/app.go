package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/config"
	"github.com/bbrc/scout/internal/logging"
	"github.com/bbrc/scout/internal/notify"
	"github.com/bbrc/scout/internal/prefs"
	"github.com/bbrc/scout/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewDashboard View = iota
	ViewAuthors
	ViewOutreach
	ViewLogs
	ViewSettings
)

var viewOrder = []View{ViewDashboard, ViewAuthors, ViewOutreach, ViewLogs, ViewSettings}

func (v View) String() string {
	switch v {
	case ViewAuthors:
		return "authors"
	case ViewOutreach:
		return "outreach"
	case ViewLogs:
		return "logs"
	case ViewSettings:
		return "settings"
	default:
		return "dashboard"
	}
}

// Title is the label shown in box borders and the command bar.
func (v View) Title() string {
	return titleCase(v.String())
}

// ParseView maps a saved view name back to a View.
func ParseView(name string) (View, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, v := range viewOrder {
		if v.String() == name {
			return v, true
		}
	}
	return ViewDashboard, false
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    api.Backend
	Store     *state.Store
	Config    *config.Config
	Feeds     map[View]Feed
	Relay     *Relay
	Logger    *zap.Logger
	Tick      time.Duration
	ThemeName string
	StartView string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    api.Backend
	store     *state.Store
	config    *config.Config
	logger    *zap.Logger
	prefsPath string
	tick      time.Duration
	keys      keyMap
	feeds     *feedSet
	toasts    *notify.Center
	copyText  func(string) error
	now       func() time.Time

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	spinner     spinner.Model

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Per-view state
	dash        dashboardState
	authors     authorsState
	outreach    outreachState
	logViewport viewport.Model
	logState    logState
	settings    settingsState

	// Overlays
	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	start, _ := ParseView(opts.StartView)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		config:      cfg,
		logger:      logger,
		prefsPath:   prefsPath,
		tick:        tick,
		keys:        DefaultKeyMap(),
		feeds:       newFeedSet(opts.Feeds),
		toasts:      notify.NewCenter(4),
		copyText:    clipboard.WriteAll,
		now:         time.Now,
		theme:       GetTheme(opts.ThemeName),
		currentView: start,
		spinner:     sp,
		dash:        newDashboardState(),
		authors:     newAuthorsState(cfg.PageSize),
		outreach:    outreachState{status: campaignIdle},
		logState:    newLogState(),
		settings:    newSettingsState(),
	}
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.tick),
		m.spinner.Tick,
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if err := m.feeds.switchTo(m.ctx, m.currentView); err != nil {
		m.toasts.Error("", fmt.Sprintf("%s feed: %v", m.currentView.Title(), err))
	}
	cmds = append(cmds, m.loadCmd(m.currentView))
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case storeUpdatedMsg:
		if m.store != nil {
			m.applySnapshot(m.store.Snapshot())
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case agentResultMsg:
		return m.handleAgentResult(msg)

	case agentIdleMsg:
		if m.dash.agents[msg.agent] == agentRunning {
			m.dash.agents[msg.agent] = agentIdle
		}
		return m, nil

	case launchConfirmedMsg:
		return m.launchCampaign()

	case campaignMsg:
		return m.handleCampaignResult(msg)

	case authorsMsg:
		m.handleAuthors(msg)
		return m, nil

	case syncMsg:
		return m.handleSync(msg)

	case exportMsg:
		m.handleExport(msg)
		return m, nil

	case configMsg:
		m.handleConfig(msg)
		return m, nil

	case saveMsg:
		m.handleSave(msg)
		return m, nil

	case copyMsg:
		if msg.err != nil {
			m.toasts.Error("", "Copy failed: "+msg.err.Error())
		} else {
			m.toasts.Success("", fmt.Sprintf("Copied %d log lines to clipboard", msg.lines))
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey routes keyboard input: overlays first, then text inputs that
// own the keyboard, then global bindings, then the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.capturingInput() {
		return m.handleViewKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
		m.logState.contentVersion++
		m.updateLogViewport()
		m.savePrefs()
		m.toasts.Info("Theme: " + m.theme.Name)
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.stepView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.stepView(-1))

	case key.Matches(msg, m.keys.ViewDashboard):
		return m.switchView(ViewDashboard)

	case key.Matches(msg, m.keys.ViewAuthors):
		return m.switchView(ViewAuthors)

	case key.Matches(msg, m.keys.ViewOutreach):
		return m.switchView(ViewOutreach)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.ViewSettings):
		return m.switchView(ViewSettings)
	}

	return m.handleViewKey(msg)
}

func (m Model) handleViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.currentView {
	case ViewDashboard:
		return m.handleDashboardKey(msg)
	case ViewAuthors:
		return m.handleAuthorsKey(msg)
	case ViewOutreach:
		return m.handleOutreachKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

// capturingInput reports whether a text input currently owns the keyboard.
func (m Model) capturingInput() bool {
	switch m.currentView {
	case ViewAuthors:
		return m.authors.searching
	case ViewLogs:
		return m.logState.searchActive
	case ViewSettings:
		return m.settings.editing
	}
	return false
}

func (m Model) stepView(delta int) View {
	n := len(viewOrder)
	return viewOrder[((int(m.currentView)+delta)%n+n)%n]
}

// switchView deactivates the current view's feed and activates v.
func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	if v == m.currentView {
		return m, nil
	}
	m.currentView = v
	return m, m.enter(v)
}

// enter starts v's feed and issues its one-shot loads.
func (m *Model) enter(v View) tea.Cmd {
	if err := m.feeds.switchTo(m.ctx, v); err != nil {
		m.logger.Warn("feed start failed", zap.String("view", v.String()), zap.Error(err))
		m.toasts.Error("", fmt.Sprintf("%s feed: %v", v.Title(), err))
	}
	switch v {
	case ViewAuthors:
		m.authors.res.Begin()
	case ViewSettings:
		m.settings.res.Begin()
	case ViewLogs:
		m.updateLogViewport()
	}
	return m.loadCmd(v)
}

// loadCmd returns the fetches a view issues on activation.
func (m Model) loadCmd(v View) tea.Cmd {
	if m.client == nil {
		return nil
	}
	switch v {
	case ViewAuthors:
		return m.fetchAuthorsCmd()
	case ViewOutreach:
		return m.loadStatsCmd()
	case ViewSettings:
		return m.fetchConfigCmd()
	}
	return nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.feeds.stopAll()
	m.savePrefs()
	return m, tea.Quit
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, LastView: m.currentView.String()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

// handleTick re-reads the store, prunes expired toasts and schedules the
// next tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.toasts.Prune()
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	if snap.Stats.Updated().After(m.lastUpdated) {
		m.lastUpdated = snap.Stats.Updated()
	}
	if snap.Status.Updated().After(m.lastUpdated) {
		m.lastUpdated = snap.Status.Updated()
	}
	m.snapshot = snap
	m.syncLogLines()
}

// renderMain renders header, command bar, the active view and the toast line.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderToasts())
	return b.String()
}

func (m Model) contentHeight() int {
	return max(m.height-chrome, 3)
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewAuthors:
		return m.renderAuthors()
	case ViewOutreach:
		return m.renderOutreach()
	case ViewLogs:
		return m.renderLogs()
	case ViewSettings:
		return m.renderSettings()
	default:
		return m.renderDashboard()
	}
}

// errorText picks the backend's message when present.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	if msg := api.Message(err); msg != "" {
		return msg
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type storeUpdatedMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// loadStatsCmd fetches the counters once and stores them.
func (m Model) loadStatsCmd() tea.Cmd {
	ctx, client, store := m.ctx, m.client, m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		stats, err := client.FetchStats(ctx)
		if store != nil {
			store.UpdateStats(stats, err)
		}
		return storeUpdatedMsg{}
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled. Every feed is stopped before Run returns.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := New(opts)
	defer m.feeds.stopAll()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	opts.Relay.attach(p)
	defer opts.Relay.detach()

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil) {
		return nil
	}
	return err
}
