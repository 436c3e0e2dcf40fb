package ui

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/config"
	"github.com/bbrc/scout/internal/state"
)

type fakeBackend struct {
	mu sync.Mutex

	stats      api.Stats
	statsErr   error
	config     api.Config
	configErr  error
	updateErr  error
	agent      api.AgentResult
	agentErr   error
	authors    []api.Author
	authorsErr error
	sync       api.SyncResult
	syncErr    error
	export     string
	exportErr  error
	logs       []string
	logsErr    error

	started []string
	saved   []api.Config
	fetches int
}

func (f *fakeBackend) FetchStats(context.Context) (api.Stats, error) {
	return f.stats, f.statsErr
}

func (f *fakeBackend) FetchStatus(context.Context) (api.Status, error) {
	return api.Status{Status: "online"}, nil
}

func (f *fakeBackend) FetchConfig(context.Context) (api.Config, error) {
	return f.config.Clone(), f.configErr
}

func (f *fakeBackend) UpdateConfig(_ context.Context, cfg api.Config) (api.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, cfg)
	if f.updateErr != nil {
		return api.UpdateResult{}, f.updateErr
	}
	return api.UpdateResult{Status: "updated"}, nil
}

func (f *fakeBackend) StartAgent(_ context.Context, name string) (api.AgentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, name)
	return f.agent, f.agentErr
}

func (f *fakeBackend) FetchAuthors(context.Context) ([]api.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.authors, f.authorsErr
}

func (f *fakeBackend) SyncAuthors(context.Context) (api.SyncResult, error) {
	return f.sync, f.syncErr
}

func (f *fakeBackend) ExportAuthors(_ context.Context, w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.export)
	if err != nil {
		return int64(n), err
	}
	return int64(n), f.exportErr
}

func (f *fakeBackend) FetchLogs(context.Context) ([]string, error) {
	return f.logs, f.logsErr
}

type fakeFeed struct {
	mu      sync.Mutex
	starts  int
	stops   int
	running bool
	err     error
}

func (f *fakeFeed) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.starts++
	f.running = true
	return nil
}

func (f *fakeFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.running = false
}

func (f *fakeFeed) isRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// newTestModel returns a sized model backed by client with prefs written to
// a temp dir.
func newTestModel(t *testing.T, client api.Backend, feeds map[View]Feed) Model {
	t.Helper()
	cfg := config.Default()
	cfg.ExportDir = t.TempDir()
	m := New(Options{
		Context:   t.Context(),
		Client:    client,
		Store:     &state.Store{},
		Config:    &cfg,
		Feeds:     feeds,
		PrefsPath: t.TempDir() + "/prefs.toml",
	})
	m.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	m.copyText = func(string) error { return nil }
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

// update feeds msg to m and returns the new model and command.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// press sends a key. Single characters are sent as runes.
func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+u":
		msg = tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	case "f1":
		msg = tea.KeyMsg{Type: tea.KeyF1}
	case "f2":
		msg = tea.KeyMsg{Type: tea.KeyF2}
	case "f3":
		msg = tea.KeyMsg{Type: tea.KeyF3}
	case "f4":
		msg = tea.KeyMsg{Type: tea.KeyF4}
	case "f5":
		msg = tea.KeyMsg{Type: tea.KeyF5}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return update(t, m, msg)
}

// typeText sends each rune of s as its own key press.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// collect runs cmd and returns the messages it produces, descending into
// batches. Commands that block longer than a short wait (ticks) are skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(200 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// find returns the first message of type T produced by cmd.
func find[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, msg := range collect(cmd) {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T produced", zero)
	return zero
}

func lastToast(t *testing.T, m Model) string {
	t.Helper()
	active := m.toasts.Active()
	if len(active) == 0 {
		t.Fatal("no toasts")
	}
	return active[len(active)-1].Message
}
