package ui

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/notify"
)

func TestBarLengths(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		width  int
		want   []int
	}{
		{"empty", nil, 10, []int{}},
		{"all zero", []int{0, 0, 0}, 10, []int{0, 0, 0}},
		{"peak fills width", []int{100, 50, 0}, 20, []int{20, 10, 0}},
		{"tiny values stay visible", []int{1000, 1, 3}, 10, []int{10, 1, 1}},
		{"no room", []int{5, 2}, 0, []int{0, 0}},
		{"negative treated as empty", []int{-4, 8}, 4, []int{0, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := barLengths(tt.values, tt.width)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("barLengths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStartAgentSuccess(t *testing.T) {
	backend := &fakeBackend{agent: api.AgentResult{Status: "started"}}
	m := newTestModel(t, backend, nil)

	m, _ = press(t, m, "j")
	require.Equal(t, 1, m.dash.selected)

	m, cmd := press(t, m, "enter")
	require.Equal(t, agentRunning, m.dash.agents["profiling"])
	require.Equal(t, "Starting Profiling Agent...", lastToast(t, m))

	// A running row ignores further presses.
	m, again := press(t, m, "enter")
	require.Nil(t, again)

	res := find[agentResultMsg](t, cmd)
	m, idle := update(t, m, res)
	require.Equal(t, []string{"profiling"}, backend.started)
	require.Equal(t, "Profiling Agent started", lastToast(t, m))
	require.Equal(t, notify.KindSuccess, m.toasts.Active()[0].Kind)
	require.NotNil(t, idle)

	m, _ = update(t, m, agentIdleMsg{agent: "profiling"})
	require.Equal(t, agentIdle, m.dash.agents["profiling"])
}

func TestStartAgentRejected(t *testing.T) {
	backend := &fakeBackend{agent: api.AgentResult{Status: "error", Message: "agent busy"}}
	m := newTestModel(t, backend, nil)

	m, cmd := press(t, m, "enter")
	m, _ = update(t, m, find[agentResultMsg](t, cmd))

	require.Equal(t, agentError, m.dash.agents["discovery"])
	require.Equal(t, "Failed: agent busy", lastToast(t, m))
	require.Equal(t, 1, m.toasts.Len())

	// An errored row can be retried.
	_, cmd = press(t, m, "enter")
	require.NotNil(t, cmd)
}

func TestStartAgentNetworkError(t *testing.T) {
	backend := &fakeBackend{agentErr: errors.New("connection refused")}
	m := newTestModel(t, backend, nil)

	m, cmd := press(t, m, "enter")
	m, _ = update(t, m, find[agentResultMsg](t, cmd))

	require.Equal(t, agentError, m.dash.agents["discovery"])
	require.Equal(t, notify.KindError, m.toasts.Active()[0].Kind)
}

func TestDashboardRefreshLoadsStats(t *testing.T) {
	backend := &fakeBackend{stats: api.Stats{PapersFound: 12, AuthorsProfiled: 7, EmailsSent: 3}}
	m := newTestModel(t, backend, nil)

	_, cmd := press(t, m, "r")
	find[storeUpdatedMsg](t, cmd)

	got, ok := m.store.Snapshot().Stats.Data()
	require.True(t, ok)
	require.Equal(t, backend.stats, got)
}
