package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bbrc/scout/internal/api"
)

func TestLaunchCampaignNeedsConfirmation(t *testing.T) {
	backend := &fakeBackend{agent: api.AgentResult{Status: "started"}}
	m := newTestModel(t, backend, nil)
	m, _ = press(t, m, "f3")

	m, cmd := press(t, m, "enter")
	require.NotNil(t, m.modal)
	require.Nil(t, cmd)
	require.Contains(t, m.View(), "Launch outreach campaign?")

	// Declining closes the dialog without calling the backend.
	m, cmd = press(t, m, "n")
	require.Nil(t, m.modal)
	require.Nil(t, cmd)
	require.Empty(t, backend.started)

	m, _ = press(t, m, "enter")
	m, cmd = press(t, m, "y")
	require.Nil(t, m.modal)

	m, cmd = update(t, m, find[launchConfirmedMsg](t, cmd))
	require.Equal(t, campaignRunning, m.outreach.status)
	require.Equal(t, "Starting outreach campaign...", lastToast(t, m))

	m, cmd = update(t, m, find[campaignMsg](t, cmd))
	require.Equal(t, campaignCompleted, m.outreach.status)
	require.Equal(t, "Outreach campaign started!", lastToast(t, m))
	require.Equal(t, []string{"outreach"}, backend.started)
	require.NotNil(t, cmd, "stats are reloaded after a launch")
}

func TestLaunchCampaignFailure(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		toast   string
	}{
		{"rejected", &fakeBackend{agent: api.AgentResult{Status: "error", Message: "smtp not configured"}}, "Failed: smtp not configured"},
		{"network", &fakeBackend{agentErr: errors.New("connection refused")}, "Failed to start campaign: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, tt.backend, nil)
			m.currentView = ViewOutreach

			next, cmd := m.launchCampaign()
			mm := next.(Model)
			mm, _ = update(t, mm, find[campaignMsg](t, cmd))

			require.Equal(t, campaignError, mm.outreach.status)
			require.Equal(t, tt.toast, lastToast(t, mm))
			require.Contains(t, mm.View(), "Campaign status")
		})
	}
}

func TestOutreachCardsShowSentCount(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil)
	m.store.UpdateStats(api.Stats{EmailsSent: 42}, nil)
	m, _ = update(t, m, storeUpdatedMsg{})
	m.currentView = ViewOutreach

	out := m.renderOutreach()
	require.Contains(t, out, "42")
	require.Contains(t, out, "Pending")
	require.Contains(t, out, "Failed")
}
