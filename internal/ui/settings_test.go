package ui

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/bbrc/scout/internal/api"
)

func sampleConfig() api.Config {
	return api.Config{
		Discovery: api.DiscoverySettings{
			Keywords:   []string{"CRISPR", "gene therapy"},
			DaysBack:   api.Int(7),
			MaxResults: api.Int(50),
			Extra:      map[string]any{"sources": []any{"pubmed"}},
		},
		Outreach: api.OutreachSettings{
			MaxDailyEmails: api.Int(20),
			RetryAttempts:  api.Int(3),
			DelaySeconds:   api.Int(30),
		},
		Extra: map[string]any{"version": float64(2)},
	}
}

func openSettings(t *testing.T, backend *fakeBackend) Model {
	t.Helper()
	m := newTestModel(t, backend, nil)
	m, cmd := press(t, m, "f5")
	require.True(t, m.settings.res.Loading())
	m, _ = update(t, m, find[configMsg](t, cmd))
	return m
}

// editField moves to field i, replaces its text and applies it.
func editField(t *testing.T, m Model, i int, text string) Model {
	t.Helper()
	for m.settings.focus != i {
		m, _ = press(t, m, "j")
	}
	m, _ = press(t, m, "enter")
	require.True(t, m.settings.editing)
	m, _ = press(t, m, "ctrl+u")
	m = typeText(t, m, text)
	m, _ = press(t, m, "enter")
	require.False(t, m.settings.editing)
	return m
}

func TestSettingsLoadFillsForm(t *testing.T) {
	m := openSettings(t, &fakeBackend{config: sampleConfig()})

	require.Equal(t, "CRISPR, gene therapy", m.settings.inputs[fieldKeywords].Value())
	require.Equal(t, "7", m.settings.inputs[fieldDaysBack].Value())
	require.Equal(t, "30", m.settings.inputs[fieldDelaySeconds].Value())
	require.Contains(t, m.View(), "Max daily emails")
}

func TestSettingsLoadFailure(t *testing.T) {
	m := openSettings(t, &fakeBackend{configErr: errors.New("connection refused")})

	require.Contains(t, m.View(), "Failed to load settings")
	require.Equal(t, "Failed to load settings: connection refused", lastToast(t, m))

	// Save needs a loaded config to build on.
	_, cmd := press(t, m, "ctrl+s")
	require.Nil(t, cmd)
}

func TestSettingsInvalidNumberKeepsPreviousValue(t *testing.T) {
	m := openSettings(t, &fakeBackend{config: sampleConfig()})

	m = editField(t, m, fieldDaysBack, "abc")
	require.Equal(t, 7, *m.settings.draft.Discovery.DaysBack)
	require.Contains(t, m.settings.errs[fieldDaysBack], "keeping 7")

	m = editField(t, m, fieldDaysBack, "-3")
	require.Equal(t, 7, *m.settings.draft.Discovery.DaysBack)

	m = editField(t, m, fieldDaysBack, "14")
	require.Equal(t, 14, *m.settings.draft.Discovery.DaysBack)
	require.NotContains(t, m.settings.errs, fieldDaysBack)
}

func TestSettingsKeywordsAreSplitAndTrimmed(t *testing.T) {
	m := openSettings(t, &fakeBackend{config: sampleConfig()})

	m = editField(t, m, fieldKeywords, " oncology, ,immunology ,")
	require.Equal(t, []string{"oncology", "immunology"}, m.settings.draft.Discovery.Keywords)
}

func TestSettingsSaveSendsWholeConfig(t *testing.T) {
	backend := &fakeBackend{config: sampleConfig()}
	m := openSettings(t, backend)

	m = editField(t, m, fieldRetryAttempts, "5")

	m, cmd := press(t, m, "ctrl+s")
	require.True(t, m.settings.saving)
	require.Equal(t, "Saving changes...", lastToast(t, m))

	m, _ = update(t, m, find[saveMsg](t, cmd))
	require.False(t, m.settings.saving)
	require.Equal(t, "Settings saved successfully", lastToast(t, m))

	want := sampleConfig()
	want.Outreach.RetryAttempts = api.Int(5)
	require.Len(t, backend.saved, 1)
	if diff := cmp.Diff(want, backend.saved[0]); diff != "" {
		t.Fatalf("saved config mismatch (-want +got):\n%s", diff)
	}
	require.False(t, m.settingsDirty())
}

func TestSettingsSaveWhileEditingAppliesField(t *testing.T) {
	backend := &fakeBackend{config: sampleConfig()}
	m := openSettings(t, backend)

	for m.settings.focus != fieldMaxResults {
		m, _ = press(t, m, "j")
	}
	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "ctrl+u")
	m = typeText(t, m, "99")

	_, cmd := press(t, m, "ctrl+s")
	find[saveMsg](t, cmd)
	require.Equal(t, 99, *backend.saved[0].Discovery.MaxResults)
}

func TestSettingsSaveFailureKeepsForm(t *testing.T) {
	backend := &fakeBackend{config: sampleConfig(), updateErr: errors.New("HTTP 500")}
	m := openSettings(t, backend)

	m = editField(t, m, fieldMaxDailyEmails, "80")
	m, cmd := press(t, m, "ctrl+s")
	m, _ = update(t, m, find[saveMsg](t, cmd))

	require.Equal(t, "Failed to save settings: HTTP 500", lastToast(t, m))
	require.Equal(t, 80, *m.settings.draft.Outreach.MaxDailyEmails)
	require.True(t, m.settingsDirty())
}

func TestSettingsLeavesMissingKeysUnset(t *testing.T) {
	partial := api.Config{
		Discovery: api.DiscoverySettings{MaxResults: api.Int(50)},
		Outreach:  api.OutreachSettings{MaxDailyEmails: api.Int(20)},
	}
	backend := &fakeBackend{config: partial}
	m := openSettings(t, backend)

	require.Equal(t, "", m.settings.inputs[fieldDelaySeconds].Value())
	require.Equal(t, "", m.settings.inputs[fieldKeywords].Value())

	// Passing over blank fields neither errors nor sets them.
	m = editField(t, m, fieldDaysBack, "")
	require.NotContains(t, m.settings.errs, fieldDaysBack)
	m = editField(t, m, fieldDelaySeconds, "x")
	require.Contains(t, m.settings.errs[fieldDelaySeconds], "keeping unset")
	m = editField(t, m, fieldRetryAttempts, "4")

	_, cmd := press(t, m, "ctrl+s")
	find[saveMsg](t, cmd)

	want := partial.Clone()
	want.Outreach.RetryAttempts = api.Int(4)
	require.Len(t, backend.saved, 1)
	if diff := cmp.Diff(want, backend.saved[0]); diff != "" {
		t.Fatalf("saved config mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsFocusWraps(t *testing.T) {
	m := openSettings(t, &fakeBackend{config: sampleConfig()})

	m, _ = press(t, m, "k")
	require.Equal(t, fieldDelaySeconds, m.settings.focus)
	m, _ = press(t, m, "j")
	require.Equal(t, fieldKeywords, m.settings.focus)
}
