package ui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func logsModel(t *testing.T, backend *fakeBackend, lines []string, feeds map[View]Feed) Model {
	t.Helper()
	m := newTestModel(t, backend, feeds)
	m.store.UpdateLogs(lines, nil)
	m, _ = press(t, m, "f4")
	m, _ = update(t, m, storeUpdatedMsg{})
	return m
}

func TestSyncLogLinesKeepsNewest(t *testing.T) {
	lines := make([]string, LogBufferLimit+25)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	m := logsModel(t, &fakeBackend{}, lines, nil)

	require.Len(t, m.logState.rawLines, LogBufferLimit)
	require.Equal(t, "line 25", m.logState.rawLines[0])

	version := m.logState.contentVersion
	m, _ = update(t, m, storeUpdatedMsg{})
	require.Equal(t, version, m.logState.contentVersion, "unchanged lines do not re-render")
}

func TestLogSearchFindsAndCyclesMatches(t *testing.T) {
	lines := []string{
		"INFO boot",
		"ERROR smtp timeout",
		"SUCCESS sent to ada@example.org",
		"ERROR smtp refused",
	}
	m := logsModel(t, &fakeBackend{}, lines, nil)

	m, _ = press(t, m, "/")
	require.True(t, m.logState.searchActive)
	m = typeText(t, m, "smtp")
	m, _ = press(t, m, "enter")

	require.False(t, m.logState.searchActive)
	require.Equal(t, []int{1, 3}, m.logState.searchMatches)
	require.Equal(t, 0, m.logState.searchMatchIdx)
	require.False(t, m.logState.follow, "jumping to a match pauses follow")

	m, _ = press(t, m, "n")
	require.Equal(t, 1, m.logState.searchMatchIdx)
	m, _ = press(t, m, "n")
	require.Equal(t, 0, m.logState.searchMatchIdx)
	m, _ = press(t, m, "N")
	require.Equal(t, 1, m.logState.searchMatchIdx)

	// New lines are searched too.
	m.store.UpdateLogs(append(lines, "WARNING smtp slow"), nil)
	m, _ = update(t, m, storeUpdatedMsg{})
	require.Equal(t, []int{1, 3, 4}, m.logState.searchMatches)

	m, _ = press(t, m, "esc")
	require.Nil(t, m.logState.searchRegex)
	require.Empty(t, m.logState.searchMatches)
}

func TestLogSearchIsCaseInsensitive(t *testing.T) {
	m := logsModel(t, &fakeBackend{}, []string{"ERROR Smtp", "info"}, nil)

	m, _ = press(t, m, "/")
	m = typeText(t, m, "SMTP")
	m, _ = press(t, m, "enter")
	require.Equal(t, []int{0}, m.logState.searchMatches)
}

func TestLogSearchInvalidPattern(t *testing.T) {
	m := logsModel(t, &fakeBackend{}, []string{"a"}, nil)

	m, _ = press(t, m, "/")
	m = typeText(t, m, "(")
	m, _ = press(t, m, "enter")

	require.NotEmpty(t, m.logState.searchErr)
	require.Nil(t, m.logState.searchRegex)
	require.Contains(t, m.View(), "Invalid pattern")
}

func TestLogFollowToggle(t *testing.T) {
	m := logsModel(t, &fakeBackend{}, []string{"a"}, nil)
	require.True(t, m.logState.follow)

	m, _ = press(t, m, "f")
	require.False(t, m.logState.follow)
	require.Contains(t, m.View(), "(paused)")

	m, _ = press(t, m, "G")
	require.True(t, m.logState.follow)
}

func TestLogCopy(t *testing.T) {
	m := logsModel(t, &fakeBackend{}, []string{"one", "two"}, nil)
	var copied string
	m.copyText = func(s string) error {
		copied = s
		return nil
	}

	m, cmd := press(t, m, "y")
	m, _ = update(t, m, find[copyMsg](t, cmd))
	require.Equal(t, "one\ntwo", copied)
	require.Equal(t, "Copied 2 log lines to clipboard", lastToast(t, m))

	m.copyText = func(string) error { return errors.New("no clipboard utility") }
	m, cmd = press(t, m, "y")
	m, _ = update(t, m, find[copyMsg](t, cmd))
	require.Equal(t, "Copy failed: no clipboard utility", lastToast(t, m))
}

func TestLogRefreshRestartsFeed(t *testing.T) {
	feed := &fakeFeed{}
	m := logsModel(t, &fakeBackend{}, nil, map[View]Feed{ViewLogs: feed})
	require.Equal(t, 1, feed.starts)

	_, cmd := press(t, m, "r")
	require.Nil(t, cmd)
	require.Equal(t, 2, feed.starts)
	require.Equal(t, 1, feed.stops)
	require.True(t, feed.isRunning())
}

func TestLogRefreshWithoutFeedFetches(t *testing.T) {
	backend := &fakeBackend{logs: []string{"SUCCESS done"}}
	m := logsModel(t, backend, nil, nil)

	m, cmd := press(t, m, "r")
	m, _ = update(t, m, find[storeUpdatedMsg](t, cmd))
	require.Equal(t, []string{"SUCCESS done"}, m.logState.rawLines)
}
