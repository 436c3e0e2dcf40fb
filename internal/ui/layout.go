package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width for side-by-side dashboard panes.
	LayoutWideWidth = 120
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines kept for display.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval is how often the model re-reads the store and prunes
	// expired toasts.
	DefaultUIInterval = time.Second

	// AgentIdleDelay is how long an agent row shows "running" after the
	// backend accepted a start request.
	AgentIdleDelay = 5 * time.Second

	// ActionTimeout bounds one-shot requests issued from key presses.
	ActionTimeout = 15 * time.Second

	// ExportTimeout bounds a CSV download.
	ExportTimeout = 2 * time.Minute
)

// chrome is the number of rows used by the header, command bar and toast line.
const chrome = 3
