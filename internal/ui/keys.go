package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Refresh    key.Binding

	// View switching
	ViewDashboard key.Binding
	ViewAuthors   key.Binding
	ViewOutreach  key.Binding
	ViewLogs      key.Binding
	ViewSettings  key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Dashboard / outreach
	StartAgent key.Binding
	Launch     key.Binding

	// Authors
	Search   key.Binding
	SortKey  key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Sync     key.Binding
	Export   key.Binding

	// Logs
	ToggleFollow key.Binding
	NextMatch    key.Binding
	PrevMatch    key.Binding
	CopyLogs     key.Binding

	// Settings
	NextField key.Binding
	PrevField key.Binding
	Save      key.Binding

	// Search/input
	Confirm key.Binding
	Yes     key.Binding
	No      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),

		ViewDashboard: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "Dashboard"),
		),
		ViewAuthors: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "Authors"),
		),
		ViewOutreach: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", "Outreach"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("F4", "Logs"),
		),
		ViewSettings: key.NewBinding(
			key.WithKeys("f5"),
			key.WithHelp("F5", "Settings"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		StartAgent: key.NewBinding(
			key.WithKeys("enter", " ", "space"),
			key.WithHelp("enter", "Start agent"),
		),
		Launch: key.NewBinding(
			key.WithKeys("enter", "L"),
			key.WithHelp("enter", "Launch campaign"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		SortKey: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "Sort column"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right", "l"),
			key.WithHelp("n", "Next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p", "Previous page"),
		),
		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Sync authors"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export CSV"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" ", "space", "f"),
			key.WithHelp("Space", "Toggle follow"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "Previous match"),
		),
		CopyLogs: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy logs"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save settings"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "Yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "No"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.ViewDashboard, k.ViewAuthors, k.ViewOutreach, k.ViewLogs, k.ViewSettings},
		{k.Up, k.Down, k.StartAgent, k.Refresh},
		{k.Search, k.SortKey, k.NextPage, k.PrevPage, k.Sync, k.Export},
		{k.Launch},
		{k.ToggleFollow, k.Search, k.NextMatch, k.PrevMatch, k.CopyLogs, k.Top, k.Bottom},
		{k.NextField, k.PrevField, k.Save},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
