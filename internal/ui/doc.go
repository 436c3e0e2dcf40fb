// Package ui is the scout terminal console, built on Bubble Tea.
//
// # Views
//
// Five views share one Model:
//
//   - Dashboard: counters, an activity bar chart and agent start buttons
//   - Authors: the author table with search, column sort, paging, sync and CSV export
//   - Outreach: email counters and the confirmed campaign launch
//   - Logs: backend or local agent log lines, coloured by level, with regex search
//   - Settings: a form over the backend's discovery and outreach config
//
// F1-F5 jump to a view and Tab / Shift+Tab cycle through them. The digit keys
// are left to the Authors view, where 1-5 pick the sort column.
//
// # Data flow
//
// Polled data (stats, backend status, logs) lives in a state.Store that
// background feeds write to. A view may own one Feed; switchView stops the
// previous view's feed and starts the new one, and quitting stops them all.
// After a write a feed calls Relay.Notify, which wakes the program with a
// storeUpdatedMsg. The UI also re-reads the store on every tick, so a feed
// that never notifies still shows up within one tick.
//
// One-shot loads (authors, config) and actions (start agent, sync, export,
// save) run as tea.Cmd functions and report back through typed messages.
// Each action raises a loading toast that its result message replaces.
//
// # Usage
//
//	store := &state.Store{}
//	relay := ui.NewRelay()
//	err := ui.Run(ui.Options{
//		Context: ctx,
//		Client:  client,
//		Store:   store,
//		Relay:   relay,
//		Feeds:   map[ui.View]ui.Feed{ui.ViewDashboard: statsFeed, ui.ViewLogs: logsFeed},
//	})
package ui
