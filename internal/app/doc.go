// Package app is the composition root for the scout console.
//
// Run loads the TOML config, opens the debug log, creates the backend
// client and the shared state.Store, primes the header with one stats and
// status fetch, and hands everything to ui.Run.
//
// # Feeds
//
// NewFeeds builds the background data source for each polling view:
//
//   - Dashboard: a poll.Poller fetching /api/stats and /api/status together
//     every stats_poll interval.
//   - Logs: a poll.Poller on /api/logs every logs_poll interval, or a
//     logtail.Watcher on log_file when one is configured.
//
// Feeds write to the store and wake the UI through ui.Relay. The UI starts
// a view's feed when the view becomes active and stops it when the view is
// left, so only one feed runs at a time.
//
// # Errors
//
// Config, logging and client setup failures are returned from Run. Fetch
// failures are recorded in the store and shown by the UI; the backend being
// down at startup is not fatal.
package app
