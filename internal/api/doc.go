// Package api provides an HTTP client for the BBRC outreach backend.
//
// # Overview
//
// The backend runs the discovery, profiling and outreach agents and exposes
// their counters, configuration, author records and logs over a small JSON
// API. This package is the only place scout talks HTTP; everything above it
// works with the typed values defined in types.go.
//
// # Client Usage
//
//	client, err := api.NewClient("127.0.0.1:5000")
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	stats, err := client.FetchStats(ctx)
//	if err != nil {
//		log.Printf("stats fetch failed: %v", err)
//	}
//
// # API Endpoints
//
//   - GET  /api/stats: outreach counters
//   - GET  /api/status: liveness and version
//   - GET  /api/config, POST /api/config: the nested agent configuration
//   - POST /api/agents/{name}/start: launch an agent
//   - GET  /api/authors, POST /api/authors/sync: author records
//   - GET  /api/authors/export: CSV download
//   - GET  /api/logs: recent log lines
//
// # Error Handling
//
// Non-2xx responses come back as *StatusError. When the backend answered with
// a JSON body carrying "message" (or "error"), the text is kept on the error
// and Message extracts it for display:
//
//	if _, err := client.StartAgent(ctx, "outreach"); err != nil {
//		toast(api.Message(err))
//	}
//
// Transport and decode failures are wrapped with fmt.Errorf, for example
// "execute request: dial tcp: connection refused" or
// "decode response: unexpected EOF".
//
// # Configuration Round Trips
//
// POST /api/config replaces the whole document. Config, DiscoverySettings and
// OutreachSettings keep keys they do not model in Extra maps so a save from
// the console never drops settings added on the backend side.
//
// # Thread Safety
//
// Client is safe for concurrent use; the pollers share a single instance.
package api
