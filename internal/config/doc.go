// Package config loads scout's local settings.
//
// # Resolution
//
// Load reads ~/.config/scout/config.toml unless a path is given. A missing
// file is not an error: every field has a default, and blank values in an
// existing file fall back to the same defaults.
//
// # Fields
//
//	api_url     base URL of the outreach backend   http://127.0.0.1:5000/api
//	stats_poll  dashboard refresh interval         10s
//	logs_poll   logs view refresh interval         3s
//	page_size   authors per page                   10
//	export_dir  where CSV exports are written      ~/Downloads
//	log_file    agent log to tail locally          (unset: use GET /logs)
//	debug_log   scout's own zap log                ~/.local/state/scout/scout.log
//	log_level   debug, info, warn or error         info
//
// Paths starting with "~" are expanded against the user's home directory.
// Intervals use Go duration syntax and must be positive.
//
// Command line flags are applied by the caller after Load returns.
package config
