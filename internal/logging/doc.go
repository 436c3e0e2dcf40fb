// Package logging builds the zap loggers used by scout.
//
// The TUI logs JSON to the debug_log file from config since the terminal is
// taken by the interface. CLI subcommands log to stderr with the console
// encoder and stay quiet below warn unless --verbose is passed.
package logging
