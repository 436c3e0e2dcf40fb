// Package logtail reads and classifies agent log output.
//
// # Reading
//
// Read returns the last maxLines of a file using a ring buffer, so memory
// stays proportional to the window rather than the file. A non-positive
// maxLines reads everything. A missing file yields no lines and no error.
//
// # Classification
//
// Classify maps a line to a display Level by substring, checked in order:
//
//	contains "ERROR"    LevelError
//	contains "WARNING"  LevelWarning
//	contains "SUCCESS"  LevelSuccess
//	otherwise           LevelPlain
//
// Matching is case sensitive. The UI colours lines by Level and the CLI
// uses Count for its summary line.
//
// # Following
//
// NewLines compares two successive windows of the same log and returns the
// lines that appeared since the previous one. The `scout logs --follow`
// command prints only those.
//
// Watcher rereads a local log file when fsnotify reports a change. Events
// are debounced so a burst of writes causes one reread. The parent
// directory is watched, so the file may be created or rotated after Start.
//
//	w := logtail.NewWatcher(path, 500, func(lines []string, err error) {
//		store.UpdateLogs(lines, err)
//	})
//	if err := w.Start(ctx); err != nil {
//		return err
//	}
//	defer w.Stop()
package logtail
