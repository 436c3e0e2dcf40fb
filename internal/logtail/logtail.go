package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Level is the display class of a log line.
type Level int

const (
	LevelPlain Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelSuccess:
		return "success"
	default:
		return "plain"
	}
}

// Classify picks a display class by substring. ERROR wins over WARNING,
// which wins over SUCCESS.
func Classify(line string) Level {
	switch {
	case strings.Contains(line, "ERROR"):
		return LevelError
	case strings.Contains(line, "WARNING"):
		return LevelWarning
	case strings.Contains(line, "SUCCESS"):
		return LevelSuccess
	default:
		return LevelPlain
	}
}

// Count tallies lines per class.
func Count(lines []string) map[Level]int {
	out := make(map[Level]int, 4)
	for _, line := range lines {
		out[Classify(line)]++
	}
	return out
}

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines
// and no error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// NewLines returns the suffix of next that was not already in prev. Both are
// windows over the same growing log, so the longest suffix of prev that is a
// prefix of next marks the overlap. With no overlap every line is new.
func NewLines(prev, next []string) []string {
	if len(prev) == 0 {
		return next
	}
	for start := max(0, len(prev)-len(next)); start < len(prev); start++ {
		overlap := prev[start:]
		if hasPrefix(next, overlap) {
			return next[len(overlap):]
		}
	}
	return next
}

func hasPrefix(lines, prefix []string) bool {
	if len(prefix) > len(lines) {
		return false
	}
	for i := range prefix {
		if lines[i] != prefix[i] {
			return false
		}
	}
	return true
}
