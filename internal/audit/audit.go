// Package audit appends one line per completed sync cycle to a plain text log.
package audit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Entry is one parsed audit line.
type Entry struct {
	Time     time.Time
	CycleID  string
	Inserted int
}

// Log is an append-only audit file. It is never truncated or rotated.
type Log struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewLog returns a log writing to path.
func NewLog(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Path returns the file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes a line recording how many rows a cycle inserted. The file is
// opened, written and synced on every call.
func (l *Log) Append(cycleID string, inserted int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0750); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	line := formatLine(Entry{Time: l.now(), CycleID: cycleID, Inserted: inserted})
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync audit log: %w", err)
	}
	return f.Close()
}

// Entries reads back every well-formed line. Missing files yield no entries.
func (l *Log) Entries() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if e, ok := parseLine(scanner.Text()); ok {
			entries = append(entries, e)
		}
	}
	return entries, scanner.Err()
}

func formatLine(e Entry) string {
	return fmt.Sprintf("%s inserted=%d cycle=%s\n", e.Time.UTC().Format(time.RFC3339), e.Inserted, e.CycleID)
}

func parseLine(line string) (Entry, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Entry{}, false
	}

	t, err := time.Parse(time.RFC3339, fields[0])
	if err != nil {
		return Entry{}, false
	}

	countText, ok := strings.CutPrefix(fields[1], "inserted=")
	if !ok {
		return Entry{}, false
	}
	n, err := strconv.Atoi(countText)
	if err != nil {
		return Entry{}, false
	}

	cycle, ok := strings.CutPrefix(fields[2], "cycle=")
	if !ok {
		return Entry{}, false
	}

	return Entry{Time: t, Inserted: n, CycleID: cycle}, true
}
