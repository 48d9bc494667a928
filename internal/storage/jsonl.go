package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dlmmScope/internal/model"
)

const maxJournalLine = 4 * 1024 * 1024

// Journal is an append-only JSONL log of decision records.
type Journal struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewJournal(path string) *Journal {
	return &Journal{path: path, now: time.Now}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Append writes records as one line each. Records without CreatedAt are stamped
// with the current time. A batch is flushed as a whole or not at all.
func (j *Journal) Append(records ...model.DecisionRecord) error {
	if len(records) == 0 {
		return nil
	}

	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	enc := json.NewEncoder(buf)
	for i, record := range records {
		if record.CreatedAt.IsZero() {
			record.CreatedAt = j.now()
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encode record %d (%s): %w", i, record.Kind, err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	return nil
}

// JournalEntry is a decoded journal line with its payload left raw.
type JournalEntry struct {
	Kind            string          `json:"kind"`
	PoolAddress     string          `json:"pool_address,omitempty"`
	PositionAddress string          `json:"position_address,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Payload         json.RawMessage `json:"payload"`
}

// JournalFilter selects entries. Empty fields match everything.
type JournalFilter struct {
	Kind  string
	Pool  string
	Since time.Time
}

func (f JournalFilter) match(e JournalEntry) bool {
	if f.Kind != "" && !strings.EqualFold(e.Kind, f.Kind) {
		return false
	}
	if f.Pool != "" && e.PoolAddress != f.Pool {
		return false
	}
	return f.Since.IsZero() || !e.CreatedAt.Before(f.Since)
}

// Entries returns the entries matching filter in write order.
// A journal that was never written is empty.
func (j *Journal) Entries(filter JournalFilter) ([]JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()
	return readEntries(file, filter)
}

func readEntries(r io.Reader, filter JournalFilter) ([]JournalEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxJournalLine)

	var entries []JournalEntry
	for line := 1; scanner.Scan(); line++ {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var entry JournalEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("journal line %d: %w", line, err)
		}
		if filter.match(entry) {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return entries, nil
}
