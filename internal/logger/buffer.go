package logger

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Entry is a single buffered log event.
type Entry struct {
	Level   Level
	Message string
}

// MarshalJSON encodes the entry as a [level, message] pair.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Level.String(), e.Message})
}

// UnmarshalJSON decodes a [level, message] pair.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("log entry: %w", err)
	}
	lvl, err := ParseLevel(pair[0])
	if err != nil {
		return fmt.Errorf("log entry: %w", err)
	}
	e.Level = lvl
	e.Message = pair[1]
	return nil
}

// Buffer keeps every appended entry in memory, in insertion order.
// There is no size bound and no removal: a buffer lives for one report
// cycle and is dropped afterwards.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append records an entry. It never fails.
func (b *Buffer) Append(level Level, msg string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.entries = append(b.entries, Entry{Level: level, Message: msg})
	b.mu.Unlock()
}

// Entries returns a copy of all stored entries in chronological order.
func (b *Buffer) Entries() []Entry {
	if b == nil {
		return []Entry{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]Entry, len(b.entries))
	copy(result, b.entries)
	return result
}

// Len returns the number of stored entries.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// MarshalJSON encodes the buffer as an ordered array of entries.
func (b *Buffer) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Entries())
}
