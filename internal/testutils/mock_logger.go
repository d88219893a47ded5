// Package testutils provides small in-memory fakes used across the engine's
// tests: a recording logger, an in-memory decision sink, and synthetic
// Record builders, mirroring the teacher's own testutils package.
package testutils

import (
	"sync"

	"github.com/menthorq/tradecore/internal/logging"
)

type logEntry struct {
	level  string
	msg    string
	fields []logging.Field
}

// MockLogger records every call so tests can assert on log content without
// parsing stdout.
type MockLogger struct {
	mu      sync.Mutex
	entries []logEntry
	fields  []logging.Field
}

func NewMockLogger() *MockLogger { return &MockLogger{} }

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.record("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.record("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.record("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.record("error", msg, fields) }

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	child := &MockLogger{fields: append(append([]logging.Field(nil), m.fields...), fields...)}
	return child
}

func (m *MockLogger) record(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := append(append([]logging.Field(nil), m.fields...), fields...)
	m.entries = append(m.entries, logEntry{level: level, msg: msg, fields: all})
}

// Entries returns a copy of every recorded call.
func (m *MockLogger) Entries() []logEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]logEntry(nil), m.entries...)
}

// LastMessage returns the most recently logged message, or "" if none.
func (m *MockLogger) LastMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[len(m.entries)-1].msg
}

// CountLevel returns how many entries were logged at the given level.
func (m *MockLogger) CountLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

var _ logging.Logger = (*MockLogger)(nil)
