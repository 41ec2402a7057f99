// Package testutil provides shared test helpers for chargeview: a recording
// logger and generated structure fixtures.
package testutil

import (
	"sync"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry.  Children
// created through With and Named share the parent's record.
type MockLogger struct {
	mu       *sync.Mutex
	messages *[]LogMessage
	name     string
	fields   []logging.Field
}

// LogMessage represents a single log entry captured by MockLogger.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the named field and whether it was present.
func (m LogMessage) Field(key string) (interface{}, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// NewMockLogger creates a new MockLogger instance.
func NewMockLogger() *MockLogger {
	msgs := make([]LogMessage, 0)
	return &MockLogger{mu: &sync.Mutex{}, messages: &msgs}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := append(append([]logging.Field(nil), m.fields...), fields...)
	*m.messages = append(*m.messages, LogMessage{
		Level:   level,
		Logger:  m.name,
		Message: msg,
		Fields:  all,
	})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	child := *m
	child.fields = append(append([]logging.Field(nil), m.fields...), fields...)
	return &child
}

func (m *MockLogger) Named(name string) logging.Logger {
	child := *m
	if m.name == "" {
		child.name = name
	} else {
		child.name = m.name + "." + name
	}
	return &child
}

func (m *MockLogger) Sync() error {
	return nil
}

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]LogMessage, len(*m.messages))
	copy(result, *m.messages)
	return result
}

// Clear removes all logged messages.
func (m *MockLogger) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.messages = (*m.messages)[:0]
}

// HasMessage checks if a message with the given level and content was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logged := range *m.messages {
		if logged.Level == level && logged.Message == msg {
			return true
		}
	}
	return false
}

// CountLevel returns how many entries were logged at level.
func (m *MockLogger) CountLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, logged := range *m.messages {
		if logged.Level == level {
			n++
		}
	}
	return n
}

var _ logging.Logger = (*MockLogger)(nil)

//Personal.AI order the ending
