// Package testutil holds in-memory stand-ins for the stores, the provider
// and the logger, shared by the package tests.
package testutil

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

// MockLogger records every entry at any level so tests can assert on
// warnings such as skipped filter columns or exhausted retries. Children
// from With and Named write to the same buffer.
type MockLogger struct {
	logging.Logger
	logs *observer.ObservedLogs
}

// LogMessage is one recorded entry.
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// keepRunning stops Fatal from exiting the test binary.
type keepRunning struct{}

func (keepRunning) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}

func NewMockLogger() *MockLogger {
	core, logs := observer.New(zapcore.DebugLevel)
	return &MockLogger{
		Logger: logging.NewLoggerFromCore(core, zap.WithFatalHook(keepRunning{})),
		logs:   logs,
	}
}

// GetMessages returns a snapshot of the recorded entries.
func (m *MockLogger) GetMessages() []LogMessage {
	entries := m.logs.All()
	out := make([]LogMessage, 0, len(entries))
	for _, e := range entries {
		out = append(out, LogMessage{Level: e.Level.String(), Message: e.Message, Fields: e.ContextMap()})
	}
	return out
}

// Clear drops everything recorded so far.
func (m *MockLogger) Clear() { m.logs.TakeAll() }

// HasMessage reports whether msg was logged at level ("debug", "warn", ...).
func (m *MockLogger) HasMessage(level, msg string) bool {
	for _, e := range m.logs.FilterMessage(msg).All() {
		if e.Level.String() == level {
			return true
		}
	}
	return false
}

func (m *MockLogger) CountLevel(level string) int {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return 0
	}
	return m.logs.FilterLevelExact(lvl).Len()
}

var _ logging.Logger = (*MockLogger)(nil)

//Personal.AI order the ending
