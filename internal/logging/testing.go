// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger that discards everything. Components use
// it when no manager is wired, e.g. in unit tests.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager is a Manager without the file: entries go to the
// channel only, at debug level, so tests can assert on them.
type TestLogManager struct {
	sink *ChannelSink
	root *zap.Logger

	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

// NewTestLogManager creates a channel-only manager with the given
// buffer size.
func NewTestLogManager(bufferSize int) *TestLogManager {
	sink := NewChannelSink(bufferSize)
	return &TestLogManager{
		sink:    sink,
		root:    zap.New(jsonCore(zapcore.AddSync(sink), zapcore.DebugLevel)),
		loggers: make(map[string]*ScopedLogger),
	}
}

// For returns the cached logger for a scope, mirroring Manager.For.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[scope]; ok {
		return l
	}
	l := newScopedLogger(m.root, scope, zapcore.DebugLevel)
	m.loggers[scope] = l
	return l
}

// Channel exposes the entry stream for assertions.
func (m *TestLogManager) Channel() <-chan LogEntry {
	return m.sink.Entries()
}

// Close releases the channel sink.
func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
