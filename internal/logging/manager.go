// pattern: Imperative Shell

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config sets up the log manager: where the rotated JSON file lives,
// how big it may grow, and how deep the log panel's channel buffers.
type Config struct {
	FilePath       string
	MaxSizeMB      int
	MaxBackups     int
	MaxAgeDays     int
	Level          string // minimum level name: debug, info, warn, error
	ChannelBufSize int
}

// LoggerProvider hands out scoped loggers. Manager and TestLogManager
// both satisfy it, so components take the interface.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// Manager writes every entry twice: JSON to the lumberjack-rotated
// file, and through the bounded channel sink into the log panel.
type Manager struct {
	root  *zap.Logger
	sink  *ChannelSink
	file  *lumberjack.Logger
	level zapcore.Level

	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

// withDefaults fills zero fields with serviceable values.
func (c Config) withDefaults() Config {
	if c.ChannelBufSize == 0 {
		c.ChannelBufSize = 1000
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 7
	}
	return c
}

// NewManager builds the manager, creating the log directory when it
// is missing.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("log file path is required")
	}
	cfg = cfg.withDefaults()

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	sink := NewChannelSink(cfg.ChannelBufSize)
	level := zapLevel(cfg.Level)

	core := zapcore.NewTee(
		jsonCore(zapcore.AddSync(file), level),
		jsonCore(zapcore.AddSync(sink), level),
	)

	return &Manager{
		root:    zap.New(core),
		sink:    sink,
		file:    file,
		level:   level,
		loggers: make(map[string]*ScopedLogger),
	}, nil
}

// For returns the logger for a scope ("tui", "web.terminal", "watch"),
// creating and caching it on first use.
func (m *Manager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[scope]; ok {
		return l
	}
	l := newScopedLogger(m.root, scope, m.level)
	m.loggers[scope] = l
	return l
}

// Entries is the channel the log panel drains.
func (m *Manager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

// Sync flushes buffered entries to the file.
func (m *Manager) Sync() error {
	return m.root.Sync()
}

// Close syncs and releases the file and the channel sink.
func (m *Manager) Close() error {
	_ = m.Sync()
	_ = m.sink.Close()
	return m.file.Close()
}

// jsonCore builds one zap core with loom's wire encoding: epoch ts,
// lowercase level, scope under the "logger" key.
func jsonCore(w zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.EpochTimeEncoder
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, level)
}

// zapLevel maps a config level name onto zap's scale; unknown names
// mean info.
func zapLevel(name string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
