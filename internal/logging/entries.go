// pattern: Functional Core

package logging

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// LogEntry is one structured log line, ready for the editor's log panel
// and the logs command. It carries everything needed to render and
// filter a line.
type LogEntry struct {
	Timestamp time.Time
	Level     string // DEBUG, INFO, WARN, ERROR
	Scope     string // dotted logger name, e.g. "web.terminal"
	Message   string
	Fields    map[string]any
}

// String renders the entry as a single display line. Fields print in
// sorted key order so identical entries render identically.
func (e LogEntry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s [%s] %s",
		e.Timestamp.Format("15:04:05"), e.Level, e.Scope, e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
	}
	return sb.String()
}

// MatchesScope reports whether the entry's scope starts with prefix.
// An empty prefix matches everything.
func (e LogEntry) MatchesScope(prefix string) bool {
	return prefix == "" || strings.HasPrefix(e.Scope, prefix)
}

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

var levelRanks = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// ParseLevel normalizes a level string to its uppercase display form.
// Unknown levels read as INFO.
func ParseLevel(level string) string {
	if name, ok := levelNames[strings.ToLower(level)]; ok {
		return name
	}
	return "INFO"
}

// LevelRank orders levels for minimum-level filtering:
// DEBUG < INFO < WARN < ERROR.
func LevelRank(level string) int {
	return levelRanks[ParseLevel(level)]
}

// ParseLine converts one JSON log line, as written by the Zap file
// encoder, into a LogEntry. The standard keys (msg, level, logger, ts)
// map onto the entry; everything else lands in Fields.
func ParseLine(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}
	if raw == nil {
		raw = map[string]any{}
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Message:   takeString(raw, "msg"),
		Level:     ParseLevel(takeString(raw, "level")),
		Scope:     takeString(raw, "logger"),
	}
	if entry.Scope == "" {
		entry.Scope = "app"
	}

	// Epoch timestamps keep sub-second precision.
	if ts, ok := raw["ts"].(float64); ok {
		sec, frac := math.Modf(ts)
		entry.Timestamp = time.Unix(int64(sec), int64(frac*1e9))
		delete(raw, "ts")
	}

	// Caller info stays internal.
	delete(raw, "caller")
	delete(raw, "stacktrace")

	entry.Fields = raw
	return entry, nil
}

func takeString(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	delete(raw, key)
	return s
}
