//go:build integration

// pattern: Imperative Shell

package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// These tests exercise real file tailing and fsnotify delivery.
// Run with: go test -tags=integration ./internal/logging/...

// startTail runs a TailReader against logFile in the background and
// returns the sink its entries land on.
func startTail(t *testing.T, logFile string) *ChannelSink {
	t.Helper()

	sink := NewChannelSink(100)
	reader, err := NewTailReader(logFile, sink)
	if err != nil {
		t.Fatalf("NewTailReader failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = reader.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = reader.Close()
	})

	// Give the directory watcher a moment to register.
	time.Sleep(200 * time.Millisecond)
	return sink
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
}

// waitEntry allows for the 5s polling fallback before giving up.
func waitEntry(t *testing.T, sink *ChannelSink) LogEntry {
	t.Helper()

	select {
	case entry := <-sink.Entries():
		return entry
	case <-time.After(6 * time.Second):
		t.Fatal("timeout waiting for log entry")
		return LogEntry{}
	}
}

func TestTailReader_FileCreatedAfterStart(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "loom.log")
	sink := startTail(t, logFile)

	appendLine(t, logFile, `{"level":"info","ts":1707235200.123,"logger":"app","msg":"editor started"}`)

	entry := waitEntry(t, sink)
	if entry.Message != "editor started" {
		t.Errorf("Message = %q, want %q", entry.Message, "editor started")
	}
	if entry.Scope != "app" {
		t.Errorf("Scope = %q, want %q", entry.Scope, "app")
	}
}

func TestTailReader_FollowsAppends(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "loom.log")
	if err := os.WriteFile(logFile, nil, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	sink := startTail(t, logFile)

	appendLine(t, logFile, `{"level":"info","ts":1707235200.0,"logger":"tui","msg":"pane split"}`)
	appendLine(t, logFile, `{"level":"warn","ts":1707235201.0,"logger":"watch","msg":"file changed on disk"}`)

	first := waitEntry(t, sink)
	second := waitEntry(t, sink)

	if first.Message != "pane split" {
		t.Errorf("first Message = %q, want %q", first.Message, "pane split")
	}
	if second.Scope != "watch" || second.Level != "WARN" {
		t.Errorf("second entry = %s [%s], want watch [WARN]", second.Scope, second.Level)
	}
}

func TestTailReader_SurvivesRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "loom.log")
	if err := os.WriteFile(logFile, nil, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	sink := startTail(t, logFile)

	appendLine(t, logFile, `{"level":"info","logger":"app","msg":"before rotation"}`)
	if entry := waitEntry(t, sink); entry.Message != "before rotation" {
		t.Fatalf("Message = %q, want %q", entry.Message, "before rotation")
	}

	// Rotate the way lumberjack does: move the file aside, then write
	// a fresh one under the original name.
	if err := os.Rename(logFile, logFile+".1"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	appendLine(t, logFile, `{"level":"info","logger":"app","msg":"after rotation"}`)

	if entry := waitEntry(t, sink); entry.Message != "after rotation" {
		t.Errorf("Message = %q, want %q", entry.Message, "after rotation")
	}
}
