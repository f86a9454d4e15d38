// pattern: Imperative Shell
package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeLogFile writes zap-encoded JSON lines like the editor's log file.
func writeLogFile(t *testing.T) string {
	t.Helper()

	lines := []string{
		`{"level":"info","ts":1700000000.1,"logger":"tui","msg":"editor ready"}`,
		`{"level":"debug","ts":1700000001.2,"logger":"web","msg":"listener up"}`,
		`not a json line`,
		`{"level":"warn","ts":1700000002.3,"logger":"web.terminal","msg":"pty closed"}`,
		`{"level":"error","ts":1700000003.4,"logger":"watch","msg":"stat failed"}`,
	}

	path := filepath.Join(t.TempDir(), "loom.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatalf("failed to write log file: %v", err)
	}
	return path
}

func TestReadLastEntries_AllEntries(t *testing.T) {
	path := writeLogFile(t)

	entries, err := ReadLastEntries(path, LogsConfig{})
	if err != nil {
		t.Fatalf("ReadLastEntries returned error: %v", err)
	}

	// The malformed line is skipped
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	if entries[0].Message != "editor ready" {
		t.Errorf("first entry message = %q, want \"editor ready\"", entries[0].Message)
	}
	if entries[0].Scope != "tui" {
		t.Errorf("first entry scope = %q, want tui", entries[0].Scope)
	}
	if entries[3].Level != "ERROR" {
		t.Errorf("last entry level = %q, want ERROR", entries[3].Level)
	}
}

func TestReadLastEntries_TrailingLines(t *testing.T) {
	path := writeLogFile(t)

	entries, err := ReadLastEntries(path, LogsConfig{Lines: 2})
	if err != nil {
		t.Fatalf("ReadLastEntries returned error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "pty closed" || entries[1].Message != "stat failed" {
		t.Errorf("trailing entries = %q, %q; want pty closed, stat failed", entries[0].Message, entries[1].Message)
	}
}

func TestReadLastEntries_LevelFilter(t *testing.T) {
	path := writeLogFile(t)

	entries, err := ReadLastEntries(path, LogsConfig{Level: "warn"})
	if err != nil {
		t.Fatalf("ReadLastEntries returned error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (warn and above)", len(entries))
	}
	for _, e := range entries {
		if e.Level != "WARN" && e.Level != "ERROR" {
			t.Errorf("entry level %q passed a warn filter", e.Level)
		}
	}
}

func TestReadLastEntries_ScopeFilter(t *testing.T) {
	path := writeLogFile(t)

	entries, err := ReadLastEntries(path, LogsConfig{Scope: "web"})
	if err != nil {
		t.Fatalf("ReadLastEntries returned error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (web and web.terminal)", len(entries))
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Scope, "web") {
			t.Errorf("entry scope %q passed a web filter", e.Scope)
		}
	}
}

func TestShowLogs_OneShot(t *testing.T) {
	path := writeLogFile(t)

	var buf bytes.Buffer
	err := ShowLogs(context.Background(), path, LogsConfig{Writer: &buf})
	if err != nil {
		t.Fatalf("ShowLogs returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "editor ready") {
		t.Errorf("output missing first entry, got:\n%s", out)
	}
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "[tui]") {
		t.Errorf("output missing level or scope markers, got:\n%s", out)
	}
}

func TestShowLogs_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.log")

	var buf bytes.Buffer
	err := ShowLogs(context.Background(), path, LogsConfig{Writer: &buf})
	if err == nil {
		t.Fatal("ShowLogs succeeded on a missing file")
	}
	if !strings.Contains(err.Error(), "no log file") {
		t.Errorf("error = %v, want a no log file message", err)
	}
}

func TestShowLogs_FollowStopsOnCancel(t *testing.T) {
	path := writeLogFile(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- ShowLogs(ctx, path, LogsConfig{Follow: true, Writer: &buf})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ShowLogs returned error after cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ShowLogs did not return after cancel")
	}

	if !strings.Contains(buf.String(), "editor ready") {
		t.Errorf("follow mode skipped the initial dump, got:\n%s", buf.String())
	}
}

func TestMatchesFilter(t *testing.T) {
	entries, err := ReadLastEntries(writeLogFile(t), LogsConfig{Level: "info", Scope: "web"})
	if err != nil {
		t.Fatalf("ReadLastEntries returned error: %v", err)
	}

	// debug web entry is below the level floor, warn web.terminal passes both
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Message != "pty closed" {
		t.Errorf("entry = %q, want pty closed", entries[0].Message)
	}
}
