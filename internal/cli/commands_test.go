// pattern: Imperative Shell
package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and
// returns everything fn wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	defer func() { os.Stdout = oldStdout }()

	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	buf := &bytes.Buffer{}
	buf.ReadFrom(r)
	os.Stdout = oldStdout
	return buf.String()
}

func TestBuildApp_VersionCommand_PrintsVersion(t *testing.T) {
	app := BuildApp("1.2.3", "")

	versionCmd := app.lookup("version")
	if versionCmd == nil {
		t.Fatal("version command not registered")
	}

	var err error
	output := captureStdout(t, func() {
		err = versionCmd.Run(nil)
	})

	if err != nil {
		t.Errorf("version command returned error: %v", err)
	}
	if output != "1.2.3\n" {
		t.Errorf("version command output = %q, want \"1.2.3\\n\"", output)
	}
}

func TestBuildApp_RegistersAllCommands(t *testing.T) {
	app := BuildApp("1.0.0", "")

	for _, name := range []string{"open", "status", "layout", "logs", "attach", "cleanup", "version"} {
		cmd := app.lookup(name)
		if cmd == nil {
			t.Errorf("command %q not registered", name)
			continue
		}
		if cmd.Summary == "" {
			t.Errorf("command %q has no summary", name)
		}
		if cmd.Usage == "" {
			t.Errorf("command %q has no usage", name)
		}
	}

	// logs works without an instance, open does not
	if app.lookup("logs").RequiresInstance {
		t.Errorf("logs command should not require a running instance")
	}
	if !app.lookup("open").RequiresInstance {
		t.Errorf("open command should require a running instance")
	}
}

func TestResolveDataDir(t *testing.T) {
	if got := ResolveDataDir("/custom/dir"); got != "/custom/dir" {
		t.Errorf("ResolveDataDir with override = %q, want /custom/dir", got)
	}

	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	if got := ResolveDataDir(""); got != filepath.Join("/xdg/data", "loom") {
		t.Errorf("ResolveDataDir with XDG_DATA_HOME = %q, want /xdg/data/loom", got)
	}

	t.Setenv("XDG_DATA_HOME", "")
	got := ResolveDataDir("")
	if !strings.HasSuffix(got, filepath.Join(".local", "share", "loom")) {
		t.Errorf("ResolveDataDir default = %q, want .local/share/loom suffix", got)
	}
}

func TestLogFilePath(t *testing.T) {
	got := LogFilePath("/data/loom")
	if got != filepath.Join("/data/loom", "loom.log") {
		t.Errorf("LogFilePath = %q, want /data/loom/loom.log", got)
	}
}

func TestBuildApp_CleanupCommand_RemovesStaleFiles(t *testing.T) {
	tmpDir := t.TempDir()

	// Leave a stale port file behind, as a crashed instance would
	portFile := filepath.Join(tmpDir, "loom.port")
	if err := os.WriteFile(portFile, []byte("127.0.0.1:9999"), 0600); err != nil {
		t.Fatalf("failed to write port file: %v", err)
	}

	app := BuildApp("1.0.0", tmpDir)
	cleanupCmd := app.lookup("cleanup")
	if cleanupCmd == nil {
		t.Fatal("cleanup command not registered")
	}

	var err error
	output := captureStdout(t, func() {
		err = cleanupCmd.Run(nil)
	})

	if err != nil {
		t.Errorf("cleanup command returned error: %v", err)
	}
	if !strings.Contains(output, "Cleaned up") {
		t.Errorf("expected cleanup message in output, got: %s", output)
	}
	if _, err := os.Stat(portFile); !os.IsNotExist(err) {
		t.Errorf("port file still exists after cleanup")
	}
}

func TestStatusCommand_PrintsHumanReadableStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			w.WriteHeader(http.StatusOK)
		case "/api/status":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"version":"test","files":2,"width":120,"height":40,"active":[1,0],"work_dir":"/work"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tmpDir, unlock := lockWithServer(t, server)
	defer unlock()

	output := captureStdout(t, func() {
		if err := runStatusCommand(tmpDir, nil); err != nil {
			t.Errorf("runStatusCommand returned error: %v", err)
		}
	})

	for _, want := range []string{"version:  test", "files:    2", "terminal: 120x40", "active:   1.0", "workdir:  /work"} {
		if !strings.Contains(output, want) {
			t.Errorf("status output missing %q, got:\n%s", want, output)
		}
	}
}

func TestOpenCommand_SendsAbsolutePaths(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			w.WriteHeader(http.StatusOK)
		case "/api/open":
			var req struct {
				Path string `json:"path"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			gotPath = req.Path
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"status":"accepted"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tmpDir, unlock := lockWithServer(t, server)
	defer unlock()

	output := captureStdout(t, func() {
		if err := runOpenCommand(tmpDir, []string{"notes.md"}); err != nil {
			t.Errorf("runOpenCommand returned error: %v", err)
		}
	})

	if !filepath.IsAbs(gotPath) {
		t.Errorf("open sent relative path %q, want absolute", gotPath)
	}
	if filepath.Base(gotPath) != "notes.md" {
		t.Errorf("open sent path %q, want a notes.md path", gotPath)
	}
	if !strings.Contains(output, "opened ") {
		t.Errorf("open output missing confirmation, got: %s", output)
	}
}
