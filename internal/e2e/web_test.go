//go:build e2e
// +build e2e

package e2e

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"loom/internal/logging"
	"loom/internal/web"
)

// startInstanceServer wires the runner and server the way main does:
// published snapshots flow into the server, and server-side messages
// flow back through the returned channel, standing in for
// Program.Send.
func startInstanceServer(t *testing.T, runner *TUITestRunner, logMgr *logging.Manager) (string, chan any) {
	t.Helper()

	msgCh := make(chan any, 16)
	server := web.New(web.Config{Version: "e2e-test"}, func(msg any) {
		msgCh <- msg
	}, logMgr)
	runner.OnSnapshot = server.Publish

	ln, err := server.Listen()
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	return "http://" + server.Addr(), msgCh
}

// pumpOne delivers the next server-side message into the model, the
// way the program loop would.
func pumpOne(t *testing.T, runner *TUITestRunner, msgCh chan any) {
	t.Helper()
	select {
	case msg := <-msgCh:
		runner.Send(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no message forwarded by the instance server")
	}
}

func TestInstanceAPI_StatusAndLayout(t *testing.T) {
	ws := TestWorkspace(t, map[string]string{"api.txt": "hello api\n"})
	logMgr := TestLogManager(t)
	runner := NewTUITestRunner(t, TestConfig(), logMgr, []string{filepath.Join(ws, "api.txt")})
	baseURL, _ := startInstanceServer(t, runner, logMgr)

	// 1. Health answers before the editor has drawn anything.
	resp, err := http.Get(baseURL + "/api/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// 2. Layout is unavailable until the first snapshot arrives.
	resp, err = http.Get(baseURL + "/api/layout")
	if err != nil {
		t.Fatalf("layout request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("layout status before first draw = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}

	runner.Init()
	runner.SendWindowSize(90, 24)

	// 3. Status reflects the published snapshot.
	resp, err = http.Get(baseURL + "/api/status")
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	var status web.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	resp.Body.Close()
	if status.Version != "e2e-test" {
		t.Errorf("status.Version = %q, want %q", status.Version, "e2e-test")
	}
	if status.Files != 1 {
		t.Errorf("status.Files = %d, want 1", status.Files)
	}
	if status.Width != 90 || status.Height != 24 {
		t.Errorf("status terminal = %dx%d, want 90x24", status.Width, status.Height)
	}

	// 4. Layout now serves the pane tree.
	resp, err = http.Get(baseURL + "/api/layout")
	if err != nil {
		t.Fatalf("layout request failed: %v", err)
	}
	var lay web.LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&lay); err != nil {
		t.Fatalf("failed to decode layout: %v", err)
	}
	resp.Body.Close()
	if lay.Tree.Kind != "tabs" {
		t.Errorf("layout tree kind = %q, want %q", lay.Tree.Kind, "tabs")
	}
	if len(lay.Tree.Files) != 1 || filepath.Base(lay.Tree.Files[0].Name) != "api.txt" {
		t.Errorf("layout tree files = %+v, want api.txt", lay.Tree.Files)
	}
	if len(lay.Spans) == 0 {
		t.Error("Expected at least one span in the layout response")
	}
}

func TestInstanceAPI_RemoteOpenRoundTrip(t *testing.T) {
	ws := TestWorkspace(t, map[string]string{"remote.txt": "pushed in\n"})
	path := filepath.Join(ws, "remote.txt")
	logMgr := TestLogManager(t)
	runner := NewTUITestRunner(t, TestConfig(), logMgr, nil)
	baseURL, msgCh := startInstanceServer(t, runner, logMgr)

	runner.Init()
	runner.SendWindowSize(90, 24)

	// 1. POST the open request; the server only forwards it.
	body, _ := json.Marshal(web.OpenRequest{Path: path})
	resp, err := http.Post(baseURL+"/api/open", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("open request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("open status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}

	// 2. Deliver the forwarded message and check the editor took it.
	pumpOne(t, runner, msgCh)
	if snap := runner.Snapshot(); snap.FileCount != 1 {
		t.Fatalf("FileCount after remote open = %d, want 1", snap.FileCount)
	}

	// 3. The published picture catches up for remote readers too.
	resp, err = http.Get(baseURL + "/api/status")
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	var status web.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	resp.Body.Close()
	if status.Files != 1 {
		t.Errorf("status.Files = %d, want 1", status.Files)
	}
}

func TestInstanceAPI_OpenRejectsEmptyPath(t *testing.T) {
	logMgr := TestLogManager(t)
	runner := NewTUITestRunner(t, TestConfig(), logMgr, nil)
	baseURL, _ := startInstanceServer(t, runner, logMgr)

	resp, err := http.Post(baseURL+"/api/open", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("open request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("open status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	var errDoc map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&errDoc); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if errDoc["error"] != "path is required" {
		t.Errorf("error = %q, want %q", errDoc["error"], "path is required")
	}
}

func TestInstanceAPI_EventsStream(t *testing.T) {
	logMgr := TestLogManager(t)
	runner := NewTUITestRunner(t, TestConfig(), logMgr, nil)
	baseURL, _ := startInstanceServer(t, runner, logMgr)

	runner.Init()
	runner.SendWindowSize(90, 24)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/events", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events request failed: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want %q", ct, "text/event-stream")
	}

	scanner := bufio.NewScanner(resp.Body)
	readLine := func() string {
		t.Helper()
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				return line
			}
		}
		t.Fatal("event stream ended early")
		return ""
	}

	// 1. The handshake event arrives as soon as the stream opens.
	if line := readLine(); line != "event: connected" {
		t.Fatalf("first line = %q, want %q", line, "event: connected")
	}
	if line := readLine(); line != "data: ok" {
		t.Fatalf("second line = %q, want %q", line, "data: ok")
	}

	// 2. A fresh snapshot wakes the stream with a layout event.
	runner.SendWindowSize(91, 24)
	if line := readLine(); line != "event: layout" {
		t.Errorf("signal line = %q, want %q", line, "event: layout")
	}
}

func TestInstanceAPI_FrameMirror(t *testing.T) {
	ws := TestWorkspace(t, map[string]string{"mirror.txt": "seen remotely\n"})
	logMgr := TestLogManager(t)
	runner := NewTUITestRunner(t, TestConfig(), logMgr, []string{filepath.Join(ws, "mirror.txt")})
	baseURL, _ := startInstanceServer(t, runner, logMgr)

	runner.Init()
	runner.SendWindowSize(90, 24)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, baseURL+"/ws/frames", nil)
	if err != nil {
		t.Fatalf("failed to dial frame mirror: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")
	conn.SetReadLimit(1 << 22)

	// The current frame arrives on connect.
	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("failed to read first frame: %v", err)
	}
	if typ != websocket.MessageText {
		t.Errorf("message type = %v, want %v", typ, websocket.MessageText)
	}
	frame := string(data)
	if !strings.Contains(frame, "mirror.txt") {
		t.Error("Expected the tab line in the mirrored frame")
	}
	if !strings.Contains(frame, "seen remotely") {
		t.Error("Expected the buffer contents in the mirrored frame")
	}
}

func TestInstanceAPI_InspectorPage(t *testing.T) {
	logMgr := TestLogManager(t)
	runner := NewTUITestRunner(t, TestConfig(), logMgr, nil)
	baseURL, _ := startInstanceServer(t, runner, logMgr)

	resp, err := http.Get(baseURL + "/")
	if err != nil {
		t.Fatalf("inspector request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("inspector status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("failed to read inspector page: %v", err)
	}
	if !strings.Contains(buf.String(), "loom") {
		t.Error("Expected the inspector page to name the editor")
	}
}
