//go:build e2e
// +build e2e

package e2e

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"loom/internal/config"
	"loom/internal/events"
	"loom/internal/logging"
	"loom/internal/tui"
)

// cmdWait bounds how long the runner waits for a command's message.
// Commands that outlive it (log channel reads, status bar ticks) are
// abandoned; they belong to the real program loop, not the runner.
const cmdWait = 200 * time.Millisecond

// TestConfig returns a config suitable for driving the editor in tests.
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "debug"
	return &cfg
}

// TestLogManager creates a log manager writing under the test's temp dir.
func TestLogManager(t *testing.T) *logging.Manager {
	t.Helper()

	lm, err := logging.NewManager(logging.Config{
		FilePath:       filepath.Join(t.TempDir(), "loom.log"),
		MaxSizeMB:      1,
		MaxBackups:     1,
		MaxAgeDays:     1,
		ChannelBufSize: 100,
		Level:          "debug",
	})
	if err != nil {
		t.Fatalf("failed to create log manager: %v", err)
	}
	t.Cleanup(func() { _ = lm.Close() })
	return lm
}

// TestWorkspace writes the given files under a temp dir and returns it.
func TestWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create workspace dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write workspace file: %v", err)
		}
	}
	return dir
}

// TUITestRunner provides utilities for testing the editor's TUI flows.
// It drives the model through Update() calls the way the program loop
// would and records the snapshot published after each one.
type TUITestRunner struct {
	t     *testing.T
	model tui.Model
	snap  events.Snapshot
	seen  bool

	// OnSnapshot, when set, receives every published snapshot in
	// addition to the runner's own copy. Tests that compose the
	// model with the web server point it at Server.Publish.
	OnSnapshot func(events.Snapshot)
}

// NewTUITestRunner creates the model the way main does, with the
// runner itself standing in for the web server as snapshot receiver.
func NewTUITestRunner(t *testing.T, cfg *config.Config, logMgr *logging.Manager, paths []string) *TUITestRunner {
	r := &TUITestRunner{t: t}
	r.model = tui.NewModelWithFiles(cfg, logMgr, nil, func(snap events.Snapshot) {
		r.snap = snap
		r.seen = true
		if r.OnSnapshot != nil {
			r.OnSnapshot(snap)
		}
	}, paths)
	return r
}

// Model returns the current model state.
func (r *TUITestRunner) Model() tui.Model {
	return r.model
}

// Snapshot returns the most recently published snapshot. Snapshots are
// only published once the model has a size, so SendWindowSize first.
func (r *TUITestRunner) Snapshot() events.Snapshot {
	r.t.Helper()
	if !r.seen {
		r.t.Fatal("no snapshot published yet; send a window size first")
	}
	return r.snap
}

// View renders the current frame.
func (r *TUITestRunner) View() string {
	return r.model.View()
}

// Init initializes the model and processes any resulting command.
func (r *TUITestRunner) Init() {
	r.t.Helper()
	cmd := r.model.Init()
	if cmd != nil {
		r.runCmd(cmd)
	}
}

// Send delivers an arbitrary message to the model.
func (r *TUITestRunner) Send(msg tea.Msg) {
	r.t.Helper()
	model, cmd := r.model.Update(msg)
	r.model = model.(tui.Model)
	if cmd != nil {
		r.runCmd(cmd)
	}
}

// PressKey simulates a single printable key press.
func (r *TUITestRunner) PressKey(key rune) {
	r.t.Helper()
	r.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{key}})
}

// PressSpecialKey simulates a special key press (ctrl keys, enter,
// esc, arrows).
func (r *TUITestRunner) PressSpecialKey(key tea.KeyType) {
	r.t.Helper()
	r.Send(tea.KeyMsg{Type: key})
}

// PressAltKey simulates a key press with the alt modifier held.
func (r *TUITestRunner) PressAltKey(key tea.KeyType) {
	r.t.Helper()
	r.Send(tea.KeyMsg{Type: key, Alt: true})
}

// TypeText simulates typing a string of text.
func (r *TUITestRunner) TypeText(text string) {
	r.t.Helper()
	for _, ch := range text {
		r.PressKey(ch)
	}
}

// SendWindowSize simulates a terminal resize.
func (r *TUITestRunner) SendWindowSize(width, height int) {
	r.t.Helper()
	r.Send(tea.WindowSizeMsg{Width: width, Height: height})
}

// runCmd executes a bubbletea command and feeds any resulting message
// back into the model, like the event loop would.
func (r *TUITestRunner) runCmd(cmd tea.Cmd) {
	r.runCmdWithDepth(cmd, 0)
}

func (r *TUITestRunner) runCmdWithDepth(cmd tea.Cmd, depth int) {
	r.t.Helper()
	if cmd == nil || depth > 10 {
		return
	}

	msgCh := make(chan tea.Msg, 1)
	go func() { msgCh <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-msgCh:
	case <-time.After(cmdWait):
		return
	}
	if msg == nil {
		return
	}

	// Handle batch messages by processing each command.
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			r.runCmdWithDepth(c, depth+1)
		}
		return
	}

	// Skip quit messages in tests.
	if _, ok := msg.(tea.QuitMsg); ok {
		return
	}

	model, next := r.model.Update(msg)
	r.model = model.(tui.Model)
	if next != nil {
		r.runCmdWithDepth(next, depth+1)
	}
}
