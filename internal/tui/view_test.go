package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"loom/internal/logging"
)

// frameLines renders the model and returns the frame as plain text
// rows, free of any styling sequences.
func frameLines(m Model) []string {
	return strings.Split(ansi.Strip(m.View()), "\n")
}

func TestView_BlankBeforeFirstResize(t *testing.T) {
	cfg := newTestModel().cfg
	m := NewModel(cfg, nil)

	if m.View() != "" {
		t.Error("view should be empty until the terminal size is known")
	}
}

func TestView_GreetingWhenNothingOpen(t *testing.T) {
	m := newTestModel()

	frame := ansi.Strip(m.View())

	if !strings.Contains(frame, "no files open") {
		t.Error("greeting should say no files are open")
	}
	if !strings.Contains(frame, "ctrl+o") {
		t.Error("greeting should mention the open shortcut")
	}
	if got := len(strings.Split(frame, "\n")); got != 24 {
		t.Errorf("frame has %d rows, want 24", got)
	}
}

func TestView_SingleFileFrame(t *testing.T) {
	m := newTestModel()
	openTemp(t, &m, "notes.go", "alpha\nbravo\ncharlie\n")

	lines := frameLines(m)

	if len(lines) != 24 {
		t.Fatalf("frame has %d rows, want 24", len(lines))
	}
	if !strings.Contains(lines[0], "notes.go") {
		t.Error("tab line should show the open file")
	}
	// The grid starts on the second row, one file line per cell row.
	if !strings.HasPrefix(lines[1], "alpha") {
		t.Errorf("row 1 = %q, want it to start with alpha", lines[1])
	}
	if !strings.HasPrefix(lines[2], "bravo") {
		t.Errorf("row 2 = %q, want it to start with bravo", lines[2])
	}
	if !strings.HasPrefix(lines[3], "charlie") {
		t.Errorf("row 3 = %q, want it to start with charlie", lines[3])
	}
	if !strings.Contains(lines[23], "1:1") {
		t.Error("status bar should show the cursor position")
	}
	if !strings.Contains(lines[23], "Go") {
		t.Error("status bar should show the detected file type")
	}
}

func TestView_TopToBottomSplitDrawsRule(t *testing.T) {
	m := newTestModel()
	openTemp(t, &m, "a.txt", "alpha\n")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	m = next.(Model)

	lines := frameLines(m)

	// Grid rows 0-9 belong to the top pane, row 10 is the rule, rows
	// 11-21 the bottom pane. Row 10 of the grid is frame row 11.
	if lines[11] != strings.Repeat("─", 80) {
		t.Errorf("frame row 11 = %q, want a full width rule", lines[11])
	}
	if !strings.HasPrefix(lines[1], "alpha") {
		t.Error("top pane should keep its text above the rule")
	}
	if strings.TrimSpace(lines[12]) != "" {
		t.Errorf("row below the rule belongs to the empty pane, got %q", lines[12])
	}
}

func TestView_SideBySideSplitDrawsRule(t *testing.T) {
	m := newTestModel()
	openTemp(t, &m, "a.txt", "alpha\n")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m = next.(Model)

	lines := frameLines(m)

	// The left pane keeps columns 0-38, column 39 carries the rule and
	// the right pane starts at column 40, on every grid row.
	for y := 1; y <= 22; y++ {
		runes := []rune(lines[y])
		if len(runes) != 80 {
			t.Fatalf("frame row %d is %d cells wide, want 80", y, len(runes))
		}
		if runes[39] != '│' {
			t.Errorf("frame row %d column 39 = %q, want the vertical rule", y, runes[39])
		}
	}
	if !strings.HasPrefix(lines[1], "alpha") {
		t.Error("left pane should keep its text")
	}
}

func TestRenderTabLine_MarksModifiedFile(t *testing.T) {
	m := newTestModel()
	openTemp(t, &m, "draft.md", "one\n")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = next.(Model)

	line := ansi.Strip(m.renderTabLine(80))

	if !strings.Contains(line, "draft.md*") {
		t.Errorf("tab line = %q, want the modified marker", line)
	}
}

func TestRenderTabLine_FillsWithRule(t *testing.T) {
	m := newTestModel()

	line := ansi.Strip(m.renderTabLine(40))

	if line != strings.Repeat("─", 40) {
		t.Errorf("empty tab line = %q, want a full rule", line)
	}
}

func TestRenderStatusBar_Message(t *testing.T) {
	m := newTestModel()
	m.statusMessage = "opened a.txt"

	result := ansi.Strip(m.renderStatusBar(80))

	if !strings.Contains(result, "opened a.txt") {
		t.Error("status bar should contain the message")
	}
}

func TestRenderFileInfo_FallbackHelp(t *testing.T) {
	m := newTestModel()

	result := ansi.Strip(m.renderFileInfo())

	if !strings.Contains(result, "ctrl+o: open") {
		t.Error("with nothing open the bar should offer the open shortcut")
	}
	if !strings.Contains(result, "ctrl+l: logs") {
		t.Error("with nothing open the bar should offer the log shortcut")
	}
}

func TestRenderFileInfo_CursorFollowsDocument(t *testing.T) {
	m := newTestModel()
	openTemp(t, &m, "a.txt", "one\ntwo\nthree\n")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)

	result := ansi.Strip(m.renderFileInfo())

	if !strings.Contains(result, "2:2") {
		t.Errorf("file info = %q, want cursor at 2:2", result)
	}
}

func TestRenderLogEntry(t *testing.T) {
	m := newTestModel()

	entry := logging.LogEntry{
		Timestamp: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Level:     "INFO",
		Scope:     "tui",
		Message:   "opened file",
	}

	result := m.renderLogEntry(entry)

	if !strings.Contains(result, "10:30:00") {
		t.Error("should contain timestamp")
	}
	if !strings.Contains(result, "INFO") {
		t.Error("should contain level")
	}
	if !strings.Contains(result, "[tui]") {
		t.Error("should contain scope")
	}
	if !strings.Contains(result, "opened file") {
		t.Error("should contain message")
	}
}

func TestView_LogPanelBelowSeparator(t *testing.T) {
	m := newTestModel()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = next.(Model)

	lines := frameLines(m)

	if len(lines) != 24 {
		t.Fatalf("frame has %d rows, want 24", len(lines))
	}
	// Tab line, 13 editor rows, then the separator on frame row 14.
	if lines[14] != strings.Repeat("─", 80) {
		t.Errorf("frame row 14 = %q, want the panel separator", lines[14])
	}
	if !strings.Contains(lines[15], "Logs (all levels)") {
		t.Errorf("frame row 15 = %q, want the panel header", lines[15])
	}
}

func TestView_ConfirmDialogTakesOver(t *testing.T) {
	m := newTestModel()
	m.confirmOpen = true
	m.confirmMessage = "a.txt has unsaved changes. Close anyway?"

	frame := ansi.Strip(m.View())

	if !strings.Contains(frame, "Confirm") {
		t.Error("dialog should carry its title")
	}
	if !strings.Contains(frame, "unsaved changes") {
		t.Error("dialog should carry the message")
	}
	if !strings.Contains(frame, "Enter/y: confirm") {
		t.Error("dialog should explain the keys")
	}
}

func TestOverlayCursor_KeepsLineText(t *testing.T) {
	m := newTestModel()

	got := ansi.Strip(m.overlayCursor("hello", 2, 10))
	if got != "hello" {
		t.Errorf("overlay changed the text: %q", got)
	}

	// At the end of the line the cursor sits on a blank cell.
	got = ansi.Strip(m.overlayCursor("hi", 2, 10))
	if got != "hi " {
		t.Errorf("overlay past the text = %q, want %q", got, "hi ")
	}

	// Outside the pane the line is left alone.
	if m.overlayCursor("hello", 12, 10) != "hello" {
		t.Error("cursor beyond the pane width should not touch the line")
	}
}

func TestLevelSummary(t *testing.T) {
	m := newTestModel()

	if m.levelSummary() != "all levels" {
		t.Errorf("summary = %q, want all levels", m.levelSummary())
	}

	m.logLevels["DEBUG"] = false
	if m.levelSummary() != "INFO WARN ERROR" {
		t.Errorf("summary = %q, want INFO WARN ERROR", m.levelSummary())
	}

	for lv := range m.logLevels {
		m.logLevels[lv] = false
	}
	if m.levelSummary() != "no levels" {
		t.Errorf("summary = %q, want no levels", m.levelSummary())
	}
}
