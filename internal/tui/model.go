package tui

import (
	"os"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"loom/internal/config"
	"loom/internal/discovery"
	"loom/internal/document"
	"loom/internal/events"
	"loom/internal/layout"
	"loom/internal/logging"
	"loom/internal/watch"
)

// maxLogEntries bounds the log panel history kept in memory.
const maxLogEntries = 1000

// statusVisibleFor is how long a status message stays on the bar
// before its expiry tick clears it.
const statusVisibleFor = 4 * time.Second

// Model represents the TUI application state.
type Model struct {
	width  int
	height int

	cfg    *config.Config
	styles *Styles
	logger *logging.ScopedLogger

	// root is the pane tree. spans is its geometry for the current
	// frame and active the path of the focused tab group; both are
	// recomputed after every size or shape change, never kept stale.
	root   layout.Layout
	spans  []layout.Span
	active []int

	statusLevel   events.StatusLevel
	statusMessage string
	statusSeq     int

	quitHintCount int
	lastCtrlCTime time.Time

	confirmOpen    bool
	confirmMessage string

	pickerOpen  bool
	pickerInput textinput.Model
	pickerList  list.Model
	pickerFiles []discovery.Entry
	scanFiles   func() []discovery.Entry

	logPanelOpen  bool
	logReady      bool
	logAutoScroll bool
	logViewport   viewport.Model
	logEntries    []logging.LogEntry
	logLevels     map[string]bool
	logCh         <-chan logging.LogEntry

	watcher   *watch.Watcher
	report    func(events.Snapshot)
	listenURL string
}

// NewModel creates a model with no files open and no background
// services attached. Tests and the bare `loom` invocation start here.
func NewModel(cfg *config.Config, logProvider logging.LoggerProvider) Model {
	return NewModelWithFiles(cfg, logProvider, nil, nil, nil)
}

// NewModelWithFiles creates the model main runs: the given files
// opened as tabs, the change watcher attached, and report called with
// a fresh snapshot after every update so the instance server always
// serves the current picture.
func NewModelWithFiles(cfg *config.Config, logProvider logging.LoggerProvider, watcher *watch.Watcher, report func(events.Snapshot), paths []string) Model {
	styles := NewStyles(cfg.Theme)

	logger := logging.NopLogger()
	if logProvider != nil {
		logger = logProvider.For("tui")
	}

	input := textinput.New()
	input.Placeholder = "start typing to filter"
	input.Prompt = "open: "

	files := list.New([]list.Item{}, newFileDelegate(styles), 0, 0)
	files.SetShowTitle(false)
	files.SetShowStatusBar(false)
	files.SetFilteringEnabled(false)
	files.SetShowHelp(false)

	m := Model{
		cfg:           cfg,
		styles:        styles,
		logger:        logger,
		root:          layout.Empty{},
		logAutoScroll: true,
		logLevels: map[string]bool{
			"DEBUG": true,
			"INFO":  true,
			"WARN":  true,
			"ERROR": true,
		},
		pickerInput: input,
		pickerList:  files,
		watcher:     watcher,
		report:      report,
	}

	if mgr, ok := logProvider.(*logging.Manager); ok {
		m.logCh = mgr.Entries()
	}

	m.scanFiles = func() []discovery.Entry {
		roots := cfg.ScanRoots
		if len(roots) == 0 {
			wd, err := os.Getwd()
			if err != nil {
				return nil
			}
			roots = []string{wd}
		}
		return discovery.NewScanner(cfg.ScanDepth).ScanAll(roots)
	}

	for _, p := range paths {
		if err := m.openFile(p); err != nil {
			m.logger.Warn("failed to open file", "path", p, "error", err)
		}
	}

	m.logger.Info("editor initialized", "theme", cfg.Theme, "files", layout.Count(m.root))

	return m
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	return m.consumeLogEntries()
}

// consumeLogEntries blocks on the next entry from the channel sink,
// then drains whatever else is queued so a burst arrives as one
// message. Update re-arms it after every delivery.
func (m Model) consumeLogEntries() tea.Cmd {
	ch := m.logCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		entries := []logging.LogEntry{e}
		for {
			select {
			case e, ok := <-ch:
				if !ok {
					return logEntriesMsg{entries: entries}
				}
				entries = append(entries, e)
			default:
				return logEntriesMsg{entries: entries}
			}
		}
	}
}

// openFile loads path into the active tab group, or just focuses the
// existing tab when the file is already open somewhere in the tree.
func (m *Model) openFile(path string) error {
	if abs, err := document.OSResolver(path); err == nil {
		if p, i, ok := layout.Find(m.root, nil, abs, document.OSResolver); ok {
			layout.MoveTo(m.root, p, i)
			m.active = p
			m.recomputeSpans()
			return nil
		}
	}

	buf, err := document.Open(path)
	if err != nil {
		return err
	}
	fc := layout.FileContainer{
		Doc:         buf,
		Highlighter: document.NewPlainHighlighter(m.cfg.TabWidth),
		FileType:    document.Detect(path),
	}

	if _, ok := m.root.(layout.Empty); ok {
		m.root = layout.NewTabGroup(fc)
		m.active = nil
	} else {
		m.ensureActive()
		if err := layout.InsertContainer(m.root, m.active, fc); err != nil {
			return err
		}
	}

	if m.watcher != nil {
		if err := m.watcher.Add(buf.FileName()); err != nil {
			m.logger.Warn("cannot watch file", "path", buf.FileName(), "error", err)
		}
	}
	m.recomputeSpans()
	return nil
}

// recomputeSpans refreshes the frame geometry. It must run after any
// change to the tree shape, the terminal size or the chrome, since
// every path the model holds comes out of the span list.
func (m *Model) recomputeSpans() {
	if m.width == 0 || m.height == 0 {
		m.spans = nil
		return
	}
	chrome := ComputeLayout(m.width, m.height, m.logPanelOpen)
	m.spans = layout.Spans(m.root, nil, chrome.GridSize())
	m.ensureActive()
}

// ensureActive repoints the active path at a live tab group when a
// mutation has invalidated it.
func (m *Model) ensureActive() {
	if _, err := layout.TabGroupAt(m.root, m.active); err == nil {
		return
	}
	m.focusFirstPane()
}

// focusFirstPane moves focus to the top-left pane, or clears it when
// the tree is empty.
func (m *Model) focusFirstPane() {
	for _, s := range m.spans {
		if !s.Divider {
			m.active = s.Path
			return
		}
	}
	m.active = nil
}

// setStatus replaces the status line and arms its expiry. The sequence
// number lets a stale expiry tick fall dead instead of wiping a newer
// message.
func (m *Model) setStatus(level events.StatusLevel, text string) tea.Cmd {
	m.statusLevel = level
	m.statusMessage = text
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusVisibleFor, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m *Model) clearStatus() {
	m.statusLevel = events.StatusInfo
	m.statusMessage = ""
}

// addLogEntry appends to the ring of panel entries, dropping the
// oldest past maxLogEntries.
func (m *Model) addLogEntry(e logging.LogEntry) {
	m.logEntries = append(m.logEntries, e)
	if len(m.logEntries) > maxLogEntries {
		m.logEntries = m.logEntries[len(m.logEntries)-maxLogEntries:]
	}
}

// filteredLogEntries returns the entries whose level toggle is on.
func (m Model) filteredLogEntries() []logging.LogEntry {
	out := make([]logging.LogEntry, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		if m.logLevels[e.Level] {
			out = append(out, e)
		}
	}
	return out
}

// toggleLogLevel flips one level's visibility in the log panel.
func (m *Model) toggleLogLevel(level string) {
	m.logLevels[level] = !m.logLevels[level]
	m.refreshLogViewport()
}

// refreshLogViewport re-renders the panel contents after new entries
// or a filter change.
func (m *Model) refreshLogViewport() {
	if !m.logReady {
		return
	}
	m.logViewport.SetContent(m.renderLogEntries())
	if m.logAutoScroll {
		m.logViewport.GotoBottom()
	}
}

// snapshot captures the remote picture of the editor for the instance
// server. Nothing in it aliases the live tree, so the server is free
// to read it from any goroutine.
func (m Model) snapshot() events.Snapshot {
	spans := make([]layout.Span, len(m.spans))
	copy(spans, m.spans)
	active := make([]int, len(m.active))
	copy(active, m.active)
	return events.Snapshot{
		Tree:      layout.Describe(m.root),
		Spans:     spans,
		Active:    active,
		FileCount: layout.Count(m.root),
		Width:     m.width,
		Height:    m.height,
		Frame:     m.View(),
	}
}

// publish pushes a fresh snapshot to the instance server, when one is
// attached.
func (m Model) publish() {
	if m.report == nil || m.width == 0 {
		return
	}
	m.report(m.snapshot())
}
