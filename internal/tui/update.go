// pattern: Imperative Shell

package tui

import (
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"loom/internal/events"
	"loom/internal/layout"
	"loom/internal/logging"
)

// doubleCtrlCWindow is the maximum time between two ctrl+c presses to trigger quit.
const doubleCtrlCWindow = 500 * time.Millisecond

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.LogEntry
}

// clearStatusMsg expires a status message. The sequence number ties it
// to the message it was armed for, so it cannot wipe a newer one.
type clearStatusMsg struct {
	seq int
}

// Update handles messages and updates the model. Every pass ends with
// a fresh snapshot pushed to the instance server.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if nm, ok := next.(Model); ok {
		nm.publish()
		return nm, cmd
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.recomputeSpans()

		if m.pickerOpen {
			m.sizePicker()
		}
		if m.logPanelOpen {
			chrome := ComputeLayout(m.width, m.height, true)
			if !m.logReady {
				m.logViewport = viewport.New(chrome.Logs.Width, chrome.Logs.Height-1)
				m.logReady = true
			} else {
				m.logViewport.Width = chrome.Logs.Width
				m.logViewport.Height = chrome.Logs.Height - 1
			}
			m.refreshLogViewport()
		}
		return m, nil

	case tea.KeyMsg:
		m.logger.Debug("key pressed", "key", msg.String(), "pickerOpen", m.pickerOpen, "logPanelOpen", m.logPanelOpen, "confirmOpen", m.confirmOpen)

		// Quit shortcut first: ctrl+c twice within the window.
		if msg.Type == tea.KeyCtrlC {
			now := time.Now()
			if !m.lastCtrlCTime.IsZero() && now.Sub(m.lastCtrlCTime) <= doubleCtrlCWindow {
				m.logger.Debug("quit via double ctrl+c")
				return m, tea.Quit
			}
			m.lastCtrlCTime = now
			return m, m.setStatus(events.StatusInfo, "press ctrl+c again to quit")
		}

		if m.confirmOpen {
			return m.handleConfirmKey(msg)
		}

		if m.pickerOpen {
			return m.handlePickerKey(msg)
		}

		// The log panel owns the keyboard while open; editing resumes
		// when it closes.
		if m.logPanelOpen {
			return m.handleLogPanelKey(msg)
		}

		// esc asks for the quit hint. q does too, but only while no
		// file is open, since q is ordinary text in a buffer.
		if msg.Type == tea.KeyEscape || (msg.String() == "q" && layout.Count(m.root) == 0) {
			m.quitHintCount++
			if m.quitHintCount >= 2 {
				m.quitHintCount = 0
				return m, m.setStatus(events.StatusInfo, "ctrl+c ctrl+c to quit")
			}
			return m, nil
		}

		// Reset quit hint count on any other key
		m.quitHintCount = 0

		switch msg.String() {
		case "ctrl+s":
			return m, m.saveActive()

		case "ctrl+o":
			return m, m.openPicker()

		case "ctrl+e":
			return m, m.split(false)

		case "ctrl+u":
			return m, m.split(true)

		case "ctrl+w":
			return m, m.closeActive()

		case "ctrl+r":
			return m, m.reloadActive()

		case "ctrl+n":
			m.nextTab()
			return m, nil

		case "ctrl+p":
			m.prevTab()
			return m, nil

		case "ctrl+l":
			m.toggleLogPanel()
			return m, nil

		case "alt+left":
			m.focusNeighbor(-1, 0)
			return m, nil

		case "alt+right":
			m.focusNeighbor(1, 0)
			return m, nil

		case "alt+up":
			m.focusNeighbor(0, -1)
			return m, nil

		case "alt+down":
			m.focusNeighbor(0, 1)
			return m, nil
		}

		return m.handleEditKey(msg)

	case events.OpenFileMsg:
		if err := m.openFile(msg.Path); err != nil {
			m.logger.Error("remote open failed", "path", msg.Path, "error", err)
			return m, m.setStatus(events.StatusError, "cannot open "+msg.Path)
		}
		m.logger.Info("opened file remotely", "path", msg.Path)
		return m, m.setStatus(events.StatusInfo, "opened "+filepath.Base(msg.Path))

	case events.FileChangedMsg:
		m.logger.Warn("file changed on disk", "path", msg.Path)
		return m, m.setStatus(events.StatusWarning, filepath.Base(msg.Path)+" changed on disk, ctrl+r reloads")

	case events.StatusMsg:
		return m, m.setStatus(msg.Level, msg.Text)

	case events.LayoutChangedMsg:
		// Nothing to mutate: the snapshot published after this pass is
		// the real answer to a layout poke.
		return m, nil

	case events.WebListenURLMsg:
		m.listenURL = msg.URL
		m.logger.Info("instance server listening", "url", msg.URL)
		return m, nil

	case logEntriesMsg:
		for _, e := range msg.entries {
			m.addLogEntry(e)
		}
		if m.logPanelOpen {
			m.refreshLogViewport()
		}
		return m, m.consumeLogEntries()

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.clearStatus()
		}
		return m, nil
	}

	return m, nil
}

// handleEditKey drives the focused document: cursor movement, text
// entry and deletion.
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fc, err := layout.ActiveContainer(m.root, m.active)
	if err != nil || fc.Doc == nil {
		return m, nil
	}
	doc := fc.Doc

	switch msg.Type {
	case tea.KeyUp:
		doc.Move(-1, 0)
	case tea.KeyDown:
		doc.Move(1, 0)
	case tea.KeyLeft:
		doc.Move(0, -1)
	case tea.KeyRight:
		doc.Move(0, 1)
	case tea.KeyPgUp:
		doc.Move(-m.editPageSize(), 0)
	case tea.KeyPgDown:
		doc.Move(m.editPageSize(), 0)
	case tea.KeyHome:
		_, col := doc.Cursor()
		doc.Move(0, -col)
	case tea.KeyEnd:
		row, col := doc.Cursor()
		doc.Move(0, len([]rune(doc.Line(row)))-col)
	case tea.KeyEnter:
		doc.Newline()
	case tea.KeyBackspace:
		doc.Backspace()
	case tea.KeyTab:
		doc.Insert("\t")
	case tea.KeySpace:
		doc.Insert(" ")
	case tea.KeyRunes:
		doc.Insert(string(msg.Runes))
	}
	return m, nil
}

// editPageSize is how many lines page up/down jump: the height of the
// focused pane.
func (m Model) editPageSize() int {
	if s, ok := m.activeSpan(); ok && s.Rows.Len() > 1 {
		return s.Rows.Len()
	}
	return 1
}

// toggleLogPanel opens or closes the log panel, resizing the grid
// around it.
func (m *Model) toggleLogPanel() {
	m.logPanelOpen = !m.logPanelOpen
	m.logger.Debug("toggling log panel", "visible", m.logPanelOpen)
	if m.logPanelOpen {
		chrome := ComputeLayout(m.width, m.height, true)
		if !m.logReady {
			m.logViewport = viewport.New(chrome.Logs.Width, chrome.Logs.Height-1)
			m.logReady = true
		} else {
			m.logViewport.Width = chrome.Logs.Width
			m.logViewport.Height = chrome.Logs.Height - 1
		}
		m.refreshLogViewport()
	}
	m.recomputeSpans()
}

// handleLogPanelKey processes key events while the log panel is open.
func (m Model) handleLogPanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+l":
		m.toggleLogPanel()
		return m, nil

	case "1":
		m.toggleLogLevel("DEBUG")
		return m, nil
	case "2":
		m.toggleLogLevel("INFO")
		return m, nil
	case "3":
		m.toggleLogLevel("WARN")
		return m, nil
	case "4":
		m.toggleLogLevel("ERROR")
		return m, nil

	case "j", "down":
		if m.logReady {
			m.logViewport.SetYOffset(m.logViewport.YOffset + 1)
			m.logAutoScroll = m.logViewport.AtBottom()
		}
		return m, nil
	case "k", "up":
		if m.logReady {
			if m.logViewport.YOffset > 0 {
				m.logViewport.SetYOffset(m.logViewport.YOffset - 1)
			}
			m.logAutoScroll = false
		}
		return m, nil
	case "g":
		if m.logReady {
			m.logViewport.GotoTop()
			m.logAutoScroll = false
		}
		return m, nil
	case "G":
		if m.logReady {
			m.logViewport.GotoBottom()
			m.logAutoScroll = true
		}
		return m, nil
	case "pgup":
		if m.logReady {
			m.logViewport.HalfPageUp()
			m.logAutoScroll = false
		}
		return m, nil
	case "pgdown":
		if m.logReady {
			m.logViewport.HalfPageDown()
			m.logAutoScroll = m.logViewport.AtBottom()
		}
		return m, nil
	}

	return m, nil
}

// handleConfirmKey processes key events while the discard prompt is
// open.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "y", "Y":
		m.confirmOpen = false
		m.confirmMessage = ""
		return m, m.closeActiveForced()

	case "esc", "n", "N":
		m.confirmOpen = false
		m.confirmMessage = ""
		return m, nil
	}

	return m, nil
}
