// pattern: Imperative Shell

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"loom/internal/discovery"
	"loom/internal/events"
)

// openPicker scans the workspace and shows the file picker in place of
// the editor grid.
func (m *Model) openPicker() tea.Cmd {
	m.pickerFiles = m.scanFiles()
	m.pickerOpen = true
	m.pickerInput.SetValue("")
	m.pickerList.SetItems(toFileItems(m.pickerFiles))
	m.sizePicker()
	return tea.Batch(m.pickerInput.Focus(), textinput.Blink)
}

// closePicker dismisses the picker without opening anything.
func (m *Model) closePicker() {
	m.pickerOpen = false
	m.pickerInput.Blur()
}

// sizePicker fits the list under the input line within the current
// terminal.
func (m *Model) sizePicker() {
	w := m.width - 4
	if w < 1 {
		w = 1
	}
	h := m.height - 6
	if h < 1 {
		h = 1
	}
	m.pickerList.SetSize(w, h)
}

// filterPicker narrows the list to entries containing the query,
// matched case-insensitively against the relative path.
func (m *Model) filterPicker() {
	query := strings.ToLower(strings.TrimSpace(m.pickerInput.Value()))
	if query == "" {
		m.pickerList.SetItems(toFileItems(m.pickerFiles))
		return
	}
	var filtered []discovery.Entry
	for _, e := range m.pickerFiles {
		if strings.Contains(strings.ToLower(e.Rel), query) {
			filtered = append(filtered, e)
		}
	}
	m.pickerList.SetItems(toFileItems(filtered))
}

// handlePickerKey processes key events while the picker is open.
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.closePicker()
		return m, nil

	case tea.KeyEnter:
		// The selected entry wins; with nothing to select the typed
		// text is taken as a path, so new files can be started here.
		path := strings.TrimSpace(m.pickerInput.Value())
		display := path
		if item, ok := m.pickerList.SelectedItem().(fileItem); ok {
			path = item.entry.Path
			display = item.entry.Rel
		}
		if path == "" {
			return m, nil
		}
		m.closePicker()
		if err := m.openFile(path); err != nil {
			m.logger.Error("open failed", "path", path, "error", err)
			return m, m.setStatus(events.StatusError, "cannot open "+display)
		}
		m.logger.Info("opened file", "path", path)
		return m, m.setStatus(events.StatusInfo, "opened "+display)

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.pickerList, cmd = m.pickerList.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.pickerInput, cmd = m.pickerInput.Update(msg)
	m.filterPicker()
	return m, cmd
}
