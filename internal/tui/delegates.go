// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"loom/internal/discovery"
)

// fileItem adapts a discovered file to the picker list.
type fileItem struct {
	entry discovery.Entry
}

func (i fileItem) Title() string       { return i.entry.Name }
func (i fileItem) Description() string { return i.entry.Rel }

// FilterValue matches on the relative path so typing a directory
// narrows the picker.
func (i fileItem) FilterValue() string { return i.entry.Rel }

// fileDelegate renders picker entries one line each, keeping the list
// dense enough to scan a large workspace.
type fileDelegate struct {
	styles *Styles
}

func newFileDelegate(styles *Styles) fileDelegate {
	return fileDelegate{styles: styles}
}

// Rows are single lines with no gaps.
func (d fileDelegate) Height() int  { return 1 }
func (d fileDelegate) Spacing() int { return 0 }

// Update satisfies list.ItemDelegate; picker rows carry no state.
func (d fileDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

// Render writes one picker row: indicator, file name, then the
// workspace-relative path in a dimmer tone.
func (d fileDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	fi, ok := item.(fileItem)
	if !ok {
		return
	}

	palette := d.styles.flavor
	name := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Text().Hex))
	path := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Overlay0().Hex))

	prefix := "  "
	if index == m.Index() {
		accent := lipgloss.Color(palette.Mauve().Hex)
		prefix = lipgloss.NewStyle().Foreground(accent).Render("▸ ")
		name = name.Bold(true).Foreground(accent)
	}

	_, _ = fmt.Fprintf(w, "%s%s  %s", prefix, name.Render(fi.entry.Name), path.Render(fi.entry.Rel))
}

// toFileItems converts discovered entries to picker list items.
func toFileItems(entries []discovery.Entry) []list.Item {
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, fileItem{entry: e})
	}
	return items
}
