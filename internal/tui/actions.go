// pattern: Imperative Shell

package tui

import (
	"fmt"
	"path/filepath"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"loom/internal/document"
	"loom/internal/events"
	"loom/internal/layout"
)

// split replaces the active pane with a two-way split of itself and a
// fresh empty group. Focus moves to the new pane so a file can be
// opened straight into it.
func (m *Model) split(topToBottom bool) tea.Cmd {
	tg, err := layout.TabGroupAt(m.root, m.active)
	if err != nil {
		return m.setStatus(events.StatusWarning, "nothing to split")
	}
	panes := []layout.Pane{
		{Child: tg, Proportion: 0.5},
		{Child: &layout.TabGroup{}, Proportion: 0.5},
	}
	var with layout.Layout
	if topToBottom {
		with = &layout.TopToBottom{Panes: panes}
	} else {
		with = &layout.SideBySide{Panes: panes}
	}
	root, err := layout.Replace(m.root, m.active, with)
	if err != nil {
		m.logger.Error("split failed", "path", m.active, "error", err)
		return m.setStatus(events.StatusError, "split failed")
	}
	m.root = root
	m.active = append(slices.Clone(m.active), 1)
	m.recomputeSpans()
	return m.setStatus(events.StatusInfo, "new pane, ctrl+o opens a file")
}

// closeActive closes the focused tab, asking first when it holds
// unsaved changes. Closing the last tab of a pane closes the pane
// itself, handing its space to a neighbour.
func (m *Model) closeActive() tea.Cmd {
	if fc, err := layout.ActiveContainer(m.root, m.active); err == nil && fc.Doc != nil && fc.Doc.Modified() {
		m.confirmOpen = true
		m.confirmMessage = fmt.Sprintf("Discard unsaved changes to %s?", tabTitle(*fc))
		return nil
	}
	return m.closeActiveForced()
}

// closeActiveForced closes the focused tab without checking for
// unsaved changes.
func (m *Model) closeActiveForced() tea.Cmd {
	tg, err := layout.TabGroupAt(m.root, m.active)
	if err != nil {
		return nil
	}

	if len(tg.Containers) == 0 {
		root, err := layout.RemovePane(m.root, m.active)
		if err != nil {
			m.logger.Error("close failed", "path", m.active, "error", err)
			return m.setStatus(events.StatusError, "close failed")
		}
		m.root = root
		m.recomputeSpans()
		return nil
	}

	var name string
	if doc := tg.Containers[tg.Active].Doc; doc != nil {
		name = doc.FileName()
	}
	if err := layout.RemoveContainer(m.root, m.active, tg.Active); err != nil {
		m.logger.Error("close failed", "path", m.active, "error", err)
		return m.setStatus(events.StatusError, "close failed")
	}
	m.unwatchIfClosed(name)

	// A group emptied by its last tab goes away with its pane.
	if len(tg.Containers) == 0 {
		root, err := layout.RemovePane(m.root, m.active)
		if err == nil {
			m.root = root
		}
	}
	m.recomputeSpans()
	return nil
}

// unwatchIfClosed drops the file watch when no other open tab still
// shows the same file.
func (m *Model) unwatchIfClosed(name string) {
	if name == "" || m.watcher == nil {
		return
	}
	if abs, err := document.OSResolver(name); err == nil {
		if _, _, still := layout.Find(m.root, nil, abs, document.OSResolver); still {
			return
		}
	}
	m.watcher.Remove(name)
}

// focusNeighbor moves pane focus one step in the given direction,
// judged geometrically on the current spans: the nearest pane whose
// rectangle lies past the focused one's edge and overlaps it on the
// other axis.
func (m *Model) focusNeighbor(dx, dy int) {
	cur, ok := m.activeSpan()
	if !ok {
		return
	}
	var best *layout.Span
	bestKey := 0
	for i := range m.spans {
		s := &m.spans[i]
		if s.Divider || slices.Equal(s.Path, cur.Path) {
			continue
		}
		var key int
		switch {
		case dx > 0:
			if s.Cols.Start < cur.Cols.End || !overlap(s.Rows, cur.Rows) {
				continue
			}
			key = s.Cols.Start
		case dx < 0:
			if s.Cols.End > cur.Cols.Start || !overlap(s.Rows, cur.Rows) {
				continue
			}
			key = -s.Cols.End
		case dy > 0:
			if s.Rows.Start < cur.Rows.End || !overlap(s.Cols, cur.Cols) {
				continue
			}
			key = s.Rows.Start
		case dy < 0:
			if s.Rows.End > cur.Rows.Start || !overlap(s.Cols, cur.Cols) {
				continue
			}
			key = -s.Rows.End
		default:
			continue
		}
		if best == nil || key < bestKey {
			best, bestKey = s, key
		}
	}
	if best != nil {
		m.active = best.Path
	}
}

// activeSpan returns the span of the focused tab group.
func (m Model) activeSpan() (layout.Span, bool) {
	for _, s := range m.spans {
		if !s.Divider && slices.Equal(s.Path, m.active) {
			return s, true
		}
	}
	return layout.Span{}, false
}

// overlap reports whether two ranges share at least one cell.
func overlap(a, b layout.Range) bool {
	return a.Start < b.End && b.Start < a.End
}

// nextTab cycles the focused group one tab forward.
func (m *Model) nextTab() {
	tg, err := layout.TabGroupAt(m.root, m.active)
	if err != nil || len(tg.Containers) < 2 {
		return
	}
	layout.MoveTo(m.root, m.active, (tg.Active+1)%len(tg.Containers))
}

// prevTab cycles the focused group one tab back.
func (m *Model) prevTab() {
	tg, err := layout.TabGroupAt(m.root, m.active)
	if err != nil || len(tg.Containers) < 2 {
		return
	}
	layout.MoveTo(m.root, m.active, (tg.Active-1+len(tg.Containers))%len(tg.Containers))
}

// saveActive writes the focused file to disk, marking the watcher
// first so the write does not bounce back as an external change.
func (m *Model) saveActive() tea.Cmd {
	fc, err := layout.ActiveContainer(m.root, m.active)
	if err != nil || fc.Doc == nil {
		return m.setStatus(events.StatusWarning, "no file to save")
	}
	if m.watcher != nil && fc.Doc.FileName() != "" {
		m.watcher.Mark(fc.Doc.FileName())
	}
	if err := fc.Doc.Save(); err != nil {
		m.logger.Error("save failed", "path", fc.Doc.FileName(), "error", err)
		return m.setStatus(events.StatusError, "save failed: "+err.Error())
	}
	m.logger.Info("saved file", "path", fc.Doc.FileName())
	return m.setStatus(events.StatusInfo, "saved "+tabTitle(*fc))
}

// reloadActive replaces the focused buffer with the on-disk contents,
// dropping any unsaved edits.
func (m *Model) reloadActive() tea.Cmd {
	fc, err := layout.ActiveContainer(m.root, m.active)
	if err != nil || fc.Doc == nil || fc.Doc.FileName() == "" {
		return m.setStatus(events.StatusWarning, "no file to reload")
	}
	buf, err := document.Open(fc.Doc.FileName())
	if err != nil {
		m.logger.Error("reload failed", "path", fc.Doc.FileName(), "error", err)
		return m.setStatus(events.StatusError, "reload failed: "+err.Error())
	}
	fc.Doc = buf
	m.logger.Info("reloaded file", "path", buf.FileName())
	return m.setStatus(events.StatusInfo, "reloaded "+tabTitle(*fc))
}

// tabTitle names a container for the tab line: the base file name, or
// a placeholder for an unnamed buffer.
func tabTitle(fc layout.FileContainer) string {
	if fc.Doc == nil || fc.Doc.FileName() == "" {
		return "[untitled]"
	}
	return filepath.Base(fc.Doc.FileName())
}
