// pattern: Imperative Shell

package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"loom/internal/layout"
	"loom/internal/logging"
)

// View renders the full frame: tab line, pane grid, optional log panel
// and the status bar. The confirm dialog and the file picker are modal
// and take the frame over entirely.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.confirmOpen {
		return m.renderConfirmDialog()
	}
	if m.pickerOpen {
		return m.renderPicker()
	}

	chrome := ComputeLayout(m.width, m.height, m.logPanelOpen)

	parts := []string{m.renderTabLine(chrome.TabLine.Width)}

	if _, ok := m.root.(layout.Empty); ok {
		parts = append(parts, m.renderGreeting(chrome.Editor))
	} else {
		parts = append(parts, m.renderGrid(chrome.GridSize()))
	}

	if m.logPanelOpen {
		separator := m.styles.DividerStyle().Render(strings.Repeat("─", chrome.Separator.Width))
		parts = append(parts, separator, m.renderLogPanel(chrome))
	}

	parts = append(parts, m.renderStatusBar(chrome.StatusBar.Width))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderTabLine draws the open files of the focused tab group, active
// one highlighted, with a rule filling the rest of the line.
func (m Model) renderTabLine(width int) string {
	var b strings.Builder
	used := 0

	if tg, err := layout.TabGroupAt(m.root, m.active); err == nil {
		for i, fc := range tg.Containers {
			title := tabTitle(fc)
			if fc.Doc != nil && fc.Doc.Modified() {
				title += "*"
			}
			style := m.styles.InactiveTabStyle()
			if i == tg.Active {
				style = m.styles.ActiveTabStyle()
			}
			cell := style.Render(" " + title + " ")
			w := lipgloss.Width(cell)
			if used+w > width {
				break
			}
			b.WriteString(cell)
			used += w
		}
	}

	b.WriteString(m.styles.TabGapFill(width - used))
	return b.String()
}

// renderGreeting fills the editor region when no files are open.
func (m Model) renderGreeting(region Region) string {
	title := m.styles.TitleStyle().Render("loom")
	subtitle := m.styles.SubtitleStyle().Render("no files open")
	help := m.styles.HelpStyle().Render("ctrl+o: open a file • ctrl+e/ctrl+u: split • q: quit")

	content := lipgloss.JoinVertical(lipgloss.Center, title, subtitle, help)
	return lipgloss.Place(region.Width, region.Height, lipgloss.Center, lipgloss.Center, content)
}

// paneView is one pane's visible text for the current frame, already
// highlighted and windowed to the pane's rectangle.
type paneView struct {
	lines     []string
	cursorRow int // row within the window, -1 when not shown
	cursorCol int // display column within that row
}

// renderGrid paints the pane tree row by row. For every terminal row
// it asks OnRow which spans cross it and fills the cells left to
// right: pane text, a horizontal rule on each divider's final row and
// a vertical rule in the column reserved between side-by-side panes.
func (m Model) renderGrid(grid layout.Size) string {
	views := make(map[string]paneView, len(m.spans))
	for _, s := range m.spans {
		if s.Divider {
			continue
		}
		views[pathKey(s.Path)] = m.renderPane(s)
	}

	rows := make([]string, grid.H)
	for y := 0; y < grid.H; y++ {
		rows[y] = m.renderGridRow(y, grid, views)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderGridRow(y int, grid layout.Size, views map[string]paneView) string {
	var b strings.Builder
	x := 0

	for _, s := range layout.OnRow(y, m.spans) {
		if s.Divider && y != s.Rows.End-1 {
			// A divider owns only its final row; above that the pane
			// sharing those cells paints instead.
			continue
		}
		if s.Cols.End <= x {
			// Splits nested along their parent's axis can map siblings
			// to overlapping columns; the leftmost span keeps the cells.
			continue
		}
		start := s.Cols.Start
		if start < x {
			start = x
		}
		if start > x {
			// The column every non-last side-by-side pane gives up.
			b.WriteString(m.styles.DividerStyle().Render(strings.Repeat("│", start-x)))
			x = start
		}
		width := s.Cols.End - x
		if s.Divider {
			b.WriteString(m.styles.DividerStyle().Render(strings.Repeat("─", width)))
		} else {
			b.WriteString(m.renderPaneCells(views[pathKey(s.Path)], y-s.Rows.Start, width))
		}
		x = s.Cols.End
	}

	if x < grid.W {
		b.WriteString(strings.Repeat(" ", grid.W-x))
	}
	return b.String()
}

// renderPane prepares the visible window of one pane's active file.
// An unaddressable pane or an empty tab group yields blank cells.
func (m Model) renderPane(s layout.Span) paneView {
	pv := paneView{cursorRow: -1}

	fc, err := layout.ActiveContainer(m.root, s.Path)
	if err != nil || fc.Doc == nil {
		return pv
	}

	height := s.Rows.Len()
	top := fc.Doc.Scroll(height)
	for i := 0; i < height; i++ {
		pv.lines = append(pv.lines, highlightLine(fc, fc.Doc.Line(top+i)))
	}

	if slices.Equal(s.Path, m.active) {
		row, col := fc.Doc.Cursor()
		if row >= top && row < top+height {
			runes := []rune(fc.Doc.Line(row))
			if col > len(runes) {
				col = len(runes)
			}
			pv.cursorRow = row - top
			pv.cursorCol = ansi.StringWidth(highlightLine(fc, string(runes[:col])))
		}
	}
	return pv
}

// renderPaneCells clips one pane line to the given cell width, padding
// with spaces and overlaying the cursor cell where it lands.
func (m Model) renderPaneCells(pv paneView, row, width int) string {
	var line string
	if row >= 0 && row < len(pv.lines) {
		line = pv.lines[row]
	}
	if row == pv.cursorRow {
		line = m.overlayCursor(line, pv.cursorCol, width)
	}

	w := ansi.StringWidth(line)
	if w > width {
		return ansi.Truncate(line, width, "")
	}
	return line + strings.Repeat(" ", width-w)
}

// overlayCursor inverts the cell at display column col. The column is
// measured against the highlighted line, so tab expansion and any
// colouring are already accounted for.
func (m Model) overlayCursor(line string, col, width int) string {
	if col >= width {
		return line
	}

	head := ansi.Truncate(line, col, "")
	rest := ansi.TruncateLeft(line, col, "")

	cell := " "
	tail := ""
	if rest != "" {
		if r := []rune(ansi.Strip(rest)); len(r) > 0 {
			cell = string(r[0])
		}
		tail = ansi.TruncateLeft(rest, 1, "")
	}

	return head + m.styles.CursorStyle().Render(cell) + tail
}

// renderPicker draws the file picker over the whole frame: a filter
// input above the matching files.
func (m Model) renderPicker() string {
	title := m.styles.TitleStyle().Render("Open File")
	input := m.pickerInput.View()
	files := m.pickerList.View()
	help := m.styles.HelpStyle().Render("Enter: open • Esc: cancel • ↑/↓: select")

	parts := []string{
		title,
		input,
		"",
		files,
		"",
		help,
	}

	view := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return lipgloss.NewStyle().Padding(1, 2).Render(view)
}

func (m Model) renderLogPanel(chrome Layout) string {
	title := fmt.Sprintf(" Logs (%s)", m.levelSummary())
	if m.listenURL != "" {
		title += "  " + m.listenURL
	}
	header := m.styles.LogHeaderStyle().Width(chrome.Logs.Width).Render(title)

	if m.logReady {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.logViewport.View(),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().
			Width(chrome.Logs.Width).
			Height(chrome.Logs.Height-1).
			Render(m.renderLogEntries()),
	)
}

// levelSummary names the levels currently shown, for the panel header.
func (m Model) levelSummary() string {
	var on []string
	for _, lv := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		if m.logLevels[lv] {
			on = append(on, lv)
		}
	}
	switch len(on) {
	case 4:
		return "all levels"
	case 0:
		return "no levels"
	}
	return strings.Join(on, " ")
}

// renderLogEntries joins the visible entries into the panel body.
func (m Model) renderLogEntries() string {
	entries := m.filteredLogEntries()
	if len(entries) == 0 {
		return m.styles.InfoStyle().Render("No log entries")
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, m.renderLogEntry(entry))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogEntry(entry logging.LogEntry) string {
	ts := m.styles.LogTimestampStyle().Render(entry.Timestamp.Format("15:04:05"))

	var level string
	switch entry.Level {
	case "DEBUG":
		level = m.styles.LogDebugStyle().Render("DEBUG")
	case "INFO":
		level = m.styles.LogInfoStyle().Render("INFO")
	case "WARN":
		level = m.styles.LogWarnStyle().Render("WARN")
	case "ERROR":
		level = m.styles.LogErrorStyle().Render("ERROR")
	default:
		level = m.styles.LogInfoStyle().Render(entry.Level)
	}

	scope := m.styles.LogScopeStyle().Render("[" + entry.Scope + "]")

	return fmt.Sprintf("%s %s %s %s", ts, level, scope, entry.Message)
}

// renderStatusBar draws the transient status message on the left and
// the active file's facts plus key help on the right.
func (m Model) renderStatusBar(width int) string {
	var statusText string
	if m.statusMessage != "" {
		statusText = m.styles.StatusStyle(m.statusLevel).Render(m.statusMessage)
	}

	info := m.renderFileInfo()

	statusWidth := lipgloss.Width(statusText)
	infoWidth := lipgloss.Width(info)
	spacerWidth := width - statusWidth - infoWidth - 2 // 2 for padding
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := strings.Repeat(" ", spacerWidth)

	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		statusText,
		spacer,
		info,
	)
}

func (m Model) renderFileInfo() string {
	fc, err := layout.ActiveContainer(m.root, m.active)
	if err != nil || fc.Doc == nil {
		return m.styles.HelpStyle().Render("ctrl+o: open • ctrl+l: logs")
	}

	name := tabTitle(*fc)
	if fc.Doc.Modified() {
		name += "*"
	}
	row, col := fc.Doc.Cursor()

	segs := []string{m.styles.InfoStyle().Render(name)}
	if fc.FileType != nil {
		segs = append(segs, m.styles.HelpStyle().Render(fc.FileType.Name))
	}
	segs = append(segs, m.styles.AccentStyle().Render(fmt.Sprintf("%d:%d", row+1, col+1)))
	segs = append(segs, m.styles.HelpStyle().Render("ctrl+o: open"))

	return strings.Join(segs, "  ")
}

func (m Model) renderConfirmDialog() string {
	title := m.styles.TitleStyle().Render("Confirm")
	message := m.styles.InfoStyle().Render(m.confirmMessage)
	help := m.styles.HelpStyle().Render("Enter/y: confirm • Esc/n: cancel")

	parts := []string{
		title,
		"",
		message,
		"",
		help,
	}

	view := lipgloss.JoinVertical(lipgloss.Left, parts...)
	boxed := m.styles.BoxStyle().Render(view)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			boxed,
		)
	}

	return boxed
}

// pathKey flattens a span path into a map key.
func pathKey(p []int) string {
	var b strings.Builder
	for i, v := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

func highlightLine(fc *layout.FileContainer, line string) string {
	if fc.Highlighter == nil {
		return line
	}
	return fc.Highlighter.Highlight(line)
}
