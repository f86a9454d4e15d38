// pattern: Functional Core

package tui

import "loom/internal/layout"

// Region is a rectangle of terminal cells, 0-indexed from the top left.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Layout places the chrome bands around the pane grid. The tab line and
// status bar are always present; the separator and log panel appear
// between grid and status bar only while the log panel is open.
type Layout struct {
	TabLine   Region
	Editor    Region
	Separator Region
	Logs      Region
	StatusBar Region
}

// ComputeLayout stacks the bands top to bottom for a terminal of the
// given size. The log panel takes 40% of the rows left after chrome;
// the grid keeps the rest and never shrinks below 3 lines, even when
// that overflows a tiny terminal.
func ComputeLayout(width, height int, logPanelOpen bool) Layout {
	chrome := 2 // tab line + status bar
	if logPanelOpen {
		chrome++ // separator
	}

	rows := height - chrome
	if rows < 3 {
		rows = 3
	}

	var logsHeight int
	if logPanelOpen {
		logsHeight = rows * 4 / 10
	}
	gridHeight := rows - logsHeight

	l := Layout{
		TabLine: band(0, width),
		Editor:  Region{Y: 1, Width: width, Height: gridHeight},
	}
	bottom := 1 + gridHeight
	if logPanelOpen {
		l.Separator = band(bottom, width)
		l.Logs = Region{Y: bottom + 1, Width: width, Height: logsHeight}
		bottom += 1 + logsHeight
	}
	l.StatusBar = band(bottom, width)
	return l
}

// band is a full-width single-line region at the given row.
func band(y, width int) Region {
	return Region{Y: y, Width: width, Height: 1}
}

// GridSize converts the editor region into the size the pane grid is
// solved against. Spans are always computed from this, never from the
// raw terminal size.
func (l Layout) GridSize() layout.Size {
	return layout.Size{W: l.Editor.Width, H: l.Editor.Height}
}
