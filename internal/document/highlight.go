// pattern: Functional Core

package document

import "strings"

// PlainHighlighter renders lines verbatim apart from expanding tabs to
// a fixed stop width. Real syntax colouring plugs in behind the
// Highlighter interface; the shell only ever depends on that.
type PlainHighlighter struct {
	tabWidth int
}

// NewPlainHighlighter returns a pass-through highlighter with the
// given tab stop width.
func NewPlainHighlighter(tabWidth int) *PlainHighlighter {
	if tabWidth < 1 {
		tabWidth = DefaultTabWidth
	}
	return &PlainHighlighter{tabWidth: tabWidth}
}

// TabWidth returns the configured tab stop width.
func (h *PlainHighlighter) TabWidth() int {
	return h.tabWidth
}

// Highlight expands tabs and returns the line otherwise untouched.
func (h *PlainHighlighter) Highlight(line string) string {
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	var out strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := h.tabWidth - col%h.tabWidth
			out.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		out.WriteRune(r)
		col++
	}
	return out.String()
}
