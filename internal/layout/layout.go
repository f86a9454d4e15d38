// pattern: Functional Core

// Package layout implements the pane tree that partitions the terminal
// grid among open files: nested proportional splits, tab groups of
// files sharing a region, and path-addressed access for the renderer
// and the command layer. Everything here is pure; the shell feeds in
// sizes and applies the results.
package layout

import "loom/internal/document"

// Size is an extent in terminal cells.
type Size struct {
	W int
	H int
}

// Layout is one node of the pane tree. Exactly four kinds exist
// (SideBySide, TopToBottom, TabGroup and Empty), and every operation in
// this package is an exhaustive switch over them. The interface is
// sealed; no fifth kind can be added from outside.
type Layout interface {
	node()
}

// Pane is one child slot of a split: a subtree plus its share of the
// parent's extent along the split axis. Shares are nominally in (0, 1]
// and need not sum to one; the last sibling absorbs rounding drift.
type Pane struct {
	Child      Layout
	Proportion float64
}

// SideBySide splits its area into columns, one per pane, left to right.
type SideBySide struct {
	Panes []Pane
}

// TopToBottom splits its area into rows, one per pane, top to bottom.
type TopToBottom struct {
	Panes []Pane
}

// TabGroup is a leaf: an ordered set of open files sharing one screen
// region, with one active (visible) file at a time. Active is only
// meaningful while Containers is non-empty and must not be
// dereferenced otherwise.
type TabGroup struct {
	Containers []FileContainer
	Active     int
}

// Empty is the placeholder for a pane with no files open, e.g. a
// freshly created split before a file is attached.
type Empty struct{}

func (*SideBySide) node()  {}
func (*TopToBottom) node() {}
func (*TabGroup) node()    {}
func (Empty) node()        {}

// NewTabGroup returns a leaf holding the given containers with the
// first one active.
func NewTabGroup(containers ...FileContainer) *TabGroup {
	return &TabGroup{Containers: containers}
}

// FileContainer wraps one open document together with its highlighter
// state and detected file kind. It is a pure data holder: the document
// and highlighter services do all the work, and each container is
// exclusively owned by the tab group holding it.
type FileContainer struct {
	Doc         document.Document
	Highlighter document.Highlighter
	FileType    *document.FileType
}

// NewFileContainer returns a container around an empty unnamed buffer,
// a pass-through highlighter at the default tab width, and no detected
// file kind.
func NewFileContainer() FileContainer {
	return FileContainer{
		Doc:         document.NewBuffer(),
		Highlighter: document.NewPlainHighlighter(document.DefaultTabWidth),
	}
}

// Count returns the total number of open file containers in the tree.
func Count(l Layout) int {
	switch n := l.(type) {
	case Empty:
		return 0
	case *TabGroup:
		return len(n.Containers)
	case *SideBySide:
		total := 0
		for _, p := range n.Panes {
			total += Count(p.Child)
		}
		return total
	case *TopToBottom:
		total := 0
		for _, p := range n.Panes {
			total += Count(p.Child)
		}
		return total
	}
	return 0
}
