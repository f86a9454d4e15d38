// pattern: Functional Core

package layout

import "sort"

// Range is a half-open interval of rows or columns.
type Range struct {
	Start int
	End   int
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v int) bool {
	return v >= r.Start && v < r.End
}

// Len returns the number of cells covered.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Span assigns one tab group its rectangle for the current frame, in
// absolute terminal cells. Divider spans mark the separator line
// between stacked panes; they carry no path. Spans are recomputed
// whenever the tree shape or the terminal size changes and are never
// stored on the tree.
type Span struct {
	Path    []int
	Rows    Range
	Cols    Range
	Divider bool
}

// Spans computes the rectangle of every tab group reachable from l,
// plus one divider entry above each boundary between stacked panes.
// path addresses l itself (nil at the root); size is the extent
// available to l.
//
// Proportions are taken against the whole extent, not the remainder
// left by earlier siblings: each child is recursed into with its
// cumulative boundary as the extent, then its sub-spans are shifted to
// start at the running offset. Rounding loss is therefore at most one
// cell and always lands on the last sibling, which is stretched to the
// exact far edge. Every non-last sibling gives up its final cell as
// the gap between panes. A zero-sized area degenerates to empty
// ranges, never an error.
func Spans(l Layout, path []int, size Size) []Span {
	switch n := l.(type) {
	case Empty:
		return nil
	case *TabGroup:
		return []Span{{Path: path, Rows: Range{0, size.H}, Cols: Range{0, size.W}}}
	case *SideBySide:
		var result []Span
		at := 0
		for c, p := range n.Panes {
			sub := childPath(path, c)
			this := Size{W: at + int(float64(size.W)*p.Proportion), H: size.H}
			for _, s := range Spans(p.Child, sub, this) {
				end := s.Cols.End
				if c == len(n.Panes)-1 {
					if end < size.W {
						end = size.W
					}
				} else if end > 0 {
					end--
				}
				s.Cols = Range{Start: at, End: end}
				result = append(result, s)
			}
			at = this.W
		}
		return result
	case *TopToBottom:
		var result []Span
		at := 0
		for c, p := range n.Panes {
			sub := childPath(path, c)
			this := Size{W: size.W, H: at + int(float64(size.H)*p.Proportion)}
			for _, s := range Spans(p.Child, sub, this) {
				end := s.Rows.End
				if c == len(n.Panes)-1 {
					if end < size.H {
						end = size.H
					}
				} else {
					if end > 0 {
						end--
					}
					// The divider keeps the child's unshifted rows, so
					// its final row is the boundary row the child gave
					// up; that is where the renderer draws the rule.
					result = append(result, Span{Rows: s.Rows, Cols: s.Cols, Divider: true})
				}
				s.Rows = Range{Start: at, End: end}
				result = append(result, s)
			}
			at = this.H
		}
		return result
	}
	return nil
}

// OnRow returns the spans visible on terminal row y, ordered left to
// right by column start. The sort is stable: spans sharing a start
// keep the order Spans emitted them in, dividers ahead of the pane
// they border.
func OnRow(y int, spans []Span) []Span {
	var out []Span
	for _, s := range spans {
		if s.Rows.Contains(y) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Cols.Start < out[j].Cols.Start
	})
	return out
}

func childPath(path []int, c int) []int {
	sub := make([]int, len(path)+1)
	copy(sub, path)
	sub[len(path)] = c
	return sub
}
