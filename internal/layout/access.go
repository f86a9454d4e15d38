// pattern: Functional Core

package layout

import (
	"errors"
	"fmt"

	"loom/internal/document"
)

// Addressing failures. Paths come from Spans or Find against the live
// tree; a path computed before a shape-changing mutation may no longer
// address anything and must be recomputed, never guessed around.
var (
	ErrBadPath      = errors.New("path does not address a tab group")
	ErrNoActiveFile = errors.New("tab group has no file at its active index")
)

// TabGroupAt resolves path to a tab group, consuming one path element
// per split level. The returned pointer is the single mutable view
// over the group's container list and active index. Path elements left
// over once a tab group is reached are ignored. Resolution fails
// closed: an out-of-range child index, a path that ends on a split, or
// an empty pane all yield an error.
func TabGroupAt(l Layout, path []int) (*TabGroup, error) {
	switch n := l.(type) {
	case *TabGroup:
		return n, nil
	case *SideBySide:
		return groupIn(n.Panes, path)
	case *TopToBottom:
		return groupIn(n.Panes, path)
	case Empty:
		return nil, fmt.Errorf("%w: reached an empty pane", ErrBadPath)
	}
	return nil, ErrBadPath
}

func groupIn(panes []Pane, path []int) (*TabGroup, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: path ends on a split", ErrBadPath)
	}
	i := path[0]
	if i < 0 || i >= len(panes) {
		return nil, fmt.Errorf("%w: child %d of %d", ErrBadPath, i, len(panes))
	}
	return TabGroupAt(panes[i].Child, path[1:])
}

// ActiveContainer returns the file container currently shown by the
// tab group at path.
func ActiveContainer(l Layout, path []int) (*FileContainer, error) {
	tg, err := TabGroupAt(l, path)
	if err != nil {
		return nil, err
	}
	if tg.Active < 0 || tg.Active >= len(tg.Containers) {
		return nil, ErrNoActiveFile
	}
	return &tg.Containers[tg.Active], nil
}

// AllContainers returns every container in the tab group at path, in
// tab order, or nil when the path does not address a tab group.
func AllContainers(l Layout, path []int) []FileContainer {
	tg, err := TabGroupAt(l, path)
	if err != nil {
		return nil
	}
	return tg.Containers
}

// MoveTo switches the tab group at path to tab i. The index is stored
// as given, with no bounds check against the container count; callers
// derive it from the live group. Reports whether a tab group was
// addressed; an empty pane or a dead path is a no-op.
func MoveTo(l Layout, path []int, i int) bool {
	tg, err := TabGroupAt(l, path)
	if err != nil {
		return false
	}
	tg.Active = i
	return true
}

// Find locates the first container whose document resolves to abs,
// searching depth first in child order from the node at path start.
// resolve turns a container's file name into canonical absolute form;
// an unnamed buffer or a name that fails to resolve is a non-match,
// never an error. Returns the owning tab group's path and the tab
// index within it.
func Find(l Layout, start []int, abs string, resolve document.Resolver) ([]int, int, bool) {
	switch n := l.(type) {
	case Empty:
		return nil, 0, false
	case *TabGroup:
		for i, fc := range n.Containers {
			if fc.Doc == nil {
				continue
			}
			name := fc.Doc.FileName()
			if name == "" {
				continue
			}
			resolved, err := resolve(name)
			if err != nil {
				continue
			}
			if resolved == abs {
				return start, i, true
			}
		}
		return nil, 0, false
	case *SideBySide:
		return findIn(n.Panes, start, abs, resolve)
	case *TopToBottom:
		return findIn(n.Panes, start, abs, resolve)
	}
	return nil, 0, false
}

func findIn(panes []Pane, start []int, abs string, resolve document.Resolver) ([]int, int, bool) {
	for c, p := range panes {
		if path, i, ok := Find(p.Child, childPath(start, c), abs, resolve); ok {
			return path, i, true
		}
	}
	return nil, 0, false
}
