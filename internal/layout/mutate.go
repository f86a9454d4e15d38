// pattern: Functional Core

package layout

import "fmt"

// Replace swaps the subtree at path for with, returning the (possibly
// new) root. An empty path replaces the root itself. Any path or span
// computed before this call is invalid afterwards.
func Replace(root Layout, path []int, with Layout) (Layout, error) {
	if len(path) == 0 {
		return with, nil
	}
	panes, err := panesAt(root, path[:len(path)-1])
	if err != nil {
		return nil, err
	}
	i := path[len(path)-1]
	if i < 0 || i >= len(panes) {
		return nil, fmt.Errorf("%w: child %d of %d", ErrBadPath, i, len(panes))
	}
	panes[i].Child = with
	return root, nil
}

// panesAt walks to the split node at path and returns its pane slice.
func panesAt(l Layout, path []int) ([]Pane, error) {
	n, err := nodeAt(l, path)
	if err != nil {
		return nil, err
	}
	switch n := n.(type) {
	case *SideBySide:
		return n.Panes, nil
	case *TopToBottom:
		return n.Panes, nil
	}
	return nil, fmt.Errorf("%w: no split at this depth", ErrBadPath)
}

// nodeAt walks to the node at path, accepting any kind at the terminus.
func nodeAt(l Layout, path []int) (Layout, error) {
	if len(path) == 0 {
		return l, nil
	}
	var panes []Pane
	switch n := l.(type) {
	case *SideBySide:
		panes = n.Panes
	case *TopToBottom:
		panes = n.Panes
	default:
		return nil, fmt.Errorf("%w: path descends below a leaf", ErrBadPath)
	}
	i := path[0]
	if i < 0 || i >= len(panes) {
		return nil, fmt.Errorf("%w: child %d of %d", ErrBadPath, i, len(panes))
	}
	return nodeAt(panes[i].Child, path[1:])
}

// InsertContainer appends fc to the tab group at path and makes it the
// active tab.
func InsertContainer(root Layout, path []int, fc FileContainer) error {
	tg, err := TabGroupAt(root, path)
	if err != nil {
		return err
	}
	tg.Containers = append(tg.Containers, fc)
	tg.Active = len(tg.Containers) - 1
	return nil
}

// RemovePane detaches the pane at path from its parent split and
// returns the new root. The freed share of the axis goes to the
// previous sibling, or to the next one when the first pane goes. A
// split left holding a single pane dissolves, the surviving child
// taking its slot and keeping that slot's proportion. Removing at the
// empty path clears the whole tree to Empty.
func RemovePane(root Layout, path []int) (Layout, error) {
	if len(path) == 0 {
		return Empty{}, nil
	}
	parent, err := nodeAt(root, path[:len(path)-1])
	if err != nil {
		return nil, err
	}
	var panes []Pane
	switch n := parent.(type) {
	case *SideBySide:
		panes = n.Panes
	case *TopToBottom:
		panes = n.Panes
	default:
		return nil, fmt.Errorf("%w: no split at this depth", ErrBadPath)
	}
	i := path[len(path)-1]
	if i < 0 || i >= len(panes) {
		return nil, fmt.Errorf("%w: child %d of %d", ErrBadPath, i, len(panes))
	}
	freed := panes[i].Proportion
	panes = append(panes[:i], panes[i+1:]...)
	if len(panes) > 0 {
		j := i - 1
		if j < 0 {
			j = 0
		}
		panes[j].Proportion += freed
	}
	switch n := parent.(type) {
	case *SideBySide:
		n.Panes = panes
	case *TopToBottom:
		n.Panes = panes
	}
	switch len(panes) {
	case 0:
		return Replace(root, path[:len(path)-1], Empty{})
	case 1:
		return Replace(root, path[:len(path)-1], panes[0].Child)
	}
	return root, nil
}

// RemoveContainer deletes tab i from the group at path. The active
// index follows the tab the user was on: it shifts down when an
// earlier tab goes and clamps to the new last tab when the active or a
// trailing one goes. An emptied group stays in the tree; collapsing it
// is the caller's decision.
func RemoveContainer(root Layout, path []int, i int) error {
	tg, err := TabGroupAt(root, path)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(tg.Containers) {
		return fmt.Errorf("no tab %d to remove, group holds %d", i, len(tg.Containers))
	}
	tg.Containers = append(tg.Containers[:i], tg.Containers[i+1:]...)
	switch {
	case len(tg.Containers) == 0:
		tg.Active = 0
	case i < tg.Active:
		tg.Active--
	case tg.Active >= len(tg.Containers):
		tg.Active = len(tg.Containers) - 1
	}
	return nil
}
