// pattern: Functional Core

package layout

// Node describes one tree node as plain data, safe to hand to other
// goroutines: it shares nothing with the live tree.
type Node struct {
	Kind       string  // "side-by-side", "top-to-bottom", "tabs" or "empty"
	Proportion float64 // share of the parent along its axis; zero on the root
	Children   []Node
	Files      []FileInfo
	Active     int
}

// FileInfo names one open file inside a tabs node.
type FileInfo struct {
	Name     string
	Modified bool
}

// Describe flattens l into a Node tree.
func Describe(l Layout) Node {
	return describe(l, 0)
}

func describe(l Layout, prop float64) Node {
	switch n := l.(type) {
	case Empty:
		return Node{Kind: "empty", Proportion: prop}
	case *TabGroup:
		files := make([]FileInfo, 0, len(n.Containers))
		for _, fc := range n.Containers {
			var fi FileInfo
			if fc.Doc != nil {
				fi.Name = fc.Doc.FileName()
				fi.Modified = fc.Doc.Modified()
			}
			files = append(files, fi)
		}
		return Node{Kind: "tabs", Proportion: prop, Files: files, Active: n.Active}
	case *SideBySide:
		return describeSplit("side-by-side", n.Panes, prop)
	case *TopToBottom:
		return describeSplit("top-to-bottom", n.Panes, prop)
	}
	return Node{Kind: "empty", Proportion: prop}
}

func describeSplit(kind string, panes []Pane, prop float64) Node {
	children := make([]Node, 0, len(panes))
	for _, p := range panes {
		children = append(children, describe(p.Child, p.Proportion))
	}
	return Node{Kind: kind, Proportion: prop, Children: children}
}
