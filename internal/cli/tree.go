// pattern: Functional Core
package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// statusDoc mirrors the GET /api/status response.
type statusDoc struct {
	Version string `json:"version"`
	Files   int    `json:"files"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Active  []int  `json:"active"`
	WorkDir string `json:"work_dir"`
}

// nodeDoc mirrors one pane tree node of the GET /api/layout response.
type nodeDoc struct {
	Kind       string    `json:"kind"`
	Proportion float64   `json:"proportion"`
	Children   []nodeDoc `json:"children"`
	Files      []fileDoc `json:"files"`
	Active     int       `json:"active"`
}

type fileDoc struct {
	Name     string `json:"name"`
	Modified bool   `json:"modified"`
}

// spanDoc mirrors one frame rectangle of the GET /api/layout response.
type spanDoc struct {
	Path    []int  `json:"path"`
	Rows    [2]int `json:"rows"`
	Cols    [2]int `json:"cols"`
	Divider bool   `json:"divider"`
}

type layoutDoc struct {
	Tree   nodeDoc   `json:"tree"`
	Spans  []spanDoc `json:"spans"`
	Active []int     `json:"active"`
}

// FormatStatus renders the /api/status JSON as aligned key-value lines.
func FormatStatus(data []byte) (string, error) {
	var doc statusDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to decode status response: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "version:  %s\n", doc.Version)
	fmt.Fprintf(&sb, "files:    %d\n", doc.Files)
	fmt.Fprintf(&sb, "terminal: %dx%d\n", doc.Width, doc.Height)
	fmt.Fprintf(&sb, "active:   %s\n", pathLabel(doc.Active))
	if doc.WorkDir != "" {
		fmt.Fprintf(&sb, "workdir:  %s\n", doc.WorkDir)
	}
	return sb.String(), nil
}

// FormatLayout renders the /api/layout JSON as an indented pane tree,
// optionally followed by the span table.
func FormatLayout(data []byte, withSpans bool) (string, error) {
	var doc layoutDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to decode layout response: %w", err)
	}

	var sb strings.Builder
	writeTree(&sb, doc.Tree, "", true, nil, doc.Active, true)
	if withSpans {
		sb.WriteString("\n")
		writeSpans(&sb, doc.Spans)
	}
	return sb.String(), nil
}

// writeTree prints one node and recurses with box-drawing prefixes.
func writeTree(sb *strings.Builder, n nodeDoc, prefix string, isLast bool, path, active []int, isRoot bool) {
	if !isRoot {
		connector := "├── "
		if isLast {
			connector = "└── "
		}
		sb.WriteString(prefix + connector)
	}

	sb.WriteString(nodeLabel(n))
	if n.Kind == "tabs" && intsEqual(path, active) {
		sb.WriteString("  (focused)")
	}
	sb.WriteString("\n")

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}
	for i, c := range n.Children {
		childPath := append(append([]int{}, path...), i)
		writeTree(sb, c, childPrefix, i == len(n.Children)-1, childPath, active, false)
	}
}

// nodeLabel builds the single-line description of one node. Tabs nodes
// name their files, active one bracketed, modified ones starred, the
// same markers the editor's tab line uses.
func nodeLabel(n nodeDoc) string {
	label := n.Kind
	if n.Proportion > 0 {
		label = fmt.Sprintf("%s (%.2f)", n.Kind, n.Proportion)
	}

	if n.Kind == "tabs" && len(n.Files) > 0 {
		names := make([]string, len(n.Files))
		for i, f := range n.Files {
			name := f.Name
			if name == "" {
				name = "[untitled]"
			} else {
				name = filepath.Base(name)
			}
			if f.Modified {
				name += "*"
			}
			if i == n.Active {
				name = "[" + name + "]"
			}
			names[i] = name
		}
		label += ": " + strings.Join(names, ", ")
	}
	return label
}

// writeSpans prints the frame rectangles as an aligned table. Divider
// spans keep the ranges they were computed with, before the sub-layout
// shift, so their rows can overlap the following pane's.
func writeSpans(sb *strings.Builder, spans []spanDoc) {
	fmt.Fprintf(sb, "%-10s %-12s %s\n", "path", "rows", "cols")
	for _, s := range spans {
		label := pathLabel(s.Path)
		if s.Divider {
			label = "divider"
		}
		fmt.Fprintf(sb, "%-10s %-12s %s\n", label, rangeLabel(s.Rows), rangeLabel(s.Cols))
	}
}

func rangeLabel(r [2]int) string {
	return fmt.Sprintf("%d..%d", r[0], r[1])
}

// pathLabel formats a tree path as dot-separated child indexes.
// The empty path is the root.
func pathLabel(path []int) string {
	if len(path) == 0 {
		return "root"
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
