// pattern: Imperative Shell

package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxEntries caps a scan so a huge workspace cannot stall the picker.
const maxEntries = 2000

// Scanner discovers files in configured scan roots.
type Scanner struct {
	maxDepth int
}

// NewScanner creates a scanner that walks at most maxDepth directory
// levels below each root.
func NewScanner(maxDepth int) *Scanner {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &Scanner{maxDepth: maxDepth}
}

// ScanAll scans all provided roots for openable files. Hidden and
// dependency directories are skipped, symlinked duplicates appear once,
// and results come back sorted by relative path.
func (s *Scanner) ScanAll(roots []string) []Entry {
	var entries []Entry
	seen := make(map[string]bool)

	for _, root := range roots {
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			resolved = root
		}
		entries = s.walk(resolved, resolved, 0, seen, entries)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Rel < entries[j].Rel
	})

	return entries
}

func (s *Scanner) walk(root, dir string, depth int, seen map[string]bool, entries []Entry) []Entry {
	if depth >= s.maxDepth || len(entries) >= maxEntries {
		return entries
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return entries // Skip inaccessible directories
	}

	for _, entry := range dirEntries {
		if len(entries) >= maxEntries {
			break
		}

		name := entry.Name()
		path := filepath.Join(dir, name)

		if entry.IsDir() {
			if skipDir(name) {
				continue
			}
			entries = s.walk(root, path, depth+1, seen, entries)
			continue
		}

		if !entry.Type().IsRegular() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}

		// Resolve symlinks so the same file never shows up twice
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			continue
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = name
		}

		entries = append(entries, Entry{
			Name: name,
			Path: resolved,
			Rel:  rel,
		})
	}

	return entries
}

// skipDir reports whether a directory should be excluded from scanning.
func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "vendor", "node_modules", "target", "dist", "__pycache__":
		return true
	}
	return false
}
