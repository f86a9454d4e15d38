// pattern: Functional Core

// Package document holds the services a file container delegates to:
// the text buffer behind each open file, the per-file highlighter, file
// kind detection and absolute path resolution. The pane tree only ever
// sees these through the interfaces below.
package document

import (
	"path/filepath"
	"strings"
)

// DefaultTabWidth is the tab stop used when no configuration overrides it.
const DefaultTabWidth = 4

// Document is one open text buffer. The pane tree stores documents but
// never inspects their contents; the editor shell drives editing,
// scrolling and persistence through this interface.
type Document interface {
	// FileName returns the name the document was opened under, or ""
	// for an unnamed buffer.
	FileName() string
	// Modified reports whether the buffer has unsaved changes.
	Modified() bool
	// LineCount returns the number of lines. Never below 1.
	LineCount() int
	// Line returns line i without its trailing newline, or "" when i
	// is out of range.
	Line(i int) string
	// Cursor returns the cursor position as (row, column) in runes.
	Cursor() (row, col int)
	// Move shifts the cursor by the given deltas, clamping to the text.
	Move(drow, dcol int)
	// Scroll returns the top visible line for a viewport of the given
	// height, keeping the cursor in view between calls.
	Scroll(height int) int
	// Insert places s at the cursor and advances past it.
	Insert(s string)
	// Backspace removes the rune before the cursor, joining lines at
	// column zero.
	Backspace()
	// Newline splits the current line at the cursor.
	Newline()
	// Save writes the buffer to its file name.
	Save() error
}

// Highlighter decorates one raw line for display. Implementations own
// whatever per-file state they need.
type Highlighter interface {
	Highlight(line string) string
}

// FileType tags a document with its detected kind. Opaque to the pane
// tree; the shell uses it for the status bar.
type FileType struct {
	Name       string
	Extensions []string
}

// Resolver turns a possibly-relative file name into its canonical
// absolute form. A returned error means the name cannot be resolved,
// not that anything is broken.
type Resolver func(name string) (string, error)

var fileTypes = []FileType{
	{Name: "Go", Extensions: []string{".go"}},
	{Name: "Rust", Extensions: []string{".rs"}},
	{Name: "Python", Extensions: []string{".py"}},
	{Name: "JavaScript", Extensions: []string{".js", ".mjs"}},
	{Name: "TypeScript", Extensions: []string{".ts", ".tsx"}},
	{Name: "C", Extensions: []string{".c", ".h"}},
	{Name: "C++", Extensions: []string{".cpp", ".cc", ".hpp"}},
	{Name: "Shell", Extensions: []string{".sh", ".bash"}},
	{Name: "Markdown", Extensions: []string{".md", ".markdown"}},
	{Name: "YAML", Extensions: []string{".yaml", ".yml"}},
	{Name: "TOML", Extensions: []string{".toml"}},
	{Name: "JSON", Extensions: []string{".json"}},
	{Name: "HTML", Extensions: []string{".html", ".htm"}},
	{Name: "CSS", Extensions: []string{".css"}},
	{Name: "Plain Text", Extensions: []string{".txt"}},
}

// Detect returns the file type matching the extension of name, or nil
// when the kind is unknown.
func Detect(name string) *FileType {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil
	}
	for i := range fileTypes {
		for _, e := range fileTypes[i].Extensions {
			if ext == e {
				return &fileTypes[i]
			}
		}
	}
	return nil
}
