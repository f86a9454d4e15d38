// pattern: Imperative Shell

package document

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Buffer is a plain line-based Document. It is deliberately small:
// enough editing for the pane shell to be usable, nothing more.
type Buffer struct {
	name     string
	lines    []string
	modified bool
	row      int
	col      int
	top      int
}

// NewBuffer returns an empty unnamed buffer with a single blank line.
func NewBuffer() *Buffer {
	return &Buffer{lines: []string{""}}
}

// Open loads name into a new buffer. A file that does not exist yet
// yields an empty buffer carrying the name, created on first save.
func Open(name string) (*Buffer, error) {
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		b := NewBuffer()
		b.name = name
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return &Buffer{name: name, lines: lines}, nil
}

// SetFileName renames the buffer, e.g. for save-as.
func (b *Buffer) SetFileName(name string) {
	b.name = name
}

func (b *Buffer) FileName() string {
	return b.name
}

func (b *Buffer) Modified() bool {
	return b.modified
}

func (b *Buffer) LineCount() int {
	return len(b.lines)
}

func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

func (b *Buffer) Cursor() (int, int) {
	return b.row, b.col
}

// Move shifts the cursor, clamping the row to the text and the column
// to the target line's length.
func (b *Buffer) Move(drow, dcol int) {
	b.row += drow
	if b.row < 0 {
		b.row = 0
	}
	if b.row >= len(b.lines) {
		b.row = len(b.lines) - 1
	}
	b.col += dcol
	if b.col < 0 {
		b.col = 0
	}
	if n := len([]rune(b.lines[b.row])); b.col > n {
		b.col = n
	}
}

// Scroll keeps the cursor inside a viewport of the given height and
// returns the top visible line. The previous top is sticky: it only
// moves when the cursor would leave the window.
func (b *Buffer) Scroll(height int) int {
	if height <= 0 {
		return b.top
	}
	if b.row < b.top {
		b.top = b.row
	}
	if b.row >= b.top+height {
		b.top = b.row - height + 1
	}
	if b.top < 0 {
		b.top = 0
	}
	return b.top
}

// Insert places s at the cursor and moves the cursor past it.
func (b *Buffer) Insert(s string) {
	line := []rune(b.lines[b.row])
	if b.col > len(line) {
		b.col = len(line)
	}
	out := make([]rune, 0, len(line)+len(s))
	out = append(out, line[:b.col]...)
	out = append(out, []rune(s)...)
	out = append(out, line[b.col:]...)
	b.lines[b.row] = string(out)
	b.col += len([]rune(s))
	b.modified = true
}

// Backspace removes the rune before the cursor. At column zero it
// joins the current line onto the previous one.
func (b *Buffer) Backspace() {
	if b.col > 0 {
		line := []rune(b.lines[b.row])
		b.lines[b.row] = string(append(line[:b.col-1:b.col-1], line[b.col:]...))
		b.col--
		b.modified = true
		return
	}
	if b.row == 0 {
		return
	}
	prev := b.lines[b.row-1]
	b.col = len([]rune(prev))
	b.lines[b.row-1] = prev + b.lines[b.row]
	b.lines = append(b.lines[:b.row], b.lines[b.row+1:]...)
	b.row--
	b.modified = true
}

// Newline splits the current line at the cursor and moves the cursor
// to the start of the new line.
func (b *Buffer) Newline() {
	line := []rune(b.lines[b.row])
	if b.col > len(line) {
		b.col = len(line)
	}
	rest := string(line[b.col:])
	b.lines[b.row] = string(line[:b.col])
	b.lines = append(b.lines[:b.row+1], append([]string{rest}, b.lines[b.row+1:]...)...)
	b.row++
	b.col = 0
	b.modified = true
}

// Save writes the buffer to its file name with a trailing newline.
func (b *Buffer) Save() error {
	if b.name == "" {
		return errors.New("buffer has no file name")
	}
	data := strings.Join(b.lines, "\n") + "\n"
	if err := os.WriteFile(b.name, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to save %s: %w", b.name, err)
	}
	b.modified = false
	return nil
}
