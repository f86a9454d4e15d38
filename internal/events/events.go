// package events contains message types shared between web, watch and tui packages.
package events

import "loom/internal/layout"

// OpenFileMsg asks the editor to open a file in the active tab group.
// Sent by the web server's /api/open handler.
type OpenFileMsg struct {
	Path string
}

// FileChangedMsg reports that an open file was modified on disk.
// Sent by the watch package, coalesced per path.
type FileChangedMsg struct {
	Path string
}

// LayoutChangedMsg is sent after any pane tree mutation so remote
// viewers can refresh.
type LayoutChangedMsg struct{}

// StatusMsg carries a status bar message with its severity.
type StatusMsg struct {
	Level StatusLevel
	Text  string
}

// StatusLevel is the severity of a status bar message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusWarning
	StatusError
)

// WebListenURLMsg is sent when the instance server starts listening.
type WebListenURLMsg struct{ URL string }

// Snapshot is the remote picture of the editor. The TUI pushes a
// fresh one after every visible change; the web server keeps the
// latest and serves it to the status and layout endpoints, the SSE
// broker and the frame mirror. Nothing in it aliases live editor
// state.
type Snapshot struct {
	Tree      layout.Node
	Spans     []layout.Span
	Active    []int
	FileCount int
	Width     int
	Height    int
	Frame     string
}
