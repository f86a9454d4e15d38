// pattern: Functional Core

package discovery

// Entry represents a file found during workspace scanning, as offered
// by the open-file picker.
type Entry struct {
	Name string // Base name (used for matching)
	Path string // Absolute path (used to open)
	Rel  string // Path relative to its scan root (used for display)
}
