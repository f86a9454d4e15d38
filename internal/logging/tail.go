// pattern: Imperative Shell

package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Polling safeguard for filesystems that swallow fsnotify events.
const pollInterval = 5 * time.Second

// TailReader follows a JSON log file and converts appended lines to
// LogEntry values. The logs command uses it to stream a running
// editor's log file.
type TailReader struct {
	filePath string
	sink     *ChannelSink
	watcher  *fsnotify.Watcher

	mu     sync.Mutex
	file   *os.File
	offset int64
	closed bool
}

// NewTailReader creates a reader for the given log file. Parsed
// entries land on sink.
func NewTailReader(filePath string, sink *ChannelSink) (*TailReader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &TailReader{
		filePath: filePath,
		sink:     sink,
		watcher:  watcher,
	}, nil
}

// Start follows the log file until ctx is cancelled.
func (r *TailReader) Start(ctx context.Context) error {
	// Watch the parent directory: the file may not exist yet, and
	// rotation replaces it.
	dir := filepath.Dir(r.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := r.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	// Content already in the file predates the tail; start at the end.
	r.mu.Lock()
	_ = r.openFile(true)
	r.mu.Unlock()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = r.Close()
			return ctx.Err()

		case ev, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(ev)

		case <-ticker.C:
			r.poll()

		case _, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			// Transient watcher errors do not stop the tail.
		}
	}
}

// handleEvent reacts to directory events that concern the log file.
// A freshly created file is read from the beginning; rotation moves
// the file aside, so its handle is dropped.
func (r *TailReader) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != filepath.Clean(r.filePath) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case ev.Has(fsnotify.Create):
		_ = r.openFile(false)
		r.readNewLines()
	case ev.Has(fsnotify.Write):
		r.readNewLines()
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		r.closeFile()
	}
}

// poll picks up appended content even when no event arrived.
func (r *TailReader) poll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		_ = r.openFile(false)
	}
	r.readNewLines()
}

// openFile opens the log file unless a handle is already held. fromEnd
// skips content that predates the tail.
func (r *TailReader) openFile(fromEnd bool) error {
	if r.file != nil {
		return nil
	}

	file, err := os.Open(r.filePath)
	if err != nil {
		return err
	}

	var offset int64
	if fromEnd {
		if offset, err = file.Seek(0, io.SeekEnd); err != nil {
			_ = file.Close()
			return err
		}
	}

	r.file, r.offset = file, offset
	return nil
}

func (r *TailReader) closeFile() {
	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
		r.offset = 0
	}
}

// readNewLines parses lines appended since the last read and sends them
// to the sink. Malformed lines are dropped. A partial line at the end
// stays unconsumed until its newline arrives.
func (r *TailReader) readNewLines() {
	if r.file == nil {
		return
	}
	if _, err := r.file.Seek(r.offset, io.SeekStart); err != nil {
		return
	}

	data, err := io.ReadAll(r.file)
	if err != nil {
		return
	}

	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return
		}
		line := data[:i]
		data = data[i+1:]
		r.offset += int64(i) + 1

		if entry, err := ParseLine(line); err == nil {
			_ = r.sink.Send(entry)
		}
	}
}

// Close stops the tail, dropping the watcher and any open handle.
func (r *TailReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.closeFile()
	return r.watcher.Close()
}
