// pattern: Imperative Shell

package logging

import (
	"fmt"
	"sync"
)

// ChannelSink is a zapcore.WriteSyncer that parses each JSON line back
// into a LogEntry and buffers it on a channel for the log panel. The
// buffer never blocks a logger: when full, the oldest entry goes.
type ChannelSink struct {
	buf    chan LogEntry
	mu     sync.Mutex
	closed bool
}

// NewChannelSink creates a sink buffering up to bufferSize entries.
func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{buf: make(chan LogEntry, bufferSize)}
}

// Write parses one encoded log line and queues it. Unparseable input
// is swallowed; a logging pipeline must never stall the editor.
func (s *ChannelSink) Write(p []byte) (int, error) {
	entry, err := ParseLine(p)
	if err != nil {
		return len(p), nil
	}
	if err := s.Send(entry); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Send queues an already-parsed entry, evicting the oldest buffered
// one when the channel is full. The tail reader feeds entries in here
// directly.
func (s *ChannelSink) Send(entry LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("send to closed channel sink")
	}

	for range 2 {
		select {
		case s.buf <- entry:
			return nil
		default:
			select {
			case <-s.buf:
			default:
			}
		}
	}
	return nil
}

// Sync is a no-op; the channel holds nothing to flush.
func (s *ChannelSink) Sync() error {
	return nil
}

// Close closes the entry channel. Idempotent.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.buf)
	}
	return nil
}

// Entries is the consumer side of the buffer.
func (s *ChannelSink) Entries() <-chan LogEntry {
	return s.buf
}
