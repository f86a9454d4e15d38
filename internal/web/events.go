// pattern: Imperative Shell

package web

import (
	"fmt"
	"io"
	"net/http"
	"sync"
)

// eventBroker fans out "snapshot changed" signals to SSE and frame
// mirror subscribers.
type eventBroker struct {
	mu   sync.Mutex
	next int
	subs map[int]chan struct{}
}

func newEventBroker() *eventBroker {
	return &eventBroker{subs: make(map[int]chan struct{})}
}

// Subscribe registers a listener and returns its signal channel plus a
// cancel func. The channel holds at most one pending signal, so a burst
// of updates coalesces into a single re-fetch.
func (b *eventBroker) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Notify signals every subscriber without blocking on slow ones.
func (b *eventBroker) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// handleEvents is the SSE endpoint. A "connected" event confirms the
// stream is up; each published snapshot then produces a "layout" event
// and the client re-fetches /api/layout.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	signals, cancel := s.broker.Subscribe()
	defer cancel()

	writeEvent(w, flusher, "connected", "ok")

	for {
		select {
		case <-r.Context().Done():
			return
		case <-signals:
			writeEvent(w, flusher, "layout", "update")
		}
	}
}

func writeEvent(w io.Writer, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
