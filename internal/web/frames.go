// pattern: Imperative Shell

package web

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
)

// handleFrames upgrades to websocket and streams the rendered frame:
// the current one on connect, then a fresh one per published snapshot.
// The stream is read-only; client reads serve only to notice the peer
// going away.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	conn, err := s.acceptLocal(w, r, 1<<16)
	if err != nil {
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	signals, unsubscribe := s.broker.Subscribe()
	defer unsubscribe()

	s.logger.Info("frame mirror connected")

	if snap, ok := s.latest(); ok {
		if err := conn.Write(ctx, websocket.MessageText, []byte(snap.Frame)); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("frame mirror disconnected")
			_ = conn.Close(websocket.StatusNormalClosure, "mirror closed")
			return
		case <-signals:
			snap, ok := s.latest()
			if !ok {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte(snap.Frame)); err != nil {
				s.logger.Info("frame mirror disconnected")
				return
			}
		}
	}
}
