// pattern: Imperative Shell

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/exec"

	"github.com/coder/websocket"
	"github.com/creack/pty"
)

// ResizeMessage is sent from the inspector when the terminal viewport
// changes.
type ResizeMessage struct {
	Type string `json:"type"` // "resize"
	Cols uint16 `json:"cols"`
	Rows uint16 `json:"rows"`
}

// acceptLocal upgrades to websocket, restricted to same-host origins.
// The request context belongs to the hijacked connection afterwards;
// handlers must not reuse it.
func (s *Server) acceptLocal(w http.ResponseWriter, r *http.Request, readLimit int64) (*websocket.Conn, error) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return nil, err
	}
	conn.SetReadLimit(readLimit)
	return conn, nil
}

// handleTerminal upgrades to websocket and bridges a shell running in
// the instance's working directory. Binary frames carry terminal bytes
// in both directions; text frames carry resize control messages.
func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	conn, err := s.acceptLocal(w, r, 1<<20)
	if err != nil {
		return
	}
	defer func() { _ = conn.CloseNow() }()

	shell := loginShell()
	ptmx, cmd, err := startShell(shell, s.workDir)
	if err != nil {
		s.logger.Error("pty start failed", "shell", shell, "error", err)
		_ = conn.Close(websocket.StatusInternalError, "terminal failed to start")
		return
	}
	defer func() { _ = ptmx.Close() }()
	defer func() { _ = cmd.Wait() }()

	s.logger.Info("terminal connected", "shell", shell, "dir", s.workDir)

	ctx := context.Background()

	done := make(chan struct{})
	go pumpShellOutput(ctx, conn, ptmx, done)
	go pumpShellInput(ctx, conn, ptmx)

	// The bridge lives until the shell exits or the socket closes.
	<-done
	s.logger.Info("terminal disconnected", "shell", shell)
	_ = conn.Close(websocket.StatusNormalClosure, "terminal closed")
}

// loginShell returns $SHELL, falling back to /bin/sh.
func loginShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

// startShell launches the shell on a fresh PTY at a conventional 80x24.
// The client sends its real size right after connecting.
func startShell(shell, dir string) (*os.File, *exec.Cmd, error) {
	cmd := exec.Command(shell)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 24, Cols: 80})
	if err != nil {
		return nil, nil, err
	}
	return ptmx, cmd, nil
}

// pumpShellOutput copies PTY output to the socket as binary frames and
// closes done when the shell side ends.
func pumpShellOutput(ctx context.Context, conn *websocket.Conn, ptmx *os.File, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 4096)
	for {
		n, err := ptmx.Read(buf)
		if err != nil {
			return
		}
		if err := conn.Write(ctx, websocket.MessageBinary, buf[:n]); err != nil {
			return
		}
	}
}

// pumpShellInput feeds socket frames into the PTY. A text frame that
// parses as a resize message adjusts the PTY size instead; everything
// else passes through as keystrokes.
func pumpShellInput(ctx context.Context, conn *websocket.Conn, ptmx *os.File) {
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			// Socket gone; closing the PTY unblocks the output pump.
			_ = ptmx.Close()
			return
		}
		if msgType == websocket.MessageText {
			var msg ResizeMessage
			if json.Unmarshal(data, &msg) == nil && msg.Type == "resize" {
				_ = pty.Setsize(ptmx, &pty.Winsize{Rows: msg.Rows, Cols: msg.Cols})
				continue
			}
		}
		// A write error here means the shell already exited.
		_, _ = ptmx.Write(data)
	}
}
