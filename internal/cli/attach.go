// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/coder/websocket"
	flag "github.com/spf13/pflag"
)

// AttachConfig holds the parameters for mirroring the editor screen.
type AttachConfig struct {
	// NoColor strips styling escape codes from mirrored frames.
	NoColor bool

	// Writer is where frames are written.
	Writer io.Writer

	// IsTerm selects the repaint-in-place protocol (alt screen, cursor
	// homing). When false, frames are written verbatim separated by a
	// form feed, which suits piping to a file or another program.
	IsTerm bool
}

// MirrorFrames dials the instance's frame stream and writes every
// received frame until ctx is cancelled or the stream closes. Each
// websocket text message carries one complete rendered screen.
func MirrorFrames(ctx context.Context, baseURL string, cfg AttachConfig) error {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dialCancel()

	// Dial converts the http base URL to ws itself
	conn, _, err := websocket.Dial(dialCtx, baseURL+"/ws/frames", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to frame stream: %w", err)
	}
	defer conn.CloseNow()

	// Styled frames for a large terminal run well past the default limit
	conn.SetReadLimit(1 << 22)

	if cfg.IsTerm {
		// Alt screen with hidden cursor, restored on exit
		fmt.Fprint(cfg.Writer, "\x1b[?1049h\x1b[?25l")
		defer fmt.Fprint(cfg.Writer, "\x1b[?25h\x1b[?1049l")
	}

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("frame stream closed: %w", err)
		}
		if msgType != websocket.MessageText {
			continue
		}

		frame := string(data)
		if cfg.NoColor {
			frame = ansi.Strip(frame)
		}

		if cfg.IsTerm {
			repaint(cfg.Writer, frame)
		} else {
			fmt.Fprint(cfg.Writer, frame+"\f")
		}
	}
}

// repaint redraws a frame in place: home the cursor, erase to the end
// of each line as it is rewritten, then clear whatever the previous
// frame left below. Erasing per line avoids leftovers when a line gets
// shorter between frames.
func repaint(w io.Writer, frame string) {
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	lines := strings.Split(frame, "\n")
	for i, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\x1b[K")
		if i < len(lines)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\x1b[0J")
	fmt.Fprint(w, sb.String())
}

// runAttachCommand discovers the running instance and mirrors its
// screen until interrupted.
func runAttachCommand(configDir string, args []string) error {
	fs := flag.NewFlagSet("attach", flag.ContinueOnError)
	noColor := fs.Bool("no-color", false, "strip styling from mirrored frames")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Usage: loom attach [--no-color]\n")
		os.Exit(1)
	}

	delegate := Delegate{ConfigDir: configDir}
	client := delegate.Client()
	if client == nil {
		return nil // ExitFunc already called by Client()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fi, _ := os.Stdout.Stat()
	isTerm := (fi.Mode() & os.ModeCharDevice) != 0

	err := MirrorFrames(ctx, client.BaseURL(), AttachConfig{
		NoColor: *noColor,
		Writer:  os.Stdout,
		IsTerm:  isTerm,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return nil
}
