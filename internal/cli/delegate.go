// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"loom/internal/instance"
)

// Exit codes for delegated commands. Scripts can tell "editor not
// running" apart from a command that genuinely failed.
const (
	exitFailure    = 1
	exitNoInstance = 2
)

// Delegate connects a CLI invocation to the running editor: it locates
// the instance through its port file, builds an HTTP client for it and
// maps failures to exit codes.
type Delegate struct {
	// ConfigDir overrides the data dir used for port file discovery.
	ConfigDir string

	// ExitFunc replaces os.Exit in tests.
	ExitFunc func(int)

	// Stderr replaces os.Stderr in tests.
	Stderr io.Writer

	// ClientTimeout bounds each HTTP request. Zero means the client
	// default; stream-following commands set it higher.
	ClientTimeout time.Duration
}

func (d *Delegate) setDefaults() {
	if d.ExitFunc == nil {
		d.ExitFunc = os.Exit
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
}

// fail reports msg on Stderr and exits with code.
func (d *Delegate) fail(code int, msg string) {
	fmt.Fprintf(d.Stderr, "error: %s\n", msg)
	d.ExitFunc(code)
}

// Client discovers the running instance and returns a client for it.
// On failure it reports the error and exits: 2 when no editor is
// running, 1 for anything else. Callers must tolerate a nil return,
// since a test ExitFunc may not terminate the process.
func (d *Delegate) Client() *instance.Client {
	d.setDefaults()

	baseURL, err := instance.Discover(ResolveDataDir(d.ConfigDir))
	if err != nil {
		code := exitFailure
		if strings.Contains(err.Error(), "no running loom instance found") {
			code = exitNoInstance
		}
		d.fail(code, err.Error())
		return nil
	}
	if d.ClientTimeout > 0 {
		return instance.NewClientWithTimeout(baseURL, d.ClientTimeout)
	}
	return instance.NewClient(baseURL)
}

// Run discovers the running instance and invokes fn with a client for
// it. Errors from fn exit 1, reduced to the server's own message so
// `loom open` prints what the editor said rather than HTTP framing.
func (d *Delegate) Run(fn func(*instance.Client) error) {
	client := d.Client()
	if client == nil {
		return
	}
	if err := fn(client); err != nil {
		d.fail(exitFailure, serverMessage(err))
	}
}

// serverMessage strips the "loom returned status N" prefix the client
// wraps around API error bodies.
func serverMessage(err error) string {
	msg := err.Error()
	if !strings.Contains(msg, "loom returned status") {
		return msg
	}
	if _, rest, ok := strings.Cut(msg, ": "); ok {
		return rest
	}
	return msg
}

// PrintJSON writes an API response body to stdout. A terminal gets the
// document re-indented; a pipe gets the raw bytes, so `loom status
// --json | jq` sees exactly what the server sent.
func PrintJSON(data []byte) error {
	fi, err := os.Stdout.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		_, werr := os.Stdout.Write(data)
		return werr
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		_, werr := os.Stdout.Write(data)
		return werr
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
