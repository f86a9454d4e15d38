// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
)

// PrintRemoteHelp prints a guide for driving a running editor from
// another terminal or a script. It combines static prose with a dynamic
// command reference pulled from registered commands.
func (a *App) PrintRemoteHelp(w io.Writer) {
	// Header
	fmt.Fprintln(w, "REMOTE CONTROL GUIDE")
	fmt.Fprintln(w, "====================")
	fmt.Fprintln(w)

	// Overview
	fmt.Fprintln(w, "OVERVIEW")
	fmt.Fprintln(w, "--------")
	fmt.Fprintln(w, "Loom is a split-pane terminal editor. A single instance runs at a time")
	fmt.Fprintln(w, "(enforced by file lock) and listens on a loopback HTTP port written to a")
	fmt.Fprintln(w, "port file. Every CLI command below discovers that instance and talks to it")
	fmt.Fprintln(w, "over HTTP, so a second terminal, a script or an editor plugin can drive")
	fmt.Fprintln(w, "the running editor without touching its screen.")
	fmt.Fprintln(w)

	// Workflow
	fmt.Fprintln(w, "WORKFLOW")
	fmt.Fprintln(w, "--------")
	fmt.Fprintln(w, "  1. Start the editor in one terminal:")
	fmt.Fprintln(w, "     loom notes.md")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  2. From another terminal, push files into it:")
	fmt.Fprintln(w, "     loom open main.go util.go")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  3. Inspect what it is showing:")
	fmt.Fprintln(w, "     loom status")
	fmt.Fprintln(w, "     loom layout --spans")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  4. Watch it work:")
	fmt.Fprintln(w, "     loom attach            (live read-only screen mirror)")
	fmt.Fprintln(w, "     loom logs -f           (structured log stream)")
	fmt.Fprintln(w)

	// Dynamic command reference
	a.printCommandReference(w)

	// HTTP API
	fmt.Fprintln(w, "HTTP API")
	fmt.Fprintln(w, "--------")
	fmt.Fprintln(w, "The commands are thin wrappers over the instance API. Scripts can use it")
	fmt.Fprintln(w, "directly; the base URL is in the port file under the data directory:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  GET  /api/health   liveness probe, also used for discovery")
	fmt.Fprintln(w, "  GET  /api/status   version, file count, terminal size, focused path")
	fmt.Fprintln(w, "  GET  /api/layout   pane tree plus the frame rectangles")
	fmt.Fprintln(w, "  POST /api/open     {\"path\": \"/abs/path\"} opens a file in the editor")
	fmt.Fprintln(w, "  GET  /api/events   SSE change notifications (coalesced)")
	fmt.Fprintln(w, "  GET  /ws/frames    websocket, one text message per rendered screen")
	fmt.Fprintln(w, "  GET  /ws/terminal  websocket shell bridge for the browser inspector")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Polling /api/layout is fine for scripts; interactive tools should hold an")
	fmt.Fprintln(w, "/api/events stream and refetch on each event instead.")
	fmt.Fprintln(w)

	// Machine-readable output
	fmt.Fprintln(w, "MACHINE-READABLE OUTPUT")
	fmt.Fprintln(w, "-----------------------")
	fmt.Fprintln(w, "  - 'status --json' and 'layout --json' print the raw API response.")
	fmt.Fprintln(w, "  - JSON piped to a non-terminal is compact; on a terminal it is indented.")
	fmt.Fprintln(w, "  - 'attach --no-color' strips styling; piped attach output separates")
	fmt.Fprintln(w, "    frames with a form feed (\\f) instead of repainting in place.")
	fmt.Fprintln(w, "  - 'logs' reads the log file directly and works without a running editor.")
	fmt.Fprintln(w)

	// Exit codes
	fmt.Fprintln(w, "EXIT CODES")
	fmt.Fprintln(w, "----------")
	fmt.Fprintln(w, "  0  Success")
	fmt.Fprintln(w, "  1  Error (invalid arguments, command failed, etc.)")
	fmt.Fprintln(w, "  2  No running loom instance found")
}

// printCommandReference prints the dynamic command reference section
// by iterating registered commands.
func (a *App) printCommandReference(w io.Writer) {
	fmt.Fprintln(w, "COMMAND REFERENCE")
	fmt.Fprintln(w, "-----------------")
	fmt.Fprintln(w)

	for _, cmd := range a.commands {
		summary := cmd.Summary
		if cmd.RequiresInstance {
			summary += " (requires running instance)"
		}
		fmt.Fprintf(w, "  %-12s %s\n", cmd.Name, summary)
		fmt.Fprintf(w, "               %s\n", cmd.Usage)
	}
	fmt.Fprintln(w)
}
