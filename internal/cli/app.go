// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"os"
)

// Command is one CLI subcommand with its metadata and handler.
type Command struct {
	Name             string
	Summary          string
	Usage            string
	RequiresInstance bool
	Run              func(args []string) error
}

// App dispatches CLI arguments. Anything that is not a known command
// name falls through to the editor: `loom notes.md` opens notes.md in
// the TUI, exactly like a bare `loom` with no arguments.
type App struct {
	commands []*Command
	version  string
}

// NewApp builds an empty command registry for the given version.
func NewApp(version string) *App {
	return &App{version: version}
}

// AddCommand registers a command. Help output lists commands in
// registration order.
func (a *App) AddCommand(cmd *Command) {
	a.commands = append(a.commands, cmd)
}

func (a *App) lookup(name string) *Command {
	for _, cmd := range a.commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

// Execute dispatches the CLI arguments. It returns true when the TUI
// should launch, in which case every argument is a file path for the
// editor to open.
func (a *App) Execute(args []string) bool {
	if len(args) == 0 {
		return true
	}

	cmd := a.lookup(args[0])
	if cmd == nil {
		return true
	}

	if wantsHelp(args[1:]) {
		fmt.Fprintf(os.Stderr, "%s\n", cmd.Usage)
		return false
	}

	// Commands report their own errors and exit codes.
	_ = cmd.Run(args[1:])
	return false
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// PrintHelp writes the top-level usage, one line per command.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "loom %s\n\n", a.version)
	fmt.Fprintf(w, "Usage: loom [options] [files...]\n")
	fmt.Fprintf(w, "       loom [options] <command>\n\n")
	fmt.Fprintf(w, "Without a command, loom opens the given files in the editor.\n\n")
	fmt.Fprintf(w, "Commands:\n")

	for _, cmd := range a.commands {
		summary := cmd.Summary
		if cmd.RequiresInstance {
			summary += " (requires running instance)"
		}
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, summary)
	}

	fmt.Fprintf(w, "\nUse \"loom <command> --help\" for command details.\n\n")
	fmt.Fprintf(w, "Options:\n")
}
