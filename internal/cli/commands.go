// pattern: Imperative Shell
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"loom/internal/instance"
)

// ResolveDataDir returns the directory for the lock, port and log
// files. If configDir is specified, uses that, so an overridden
// instance keeps all its state in one place; otherwise uses
// ~/.local/share/loom (XDG-aware).
func ResolveDataDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "loom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "share", "loom")
	}
	return filepath.Join(home, ".local", "share", "loom")
}

// LogFilePath returns the instance log file inside the data dir. The
// editor writes it; `loom logs` reads it.
func LogFilePath(dataDir string) string {
	return filepath.Join(dataDir, "loom.log")
}

// BuildApp creates and configures the CLI application with all commands.
func BuildApp(version string, configDir string) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:             "open",
		Summary:          "Open files in the running editor",
		Usage:            "Usage: loom open <file> [file...]",
		RequiresInstance: true,
		Run: func(args []string) error {
			return runOpenCommand(configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:             "status",
		Summary:          "Show the running editor's status",
		Usage:            "Usage: loom status [--json]",
		RequiresInstance: true,
		Run: func(args []string) error {
			return runStatusCommand(configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:             "layout",
		Summary:          "Dump the running editor's pane tree",
		Usage:            "Usage: loom layout [--json] [--spans]",
		RequiresInstance: true,
		Run: func(args []string) error {
			return runLayoutCommand(configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "logs",
		Summary: "Print or follow the instance log",
		Usage:   "Usage: loom logs [-f] [-n lines] [--level debug|info|warn|error] [--scope prefix]",
		Run: func(args []string) error {
			return runLogsCommand(configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:             "attach",
		Summary:          "Mirror the running editor's screen read-only",
		Usage:            "Usage: loom attach [--no-color]",
		RequiresInstance: true,
		Run: func(args []string) error {
			return runAttachCommand(configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove stale lock/port files from a crashed instance",
		Usage:   "Usage: loom cleanup",
		Run: func(args []string) error {
			return runCleanupCommand(configDir)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: loom version",
		Run: func(args []string) error {
			fmt.Println(version)
			return nil
		},
	})

	return app
}

// runOpenCommand forwards each file path to the running instance.
// Relative paths are resolved here, against the caller's working
// directory, not the editor's.
func runOpenCommand(configDir string, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: loom open <file> [file...]\n")
		os.Exit(1)
	}

	delegate := Delegate{ConfigDir: configDir}
	delegate.Run(func(client *instance.Client) error {
		for _, arg := range args {
			path, err := filepath.Abs(arg)
			if err != nil {
				path = arg
			}
			if err := client.Open(path); err != nil {
				return err
			}
			fmt.Printf("opened %s\n", path)
		}
		return nil
	})
	return nil
}

// runStatusCommand prints the instance status, human-readable by
// default.
func runStatusCommand(configDir string, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the raw JSON response")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Usage: loom status [--json]\n")
		os.Exit(1)
	}

	delegate := Delegate{ConfigDir: configDir}
	delegate.Run(func(client *instance.Client) error {
		data, err := client.Status()
		if err != nil {
			return err
		}
		if *asJSON {
			return PrintJSON(data)
		}
		out, err := FormatStatus(data)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	})
	return nil
}

// runLayoutCommand dumps the pane tree, as an indented tree by default.
func runLayoutCommand(configDir string, args []string) error {
	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the raw JSON response")
	withSpans := fs.Bool("spans", false, "also list the frame rectangles")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Usage: loom layout [--json] [--spans]\n")
		os.Exit(1)
	}

	delegate := Delegate{ConfigDir: configDir}
	delegate.Run(func(client *instance.Client) error {
		data, err := client.Layout()
		if err != nil {
			return err
		}
		if *asJSON {
			return PrintJSON(data)
		}
		out, err := FormatLayout(data, *withSpans)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	})
	return nil
}

// runCleanupCommand removes stale lock and port files from a crashed instance.
func runCleanupCommand(configDir string) error {
	dataDir := ResolveDataDir(configDir)

	// Try to acquire the lock to verify no instance is actually running
	fl, err := instance.Lock(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: a loom instance appears to be running. Stop it first.\n")
		os.Exit(1)
	}
	// We got the lock, so no instance is running. Clean up and release.
	instance.Cleanup(dataDir, fl)
	fmt.Println("Cleaned up stale lock and port files.")
	return nil
}
