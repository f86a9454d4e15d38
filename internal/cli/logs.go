// pattern: Imperative Shell
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"loom/internal/logging"
)

// LogsConfig holds the parameters for printing the instance log.
type LogsConfig struct {
	// Lines is the number of trailing entries to print. Zero or
	// negative prints the whole file.
	Lines int

	// Level is the minimum level to include (debug, info, warn, error).
	// Empty includes all levels.
	Level string

	// Scope filters entries to this scope prefix (e.g. "web.terminal").
	// Empty includes all scopes.
	Scope string

	// Follow keeps streaming entries appended after the initial dump.
	Follow bool

	// Writer is where output is written.
	Writer io.Writer
}

// matchesFilter reports whether an entry passes the level and scope filters.
func matchesFilter(entry logging.LogEntry, cfg LogsConfig) bool {
	if cfg.Level != "" && logging.LevelRank(entry.Level) < logging.LevelRank(cfg.Level) {
		return false
	}
	return entry.MatchesScope(cfg.Scope)
}

// ReadLastEntries parses the log file and returns the trailing entries
// that pass the filters. The editor writes one JSON object per line;
// malformed lines are skipped.
func ReadLastEntries(path string, cfg LogsConfig) ([]logging.LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []logging.LogEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		entry, err := logging.ParseLine(line)
		if err != nil {
			continue
		}
		if !matchesFilter(entry, cfg) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	if cfg.Lines > 0 && len(entries) > cfg.Lines {
		entries = entries[len(entries)-cfg.Lines:]
	}
	return entries, nil
}

// ShowLogs prints the trailing log entries and, when cfg.Follow is set,
// keeps streaming appended entries until ctx is cancelled. The log file
// is read directly, so the command works whether or not an editor
// instance is running.
func ShowLogs(ctx context.Context, path string, cfg LogsConfig) error {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	entries, err := ReadLastEntries(path, cfg)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		// A missing file only matters for the one-shot dump; -f waits
		// for the editor to create it
		if !cfg.Follow {
			return fmt.Errorf("no log file at %s (has the editor run yet?)", path)
		}
	}
	for _, entry := range entries {
		fmt.Fprintln(cfg.Writer, entry.String())
	}

	if !cfg.Follow {
		return nil
	}

	sink := logging.NewChannelSink(256)
	reader, err := logging.NewTailReader(path, sink)
	if err != nil {
		return err
	}
	defer reader.Close()

	go func() {
		_ = reader.Start(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case entry, ok := <-sink.Entries():
			if !ok {
				return nil
			}
			if !matchesFilter(entry, cfg) {
				continue
			}
			fmt.Fprintln(cfg.Writer, entry.String())
		}
	}
}

// runLogsCommand parses the logs flags and prints or follows the
// instance log file.
func runLogsCommand(configDir string, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	follow := fs.BoolP("follow", "f", false, "stream new entries as they are written")
	lines := fs.IntP("lines", "n", 50, "number of trailing entries to print")
	level := fs.String("level", "", "minimum level (debug, info, warn, error)")
	scope := fs.String("scope", "", "scope prefix filter (e.g. tui, web.terminal)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Usage: loom logs [-f] [-n lines] [--level debug|info|warn|error] [--scope prefix]\n")
		os.Exit(1)
	}

	logPath := LogFilePath(ResolveDataDir(configDir))

	// Ctrl-C ends a follow cleanly
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	err := ShowLogs(ctx, logPath, LogsConfig{
		Lines:  *lines,
		Level:  *level,
		Scope:  *scope,
		Follow: *follow,
		Writer: os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return nil
}
