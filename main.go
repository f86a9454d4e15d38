// pattern: Imperative Shell
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"loom/internal/cli"
	"loom/internal/config"
	"loom/internal/events"
	"loom/internal/instance"
	"loom/internal/logging"
	"loom/internal/tui"
	"loom/internal/watch"
	"loom/internal/web"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (a subcommand or
	// file), so that --help after a subcommand is handled by the
	// subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/loom)")
	remoteHelp := flag.Bool("remote-help", false, "print the remote control guide")

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, *configDir)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, *configDir)

	if *remoteHelp {
		app.PrintRemoteHelp(os.Stdout)
		return
	}

	if app.Execute(flag.Args()) {
		runTUI(*configDir, flag.Args())
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// loadConfig reads the config from the override dir or the default
// location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

// runTUI launches the interactive editor with the given files open.
func runTUI(configDir string, paths []string) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}

	// First run creates the data dir; the single-instance lock lives
	// inside it.
	dataDir := cli.ResolveDataDir(configDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fatalf("Error: %v", err)
	}
	fl, err := instance.Lock(dataDir)
	if err != nil {
		fatalf("Error: %v", err)
	}
	defer instance.Cleanup(dataDir, fl)

	logManager, err := logging.NewManager(logging.Config{
		FilePath:       cli.LogFilePath(dataDir),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          cfg.LogLevel,
	})
	if err != nil {
		fatalf("Failed to initialize logging: %v", err)
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")
	appLogger.Info("editor starting", "version", version, "files", len(paths))

	// p and webServer close over each other's slot: the watcher and the
	// model's report callback only fire once p.Run is underway, well
	// after both are assigned.
	var p *tea.Program
	var webServer *web.Server

	watcher, err := watch.New(func(path string) {
		p.Send(events.FileChangedMsg{Path: path})
	}, logManager.For("watch"))
	if err != nil {
		appLogger.Error("failed to create file watcher", "error", err)
		fatalf("Error: %v", err)
	}

	model := tui.NewModelWithFiles(&cfg, logManager, watcher, func(snap events.Snapshot) {
		if webServer != nil {
			webServer.Publish(snap)
		}
	}, paths)

	p = tea.NewProgram(model, tea.WithAltScreen())

	webServer = web.New(
		web.Config{Bind: cfg.Web.Bind, Port: cfg.Web.Port, Version: version, WorkDir: workDir()},
		func(msg any) { p.Send(msg) },
		logManager,
	)
	shutdown, err := serveInstance(webServer, dataDir, appLogger)
	if err != nil {
		fatalf("Error: %v", err)
	}
	defer shutdown()

	go func() {
		p.Send(events.WebListenURLMsg{URL: "http://" + webServer.Addr()})
	}()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := watcher.Start(watchCtx); err != nil && watchCtx.Err() == nil {
			appLogger.Error("file watcher stopped", "error", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		appLogger.Error("editor exited with error", "error", err)
		fatalf("Error running program: %v", err)
	}

	appLogger.Info("editor stopped")
}

// serveInstance binds the instance server (ephemeral port unless one is
// configured), records the address for CLI discovery and serves in the
// background. The returned func shuts the server down.
func serveInstance(srv *web.Server, dataDir string, logger *logging.ScopedLogger) (func(), error) {
	ln, err := srv.Listen()
	if err != nil {
		logger.Error("instance server listen error", "error", err)
		return nil, err
	}

	if err := instance.WritePort(dataDir, srv.Addr()); err != nil {
		logger.Error("failed to write port file", "error", err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("instance server error", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("instance server shutdown error", "error", err)
		}
	}, nil
}

func workDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
