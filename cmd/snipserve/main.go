/*
Package main implements the snippet suggestion engine and CLI [DBG] application.

SnipServe turns plain text files and OCR captures into ranked snippet
suggestions. It operates as a MessagePack IPC server for integration with
a popup front-end, or as a CLI application for testing and debugging.

The engine loads snippet files from a data directory, classifies them by
filename suffix, and serves prefix and substring matches against an
atomically swapped in-memory index. Text recognized from the most recent
screen capture is folded in as a transient word source.

# Usage

Start the server with default settings:

	snipserve

Use a custom data directory and enable debug mode:

	snipserve -data /path/to/snippets -d

Run in CLI mode for interactive testing:

	snipserve -c -limit 10

The data directory holds the snippet sources: plain word lists (*.txt),
one-per-line snippets (*_line.txt), multi-line templates separated by
"||" (*_separator.txt), key|replacement pairs (*_replace.txt), and
delimited tables (*.tsv, *.csv). Files are read in name order and every
parse failure is isolated to its file.

# Configuration

Runtime configuration is managed through a TOML file with sections for
hotkeys, OCR, paths and suggestion behavior:

	[hotkey]
	capture = "ctrl+shift+f12"
	suggest = "ctrl+alt+f12"

	[ocr]
	binary = "tesseract"
	language = "eng"
	optimize = true

	[suggest]
	max_results = 10

The config file is automatically created with defaults if it doesn't
exist. Malformed sections fall back to defaults section by section; an
invalid hotkey combination is fatal at startup.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Suggestion
requests are processed synchronously with microsecond timing information
included in responses.

Send a suggestion request:

	{"id": "req1", "q": "meet", "l": 10}

Receive ranked suggestions:

	{"id": "req1", "s": [{"d": "meeting", "v": "meeting", "k": "word", "r": 1}], "c": 1, "t": 145}

Control requests manage the index and the process:

	{"id": "ctl1", "action": "reload"}
	{"id": "ctl2", "action": "status"}
	{"id": "ctl3", "action": "exit"}

# Server Mode

The default mode starts a MessagePack IPC server that processes requests
from stdin and writes responses to stdout. This design enables a
front-end in any language to drive the engine through process
communication.

	srv := server.NewServer(application)
	err := srv.Start()

A filesystem watcher on the data directory triggers a debounced index
rebuild whenever snippet files change, so edits show up without a manual
reload.

# CLI Mode

CLI mode provides an interactive interface for testing and debugging the
match engine. It reads queries from stdin and displays ranked
suggestions with their source kind.

	inputHandler := cli.NewInputHandler(application, limit)
	err := inputHandler.Start()

This mode is primarily intended for development and testing new features
before deploying to server mode. It honors the same /reload and /exit
commands as the server.

# Command Line Flags

The following flags control application behavior:

	-config string
	    Path to the TOML config file (default: platform config dir)
	-data string
	    Directory containing snippet files (overrides config)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to return (default from config)
	-version
	    Show current version
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/internal/cli"
	"github.com/snipserve/snipserve/internal/utils"
	"github.com/snipserve/snipserve/internal/watch"
	"github.com/snipserve/snipserve/pkg/app"
	"github.com/snipserve/snipserve/pkg/config"
	"github.com/snipserve/snipserve/pkg/server"
)

const (
	Version = "0.3.0"
	AppName = "snipserve"
	gh      = "https://github.com/snipserve/snipserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to the TOML config file")
	dataDir := flag.String("data", "", "Directory containing snippet files (overrides config)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", 0, "Number of suggestions to return (default from config)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", activePath)

	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}

	// A bad hotkey combination or an unclamped limit never makes it past here.
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.OutputDir} {
		if err := utils.EnsureDir(dir); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	application := app.New(cfg)

	if err := application.Reload(); err != nil {
		log.Fatalf("Failed to load snippet files: %v", err)
	}
	if err := application.IngestLatestCapture(); err != nil {
		log.Warnf("Failed to ingest latest capture: %v", err)
	}

	watcher, err := watch.NewDirWatcher(cfg.Paths.DataDir)
	if err != nil {
		log.Warnf("Data directory watching disabled: %v", err)
	} else {
		watcher.OnChange(application.Reload)
		watcher.Start()
		defer watcher.Stop()
	}

	// fresh captures land in the output dir; fold them in without a /reload
	captureWatcher, err := watch.NewDirWatcher(cfg.Paths.OutputDir)
	if err != nil {
		log.Warnf("Output directory watching disabled: %v", err)
	} else {
		captureWatcher.OnChange(application.IngestLatestCapture)
		captureWatcher.Start()
		defer captureWatcher.Stop()
	}

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(application, *limit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	showStartupInfo(cfg.Paths.DataDir)

	srv := server.NewServer(application)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()

	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ SnipServe ] Snippets and OCR captures, ranked as you type!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataDir string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" SnipServe ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("data dir: ( %s )", dataDir)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
