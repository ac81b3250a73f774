// Package main is the entry point for gridview, a terminal viewer for
// large spreadsheets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/gridflow/internal/app"
	"github.com/dshills/gridflow/internal/render/backend"
	"github.com/dshills/gridflow/internal/source"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type cliOptions struct {
	app.Options
	logFile string
	dump    bool
	format  string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		opts.LogOutput = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, opts.Options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	if opts.dump {
		if err := dump(os.Stdout, application, opts.format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := application.SetBackend(term); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set backend: %v\n", err)
		return 1
	}

	go func() {
		<-ctx.Done()
		application.Shutdown()
	}()

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// dump writes the loaded sheet as YAML or JSON, which turns a generator
// script into a static sheet file.
func dump(w io.Writer, application *app.Application, format string) error {
	s := application.Sheet()
	def := source.Capture(s.Grid(), s.FixedRows(), s.FixedColumns())
	def.Name = application.Definition().Name
	switch format {
	case "", "yaml":
		return def.WriteYAML(w)
	case "json":
		return def.WriteJSON(w)
	default:
		return fmt.Errorf("unknown dump format %q", format)
	}
}

func parseFlags() cliOptions {
	var opts cliOptions
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&opts.Watch, "watch", true, "Reload the configuration file when it changes")
	flag.DurationVar(&opts.WatchDebounce, "watch-debounce", 0, "Quiet period before a configuration reload")
	flag.IntVar(&opts.Rows, "rows", app.DefaultRows, "Rows of the blank sheet opened without a file")
	flag.IntVar(&opts.Columns, "cols", app.DefaultColumns, "Columns of the blank sheet opened without a file")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flag.BoolVar(&opts.dump, "dump", false, "Print the loaded sheet and exit")
	flag.StringVar(&opts.format, "dump-format", "yaml", "Format for -dump (yaml, json)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gridview - terminal viewer for large sheets\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gridview [options] [sheet.yaml|sheet.json|sheet.lua]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  j/k, arrows       scroll one row\n")
		fmt.Fprintf(os.Stderr, "  space, PgUp/PgDn  scroll one page\n")
		fmt.Fprintf(os.Stderr, "  g/G, Home/End     first/last row\n")
		fmt.Fprintf(os.Stderr, "  h/l               scroll one column\n")
		fmt.Fprintf(os.Stderr, "  f/F               pin the first row/column in view\n")
		fmt.Fprintf(os.Stderr, "  q, Esc, Ctrl-C    quit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("gridview %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		switch opts.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	switch flag.NArg() {
	case 0:
	case 1:
		opts.SheetPath = flag.Arg(0)
	default:
		fmt.Fprintf(os.Stderr, "Error: expected at most one sheet file\n")
		os.Exit(1)
	}

	return opts
}
