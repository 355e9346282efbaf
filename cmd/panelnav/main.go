package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/pflag"

	"panelnav/internal/config"
	"panelnav/internal/history"
	"panelnav/internal/nav"
	"panelnav/internal/progress"
	"panelnav/internal/trace"
	"panelnav/internal/ui"
)

// flags holds the parsed command line.
type flags struct {
	configPath string
	logFile    string
	verbose    bool
	check      bool
	fresh      bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("panelnav", pflag.ContinueOnError)
	fs.StringVarP(&f.configPath, "config", "c", "", "panel catalog (default $"+config.EnvPath+" or the user config dir)")
	fs.StringVar(&f.logFile, "log-file", "", "write logs to this file (the TUI owns the terminal)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every transition round")
	fs.BoolVar(&f.check, "check", false, "validate the catalog, print it and exit")
	fs.BoolVar(&f.fresh, "fresh", false, "start at the root panel instead of the saved history")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: panelnav [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Browse a catalog of panels. Every push and pop runs one transition\n")
		fmt.Fprintf(os.Stderr, "round across the registered controllers.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	err := fs.Parse(args)
	return f, err
}

// newLogger returns a discarding logger unless a log file was requested.
func newLogger(f flags, verbose bool) (logr.Logger, func(), error) {
	if f.logFile == "" {
		return logr.Discard(), func() {}, nil
	}
	file, err := tea.LogToFile(f.logFile, "panelnav")
	if err != nil {
		return logr.Logger{}, nil, fmt.Errorf("log file: %w", err)
	}
	if verbose {
		stdr.SetVerbosity(1)
	}
	logger := stdr.New(log.New(file, "", log.LstdFlags)).WithName("panelnav")
	return logger, func() { file.Close() }, nil
}

func run(ctx context.Context, f flags) error {
	path, err := config.ResolvePath(f.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if f.check {
		printCatalog(path, cfg)
		return nil
	}

	logger, closeLog, err := newLogger(f, f.verbose || cfg.Settings.Verbose)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("config loaded", "path", path, "panels", len(cfg.Panels), "root", cfg.Settings.Root)

	events := make(chan progress.Event, 64)
	opts := []nav.Option{
		nav.WithLogger(logger.WithName("nav")),
		nav.WithRoundHook(&progress.ChanEmitter{Ch: events}),
	}
	if cfg.Settings.SerialRounds {
		opts = append(opts, nav.WithSerialRounds())
	}
	if d := cfg.Settings.TransitionTimeout.Duration; d > 0 {
		opts = append(opts, nav.WithTransitionTimeout(d))
	}
	stack := nav.New(opts...)

	var controllers []nav.Controller
	exporter, err := trace.NewExporter(ctx, cfg.Settings.TraceService)
	if err != nil {
		logger.Error(err, "tracing disabled")
	}
	if exporter != nil {
		controllers = append(controllers, trace.NewController(exporter.TracerProvider()))
		defer func() {
			if err := exporter.Shutdown(context.Background()); err != nil {
				logger.Error(err, "trace shutdown")
			}
		}()
	}

	store, err := history.NewStore()
	if err != nil {
		logger.Error(err, "history disabled")
	} else {
		controllers = append(controllers, history.NewController(store))
	}

	model := ui.NewAppModel(ctx, stack, cfg, events, controllers...)
	if store != nil && !f.fresh {
		// The program is not attached yet, so the renderer applies this round directly.
		saved, err := store.Load()
		if err != nil {
			logger.Error(err, "ignoring saved history")
		}
		if n, err := model.Restore(ctx, saved); err != nil {
			logger.Error(err, "restore round failed", "panels", n)
		} else if n > 0 {
			logger.Info("history restored", "panels", n)
		}
	}
	p := tea.NewProgram(model.AsTeaModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	model.Renderer.Attach(p)

	_, runErr := p.Run()
	// Release rounds still waiting on the program before closing the stack.
	model.Renderer.Detach()
	closeErr := stack.Close()
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return closeErr
}

func printCatalog(path string, cfg *config.Config) {
	fmt.Printf("%s: %d panels, root %q\n", path, len(cfg.Panels), cfg.Settings.Root)
	for _, p := range cfg.Panels {
		links := "-"
		if len(p.Links) > 0 {
			links = strings.Join(p.Links, ", ")
		}
		fmt.Printf("  %-12s %-20s -> %s\n", p.ID, p.Title, links)
	}
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "panelnav: %v\n", err)
		os.Exit(2)
	}
	if err := run(context.Background(), f); err != nil {
		fmt.Fprintf(os.Stderr, "panelnav: %v\n", err)
		os.Exit(1)
	}
}
