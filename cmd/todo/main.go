package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/cli"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }
	cfg, args, err := config.Load(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		ui.Fail(os.Stderr, err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)

	opts := logging.FromConfig(cfg.LogLevel, cfg.LogFormat)
	logger := logging.New(os.Stderr, opts)
	tuiLogger := logging.New(io.Discard, opts)
	if cfg.LogFile != "" {
		f, err := logging.Open(cfg.LogFile)
		if err != nil {
			ui.Fail(os.Stderr, err.Error())
			return 1
		}
		defer f.Close()
		opts.ReportTimestamp = true
		logger = logging.New(f, opts)
		tuiLogger = logger
	}
	logger.Debug("config", "api", cfg.APIURL, "file", cfg.Path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := cli.Run(ctx, args, cli.Options{
		Group:     cfg.Group,
		Client:    api.New(cfg.APIURL, api.WithLogger(clientLogger(args, logger, tuiLogger))),
		Logger:    logger,
		TUILogger: tuiLogger,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}

// clientLogger keeps request logs off the screen while the TUI owns it.
func clientLogger(args []string, logger, tuiLogger *log.Logger) *log.Logger {
	if len(args) > 0 && args[0] == "ui" {
		return tuiLogger
	}
	return logger
}
