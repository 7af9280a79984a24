package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/robertarktes/batch-seat-reservations/internal/app"
	"github.com/robertarktes/batch-seat-reservations/internal/client"
	"github.com/robertarktes/batch-seat-reservations/internal/config"
	"github.com/robertarktes/batch-seat-reservations/internal/controller"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
	"github.com/robertarktes/batch-seat-reservations/internal/tui"
	"github.com/spf13/cobra"
)

const defaultTitle = "Cohort enrollment"

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		apiURL    string
		backend   string
		storeFile string
		capacity  int
		logFile   string
		title     string
	)

	rootCmd := &cobra.Command{
		Use:           "enroll",
		Short:         "Reserve a seat in the current batch",
		Long:          `Shows the seats left in the current batch and lets you reserve one from the terminal.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("api-url") {
				cfg.APIURL = apiURL
			}
			if flags.Changed("backend") || os.Getenv("STORE_BACKEND") == "" {
				cfg.StoreBackend = backend
			}
			if flags.Changed("store-file") {
				cfg.StoreFile = storeFile
			}
			if flags.Changed("capacity") {
				cfg.SeatCapacity = capacity
			}
			if flags.Changed("log-file") {
				cfg.LogFile = logFile
			}
			return run(cmd.Context(), cfg, title)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&apiURL, "api-url", "", "seat API base URL; empty runs the service in process")
	flags.StringVar(&backend, "backend", config.BackendFile, "store backend for in-process mode (memory, file, redis, crdb)")
	flags.StringVar(&storeFile, "store-file", "", "seat file for the file backend")
	flags.IntVar(&capacity, "capacity", 18, "seats in a fresh batch")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file")
	flags.StringVar(&title, "title", defaultTitle, "page title")
	return rootCmd
}

func run(parent context.Context, cfg *config.Config, title string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM)
	defer stop()

	logOut, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := observability.NewLoggerWithOptions(cfg.LogLevel, logOut)

	var (
		seats     controller.SeatAPI
		brochures controller.BrochureAPI
		courses   tui.Courses
	)
	if cfg.APIURL != "" {
		c := client.New(cfg.APIURL, nil)
		seats, brochures, courses = c, c, c
	} else {
		rt, err := app.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()
		seats, brochures, courses = rt.Seats, rt.Brochures, rt.Courses
	}

	bridge := tui.NewBridge()
	ctrl := controller.New(seats, brochures, bridge, controller.Options{
		PollInterval:  cfg.PollInterval,
		DismissDelay:  cfg.DismissDelay,
		BrochureDelay: cfg.BrochureDelay,
		LiveOffset:    cfg.LiveOffset,
		Logger:        logger,
	})

	p := tea.NewProgram(tui.New(ctx, ctrl, courses, title), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p)
	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	defer ctrl.Stop()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "run ui")
	}
	return nil
}

func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	return f, func() { _ = f.Close() }, nil
}
