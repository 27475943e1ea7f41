package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/casino/internal/config"
	"github.com/lox/casino/internal/store"
)

// Globals are the flags shared by every command
type Globals struct {
	Config   string `short:"c" default:"casino.hcl" env:"CASINO_CONFIG" help:"HCL config file (missing means defaults)"`
	LogLevel string `env:"CASINO_LOG_LEVEL" help:"Override the configured log level"`
	Seed     *int64 `env:"CASINO_SEED" help:"Deterministic RNG seed"`
	NoColor  bool   `env:"NO_COLOR" help:"Disable colours"`
}

// env is what a command needs once flags and config are resolved
type env struct {
	cfg    *config.Config
	logger *log.Logger
	close  func()
}

// load reads and validates the config and sets up logging. Commands that
// own the terminal pass a default log file.
func (g *Globals) load(defaultLogFile string) (*env, error) {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaultLogFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", g.Config, err)
	}

	logger, closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, close: closeLog}, nil
}

// openStore opens the configured bankroll backend
func (e *env) openStore() (store.Store, error) {
	st, err := store.Open(e.cfg.Store.Backend, e.cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", e.cfg.Store.Backend, err)
	}
	e.logger.Debug("Opened store", "backend", e.cfg.Store.Backend, "path", e.cfg.Store.Path)
	return st, nil
}

func setupLogger(settings config.LogSettings) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(settings.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	if settings.File != "" {
		f, err := os.OpenFile(settings.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	return logger, closeFn, nil
}

// signalContext is cancelled on interrupt or SIGTERM
func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Debug("Shutting down")
	}()
	return ctx, stop
}
