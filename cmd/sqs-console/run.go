package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nhle/sqs-console/internal/app"
	"github.com/nhle/sqs-console/internal/credential"
	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/notify"
	"github.com/nhle/sqs-console/internal/store"
	appsync "github.com/nhle/sqs-console/internal/sync"
)

type runOptions struct {
	configPath string
	backend    string
	baseURL    string
	endpoint   string
	region     string
	logLevel   string
}

func (o runOptions) path() string {
	if o.configPath != "" {
		return o.configPath
	}
	return model.DefaultConfigPath()
}

// loadConfig reads .env, the config file and the environment, then
// applies command-line overrides.
func loadConfig(opts runOptions) (*model.AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := model.LoadConfig(opts.path())
	if err != nil {
		return nil, err
	}

	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *model.AppConfig, opts runOptions) {
	if opts.backend != "" {
		cfg.Backend.Type = opts.backend
	}
	if opts.baseURL != "" {
		cfg.Backend.HTTP.BaseURL = opts.baseURL
	}
	if opts.endpoint != "" {
		cfg.Backend.AWS.Endpoint = opts.endpoint
	}
	if opts.region != "" {
		cfg.Backend.AWS.Region = opts.region
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
}

// newLogger opens the log file through bubbletea, since the terminal
// belongs to the UI.
func newLogger(cfg model.LogConfig) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := tea.LogToFile(cfg.File, "sqs-console")
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, f, nil
}

func runConsole(ctx context.Context, cmd *cobra.Command, opts runOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, logFile, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	logger.Info("starting", "version", version, "backend", cfg.Backend.Type, "config", opts.path())

	var creds app.Credentials
	if ks, err := credential.Open(); err != nil {
		logger.Warn("keyring unavailable, continuing without stored credentials", "error", err)
	} else {
		creds = ks
	}

	caller, err := app.NewBackend(ctx, cfg, creds, logger)
	if err != nil {
		return err
	}

	hist, err := store.NewSQLiteStore(store.MemoryDSN)
	if err != nil {
		return fmt.Errorf("opening notification history: %w", err)
	}
	defer hist.Close()

	notices := notify.NewManager(
		notify.WithLifetime(cfg.Notify.Lifetime),
		notify.WithHistory(hist),
		notify.WithLogger(logger),
	)

	syncer, err := appsync.New(caller, notices,
		appsync.WithPollInterval(cfg.Sync.PollInterval),
		appsync.WithSettleDelay(cfg.Sync.SettleDelay),
		appsync.WithRequestTimeout(cfg.Sync.RequestTimeout),
		appsync.WithFencing(cfg.Sync.FenceStaleResponses),
		appsync.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		app.New(syncer, notices, hist, version),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running console: %w", err)
	}

	logger.Info("stopped", "session", hist.SessionID())
	return nil
}
