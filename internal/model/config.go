package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend type identifiers.
const (
	BackendHTTP = "http"
	BackendSQS  = "sqs"
)

// envPrefix is prepended to every environment override,
// e.g. SQS_CONSOLE_SYNC_POLL_INTERVAL=5s.
const envPrefix = "SQS_CONSOLE"

// HTTPConfig configures the SQS admin HTTP API backend.
type HTTPConfig struct {
	// BaseURL is the root URL of the admin server; requests go to
	// BaseURL + "/sqs".
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`

	// Timeout bounds a single HTTP request.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`

	// MaxRetries is how often a 429/5xx answer to a queue listing is
	// retried. Mutations are never retried. Zero by default.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries" validate:"min=0,max=10"`
}

// AWSConfig configures the direct SQS backend.
type AWSConfig struct {
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint overrides the SQS endpoint (LocalStack, ElasticMQ).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" validate:"omitempty,url"`

	// Profile selects a named profile from the shared AWS config.
	Profile string `mapstructure:"profile" yaml:"profile"`
}

// BackendConfig selects and configures the backend the console talks to.
type BackendConfig struct {
	Type string     `mapstructure:"type" yaml:"type" validate:"oneof=http sqs"`
	HTTP HTTPConfig `mapstructure:"http" yaml:"http"`
	AWS  AWSConfig  `mapstructure:"aws" yaml:"aws"`
}

// SyncConfig holds the timing policy of the queue view synchronizer.
type SyncConfig struct {
	// PollInterval is the period of the message refresh.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" validate:"gt=0"`

	// SettleDelay is the wait before re-listing queues after a create
	// or delete, since listing is only eventually consistent.
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay" validate:"min=0"`

	// RequestTimeout bounds every backend call.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gt=0"`

	// FenceStaleResponses drops refresh responses that complete after a
	// newer refresh of the same kind was issued. Off by default, in which
	// case the last response to complete wins.
	FenceStaleResponses bool `mapstructure:"fence_stale_responses" yaml:"fence_stale_responses"`

	// MaxMessages caps how many messages a poll fetches.
	MaxMessages int `mapstructure:"max_messages" yaml:"max_messages" validate:"min=1,max=10"`
}

// NotifyConfig configures transient notifications.
type NotifyConfig struct {
	// Lifetime is how long a notification stays visible.
	Lifetime time.Duration `mapstructure:"lifetime" yaml:"lifetime" validate:"gt=0"`
}

// LogConfig configures the log file. The terminal is owned by the UI,
// so logs never go to stdout.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme" validate:"oneof=default"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Notify  NotifyConfig  `mapstructure:"notify" yaml:"notify"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// configDir returns ~/.config/sqs-console, falling back to the working
// directory when the home directory is unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "sqs-console")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/sqs-console/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			Type: BackendHTTP,
			HTTP: HTTPConfig{
				BaseURL: "http://localhost:3999",
				Timeout: 30 * time.Second,
			},
		},
		Sync: SyncConfig{
			PollInterval:   3 * time.Second,
			SettleDelay:    time.Second,
			RequestTimeout: 10 * time.Second,
			MaxMessages:    10,
		},
		Notify: NotifyConfig{
			Lifetime: 3 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(configDir(), "console.log"),
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *AppConfig {
	return defaultAppConfig()
}

// setDefaults registers every key with viper so that environment
// overrides resolve even when the key is absent from the file.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("backend.type", d.Backend.Type)
	v.SetDefault("backend.http.base_url", d.Backend.HTTP.BaseURL)
	v.SetDefault("backend.http.timeout", d.Backend.HTTP.Timeout)
	v.SetDefault("backend.http.max_retries", d.Backend.HTTP.MaxRetries)
	v.SetDefault("backend.aws.region", d.Backend.AWS.Region)
	v.SetDefault("backend.aws.endpoint", d.Backend.AWS.Endpoint)
	v.SetDefault("backend.aws.profile", d.Backend.AWS.Profile)
	v.SetDefault("sync.poll_interval", d.Sync.PollInterval)
	v.SetDefault("sync.settle_delay", d.Sync.SettleDelay)
	v.SetDefault("sync.request_timeout", d.Sync.RequestTimeout)
	v.SetDefault("sync.fence_stale_responses", d.Sync.FenceStaleResponses)
	v.SetDefault("sync.max_messages", d.Sync.MaxMessages)
	v.SetDefault("notify.lifetime", d.Notify.Lifetime)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("display.theme", d.Display.Theme)
}

// LoadConfig reads configuration from the given YAML file path using Viper,
// layering environment overrides on top. A missing file is not an error:
// defaults and environment still apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *AppConfig) Validate() error {
	if err := Validator().Struct(c); err != nil {
		return describeValidation(err)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", map[string]any{
		"type": cfg.Backend.Type,
		"http": map[string]any{
			"base_url":    cfg.Backend.HTTP.BaseURL,
			"timeout":     cfg.Backend.HTTP.Timeout.String(),
			"max_retries": cfg.Backend.HTTP.MaxRetries,
		},
		"aws": map[string]any{
			"region":   cfg.Backend.AWS.Region,
			"endpoint": cfg.Backend.AWS.Endpoint,
			"profile":  cfg.Backend.AWS.Profile,
		},
	})
	v.Set("sync", map[string]any{
		"poll_interval":         cfg.Sync.PollInterval.String(),
		"settle_delay":          cfg.Sync.SettleDelay.String(),
		"request_timeout":       cfg.Sync.RequestTimeout.String(),
		"fence_stale_responses": cfg.Sync.FenceStaleResponses,
		"max_messages":          cfg.Sync.MaxMessages,
	})
	v.Set("notify", map[string]any{"lifetime": cfg.Notify.Lifetime.String()})
	v.Set("log", map[string]any{"level": cfg.Log.Level, "file": cfg.Log.File})
	v.Set("display", map[string]any{"theme": cfg.Display.Theme})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
