package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nhle/sqs-console/internal/backend"
	"github.com/nhle/sqs-console/internal/backend/httpadmin"
	"github.com/nhle/sqs-console/internal/backend/sqsdirect"
	"github.com/nhle/sqs-console/internal/credential"
	"github.com/nhle/sqs-console/internal/model"
)

// Credentials looks up secrets by key, returning "" when a key is not
// stored.
type Credentials interface {
	Lookup(key string) (string, error)
}

// NewBackend builds the backend caller selected by cfg.Backend.Type.
// Secrets are read from creds, which may be nil.
func NewBackend(ctx context.Context, cfg *model.AppConfig, creds Credentials, logger *slog.Logger) (backend.Caller, error) {
	switch cfg.Backend.Type {
	case model.BackendHTTP:
		var opts []httpadmin.ClientOption
		opts = append(opts, httpadmin.WithMaxRetries(cfg.Backend.HTTP.MaxRetries))
		if token := lookup(creds, credential.KeyHTTPToken, logger); token != "" {
			opts = append(opts, httpadmin.WithToken(token))
		}
		logger.Info("using admin HTTP backend", "base_url", cfg.Backend.HTTP.BaseURL)
		return httpadmin.NewAdapter(cfg.Backend.HTTP.BaseURL, cfg.Backend.HTTP.Timeout, logger, opts...), nil

	case model.BackendSQS:
		keys := sqsdirect.StaticKeys{
			AccessKeyID:     lookup(creds, credential.KeyAWSAccessKeyID, logger),
			SecretAccessKey: lookup(creds, credential.KeyAWSSecretAccessKey, logger),
		}
		adapter, err := sqsdirect.NewFromConfig(ctx, cfg.Backend.AWS, keys, cfg.Sync.MaxMessages, logger)
		if err != nil {
			return nil, fmt.Errorf("creating SQS backend: %w", err)
		}
		logger.Info("using direct SQS backend",
			"region", cfg.Backend.AWS.Region,
			"endpoint", cfg.Backend.AWS.Endpoint,
			"profile", cfg.Backend.AWS.Profile,
		)
		return adapter, nil

	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Backend.Type)
	}
}

// lookup reads an optional secret. Keyring failures are logged and
// treated as absent.
func lookup(creds Credentials, key string, logger *slog.Logger) string {
	if creds == nil {
		return ""
	}
	v, err := creds.Lookup(key)
	if err != nil {
		logger.Warn("reading credential", "key", key, "error", err)
		return ""
	}
	return v
}
