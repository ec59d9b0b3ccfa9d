package sqsdirect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/nhle/sqs-console/internal/model"
)

// StaticKeys holds an access key pair read from the OS keyring. An empty
// pair means the default AWS credential chain is used.
type StaticKeys struct {
	AccessKeyID     string
	SecretAccessKey string
}

func (k StaticKeys) empty() bool {
	return k.AccessKeyID == "" || k.SecretAccessKey == ""
}

// NewFromConfig builds an adapter backed by a real SQS client.
func NewFromConfig(ctx context.Context, cfg model.AWSConfig, keys StaticKeys, maxMessages int, logger *slog.Logger) (*Adapter, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if !keys.empty() {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(keys.AccessKeyID, keys.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := sqs.NewFromConfig(awsCfg, clientOptions(cfg))

	return NewAdapter(client, awsCfg.Region, maxMessages, logger), nil
}

// clientOptions points the client at a custom endpoint and turns off the
// SDK retryer so each call sends exactly one request. A failed poll is
// repeated by the next tick; a failed SendMessage is not repeated at all.
func clientOptions(cfg model.AWSConfig) func(*sqs.Options) {
	return func(o *sqs.Options) {
		o.RetryMaxAttempts = 1
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}
}
