package httpadmin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/sqs-console/internal/backend"
)

// Adapter implements backend.Caller on top of the SQS admin HTTP API.
type Adapter struct {
	client *Client
	logger *slog.Logger
}

var _ backend.Caller = (*Adapter)(nil)

// NewAdapter creates an adapter for the admin server at baseURL.
func NewAdapter(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...ClientOption) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]ClientOption{WithLogger(logger)}, opts...)
	return &Adapter{
		client: NewClient(baseURL, timeout, opts...),
		logger: logger,
	}
}

// Call sends req to the admin API. GET requests list queues; POST
// requests carry the action with its queue and message payloads.
func (a *Adapter) Call(ctx context.Context, req backend.Request, out any) error {
	start := time.Now()

	var err error
	switch req.Method {
	case backend.MethodGet:
		err = a.client.Get(ctx, endpointPath, out)
	case backend.MethodPost:
		err = a.client.Post(ctx, endpointPath, actionRequest{
			Action:  string(req.Action),
			Queue:   req.Queue,
			Message: req.Message,
		}, out)
	default:
		err = fmt.Errorf("unsupported method %q", req.Method)
	}

	attrs := []any{
		"request", req.String(),
		"duration", time.Since(start),
	}
	if req.Queue != nil {
		attrs = append(attrs, "queue", req.Queue.QueueName)
	}
	if err != nil {
		a.logger.Warn("admin API call failed", append(attrs, "error", err)...)
		return err
	}
	a.logger.Debug("admin API call", attrs...)
	return nil
}
