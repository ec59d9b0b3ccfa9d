package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_IsFifo(t *testing.T) {
	assert.True(t, Queue{QueueName: "orders.fifo"}.IsFifo())
	assert.False(t, Queue{QueueName: "orders"}.IsFifo())
	assert.False(t, Queue{QueueName: "fifo"}.IsFifo())
}

func TestQueueNameFromURL(t *testing.T) {
	assert.Equal(t, "jobs", QueueNameFromURL("https://sqs.eu-central-1.amazonaws.com/123/jobs"))
	assert.Equal(t, "jobs.fifo", QueueNameFromURL("http://localhost:4566/000/jobs.fifo/"))
	assert.Equal(t, "", QueueNameFromURL(""))
}

func TestMessage_GroupID(t *testing.T) {
	assert.Equal(t, "", Message{}.GroupID())
	assert.Equal(t, "g1", Message{Attributes: &MessageAttributes{MessageGroupID: "g1"}}.GroupID())
}

func TestRegion_Label(t *testing.T) {
	assert.Equal(t, DefaultRegionLabel, Region{}.Label())
	assert.Equal(t, "us-east-1", Region{Region: "us-east-1"}.Label())
}

func TestValidateQueue(t *testing.T) {
	tests := []struct {
		name    string
		queue   Queue
		wantErr string
	}{
		{name: "standard", queue: Queue{QueueName: "billing_events-1"}},
		{name: "fifo", queue: Queue{QueueName: "jobs.fifo"}},
		{name: "missing name", queue: Queue{}, wantErr: "QueueName is required"},
		{name: "bad characters", queue: Queue{QueueName: "no spaces"}, wantErr: "alphanumerics"},
		{name: "too long", queue: Queue{QueueName: strings.Repeat("a", 81)}, wantErr: "at most 80"},
		{
			name:    "delay out of range",
			queue:   Queue{QueueName: "q", QueueAttributes: &QueueAttributes{DelaySeconds: 901}},
			wantErr: "DelaySeconds must be at most 900",
		},
		{
			name:    "retention below minimum",
			queue:   Queue{QueueName: "q", QueueAttributes: &QueueAttributes{MessageRetentionPeriod: 10}},
			wantErr: "MessageRetentionPeriod must be at least 60",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQueue(tt.queue)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, BackendHTTP, cfg.Backend.Type)
	assert.Equal(t, 3*time.Second, cfg.Sync.PollInterval)
	assert.Equal(t, time.Second, cfg.Sync.SettleDelay)
	assert.False(t, cfg.Sync.FenceStaleResponses)
	assert.Equal(t, 3*time.Second, cfg.Notify.Lifetime)
	assert.Zero(t, cfg.Backend.HTTP.MaxRetries)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  type: sqs
  aws:
    region: eu-west-1
sync:
  poll_interval: 5s
`), 0o600))
	t.Setenv("SQS_CONSOLE_SYNC_FENCE_STALE_RESPONSES", "true")
	t.Setenv("SQS_CONSOLE_NOTIFY_LIFETIME", "10s")

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, BackendSQS, cfg.Backend.Type)
	assert.Equal(t, "eu-west-1", cfg.Backend.AWS.Region)
	assert.Equal(t, 5*time.Second, cfg.Sync.PollInterval)
	assert.True(t, cfg.Sync.FenceStaleResponses)
	assert.Equal(t, 10*time.Second, cfg.Notify.Lifetime)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  type: carrier-pigeon\n"), 0o600))

	_, err := LoadConfig(path)

	assert.ErrorContains(t, err, "must be one of")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	want := DefaultConfig()
	want.Backend.HTTP.BaseURL = "http://admin:8080"
	want.Sync.MaxMessages = 5

	require.NoError(t, SaveConfig(path, want))
	got, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
