package model

import (
	"path"
	"strings"
)

// FifoSuffix marks a queue name as a FIFO queue.
const FifoSuffix = ".fifo"

// Queue is a named remote message channel as reported by the backend.
// The JSON field names follow the SQS admin API wire format.
type Queue struct {
	// QueueName is the human-readable name of the queue.
	QueueName string `json:"QueueName" validate:"required,max=80,queuename"`

	// QueueURL is assigned by the server and used as the stable
	// external identifier of the queue.
	QueueURL string `json:"QueueUrl,omitempty"`

	// QueueAttributes holds optional queue settings. It is sent when
	// creating a queue and may be populated when listing.
	QueueAttributes *QueueAttributes `json:"QueueAttributes,omitempty" validate:"omitempty"`
}

// QueueAttributes holds the settable SQS queue attributes. Zero values
// mean "server default" and are omitted on the wire.
type QueueAttributes struct {
	DelaySeconds                  int  `json:"DelaySeconds,omitempty" validate:"min=0,max=900"`
	MaximumMessageSize            int  `json:"MaximumMessageSize,omitempty" validate:"omitempty,min=1024,max=262144"`
	MessageRetentionPeriod        int  `json:"MessageRetentionPeriod,omitempty" validate:"omitempty,min=60,max=1209600"`
	ReceiveMessageWaitTimeSeconds int  `json:"ReceiveMessageWaitTimeSeconds,omitempty" validate:"min=0,max=20"`
	VisibilityTimeout             int  `json:"VisibilityTimeout,omitempty" validate:"min=0,max=43200"`
	ContentBasedDeduplication     bool `json:"ContentBasedDeduplication,omitempty"`

	// ApproximateNumberOfMessages is read-only and only reported when
	// the backend lists attributes.
	ApproximateNumberOfMessages int `json:"ApproximateNumberOfMessages,omitempty"`
}

// IsFifo reports whether the queue is a FIFO queue, which is derived
// from the ".fifo" name suffix.
func (q Queue) IsFifo() bool {
	return strings.HasSuffix(q.QueueName, FifoSuffix)
}

// QueueNameFromURL returns the last path segment of a queue URL, which
// is the queue name for every SQS-compatible service.
func QueueNameFromURL(queueURL string) string {
	trimmed := strings.TrimRight(queueURL, "/")
	if trimmed == "" {
		return ""
	}
	return path.Base(trimmed)
}
