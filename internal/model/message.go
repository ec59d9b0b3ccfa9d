package model

// Message is a single queue message. The same shape is used for messages
// received from a queue and for messages submitted through the send form.
type Message struct {
	// MessageID is assigned by the server; empty for outgoing messages.
	MessageID string `json:"messageId,omitempty"`

	// Body is the opaque message payload.
	Body string `json:"messageBody"`

	// Attributes holds the queue-specific send attributes.
	Attributes *MessageAttributes `json:"messageAttributes,omitempty"`

	// SentTimestamp is the server-reported send time in epoch
	// milliseconds, kept as text as it comes off the wire.
	SentTimestamp string `json:"sentTimestamp,omitempty"`

	// ReceiveCount is the approximate number of times the message has
	// been received.
	ReceiveCount int `json:"receiveCount,omitempty"`
}

// MessageAttributes holds the send parameters that SQS treats specially
// plus free-form string attributes.
type MessageAttributes struct {
	// MessageGroupID is required for FIFO queues.
	MessageGroupID string `json:"MessageGroupId,omitempty"`

	// MessageDeduplicationID is optional for FIFO queues with
	// content-based deduplication enabled.
	MessageDeduplicationID string `json:"MessageDeduplicationId,omitempty"`

	DelaySeconds int `json:"DelaySeconds,omitempty"`

	// Custom holds user-defined string message attributes.
	Custom map[string]string `json:"Custom,omitempty"`
}

// GroupID returns the message group id, or "" when the message carries
// no attributes.
func (m Message) GroupID() string {
	if m.Attributes == nil {
		return ""
	}
	return m.Attributes.MessageGroupID
}
