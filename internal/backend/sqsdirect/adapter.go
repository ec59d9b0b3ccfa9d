// Package sqsdirect implements the console backend directly against the
// SQS API (AWS, LocalStack or ElasticMQ) using aws-sdk-go-v2.
package sqsdirect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/nhle/sqs-console/internal/backend"
	"github.com/nhle/sqs-console/internal/model"
)

// API is the subset of the SQS client the adapter uses. Production code
// passes *sqs.Client; tests pass a fake.
type API interface {
	ListQueues(ctx context.Context, params *sqs.ListQueuesInput, optFns ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	CreateQueue(ctx context.Context, params *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
	DeleteQueue(ctx context.Context, params *sqs.DeleteQueueInput, optFns ...func(*sqs.Options)) (*sqs.DeleteQueueOutput, error)
	PurgeQueue(ctx context.Context, params *sqs.PurgeQueueInput, optFns ...func(*sqs.Options)) (*sqs.PurgeQueueOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Adapter implements backend.Caller with direct SQS calls.
type Adapter struct {
	client      API
	region      string
	maxMessages int32
	logger      *slog.Logger
}

var _ backend.Caller = (*Adapter)(nil)

// NewAdapter creates an adapter. maxMessages is clamped to the SQS
// receive limit of 1..10.
func NewAdapter(client API, region string, maxMessages int, logger *slog.Logger) *Adapter {
	if maxMessages < 1 {
		maxMessages = 1
	}
	if maxMessages > 10 {
		maxMessages = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		client:      client,
		region:      region,
		maxMessages: int32(maxMessages),
		logger:      logger,
	}
}

// Call dispatches req to the matching SQS operation and encodes the
// result into out using the admin API's JSON shapes.
func (a *Adapter) Call(ctx context.Context, req backend.Request, out any) error {
	start := time.Now()

	result, err := a.dispatch(ctx, req)
	if err != nil {
		err = mapError(err)
		a.logger.Warn("sqs call failed",
			"request", req.String(),
			"duration", time.Since(start),
			"error", err,
		)
		return err
	}

	a.logger.Debug("sqs call",
		"request", req.String(),
		"duration", time.Since(start),
	)

	if out == nil || result == nil {
		return nil
	}
	return assign(result, out)
}

func (a *Adapter) dispatch(ctx context.Context, req backend.Request) (any, error) {
	if req.Method == backend.MethodGet {
		return a.listQueues(ctx)
	}

	switch req.Action {
	case backend.ActionGetRegion:
		return model.Region{Region: a.region}, nil
	case backend.ActionCreateQueue:
		if req.Queue == nil {
			return nil, backend.ErrNoQueue
		}
		return nil, a.createQueue(ctx, *req.Queue)
	}

	queueURL, err := a.resolveQueueURL(req.Queue)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case backend.ActionGetMessages:
		return a.receiveMessages(ctx, queueURL)
	case backend.ActionDeleteQueue:
		_, err := a.client.DeleteQueue(ctx, &sqs.DeleteQueueInput{QueueUrl: aws.String(queueURL)})
		return nil, err
	case backend.ActionPurgeQueue:
		_, err := a.client.PurgeQueue(ctx, &sqs.PurgeQueueInput{QueueUrl: aws.String(queueURL)})
		return nil, err
	case backend.ActionSendMessage:
		if req.Message == nil {
			return nil, errors.New("send requires a message")
		}
		return nil, a.sendMessage(ctx, queueURL, *req.Message)
	default:
		return nil, fmt.Errorf("unsupported action %q", req.Action)
	}
}

func (a *Adapter) resolveQueueURL(q *model.Queue) (string, error) {
	if q == nil || q.QueueURL == "" {
		return "", backend.ErrNoQueue
	}
	return q.QueueURL, nil
}

// listQueues pages through ListQueues and enriches each queue with its
// attributes. Attribute lookups that fail are logged and skipped; the
// queue stays in the list.
func (a *Adapter) listQueues(ctx context.Context) ([]model.Queue, error) {
	var urls []string
	var next *string
	for {
		out, err := a.client.ListQueues(ctx, &sqs.ListQueuesInput{
			NextToken:  next,
			MaxResults: aws.Int32(1000),
		})
		if err != nil {
			return nil, fmt.Errorf("listing queues: %w", err)
		}
		urls = append(urls, out.QueueUrls...)
		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		next = out.NextToken
	}

	sort.Strings(urls)

	queues := make([]model.Queue, 0, len(urls))
	for _, u := range urls {
		q := model.Queue{
			QueueName: model.QueueNameFromURL(u),
			QueueURL:  u,
		}
		attrs, err := a.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
			QueueUrl:       aws.String(u),
			AttributeNames: []sqsTypes.QueueAttributeName{sqsTypes.QueueAttributeNameAll},
		})
		if err != nil {
			a.logger.Warn("reading queue attributes", "queue_url", u, "error", err)
		} else {
			q.QueueAttributes = parseQueueAttributes(attrs.Attributes)
		}
		queues = append(queues, q)
	}

	return queues, nil
}

// receiveMessages peeks at the queue: a zero visibility timeout leaves
// the messages immediately visible to real consumers.
func (a *Adapter) receiveMessages(ctx context.Context, queueURL string) ([]model.Message, error) {
	out, err := a.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:                    aws.String(queueURL),
		MaxNumberOfMessages:         a.maxMessages,
		VisibilityTimeout:           0,
		WaitTimeSeconds:             0,
		MessageAttributeNames:       []string{"All"},
		MessageSystemAttributeNames: []sqsTypes.MessageSystemAttributeName{sqsTypes.MessageSystemAttributeNameAll},
	})
	if err != nil {
		return nil, fmt.Errorf("receiving messages: %w", err)
	}

	msgs := make([]model.Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, toModelMessage(m))
	}
	return msgs, nil
}

func (a *Adapter) createQueue(ctx context.Context, q model.Queue) error {
	attrs := queueAttributesInput(q)
	_, err := a.client.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName:  aws.String(q.QueueName),
		Attributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("creating queue %s: %w", q.QueueName, err)
	}
	return nil
}

func (a *Adapter) sendMessage(ctx context.Context, queueURL string, m model.Message) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(m.Body),
	}
	if attrs := m.Attributes; attrs != nil {
		if attrs.MessageGroupID != "" {
			input.MessageGroupId = aws.String(attrs.MessageGroupID)
		}
		if attrs.MessageDeduplicationID != "" {
			input.MessageDeduplicationId = aws.String(attrs.MessageDeduplicationID)
		}
		input.DelaySeconds = int32(attrs.DelaySeconds)
		if len(attrs.Custom) > 0 {
			input.MessageAttributes = make(map[string]sqsTypes.MessageAttributeValue, len(attrs.Custom))
			for k, v := range attrs.Custom {
				input.MessageAttributes[k] = sqsTypes.MessageAttributeValue{
					DataType:    aws.String("String"),
					StringValue: aws.String(v),
				}
			}
		}
	}

	if _, err := a.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// queueAttributesInput converts the model attributes into the SQS
// string map. The FIFO flag follows from the queue name.
func queueAttributesInput(q model.Queue) map[string]string {
	attrs := make(map[string]string)
	if q.IsFifo() {
		attrs[string(sqsTypes.QueueAttributeNameFifoQueue)] = "true"
	}
	qa := q.QueueAttributes
	if qa == nil {
		return attrs
	}
	setInt := func(name sqsTypes.QueueAttributeName, v int) {
		if v > 0 {
			attrs[string(name)] = strconv.Itoa(v)
		}
	}
	setInt(sqsTypes.QueueAttributeNameDelaySeconds, qa.DelaySeconds)
	setInt(sqsTypes.QueueAttributeNameMaximumMessageSize, qa.MaximumMessageSize)
	setInt(sqsTypes.QueueAttributeNameMessageRetentionPeriod, qa.MessageRetentionPeriod)
	setInt(sqsTypes.QueueAttributeNameReceiveMessageWaitTimeSeconds, qa.ReceiveMessageWaitTimeSeconds)
	setInt(sqsTypes.QueueAttributeNameVisibilityTimeout, qa.VisibilityTimeout)
	if q.IsFifo() && qa.ContentBasedDeduplication {
		attrs[string(sqsTypes.QueueAttributeNameContentBasedDeduplication)] = "true"
	}
	return attrs
}

func parseQueueAttributes(raw map[string]string) *model.QueueAttributes {
	atoi := func(name sqsTypes.QueueAttributeName) int {
		n, _ := strconv.Atoi(raw[string(name)])
		return n
	}
	return &model.QueueAttributes{
		DelaySeconds:                  atoi(sqsTypes.QueueAttributeNameDelaySeconds),
		MaximumMessageSize:            atoi(sqsTypes.QueueAttributeNameMaximumMessageSize),
		MessageRetentionPeriod:        atoi(sqsTypes.QueueAttributeNameMessageRetentionPeriod),
		ReceiveMessageWaitTimeSeconds: atoi(sqsTypes.QueueAttributeNameReceiveMessageWaitTimeSeconds),
		VisibilityTimeout:             atoi(sqsTypes.QueueAttributeNameVisibilityTimeout),
		ContentBasedDeduplication:     raw[string(sqsTypes.QueueAttributeNameContentBasedDeduplication)] == "true",
		ApproximateNumberOfMessages:   atoi(sqsTypes.QueueAttributeNameApproximateNumberOfMessages),
	}
}

func toModelMessage(m sqsTypes.Message) model.Message {
	msg := model.Message{
		MessageID:     aws.ToString(m.MessageId),
		Body:          aws.ToString(m.Body),
		SentTimestamp: m.Attributes[string(sqsTypes.MessageSystemAttributeNameSentTimestamp)],
	}
	if n, err := strconv.Atoi(m.Attributes[string(sqsTypes.MessageSystemAttributeNameApproximateReceiveCount)]); err == nil {
		msg.ReceiveCount = n
	}

	attrs := &model.MessageAttributes{
		MessageGroupID:         m.Attributes[string(sqsTypes.MessageSystemAttributeNameMessageGroupId)],
		MessageDeduplicationID: m.Attributes[string(sqsTypes.MessageSystemAttributeNameMessageDeduplicationId)],
	}
	for k, v := range m.MessageAttributes {
		if v.StringValue == nil {
			continue
		}
		if attrs.Custom == nil {
			attrs.Custom = make(map[string]string)
		}
		attrs.Custom[k] = *v.StringValue
	}
	if attrs.MessageGroupID != "" || attrs.MessageDeduplicationID != "" || len(attrs.Custom) > 0 {
		msg.Attributes = attrs
	}
	return msg
}

// mapError turns SQS API errors into *backend.Error so the console shows
// the service's own message.
func mapError(err error) error {
	if errors.Is(err, backend.ErrNoQueue) {
		return err
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	status := http.StatusBadRequest
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}
	if _, ok := apiErr.(*sqsTypes.QueueDoesNotExist); ok {
		status = http.StatusNotFound
	}

	msg := apiErr.ErrorMessage()
	if msg == "" {
		msg = apiErr.ErrorCode()
	}
	return &backend.Error{Status: status, Message: msg}
}

// assign copies result into out through JSON so that out may be any type
// compatible with the admin API shapes.
func assign(result any, out any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}
