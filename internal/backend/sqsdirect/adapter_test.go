package sqsdirect

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/sqs-console/internal/backend"
	"github.com/nhle/sqs-console/internal/model"
)

// fakeSQS records inputs and returns canned outputs.
type fakeSQS struct {
	pages     [][]string
	listCalls int
	attrs     map[string]map[string]string
	attrsErr  error
	messages  []sqsTypes.Message
	receiveIn *sqs.ReceiveMessageInput
	createIn  *sqs.CreateQueueInput
	deleteIn  *sqs.DeleteQueueInput
	purgeIn   *sqs.PurgeQueueInput
	sendIn    *sqs.SendMessageInput
	mutateErr error
}

func (f *fakeSQS) ListQueues(_ context.Context, in *sqs.ListQueuesInput, _ ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error) {
	page := f.listCalls
	f.listCalls++
	out := &sqs.ListQueuesOutput{}
	if page < len(f.pages) {
		out.QueueUrls = f.pages[page]
	}
	if page+1 < len(f.pages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

func (f *fakeSQS) GetQueueAttributes(_ context.Context, in *sqs.GetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	if f.attrsErr != nil {
		return nil, f.attrsErr
	}
	return &sqs.GetQueueAttributesOutput{Attributes: f.attrs[aws.ToString(in.QueueUrl)]}, nil
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.receiveIn = in
	return &sqs.ReceiveMessageOutput{Messages: f.messages}, nil
}

func (f *fakeSQS) CreateQueue(_ context.Context, in *sqs.CreateQueueInput, _ ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error) {
	f.createIn = in
	return &sqs.CreateQueueOutput{}, f.mutateErr
}

func (f *fakeSQS) DeleteQueue(_ context.Context, in *sqs.DeleteQueueInput, _ ...func(*sqs.Options)) (*sqs.DeleteQueueOutput, error) {
	f.deleteIn = in
	return &sqs.DeleteQueueOutput{}, f.mutateErr
}

func (f *fakeSQS) PurgeQueue(_ context.Context, in *sqs.PurgeQueueInput, _ ...func(*sqs.Options)) (*sqs.PurgeQueueOutput, error) {
	f.purgeIn = in
	return &sqs.PurgeQueueOutput{}, f.mutateErr
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sendIn = in
	return &sqs.SendMessageOutput{}, f.mutateErr
}

func TestListQueues_PaginatesAndReadsAttributes(t *testing.T) {
	fake := &fakeSQS{
		pages: [][]string{
			{"http://sqs/000/orders.fifo"},
			{"http://sqs/000/billing"},
		},
		attrs: map[string]map[string]string{
			"http://sqs/000/billing": {
				"VisibilityTimeout":           "30",
				"ApproximateNumberOfMessages": "4",
			},
		},
	}
	a := NewAdapter(fake, "eu-west-1", 10, nil)

	var queues []model.Queue
	require.NoError(t, a.Call(context.Background(), backend.ListQueues(), &queues))

	assert.Equal(t, 2, fake.listCalls)
	require.Len(t, queues, 2)
	assert.Equal(t, "billing", queues[0].QueueName)
	require.NotNil(t, queues[0].QueueAttributes)
	assert.Equal(t, 30, queues[0].QueueAttributes.VisibilityTimeout)
	assert.Equal(t, 4, queues[0].QueueAttributes.ApproximateNumberOfMessages)
	assert.Equal(t, "orders.fifo", queues[1].QueueName)
	assert.True(t, queues[1].IsFifo())
}

func TestListQueues_AttributeFailureKeepsQueue(t *testing.T) {
	fake := &fakeSQS{
		pages:    [][]string{{"http://sqs/000/a"}},
		attrsErr: errors.New("throttled"),
	}
	a := NewAdapter(fake, "eu-west-1", 10, nil)

	var queues []model.Queue
	require.NoError(t, a.Call(context.Background(), backend.ListQueues(), &queues))
	require.Len(t, queues, 1)
	assert.Nil(t, queues[0].QueueAttributes)
}

func TestGetMessages_PeeksWithoutHidingMessages(t *testing.T) {
	fake := &fakeSQS{
		messages: []sqsTypes.Message{{
			MessageId: aws.String("m-1"),
			Body:      aws.String(`{"id":1}`),
			Attributes: map[string]string{
				"MessageGroupId":          "g1",
				"SentTimestamp":           "1700000000000",
				"ApproximateReceiveCount": "2",
			},
			MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
				"trace": {DataType: aws.String("String"), StringValue: aws.String("abc")},
			},
		}},
	}
	a := NewAdapter(fake, "eu-west-1", 25, nil)

	queue := &model.Queue{QueueName: "q", QueueURL: "http://sqs/000/q"}
	var msgs []model.Message
	require.NoError(t, a.Call(context.Background(), backend.Post(backend.ActionGetMessages, queue, nil), &msgs))

	require.NotNil(t, fake.receiveIn)
	assert.Equal(t, int32(0), fake.receiveIn.VisibilityTimeout)
	assert.Equal(t, int32(10), fake.receiveIn.MaxNumberOfMessages)
	assert.Equal(t, "http://sqs/000/q", aws.ToString(fake.receiveIn.QueueUrl))

	require.Len(t, msgs, 1)
	assert.Equal(t, "m-1", msgs[0].MessageID)
	assert.Equal(t, `{"id":1}`, msgs[0].Body)
	assert.Equal(t, "g1", msgs[0].GroupID())
	assert.Equal(t, 2, msgs[0].ReceiveCount)
	assert.Equal(t, "abc", msgs[0].Attributes.Custom["trace"])
}

func TestGetMessages_WithoutQueueURL(t *testing.T) {
	a := NewAdapter(&fakeSQS{}, "eu-west-1", 10, nil)
	err := a.Call(context.Background(), backend.Post(backend.ActionGetMessages, &model.Queue{QueueName: "q"}, nil), nil)
	assert.ErrorIs(t, err, backend.ErrNoQueue)
}

func TestCreateQueue_SetsFifoAttributes(t *testing.T) {
	fake := &fakeSQS{}
	a := NewAdapter(fake, "eu-west-1", 10, nil)

	queue := &model.Queue{
		QueueName: "jobs.fifo",
		QueueAttributes: &model.QueueAttributes{
			DelaySeconds:              5,
			ContentBasedDeduplication: true,
		},
	}
	require.NoError(t, a.Call(context.Background(), backend.Post(backend.ActionCreateQueue, queue, nil), nil))

	require.NotNil(t, fake.createIn)
	assert.Equal(t, "jobs.fifo", aws.ToString(fake.createIn.QueueName))
	assert.Equal(t, map[string]string{
		"FifoQueue":                 "true",
		"DelaySeconds":              "5",
		"ContentBasedDeduplication": "true",
	}, fake.createIn.Attributes)
}

func TestCreateQueue_StandardQueueHasNoFifoFlag(t *testing.T) {
	fake := &fakeSQS{}
	a := NewAdapter(fake, "eu-west-1", 10, nil)

	require.NoError(t, a.Call(context.Background(), backend.Post(backend.ActionCreateQueue, &model.Queue{QueueName: "plain"}, nil), nil))
	assert.Empty(t, fake.createIn.Attributes)
}

func TestDeleteAndPurge(t *testing.T) {
	fake := &fakeSQS{}
	a := NewAdapter(fake, "eu-west-1", 10, nil)
	queue := &model.Queue{QueueName: "q", QueueURL: "http://sqs/000/q"}

	require.NoError(t, a.Call(context.Background(), backend.Post(backend.ActionDeleteQueue, queue, nil), nil))
	require.NoError(t, a.Call(context.Background(), backend.Post(backend.ActionPurgeQueue, queue, nil), nil))

	assert.Equal(t, "http://sqs/000/q", aws.ToString(fake.deleteIn.QueueUrl))
	assert.Equal(t, "http://sqs/000/q", aws.ToString(fake.purgeIn.QueueUrl))
}

func TestSendMessage_MapsAttributes(t *testing.T) {
	fake := &fakeSQS{}
	a := NewAdapter(fake, "eu-west-1", 10, nil)
	queue := &model.Queue{QueueName: "q.fifo", QueueURL: "http://sqs/000/q.fifo"}
	msg := &model.Message{
		Body: "hello",
		Attributes: &model.MessageAttributes{
			MessageGroupID:         "g1",
			MessageDeduplicationID: "d1",
			Custom:                 map[string]string{"k": "v"},
		},
	}

	require.NoError(t, a.Call(context.Background(), backend.Post(backend.ActionSendMessage, queue, msg), nil))

	in := fake.sendIn
	require.NotNil(t, in)
	assert.Equal(t, "hello", aws.ToString(in.MessageBody))
	assert.Equal(t, "g1", aws.ToString(in.MessageGroupId))
	assert.Equal(t, "d1", aws.ToString(in.MessageDeduplicationId))
	assert.Equal(t, "v", aws.ToString(in.MessageAttributes["k"].StringValue))
}

func TestGetRegion_ReturnsConfiguredRegion(t *testing.T) {
	a := NewAdapter(&fakeSQS{}, "ap-south-1", 10, nil)

	var region model.Region
	require.NoError(t, a.Call(context.Background(), backend.Post(backend.ActionGetRegion, &model.Queue{}, nil), &region))
	assert.Equal(t, "ap-south-1", region.Region)
}

func TestCall_MapsAPIErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "queue does not exist",
			err:        &sqsTypes.QueueDoesNotExist{Message: aws.String("The specified queue does not exist.")},
			wantStatus: http.StatusNotFound,
			wantMsg:    "The specified queue does not exist.",
		},
		{
			name:       "generic api error",
			err:        &smithy.GenericAPIError{Code: "PurgeQueueInProgress", Message: "Only one PurgeQueue operation is allowed every 60 seconds."},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Only one PurgeQueue operation is allowed every 60 seconds.",
		},
		{
			name:       "api error without message",
			err:        &smithy.GenericAPIError{Code: "AccessDenied"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "AccessDenied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSQS{mutateErr: tt.err}
			a := NewAdapter(fake, "eu-west-1", 10, nil)
			queue := &model.Queue{QueueName: "q", QueueURL: "http://sqs/000/q"}

			err := a.Call(context.Background(), backend.Post(backend.ActionPurgeQueue, queue, nil), nil)

			var berr *backend.Error
			require.ErrorAs(t, err, &berr)
			assert.Equal(t, tt.wantStatus, berr.Status)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestCall_PlainErrorsPassThrough(t *testing.T) {
	fake := &fakeSQS{mutateErr: errors.New("dial tcp: connection refused")}
	a := NewAdapter(fake, "eu-west-1", 10, nil)
	queue := &model.Queue{QueueName: "q", QueueURL: "http://sqs/000/q"}

	err := a.Call(context.Background(), backend.Post(backend.ActionDeleteQueue, queue, nil), nil)
	require.Error(t, err)

	var berr *backend.Error
	assert.False(t, errors.As(err, &berr))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClientOptions_SingleAttempt(t *testing.T) {
	var o sqs.Options
	clientOptions(model.AWSConfig{})(&o)

	assert.Equal(t, 1, o.RetryMaxAttempts)
	assert.Nil(t, o.BaseEndpoint)
}

func TestClientOptions_CustomEndpoint(t *testing.T) {
	var o sqs.Options
	clientOptions(model.AWSConfig{Endpoint: "http://localhost:4566"})(&o)

	require.NotNil(t, o.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *o.BaseEndpoint)
	assert.Equal(t, 1, o.RetryMaxAttempts)
}
