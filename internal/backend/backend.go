package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nhle/sqs-console/internal/model"
)

// Method is the HTTP-style verb of a backend request.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

// Action names the operation of a POST request. A GET request without an
// action lists queues.
type Action string

const (
	ActionListQueues  Action = ""
	ActionGetMessages Action = "GetMessages"
	ActionGetRegion   Action = "GetRegion"
	ActionCreateQueue Action = "CreateQueue"
	ActionDeleteQueue Action = "DeleteQueue"
	ActionPurgeQueue  Action = "PurgeQueue"
	ActionSendMessage Action = "SendMessage"
)

// Request describes one backend call.
type Request struct {
	Method  Method
	Action  Action
	Queue   *model.Queue
	Message *model.Message
}

// String returns a short label for logs.
func (r Request) String() string {
	if r.Action == ActionListQueues {
		return string(r.Method) + " ListQueues"
	}
	return string(r.Method) + " " + string(r.Action)
}

// ListQueues builds the request that lists all queues.
func ListQueues() Request {
	return Request{Method: MethodGet}
}

// Post builds a POST request for the given action.
func Post(action Action, queue *model.Queue, msg *model.Message) Request {
	return Request{Method: MethodPost, Action: action, Queue: queue, Message: msg}
}

// Caller performs backend requests. A call has exactly one outcome: it
// either returns nil after decoding the response body into out (when out
// is non-nil) or returns an error.
//
// Response shapes: []model.Queue for ListQueues, []model.Message for
// GetMessages, model.Region for GetRegion; all other actions are opaque.
type Caller interface {
	Call(ctx context.Context, req Request, out any) error
}

// Error is returned when the backend answers with a non-success status.
// Message is the server-supplied explanation and may be empty.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return fmt.Sprintf("request failed: %d %s", e.Status, text)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsStatus reports whether err (or any error in its chain) is an Error
// with the given status.
func IsStatus(err error, status int) bool {
	var berr *Error
	return errors.As(err, &berr) && berr.Status == status
}

// ErrNoQueue is returned by implementations when a request that needs a
// queue arrives without one.
var ErrNoQueue = errors.New("request requires a queue")
