package httpadmin

import "github.com/nhle/sqs-console/internal/model"

// endpointPath is the single resource the admin API exposes.
const endpointPath = "/sqs"

// actionRequest is the JSON body of every POST to the admin API.
type actionRequest struct {
	Action  string         `json:"action"`
	Queue   *model.Queue   `json:"queue,omitempty"`
	Message *model.Message `json:"message,omitempty"`
}

// ErrorResponse is the body the admin API returns with a non-success
// status.
type ErrorResponse struct {
	Message string `json:"message"`
}
