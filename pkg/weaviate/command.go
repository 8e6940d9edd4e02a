package weaviate

import (
	"context"
	"encoding/json"

	"github.com/gmanninglive/weaviate-client/internal/constants"
)

// Command is one remote operation. Commands keep their parameters immutable after
// construction, so Do may be called any number of times.
type Command[R any] interface {
	Do(ctx context.Context) (R, error)
}

// decodeResponse turns a non-2xx response into a *StatusError and decodes the body otherwise.
func decodeResponse[T any](resp *Response, target string) (*T, error) {
	if resp.StatusCode < constants.HTTPStatusOK || resp.StatusCode >= constants.HTTPStatusMultipleChoices {
		return nil, newStatusError(resp)
	}

	var out T

	err := json.Unmarshal(resp.Body, &out)
	if err != nil {
		return nil, &DecodeError{Target: target, Body: resp.Body, Err: err}
	}

	return &out, nil
}
