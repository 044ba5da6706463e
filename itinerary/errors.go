package itinerary

import "errors"

// Pipeline failure classes. Callers match with errors.Is; the wrapped
// message carries the detail shown to users.
var (
	// ErrMissingDestination means neither destination nor destinations[0] was given.
	ErrMissingDestination = errors.New("missing destination")

	// ErrInvalidRequest covers malformed dates and unknown trip types.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrModelInvocation means the model call itself failed.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrUnparseableModelResponse means the model returned no tool calls and
	// its text was not a usable itinerary document.
	ErrUnparseableModelResponse = errors.New("unparseable model response")
)
