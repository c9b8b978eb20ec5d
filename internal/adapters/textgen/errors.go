package textgen

import "errors"

var (
	// ErrUnavailable is returned when the text generation service could not produce text.
	ErrUnavailable = errors.New("text generation unavailable")
	// ErrNotConfigured is returned when no API key is set. It also matches ErrUnavailable.
	ErrNotConfigured error = notConfigured{}
	// ErrEmptyResponse is returned when the service answered without any text.
	ErrEmptyResponse = errors.New("text generation returned no text")
)

type notConfigured struct{}

func (notConfigured) Error() string        { return "text generation not configured" }
func (notConfigured) Is(target error) bool { return target == ErrUnavailable }
