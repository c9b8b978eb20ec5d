package ledger

import "errors"

// ErrInvalidActivityInput is returned when an activity cannot be recorded as given.
var ErrInvalidActivityInput = errors.New("invalid activity input")
