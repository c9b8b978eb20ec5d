package catalog

import "errors"

// ErrUnknownKind is returned when a value does not name a catalog activity.
var ErrUnknownKind = errors.New("unknown activity kind")
