package rosterctl

import "errors"

var (
	ErrNoCommand      = errors.New("no command given")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("invalid usage")
	ErrUnknownFormat  = errors.New("unknown output format")
)
