package repository

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrNotFound         = errors.New("participant not found")
	ErrDuplicateName    = errors.New("participant name already registered")
	ErrInvalidName      = errors.New("participant name is empty")
	ErrInvalidGrade     = errors.New("unsupported grade")
	ErrPersistenceRead  = errors.New("stored roster unreadable")
	ErrPersistenceWrite = errors.New("roster could not be saved")
)
