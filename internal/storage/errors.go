package storage

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrRelated is returned when a referenced row does not exist.
	ErrRelated = errors.New("related record not found")
)
