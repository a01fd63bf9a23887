package auth

import (
	"encoding/json"
	"errors"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user with that email or username already exists")
	ErrUserAlreadyActivated = errors.New("user already activated")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrInvalidData          = errors.New("invalid data")
)

// InvalidDataError carries the provider's description of rejected input.
// It matches ErrInvalidData with errors.Is.
type InvalidDataError struct {
	Msg string
}

func NewInvalidDataError(msg string) error {
	return &InvalidDataError{Msg: msg}
}

func (e *InvalidDataError) Error() string {
	return e.Msg
}

func (e *InvalidDataError) Is(target error) bool {
	return target == ErrInvalidData
}

// Fields decodes a JSON object of per-field messages, falling back to a single "error" entry.
func (e *InvalidDataError) Fields() map[string]string {
	fields := make(map[string]string)
	if err := json.Unmarshal([]byte(e.Msg), &fields); err != nil || len(fields) == 0 {
		return map[string]string{"error": e.Msg}
	}
	return fields
}
