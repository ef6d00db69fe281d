package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the handlers. The front door maps them to
// transport status codes.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrSinkUnavailable  = errors.New("sink unavailable")
)

// ValidationError names the first violated field and constraint
type ValidationError struct {
	Index      *int        `json:"index,omitempty"` // element position for array payloads
	Field      string      `json:"field"`
	Constraint string      `json:"constraint"`
	Message    string      `json:"message"`
	Value      interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Index != nil {
		return fmt.Sprintf("validation failed at [%d]: %s", *e.Index, e.Message)
	}
	return "validation failed: " + e.Message
}

// Is reports ErrValidationFailed as a match so callers can use errors.Is
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// AtIndex returns a copy of the error attributed to an array element
func (e *ValidationError) AtIndex(i int) *ValidationError {
	out := *e
	out.Index = &i
	return &out
}
