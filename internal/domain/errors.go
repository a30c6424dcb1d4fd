package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInternalInvariant = errors.New("internal invariant violated")
	ErrTriggerRejected   = errors.New("trigger rejected")
	ErrUnauthorized      = errors.New("unauthorized")
)

type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InternalInvariantError reports data from GitLab that breaks an API
// contract this tool relies on.
type InternalInvariantError struct {
	Reason string
}

func (e *InternalInvariantError) Error() string {
	return "internal invariant: " + e.Reason
}

func (e *InternalInvariantError) Unwrap() error { return ErrInternalInvariant }
