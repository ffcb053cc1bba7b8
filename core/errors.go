package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError is returned when the input of an operation is invalid or references unknown entities.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldError is a shorthand for a ValidationError on a single field.
func NewFieldError(field, msg string) error {
	return NewValidationError(errors.New(field+": "+msg), FieldError{Field: field, Error: msg})
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// NotFoundError is returned when an operation targets an entity that does not exist.
type NotFoundError struct {
	Entity string
}

func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

func (err NotFoundError) Error() string {
	return err.Entity + " not found"
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// InvalidStateTransitionError is returned when a state machine refuses a transition.
type InvalidStateTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
	Reason string
}

func NewInvalidStateTransitionError(entity, id, from, to, reason string) error {
	return &InvalidStateTransitionError{Entity: entity, ID: id, From: from, To: to, Reason: reason}
}

func (err InvalidStateTransitionError) Error() string {
	msg := fmt.Sprintf("cannot move %s %s from %q to %q", err.Entity, err.ID, err.From, err.To)
	if err.Reason != "" {
		msg += ": " + err.Reason
	}
	return msg
}

func IsInvalidStateTransition(err error) bool {
	_, ok := errors.Cause(err).(*InvalidStateTransitionError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
