package model

import (
	"errors"
	"fmt"
	"strconv"
)

// Error kinds. Concrete errors below match one of these with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrIntegrity     = errors.New("integrity violation")
	ErrDuplicateName = errors.New("duplicate name")
	ErrPersistence   = errors.New("persistence failure")
	ErrDeclined      = errors.New("declined")
)

// ValidationError describes an input that was rejected before any write.
type ValidationError struct {
	Field       string
	Description string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Description
	}
	return e.Field + ": " + e.Description
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Description: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown id.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return e.Entity + " " + strconv.Itoa(e.ID) + " not found"
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(entity string, id int) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// DuplicateNameError reports a normalized name that is already taken.
type DuplicateNameError struct {
	Entity string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s named %q already exists", e.Entity, e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName || target == ErrIntegrity
}

// IntegrityError reports a constraint violation raised by the store.
type IntegrityError struct {
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	return "integrity violation (" + e.Constraint + "): " + e.Err.Error()
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

func (e *IntegrityError) Unwrap() error { return e.Err }

// PersistenceError wraps any other store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }
