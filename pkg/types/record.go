package types

import (
	"errors"
	"fmt"
	"time"
)

// Record is a single user-entered item. Implementations are pointer types so
// the store can assign identifiers and flip flags in place.
type Record interface {
	// RecordID returns the record identifier; empty before the first save.
	RecordID() string
	SetRecordID(id string)

	// Created returns the creation timestamp; zero before the first save.
	Created() time.Time
	SetCreated(t time.Time)

	// Validate checks field-level invariants. Returns a *ValidationError.
	Validate() error

	// Field returns the typed value of a field by its JSON name.
	Field(name string) (any, bool)

	// Toggle flips a boolean field by its JSON name.
	// Returns ErrNotToggleable for unknown or non-boolean fields.
	Toggle(field string) error
}

// Normalizer is implemented by records that adjust defaults before
// validation (for example, a zero grocery quantity becomes one).
type Normalizer interface {
	Normalize()
}

// Store operation errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidID     = errors.New("invalid record ID")
	ErrDuplicateID   = errors.New("duplicate record ID")
	ErrInvalidData   = errors.New("invalid record data")
	ErrInvalidField  = errors.New("unknown field")
	ErrInvalidFilter = errors.New("invalid filter value")
	ErrNotToggleable = errors.New("field cannot be toggled")
	ErrNotLoaded     = errors.New("collection not loaded")
)

// Field validation causes. A ValidationError unwraps to ErrInvalidData and
// to one of these.
var (
	ErrEmptyField   = errors.New("must not be empty")
	ErrFutureDate   = errors.New("must not be in the future")
	ErrOutOfRange   = errors.New("out of range")
	ErrInvalidColor = errors.New("must be a #rrggbb color")
	ErrInvalidEnum  = errors.New("not an allowed value")
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap exposes both ErrInvalidData and the specific cause to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidData, e.Err}
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// Meta carries the fields every record shares. Record kinds embed it.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Meta) RecordID() string       { return m.ID }
func (m *Meta) SetRecordID(id string)  { m.ID = id }
func (m *Meta) Created() time.Time     { return m.CreatedAt }
func (m *Meta) SetCreated(t time.Time) { m.CreatedAt = t }

// field returns the shared fields; record kinds fall back to it.
func (m *Meta) field(name string) (any, bool) {
	switch name {
	case "id":
		return m.ID, true
	case "created_at":
		return m.CreatedAt, true
	}
	return nil, false
}
