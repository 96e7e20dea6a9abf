package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Detailed error types below match them via errors.Is.
var (
	ErrRange             = errors.New("value out of range")
	ErrIncompleteProfile = errors.New("incomplete profile")
	ErrEmptySnapshot     = errors.New("empty snapshot")
	ErrUnknownDomain     = errors.New("unknown domain")
	ErrDuplicateRating   = errors.New("duplicate rating")
	ErrMissingField      = errors.New("missing field")
)

// RangeError reports a rating field outside its bound.
type RangeError struct {
	Domain string
	Field  string
	Value  int
	Min    int
	Max    int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s.%s=%d not in [%d,%d]", ErrRange, e.Domain, e.Field, e.Value, e.Min, e.Max)
}

// Is matches ErrRange.
func (e *RangeError) Is(target error) bool { return target == ErrRange }

// IncompleteProfileError lists catalog domains a profile has no rating for.
type IncompleteProfileError struct {
	Name    string
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	who := e.Name
	if who == "" {
		who = "anonymous"
	}
	return fmt.Sprintf("%s: %s is missing %s", ErrIncompleteProfile, who, strings.Join(e.Missing, ", "))
}

// Is matches ErrIncompleteProfile.
func (e *IncompleteProfileError) Is(target error) bool { return target == ErrIncompleteProfile }

// MissingFieldError reports a required rating field absent from the input.
type MissingFieldError struct {
	Domain string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s.%s", ErrMissingField, e.Domain, e.Field)
}

// Is matches ErrMissingField.
func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// UnknownDomainError reports a domain key absent from the catalog.
type UnknownDomainError struct {
	Domain string
}

func (e *UnknownDomainError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownDomain, e.Domain)
}

// Is matches ErrUnknownDomain.
func (e *UnknownDomainError) Is(target error) bool { return target == ErrUnknownDomain }

// IsInvalidInput reports whether err is one of the ingestion errors a caller
// can fix by correcting the submitted data.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrRange) ||
		errors.Is(err, ErrUnknownDomain) ||
		errors.Is(err, ErrIncompleteProfile) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrDuplicateRating)
}
