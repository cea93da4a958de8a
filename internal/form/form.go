// Package form turns raw text field input into typed values. Invalid input
// is an explicit *FieldError result rather than a NaN-style sentinel, so
// editors can show the failing field and keep the user's input intact.
package form

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldError describes a single invalid form field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// RequiredString trims the input and fails when nothing remains.
func RequiredString(field, raw string) (string, *FieldError) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", &FieldError{Field: field, Reason: "is required"}
	}
	return v, nil
}

// Int parses a required decimal integer field.
func Int(field, raw string) (int, *FieldError) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, &FieldError{Field: field, Reason: "is required"}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &FieldError{Field: field, Reason: "must be a number"}
	}
	return n, nil
}

// Uint parses a required non-negative decimal integer field.
func Uint(field, raw string) (uint32, *FieldError) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, &FieldError{Field: field, Reason: "is required"}
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, &FieldError{Field: field, Reason: "must be a non-negative number"}
	}
	return uint32(n), nil
}

// FrameID parses a CAN identifier entered either as decimal or with a 0x
// hex prefix.
func FrameID(field, raw string) (uint32, *FieldError) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, &FieldError{Field: field, Reason: "is required"}
	}
	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		return 0, &FieldError{Field: field, Reason: "must be a frame ID like 0x1F4 or 500"}
	}
	return uint32(n), nil
}

// Float parses a decimal number field. An empty input yields the fallback,
// matching the original form behavior where scaling fields default rather
// than fail.
func Float(field, raw string, fallback float64) (float64, *FieldError) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &FieldError{Field: field, Reason: "must be a number"}
	}
	return f, nil
}

// IntOr parses an optional integer field, yielding the fallback when empty.
func IntOr(field, raw string, fallback int) (int, *FieldError) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &FieldError{Field: field, Reason: "must be a number"}
	}
	return n, nil
}
