package domain

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// FieldError describes one violated constraint on a submitted field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationErrors is the structured list of violations returned by the
// entity Validate methods. A nil or empty list means the record is valid.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether a violation was recorded for field.
func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func (v *ValidationErrors) add(field, reason string) {
	*v = append(*v, FieldError{Field: field, Reason: reason})
}

func (v *ValidationErrors) required(field, value string, max int) {
	if value == "" {
		v.add(field, "is required")
		return
	}
	v.maxLen(field, value, max)
}

func (v *ValidationErrors) maxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// intRange checks a count stored in an INTEGER column.
func (v *ValidationErrors) intRange(field string, value int) {
	switch {
	case value < 0:
		v.add(field, "cannot be negative")
	case value > math.MaxInt32:
		v.add(field, fmt.Sprintf("must be at most %d", math.MaxInt32))
	}
}

// NewFieldError builds a single-field violation list.
func NewFieldError(field, reason string) ValidationErrors {
	return ValidationErrors{{Field: field, Reason: reason}}
}
