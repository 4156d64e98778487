package errors

import (
	"strings"
	"unicode"
)

// ValidateRoomID validates a caller-supplied room identifier.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - Maximum length of 128 characters
func ValidateRoomID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "room id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "room id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "room id %q contains whitespace or control characters", id)
		}
	}
	return nil
}

// ValidateLayoutName validates a layout display name.
func ValidateLayoutName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "layout name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "layout name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "layout name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePositive validates that a numeric constraint is positive when set.
// Zero means "not set" and passes.
func ValidatePositive(field string, v float64) error {
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative (got %g)", field, v)
	}
	return nil
}
