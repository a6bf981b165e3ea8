package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_UnwrapsToSentinel(t *testing.T) {
	err := NewValidationError("username", "must not be empty")

	if !errors.Is(err, ErrValidation) {
		t.Error("expected errors.Is(err, ErrValidation) to hold")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected errors.As to find *ValidationError")
	}
	if ve.Errors[0].Field != "username" {
		t.Errorf("field = %q, expected %q", ve.Errors[0].Field, "username")
	}
}

func TestValidationError_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("create user: %w", NewValidationError("password", "too short"))
	if !errors.Is(err, ErrValidation) {
		t.Error("wrapped validation error lost its sentinel")
	}
}

func TestValidationError_Message(t *testing.T) {
	single := NewValidationError("email", "malformed")
	if got := single.Error(); got != "validation: email: malformed" {
		t.Errorf("Error() = %q", got)
	}

	multi := &ValidationError{Errors: []FieldError{
		{Field: "a", Message: "x"},
		{Field: "b", Message: "y"},
	}}
	if got := multi.Error(); got != "validation: 2 errors" {
		t.Errorf("Error() = %q", got)
	}
}
