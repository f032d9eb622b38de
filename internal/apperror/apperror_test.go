package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("Profile not found"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("status", "Status is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Invalid wraps ErrValidation",
			err:       Invalid([]FieldError{{Msg: "Skills is required", Param: "skills"}}),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("User already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream("No Github profile found"),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "wrapped NotFound still matches",
			err:       fmt.Errorf("loading profile: %w", NotFound("Profile not found")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("Profile not found"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Forbidden does NOT match ErrUnauthorized",
			err:       Forbidden("User not authorized"),
			target:    ErrUnauthorized,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound keeps the message verbatim",
			err:         NotFound("There is no profile for this user"),
			wantMessage: "There is no profile for this user",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("status", "Status is required"),
			wantMessage: "Status is required",
		},
		{
			name: "Invalid takes the first field message",
			err: Invalid([]FieldError{
				{Msg: "Status is required", Param: "status"},
				{Msg: "Skills is required", Param: "skills"},
			}),
			wantMessage: "Status is required",
		},
		{
			name:        "Invalid with no fields",
			err:         Invalid(nil),
			wantMessage: "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("Post not found")
	unwrapped := err.Unwrap()

	if unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedFields(t *testing.T) {
	err := ValidationFailed("email", "Please include a valid email")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
	if len(err.Fields) != 1 {
		t.Fatalf("len(Fields) = %d, want 1", len(err.Fields))
	}
	if err.Fields[0].Location != "body" {
		t.Errorf("Location = %q, want %q", err.Fields[0].Location, "body")
	}

	// A field-less validation error (bad credentials) carries no location.
	creds := ValidationFailed("", "Invalid Credentials")
	if creds.Fields[0].Location != "" {
		t.Errorf("Location = %q, want empty", creds.Fields[0].Location)
	}
}
