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
			err:       NotFound("article", "how-to-train-your-dragon"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFoundOrForbidden wraps ErrNotFound",
			err:       NotFoundOrForbidden("comment", "c1"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "email already taken"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("token expired"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "wrapped with fmt.Errorf still matches",
			err:       fmt.Errorf("service/article: %w", NotFound("article", "x")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrForbidden",
			err:       NotFound("article", "x"),
			target:    ErrForbidden,
			wantMatch: false,
		},
		{
			name:      "Unauthorized does NOT match ErrForbidden",
			err:       Unauthorized("no token"),
			target:    ErrForbidden,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
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
			name:        "NotFound message includes resource and key",
			err:         NotFound("profile", "jake"),
			wantMessage: "profile not found: jake",
		},
		{
			name:        "Conflict message includes resource",
			err:         Conflict("article", "slug already in use"),
			wantMessage: "article conflict: slug already in use",
		},
		{
			name:        "Invalid joins field messages in field order",
			err:         Invalid(map[string]string{"username": "username is required", "email": "email is required"}),
			wantMessage: "email is required; username is required",
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

func TestFieldErrors(t *testing.T) {
	single := fmt.Errorf("wrapped: %w", ValidationFailed("tagList", "tag names cannot contain commas"))
	got := FieldErrors(single)
	if got["tagList"] != "tag names cannot contain commas" {
		t.Errorf("FieldErrors(single) = %v", got)
	}

	multi := Invalid(map[string]string{"email": "email is required"})
	if got := FieldErrors(multi); len(got) != 1 || got["email"] == "" {
		t.Errorf("FieldErrors(multi) = %v", got)
	}

	if got := FieldErrors(errors.New("plain")); got != nil {
		t.Errorf("FieldErrors(plain) = %v, want nil", got)
	}
	if got := FieldErrors(NotFound("article", "x")); got != nil {
		t.Errorf("FieldErrors(not found) = %v, want nil", got)
	}
}
