package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsKind(t *testing.T) {
	err := Invalid("cpc", "must be greater than zero, got %v", 0.0)

	if !errors.Is(err, InvalidInput) {
		t.Fatal("expected errors.Is to match InvalidInput")
	}
	if errors.Is(err, DivisionByZero) {
		t.Fatal("did not expect errors.Is to match DivisionByZero")
	}

	wrapped := fmt.Errorf("failed to build plan: %w", err)
	if !errors.Is(wrapped, InvalidInput) {
		t.Fatal("expected wrapped error to match InvalidInput")
	}
	if KindOf(wrapped) != InvalidInput {
		t.Fatalf("KindOf() = %q", KindOf(wrapped))
	}
	if FieldOf(wrapped) != "cpc" {
		t.Fatalf("FieldOf() = %q", FieldOf(wrapped))
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"With field", Invalid("targetAov", "must be greater than zero"), "InvalidInput: targetAov: must be greater than zero"},
		{"Without field", New(InsufficientData, "", "no metrics reported"), "InsufficientData: no metrics reported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Error() = %q, expected %q", tt.err.Error(), tt.expected)
			}
		})
	}
}

func TestUnclassifiedError(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != "" || FieldOf(err) != "" {
		t.Fatal("expected empty kind and field for plain error")
	}
}
