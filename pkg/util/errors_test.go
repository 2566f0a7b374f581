package util

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("vc-count must be positive")
		if got := err.Error(); got != "validation failed: vc-count must be positive" {
			t.Errorf("Error() = %q", got)
		}
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidationError should unwrap to ErrValidationFailed")
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("field1 is required", "field2 is invalid")
		msg := err.Error()
		if !strings.Contains(msg, "\n  - field1") || !strings.Contains(msg, "\n  - field2") {
			t.Errorf("Error message should list all errors: %s", msg)
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("building system: %w", NewValidationError("bad"))
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("errors.As should find *ValidationError in %v", err)
		}
		if len(ve.Errors) != 1 {
			t.Errorf("len(Errors) = %d, want 1", len(ve.Errors))
		}
	})
}

func TestValidationBuilder(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		v := &ValidationBuilder{}
		v.Add(true, "this should not appear")
		v.AddErr(nil)

		if v.HasErrors() {
			t.Error("Should not have errors when all conditions are true")
		}
		if err := v.Build(); err != nil {
			t.Errorf("Build() should return nil when no errors: %v", err)
		}
	})

	t.Run("with errors", func(t *testing.T) {
		v := &ValidationBuilder{}
		v.Add(false, "first error")
		v.Add(true, "this passes")
		v.AddErrorf("formatted error: %d", 42)
		v.AddErr(errors.New("from error"))

		err := v.Build()
		if err == nil {
			t.Fatal("Build() should return error")
		}

		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("Expected *ValidationError, got %T", err)
		}
		if len(ve.Errors) != 3 {
			t.Errorf("Expected 3 errors, got %d: %v", len(ve.Errors), ve.Errors)
		}
		if msgs := v.Messages(); len(msgs) != 3 || msgs[2] != "from error" {
			t.Errorf("Messages() = %v", msgs)
		}
	})
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrInvalidConfig, ErrValidationFailed}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v == %v", err1, err2)
			}
		}
	}
}
