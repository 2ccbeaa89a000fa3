package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeValidationError, "bad summary level")
		if err.Error() != "[VALIDATION_ERROR] bad summary level" {
			t.Errorf("expected [VALIDATION_ERROR] bad summary level, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("disk full")
		err := Wrap(original, CodeIO, "write output")
		expected := "[IO_ERROR] write output: disk full"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeIO) {
			t.Error("expected IsCode to return false for CodeIO")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		err := fmt.Errorf("run: %w", Wrap(errors.New("boom"), CodeInternal, "internal failure"))
		if !IsCode(err, CodeInternal) {
			t.Error("expected IsCode to return true for wrapped CodeInternal")
		}
	})

	t.Run("NoSources", func(t *testing.T) {
		err := NoSources("/src", 3)
		if !IsCode(err, CodeNoSources) {
			t.Error("expected CodeNoSources")
		}
		if !errors.Is(err, ErrNoSources) {
			t.Error("expected errors.Is to find ErrNoSources")
		}
		expected := "[NO_SOURCES] nothing to concatenate (3 files skipped): no scannable source files map[path:/src]"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(errors.New("plain"), CtxModule, "pkg.a")
		if !IsCode(err, CodeInternal) {
			t.Error("plain errors become internal")
		}
		var de *DomainError
		if !errors.As(err, &de) || de.Context[CtxModule] != "pkg.a" {
			t.Errorf("missing context: %v", err)
		}
	})
}
