package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := NotFound("client", 42)

	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(%v, ErrNotFound) = false, want true", err)
	}
	if stderrors.Is(err, ErrForbidden) {
		t.Errorf("errors.Is(%v, ErrForbidden) = true, want false", err)
	}
}

func TestIsThroughWrapping(t *testing.T) {
	inner := Forbidden("role %q is not allowed", "support")
	wrapped := fmt.Errorf("update event: %w", inner)

	if !stderrors.Is(wrapped, ErrForbidden) {
		t.Error("wrapped forbidden error should match ErrForbidden")
	}
	if got := CodeOf(wrapped); got != ErrCodeForbidden {
		t.Errorf("CodeOf() = %v, want %v", got, ErrCodeForbidden)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, ErrCodeInternal, "failed to save token")

	if !stderrors.Is(err, cause) {
		t.Error("Wrap() should keep the cause in the chain")
	}
	if got, want := err.Error(), "failed to save token: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(stderrors.New("boom")); got != ErrCodeInternal {
		t.Errorf("CodeOf() = %v, want %v", got, ErrCodeInternal)
	}
}

func TestErrorMessageDefaultsToCode(t *testing.T) {
	if got := ErrNoSession.Error(); got != "NO_SESSION" {
		t.Errorf("Error() = %q, want NO_SESSION", got)
	}
}
