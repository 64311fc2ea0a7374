package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", NewError(CodeInvalidConfig, "DSN cannot be empty"), "DSN cannot be empty"},
		{"wrapped", WrapError(CodeNotStarted, "store unavailable", errors.New("dial tcp")), "store unavailable: dial tcp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("list: %w", WrapError(CodeNotStarted, "store unavailable", cause))

	if !errors.Is(err, &Error{Code: CodeNotStarted}) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(err, &Error{Code: CodeInvalidInput}) {
		t.Error("errors.Is should not match a different code")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}
