package diagnostics

import (
	"fmt"
	"testing"
)

func TestDiagnosticErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *DiagnosticError
		want string
	}{
		{
			"with position",
			NewError(ErrP002, Position{Offset: 5, Line: 1, Column: 6}, "b", "b"),
			"1:6: error [P002]: undefined reference: b is not defined",
		},
		{
			"with file",
			func() *DiagnosticError {
				e := NewError(ErrP001, Position{Line: 2, Column: 1}, "", "expected ')'")
				e.File = "f.ljson"
				return e
			}(),
			"f.ljson:2:1: error [P001]: syntax error: expected ')'",
		},
		{
			"runtime without position",
			NewError(ErrR002, Position{}, "", "exec"),
			"error [R002]: unknown primitive: exec",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeOfWrapped(t *testing.T) {
	base := NewError(ErrP003, Position{Line: 1, Column: 3}, `\q`, `\q`)
	wrapped := fmt.Errorf("loading term: %w", base)

	if got := CodeOf(wrapped); got != ErrP003 {
		t.Errorf("CodeOf = %q, want %q", got, ErrP003)
	}
	if !Is(wrapped, ErrP003) {
		t.Error("Is(wrapped, P003) = false")
	}
	if !IsParseError(wrapped) {
		t.Error("IsParseError(wrapped) = false")
	}
	if IsParseError(NewError(ErrR001, Position{}, "", "1")) {
		t.Error("runtime error reported as parse error")
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("plain error should have no code")
	}
}
