package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(ErrCodeUnknownType, "no node type %q registered", "hexagon")
	if want := `UNKNOWN_TYPE: no node type "hexagon" registered`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	cause := errors.New("unexpected EOF")
	wrapped := Wrap(ErrCodeInvalidFormat, cause, "decode %s", "flow.json")
	if want := "INVALID_FORMAT: decode flow.json: unexpected EOF"; wrapped.Error() != want {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), want)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error does not unwrap to its cause")
	}
}

func TestCodeSurvivesFmtWrapping(t *testing.T) {
	// Script replay wraps element errors with the failing op.
	inner := New(ErrCodeMissingElement, "node %q not found", "n9")
	err := fmt.Errorf("op %d (%s): %w", 3, "move", inner)

	if !Is(err, ErrCodeMissingElement) {
		t.Errorf("Is(%v, MISSING_ELEMENT) = false", err)
	}
	if got := GetCode(err); got != ErrCodeMissingElement {
		t.Errorf("GetCode() = %q", got)
	}
	if got := UserMessage(err); got != `node "n9" not found` {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := HTTPStatus(err); got != 404 {
		t.Errorf("HTTPStatus() = %d, want 404", got)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching", New(ErrCodeInvalidInput, "x"), ErrCodeInvalidInput, true},
		{"other code", New(ErrCodeInvalidInput, "x"), ErrCodeMissingElement, false},
		{"outermost code wins", Wrap(ErrCodeMissingElement, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeMissingElement, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlainErrors(t *testing.T) {
	plain := errors.New("disk full")
	if got := GetCode(plain); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %q, want empty", got)
	}
	if got := UserMessage(plain); got != "disk full" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidInput, 400},
		{ErrCodeInvalidID, 400},
		{ErrCodeInvalidType, 400},
		{ErrCodeUnknownType, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeMissingElement, 404},
		{ErrCodeFileNotFound, 404},
		{ErrCodeUnsupported, 501},
		{ErrCodeTimeout, 504},
		{ErrCodeNetwork, 500},
		{ErrCodeInternal, 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatus(New(tt.code, "x")); got != tt.want {
				t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
	if got := HTTPStatus(errors.New("plain")); got != 500 {
		t.Errorf("HTTPStatus(plain) = %d, want 500", got)
	}
}
