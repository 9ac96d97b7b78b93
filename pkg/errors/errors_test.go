package errors

import (
	stderrors "errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidBlock, "bad block: %s", "abc")

	if err.Code != ErrCodeInvalidBlock {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidBlock, err.Code)
	}
	if err.Message != "bad block: abc" {
		t.Errorf("unexpected message: %s", err.Message)
	}
	if err.Cause != nil {
		t.Error("expected nil cause")
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "upload failed")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if err.Error() != "NETWORK_ERROR: upload failed: connection refused" {
		t.Errorf("unexpected error string: %s", err.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeFileNotFound, "no such file")

	if !Is(err, ErrCodeFileNotFound) {
		t.Error("Is should match the error's code")
	}
	if Is(err, ErrCodeBlockNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeFileNotFound) {
		t.Error("Is should not match plain errors")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeTimeout, "slow")); got != ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %s", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("expected empty code for plain error, got %s", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidInput, "name cannot be empty")
	if got := UserMessage(err); got != "name cannot be empty" {
		t.Errorf("unexpected user message: %s", got)
	}

	plain := stderrors.New("boom")
	if got := UserMessage(plain); got != "boom" {
		t.Errorf("unexpected user message for plain error: %s", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidInput, "bad"), 400},
		{New(ErrCodeInvalidBlock, "bad"), 400},
		{New(ErrCodeUnauthorized, "bad key"), 401},
		{New(ErrCodeFileNotFound, "missing"), 404},
		{New(ErrCodeBlockNotFound, "missing"), 404},
		{New(ErrCodeVerifyFailed, "tag mismatch"), 409},
		{New(ErrCodeTimeout, "slow"), 504},
		{New(ErrCodeInternal, "boom"), 500},
		{stderrors.New("plain"), 500},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
