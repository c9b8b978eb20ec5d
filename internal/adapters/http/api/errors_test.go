package api

import (
	"errors"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")

	err := WrapKind("api.op", ErrBadRequest, cause)
	if !errors.Is(err, ErrBadRequest) || !errors.Is(err, cause) {
		t.Fatalf("expected kind and cause to match, got %v", err)
	}
	if got := err.Error(); got != "api.op: bad request: boom" {
		t.Errorf("unexpected message %q", got)
	}

	if got := NewKind("api.gate", ErrUnauthorized).Error(); got != "api.gate: unauthorized" {
		t.Errorf("unexpected message %q", got)
	}
	if Wrap("api.op", nil) != nil {
		t.Error("expected Wrap(nil) to be nil")
	}
	var apiErr *Error
	if !errors.As(Wrap("api.op", cause), &apiErr) || apiErr.Op != "api.op" {
		t.Errorf("expected *Error with op, got %v", apiErr)
	}
}
