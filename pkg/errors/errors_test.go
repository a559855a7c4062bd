package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := map[Code]Metadata{
		CodeValidation:    {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true},
		CodeUnauthorized:  {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required"},
		CodeForbidden:     {HTTPStatus: http.StatusForbidden, PublicMessage: "access denied"},
		CodeNotFound:      {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found"},
		CodeConflict:      {HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected"},
		CodeStateConflict: {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "state transition disallowed", DetailsAllowed: true},
		CodeIdempotency:   {HTTPStatus: http.StatusConflict, PublicMessage: "idempotency key reused", DetailsAllowed: true},
		CodeRateLimit:     {HTTPStatus: http.StatusTooManyRequests, PublicMessage: "rate limit exceeded"},
		CodeInternal:      {HTTPStatus: http.StatusInternalServerError, PublicMessage: "internal server error", Retryable: true},
		CodeDependency:    {HTTPStatus: http.StatusServiceUnavailable, PublicMessage: "dependency unavailable", Retryable: true, DetailsAllowed: true},
	}

	for code, want := range tests {
		t.Run(string(code), func(t *testing.T) {
			got := MetadataFor(code)
			if got != want {
				t.Fatalf("MetadataFor(%s) = %+v, want %+v", code, got, want)
			}
		})
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	if meta := MetadataFor("SOMETHING_UNKNOWN"); meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestNewAndWithDetails(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation || base.Message() != "missing foo" {
		t.Fatalf("unexpected error %s %q", base.Code(), base.Message())
	}
	if base.Details() != nil {
		t.Fatal("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatal("details should be preserved")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatal("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatal("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatal("As(nil) should return nil")
	}
}
