package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

type samplePayload struct {
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

func decodeSample(t *testing.T, body string) (*samplePayload, error) {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	return &payload, err
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	payload, err := decodeSample(t, `{"email":"buyer@example.com","quantity":2}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Email != "buyer@example.com" || payload.Quantity != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	_, err := decodeSample(t, `{`)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	_, err := decodeSample(t, `{"email":"buyer@example.com","quantity":1,"extra":true}`)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	_, err := decodeSample(t, `{"email":"not-an-email","quantity":0}`)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected string details, got %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email message %q", details["email"])
	}
	if _, ok := details["quantity"]; !ok {
		t.Fatalf("expected quantity detail, got %v", details)
	}
}
