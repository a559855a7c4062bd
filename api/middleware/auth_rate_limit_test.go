package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRateStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.counts))
	for k := range f.counts {
		out = append(out, k)
	}
	return out
}

func authRequest(body, remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	return req
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRateLimit_AllowsUnderLimit(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The body must still be readable downstream after the email check.
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"tester@example.com"`) {
			t.Fatalf("unexpected body: %s", string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest(`{"email":"tester@example.com","password":"secret"}`, "1.2.3.4:5678"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRateLimit_EmailLimitTriggers(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	body := `{"email":"blocked@example.com","password":"secret"}`
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authRequest(body, "1.2.3.4:5678"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected success before limit, got %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest(body, "1.2.3.4:5678"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
		t.Fatalf("unexpected code: %s", payload.Error.Code)
	}
}

func TestAuthRateLimit_IPLimitTriggers(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("register", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, authRequest(`{"email":"foo@example.com"}`, "5.6.7.8:1234"))
	if first.Code != http.StatusOK {
		t.Fatalf("expected success, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, authRequest(`{"email":"foo@example.com"}`, "5.6.7.8:1234"))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}

func TestAuthRateLimit_KeyFormats(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("Login", time.Minute, 5, 5)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), authRequest(`{"email":"tester@example.com"}`, "1.2.3.4:5678"))

	var sawIP, sawEmail bool
	for _, key := range store.keys() {
		switch {
		case key == "rl:ip:login:1.2.3.4":
			sawIP = true
		case strings.HasPrefix(key, "rl:email:login:"):
			// Hashed, never the raw address.
			if strings.Contains(key, "tester@example.com") {
				t.Fatalf("email stored in plaintext: %s", key)
			}
			sawEmail = true
		}
	}
	if !sawIP || !sawEmail {
		t.Fatalf("missing expected counter keys, got %v", store.keys())
	}
}

func TestAuthRateLimit_EmailCaseInsensitive(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), authRequest(`{"email":"Mixed@Example.com"}`, "1.2.3.4:5678"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest(`{"email":"mixed@example.com"}`, "9.9.9.9:5678"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for case variant of same email, got %d", rec.Code)
	}
}

func TestAuthRateLimit_DisabledPolicyPassesThrough(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("login", 0, 0, 0)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authRequest(`{"email":"any@example.com"}`, "1.2.3.4:5678"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 with disabled policy, got %d", rec.Code)
		}
	}
	if len(store.keys()) != 0 {
		t.Fatalf("disabled policy must not touch the store, got %v", store.keys())
	}
}
