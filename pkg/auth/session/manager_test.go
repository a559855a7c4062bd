package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type stubStore struct {
	values map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = fmt.Sprint(value)
	return nil
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

type stubKeyer struct{}

func (stubKeyer) AccessSessionKey(accessID string) string {
	return "session:" + accessID
}

func newTestManager(store sessionStore) *Manager {
	return &Manager{store: store, keyer: stubKeyer{}, ttl: time.Hour}
}

func TestGenerateAndHasSession(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	mgr := newTestManager(store)

	token, err := mgr.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}

	ok, err := mgr.HasSession(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist")
	}

	ok, err = mgr.HasSession(context.Background(), "access-2")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatal("expected no session for unknown access id")
	}
}

func TestRotateInvalidatesOldSession(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	mgr := newTestManager(store)

	token, err := mgr.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	newAccessID, newToken, err := mgr.Rotate(context.Background(), "access-1", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newAccessID == "access-1" {
		t.Fatal("expected a fresh access id")
	}
	if newToken == token {
		t.Fatal("expected a fresh refresh token")
	}

	ok, err := mgr.HasSession(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatal("expected old session to be revoked")
	}

	ok, err = mgr.HasSession(context.Background(), newAccessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !ok {
		t.Fatal("expected new session to exist")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	mgr := newTestManager(store)

	if _, err := mgr.Generate(context.Background(), "access-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, _, err := mgr.Rotate(context.Background(), "access-1", "forged"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}

	// A failed rotation must not revoke the existing session.
	ok, err := mgr.HasSession(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !ok {
		t.Fatal("expected session to survive failed rotation")
	}
}

func TestRotateUnknownAccessID(t *testing.T) {
	t.Parallel()
	mgr := newTestManager(newStubStore())

	if _, _, err := mgr.Rotate(context.Background(), "missing", "whatever"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	mgr := newTestManager(store)

	if _, err := mgr.Generate(context.Background(), "access-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := mgr.Revoke(context.Background(), "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ok, err := mgr.HasSession(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatal("expected session to be gone after revoke")
	}
}
