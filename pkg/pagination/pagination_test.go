package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}

	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d, want 11", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 8, 14, 10, 30, 0, 123456789, time.UTC)
	id := uuid.New()

	encoded := EncodeCursor(Cursor{CreatedAt: createdAt, ID: id})
	if encoded == "" {
		t.Fatal("expected non-empty cursor")
	}

	cursor, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor == nil {
		t.Fatal("expected cursor")
	}
	if !cursor.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at %v, got %v", createdAt, cursor.CreatedAt)
	}
	if cursor.ID != id {
		t.Fatalf("expected id %s, got %s", id, cursor.ID)
	}
}

func TestParseCursorEmptyMeansNoCursor(t *testing.T) {
	t.Parallel()

	cursor, err := ParseCursor("")
	if err != nil {
		t.Fatalf("parse empty cursor: %v", err)
	}
	if cursor != nil {
		t.Fatal("expected nil cursor for empty input")
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"not-base64!", "bm90LWEtY3Vyc29y"} {
		if _, err := ParseCursor(raw); err == nil {
			t.Fatalf("expected error for cursor %q", raw)
		}
	}
}
