package security

import (
	"strings"
	"testing"

	"github.com/ortizlabs/storefront-backend/pkg/config"
)

func testPasswordConfig() config.PasswordConfig {
	// Low-cost parameters keep the test fast.
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple", testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("verify wrong password: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword("", testPasswordConfig()); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	for _, encoded := range []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=8192,t=1,p=1$onlyfourparts",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
	} {
		if _, err := VerifyPassword("password", encoded); err == nil {
			t.Fatalf("expected error for malformed hash %q", encoded)
		}
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	t.Parallel()

	cfg := testPasswordConfig()
	first, err := HashPassword("password123", cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("password123", cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct salts to produce distinct hashes")
	}
}
