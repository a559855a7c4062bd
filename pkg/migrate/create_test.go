package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateSQLMigrationWritesGooseTemplate(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Loyalty Points!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasSuffix(base, "_add_loyalty_points.sql") {
		t.Fatalf("unexpected filename %q", base)
	}
	if !sqlFileRe.MatchString(base) {
		t.Fatalf("filename %q does not follow the naming convention", base)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down", "-- +goose StatementBegin"} {
		if !strings.Contains(string(content), marker) {
			t.Fatalf("expected %q in template, got:\n%s", marker, content)
		}
	}
}

func TestCreateSQLMigrationRejectsEmptyInputs(t *testing.T) {
	if _, err := CreateSQLMigration("", "name"); err == nil {
		t.Fatal("expected error for empty dir")
	}
	if _, err := CreateSQLMigration(t.TempDir(), ""); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := CreateSQLMigration(t.TempDir(), "!!!"); err == nil {
		t.Fatal("expected error for name with no usable characters")
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	// Tests run from the package directory, not the repo root.
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations should validate: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "not_versioned.sql"), []byte("select 1;"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for unversioned filename")
	}
}

func TestValidateDirRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"20250901100000_one.sql", "20250901100000_two.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for duplicate version")
	}
}

func TestValidateDirRejectsEmptyDir(t *testing.T) {
	if err := ValidateDir(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without migrations")
	}
}
