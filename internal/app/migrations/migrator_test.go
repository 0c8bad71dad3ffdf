package migrations

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestVersion(t *testing.T) {
	tests := map[string]string{
		"001_init.sql":              "001",
		"migrations/002_add_x.sql":  "002",
		"010_many_under_scores.sql": "010",
		"noprefix.sql":              "noprefix.sql",
	}
	for in, want := range tests {
		if got := Version(in); got != want {
			t.Errorf("Version(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPendingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700); err != nil {
		t.Fatal(err)
	}

	got, err := PendingFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"001_a.sql", "002_b.sql"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PendingFiles() = %v, want %v", got, want)
	}

	if _, err := PendingFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
