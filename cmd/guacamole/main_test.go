package main

import (
	"os"
	"path/filepath"
	"testing"
)

// This test drives the CLI handler end to end on temporary source files,
// checking the exit status of each pass combination. The printed output is
// covered by the evaluator tests, here we only care that the right pipeline
// runs and fails where it should.
func TestGuacamoleHandler(t *testing.T) {
	write := func(t *testing.T, source string) string {
		t.Helper()

		path := filepath.Join(t.TempDir(), "program.guac")
		if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
			t.Fatalf("failed to write the fixture: %v", err)
		}
		return path
	}

	t.Run("A valid program evaluates", func(t *testing.T) {
		path := write(t, "funk add(x, y){ return x+y; }; add(3,4);")

		if status := Handler([]string{path}, map[string]string{}); status != 0 {
			t.Errorf("expected exit status 0, got %d", status)
		}
	})

	t.Run("Check mode stops before evaluation", func(t *testing.T) {
		path := write(t, "a=1; while(a<10){ a=a*2; }; a;")

		if status := Handler([]string{path}, map[string]string{"check": "true"}); status != 0 {
			t.Errorf("expected exit status 0, got %d", status)
		}
	})

	t.Run("Parse errors fail the run", func(t *testing.T) {
		path := write(t, "while(1) { 1; ")

		if status := Handler([]string{path}, map[string]string{}); status != -1 {
			t.Errorf("expected exit status -1, got %d", status)
		}
	})

	t.Run("Semantic errors fail the run", func(t *testing.T) {
		path := write(t, "break;")

		if status := Handler([]string{path}, map[string]string{}); status != -1 {
			t.Errorf("expected exit status -1, got %d", status)
		}
	})

	t.Run("Missing arguments and unreadable files", func(t *testing.T) {
		if status := Handler([]string{}, map[string]string{}); status != -1 {
			t.Errorf("expected exit status -1 without arguments, got %d", status)
		}

		missing := filepath.Join(t.TempDir(), "nope.guac")
		if status := Handler([]string{missing}, map[string]string{}); status != -1 {
			t.Errorf("expected exit status -1 for a missing file, got %d", status)
		}
	})
}
