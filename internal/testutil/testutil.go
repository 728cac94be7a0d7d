// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/banshee-data/tomograph/internal/tomo"
	"github.com/banshee-data/tomograph/internal/tomodb"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// NewTestGrid builds a small deterministic grid for tests. Seeded RNG
// keeps every run identical.
func NewTestGrid(t *testing.T) *tomo.Grid {
	t.Helper()
	return tomo.NewGrid(tomo.GridParams{Size: 10, SparseFactor: 4, Harmonics: 9, Seed: 42})
}

// NewTestDB opens a migrated cycle store in a temp directory and closes
// it when the test finishes.
func NewTestDB(t *testing.T) *tomodb.DB {
	t.Helper()
	db, err := tomodb.Open(filepath.Join(t.TempDir(), "tomograph_test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
