// Package testutil provides shared helpers for package tests: deterministic
// clocks and throwaway databases under t.TempDir().
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/qbacademy/qmscore/internal/clock"
	"github.com/qbacademy/qmscore/internal/store"
)

// BaseTime is the instant fixed test clocks start at.
var BaseTime = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

// NewClock returns a fixed clock pinned at BaseTime.
func NewClock() *clock.Fixed {
	return clock.NewFixed(BaseTime)
}

// OpenStore opens a fresh database in a per-test temporary directory and
// registers its Close with t.Cleanup. A nil cl selects a fixed clock at
// BaseTime so timestamps and generated names are reproducible.
func OpenStore(t *testing.T, cl clock.Clock) *store.Store {
	t.Helper()

	if cl == nil {
		cl = NewClock()
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), store.Options{Clock: cl})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}
