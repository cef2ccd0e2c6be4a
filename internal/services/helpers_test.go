package services

import (
	"testing"

	"centavo/internal/money"
)

// mustAmount builds a money.Amount for tests, failing on invalid input.
func mustAmount(t *testing.T, s string) money.Amount {
	t.Helper()
	a, err := money.FromString(s)
	if err != nil {
		t.Fatalf("invalid test amount %q: %v", s, err)
	}
	return a
}
