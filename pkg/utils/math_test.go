package utils

import "testing"

func TestClampFloat64(t *testing.T) {
	if got := ClampFloat64(5, 0, 10); got != 5 {
		t.Fatalf("expected 5, got %f", got)
	}
	if got := ClampFloat64(-1, 0, 10); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
	if got := ClampFloat64(11, 0, 10); got != 10 {
		t.Fatalf("expected 10, got %f", got)
	}
}

func TestRound(t *testing.T) {
	if got := Round(3.14159, 2); got != 3.14 {
		t.Fatalf("expected 3.14, got %f", got)
	}
	if got := Round(2.675, 0); got != 3 {
		t.Fatalf("expected 3, got %f", got)
	}
	if got := Round(1.005, 1); got != 1.0 {
		t.Fatalf("expected 1.0, got %f", got)
	}
}
