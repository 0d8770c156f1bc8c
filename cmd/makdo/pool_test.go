package main

import (
	"errors"
	"runtime"
	"testing"
)

// ---------------------------------------------------------------------------
// TestResolvePoolSize - Worker count
// ---------------------------------------------------------------------------

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	if got := resolvePoolSize(3); got != 3 {
		t.Errorf("resolvePoolSize(3) = %d, want 3", got)
	}

	want := min(max(runtime.GOMAXPROCS(0)/cpuDivisor, minWorkers), maxWorkers)
	if got := resolvePoolSize(0); got != want {
		t.Errorf("resolvePoolSize(0) = %d, want %d", got, want)
	}
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n       int
		wantErr bool
	}{
		{0, false},
		{1, false},
		{maxWorkers, false},
		{-1, true},
		{maxWorkers + 1, true},
	}

	for _, tt := range tests {
		err := validateWorkers(tt.n)
		if tt.wantErr != (err != nil) {
			t.Errorf("validateWorkers(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) error = %v, want ErrInvalidWorkerCount", tt.n, err)
		}
	}
}
