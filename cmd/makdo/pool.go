package main

import (
	"errors"
	"fmt"
	"runtime"
)

// Worker bounds.
const (
	minWorkers = 1
	maxWorkers = 8
	cpuDivisor = 2
)

// ErrInvalidWorkerCount is returned for --workers outside 0..maxWorkers.
var ErrInvalidWorkerCount = errors.New("invalid worker count")

// resolvePoolSize determines the number of conversion workers.
// Priority: explicit flag > GOMAXPROCS-based calculation.
func resolvePoolSize(flagWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return min(max(n, minWorkers), maxWorkers)
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > maxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, maxWorkers)
	}
	return nil
}
