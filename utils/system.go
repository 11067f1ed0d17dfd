package utils

import (
	"github.com/shirou/gopsutil/v3/cpu"

	"golfwear-extractor/internal/types"
)

const (
	fallbackWorkers = 2
	maxAutoWorkers  = 4
)

// WorkerCount returns the configured page concurrency, or sizes it from the
// logical CPU count when configured is 0. Each worker is a browser tab, so
// the automatic value stays small.
func WorkerCount(configured int, logger types.Logger) int {
	if configured > 0 {
		return configured
	}

	cores, err := cpu.Counts(true)
	if err != nil || cores <= 0 {
		logger.Warnf("Could not detect CPU cores, falling back to %d concurrent pages", fallbackWorkers)
		return fallbackWorkers
	}

	n := cores / 2
	if n < 1 {
		n = 1
	}
	if n > maxAutoWorkers {
		n = maxAutoWorkers
	}

	logger.Infof("System has %d logical cores, using %d concurrent pages", cores, n)
	return n
}
