package probe

import (
	"context"
	"fmt"
	"runtime"

	"github.com/jonwraymond/healthgraph/graph"
)

// MemoryConfig configures the process-memory check.
type MemoryConfig struct {
	// WarningThreshold is the allocation ratio that degrades the status.
	// Value should be between 0 and 1. Default: 0.8 (80%)
	WarningThreshold float64

	// CriticalThreshold is the allocation ratio that marks the status
	// unhealthy. Value should be between 0 and 1. Default: 0.95 (95%)
	CriticalThreshold float64

	// MaxAlloc is the maximum expected allocation in bytes. Zero uses the
	// memory obtained from the OS as the ceiling.
	MaxAlloc uint64
}

// Memory returns a check reporting the process's heap pressure: healthy
// below the warning threshold, degraded between the thresholds, unhealthy
// at or above the critical threshold.
func Memory(config MemoryConfig) graph.CheckFunc {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold + 0.1
		if config.CriticalThreshold > 1 {
			config.CriticalThreshold = 0.99
		}
	}

	return func(ctx context.Context) (graph.Evaluation, error) {
		select {
		case <-ctx.Done():
			return graph.Evaluation{}, ctx.Err()
		default:
		}

		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)

		maxAlloc := config.MaxAlloc
		if maxAlloc == 0 {
			maxAlloc = stats.Sys
		}
		if maxAlloc == 0 {
			return graph.Healthy("memory stats unavailable"), nil
		}

		ratio := float64(stats.Alloc) / float64(maxAlloc)
		switch {
		case ratio >= config.CriticalThreshold:
			return graph.Unhealthy(fmt.Sprintf("memory usage critical: %.1f%%", ratio*100)), nil
		case ratio >= config.WarningThreshold:
			return graph.Degraded(fmt.Sprintf("memory usage high: %.1f%%", ratio*100)), nil
		default:
			return graph.Healthy(fmt.Sprintf("memory usage normal: %.1f%%", ratio*100)), nil
		}
	}
}
