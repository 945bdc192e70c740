package engine

import (
	"sync"
	"time"
)

// PerformanceSample records one served operation: which backend
// actually served it and how long it took
type PerformanceSample struct {
	Op             string
	Implementation string
	Duration       time.Duration
	BatchSize      int
	Recorded       time.Time
}

// OpStats aggregates the retained samples for a single operation
type OpStats struct {
	Count       int
	MeanLatency time.Duration

	// AcceleratedRatio is the fraction of retained samples served by
	// the accelerated backend
	AcceleratedRatio float64
}

// sampleRing retains the most recent samples up to a fixed capacity,
// evicting the oldest
type sampleRing struct {
	mu      sync.Mutex
	samples []PerformanceSample
	next    int
	full    bool
}

func newSampleRing(capacity int) *sampleRing {
	if capacity < 1 {
		capacity = 1
	}
	return &sampleRing{samples: make([]PerformanceSample, capacity)}
}

func (r *sampleRing) record(s PerformanceSample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples[r.next] = s
	r.next++
	if r.next == len(r.samples) {
		r.next = 0
		r.full = true
	}
}

// snapshot returns the retained samples oldest first
func (r *sampleRing) snapshot() []PerformanceSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]PerformanceSample, r.next)
		copy(out, r.samples[:r.next])
		return out
	}

	out := make([]PerformanceSample, 0, len(r.samples))
	out = append(out, r.samples[r.next:]...)
	out = append(out, r.samples[:r.next]...)
	return out
}

func (r *sampleRing) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next = 0
	r.full = false
}

// aggregate folds the retained samples into per-op statistics
func aggregate(samples []PerformanceSample) map[string]OpStats {
	totals := make(map[string]time.Duration)
	counts := make(map[string]int)
	accel := make(map[string]int)

	for _, s := range samples {
		counts[s.Op]++
		totals[s.Op] += s.Duration
		if s.Implementation == "accelerated" {
			accel[s.Op]++
		}
	}

	stats := make(map[string]OpStats, len(counts))
	for op, count := range counts {
		stats[op] = OpStats{
			Count:            count,
			MeanLatency:      totals[op] / time.Duration(count),
			AcceleratedRatio: float64(accel[op]) / float64(count),
		}
	}
	return stats
}
