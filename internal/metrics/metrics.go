// Package metrics implements the optional Metrics Recorder (spec.md §4.9):
// counters per classification, lane, and handler, plus a cache hit ratio.
// It is safe for concurrent use; enabling or disabling it must never
// change the classification a caller receives (spec.md §8 "cache
// correctness").
package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"tierroute/internal/contracts"
)

// Recorder accumulates counters. The zero value is disabled; call
// SetEnabled(true) or use New(true).
type Recorder struct {
	enabled int32

	mu             sync.Mutex
	totalClassify  int64
	cacheHits      int64
	cacheMisses    int64
	tierCounts     map[contracts.Tier]int64
	handlerCounts  map[contracts.Handler]int64
}

// New creates a Recorder, enabled or not.
func New(enabled bool) *Recorder {
	r := &Recorder{
		tierCounts:    make(map[contracts.Tier]int64),
		handlerCounts: make(map[contracts.Handler]int64),
	}
	r.SetEnabled(enabled)
	return r
}

// SetEnabled toggles recording without resetting accumulated counters.
func (r *Recorder) SetEnabled(enabled bool) {
	var v int32
	if enabled {
		v = 1
	}
	atomic.StoreInt32(&r.enabled, v)
}

// Enabled reports whether the recorder is currently active.
func (r *Recorder) Enabled() bool {
	return atomic.LoadInt32(&r.enabled) == 1
}

// RecordClassification records one classification, whether it came from
// the cache or was freshly computed.
func (r *Recorder) RecordClassification(c contracts.Classification, cacheHit bool) {
	if !r.Enabled() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tierCounts == nil {
		r.tierCounts = make(map[contracts.Tier]int64)
	}
	if r.handlerCounts == nil {
		r.handlerCounts = make(map[contracts.Handler]int64)
	}
	r.totalClassify++
	if cacheHit {
		r.cacheHits++
	} else {
		r.cacheMisses++
	}
	r.tierCounts[c.Tier]++
	r.handlerCounts[c.Handler]++
}

// Reset zeroes every counter.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalClassify = 0
	r.cacheHits = 0
	r.cacheMisses = 0
	r.tierCounts = make(map[contracts.Tier]int64)
	r.handlerCounts = make(map[contracts.Handler]int64)
}

// Snapshot is an immutable point-in-time copy of the counters.
type Snapshot struct {
	TotalClassifications int64
	CacheHits            int64
	CacheMisses          int64
	CacheHitRatio        float64
	TierCounts           map[contracts.Tier]int64
	HandlerCounts        map[contracts.Handler]int64
}

// Snapshot returns a copy of the current counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	tiers := make(map[contracts.Tier]int64, len(r.tierCounts))
	for k, v := range r.tierCounts {
		tiers[k] = v
	}
	handlers := make(map[contracts.Handler]int64, len(r.handlerCounts))
	for k, v := range r.handlerCounts {
		handlers[k] = v
	}

	var ratio float64
	if total := r.cacheHits + r.cacheMisses; total > 0 {
		ratio = float64(r.cacheHits) / float64(total)
	}

	return Snapshot{
		TotalClassifications: r.totalClassify,
		CacheHits:            r.cacheHits,
		CacheMisses:          r.cacheMisses,
		CacheHitRatio:        ratio,
		TierCounts:           tiers,
		HandlerCounts:        handlers,
	}
}

// Describe renders a human-readable one-line summary of the snapshot,
// using go-humanize so large counters in long-lived processes stay
// readable (e.g. "1,234,567" rather than "1234567").
func (s Snapshot) Describe() string {
	return humanize.Comma(s.TotalClassifications) + " classifications, " +
		humanize.Comma(s.CacheHits) + " cache hits, " +
		humanize.Comma(s.CacheMisses) + " cache misses"
}
