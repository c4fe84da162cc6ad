package metrics

import (
	"sync"
	"time"
)

// WindowSize is the number of samples retained per category; the oldest
// sample is evicted on overflow.
const WindowSize = 100

// Stats summarizes one category's rolling window.
type Stats struct {
	Last  float64
	Avg   float64
	Min   float64
	Max   float64
	Count int
}

// ring is a fixed-capacity sample buffer with its own lock, so recording on
// one category never contends with another.
type ring struct {
	mu      sync.Mutex
	samples [WindowSize]float64
	next    int
	count   int
	last    float64
}

func (r *ring) add(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples[r.next] = v
	r.next = (r.next + 1) % WindowSize
	if r.count < WindowSize {
		r.count++
	}
	r.last = v
}

func (r *ring) stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return Stats{}
	}

	stats := Stats{
		Last:  r.last,
		Min:   r.samples[0],
		Max:   r.samples[0],
		Count: r.count,
	}

	sum := 0.0
	for i := 0; i < r.count; i++ {
		v := r.samples[i]
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Avg = sum / float64(r.count)

	return stats
}

// Recorder collects latency samples into bounded per-category windows. The
// hot path is one map lookup plus an in-memory append; memory stays bounded
// regardless of request volume.
type Recorder struct {
	mu    sync.RWMutex
	rings map[string]*ring
}

func NewRecorder() *Recorder {
	return &Recorder{rings: make(map[string]*ring)}
}

// Record adds one duration sample, in milliseconds, to a category.
func (r *Recorder) Record(category string, durationMs float64) {
	r.mu.RLock()
	buf := r.rings[category]
	r.mu.RUnlock()

	if buf == nil {
		buf = r.ringFor(category)
	}
	buf.add(durationMs)
}

// Observe records the elapsed time since start under a category.
func (r *Recorder) Observe(category string, elapsed time.Duration) {
	r.Record(category, float64(elapsed.Nanoseconds())/1e6)
}

// Snapshot returns the current aggregate stats for every category.
func (r *Recorder) Snapshot() map[string]Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]Stats, len(r.rings))
	for category, buf := range r.rings {
		snapshot[category] = buf.stats()
	}
	return snapshot
}

func (r *Recorder) ringFor(category string) *ring {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rings[category]; ok {
		return existing
	}
	created := &ring{}
	r.rings[category] = created
	return created
}
