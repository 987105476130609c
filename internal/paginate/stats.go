package paginate

import (
	"sort"
	"sync"
	"time"
)

type passSample struct {
	timestamp time.Time
	duration  time.Duration
	action    Action
}

// StatsSnapshot aggregates pass latencies and outcomes.
type StatsSnapshot struct {
	Count   int     `json:"count"`
	MinMs   float64 `json:"min_ms"`
	MaxMs   float64 `json:"max_ms"`
	AvgMs   float64 `json:"avg_ms"`
	P50Ms   float64 `json:"p50_ms"`
	P95Ms   float64 `json:"p95_ms"`
	P99Ms   float64 `json:"p99_ms"`
	Inserts int     `json:"inserts"`
	Prunes  int     `json:"prunes"`
	NoOps   int     `json:"no_ops"`
	Aborted int     `json:"aborted"`
}

// PassStats keeps pagination passes from a rolling window. It can be shared
// by many controllers.
type PassStats struct {
	mu      sync.Mutex
	samples []passSample
	maxAge  time.Duration
}

func NewPassStats(maxAge time.Duration) *PassStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &PassStats{
		samples: make([]passSample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *PassStats) Record(d time.Duration, action Action) {
	if d < 0 {
		d = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, passSample{timestamp: now, duration: d, action: action})
}

func (s *PassStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	var snap StatsSnapshot
	values := make([]float64, 0, len(s.samples))
	var sum float64
	for _, sm := range s.samples {
		ms := float64(sm.duration) / float64(time.Millisecond)
		values = append(values, ms)
		sum += ms
		switch sm.action {
		case ActionInsert:
			snap.Inserts++
		case ActionPrune:
			snap.Prunes++
		case ActionAborted:
			snap.Aborted++
		default:
			snap.NoOps++
		}
	}
	sort.Float64s(values)

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = sum / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *PassStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return sorted[0]
	}
	if pct >= 100 {
		return sorted[len(sorted)-1]
	}

	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}
