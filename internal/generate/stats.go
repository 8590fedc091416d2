package generate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/flashcard"
)

type call struct {
	at         time.Time
	durationMs int64
	failed     bool
	cards      int
}

// StatsSnapshot aggregates generator calls in the current window.
type StatsSnapshot struct {
	Calls    int     `json:"calls"`
	Failures int     `json:"failures"`
	Cards    int     `json:"cards"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// Stats tracks recent generator calls within a rolling window.
type Stats struct {
	mu     sync.Mutex
	calls  []call
	maxAge time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		calls:  make([]call, 0, 256),
		maxAge: maxAge,
	}
}

// Record adds one call. Negative durations count as zero.
func (s *Stats) Record(d time.Duration, cards int, err error) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.calls = append(s.calls, call{at: now, durationMs: ms, failed: err != nil, cards: cards})
}

func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.calls) == 0 {
		return StatsSnapshot{}
	}

	snap := StatsSnapshot{Calls: len(s.calls)}
	values := make([]int64, 0, len(s.calls))
	var sum int64
	for _, c := range s.calls {
		values = append(values, c.durationMs)
		sum += c.durationMs
		snap.Cards += c.cards
		if c.failed {
			snap.Failures++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, c := range s.calls {
		if !c.at.Before(cutoff) {
			s.calls[writeIdx] = c
			writeIdx++
		}
	}
	s.calls = s.calls[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}

// Observed records every call of the wrapped generator in Stats.
type Observed struct {
	Generator aggregate.Generator
	Stats     *Stats
}

func (o *Observed) Name() string { return NameOf(o.Generator) }

func (o *Observed) Generate(ctx context.Context, text string, maxQuestions int) ([]flashcard.Candidate, error) {
	start := time.Now()
	cands, err := o.Generator.Generate(ctx, text, maxQuestions)
	o.Stats.Record(time.Since(start), len(cands), err)
	return cands, err
}
