// Package profiler - lightweight per-stage timing for the frame loop.
package profiler

import (
	"log"
	"sort"
	"sync"
	"time"
)

// StageProfiler tracks wall-clock timings for named pipeline stages
// (decode, detect, track, draw). It keeps a bounded sample window per
// stage so long runs report recent behavior, not the startup transient.
type StageProfiler struct {
	mu         sync.Mutex
	maxSamples int
	startTime  time.Time
	stages     map[string]*stageStats
}

type stageStats struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// New creates a profiler keeping at most maxSamples recent timings per
// stage. maxSamples <= 0 selects a default of 600.
func New(maxSamples int) *StageProfiler {
	if maxSamples <= 0 {
		maxSamples = 600
	}
	return &StageProfiler{
		maxSamples: maxSamples,
		startTime:  time.Now(),
		stages:     make(map[string]*stageStats),
	}
}

// StartStage begins timing a stage. Call the returned function when the
// stage completes:
//
//	defer p.StartStage("detect")()
func (p *StageProfiler) StartStage(name string) func() {
	start := time.Now()
	return func() {
		p.record(name, time.Since(start))
	}
}

func (p *StageProfiler) record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stages[name]
	if !ok {
		s = &stageStats{minTime: d, maxTime: d}
		p.stages[name] = s
	}

	s.durations = append(s.durations, d)
	if len(s.durations) > p.maxSamples {
		s.totalTime -= s.durations[0]
		s.durations = s.durations[1:]
	}

	s.totalTime += d
	s.count++
	if d < s.minTime {
		s.minTime = d
	}
	if d > s.maxTime {
		s.maxTime = d
	}
}

// StageSummary is a snapshot of one stage's timing statistics over the
// sample window.
type StageSummary struct {
	Name  string
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	Count int64
}

// Summaries returns per-stage statistics sorted by stage name.
func (p *StageProfiler) Summaries() []StageSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]StageSummary, 0, len(p.stages))
	for name, s := range p.stages {
		if len(s.durations) == 0 {
			continue
		}
		out = append(out, StageSummary{
			Name:  name,
			Avg:   s.totalTime / time.Duration(len(s.durations)),
			Min:   s.minTime,
			Max:   s.maxTime,
			Count: s.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report logs a timing summary for every stage.
func (p *StageProfiler) Report() {
	summaries := p.Summaries()
	if len(summaries) == 0 {
		return
	}

	log.Printf("stage timings after %v:", time.Since(p.startTime).Truncate(time.Millisecond))
	for _, s := range summaries {
		log.Printf("  %-8s avg=%v min=%v max=%v count=%d",
			s.Name,
			s.Avg.Truncate(time.Microsecond),
			s.Min.Truncate(time.Microsecond),
			s.Max.Truncate(time.Microsecond),
			s.Count)
	}
}
