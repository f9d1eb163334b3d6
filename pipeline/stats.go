package pipeline

import "time"

// Stats tracks per-session frame throughput. The FPS window resets every
// second, mirroring how the rest of the system reports rates.
type Stats struct {
	TotalFrames int

	windowFrames int
	windowStart  time.Time
	currentFPS   float64

	lastFrameStart time.Time
	lastFrameTime  time.Duration

	now func() time.Time // injectable clock for tests
}

func newStats() *Stats {
	s := &Stats{now: time.Now}
	s.windowStart = s.now()
	return s
}

func (s *Stats) frameStart() {
	s.lastFrameStart = s.now()
}

func (s *Stats) frameDone() {
	now := s.now()
	s.TotalFrames++
	s.windowFrames++
	s.lastFrameTime = now.Sub(s.lastFrameStart)

	elapsed := now.Sub(s.windowStart).Seconds()
	if elapsed >= 1.0 {
		s.currentFPS = float64(s.windowFrames) / elapsed
		s.windowFrames = 0
		s.windowStart = now
	}
}

// FPS is the processing rate measured over the last completed window.
func (s *Stats) FPS() float64 {
	return s.currentFPS
}

// LastFrameTime is the wall-clock duration of the most recent frame.
func (s *Stats) LastFrameTime() time.Duration {
	return s.lastFrameTime
}
