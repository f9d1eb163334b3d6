// Package pipeline - per-frame orchestration of detection, tracking, and
// counting for one video session.
package pipeline

import (
	"image"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-traffic/detector"
	"github.com/nvr-ai/go-traffic/tracker"
)

// Mode selects the counting policy for the whole session. The choice is made
// once at construction, from whether a valid zone polygon is configured;
// policies are never mixed within a session.
type Mode string

const (
	// ModeZone counts vehicles moving through a polygonal zone.
	ModeZone Mode = "zone"
	// ModeLine is the fallback: a fixed horizontal counting line.
	ModeLine Mode = "line"
)

// Config assembles a session. Exactly one counting mode results: a non-nil
// Zone selects zone mode, otherwise LineY must be positive and line mode is
// used.
type Config struct {
	// Tracker tuning; zero values take the tracker defaults.
	Tracker tracker.Config
	// Zone is the monitored polygon, already validated by the config
	// loader. Nil means line mode.
	Zone tracker.Polygon
	// LineY is the counting line for line mode, ignored in zone mode.
	LineY float32
	// MinZoneMovement overrides the zone policy's movement threshold.
	MinZoneMovement float32
	// DirectionFilter gates zone counting on the approach-direction check.
	DirectionFilter bool
}

// Session owns one camera feed's tracking and counting state: the live track
// set, the active policy, and the running totals. Sessions are fully
// isolated from each other; parallelism across feeds means one Session per
// goroutine, never shared. Within a session, frames are processed strictly
// in order.
type Session struct {
	ID   uuid.UUID
	Mode Mode

	tracks *tracker.Tracker
	policy tracker.Policy
	zone   tracker.Polygon

	frame        int
	total        int
	totalByClass map[string]int
	stats        *Stats
}

// NewSession builds a session from the configuration. An invalid
// configuration (no zone and no usable line) is rejected up front, before
// any frame is processed.
func NewSession(cfg Config) (*Session, error) {
	s := &Session{
		ID:           uuid.New(),
		tracks:       tracker.New(cfg.Tracker),
		totalByClass: make(map[string]int),
		stats:        newStats(),
	}

	switch {
	case cfg.Zone != nil:
		s.Mode = ModeZone
		s.zone = cfg.Zone
		s.policy = &tracker.ZonePolicy{
			Zone:            cfg.Zone,
			MinMovement:     cfg.MinZoneMovement,
			RequireApproach: cfg.DirectionFilter,
		}
	case cfg.LineY > 0:
		s.Mode = ModeLine
		s.policy = &tracker.LinePolicy{Y: cfg.LineY}
	default:
		return nil, errors.New("session config needs a zone polygon or a positive counting line")
	}

	log.Printf("session %s started in %s mode", s.ID, s.Mode)
	return s, nil
}

// DefaultLineY places the counting line at two thirds of the frame height,
// the reference deployment's default.
func DefaultLineY(frameHeight int) float32 {
	return float32(frameHeight) * 2 / 3
}

// TrackSnapshot is a read-only view of one live track for the presentation
// layer. The trajectory slice is a copy; consumers cannot mutate tracker
// state through it.
type TrackSnapshot struct {
	ID         int
	Class      string
	Confidence float32
	Box        image.Rectangle
	Trajectory []tracker.Point
	Counted    bool
}

// FrameReport is the per-frame output handed to the presentation layer.
type FrameReport struct {
	FrameIndex   int
	ActiveTracks int
	// Total is the cumulative count of vehicles counted so far.
	Total int
	// TotalByClass splits the cumulative count by class label.
	TotalByClass map[string]int
	// NewlyCounted lists track ids counted on this frame, for event-style
	// consumers.
	NewlyCounted []int
	// Tracks is the full live track snapshot for rendering.
	Tracks []TrackSnapshot
	// FPS is the session's current processing rate.
	FPS float64
}

// Process runs one frame through the pipeline: associate detections to
// tracks, filter by zone containment, apply the counting policy, and report.
// A frame with zero detections is an ordinary frame — live tracks age by one
// unmatched frame and nothing else happens.
func (s *Session) Process(detections []detector.Detection) FrameReport {
	s.frame++
	s.stats.frameStart()

	live := s.tracks.Update(detections)

	var newly []int
	for _, tr := range live {
		// In zone mode, tracks currently outside the zone are excluded
		// from counting this frame but keep their identity in case they
		// re-enter.
		if s.Mode == ModeZone && !s.zone.Contains(tr.Center()) {
			continue
		}
		if s.policy.Check(tr) {
			s.total++
			s.totalByClass[tr.Class]++
			newly = append(newly, tr.ID)
		}
	}

	s.stats.frameDone()

	return FrameReport{
		FrameIndex:   s.frame,
		ActiveTracks: len(live),
		Total:        s.total,
		TotalByClass: s.snapshotTotals(),
		NewlyCounted: newly,
		Tracks:       snapshotTracks(live),
		FPS:          s.stats.FPS(),
	}
}

// Total is the cumulative count so far.
func (s *Session) Total() int {
	return s.total
}

// Frame is the number of frames processed so far.
func (s *Session) Frame() int {
	return s.frame
}

// Stats exposes the session's frame statistics.
func (s *Session) Stats() *Stats {
	return s.stats
}

// Close tears the session down between frames. No frame is ever left
// half-processed; Process is synchronous and this only logs the final
// totals.
func (s *Session) Close() {
	log.Printf("session %s closed after %d frames, %d counted", s.ID, s.frame, s.total)
}

func (s *Session) snapshotTotals() map[string]int {
	out := make(map[string]int, len(s.totalByClass))
	for class, n := range s.totalByClass {
		out[class] = n
	}
	return out
}

func snapshotTracks(live []*tracker.Track) []TrackSnapshot {
	out := make([]TrackSnapshot, len(live))
	for i, tr := range live {
		out[i] = TrackSnapshot{
			ID:         tr.ID,
			Class:      tr.Class,
			Confidence: tr.Confidence,
			Box:        tr.Box,
			Trajectory: tr.Trajectory(),
			Counted:    tr.Counted,
		}
	}
	return out
}
