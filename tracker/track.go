package tracker

import (
	"image"

	"github.com/nvr-ai/go-traffic/detector"
)

// pointRing is a fixed-capacity FIFO buffer of trajectory points. Once full,
// pushing evicts the oldest point.
type pointRing struct {
	buf  []Point
	head int // next write position
	size int
}

func newPointRing(capacity int) *pointRing {
	if capacity < 1 {
		capacity = 1
	}
	return &pointRing{buf: make([]Point, capacity)}
}

func (r *pointRing) push(p Point) {
	r.buf[r.head] = p
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

func (r *pointRing) len() int { return r.size }

// points returns the stored points oldest first.
func (r *pointRing) points() []Point {
	out := make([]Point, r.size)
	start := r.head - r.size
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

// Track is a persistent identity assigned to one physical object, updated
// frame over frame by the Tracker. Tracks are owned exclusively by the
// Tracker; counting policies write only the entry position and counted flag,
// everything else is read-only outside this package.
type Track struct {
	// ID is unique for the lifetime of the session, assigned monotonically
	// increasing starting at 1, never reused.
	ID int
	// Class is the detection label, set at creation and refreshed on match.
	Class string
	// Confidence of the most recent matched detection.
	Confidence float32
	// Box is the latest (smoothed) bounding box.
	Box image.Rectangle
	// Age is the number of frames since the track was created.
	Age int
	// Missed is the count of consecutive frames without a matching
	// detection. The Tracker retires the track once it exceeds the
	// configured threshold.
	Missed int
	// Counted is true once a counting policy has attributed its single
	// count event to this track. It never resets.
	Counted bool

	trajectory *pointRing
	entryY     float32
	entrySet   bool
}

func newTrack(id int, det detector.Detection, trajectoryLen int) *Track {
	tr := &Track{
		ID:         id,
		Class:      det.ClassName,
		Confidence: det.Score,
		Box:        det.Box,
		trajectory: newPointRing(trajectoryLen),
	}
	tr.trajectory.push(centerOf(det.Box))
	return tr
}

// update absorbs a matched detection: the box is blended with the previous
// one by the smoothing factor, the trajectory is extended, and the miss
// counter resets.
func (t *Track) update(det detector.Detection, smoothing float32) {
	t.Box = smoothBox(t.Box, det.Box, smoothing)
	t.Class = det.ClassName
	t.Confidence = det.Score
	t.Missed = 0
	t.trajectory.push(centerOf(t.Box))
}

// smoothBox blends old and new box coordinates; factor 1 takes the new box
// unchanged, factor 0 freezes the old one.
func smoothBox(old, next image.Rectangle, factor float32) image.Rectangle {
	blend := func(a, b int) int {
		return int(float32(a)*(1-factor) + float32(b)*factor)
	}
	return image.Rect(
		blend(old.Min.X, next.Min.X),
		blend(old.Min.Y, next.Min.Y),
		blend(old.Max.X, next.Max.X),
		blend(old.Max.Y, next.Max.Y),
	)
}

// Center returns the center of the current bounding box.
func (t *Track) Center() Point {
	return centerOf(t.Box)
}

// Trajectory returns a chronological copy of the stored center points,
// oldest first. The copy is safe for callers to keep.
func (t *Track) Trajectory() []Point {
	return t.trajectory.points()
}

// HistoryLen is the number of trajectory points currently stored.
func (t *Track) HistoryLen() int {
	return t.trajectory.len()
}

// markEntry records the motion-axis coordinate the first time the track is
// observed inside the zone. Subsequent calls are no-ops: the entry position
// is set once and never mutated afterward.
func (t *Track) markEntry(y float32) {
	if t.entrySet {
		return
	}
	t.entryY = y
	t.entrySet = true
}

// Entry returns the recorded entry position and whether it has been set.
func (t *Track) Entry() (float32, bool) {
	return t.entryY, t.entrySet
}
