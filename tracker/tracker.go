package tracker

import (
	"sort"

	"github.com/nvr-ai/go-traffic/detector"
)

// Config holds the tracker tuning parameters. The zero value of any field is
// replaced by its default, so callers only set what they need to override.
type Config struct {
	// MaxMatchDistance is the largest center-to-center distance, in pixels,
	// at which a detection may be matched to an existing track.
	MaxMatchDistance float32
	// MaxMissedFrames is how many consecutive unmatched frames a track
	// survives before it is retired. Tolerates brief occlusion without
	// losing identity.
	MaxMissedFrames int
	// TrajectoryLen bounds the per-track trajectory ring buffer.
	TrajectoryLen int
	// Smoothing blends matched boxes with the previous box.
	Smoothing float32
}

// Defaults follow the tuning of the reference deployment.
const (
	DefaultMaxMatchDistance = 100
	DefaultMaxMissedFrames  = 10
	DefaultTrajectoryLen    = 20
	DefaultSmoothing        = 0.65
)

func (c Config) withDefaults() Config {
	if c.MaxMatchDistance <= 0 {
		c.MaxMatchDistance = DefaultMaxMatchDistance
	}
	if c.MaxMissedFrames <= 0 {
		c.MaxMissedFrames = DefaultMaxMissedFrames
	}
	if c.TrajectoryLen <= 0 {
		c.TrajectoryLen = DefaultTrajectoryLen
	}
	if c.Smoothing <= 0 || c.Smoothing > 1 {
		c.Smoothing = DefaultSmoothing
	}
	return c
}

// Tracker is the association engine: it owns the live track set for one
// session and updates it frame over frame. It is not safe for concurrent
// use; a session processes frames strictly in order.
type Tracker struct {
	cfg    Config
	nextID int
	tracks []*Track // creation order
}

// New creates a Tracker with the given configuration. Ids start at 1 per
// session so independent sessions never share identities.
func New(cfg Config) *Tracker {
	return &Tracker{
		cfg:    cfg.withDefaults(),
		nextID: 1,
	}
}

// candidate is one (track, detection) pairing considered for assignment.
type candidate struct {
	trackIdx int
	detIdx   int
	dist     float32
}

// Update matches the frame's detections against the live tracks, creates
// tracks for unmatched detections, ages unmatched tracks, and retires stale
// ones. It returns the live track set after the update; the returned slice
// is owned by the Tracker and must not be mutated by callers.
//
// Matching is greedy nearest-first: all candidate pairs within
// MaxMatchDistance and with agreeing class labels are sorted by ascending
// distance and assigned while both sides are still available. Ties break by
// track creation order, then detection order, which keeps crossing and
// occlusion scenarios deterministic.
func (t *Tracker) Update(detections []detector.Detection) []*Track {
	// Malformed detections are skipped here so they never spawn or feed a
	// track.
	valid := detections[:0:0]
	for _, det := range detections {
		if det.Valid() {
			valid = append(valid, det)
		}
	}

	candidates := make([]candidate, 0, len(t.tracks)*len(valid))
	for ti, tr := range t.tracks {
		trackCenter := tr.Center()
		for di, det := range valid {
			if det.ClassName != tr.Class {
				continue
			}
			d := distance(trackCenter, centerOf(det.Box))
			if d <= t.cfg.MaxMatchDistance {
				candidates = append(candidates, candidate{trackIdx: ti, detIdx: di, dist: d})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		if candidates[i].trackIdx != candidates[j].trackIdx {
			return candidates[i].trackIdx < candidates[j].trackIdx
		}
		return candidates[i].detIdx < candidates[j].detIdx
	})

	matchedTracks := make([]bool, len(t.tracks))
	matchedDets := make([]bool, len(valid))
	for _, c := range candidates {
		if matchedTracks[c.trackIdx] || matchedDets[c.detIdx] {
			continue
		}
		matchedTracks[c.trackIdx] = true
		matchedDets[c.detIdx] = true
		t.tracks[c.trackIdx].update(valid[c.detIdx], t.cfg.Smoothing)
	}

	// Unmatched tracks age by one missed frame; stale ones are retired
	// permanently. A reappearing object gets a new id later.
	live := t.tracks[:0]
	for ti, tr := range t.tracks {
		tr.Age++
		if !matchedTracks[ti] {
			tr.Missed++
			if tr.Missed > t.cfg.MaxMissedFrames {
				continue
			}
		}
		live = append(live, tr)
	}
	// Zero retired tail entries so they can be collected.
	for i := len(live); i < len(t.tracks); i++ {
		t.tracks[i] = nil
	}
	t.tracks = live

	// Unmatched detections spawn new tracks.
	for di, det := range valid {
		if matchedDets[di] {
			continue
		}
		t.tracks = append(t.tracks, newTrack(t.nextID, det, t.cfg.TrajectoryLen))
		t.nextID++
	}

	return t.tracks
}

// Tracks returns the current live track set in creation order.
func (t *Tracker) Tracks() []*Track {
	return t.tracks
}

// Len is the number of live tracks.
func (t *Tracker) Len() int {
	return len(t.tracks)
}
