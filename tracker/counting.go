package tracker

// Policy decides, from a track's accumulated state, whether the track should
// be counted on this frame. Check returns true exactly once per track: every
// implementation must be idempotent on an already-counted track, no matter
// how long the track persists or how often it re-enters the zone or
// re-crosses the line.
type Policy interface {
	Check(t *Track) bool
	Name() string
}

// DefaultMinZoneMovement is how far, in pixels, a track must move through
// the zone along the motion axis before it is counted.
const DefaultMinZoneMovement = 50

// ZonePolicy counts a track once it has traveled MinMovement pixels through
// the monitored zone from its recorded entry position. Per-track state
// machine: unseen -> in zone, uncounted (entry position recorded) ->
// counted (terminal).
type ZonePolicy struct {
	// Zone is the monitored polygon. Must be a valid polygon from
	// NewPolygon; the policy assumes it and never re-validates.
	Zone Polygon
	// MinMovement is the motion-axis distance required to count. Zero
	// means DefaultMinZoneMovement.
	MinMovement float32
	// RequireApproach additionally gates counting on the direction filter.
	RequireApproach bool
	// MinHistory and NoiseFloor parametrize the direction filter when
	// RequireApproach is set. Zero values take the defaults.
	MinHistory int
	NoiseFloor float32
}

// Name implements Policy.
func (p *ZonePolicy) Name() string { return "zone" }

// Check implements Policy. The first frame a track is observed inside the
// zone records its entry position; counting fires once the track's center
// has moved MinMovement pixels past it toward the camera. Tracks that stall
// or leave the zone before accumulating enough movement are simply never
// counted.
func (p *ZonePolicy) Check(t *Track) bool {
	if t.Counted {
		return false
	}

	minMovement := p.MinMovement
	if minMovement <= 0 {
		minMovement = DefaultMinZoneMovement
	}

	center := t.Center()
	entry, seen := t.Entry()
	if !seen {
		if p.Zone.Contains(center) {
			t.markEntry(center.Y)
		}
		return false
	}

	if center.Y-entry < minMovement {
		return false
	}

	if p.RequireApproach {
		minHistory := p.MinHistory
		if minHistory <= 0 {
			minHistory = DefaultDirectionHistory
		}
		noiseFloor := p.NoiseFloor
		if noiseFloor <= 0 {
			noiseFloor = DefaultNoiseFloor
		}
		if !ApproachingCamera(t, minHistory, noiseFloor) {
			return false
		}
	}

	t.Counted = true
	return true
}

// LinePolicy is the fallback counting mode when no valid zone polygon is
// configured: a fixed horizontal line at Y spanning the frame. A track is
// counted the first time its center crosses the line between two
// consecutive observed frames, in either direction. Single-frame tracks
// cannot cross and are never counted.
type LinePolicy struct {
	Y float32
}

// Name implements Policy.
func (p *LinePolicy) Name() string { return "line" }

// Check implements Policy.
func (p *LinePolicy) Check(t *Track) bool {
	if t.Counted {
		return false
	}

	points := t.Trajectory()
	if len(points) < 2 {
		return false
	}

	prev := points[len(points)-2].Y
	curr := points[len(points)-1].Y
	crossed := (prev > p.Y && curr <= p.Y) || (prev <= p.Y && curr > p.Y)
	if !crossed {
		return false
	}

	t.Counted = true
	return true
}
