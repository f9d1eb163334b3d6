package onnx

// Stabilizer suppresses ambulance detection flicker. The ambulance model runs
// with a low confidence threshold, so single-frame hits are common on trucks
// and buses; a detection is only confirmed once it has appeared in enough of
// the recent frames AND has held for a minimum consecutive run. After a
// confirmation the stabilizer holds the confirmed state through a cooldown so
// the label does not blink off between frames.
type Stabilizer struct {
	cfg StabilizerConfig

	history     []bool
	consecutive int
	cooldown    int
}

// StabilizerConfig tunes the confirmation window.
type StabilizerConfig struct {
	// WindowSize is how many recent frames vote on stability.
	WindowSize int
	// StabilityRatio is the fraction of the window that must contain a
	// detection before confirmation.
	StabilityRatio float64
	// MinConsecutive is the minimum run of back-to-back detection frames
	// required before confirmation.
	MinConsecutive int
	// CooldownFrames is how long a confirmation persists after the last
	// detection frame.
	CooldownFrames int
}

func (c StabilizerConfig) withDefaults() StabilizerConfig {
	if c.WindowSize <= 0 {
		c.WindowSize = 20
	}
	if c.StabilityRatio <= 0 {
		c.StabilityRatio = 0.6
	}
	if c.MinConsecutive <= 0 {
		c.MinConsecutive = 3
	}
	if c.CooldownFrames <= 0 {
		c.CooldownFrames = 30
	}
	return c
}

// NewStabilizer builds a stabilizer, filling zero fields with defaults.
func NewStabilizer(cfg StabilizerConfig) *Stabilizer {
	return &Stabilizer{cfg: cfg.withDefaults()}
}

// Observe records whether the current frame contained any ambulance detection
// and reports whether the ambulance state is confirmed for this frame.
func (s *Stabilizer) Observe(detected bool) bool {
	s.history = append(s.history, detected)
	if len(s.history) > s.cfg.WindowSize {
		s.history = s.history[1:]
	}

	if detected {
		s.consecutive++
	} else {
		s.consecutive = 0
	}

	hits := 0
	for _, h := range s.history {
		if h {
			hits++
		}
	}
	ratio := float64(hits) / float64(s.cfg.WindowSize)

	if ratio >= s.cfg.StabilityRatio && s.consecutive >= s.cfg.MinConsecutive {
		s.cooldown = s.cfg.CooldownFrames
		return true
	}

	// Hold a prior confirmation through the cooldown.
	if s.cooldown > 0 {
		s.cooldown--
		return true
	}
	return false
}

// Confirmed reports the current state without consuming a frame.
func (s *Stabilizer) Confirmed() bool {
	return s.cooldown > 0
}

// Reset clears all history, for use at session boundaries.
func (s *Stabilizer) Reset() {
	s.history = s.history[:0]
	s.consecutive = 0
	s.cooldown = 0
}
