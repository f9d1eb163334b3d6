package tracker

import "gonum.org/v1/gonum/stat"

// Direction filter defaults: how many trailing trajectory points are
// examined and the per-step displacement, in pixels per frame, below which
// motion is treated as jitter rather than approach.
const (
	DefaultDirectionHistory = 5
	DefaultNoiseFloor       = 0.5
)

// ApproachingCamera reports whether the track's recent motion moves it
// toward the bottom of the frame (toward the camera in the deployment's
// geometry). It examines the last minHistory trajectory points and returns
// true only if the mean per-step vertical displacement exceeds noiseFloor.
//
// A track with fewer than minHistory points has unknown direction and
// reports false: callers must treat that as "do not count yet", never as
// approaching. The noise floor rejects a stationary object being misread as
// approaching through detector jitter.
func ApproachingCamera(t *Track, minHistory int, noiseFloor float32) bool {
	if minHistory < 2 {
		minHistory = 2
	}
	points := t.Trajectory()
	if len(points) < minHistory {
		return false
	}

	recent := points[len(points)-minHistory:]
	steps := make([]float64, 0, len(recent)-1)
	for i := 1; i < len(recent); i++ {
		steps = append(steps, float64(recent[i].Y-recent[i-1].Y))
	}

	return stat.Mean(steps, nil) > float64(noiseFloor)
}
