package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// trackWithTrajectory builds a detached track holding the given y positions.
func trackWithTrajectory(ys ...float32) *Track {
	tr := &Track{ID: 1, trajectory: newPointRing(DefaultTrajectoryLen)}
	for _, y := range ys {
		tr.trajectory.push(Point{320, y})
	}
	return tr
}

func TestApproachingCameraRequiresHistory(t *testing.T) {
	// Fewer than minHistory points never reports approaching, no matter how
	// fast the motion is.
	tr := trackWithTrajectory(100, 160, 220)
	assert.False(t, ApproachingCamera(tr, 5, DefaultNoiseFloor))

	tr = trackWithTrajectory()
	assert.False(t, ApproachingCamera(tr, 5, DefaultNoiseFloor))
}

func TestApproachingCameraDetectsDownwardMotion(t *testing.T) {
	tr := trackWithTrajectory(100, 110, 120, 130, 140)
	assert.True(t, ApproachingCamera(tr, 5, DefaultNoiseFloor))
}

func TestApproachingCameraRejectsRecedingMotion(t *testing.T) {
	tr := trackWithTrajectory(140, 130, 120, 110, 100)
	assert.False(t, ApproachingCamera(tr, 5, DefaultNoiseFloor))
}

func TestApproachingCameraRejectsJitter(t *testing.T) {
	// Mean displacement 0.25 px/frame sits under the 0.5 noise floor: a
	// barely-moving object must not read as approaching.
	tr := trackWithTrajectory(100, 100.5, 100, 100.5, 101)
	assert.False(t, ApproachingCamera(tr, 5, DefaultNoiseFloor))
}

func TestApproachingCameraUsesOnlyRecentPoints(t *testing.T) {
	// Long upward history followed by five downward steps: only the recent
	// window matters.
	tr := trackWithTrajectory(300, 280, 260, 240, 220, 200, 210, 220, 230, 240)
	assert.True(t, ApproachingCamera(tr, 5, DefaultNoiseFloor))
}
