package tracker

import (
	"image"
	"testing"

	"github.com/nvr-ai/go-traffic/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointRingEvictsOldestFirst(t *testing.T) {
	ring := newPointRing(3)

	ring.push(Point{1, 1})
	ring.push(Point{2, 2})
	assert.Equal(t, 2, ring.len())
	assert.Equal(t, []Point{{1, 1}, {2, 2}}, ring.points())

	ring.push(Point{3, 3})
	ring.push(Point{4, 4})
	ring.push(Point{5, 5})

	// Capacity never exceeded, eviction is FIFO.
	assert.Equal(t, 3, ring.len())
	assert.Equal(t, []Point{{3, 3}, {4, 4}, {5, 5}}, ring.points())
}

func TestTrajectoryNeverExceedsCapacity(t *testing.T) {
	det := detector.Detection{Box: image.Rect(0, 0, 20, 20), Score: 0.9, ClassName: detector.ClassVehicle}
	tr := newTrack(1, det, 5)

	for i := 0; i < 50; i++ {
		next := detector.Detection{
			Box:       image.Rect(0, i, 20, 20+i),
			Score:     0.9,
			ClassName: detector.ClassVehicle,
		}
		tr.update(next, 1)
		assert.LessOrEqual(t, tr.HistoryLen(), 5)
	}
}

func TestTrackUpdateResetsMissCounter(t *testing.T) {
	det := detector.Detection{Box: image.Rect(0, 0, 20, 20), Score: 0.9, ClassName: detector.ClassVehicle}
	tr := newTrack(1, det, 20)
	tr.Missed = 4

	tr.update(det, 1)

	assert.Equal(t, 0, tr.Missed)
}

func TestSmoothBoxBlendsCoordinates(t *testing.T) {
	old := image.Rect(0, 0, 100, 100)
	next := image.Rect(100, 100, 200, 200)

	// Factor 1 takes the new box unchanged.
	assert.Equal(t, next, smoothBox(old, next, 1))

	// Factor 0.5 lands halfway.
	assert.Equal(t, image.Rect(50, 50, 150, 150), smoothBox(old, next, 0.5))
}

func TestEntryPositionSetOnce(t *testing.T) {
	det := detector.Detection{Box: image.Rect(0, 140, 20, 160), Score: 0.9, ClassName: detector.ClassVehicle}
	tr := newTrack(1, det, 20)

	_, set := tr.Entry()
	require.False(t, set)

	tr.markEntry(150)
	entry, set := tr.Entry()
	require.True(t, set)
	assert.Equal(t, float32(150), entry)

	// Never mutated afterward.
	tr.markEntry(400)
	entry, _ = tr.Entry()
	assert.Equal(t, float32(150), entry)
}
