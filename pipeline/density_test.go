package pipeline

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func snapshotAt(x, y, w, h int) TrackSnapshot {
	return TrackSnapshot{Box: image.Rect(x, y, x+w, y+h)}
}

func TestEstimateDensityEmptyFrame(t *testing.T) {
	m := EstimateDensity(nil, 640*480)
	assert.Zero(t, m.Vehicles)
	assert.Equal(t, CongestionLow, m.Level)
}

func TestEstimateDensityLevels(t *testing.T) {
	frameArea := 640 * 480 // 307200

	tests := []struct {
		name   string
		tracks []TrackSnapshot
		want   CongestionLevel
	}{
		{
			name:   "single small vehicle",
			tracks: []TrackSnapshot{snapshotAt(100, 100, 40, 40)},
			want:   CongestionLow,
		},
		{
			name: "several mid-size vehicles",
			tracks: []TrackSnapshot{
				snapshotAt(0, 0, 140, 140),
				snapshotAt(200, 0, 140, 140),
				snapshotAt(400, 200, 60, 60),
			},
			want: CongestionMedium,
		},
		{
			name: "packed lane",
			tracks: []TrackSnapshot{
				snapshotAt(0, 0, 320, 200),
				snapshotAt(320, 0, 320, 200),
			},
			want: CongestionHigh,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := EstimateDensity(tc.tracks, frameArea)
			assert.Equal(t, tc.want, m.Level)
			assert.Equal(t, len(tc.tracks), m.Vehicles)
		})
	}
}

func TestEstimateDensityOverlapRatio(t *testing.T) {
	tracks := []TrackSnapshot{
		snapshotAt(100, 100, 50, 50),
		snapshotAt(120, 120, 50, 50), // overlaps the first
		snapshotAt(400, 400, 50, 50), // isolated
	}

	m := EstimateDensity(tracks, 640*480)
	assert.InDelta(t, 2.0/3.0, m.OverlapRatio, 1e-9)
}

func TestMedianBoxArea(t *testing.T) {
	tracks := []TrackSnapshot{
		snapshotAt(0, 0, 10, 10),  // 100
		snapshotAt(0, 0, 20, 20),  // 400
		snapshotAt(0, 0, 100, 90), // 9000, the outlier
	}

	assert.Equal(t, float64(400), MedianBoxArea(tracks))
	assert.Zero(t, MedianBoxArea(nil))
}
