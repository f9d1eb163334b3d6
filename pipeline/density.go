package pipeline

import (
	"math"
	"sort"
)

// CongestionLevel classifies how crowded the monitored area is.
type CongestionLevel string

const (
	CongestionLow    CongestionLevel = "low"
	CongestionMedium CongestionLevel = "medium"
	CongestionHigh   CongestionLevel = "high"
)

// DensityMetrics summarizes the spatial distribution of live tracks in a
// frame. It feeds the HUD and status output; nothing in the counting path
// depends on it.
type DensityMetrics struct {
	// Vehicles is the number of live tracks measured.
	Vehicles int
	// OccupancyRatio is the fraction of the frame covered by track boxes.
	// Overlapping boxes are counted once per box, so heavy overlap can
	// push this above the true coverage.
	OccupancyRatio float64
	// MeanBoxArea is the average track box area in pixels.
	MeanBoxArea float64
	// OverlapRatio is the fraction of tracks whose box intersects another
	// track's box.
	OverlapRatio float64
	// Level is the classified congestion level.
	Level CongestionLevel
}

// Occupancy thresholds separating the congestion levels.
const (
	mediumOccupancy = 0.12
	highOccupancy   = 0.30
)

// EstimateDensity computes congestion metrics for the current live tracks.
// frameArea is the full frame area in pixels.
func EstimateDensity(tracks []TrackSnapshot, frameArea int) DensityMetrics {
	m := DensityMetrics{Vehicles: len(tracks), Level: CongestionLow}
	if len(tracks) == 0 || frameArea <= 0 {
		return m
	}

	var totalArea float64
	for _, tr := range tracks {
		totalArea += float64(tr.Box.Dx() * tr.Box.Dy())
	}
	m.MeanBoxArea = totalArea / float64(len(tracks))
	m.OccupancyRatio = totalArea / float64(frameArea)

	overlapping := 0
	for i := range tracks {
		for j := range tracks {
			if i == j {
				continue
			}
			if tracks[i].Box.Overlaps(tracks[j].Box) {
				overlapping++
				break
			}
		}
	}
	m.OverlapRatio = float64(overlapping) / float64(len(tracks))

	switch {
	case m.OccupancyRatio >= highOccupancy:
		m.Level = CongestionHigh
	case m.OccupancyRatio >= mediumOccupancy:
		m.Level = CongestionMedium
	}
	return m
}

// MedianBoxArea is the median track box area, more robust than the mean when
// one oversized box (a bus, a misfired detection) skews the distribution.
func MedianBoxArea(tracks []TrackSnapshot) float64 {
	if len(tracks) == 0 {
		return 0
	}
	areas := make([]float64, len(tracks))
	for i, tr := range tracks {
		areas[i] = float64(tr.Box.Dx() * tr.Box.Dy())
	}
	sort.Float64s(areas)

	mid := len(areas) / 2
	if len(areas)%2 == 1 {
		return areas[mid]
	}
	return math.Round((areas[mid-1]+areas[mid])/2*100) / 100
}
