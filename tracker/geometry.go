// Package tracker - persistent object identity across frames and the
// zone/line counting core.
package tracker

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Point is a 2D point in frame pixel space.
type Point struct {
	X, Y float32
}

// centerOf returns the center point of a bounding box.
func centerOf(box image.Rectangle) Point {
	return Point{
		X: float32(box.Min.X+box.Max.X) / 2,
		Y: float32(box.Min.Y+box.Max.Y) / 2,
	}
}

// distance is the Euclidean distance between two points.
func distance(a, b Point) float32 {
	return math32.Hypot(a.X-b.X, a.Y-b.Y)
}

// Polygon is an ordered sequence of vertices in frame pixel space describing
// the monitored zone. A Polygon built through NewPolygon is always valid, so
// containment queries never need to re-check the vertex count.
type Polygon []Point

// ErrInvalidPolygon is returned when a zone configuration cannot form a
// usable polygon.
var ErrInvalidPolygon = errors.New("polygon requires at least 3 vertices")

// NewPolygon validates the vertex list and returns it as a Polygon. Fewer
// than three vertices is invalid configuration and is rejected here, at load
// time, never at query time.
func NewPolygon(vertices []Point) (Polygon, error) {
	if len(vertices) < 3 {
		return nil, errors.Wrapf(ErrInvalidPolygon, "got %d", len(vertices))
	}
	poly := make(Polygon, len(vertices))
	copy(poly, vertices)
	return poly, nil
}

// Contains reports whether p lies inside the polygon or exactly on its
// boundary. Uses the standard ray-casting test with an explicit on-edge check
// so the boundary is inclusive.
func (pg Polygon) Contains(p Point) bool {
	n := len(pg)
	if n < 3 {
		return false
	}

	// On-edge check first: ray casting alone is unreliable exactly on the
	// boundary.
	for i := 0; i < n; i++ {
		if onSegment(pg[i], pg[(i+1)%n], p) {
			return true
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pg[i], pg[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

const onSegmentEpsilon = 1e-4

// onSegment reports whether p lies on the segment ab.
func onSegment(a, b, p Point) bool {
	if p.X < math32.Min(a.X, b.X)-onSegmentEpsilon || p.X > math32.Max(a.X, b.X)+onSegmentEpsilon {
		return false
	}
	if p.Y < math32.Min(a.Y, b.Y)-onSegmentEpsilon || p.Y > math32.Max(a.Y, b.Y)+onSegmentEpsilon {
		return false
	}
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	// Scale tolerance with segment length so long edges behave like short ones.
	return math32.Abs(cross) <= onSegmentEpsilon*(1+distance(a, b))
}
