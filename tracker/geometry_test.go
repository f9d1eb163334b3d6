package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectZone(x1, y1, x2, y2 float32) Polygon {
	poly, err := NewPolygon([]Point{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}})
	if err != nil {
		panic(err)
	}
	return poly
}

func TestNewPolygonRejectsTooFewVertices(t *testing.T) {
	_, err := NewPolygon([]Point{{0, 0}, {10, 0}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPolygon)

	_, err = NewPolygon(nil)
	require.Error(t, err)
}

func TestPolygonContains(t *testing.T) {
	zone := rectZone(100, 100, 500, 500)

	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"interior", Point{300, 300}, true},
		{"outside left", Point{50, 300}, false},
		{"outside below", Point{300, 600}, false},
		{"on vertical edge", Point{100, 300}, true},
		{"on horizontal edge", Point{300, 500}, true},
		{"on vertex", Point{100, 100}, true},
		{"just outside edge", Point{99, 300}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, zone.Contains(tt.point))
		})
	}
}

func TestPolygonContainsNonConvex(t *testing.T) {
	// L-shaped zone: the notch in the upper right is outside.
	poly, err := NewPolygon([]Point{
		{0, 0}, {100, 0}, {100, 50}, {50, 50}, {50, 100}, {0, 100},
	})
	require.NoError(t, err)

	assert.True(t, poly.Contains(Point{25, 75}))
	assert.True(t, poly.Contains(Point{75, 25}))
	assert.False(t, poly.Contains(Point{75, 75})) // inside the notch
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, distance(Point{0, 0}, Point{3, 4}), 1e-5)
	assert.InDelta(t, 0.0, distance(Point{7, 7}, Point{7, 7}), 1e-5)
}
