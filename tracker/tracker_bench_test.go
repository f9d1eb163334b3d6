package tracker

import (
	"image"
	"testing"

	"github.com/nvr-ai/go-traffic/detector"
)

// BenchmarkUpdate measures association cost with a busy intersection's worth
// of concurrent tracks.
func BenchmarkUpdate(b *testing.B) {
	const vehicles = 30

	tr := New(Config{})
	frame := make([]detector.Detection, vehicles)
	for i := range frame {
		x := 50 + (i%6)*100
		y := 50 + (i/6)*80
		frame[i] = detector.Detection{
			Box:       image.Rect(x, y, x+40, y+40),
			Score:     0.9,
			ClassName: detector.ClassVehicle,
		}
	}
	tr.Update(frame)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		// Shift every vehicle down a little each iteration so the matcher
		// always has work to do.
		for i := range frame {
			frame[i].Box = frame[i].Box.Add(image.Pt(0, 1))
		}
		tr.Update(frame)
	}
}
