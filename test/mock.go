// Package test holds end-to-end scenarios driven by scripted detections.
package test

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-traffic/detector"
)

// ScriptedDetector replays a fixed per-frame detection script, so full
// sessions can run deterministically without models or video files.
type ScriptedDetector struct {
	frames [][]detector.Detection
	cursor int
	closed bool
}

// NewScriptedDetector builds a detector that yields one scripted frame per
// Detect call, then empty frames once the script runs out.
func NewScriptedDetector(frames [][]detector.Detection) *ScriptedDetector {
	return &ScriptedDetector{frames: frames}
}

// Detect implements detector.Detector. The frame content is ignored; the
// script alone decides the output.
func (d *ScriptedDetector) Detect(_ gocv.Mat) ([]detector.Detection, error) {
	if d.closed {
		return nil, errors.New("scripted detector is closed")
	}
	return d.Next(), nil
}

// Next returns the detections for the next frame.
func (d *ScriptedDetector) Next() []detector.Detection {
	if d.cursor >= len(d.frames) {
		return nil
	}
	out := d.frames[d.cursor]
	d.cursor++
	return out
}

// Remaining reports how many scripted frames are left.
func (d *ScriptedDetector) Remaining() int {
	if d.cursor >= len(d.frames) {
		return 0
	}
	return len(d.frames) - d.cursor
}

// Close marks the detector closed.
func (d *ScriptedDetector) Close() {
	d.closed = true
}

// vehicle builds a 40x40 vehicle detection centered at (x, y).
func vehicle(x, y float32) detector.Detection {
	return detector.Detection{
		Box:       image.Rect(int(x)-20, int(y)-20, int(x)+20, int(y)+20),
		Score:     0.9,
		ClassName: detector.ClassVehicle,
	}
}

// ambulance builds a 60x40 ambulance detection centered at (x, y).
func ambulance(x, y float32) detector.Detection {
	return detector.Detection{
		Box:       image.Rect(int(x)-30, int(y)-20, int(x)+30, int(y)+20),
		Score:     0.8,
		ClassName: detector.ClassAmbulance,
	}
}

// descent scripts a single vehicle moving straight down from startY in
// stepY increments over the given number of frames.
func descent(x, startY, stepY float32, frames int) [][]detector.Detection {
	script := make([][]detector.Detection, 0, frames)
	for i := 0; i < frames; i++ {
		script = append(script, []detector.Detection{
			vehicle(x, startY+float32(i)*stepY),
		})
	}
	return script
}
