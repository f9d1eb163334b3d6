// Package detector - detection boundary types shared by the inference
// backends, the tracker, and the pipeline.
package detector

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Class labels produced by the detection adapters. Every raw model class is
// collapsed to one of these before it reaches the tracker.
const (
	ClassVehicle   = "vehicle"
	ClassAmbulance = "ambulance"
)

// Detection represents a single detected object in one frame. Detections are
// ephemeral: they are consumed by the tracker and discarded.
type Detection struct {
	Box       image.Rectangle
	Score     float32
	ClassID   int
	ClassName string
}

// String formats the detection for logs.
func (d Detection) String() string {
	return fmt.Sprintf("%s (%.2f) at %v", d.ClassName, d.Score, d.Box)
}

// Valid reports whether the detection carries usable geometry and confidence.
// Degenerate boxes (zero or negative width/height) and out-of-range scores are
// rejected here so they never spawn a track.
func (d Detection) Valid() bool {
	if d.Box.Dx() <= 0 || d.Box.Dy() <= 0 {
		return false
	}
	return d.Score >= 0 && d.Score <= 1
}

// Center returns the center point of the detection box.
func (d Detection) Center() image.Point {
	return image.Pt((d.Box.Min.X+d.Box.Max.X)/2, (d.Box.Min.Y+d.Box.Max.Y)/2)
}

// Detector is the adapter boundary to a neural-network backend. The pipeline
// treats a Detect call as synchronous: a completed detection set is returned
// before the next frame is processed.
type Detector interface {
	Detect(img gocv.Mat) ([]Detection, error)
	Close()
}
