package onnx

import "image"

// Config for the gocv-DNN vehicle detector.
type Config struct {
	// ModelPath is the optimized YOLO vehicle model (.onnx).
	ModelPath string
	// InputShape is the model's input resolution.
	InputShape image.Point
	// ConfidenceThreshold drops detections below this score.
	ConfidenceThreshold float32
	// NMSThreshold is the IoU above which overlapping boxes are suppressed.
	NMSThreshold float32
}

// AmbulanceConfig for the onnxruntime-backed ambulance detector.
type AmbulanceConfig struct {
	// ModelPath is the dedicated ambulance model (.onnx).
	ModelPath string
	// LibraryPath locates the onnxruntime shared library.
	LibraryPath string
	// InputShape is the model's input resolution, 640x640 by default.
	InputShape image.Point
	// ConfidenceThreshold drops detections below this score. Ambulance
	// models run with a deliberately low threshold; the Stabilizer
	// suppresses the resulting flicker.
	ConfidenceThreshold float32
	// NMSThreshold is the IoU above which overlapping boxes are suppressed.
	NMSThreshold float32
}
