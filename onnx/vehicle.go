// Package onnx - ONNX model inference adapters for the detection boundary.
package onnx

import (
	"image"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-traffic/detector"
)

// VehicleDetector runs the YOLO vehicle model through gocv's DNN module and
// yields only vehicle-class detections, labels already collapsed to
// detector.ClassVehicle.
type VehicleDetector struct {
	cfg         Config
	net         gocv.Net
	initialized bool
	mu          sync.Mutex
}

// NewVehicleDetector loads the model and prepares the network. Model-loading
// problems are surfaced immediately; a session never starts on a broken
// detector.
func NewVehicleDetector(cfg Config) (*VehicleDetector, error) {
	if cfg.InputShape.X == 0 || cfg.InputShape.Y == 0 {
		cfg.InputShape = image.Point{X: 640, Y: 640}
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = 0.25
	}
	if cfg.NMSThreshold == 0 {
		cfg.NMSThreshold = 0.45
	}

	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "vehicle model not found at %s", cfg.ModelPath)
	}

	net := gocv.ReadNet(cfg.ModelPath, "")
	if net.Empty() {
		return nil, errors.Errorf("failed to load vehicle model %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendOpenCV)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	log.Printf("vehicle model loaded from %s (input %dx%d, conf %.2f)",
		cfg.ModelPath, cfg.InputShape.X, cfg.InputShape.Y, cfg.ConfidenceThreshold)

	return &VehicleDetector{cfg: cfg, net: net, initialized: true}, nil
}

// Detect implements detector.Detector. The returned detections are already
// filtered to valid vehicle classes.
func (d *VehicleDetector) Detect(img gocv.Mat) ([]detector.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil, errors.New("vehicle detector is closed")
	}

	blob := gocv.BlobFromImage(img, 1.0/255.0, d.cfg.InputShape,
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	size := img.Size()
	raw := d.postprocess(output, image.Point{X: size[1], Y: size[0]})
	return detector.FilterVehicles(raw), nil
}

// postprocess converts the raw YOLO output rows into pixel-space detections
// and applies NMS. Row layout: cx, cy, w, h, objectness, per-class scores.
func (d *VehicleDetector) postprocess(output gocv.Mat, frameSize image.Point) []detector.Detection {
	var detections []detector.Detection

	rows := output.Rows()
	cols := output.Cols()

	for i := 0; i < rows; i++ {
		objectness := output.GetFloatAt(i, 4)
		if objectness < d.cfg.ConfidenceThreshold {
			continue
		}

		classID := 0
		maxScore := float32(0)
		for j := 5; j < cols; j++ {
			if score := output.GetFloatAt(i, j); score > maxScore {
				maxScore = score
				classID = j - 5
			}
		}

		score := objectness * maxScore
		if score < d.cfg.ConfidenceThreshold {
			continue
		}

		cx := output.GetFloatAt(i, 0)
		cy := output.GetFloatAt(i, 1)
		w := output.GetFloatAt(i, 2)
		h := output.GetFloatAt(i, 3)

		x1 := int((cx - w/2) * float32(frameSize.X))
		y1 := int((cy - h/2) * float32(frameSize.Y))
		x2 := int((cx + w/2) * float32(frameSize.X))
		y2 := int((cy + h/2) * float32(frameSize.Y))

		x1 = max(0, x1)
		y1 = max(0, y1)
		x2 = min(frameSize.X, x2)
		y2 = min(frameSize.Y, y2)

		detections = append(detections, detector.Detection{
			Box:     image.Rect(x1, y1, x2, y2),
			Score:   score,
			ClassID: classID,
		})
	}

	return applyNMS(detections, d.cfg.NMSThreshold)
}

// Close implements detector.Detector.
func (d *VehicleDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized && !d.net.Empty() {
		d.net.Close()
	}
	d.initialized = false
}

// applyNMS suppresses overlapping boxes, keeping the highest-scoring one of
// each cluster.
func applyNMS(detections []detector.Detection, iouThreshold float32) []detector.Detection {
	if len(detections) <= 1 {
		return detections
	}

	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Score > detections[j].Score
	})

	var result []detector.Detection
	suppressed := make([]bool, len(detections))
	for i := range detections {
		if suppressed[i] {
			continue
		}
		result = append(result, detections[i])
		for j := i + 1; j < len(detections); j++ {
			if suppressed[j] {
				continue
			}
			if boxIoU(detections[i].Box, detections[j].Box) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return result
}

// boxIoU is the Intersection over Union of two rectangles.
func boxIoU(a, b image.Rectangle) float32 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	interArea := inter.Dx() * inter.Dy()
	union := a.Dx()*a.Dy() + b.Dx()*b.Dy() - interArea
	if union <= 0 {
		return 0
	}
	return float32(interArea) / float32(union)
}
