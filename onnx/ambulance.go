package onnx

import (
	"image"
	"log"
	"os"
	"sync"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-traffic/detector"
)

var ortInitOnce sync.Once

// AmbulanceDetector runs the dedicated single-class ambulance model through
// onnxruntime. It deliberately uses a very low confidence threshold and
// relies on size gating plus the Stabilizer to keep false positives out of
// the count.
type AmbulanceDetector struct {
	cfg     AmbulanceConfig
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	mu      sync.Mutex
	closed  bool
}

// Ambulance model output layout: one row each for cx, cy, w, h, confidence
// across the anchor columns.
const (
	ambulanceOutputRows    = 5
	ambulanceOutputColumns = 8400
)

// NewAmbulanceDetector initializes the onnxruntime environment (once per
// process) and builds the session with preallocated tensors.
func NewAmbulanceDetector(cfg AmbulanceConfig) (*AmbulanceDetector, error) {
	if cfg.InputShape.X == 0 || cfg.InputShape.Y == 0 {
		cfg.InputShape = image.Point{X: 640, Y: 640}
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = 0.12
	}
	if cfg.NMSThreshold == 0 {
		cfg.NMSThreshold = 0.4
	}

	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "ambulance model not found at %s", cfg.ModelPath)
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	var initErr error
	ortInitOnce.Do(func() {
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, errors.Wrap(initErr, "initializing onnxruntime environment")
	}

	inputTensor, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, 3, int64(cfg.InputShape.Y), int64(cfg.InputShape.X)))
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}

	outputTensor, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, ambulanceOutputRows, ambulanceOutputColumns))
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "creating output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "creating session options")
	}
	defer options.Destroy()
	options.SetIntraOpNumThreads(4)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrapf(err, "creating ambulance session for %s", cfg.ModelPath)
	}

	log.Printf("ambulance model loaded from %s (conf %.2f)", cfg.ModelPath, cfg.ConfidenceThreshold)

	return &AmbulanceDetector{
		cfg:     cfg,
		session: session,
		input:   inputTensor,
		output:  outputTensor,
	}, nil
}

// Detect implements detector.Detector.
func (d *AmbulanceDetector) Detect(img gocv.Mat) ([]detector.Detection, error) {
	pic, err := img.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "converting frame for ambulance inference")
	}
	return d.DetectImage(pic)
}

// DetectImage runs inference on a decoded image.
func (d *AmbulanceDetector) DetectImage(pic image.Image) ([]detector.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, errors.New("ambulance detector is closed")
	}

	frameSize := image.Point{X: pic.Bounds().Dx(), Y: pic.Bounds().Dy()}
	d.fillInputTensor(pic)

	if err := d.session.Run(); err != nil {
		return nil, errors.Wrap(err, "running ambulance inference")
	}

	raw := d.postprocess(d.output.GetData(), frameSize)
	return plausibleAmbulances(applyNMS(raw, d.cfg.NMSThreshold), frameSize), nil
}

// fillInputTensor resizes the frame to the model input and writes it as a
// normalized CHW tensor.
func (d *AmbulanceDetector) fillInputTensor(pic image.Image) {
	w, h := d.cfg.InputShape.X, d.cfg.InputShape.Y
	scaled := resize.Resize(uint(w), uint(h), pic, resize.Bilinear)

	data := d.input.GetData()
	plane := w * h
	idx := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := scaled.At(x, y).RGBA()
			data[idx] = float32(r>>8) / 255.0
			data[idx+plane] = float32(g>>8) / 255.0
			data[idx+2*plane] = float32(b>>8) / 255.0
			idx++
		}
	}
}

// postprocess decodes the transposed single-class YOLO output into
// pixel-space detections.
func (d *AmbulanceDetector) postprocess(output []float32, frameSize image.Point) []detector.Detection {
	if len(output) < ambulanceOutputRows*ambulanceOutputColumns {
		return nil
	}

	scaleX := float32(frameSize.X) / float32(d.cfg.InputShape.X)
	scaleY := float32(frameSize.Y) / float32(d.cfg.InputShape.Y)

	var detections []detector.Detection
	for i := 0; i < ambulanceOutputColumns; i++ {
		score := output[4*ambulanceOutputColumns+i]
		if score < d.cfg.ConfidenceThreshold {
			continue
		}

		cx := output[i]
		cy := output[ambulanceOutputColumns+i]
		w := output[2*ambulanceOutputColumns+i]
		h := output[3*ambulanceOutputColumns+i]

		x1 := int((cx - w/2) * scaleX)
		y1 := int((cy - h/2) * scaleY)
		x2 := int((cx + w/2) * scaleX)
		y2 := int((cy + h/2) * scaleY)

		x1 = max(0, x1)
		y1 = max(0, y1)
		x2 = min(frameSize.X, x2)
		y2 = min(frameSize.Y, y2)

		detections = append(detections, detector.Detection{
			Box:       image.Rect(x1, y1, x2, y2),
			Score:     score,
			ClassName: detector.ClassAmbulance,
		})
	}
	return detections
}

// Close implements detector.Detector.
func (d *AmbulanceDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.input.Destroy()
	d.output.Destroy()
	if err := d.session.Destroy(); err != nil {
		log.Printf("destroying ambulance session: %v", err)
	}
}

// Size and shape plausibility gates for ambulance boxes, relative to the
// frame. Boxes outside these bounds are near-certain false positives from
// the low-threshold model.
const (
	minRelativeArea = 0.0008
	maxRelativeArea = 0.25
	minAspectRatio  = 0.5
	maxAspectRatio  = 3.0
)

// plausibleAmbulances drops detections whose size or aspect ratio cannot be
// a real ambulance at road level.
func plausibleAmbulances(detections []detector.Detection, frameSize image.Point) []detector.Detection {
	frameArea := float32(frameSize.X * frameSize.Y)
	if frameArea <= 0 {
		return nil
	}

	kept := detections[:0:0]
	for _, det := range detections {
		w := float32(det.Box.Dx())
		h := float32(det.Box.Dy())
		if w <= 0 || h <= 0 {
			continue
		}
		relArea := w * h / frameArea
		aspect := w / h
		if relArea < minRelativeArea || relArea > maxRelativeArea {
			continue
		}
		if aspect < minAspectRatio || aspect > maxAspectRatio {
			continue
		}
		kept = append(kept, det)
	}
	return kept
}
