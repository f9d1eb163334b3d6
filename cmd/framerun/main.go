// Command framerun replays a directory of extracted frames (frame-<n>.jpg)
// through the counting pipeline. It exists for offline tuning: extract frames
// from a clip once, then iterate on thresholds without re-decoding video.
package main

import (
	"flag"
	"fmt"
	"log"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-traffic/config"
	"github.com/nvr-ai/go-traffic/onnx"
	"github.com/nvr-ai/go-traffic/pipeline"
	"github.com/nvr-ai/go-traffic/tracker"
	"github.com/nvr-ai/go-traffic/util"
)

func main() {
	var (
		framesDir        string
		configPath       string
		lineY            float64
		vehicleModelPath string
		confidence       float64
	)
	flag.StringVar(&framesDir, "frames", "", "Directory of extracted frames named frame-<n>.jpg")
	flag.StringVar(&configPath, "config", "lane_config.json", "Path to the lane configuration file")
	flag.Float64Var(&lineY, "line-y", 0, "Counting line Y for line mode; 0 places it at 2/3 of the frame height")
	flag.StringVar(&vehicleModelPath, "vehicle-model", "models/yolo-vehicles.onnx", "Path to the YOLO vehicle ONNX model")
	flag.Float64Var(&confidence, "confidence", 0.25, "Detection confidence threshold")
	flag.Parse()

	if framesDir == "" {
		log.Fatal("-frames is required")
	}

	frames, err := util.LoadFrameSequence(framesDir)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Loaded %d frames from %s\n", len(frames), framesDir)

	vehicles, err := onnx.NewVehicleDetector(onnx.Config{
		ModelPath:           vehicleModelPath,
		ConfidenceThreshold: float32(confidence),
	})
	if err != nil {
		log.Fatalf("vehicle detector: %v", err)
	}
	defer vehicles.Close()

	first, err := gocv.IMDecode(frames[0].Data, gocv.IMReadColor)
	if err != nil || first.Empty() {
		log.Fatalf("decoding first frame %s: %v", frames[0].Path, err)
	}
	frameHeight := first.Rows()
	first.Close()

	sessionCfg := pipeline.Config{Tracker: tracker.Config{}}
	if path, ok := config.Resolve(framesDir, configPath); ok {
		zone, loadErr := config.Load(path)
		if loadErr != nil {
			log.Fatalf("lane config: %v", loadErr)
		}
		sessionCfg.Zone = zone.Polygon
		sessionCfg.MinZoneMovement = zone.MinMovement
		sessionCfg.DirectionFilter = zone.DirectionFilter
	} else {
		if lineY <= 0 {
			lineY = float64(pipeline.DefaultLineY(frameHeight))
		}
		sessionCfg.LineY = float32(lineY)
	}

	session, err := pipeline.NewSession(sessionCfg)
	if err != nil {
		log.Fatalf("session: %v", err)
	}
	defer session.Close()

	for _, frame := range frames {
		img, decErr := gocv.IMDecode(frame.Data, gocv.IMReadColor)
		if decErr != nil || img.Empty() {
			log.Printf("skipping frame %d: %v", frame.Index, decErr)
			continue
		}

		detections, detErr := vehicles.Detect(img)
		img.Close()
		if detErr != nil {
			log.Printf("frame %d: %v", frame.Index, detErr)
			continue
		}

		report := session.Process(detections)
		if len(report.NewlyCounted) > 0 {
			fmt.Printf("[frame %d] counted tracks %v, total %d\n",
				frame.Index, report.NewlyCounted, report.Total)
		}
	}

	fmt.Printf("Final count: %d vehicles over %d frames\n", session.Total(), session.Frame())
}
