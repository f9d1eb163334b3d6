package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-traffic/config"
	"github.com/nvr-ai/go-traffic/detector"
	"github.com/nvr-ai/go-traffic/onnx"
	"github.com/nvr-ai/go-traffic/pipeline"
	"github.com/nvr-ai/go-traffic/profiler"
	"github.com/nvr-ai/go-traffic/tracker"
)

const (
	// deviceID is the default video capture device when no file is given.
	deviceID = 0
	// DefaultVehicleModelPath is the optimized YOLO vehicle model.
	DefaultVehicleModelPath = "models/yolo-vehicles.onnx"
	// DefaultConfigPath is the fallback lane configuration file.
	DefaultConfigPath = "lane_config.json"
	// statusEveryNFrames throttles the per-frame console status line.
	statusEveryNFrames = 30
)

var supportedVideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

var (
	colorZone       = color.RGBA{255, 144, 30, 0}  // lane polygon
	colorLine       = color.RGBA{0, 0, 255, 0}     // counting line
	colorVehicle    = color.RGBA{0, 255, 0, 0}     // live vehicle box
	colorAmbulance  = color.RGBA{0, 0, 255, 0}     // ambulance box
	colorCounted    = color.RGBA{128, 128, 128, 0} // already-counted box
	colorTrajectory = color.RGBA{0, 255, 255, 0}
	colorHUD        = color.RGBA{255, 255, 255, 0}
)

func main() {
	var (
		videoPath           string
		configPath          string
		lineY               float64
		vehicleModelPath    string
		ambulanceModelPath  string
		ortLibraryPath      string
		confidenceThreshold float64
		showVisualization   bool
	)
	flag.StringVar(&videoPath, "video", "", "Path to video file (.mp4, .avi, .mov, .mkv); empty uses the camera")
	flag.StringVar(&configPath, "config", DefaultConfigPath, "Path to the default lane configuration file")
	flag.Float64Var(&lineY, "line-y", 0, "Counting line Y for line mode; 0 places it at 2/3 of the frame height")
	flag.StringVar(&vehicleModelPath, "vehicle-model", DefaultVehicleModelPath, "Path to the YOLO vehicle ONNX model")
	flag.StringVar(&ambulanceModelPath, "ambulance-model", "", "Path to the ambulance ONNX model; empty disables ambulance detection")
	flag.StringVar(&ortLibraryPath, "ort-lib", "", "Path to the onnxruntime shared library")
	flag.Float64Var(&confidenceThreshold, "confidence", 0.25, "Vehicle detection confidence threshold")
	flag.BoolVar(&showVisualization, "show-window", false, "Show visualization window")
	flag.Parse()

	if videoPath != "" {
		if err := validateVideoFile(videoPath); err != nil {
			log.Fatal(err)
		}
	}

	vehicleDetector, err := onnx.NewVehicleDetector(onnx.Config{
		ModelPath:           vehicleModelPath,
		ConfidenceThreshold: float32(confidenceThreshold),
	})
	if err != nil {
		log.Fatalf("vehicle detector: %v", err)
	}
	defer vehicleDetector.Close()

	var ambulanceDetector *onnx.AmbulanceDetector
	var stabilizer *onnx.Stabilizer
	if ambulanceModelPath != "" {
		ambulanceDetector, err = onnx.NewAmbulanceDetector(onnx.AmbulanceConfig{
			ModelPath:   ambulanceModelPath,
			LibraryPath: ortLibraryPath,
		})
		if err != nil {
			log.Printf("ambulance detector unavailable, continuing without it: %v", err)
			ambulanceDetector = nil
		} else {
			defer ambulanceDetector.Close()
			stabilizer = onnx.NewStabilizer(onnx.StabilizerConfig{})
		}
	}

	// Zone config: the video-specific file wins, then the default path.
	// With neither present the session falls back to line mode.
	var zone *config.Zone
	if path, ok := config.Resolve(videoPath, configPath); ok {
		zone, err = config.Load(path)
		if err != nil {
			log.Fatalf("lane config: %v", err)
		}
	}

	capture, sourceLabel, err := openCapture(videoPath)
	if err != nil {
		log.Fatal(err)
	}
	defer capture.Close()

	img := gocv.NewMat()
	defer img.Close()

	// The counting line default depends on the frame height, so the first
	// frame is read before the session is built and processed afterwards
	// like any other.
	if ok := capture.Read(&img); !ok || img.Empty() {
		log.Fatalf("no frames readable from %s", sourceLabel)
	}

	sessionCfg := pipeline.Config{
		Tracker: tracker.Config{},
	}
	if zone != nil {
		sessionCfg.Zone = zone.Polygon
		sessionCfg.MinZoneMovement = zone.MinMovement
		sessionCfg.DirectionFilter = zone.DirectionFilter
	} else {
		if lineY <= 0 {
			lineY = float64(pipeline.DefaultLineY(img.Rows()))
		}
		sessionCfg.LineY = float32(lineY)
	}

	session, err := pipeline.NewSession(sessionCfg)
	if err != nil {
		log.Fatalf("session: %v", err)
	}
	defer session.Close()

	printBanner(sourceLabel, session.Mode, vehicleModelPath, ambulanceModelPath, confidenceThreshold, lineY, zone)

	stages := profiler.New(0)
	defer stages.Report()

	var window *gocv.Window
	if showVisualization {
		window = gocv.NewWindow("Traffic Counter")
		defer window.Close()
	}

	for {
		report, procErr := processFrame(&img, session, vehicleDetector, ambulanceDetector, stabilizer, stages)
		if procErr != nil {
			log.Printf("frame %d: %v", session.Frame()+1, procErr)
		} else {
			drawOverlay(&img, report, sessionCfg, session.Mode)

			if report.FrameIndex%statusEveryNFrames == 0 || len(report.NewlyCounted) > 0 {
				printStatus(report)
			}

			if showVisualization {
				window.IMShow(img)
				if window.WaitKey(1) == 27 { // ESC
					break
				}
			}
		}

		if ok := capture.Read(&img); !ok {
			if videoPath != "" {
				fmt.Printf("End of video: %s\n", videoPath)
			} else {
				fmt.Printf("Capture device closed\n")
			}
			break
		}
		if img.Empty() {
			continue
		}
	}

	fmt.Printf("\nFinal count: %d vehicles over %d frames\n", session.Total(), session.Frame())
}

// processFrame runs detection and tracking for one frame and returns the
// frame report.
func processFrame(
	img *gocv.Mat,
	session *pipeline.Session,
	vehicles *onnx.VehicleDetector,
	ambulances *onnx.AmbulanceDetector,
	stabilizer *onnx.Stabilizer,
	stages *profiler.StageProfiler,
) (pipeline.FrameReport, error) {
	stopDetect := stages.StartStage("detect")
	detections, err := vehicles.Detect(*img)
	if err != nil {
		stopDetect()
		return pipeline.FrameReport{}, err
	}

	if ambulances != nil {
		ambDetections, ambErr := ambulances.Detect(*img)
		if ambErr != nil {
			log.Printf("ambulance inference skipped: %v", ambErr)
		} else if stabilizer.Observe(len(ambDetections) > 0) {
			detections = append(detections, ambDetections...)
		}
	}
	stopDetect()

	stopTrack := stages.StartStage("track")
	report := session.Process(detections)
	stopTrack()

	return report, nil
}

// drawOverlay renders the zone or line, all live tracks with their
// trajectories, and the running totals onto the frame.
func drawOverlay(img *gocv.Mat, report pipeline.FrameReport, cfg pipeline.Config, mode pipeline.Mode) {
	if mode == pipeline.ModeZone {
		drawPolygon(img, cfg.Zone)
	} else {
		y := int(cfg.LineY)
		gocv.Line(img, image.Pt(0, y), image.Pt(img.Cols(), y), colorLine, 2)
	}

	for _, tr := range report.Tracks {
		boxColor := colorVehicle
		switch {
		case tr.Counted:
			boxColor = colorCounted
		case tr.Class == detector.ClassAmbulance:
			boxColor = colorAmbulance
		}
		gocv.Rectangle(img, tr.Box, boxColor, 2)

		label := fmt.Sprintf("#%d %s", tr.ID, tr.Class)
		gocv.PutText(img, label, tr.Box.Min.Add(image.Pt(0, -4)),
			gocv.FontHersheyPlain, 1.0, boxColor, 1)

		drawTrajectory(img, tr.Trajectory)
	}

	density := pipeline.EstimateDensity(report.Tracks, img.Cols()*img.Rows())
	hud := fmt.Sprintf("Count: %d | Tracks: %d | FPS: %.1f | Traffic: %s",
		report.Total, report.ActiveTracks, report.FPS, density.Level)
	gocv.PutText(img, hud, image.Pt(10, 30), gocv.FontHersheyPlain, 1.4, colorHUD, 2)
}

func drawPolygon(img *gocv.Mat, polygon tracker.Polygon) {
	n := len(polygon)
	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]
		gocv.Line(img,
			image.Pt(int(a.X), int(a.Y)),
			image.Pt(int(b.X), int(b.Y)),
			colorZone, 2)
	}
}

func drawTrajectory(img *gocv.Mat, points []tracker.Point) {
	for i := 1; i < len(points); i++ {
		gocv.Line(img,
			image.Pt(int(points[i-1].X), int(points[i-1].Y)),
			image.Pt(int(points[i].X), int(points[i].Y)),
			colorTrajectory, 1)
	}
}

func printBanner(source string, mode pipeline.Mode, vehicleModel, ambulanceModel string, confidence, lineY float64, zone *config.Zone) {
	fmt.Printf("\n🚦 Traffic Counter Started\n")
	fmt.Printf("=====================================\n")
	fmt.Printf("   🎥 Source: %s\n", source)
	fmt.Printf("   🎯 Vehicle model: %s (confidence %.2f)\n", vehicleModel, confidence)
	if ambulanceModel != "" {
		fmt.Printf("   🚑 Ambulance model: %s\n", ambulanceModel)
	}
	if mode == pipeline.ModeZone {
		fmt.Printf("   📐 Counting mode: zone (%d points)\n", len(zone.Polygon))
	} else {
		fmt.Printf("   📐 Counting mode: line at y=%.0f\n", lineY)
	}
	fmt.Printf("=====================================\n\n")
}

func printStatus(report pipeline.FrameReport) {
	fmt.Printf("[Frame %d] Count: %d | Tracks: %d | FPS: %.1f",
		report.FrameIndex, report.Total, report.ActiveTracks, report.FPS)
	if len(report.NewlyCounted) > 0 {
		fmt.Printf(" | Counted: %v", report.NewlyCounted)
	}
	for class, n := range report.TotalByClass {
		fmt.Printf(" | %s: %d", class, n)
	}
	fmt.Printf("\n")
}

func openCapture(videoPath string) (*gocv.VideoCapture, string, error) {
	if videoPath != "" {
		capture, err := gocv.OpenVideoCapture(videoPath)
		if err != nil {
			return nil, "", fmt.Errorf("error opening video file %s: %w", videoPath, err)
		}
		return capture, videoPath, nil
	}

	capture, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, "", fmt.Errorf("error opening capture device %d: %w", deviceID, err)
	}
	return capture, fmt.Sprintf("camera %d", deviceID), nil
}

// validateVideoFile checks the file exists and has a supported extension.
func validateVideoFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range supportedVideoExtensions {
		if ext == supported {
			return nil
		}
	}
	return fmt.Errorf("unsupported video extension %s, supported: %v", ext, supportedVideoExtensions)
}
