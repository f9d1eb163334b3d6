// Package config - zone/lane configuration loading for a detection session.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/nvr-ai/go-traffic/tracker"
)

// Zone is the parsed lane configuration. A valid Zone always carries a
// usable polygon; invalid files are rejected at load time so the tracker
// never sees a malformed zone.
type Zone struct {
	// Polygon is the monitored region in frame pixel space.
	Polygon tracker.Polygon
	// MinMovement overrides the zone movement threshold when positive.
	MinMovement float32
	// DirectionFilter enables the approach-direction gate. The lane area
	// usually already defines the approach zone, so this defaults off.
	DirectionFilter bool
}

// fileSchema mirrors the JSON layout of a lane config file.
type fileSchema struct {
	LanePoints      [][]float64 `mapstructure:"lane_points"`
	MinMovement     float64     `mapstructure:"min_movement_to_count"`
	DirectionFilter bool        `mapstructure:"direction_filter"`
}

// Load reads and validates a lane configuration file. Any structural
// problem — unreadable file, missing lane_points, fewer than 3 vertices,
// malformed vertex — is an error here, before a session starts. Callers
// decide whether to fall back to line mode or refuse to run.
func Load(path string) (*Zone, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading lane config %s", path)
	}

	var raw fileSchema
	if err := v.Unmarshal(&raw); err != nil {
		return nil, errors.Wrapf(err, "parsing lane config %s", path)
	}

	points := make([]tracker.Point, 0, len(raw.LanePoints))
	for i, pt := range raw.LanePoints {
		if len(pt) != 2 {
			return nil, errors.Errorf("lane config %s: point %d has %d coordinates, want 2", path, i, len(pt))
		}
		points = append(points, tracker.Point{X: float32(pt[0]), Y: float32(pt[1])})
	}

	polygon, err := tracker.NewPolygon(points)
	if err != nil {
		return nil, errors.Wrapf(err, "lane config %s", path)
	}

	log.Printf("lane configuration loaded from %s: %d points", path, len(points))
	return &Zone{
		Polygon:         polygon,
		MinMovement:     float32(raw.MinMovement),
		DirectionFilter: raw.DirectionFilter,
	}, nil
}

// VideoConfigPath returns the per-video lane config path for a video source,
// lane_config_<stem>.json in the config directory.
func VideoConfigPath(videoSource, configDir string) string {
	stem := strings.TrimSuffix(filepath.Base(videoSource), filepath.Ext(videoSource))
	return filepath.Join(configDir, "lane_config_"+stem+".json")
}

// Resolve picks the lane config file for a video source: the video-specific
// file wins when it exists, then the default path. The second return is
// false when neither exists, which callers treat as "no zone configured"
// (line mode), not an error.
func Resolve(videoSource, defaultPath string) (string, bool) {
	if videoSource != "" {
		specific := VideoConfigPath(videoSource, filepath.Dir(defaultPath))
		if fileExists(specific) {
			return specific, true
		}
	}
	if fileExists(defaultPath) {
		return defaultPath, true
	}
	return "", false
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
