package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-traffic/tracker"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "lane_config.json", `{
		"lane_points": [[100, 100], [540, 100], [540, 480], [100, 480]],
		"min_movement_to_count": 60,
		"direction_filter": true
	}`)

	zone, err := Load(path)
	require.NoError(t, err)

	assert.Len(t, zone.Polygon, 4)
	assert.Equal(t, float32(60), zone.MinMovement)
	assert.True(t, zone.DirectionFilter)
	assert.True(t, zone.Polygon.Contains(tracker.Point{X: 300, Y: 300}))
}

func TestLoadRejectsTooFewPoints(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "lane_config.json", `{
		"lane_points": [[100, 100], [540, 100]]
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, tracker.ErrInvalidPolygon)
}

func TestLoadRejectsMalformedPoint(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "lane_config.json", `{
		"lane_points": [[100, 100, 5], [540, 100], [540, 480]]
	}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestVideoConfigPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("config", "lane_config_Delhi2.json"),
		VideoConfigPath("videos/Delhi2.mp4", "config"))
}

func TestResolvePrefersVideoSpecificConfig(t *testing.T) {
	dir := t.TempDir()
	defaultPath := writeConfig(t, dir, "lane_config.json", `{}`)
	specific := writeConfig(t, dir, "lane_config_Delhi2.json", `{}`)

	got, ok := Resolve("videos/Delhi2.mp4", defaultPath)
	require.True(t, ok)
	assert.Equal(t, specific, got)

	// Without a video-specific file, the default wins.
	got, ok = Resolve("videos/Mumbai.mp4", defaultPath)
	require.True(t, ok)
	assert.Equal(t, defaultPath, got)
}

func TestResolveReportsNoConfig(t *testing.T) {
	_, ok := Resolve("videos/Delhi2.mp4", filepath.Join(t.TempDir(), "lane_config.json"))
	assert.False(t, ok)
}
