// Package util - helpers for offline frame-sequence runs.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Frame is one image of an extracted frame sequence.
type Frame struct {
	// Path is the file the frame was read from.
	Path string
	// Data is the raw encoded image bytes.
	Data []byte
	// Index is the frame number parsed from the filename.
	Index int
}

// LoadFrameSequence reads a directory of extracted frames named
// frame-<n>.<ext> and returns them ordered by frame number. Files that do
// not follow the naming scheme are skipped so a stray preview image in the
// directory does not abort a run.
func LoadFrameSequence(dir string) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading frame directory %s", dir)
	}

	var frames []Frame
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := filepath.Ext(name)
		switch ext {
		case ".jpg", ".jpeg", ".png", ".bmp":
		default:
			continue
		}

		stem := strings.TrimSuffix(name, ext)
		if !strings.HasPrefix(stem, "frame-") {
			continue
		}
		index, convErr := strconv.Atoi(strings.TrimPrefix(stem, "frame-"))
		if convErr != nil {
			continue
		}

		path := filepath.Join(dir, name)
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, errors.Wrapf(readErr, "reading frame %s", path)
		}

		frames = append(frames, Frame{Path: path, Data: data, Index: index})
	}

	if len(frames) == 0 {
		return nil, errors.Errorf("no frames found in %s", dir)
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Index < frames[j].Index
	})

	return frames, nil
}
