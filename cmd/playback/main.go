// Frame playback tool - replays rendered PGM frames in a window.
//
// Usage: go run ./cmd/playback -dir frames -fps 30
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pthm-cable/antfield/renderer"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding rendered frames")
	prefix := flag.String("prefix", "out", "Frame file name prefix")
	fps := flag.Int("fps", 30, "Playback frames per second")
	size := flag.Int("size", 801, "Window width and height in pixels")
	loop := flag.Bool("loop", false, "Restart from the first frame after the last")
	flag.Parse()

	files, err := frameFiles(*dir, *prefix)
	if err != nil {
		slog.Error("failed to list frames", "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		slog.Error("no frames found", "dir", *dir, "prefix", *prefix)
		os.Exit(1)
	}

	first, err := loadFrame(files[0])
	if err != nil {
		slog.Error("failed to load frame", "file", files[0], "error", err)
		os.Exit(1)
	}

	v := renderer.NewViewer(*size, *size, *fps, first.Width)
	defer v.Close()

	for idx := 0; !v.ShouldClose(); idx++ {
		if idx == len(files) {
			if !*loop {
				break
			}
			idx = 0
		}
		ras, err := loadFrame(files[idx])
		if err != nil {
			slog.Error("failed to load frame", "file", files[idx], "error", err)
			continue
		}
		if ras.Width != first.Width || ras.Height != first.Height {
			slog.Warn("skipping frame with different size", "file", files[idx])
			continue
		}
		v.Draw(idx, 0, ras.Values())
	}
}

// frameFiles returns the frame files in dir in playback order. Names are
// ordered by length first so ticks past the padding width sort correctly.
func frameFiles(dir, prefix string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"*"+renderer.Extension))
	if err != nil {
		return nil, fmt.Errorf("globbing frames: %w", err)
	}
	sort.Slice(files, func(i, j int) bool {
		if len(files[i]) != len(files[j]) {
			return len(files[i]) < len(files[j])
		}
		return files[i] < files[j]
	})
	return files, nil
}

func loadFrame(path string) (*renderer.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening frame: %w", err)
	}
	defer f.Close()
	return renderer.ParseSnapshot(f)
}
