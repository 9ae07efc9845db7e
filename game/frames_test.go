package game

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/pthm-cable/antfield/renderer"
)

// memWriter records frames in memory and fails on selected indices.
type memWriter struct {
	mu     sync.Mutex
	frames map[int][]byte
	failOn map[int]bool
}

func newMemWriter() *memWriter {
	return &memWriter{frames: make(map[int][]byte), failOn: make(map[int]bool)}
}

func (w *memWriter) WriteFrame(snap renderer.Snapshot) (string, error) {
	name := renderer.FrameName("mem", snap.Tick, 4)
	if w.failOn[snap.Tick] {
		return name, errors.New("disk full")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frames[snap.Tick] = snap.Data
	return name, nil
}

func (w *memWriter) indices() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]int, 0, len(w.frames))
	for k := range w.frames {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func TestFramePoolWritesEverySnapshot(t *testing.T) {
	w := newMemWriter()
	pool := NewFramePool(w, 4, 2)

	for i := 0; i < 50; i++ {
		pool.Submit(renderer.NewSnapshot(i, 1, []float64{float64(i) / 50}))
	}
	pool.Close()

	if pool.Written() != 50 || pool.Failed() != 0 {
		t.Fatalf("expected 50 written 0 failed, got %d and %d", pool.Written(), pool.Failed())
	}
	got := w.indices()
	for i, idx := range got {
		if idx != i {
			t.Fatalf("missing frame %d", i)
		}
	}
}

func TestFramePoolFailureDoesNotStopOthers(t *testing.T) {
	w := newMemWriter()
	w.failOn[3] = true
	w.failOn[7] = true
	pool := NewFramePool(w, 2, 0)

	for i := 0; i < 10; i++ {
		pool.Submit(renderer.NewSnapshot(i, 1, []float64{0}))
	}
	pool.Close()

	if pool.Written() != 8 || pool.Failed() != 2 {
		t.Errorf("expected 8 written 2 failed, got %d and %d", pool.Written(), pool.Failed())
	}
}

func TestFramePoolDefaultWorkers(t *testing.T) {
	pool := NewFramePool(newMemWriter(), 0, -1)
	defer pool.Close()
	if pool.Workers() < 1 {
		t.Errorf("expected at least one worker, got %d", pool.Workers())
	}
}

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	w := FileWriter{Dir: dir, Prefix: "out", Digits: 4}
	snap := renderer.NewSnapshot(12, 2, []float64{0, 0.5, 1, 0.25})

	path, err := w.WriteFrame(snap)
	if err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if path != filepath.Join(dir, "out0012.pgm") {
		t.Errorf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	if !bytes.Equal(data, snap.Data) {
		t.Errorf("file content differs from snapshot")
	}
	if string(data) != "P2\n2 2\n256\n0 128 256 64 " {
		t.Errorf("unexpected raster %q", data)
	}
}

func TestFileWriterUnwritableDir(t *testing.T) {
	w := FileWriter{Dir: filepath.Join(t.TempDir(), "missing"), Prefix: "out", Digits: 4}
	if _, err := w.WriteFrame(renderer.NewSnapshot(0, 1, []float64{0})); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
