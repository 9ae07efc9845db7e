package game

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pthm-cable/antfield/renderer"
)

// FrameWriter persists one snapshot and returns where it went.
type FrameWriter interface {
	WriteFrame(snap renderer.Snapshot) (string, error)
}

// FileWriter writes snapshots as PGM files named after their frame index.
type FileWriter struct {
	Dir    string
	Prefix string
	Digits int
}

// WriteFrame writes snap to Dir/<Prefix><frame>.pgm.
func (w FileWriter) WriteFrame(snap renderer.Snapshot) (string, error) {
	path := filepath.Join(w.Dir, renderer.FrameName(w.Prefix, snap.Tick, w.Digits))
	if err := os.WriteFile(path, snap.Data, 0644); err != nil {
		return path, fmt.Errorf("writing frame %d: %w", snap.Tick, err)
	}
	return path, nil
}

// FramePool hands snapshots to a fixed set of writer goroutines. Workers only
// ever see serialized snapshots, so they run alongside later ticks without
// synchronizing with the simulation. A failed write is logged and counted;
// it does not stop the pool.
type FramePool struct {
	writer     FrameWriter
	numWorkers int

	jobs chan renderer.Snapshot
	wg   sync.WaitGroup

	written atomic.Int64
	failed  atomic.Int64
}

// NewFramePool starts workers goroutines (GOMAXPROCS if workers <= 0) fed by a
// queue holding up to queueSize pending snapshots.
func NewFramePool(writer FrameWriter, workers, queueSize int) *FramePool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &FramePool{
		writer:     writer,
		numWorkers: workers,
		jobs:       make(chan renderer.Snapshot, queueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Workers returns the number of writer goroutines.
func (p *FramePool) Workers() int { return p.numWorkers }

// Submit queues snap for writing. Blocks while the queue is full.
// Must not be called after Close.
func (p *FramePool) Submit(snap renderer.Snapshot) {
	p.jobs <- snap
}

// Close stops accepting snapshots and waits for every queued write.
func (p *FramePool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

// Written returns the number of frames written successfully.
func (p *FramePool) Written() int { return int(p.written.Load()) }

// Failed returns the number of frames that could not be written.
func (p *FramePool) Failed() int { return int(p.failed.Load()) }

func (p *FramePool) worker() {
	defer p.wg.Done()
	for snap := range p.jobs {
		path, err := p.writer.WriteFrame(snap)
		if err != nil {
			p.failed.Add(1)
			slog.Error("write frame failed", "frame", snap.Tick, "path", path, "error", err)
			continue
		}
		p.written.Add(1)
		slog.Info("rendered frame", "file", path)
	}
}
