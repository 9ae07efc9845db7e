package game

import (
	"log/slog"

	"github.com/pthm-cable/antfield/telemetry"
)

// Viewer displays field values between ticks. It is called on the simulation
// goroutine and must not keep values after Draw returns.
type Viewer interface {
	Draw(tick int, simTime float64, values []float64)
	ShouldClose() bool
}

// Options configures a Runner.
type Options struct {
	Timestep      float64
	StatsEvery    int // ticks between field stats records (0 disables)
	StepsPerFrame int // ticks between viewer redraws
	LogStats      bool

	Perf   *telemetry.PerfCollector // optional
	Output *telemetry.OutputManager // optional, nil disables CSV
	Viewer Viewer                   // optional
}

// Summary reports what a run produced.
type Summary struct {
	Ticks         int
	FramesWritten int
	FramesFailed  int
	Stopped       bool // viewer closed before the tick count was reached
}

// Runner runs a fixed number of ticks, emitting one snapshot per tick.
type Runner struct {
	sim  *Simulation
	pool *FramePool
	opts Options
}

// NewRunner couples a simulation with the pool that receives its snapshots.
func NewRunner(sim *Simulation, pool *FramePool, opts Options) *Runner {
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if opts.Perf != nil {
		sim.SetPerf(opts.Perf)
	}
	return &Runner{sim: sim, pool: pool, opts: opts}
}

// Run executes ticks ticks, then closes the pool and waits for every frame
// to be written. Frame indices start at 0.
func (r *Runner) Run(ticks int) Summary {
	sum := Summary{}
	perf := r.opts.Perf

	for i := 0; i < ticks; i++ {
		if perf != nil {
			perf.StartTick()
		}

		r.sim.Tick(r.opts.Timestep)

		// The snapshot must be taken before the next tick mutates the field.
		r.startPhase(telemetry.PhaseSnapshot)
		r.pool.Submit(r.sim.Snapshot(i))

		if r.opts.StatsEvery > 0 && (i+1)%r.opts.StatsEvery == 0 {
			r.startPhase(telemetry.PhaseStats)
			r.recordStats()
		}

		if r.opts.Viewer != nil && i%r.opts.StepsPerFrame == 0 {
			r.startPhase(telemetry.PhaseView)
			r.opts.Viewer.Draw(r.sim.Ticks(), r.sim.SimTime(), r.sim.Values())
		}

		if perf != nil {
			perf.EndTick()
			if (i+1)%perf.WindowSize() == 0 {
				r.recordPerf(i + 1)
			}
		}
		sum.Ticks++

		if r.opts.Viewer != nil && r.opts.Viewer.ShouldClose() {
			sum.Stopped = true
			break
		}
	}

	r.pool.Close()
	sum.FramesWritten = r.pool.Written()
	sum.FramesFailed = r.pool.Failed()
	return sum
}

func (r *Runner) startPhase(phase string) {
	if r.opts.Perf != nil {
		r.opts.Perf.StartPhase(phase)
	}
}

func (r *Runner) recordStats() {
	stats := r.sim.Stats()
	if r.opts.LogStats {
		slog.Info("field", "stats", stats)
	}
	if err := r.opts.Output.WriteFieldStats(stats); err != nil {
		slog.Error("failed to write field stats", "error", err)
	}
}

func (r *Runner) recordPerf(windowEnd int) {
	stats := r.opts.Perf.Stats()
	if r.opts.LogStats {
		slog.Info("perf", "stats", stats)
	}
	if err := r.opts.Output.WritePerf(stats, windowEnd); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
