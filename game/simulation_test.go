package game

import (
	"bytes"
	"math"
	"testing"

	"github.com/pthm-cable/antfield/config"
	"github.com/pthm-cable/antfield/renderer"
	"github.com/pthm-cable/antfield/telemetry"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

const eps = 1e-12

func TestOneTickScenario(t *testing.T) {
	sim, err := New(1, 1.0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	f := sim.Field()
	if f.Side() != 3 {
		t.Fatalf("expected 3x3 grid, got side %d", f.Side())
	}

	sim.Tick(1)

	// The four cells around the origin sit sqrt(0.5) away; the rest are out of reach.
	near := 1 - math.Sqrt(0.5)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c := f.Cell(i, j)
			dist := math.Hypot(c.X, c.Y)
			switch {
			case dist < 1:
				if math.Abs(c.Val-near) > eps {
					t.Errorf("cell (%d,%d) at distance %.3f: expected %v, got %v", i, j, dist, near, c.Val)
				}
			default:
				if c.Val != 0 {
					t.Errorf("cell (%d,%d) at distance %.3f: expected 0, got %v", i, j, dist, c.Val)
				}
			}
		}
	}

	a := sim.Agent()
	if math.Abs(a.X-1) > eps || math.Abs(a.Y) > eps {
		t.Errorf("expected agent at (1,0), got (%v,%v)", a.X, a.Y)
	}

	// Heading samples (1,0) after the blend: index (floor(1)+1, floor(0)+1) = (2,1)
	sampled := f.Cell(2, 1).Val
	if math.Abs(sampled-near) > eps {
		t.Fatalf("expected sampled cell (2,1) = %v, got %v", near, sampled)
	}
	wantHeading := (-math.Pi/2 + near*math.Pi) * 1
	if math.Abs(a.Direction-wantHeading) > eps {
		t.Errorf("expected heading %v, got %v", wantHeading, a.Direction)
	}

	if sim.Ticks() != 1 || sim.SimTime() != 1 {
		t.Errorf("expected 1 tick and time 1, got %d and %v", sim.Ticks(), sim.SimTime())
	}
}

func TestZeroTimestepIsIdempotent(t *testing.T) {
	sim, _ := New(10, 0.2)

	// Perturb first so there is something to preserve
	for i := 0; i < 25; i++ {
		sim.Tick(0.05)
	}
	before := append([]float64(nil), sim.Values()...)
	a := sim.Agent()
	x, y, dir := a.X, a.Y, a.Direction

	sim.Tick(0)

	after := sim.Values()
	for k := range before {
		if before[k] != after[k] {
			t.Fatalf("cell %d changed on zero timestep: %v -> %v", k, before[k], after[k])
		}
	}
	if a.X != x || a.Y != y || a.Direction != dir {
		t.Errorf("agent changed on zero timestep: (%v,%v,%v) -> (%v,%v,%v)", x, y, dir, a.X, a.Y, a.Direction)
	}
}

func TestValuesStayClampedOverLongRun(t *testing.T) {
	sim, _ := New(20, 0.1)
	for i := 0; i < 500; i++ {
		sim.Tick(0.5)
	}
	for k, v := range sim.Values() {
		if v < 0 || v > 1 {
			t.Fatalf("cell %d out of range: %v", k, v)
		}
	}
}

func TestNewSimulationFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte("field:\n  radius: 5\n  resolution: 0.5\nsimulation:\n  scan_half_width: 3\nagent:\n  speed: 2\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	sim, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("NewSimulation failed: %v", err)
	}
	if sim.Field().Side() != 11 || sim.Field().Resolution() != 0.5 {
		t.Errorf("unexpected field: side %d res %v", sim.Field().Side(), sim.Field().Resolution())
	}
	if sim.Field().ScanHalfWidth() != 3 {
		t.Errorf("expected scan half-width 3, got %v", sim.Field().ScanHalfWidth())
	}
	if sim.Agent().Speed() != 2 {
		t.Errorf("expected speed 2, got %v", sim.Agent().Speed())
	}
}

func TestNewSimulationRejectsInvalid(t *testing.T) {
	cfg := *config.Cfg()
	cfg.Field.Radius = -1
	if _, err := NewSimulation(&cfg); err == nil {
		t.Error("expected error for negative radius")
	}
	if _, err := New(1, 0); err == nil {
		t.Error("expected error for zero resolution")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	sim, _ := New(3, 0.5)
	sim.Tick(0.5)
	snap := sim.Snapshot(0)
	held := append([]byte(nil), snap.Data...)

	for i := 0; i < 10; i++ {
		sim.Tick(0.5)
	}
	if !bytes.Equal(held, snap.Data) {
		t.Error("snapshot changed after later ticks")
	}

	ras, err := renderer.ParseSnapshot(bytes.NewReader(snap.Data))
	if err != nil {
		t.Fatalf("ParseSnapshot failed: %v", err)
	}
	if ras.Width != 7 || ras.Height != 7 || len(ras.Samples) != 49 {
		t.Errorf("expected 7x7 raster with 49 samples, got %dx%d with %d", ras.Width, ras.Height, len(ras.Samples))
	}
}

func TestStats(t *testing.T) {
	sim, _ := New(1, 1.0)
	sim.Tick(1)
	st := sim.Stats()

	if st.Tick != 1 || st.CellsUpdated != 9 {
		t.Errorf("expected tick 1 with 9 cells updated, got %d and %d", st.Tick, st.CellsUpdated)
	}
	near := 1 - math.Sqrt(0.5)
	if math.Abs(st.Mass-4*near) > 1e-9 {
		t.Errorf("expected mass %v, got %v", 4*near, st.Mass)
	}
	if math.Abs(st.Max-near) > 1e-9 || st.Min != 0 {
		t.Errorf("expected min 0 max %v, got %v/%v", near, st.Min, st.Max)
	}
	if st.AgentX != sim.Agent().X || st.Heading != sim.Agent().Direction {
		t.Error("stats do not reflect the agent")
	}
}

func TestTickRecordsPhases(t *testing.T) {
	sim, _ := New(5, 0.5)
	perf := telemetry.NewPerfCollector(4)
	sim.SetPerf(perf)

	for i := 0; i < 4; i++ {
		perf.StartTick()
		sim.Tick(0.1)
		perf.EndTick()
	}
	stats := perf.Stats()
	if _, ok := stats.PhaseAvg[telemetry.PhaseInfluence]; !ok {
		t.Error("expected influence phase")
	}
	if _, ok := stats.PhaseAvg[telemetry.PhaseMove]; !ok {
		t.Error("expected move phase")
	}
}

func BenchmarkTick(b *testing.B) {
	sim, _ := NewSimulation(config.Cfg())
	dt := config.Cfg().Simulation.Timestep

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sim.Tick(dt)
	}
}

func BenchmarkTickWithSnapshot(b *testing.B) {
	sim, _ := NewSimulation(config.Cfg())
	dt := config.Cfg().Simulation.Timestep

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sim.Tick(dt)
		sim.Snapshot(i)
	}
}
