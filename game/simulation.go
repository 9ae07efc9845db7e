// Package game drives the continuous Langton's Ant: it advances the field and
// the agent tick by tick and hands immutable snapshots to frame writers.
package game

import (
	"fmt"

	"github.com/pthm-cable/antfield/config"
	"github.com/pthm-cable/antfield/renderer"
	"github.com/pthm-cable/antfield/systems"
	"github.com/pthm-cable/antfield/telemetry"
)

// Simulation owns one field and one agent. It is single-threaded: every Tick
// must complete before the next starts, and nothing else may read the field
// while a tick runs.
type Simulation struct {
	field *systems.Field
	agent *systems.Agent

	ticks       int
	simTime     float64
	lastUpdated int

	perf   *telemetry.PerfCollector // optional phase timing
	values []float64                // scratch for snapshots and stats
	sorted []float64                // scratch for percentiles
}

// NewSimulation builds a field and an agent from cfg.
func NewSimulation(cfg *config.Config) (*Simulation, error) {
	field, err := systems.NewField(cfg.Field.Radius, cfg.Field.Resolution)
	if err != nil {
		return nil, fmt.Errorf("creating field: %w", err)
	}
	agent := systems.NewAgentWithSpeed(cfg.Agent.Speed)
	if err := field.WithScanHalfWidth(cfg.Simulation.ScanHalfWidth, agent.Reach()); err != nil {
		return nil, fmt.Errorf("configuring field: %w", err)
	}
	return &Simulation{field: field, agent: agent}, nil
}

// New builds a simulation with the default agent and scan box.
func New(radius int, resolution float64) (*Simulation, error) {
	field, err := systems.NewField(radius, resolution)
	if err != nil {
		return nil, fmt.Errorf("creating field: %w", err)
	}
	return &Simulation{field: field, agent: systems.NewAgent()}, nil
}

// SetPerf enables per-phase timing. Pass nil to disable.
func (s *Simulation) SetPerf(p *telemetry.PerfCollector) { s.perf = p }

// Field returns the simulated field. Callers must not retain it across ticks
// from another goroutine.
func (s *Simulation) Field() *systems.Field { return s.field }

// Agent returns the simulated agent.
func (s *Simulation) Agent() *systems.Agent { return s.agent }

// Ticks returns the number of completed ticks.
func (s *Simulation) Ticks() int { return s.ticks }

// SimTime returns the total simulated time.
func (s *Simulation) SimTime() float64 { return s.simTime }

// Tick advances simulated time by timestep: the field is blended around the
// agent first, then the agent moves and turns using the updated field.
func (s *Simulation) Tick(timestep float64) {
	s.startPhase(telemetry.PhaseInfluence)
	s.lastUpdated = s.field.ApplyInfluence(timestep, s.agent)

	s.startPhase(telemetry.PhaseMove)
	s.agent.Move(timestep, s.field)

	s.ticks++
	s.simTime += timestep
}

func (s *Simulation) startPhase(phase string) {
	if s.perf != nil {
		s.perf.StartPhase(phase)
	}
}

// Snapshot serializes the current field labelled with frame. The result
// shares no memory with the field.
func (s *Simulation) Snapshot(frame int) renderer.Snapshot {
	s.values = s.field.Values(s.values)
	return renderer.NewSnapshot(frame, s.field.Side(), s.values)
}

// Values returns the current field values in storage order. The slice is
// reused by the next call to Values, Snapshot or Stats.
func (s *Simulation) Values() []float64 {
	s.values = s.field.Values(s.values)
	return s.values
}

// Stats summarizes the current state.
func (s *Simulation) Stats() telemetry.FieldStats {
	st := telemetry.FieldStats{
		Tick:         s.ticks,
		SimTime:      s.simTime,
		AgentX:       s.agent.X,
		AgentY:       s.agent.Y,
		Heading:      s.agent.Direction,
		CellsUpdated: s.lastUpdated,
	}
	s.values = s.field.Values(s.values)
	s.sorted = telemetry.ComputeValueStats(&st, s.values, s.sorted)
	return st
}
