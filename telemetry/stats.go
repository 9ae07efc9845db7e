package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FieldStats summarizes the field and agent at the end of a tick.
type FieldStats struct {
	Tick    int     `csv:"tick"`
	SimTime float64 `csv:"sim_time"`

	AgentX  float64 `csv:"agent_x"`
	AgentY  float64 `csv:"agent_y"`
	Heading float64 `csv:"heading"`

	// Cells rewritten by the last tick's influence pass
	CellsUpdated int `csv:"cells_updated"`

	// Value distribution over the whole grid
	Mean float64 `csv:"mean"`
	Std  float64 `csv:"std"`
	Min  float64 `csv:"min"`
	Max  float64 `csv:"max"`
	P50  float64 `csv:"p50"`
	P90  float64 `csv:"p90"`
	Mass float64 `csv:"mass"` // Sum of all values

	// Fraction of cells past the flip midpoint
	Flipped float64 `csv:"flipped"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeValueStats fills the distribution fields of s from values.
// scratch is reused for sorting and returned for the next call.
func ComputeValueStats(s *FieldStats, values, scratch []float64) []float64 {
	if len(values) == 0 {
		return scratch
	}

	s.Mean, s.Std = stat.MeanStdDev(values, nil)
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.Mass = floats.Sum(values)

	flipped := 0
	for _, v := range values {
		if v >= 0.5 {
			flipped++
		}
	}
	s.Flipped = float64(flipped) / float64(len(values))

	if cap(scratch) < len(values) {
		scratch = make([]float64, len(values))
	}
	scratch = scratch[:len(values)]
	copy(scratch, values)
	sort.Float64s(scratch)
	s.P50 = Percentile(scratch, 0.5)
	s.P90 = Percentile(scratch, 0.9)

	return scratch
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", s.Tick),
		slog.Float64("sim_time", s.SimTime),
		slog.Float64("agent_x", s.AgentX),
		slog.Float64("agent_y", s.AgentY),
		slog.Float64("heading", s.Heading),
		slog.Int("cells_updated", s.CellsUpdated),
		slog.Float64("mean", s.Mean),
		slog.Float64("max", s.Max),
		slog.Float64("flipped", s.Flipped),
	)
}
