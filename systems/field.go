package systems

import (
	"errors"
	"fmt"
	"math"
)

// DefaultScanHalfWidth is the half-width, in world units, of the box of cells
// revisited around the agent each tick. It must exceed the falloff reach.
const DefaultScanHalfWidth = 2.0

var (
	// ErrInvalidField is returned for a negative radius or non-positive resolution.
	ErrInvalidField = errors.New("invalid field dimensions")
	// ErrScanTooNarrow is returned when the update box would cut the falloff short.
	ErrScanTooNarrow = errors.New("scan half-width does not exceed falloff reach")
)

// Cell is one sample of the scalar field. X and Y are fixed at construction.
type Cell struct {
	X, Y float64
	Val  float64 // [0,1]
}

// ValueSampler answers nearest-cell value queries at world positions.
type ValueSampler interface {
	NearestValue(x, y float64) float64
}

// Influencer is a source that rewrites cell values near its position.
type Influencer interface {
	Position() (x, y float64)
	Rule(timestep, px, py, val float64) float64
}

// Field is a square grid of cells centered on the world origin.
// Cell (i, j) sits at ((i-r-0.5)*res, (j-r-0.5)*res); storage is row-major
// with i as the row. Implements ValueSampler.
type Field struct {
	radius     int
	side       int
	resolution float64
	cells      []Cell

	scanHalfWidth float64
}

// NewField allocates a (2*radius+1)² grid with every value at 0.
func NewField(radius int, resolution float64) (*Field, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius %d", ErrInvalidField, radius)
	}
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return nil, fmt.Errorf("%w: resolution %v", ErrInvalidField, resolution)
	}

	side := 2*radius + 1
	f := &Field{
		radius:        radius,
		side:          side,
		resolution:    resolution,
		cells:         make([]Cell, side*side),
		scanHalfWidth: DefaultScanHalfWidth,
	}
	for i := 0; i < side; i++ {
		x := (float64(i-radius) - 0.5) * resolution
		for j := 0; j < side; j++ {
			f.cells[i*side+j] = Cell{
				X: x,
				Y: (float64(j-radius) - 0.5) * resolution,
			}
		}
	}
	return f, nil
}

// WithScanHalfWidth sets the half-width of the per-tick update box.
// The box must stay wider than reach or influence would be silently truncated.
func (f *Field) WithScanHalfWidth(halfWidth, reach float64) error {
	if !(halfWidth > reach) {
		return fmt.Errorf("%w: half-width %v, reach %v", ErrScanTooNarrow, halfWidth, reach)
	}
	f.scanHalfWidth = halfWidth
	return nil
}

// Side returns the number of cells per axis.
func (f *Field) Side() int { return f.side }

// Radius returns the grid half-width in cells.
func (f *Field) Radius() int { return f.radius }

// Resolution returns the world units spanned by one cell.
func (f *Field) Resolution() float64 { return f.resolution }

// ScanHalfWidth returns the half-width of the per-tick update box.
func (f *Field) ScanHalfWidth() float64 { return f.scanHalfWidth }

// Extent returns the half-width of the grid in world units.
func (f *Field) Extent() float64 {
	return (float64(f.radius) + 0.5) * f.resolution
}

// Len returns the total cell count.
func (f *Field) Len() int { return len(f.cells) }

// Cell returns a copy of cell (i, j). Panics if out of range.
func (f *Field) Cell(i, j int) Cell {
	return f.cells[i*f.side+j]
}

// SetValue overwrites the value of cell (i, j), clamped to [0,1].
func (f *Field) SetValue(i, j int, v float64) {
	f.cells[i*f.side+j].Val = clamp01(v)
}

// Values copies every cell value into dst in storage order, growing dst if needed.
func (f *Field) Values(dst []float64) []float64 {
	if cap(dst) < len(f.cells) {
		dst = make([]float64, len(f.cells))
	}
	dst = dst[:len(f.cells)]
	for k := range f.cells {
		dst[k] = f.cells[k].Val
	}
	return dst
}

// NearestValue returns the value of the cell whose index box encloses (x, y).
// Indices are floor(coord/res) + radius per axis, clamped to the grid, so
// points outside the field read the border cell.
func (f *Field) NearestValue(x, y float64) float64 {
	i := f.axisIndex(x)
	j := f.axisIndex(y)
	return f.cells[i*f.side+j].Val
}

func (f *Field) axisIndex(coord float64) int {
	idx := math.Floor(coord/f.resolution) + float64(f.radius)
	// Clamp in float space so huge coordinates never overflow the int conversion.
	if !(idx > 0) {
		return 0
	}
	if idx >= float64(f.side-1) {
		return f.side - 1
	}
	return int(idx)
}

// ApplyInfluence rewrites every cell within the scan box around src through
// src.Rule. Only the index range covering the box is visited. Returns the
// number of cells rewritten.
func (f *Field) ApplyInfluence(timestep float64, src Influencer) int {
	ax, ay := src.Position()
	iLo, iHi := f.scanRange(ax)
	jLo, jHi := f.scanRange(ay)

	h := f.scanHalfWidth
	visited := 0
	for i := iLo; i <= iHi; i++ {
		row := f.cells[i*f.side : (i+1)*f.side]
		for j := jLo; j <= jHi; j++ {
			c := &row[j]
			if math.Abs(c.X-ax) >= h || math.Abs(c.Y-ay) >= h {
				continue
			}
			c.Val = src.Rule(timestep, c.X, c.Y, c.Val)
			visited++
		}
	}
	return visited
}

// scanRange returns the inclusive index range whose coordinates may lie
// within the scan box around center. The range is padded by one cell on each
// side; ApplyInfluence performs the exact test. lo > hi means empty.
func (f *Field) scanRange(center float64) (lo, hi int) {
	offset := float64(f.radius) + 0.5
	loF := math.Floor((center-f.scanHalfWidth)/f.resolution+offset) - 1
	hiF := math.Ceil((center+f.scanHalfWidth)/f.resolution+offset) + 1

	last := float64(f.side - 1)
	if math.IsNaN(loF) || math.IsNaN(hiF) || hiF < 0 || loF > last {
		return 0, -1
	}
	if loF < 0 {
		loF = 0
	}
	if hiF > last {
		hiF = last
	}
	return int(loF), int(hiF)
}
