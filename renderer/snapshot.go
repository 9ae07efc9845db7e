// Package renderer turns field state into rasters: plain PGM snapshots for
// frame output, ASCII art for terminals, and an optional live window.
package renderer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// PGM plain-format constants.
const (
	Magic     = "P2"
	MaxSample = 256
	Extension = ".pgm"
)

// ErrMalformed is returned when a raster cannot be parsed.
var ErrMalformed = errors.New("malformed pgm raster")

// Snapshot is a fully serialized, immutable copy of one tick's field values.
// Writers may hold it while the field moves on.
type Snapshot struct {
	Tick int
	Side int
	Data []byte
}

// Quantize maps a value in [0,1] to a sample. 1.0 maps to MaxSample itself;
// the declared maxval is MaxSample so this stays a valid sample.
func Quantize(val float64) int {
	return int(math.Floor(val * MaxSample))
}

// AppendPGM appends a plain PGM raster of a side×side grid to dst. values
// must hold side*side entries in row-major order. Each sample is followed by
// a single space.
func AppendPGM(dst []byte, side int, values []float64) []byte {
	dst = append(dst, Magic...)
	dst = append(dst, '\n')
	dst = strconv.AppendInt(dst, int64(side), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(side), 10)
	dst = append(dst, '\n')
	dst = strconv.AppendInt(dst, MaxSample, 10)
	dst = append(dst, '\n')
	for _, v := range values[:side*side] {
		dst = strconv.AppendInt(dst, int64(Quantize(v)), 10)
		dst = append(dst, ' ')
	}
	return dst
}

// NewSnapshot serializes values into a new Snapshot. The returned data does
// not alias values.
func NewSnapshot(tick, side int, values []float64) Snapshot {
	// up to 4 bytes per sample ("256 ") plus a short header
	buf := make([]byte, 0, side*side*4+32)
	return Snapshot{
		Tick: tick,
		Side: side,
		Data: AppendPGM(buf, side, values),
	}
}

// WriteTo writes the serialized raster to w.
func (s Snapshot) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Data)
	return int64(n), err
}

// Raster is a parsed plain PGM image.
type Raster struct {
	Width, Height int
	MaxVal        int
	Samples       []int
}

// ParseSnapshot reads a plain PGM raster. Comments are not supported.
func ParseSnapshot(r io.Reader) (*Raster, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	next := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("reading %s: %w", what, err)
			}
			return "", fmt.Errorf("%w: missing %s", ErrMalformed, what)
		}
		return sc.Text(), nil
	}
	nextInt := func(what string) (int, error) {
		tok, err := next(what)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q", ErrMalformed, what, tok)
		}
		return v, nil
	}

	magic, err := next("magic")
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic %q", ErrMalformed, magic)
	}

	ras := &Raster{}
	if ras.Width, err = nextInt("width"); err != nil {
		return nil, err
	}
	if ras.Height, err = nextInt("height"); err != nil {
		return nil, err
	}
	if ras.MaxVal, err = nextInt("maxval"); err != nil {
		return nil, err
	}
	if ras.Width < 0 || ras.Height < 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrMalformed, ras.Width, ras.Height)
	}

	ras.Samples = make([]int, 0, ras.Width*ras.Height)
	for sc.Scan() {
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: sample %q", ErrMalformed, sc.Text())
		}
		ras.Samples = append(ras.Samples, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	return ras, nil
}

// Values converts samples back to field values in [0, MaxVal/MaxSample].
func (r *Raster) Values() []float64 {
	scale := float64(r.MaxVal)
	if scale <= 0 {
		scale = MaxSample
	}
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = float64(s) / scale
	}
	return out
}
