package renderer

import (
	"bufio"
	"io"
)

// asciiRamp lists glyphs from empty to full; asciiSteps are the upper bounds
// of every glyph but the last.
const asciiRamp = " .,-=+%&@#"

var asciiSteps = [...]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}

// Glyph returns the ramp character for a value in [0,1].
func Glyph(val float64) byte {
	for k, limit := range asciiSteps {
		if val < limit {
			return asciiRamp[k]
		}
	}
	return asciiRamp[len(asciiRamp)-1]
}

// WriteASCII renders a side×side row-major grid as one text line per row.
func WriteASCII(w io.Writer, side int, values []float64) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < side; i++ {
		for _, v := range values[i*side : (i+1)*side] {
			bw.WriteByte(Glyph(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
