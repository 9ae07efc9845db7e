package renderer

import "fmt"

// FrameName returns prefix followed by tick zero-padded to at least digits
// and the PGM extension, e.g. FrameName("out", 7, 4) == "out0007.pgm".
func FrameName(prefix string, tick, digits int) string {
	return fmt.Sprintf("%s%0*d%s", prefix, digits, tick, Extension)
}
