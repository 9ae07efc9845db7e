package systems

// Falloff maps a distance from the agent to an influence weight in [0,1].
type Falloff interface {
	Weight(distance float64) float64
	// Reach is the distance beyond which Weight is always zero.
	Reach() float64
}

// Flip maps a cell value to the value a full tick of influence drives it toward.
type Flip interface {
	Target(val float64) float64
}

// LinearFalloff is 1 at the agent and falls to 0 at distance 1.
type LinearFalloff struct{}

// Weight returns max(0, 1-distance).
func (LinearFalloff) Weight(distance float64) float64 {
	return max(0, 1-distance)
}

// Reach returns 1.
func (LinearFalloff) Reach() float64 { return 1 }

// InvertFlip is the binary state inversion of the discrete automaton.
type InvertFlip struct{}

// Target returns 1-val.
func (InvertFlip) Target(val float64) float64 {
	return 1 - val
}
