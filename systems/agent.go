package systems

import "math"

// DefaultSpeed is the agent's travel speed in world units per unit time.
const DefaultSpeed = 1.0

// Agent is the ant: a moving perturbation source whose heading responds to
// the field value under it. Implements Influencer.
type Agent struct {
	X, Y      float64
	Direction float64 // radians

	speed   float64
	falloff Falloff
	flip    Flip
}

// NewAgent creates an agent at the origin heading along +x with the linear
// falloff and the inverting flip.
func NewAgent() *Agent {
	return NewAgentWithSpeed(DefaultSpeed)
}

// NewAgentWithSpeed is NewAgent with a custom constant speed.
func NewAgentWithSpeed(speed float64) *Agent {
	return &Agent{
		speed:   speed,
		falloff: LinearFalloff{},
		flip:    InvertFlip{},
	}
}

// Speed returns the agent's constant speed.
func (a *Agent) Speed() float64 { return a.speed }

// Position returns the agent's world position.
func (a *Agent) Position() (x, y float64) { return a.X, a.Y }

// Heading returns the agent's direction in radians.
func (a *Agent) Heading() float64 { return a.Direction }

// Reach returns the distance beyond which the agent has no influence.
func (a *Agent) Reach() float64 { return a.falloff.Reach() }

// InfluenceFalloff returns the agent's weight at (px, py).
func (a *Agent) InfluenceFalloff(px, py float64) float64 {
	return a.falloff.Weight(math.Hypot(a.X-px, a.Y-py))
}

// Rule blends val toward its flip target, scaled by elapsed time and the
// agent's influence at (px, py). Cells out of reach are returned unchanged.
func (a *Agent) Rule(timestep, px, py, val float64) float64 {
	influence := a.InfluenceFalloff(px, py)
	if influence == 0 {
		return val
	}
	out := lerp(val, a.flip.Target(val), timestep*influence)
	return clamp01(out)
}

// Move advances the agent along its heading, then turns it by the value
// sampled at the new position: 0 turns at -π/2 per unit time, 1 at +π/2.
// The sample must come from the field as already updated this tick.
func (a *Agent) Move(timestep float64, field ValueSampler) {
	a.X += timestep * a.speed * math.Cos(a.Direction)
	a.Y += timestep * a.speed * math.Sin(a.Direction)
	a.Direction += (-math.Pi/2 + field.NearestValue(a.X, a.Y)*math.Pi) * timestep
}
