// pkg/physics/rocket.go
package physics

// MaxSpeed bounds the rocket speed along its heading, in m/s.
const MaxSpeed = 300.0

// DampingFactor is applied to the speed once per tick to model drag.
const DampingFactor = 0.98

// RateStepFraction is the share of the maximum fuel consumption added or
// removed per tick while a thrust key is held.
const RateStepFraction = 0.002

// Controls is the set of inputs sampled once per tick.
type Controls struct {
	Forward     bool // up: raise the burn rate
	Reverse     bool // down: lower the burn rate
	RotateLeft  bool
	RotateRight bool
}

// RocketState is the mutable state of the rocket between ticks.
type RocketState struct {
	Position        Vector2D
	Speed           float64 // m/s along Heading
	Heading         float64 // radians, 0 is up
	Fuel            float64 // kg remaining
	FuelConsumption float64 // kg/s, positive forward, negative retro
	Acceleration    float64 // m/s², recomputed every tick
}

// NewRocketState returns a fueled rocket at rest on the pad.
func NewRocketState(fuel float64, pad Vector2D) RocketState {
	return RocketState{
		Position: pad,
		Fuel:     fuel,
	}
}

// Mass returns the current total mass for the given dry mass.
func (s RocketState) Mass(dryMass float64) float64 {
	return dryMass + s.Fuel
}

// Body returns the rocket's axis-aligned collision box.
func (s RocketState) Body(width, height float64) Rect {
	return Rect{Center: s.Position, Width: width, Height: height}
}
