// pkg/physics/propulsion.go
package physics

import "math"

// Propulsion holds the engine constants used by Propel.
type Propulsion struct {
	DryMass            float64 // kg without fuel
	ExhaustVelocity    float64 // m/s
	MaxFuelConsumption float64 // kg/s
	// ClampRate bounds the burn rate to ±MaxFuelConsumption while a thrust
	// key is held. Without it the rate keeps growing for as long as the
	// key is down.
	ClampRate bool
}

// RateStep returns the burn rate change applied per tick.
func (p Propulsion) RateStep() float64 {
	return RateStepFraction * p.MaxFuelConsumption
}

// Propel updates the burn rate, acceleration and remaining fuel of state
// for one tick of length dt, following Meshchersky's equation for a body
// of variable mass: a = -(u·μ) / m.
func Propel(state *RocketState, controls Controls, p Propulsion, dt float64) {
	adjustRate(state, controls, p)

	thrust := p.ExhaustVelocity * state.FuelConsumption
	mass := state.Mass(p.DryMass)
	if mass > 0 {
		state.Acceleration = -thrust / mass
	} else {
		state.Acceleration = 0
	}

	state.Fuel -= math.Abs(state.FuelConsumption) * dt
	if state.Fuel < 0 {
		state.Fuel = 0
	}
	if state.Fuel == 0 {
		state.FuelConsumption = 0
	}
}

func adjustRate(state *RocketState, controls Controls, p Propulsion) {
	if state.Fuel <= 0 {
		state.Fuel = 0
		state.FuelConsumption = 0
		return
	}

	step := p.RateStep()
	if controls.Reverse {
		state.FuelConsumption -= step
	}
	if controls.Forward {
		state.FuelConsumption += step
	}

	if !controls.Forward && !controls.Reverse {
		switch {
		case state.FuelConsumption > 0:
			state.FuelConsumption = math.Max(0, state.FuelConsumption-step)
		case state.FuelConsumption < 0:
			state.FuelConsumption = math.Min(0, state.FuelConsumption+step)
		}
	}

	if p.ClampRate {
		state.FuelConsumption = Clamp(state.FuelConsumption, -p.MaxFuelConsumption, p.MaxFuelConsumption)
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
