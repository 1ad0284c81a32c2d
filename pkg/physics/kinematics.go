// pkg/physics/kinematics.go
package physics

// Integrate advances heading and speed by one explicit Euler step and
// returns the position delta for the tick. The speed clamp runs before
// the acceleration is applied, so Speed may briefly leave ±MaxSpeed
// until the next tick clamps it again.
func Integrate(state *RocketState, controls Controls, rotationRate, dt float64) Vector2D {
	if controls.RotateLeft {
		state.Heading -= rotationRate * dt
	}
	if controls.RotateRight {
		state.Heading += rotationRate * dt
	}

	state.Speed = Clamp(state.Speed, -MaxSpeed, MaxSpeed)

	delta := HeadingVector(state.Heading).Scale(state.Speed * dt)

	state.Speed *= DampingFactor
	state.Speed -= state.Acceleration * dt

	return delta
}

// Step runs the propulsion model and then the integrator, and moves the
// rocket by the resulting delta.
func Step(state *RocketState, controls Controls, p Propulsion, rotationRate, dt float64) {
	Propel(state, controls, p, dt)
	state.Position = state.Position.Add(Integrate(state, controls, rotationRate, dt))
}
