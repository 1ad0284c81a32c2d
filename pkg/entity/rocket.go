// pkg/entity/rocket.go
package entity

import (
	"github.com/opd-ai/go-rocket/pkg/physics"
)

// Rocket is the player controlled body. Its motion is owned by the physics
// package; the entity adds identity, body size and rendering.
type Rocket struct {
	ID     ID
	State  physics.RocketState
	Width  float64
	Height float64
}

// NewRocket returns a fueled rocket resting on pad.
func NewRocket(id ID, fuel float64, pad physics.Vector2D, width, height float64) *Rocket {
	return &Rocket{
		ID:     id,
		State:  physics.NewRocketState(fuel, pad),
		Width:  width,
		Height: height,
	}
}

// GetID returns the rocket's unique identifier
func (r *Rocket) GetID() ID {
	return r.ID
}

// GetPosition returns the centre of the rocket body
func (r *Rocket) GetPosition() physics.Vector2D {
	return r.State.Position
}

// Body returns the axis-aligned collision box
func (r *Rocket) Body() physics.Rect {
	return r.State.Body(r.Width, r.Height)
}

// Reset refuels the rocket and puts it back on the pad at rest.
func (r *Rocket) Reset(fuel float64, pad physics.Vector2D) {
	r.State = physics.NewRocketState(fuel, pad)
}

// Step advances the rocket by one tick.
func (r *Rocket) Step(controls physics.Controls, p physics.Propulsion, rotationRate, dt float64) {
	physics.Step(&r.State, controls, p, rotationRate, dt)
}

// KeepInside moves the body back inside a world of the given size.
func (r *Rocket) KeepInside(width, height float64) {
	halfW, halfH := r.Width/2, r.Height/2
	r.State.Position.X = physics.Clamp(r.State.Position.X, halfW, width-halfW)
	r.State.Position.Y = physics.Clamp(r.State.Position.Y, halfH, height-halfH)
}

// Render draws the rocket
func (r *Rocket) Render(rd Renderer) {
	rd.RenderRocket(r)
}
