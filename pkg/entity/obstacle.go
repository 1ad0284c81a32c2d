// pkg/entity/obstacle.go
package entity

import (
	"github.com/opd-ai/go-rocket/pkg/physics"
)

// HitboxShape describes how an obstacle's collider is derived from its
// sprite scale. The resulting radius is
// (BaseRadius*scale + Margin) * Shrink, which is slightly smaller than the
// drawn body.
type HitboxShape struct {
	BaseRadius float64
	Margin     float64
	Shrink     float64
}

// Radius returns the collider radius for the given scale.
func (h HitboxShape) Radius(scale float64) float64 {
	return (h.BaseRadius*scale + h.Margin) * h.Shrink
}

// Obstacle is a falling body. It moves straight down at FallSpeed unless
// frozen.
type Obstacle struct {
	BaseEntity
	Scale     float64
	FallSpeed float64
	Frozen    bool
}

// NewObstacle creates an obstacle at position falling at fallSpeed.
func NewObstacle(id ID, position physics.Vector2D, fallSpeed, scale float64, shape HitboxShape) *Obstacle {
	return &Obstacle{
		BaseEntity: BaseEntity{
			ID:       id,
			Position: position,
			Velocity: physics.Vector2D{Y: fallSpeed},
			Collider: physics.Circle{
				Center: position,
				Radius: shape.Radius(scale),
			},
		},
		Scale:     scale,
		FallSpeed: fallSpeed,
	}
}

// Freeze zeroes the velocity. FallSpeed is kept for inspection only;
// resuming assigns a fresh speed.
func (o *Obstacle) Freeze() {
	o.Velocity = physics.Vector2D{}
	o.Frozen = true
}

// Resume starts the obstacle falling again at fallSpeed.
func (o *Obstacle) Resume(fallSpeed float64) {
	o.FallSpeed = fallSpeed
	o.Velocity = physics.Vector2D{Y: fallSpeed}
	o.Frozen = false
}

// Render draws the obstacle
func (o *Obstacle) Render(r Renderer) {
	r.RenderObstacle(o)
}
