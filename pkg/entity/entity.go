// pkg/entity/entity.go
package entity

import (
	"sync/atomic"

	"github.com/opd-ai/go-rocket/pkg/physics"
)

// ID is a unique identifier for an entity
type ID uint64

var lastID atomic.Uint64

// GenerateID returns a process-wide unique, non-zero ID.
func GenerateID() ID {
	return ID(lastID.Add(1))
}

// Entity is the base interface for all objects drawn in the world
type Entity interface {
	GetID() ID
	GetPosition() physics.Vector2D
	Render(r Renderer)
}

// BaseEntity contains common functionality for moving bodies
type BaseEntity struct {
	ID       ID
	Position physics.Vector2D
	Velocity physics.Vector2D
	Collider physics.Circle
}

// GetID returns the entity's unique identifier
func (e *BaseEntity) GetID() ID {
	return e.ID
}

// GetPosition returns the entity's position
func (e *BaseEntity) GetPosition() physics.Vector2D {
	return e.Position
}

// GetCollider returns the entity's collision shape
func (e *BaseEntity) GetCollider() physics.Circle {
	return physics.Circle{
		Center: e.Position,
		Radius: e.Collider.Radius,
	}
}

// Update updates the entity's position based on velocity
func (e *BaseEntity) Update(deltaTime float64) {
	e.Position = e.Position.Add(e.Velocity.Scale(deltaTime))
	e.Collider.Center = e.Position
}
