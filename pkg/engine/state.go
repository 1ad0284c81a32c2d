// pkg/engine/state.go
package engine

import (
	"github.com/opd-ai/go-rocket/pkg/entity"
	"github.com/opd-ai/go-rocket/pkg/physics"
)

// GameState represents a snapshot of the simulation
type GameState struct {
	Tick            uint64          `json:"tick"`
	Phase           string          `json:"phase"`
	Score           int             `json:"score"`
	Difficulty      string          `json:"difficulty"`
	DifficultyLabel string          `json:"difficultyLabel"`
	TimeStep        float64         `json:"timeStep"`
	Rocket          RocketState     `json:"rocket"`
	Obstacles       []ObstacleState `json:"obstacles"`
}

// RocketState represents a snapshot of the rocket
type RocketState struct {
	Position        physics.Vector2D `json:"position"`
	Heading         float64          `json:"heading"`
	Speed           float64          `json:"speed"`
	Fuel            float64          `json:"fuel"`
	FuelConsumption float64          `json:"fuelConsumption"`
	Acceleration    float64          `json:"acceleration"`
	Width           float64          `json:"width"`
	Height          float64          `json:"height"`
}

// ObstacleState represents a snapshot of one obstacle
type ObstacleState struct {
	ID       entity.ID        `json:"id"`
	Position physics.Vector2D `json:"position"`
	Radius   float64          `json:"radius"`
	Scale    float64          `json:"scale"`
}

// Snapshot returns a copy of the simulation state. It is safe to call from
// any goroutine.
func (c *Controller) Snapshot() *GameState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.createGameStateSnapshot()
}

func (c *Controller) createGameStateSnapshot() *GameState {
	s := c.rocket.State
	state := &GameState{
		Tick:            c.tick,
		Phase:           c.phase.String(),
		Score:           c.score,
		Difficulty:      string(c.difficulty),
		DifficultyLabel: c.difficulty.Label(),
		TimeStep:        c.settings.TimeStep,
		Rocket: RocketState{
			Position:        s.Position,
			Heading:         s.Heading,
			Speed:           s.Speed,
			Fuel:            s.Fuel,
			FuelConsumption: s.FuelConsumption,
			Acceleration:    s.Acceleration,
			Width:           c.rocket.Width,
			Height:          c.rocket.Height,
		},
		Obstacles: c.getObstacleStates(),
	}
	return state
}

func (c *Controller) getObstacleStates() []ObstacleState {
	obstacles := c.field.Obstacles()
	states := make([]ObstacleState, 0, len(obstacles))
	for _, o := range obstacles {
		states = append(states, ObstacleState{
			ID:       o.ID,
			Position: o.Position,
			Radius:   o.Collider.Radius,
			Scale:    o.Scale,
		})
	}
	return states
}
