// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-rocket/pkg/entity"
	"github.com/opd-ai/go-rocket/pkg/logging"
)

// NullRenderer draws nothing. It logs each call at debug level and counts
// presented frames, which is all a headless run needs.
type NullRenderer struct {
	logger *logging.Logger
	frames uint64
}

// NewNullRenderer creates a NullRenderer logging to logger.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	return &NullRenderer{logger: logger}
}

// Frames returns the number of Present calls
func (d *NullRenderer) Frames() uint64 {
	return d.frames
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	d.frames++
}

// RenderRocket implements entity.Renderer.
func (d *NullRenderer) RenderRocket(rocket *entity.Rocket) {
	if rocket == nil {
		return
	}
	d.logger.Debug(context.Background(), "RenderRocket called",
		"rocket_id", rocket.ID,
		"x", rocket.State.Position.X,
		"y", rocket.State.Position.Y,
		"fuel", rocket.State.Fuel,
	)
}

// RenderObstacle implements entity.Renderer.
func (d *NullRenderer) RenderObstacle(obstacle *entity.Obstacle) {
	if obstacle == nil {
		return
	}
	d.logger.Debug(context.Background(), "RenderObstacle called",
		"obstacle_id", obstacle.ID,
		"x", obstacle.Position.X,
		"y", obstacle.Position.Y,
	)
}
