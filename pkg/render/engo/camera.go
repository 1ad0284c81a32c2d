// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-rocket/pkg/physics"
)

// Camera maps the fixed world onto the window. The world is scaled
// uniformly to fit and centred, leaving bars on the longer axis.
type Camera struct {
	worldW, worldH   float64
	screenW, screenH float32
}

// NewCamera returns a camera for a world of the given size. The screen
// size starts equal to the world and is updated with Resize.
func NewCamera(worldWidth, worldHeight float64) *Camera {
	return &Camera{
		worldW:  worldWidth,
		worldH:  worldHeight,
		screenW: float32(worldWidth),
		screenH: float32(worldHeight),
	}
}

// Resize sets the window size in pixels. Non-positive sizes are ignored.
func (c *Camera) Resize(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	c.screenW, c.screenH = width, height
}

// Scale returns screen pixels per world unit
func (c *Camera) Scale() float32 {
	sx := c.screenW / float32(c.worldW)
	sy := c.screenH / float32(c.worldH)
	if sx < sy {
		return sx
	}
	return sy
}

func (c *Camera) offset() (float32, float32) {
	s := c.Scale()
	return (c.screenW - float32(c.worldW)*s) / 2, (c.screenH - float32(c.worldH)*s) / 2
}

// WorldToScreen converts world coordinates to screen coordinates
func (c *Camera) WorldToScreen(worldPos physics.Vector2D) engo.Point {
	s := c.Scale()
	ox, oy := c.offset()
	return engo.Point{
		X: float32(worldPos.X)*s + ox,
		Y: float32(worldPos.Y)*s + oy,
	}
}

// Length converts a world distance to pixels
func (c *Camera) Length(l float64) float32 {
	return float32(l) * c.Scale()
}
