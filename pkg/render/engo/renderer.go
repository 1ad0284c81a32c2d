// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-rocket/pkg/entity"
)

var (
	colorRocket   = color.RGBA{255, 255, 255, 255}
	colorBurning  = color.RGBA{255, 190, 120, 255}
	colorRetro    = color.RGBA{150, 210, 255, 255}
	colorObstacle = color.RGBA{140, 120, 100, 255}
)

// SpriteSystem is the part of common.RenderSystem the renderer uses.
type SpriteSystem interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
	seen bool
}

// EngoRenderer implements entity.Renderer and field.BodyObserver on top
// of an engo render system. Each body owns one sprite whose components
// are moved in place every frame.
type EngoRenderer struct {
	system SpriteSystem
	camera *Camera
	assets *Assets

	rocket    *sprite
	obstacles map[entity.ID]*sprite
}

// NewEngoRenderer creates a renderer. Sprites created before Attach are
// added to the render system when it is attached.
func NewEngoRenderer(camera *Camera, assets *Assets) *EngoRenderer {
	return &EngoRenderer{
		camera:    camera,
		assets:    assets,
		obstacles: make(map[entity.ID]*sprite),
	}
}

// Attach connects the renderer to the scene's render system
func (r *EngoRenderer) Attach(system SpriteSystem) {
	r.system = system
	if r.rocket != nil {
		r.add(r.rocket)
	}
	for _, s := range r.obstacles {
		r.add(s)
	}
}

// Sprites returns the number of obstacle sprites
func (r *EngoRenderer) Sprites() int {
	return len(r.obstacles)
}

// ObstacleAdded implements field.BodyObserver
func (r *EngoRenderer) ObstacleAdded(o *entity.Obstacle) {
	if _, ok := r.obstacles[o.ID]; ok {
		return
	}
	s := r.newSprite(r.assets.Obstacle(), colorObstacle)
	r.obstacles[o.ID] = s
	r.placeObstacle(s, o)
}

// ObstacleRemoved implements field.BodyObserver
func (r *EngoRenderer) ObstacleRemoved(id entity.ID) {
	s, ok := r.obstacles[id]
	if !ok {
		return
	}
	delete(r.obstacles, id)
	r.remove(s)
}

// RenderRocket implements entity.Renderer
func (r *EngoRenderer) RenderRocket(rocket *entity.Rocket) {
	if rocket == nil {
		return
	}
	if r.rocket == nil {
		r.rocket = r.newSprite(r.assets.Rocket(), colorRocket)
		r.rocket.SetZIndex(1)
	}
	s := r.rocket
	s.seen = true
	s.Hidden = false
	s.Width = r.camera.Length(rocket.Width)
	s.Height = r.camera.Length(rocket.Height)
	s.Scale = fitScale(s.Drawable, s.Width, s.Height)
	s.Rotation = float32(rocket.State.Heading * 180 / math.Pi)
	s.SetCenter(r.camera.WorldToScreen(rocket.State.Position))

	switch {
	case rocket.State.FuelConsumption > 0:
		s.Color = colorBurning
	case rocket.State.FuelConsumption < 0:
		s.Color = colorRetro
	default:
		s.Color = colorRocket
	}
}

// RenderObstacle implements entity.Renderer
func (r *EngoRenderer) RenderObstacle(o *entity.Obstacle) {
	if o == nil {
		return
	}
	s, ok := r.obstacles[o.ID]
	if !ok {
		r.ObstacleAdded(o)
		s = r.obstacles[o.ID]
	}
	s.seen = true
	r.placeObstacle(s, o)
}

// Clear implements entity.Renderer
func (r *EngoRenderer) Clear() {
	if r.rocket != nil {
		r.rocket.seen = false
	}
	for _, s := range r.obstacles {
		s.seen = false
	}
}

// Present implements entity.Renderer. Sprites not drawn since Clear are
// dropped; the rocket is only hidden.
func (r *EngoRenderer) Present() {
	for id, s := range r.obstacles {
		if !s.seen {
			delete(r.obstacles, id)
			r.remove(s)
		}
	}
	if r.rocket != nil && !r.rocket.seen {
		r.rocket.Hidden = true
	}
}

func (r *EngoRenderer) placeObstacle(s *sprite, o *entity.Obstacle) {
	d := r.camera.Length(2 * o.Collider.Radius)
	s.Width, s.Height = d, d
	s.Scale = fitScale(s.Drawable, d, d)
	s.SetCenter(r.camera.WorldToScreen(o.Position))
}

// fitScale stretches a texture to w by h pixels. Shapes are sized by
// their space component and keep unit scale.
func fitScale(d common.Drawable, w, h float32) engo.Point {
	if d.Width() == 0 || d.Height() == 0 {
		return engo.Point{X: 1, Y: 1}
	}
	return engo.Point{X: w / d.Width(), Y: h / d.Height()}
}

func (r *EngoRenderer) newSprite(d common.Drawable, c color.Color) *sprite {
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.Drawable = d
	s.Color = c
	r.add(s)
	return s
}

func (r *EngoRenderer) add(s *sprite) {
	if r.system != nil {
		r.system.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	}
}

func (r *EngoRenderer) remove(s *sprite) {
	if r.system != nil {
		r.system.Remove(s.BasicEntity)
	}
}
