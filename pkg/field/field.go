// pkg/field/field.go
package field

import (
	"math/rand/v2"

	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/entity"
	"github.com/opd-ai/go-rocket/pkg/physics"
)

// RandomSource yields uniformly distributed floats in [lo, hi).
type RandomSource interface {
	Uniform(lo, hi float64) float64
}

// BodyObserver mirrors the obstacle lifecycle, typically to create and
// remove sprites in a renderer.
type BodyObserver interface {
	ObstacleAdded(o *entity.Obstacle)
	ObstacleRemoved(id entity.ID)
}

// Settings is the geometry and sampling ranges of the field.
type Settings struct {
	Width, Height      float64
	SpawnY             float64
	SpawnMargin        float64
	ReapMargin         float64
	MinSpeed, MaxSpeed float64
	MinScale, MaxScale float64
	Hitbox             entity.HitboxShape
	QuadTreeCapacity   int
}

// SettingsFrom extracts the field settings from a game config.
func SettingsFrom(cfg *config.GameConfig) Settings {
	o := cfg.Obstacles
	return Settings{
		Width:       cfg.World.Width,
		Height:      cfg.World.Height,
		SpawnY:      o.SpawnY,
		SpawnMargin: o.SpawnMargin,
		ReapMargin:  o.ReapMargin,
		MinSpeed:    o.MinSpeed,
		MaxSpeed:    o.MaxSpeed,
		MinScale:    o.MinScale,
		MaxScale:    o.MaxScale,
		Hitbox: entity.HitboxShape{
			BaseRadius: o.BaseRadius,
			Margin:     o.HitboxMargin,
			Shrink:     o.ShrinkFactor,
		},
		QuadTreeCapacity: 4,
	}
}

// Field owns the falling obstacles. It is not safe for concurrent use; the
// run controller drives it from the frame goroutine.
type Field struct {
	settings  Settings
	rnd       RandomSource
	observer  BodyObserver
	obstacles []*entity.Obstacle
	frozen    bool
	tree      *physics.QuadTree
}

// New creates an empty field. observer may be nil.
func New(settings Settings, rnd RandomSource, observer BodyObserver) *Field {
	if observer == nil {
		observer = nopObserver{}
	}
	// cover everything between the spawn line and the reap line
	top := settings.SpawnY - settings.Hitbox.Radius(settings.MaxScale)
	bottom := settings.Height + settings.ReapMargin
	boundary := physics.Rect{
		Center: physics.Vector2D{X: settings.Width / 2, Y: (top + bottom) / 2},
		Width:  settings.Width,
		Height: bottom - top,
	}
	return &Field{
		settings: settings,
		rnd:      rnd,
		observer: observer,
		tree:     physics.NewQuadTree(boundary, settings.QuadTreeCapacity),
	}
}

// Spawn adds one obstacle above the top edge at a random column with a
// random fall speed and scale.
func (f *Field) Spawn() *entity.Obstacle {
	s := f.settings
	x := f.rnd.Uniform(0, s.Width-s.SpawnMargin)
	speed := f.rnd.Uniform(s.MinSpeed, s.MaxSpeed)
	scale := f.rnd.Uniform(s.MinScale, s.MaxScale)

	o := entity.NewObstacle(entity.GenerateID(), physics.Vector2D{X: x, Y: s.SpawnY}, speed, scale, s.Hitbox)
	if f.frozen {
		o.Freeze()
	}
	f.obstacles = append(f.obstacles, o)
	f.observer.ObstacleAdded(o)
	return o
}

// Advance moves every obstacle by its velocity over dt seconds.
func (f *Field) Advance(dt float64) {
	for _, o := range f.obstacles {
		o.Update(dt)
	}
}

// Reap removes obstacles that fell below the bottom margin and returns
// their IDs.
func (f *Field) Reap() []entity.ID {
	limit := f.settings.Height + f.settings.ReapMargin
	var reaped []entity.ID
	kept := f.obstacles[:0]
	for _, o := range f.obstacles {
		if o.Position.Y > limit {
			reaped = append(reaped, o.ID)
			f.observer.ObstacleRemoved(o.ID)
			continue
		}
		kept = append(kept, o)
	}
	clear(f.obstacles[len(kept):])
	f.obstacles = kept
	return reaped
}

// Clear removes every obstacle.
func (f *Field) Clear() {
	for _, o := range f.obstacles {
		f.observer.ObstacleRemoved(o.ID)
	}
	f.obstacles = nil
	f.frozen = false
}

// Freeze stops every obstacle in place.
func (f *Field) Freeze() {
	f.frozen = true
	for _, o := range f.obstacles {
		o.Freeze()
	}
}

// Resume gives every obstacle a freshly sampled fall speed.
func (f *Field) Resume() {
	f.frozen = false
	for _, o := range f.obstacles {
		o.Resume(f.rnd.Uniform(f.settings.MinSpeed, f.settings.MaxSpeed))
	}
}

// Frozen reports whether the field is stopped.
func (f *Field) Frozen() bool {
	return f.frozen
}

// Len returns the number of live obstacles.
func (f *Field) Len() int {
	return len(f.obstacles)
}

// Obstacles returns a copy of the live obstacle list in spawn order.
func (f *Field) Obstacles() []*entity.Obstacle {
	out := make([]*entity.Obstacle, len(f.obstacles))
	copy(out, f.obstacles)
	return out
}

// Overlapping returns the obstacles whose collider overlaps body, in spawn
// order.
func (f *Field) Overlapping(body physics.Rect) []*entity.Obstacle {
	if len(f.obstacles) == 0 {
		return nil
	}

	f.tree.Clear()
	candidates := make(map[entity.ID]bool)
	var outside []*entity.Obstacle
	for _, o := range f.obstacles {
		if !f.tree.Insert(o.Position, o.ID) {
			outside = append(outside, o)
		}
	}
	reach := f.settings.Hitbox.Radius(f.settings.MaxScale)
	for _, id := range f.tree.Query(body.Grow(reach)) {
		candidates[id.(entity.ID)] = true
	}
	for _, o := range outside {
		candidates[o.ID] = true
	}

	var hits []*entity.Obstacle
	for _, o := range f.obstacles {
		if candidates[o.ID] && body.OverlapsCircle(o.GetCollider()) {
			hits = append(hits, o)
		}
	}
	return hits
}

type nopObserver struct{}

func (nopObserver) ObstacleAdded(*entity.Obstacle) {}
func (nopObserver) ObstacleRemoved(entity.ID) {}

// Rand is a RandomSource backed by math/rand/v2.
type Rand struct {
	r *rand.Rand
}

// NewRand returns a seeded RandomSource.
func NewRand(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Uniform returns a float in [lo, hi).
func (r *Rand) Uniform(lo, hi float64) float64 {
	return lo + r.r.Float64()*(hi-lo)
}
