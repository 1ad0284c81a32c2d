// pkg/render/engo/hud.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-rocket/pkg/engine"
	"github.com/opd-ai/go-rocket/pkg/event"
	"github.com/opd-ai/go-rocket/pkg/render"
)

// SnapshotSource provides the state shown on the HUD
type SnapshotSource interface {
	Snapshot() *engine.GameState
}

type hudText struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// HUDSystem draws the status line, the key help and a banner for the
// idle and paused phases. Bus handlers run on the frame goroutine that
// ticks the controller, so the HUD needs no locking.
type HUDSystem struct {
	source SnapshotSource
	font   *common.Font

	status *hudText
	help   *hudText
	banner *hudText

	gameOver  bool
	lastScore int
	subs      []*event.Subscription
}

// NewHUDSystem creates a HUD for source
func NewHUDSystem(source SnapshotSource) *HUDSystem {
	return &HUDSystem{source: source}
}

// Listen follows run events so the banner can show the final score.
func (hud *HUDSystem) Listen(bus *event.Bus) {
	hud.subs = append(hud.subs,
		bus.Subscribe(event.GameOver, func(e event.Event) {
			if over, ok := e.(*event.GameOverEvent); ok {
				hud.gameOver = true
				hud.lastScore = over.FinalScore
			}
		}),
		bus.Subscribe(event.RunStarted, func(event.Event) {
			hud.gameOver = false
		}),
	)
}

// Attach creates the text entities. Without a font the HUD stays blank.
func (hud *HUDSystem) Attach(system SpriteSystem, font *common.Font) {
	if font == nil {
		return
	}
	hud.font = font
	hud.status = hud.newText(system, color.White)
	hud.help = hud.newText(system, color.RGBA{160, 160, 160, 255})
	hud.banner = hud.newText(system, color.RGBA{255, 220, 0, 255})
}

func (hud *HUDSystem) newText(system SpriteSystem, c color.Color) *hudText {
	t := &hudText{BasicEntity: ecs.NewBasic()}
	t.Drawable = common.Text{Font: hud.font}
	t.Color = c
	t.Scale = engo.Point{X: 1, Y: 1}
	t.SetShader(common.HUDShader)
	t.SetZIndex(10)
	system.Add(&t.BasicEntity, &t.RenderComponent, &t.SpaceComponent)
	return t
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update refreshes the HUD text from the latest snapshot
func (hud *HUDSystem) Update(dt float32) {
	if hud.font == nil {
		return
	}
	state := hud.source.Snapshot()
	w, h := engo.GameWidth(), engo.GameHeight()

	hud.set(hud.status, render.StatusLine(state), engo.Point{X: 10, Y: 10})
	hud.set(hud.help, render.HelpLine, engo.Point{X: 10, Y: h - 30})

	msg := render.Banner(state.Phase, hud.gameOver, hud.lastScore)
	hud.set(hud.banner, msg, engo.Point{X: w/2 - float32(len(msg))*5, Y: h / 2})
}

func (hud *HUDSystem) set(t *hudText, text string, at engo.Point) {
	t.Drawable = common.Text{Font: hud.font, Text: text}
	t.Hidden = text == ""
	t.Position = at
}

// Close stops following run events
func (hud *HUDSystem) Close() {
	for _, sub := range hud.subs {
		sub.Cancel()
	}
	hud.subs = nil
}
