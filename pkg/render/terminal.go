package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-rocket/pkg/engine"
	"github.com/opd-ai/go-rocket/pkg/entity"
	"github.com/opd-ai/go-rocket/pkg/physics"
)

// hudRows is the number of screen rows reserved for the HUD above and
// below the playfield.
const hudRows = 1

var (
	styleRocket   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleNose     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleFlame    = tcell.StyleDefault.Foreground(tcell.ColorOrangeRed)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorSlateGray)
	styleHUD      = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// TerminalRenderer draws the playfield on a tcell screen. The whole world
// is scaled to fit between the HUD rows.
type TerminalRenderer struct {
	screen tcell.Screen
	worldW float64
	worldH float64
}

// NewTerminalRenderer creates a renderer for a world of the given size.
func NewTerminalRenderer(screen tcell.Screen, worldWidth, worldHeight float64) *TerminalRenderer {
	return &TerminalRenderer{
		screen: screen,
		worldW: worldWidth,
		worldH: worldHeight,
	}
}

// cellSize returns the world units covered by one cell.
func (r *TerminalRenderer) cellSize() (float64, float64) {
	w, h := r.screen.Size()
	rows := h - 2*hudRows
	if w < 1 || rows < 1 {
		return 0, 0
	}
	return r.worldW / float64(w), r.worldH / float64(rows)
}

// worldToScreen converts world coordinates to a screen cell
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	cw, ch := r.cellSize()
	if cw == 0 {
		return -1, -1
	}
	x := int(math.Floor(pos.X / cw))
	y := int(math.Floor(pos.Y/ch)) + hudRows
	return x, y
}

func (r *TerminalRenderer) inField(x, y int) bool {
	w, h := r.screen.Size()
	return x >= 0 && x < w && y >= hudRows && y < h-hudRows
}

func (r *TerminalRenderer) set(x, y int, ch rune, style tcell.Style) {
	if r.inField(x, y) {
		r.screen.SetContent(x, y, ch, nil, style)
	}
}

// Clear implements entity.Renderer
func (r *TerminalRenderer) Clear() {
	r.screen.Clear()
}

// Present implements entity.Renderer
func (r *TerminalRenderer) Present() {
	r.screen.Show()
}

// RenderRocket implements entity.Renderer. The body box is filled and the
// nose cell shows the heading.
func (r *TerminalRenderer) RenderRocket(rocket *entity.Rocket) {
	body := rocket.Body()
	half := physics.Vector2D{X: body.Width / 2, Y: body.Height / 2}
	x0, y0 := r.worldToScreen(body.Center.Sub(half))
	x1, y1 := r.worldToScreen(body.Center.Add(half))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r.set(x, y, '#', styleRocket)
		}
	}

	dir := physics.HeadingVector(rocket.State.Heading)
	reach := math.Max(rocket.Width, rocket.Height) / 2
	nose := rocket.State.Position.Add(dir.Scale(reach))
	nx, ny := r.worldToScreen(nose)
	r.set(nx, ny, headingGlyph(rocket.State.Heading), styleNose)

	if rocket.State.FuelConsumption != 0 {
		tail := rocket.State.Position.Sub(dir.Scale(reach))
		tx, ty := r.worldToScreen(tail)
		r.set(tx, ty, '*', styleFlame)
	}
}

// RenderObstacle implements entity.Renderer. Every cell whose centre lies
// inside the collider is filled.
func (r *TerminalRenderer) RenderObstacle(o *entity.Obstacle) {
	cw, ch := r.cellSize()
	if cw == 0 {
		return
	}
	c := o.GetCollider()
	x0, y0 := r.worldToScreen(physics.Vector2D{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius})
	x1, y1 := r.worldToScreen(physics.Vector2D{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius})
	drawn := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			centre := physics.Vector2D{X: (float64(x) + 0.5) * cw, Y: (float64(y-hudRows) + 0.5) * ch}
			if centre.Distance(c.Center) <= c.Radius {
				r.set(x, y, 'O', styleObstacle)
				drawn = true
			}
		}
	}
	if !drawn {
		x, y := r.worldToScreen(c.Center)
		r.set(x, y, 'o', styleObstacle)
	}
}

// headingGlyph picks the arrow closest to heading, 0 being up.
func headingGlyph(heading float64) rune {
	glyphs := []rune{'^', '/', '>', '\\', 'v', '/', '<', '\\'}
	octant := int(math.Round(heading/(math.Pi/4))) % len(glyphs)
	if octant < 0 {
		octant += len(glyphs)
	}
	return glyphs[octant]
}

// HelpLine lists the key bindings shared by the terminal and engo
// frontends.
const HelpLine = "arrows: steer/burn  s: start  p: stop  c: continue  1-3: difficulty  q: quit"

// StatusLine formats the run status shown by the HUD.
func StatusLine(state *engine.GameState) string {
	return fmt.Sprintf("SCORE %d | FUEL %.0f kg | RATE %+.1f kg/s | SPEED %.1f | %s | %s",
		state.Score,
		state.Rocket.Fuel,
		state.Rocket.FuelConsumption,
		state.Rocket.Speed,
		state.DifficultyLabel,
		state.Phase,
	)
}

// Banner returns the centred message for a phase, empty while running.
func Banner(phase string, gameOver bool, lastScore int) string {
	switch phase {
	case engine.PhasePaused.String():
		return "PAUSED - press C to continue"
	case engine.PhaseIdle.String():
		if gameOver {
			return fmt.Sprintf("GAME OVER - score %d - press S to restart", lastScore)
		}
		return "press S to launch"
	default:
		return ""
	}
}

// DrawHUD writes the run status on the top row and the key help on the
// bottom row. Call it between Clear and Present.
func (r *TerminalRenderer) DrawHUD(state *engine.GameState) {
	w, h := r.screen.Size()
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, 0, ' ', nil, styleHUD)
	}
	r.text(1, 0, StatusLine(state), styleHUD)
	r.text(1, h-1, HelpLine, styleHelp)
}

// DrawBanner centres msg in the playfield.
func (r *TerminalRenderer) DrawBanner(msg string) {
	w, h := r.screen.Size()
	x := (w - len([]rune(msg))) / 2
	if x < 0 {
		x = 0
	}
	r.text(x, h/2, msg, styleNose)
}

func (r *TerminalRenderer) text(x, y int, s string, style tcell.Style) {
	w, _ := r.screen.Size()
	for _, ch := range s {
		if x >= w {
			return
		}
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
