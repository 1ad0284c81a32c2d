package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-rocket/pkg/engine"
	"github.com/opd-ai/go-rocket/pkg/entity"
	"github.com/opd-ai/go-rocket/pkg/physics"
)

// newSimScreen returns an 100x32 screen: one cell is 10x20 world units for
// a 1000x600 world.
func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(100, 32)
	t.Cleanup(screen.Fini)
	return screen
}

func cell(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func row(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		b.WriteRune(cell(screen, x, y))
	}
	return b.String()
}

func TestTerminalRenderer_WorldToScreen(t *testing.T) {
	r := NewTerminalRenderer(newSimScreen(t), 1000, 600)

	tests := []struct {
		name   string
		pos    physics.Vector2D
		wx, wy int
	}{
		{"origin", physics.Vector2D{X: 0, Y: 0}, 0, 1},
		{"pad", physics.Vector2D{X: 500, Y: 475}, 50, 24},
		{"far corner", physics.Vector2D{X: 999, Y: 599}, 99, 30},
		{"above field", physics.Vector2D{X: 100, Y: -50}, 10, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := r.worldToScreen(tt.pos)
			if x != tt.wx || y != tt.wy {
				t.Errorf("worldToScreen(%v) = (%d, %d), want (%d, %d)", tt.pos, x, y, tt.wx, tt.wy)
			}
		})
	}
}

func TestTerminalRenderer_RenderRocket(t *testing.T) {
	screen := newSimScreen(t)
	r := NewTerminalRenderer(screen, 1000, 600)
	rocket := entity.NewRocket(1, 5000, physics.Vector2D{X: 500, Y: 475}, 30, 60)

	r.Clear()
	rocket.Render(r)
	r.Present()

	// body spans x 485..515 and y 445..505
	if got := cell(screen, 49, 23); got != '#' {
		t.Errorf("body cell = %q, want '#'", got)
	}
	// nose sits 30 units above the centre
	if got := cell(screen, 50, 23); got != '#' && got != '^' {
		t.Errorf("nose cell = %q", got)
	}
	if got := cell(screen, 20, 10); got != ' ' {
		t.Errorf("empty cell = %q", got)
	}
}

func TestTerminalRenderer_RenderObstacle(t *testing.T) {
	screen := newSimScreen(t)
	r := NewTerminalRenderer(screen, 1000, 600)
	shape := entity.HitboxShape{BaseRadius: 32, Margin: 10, Shrink: 0.8}

	r.Clear()
	entity.NewObstacle(1, physics.Vector2D{X: 205, Y: 310}, 80, 1, shape).Render(r)
	// mostly above the playfield, must not be drawn on the HUD row
	entity.NewObstacle(2, physics.Vector2D{X: 700, Y: -40}, 80, 1, shape).Render(r)
	r.Present()

	if got := cell(screen, 20, 16); got != 'O' {
		t.Errorf("obstacle centre cell = %q, want 'O'", got)
	}
	if got := cell(screen, 70, 0); got == 'O' {
		t.Error("obstacle drawn over the HUD row")
	}
}

func TestTerminalRenderer_DrawHUD(t *testing.T) {
	screen := newSimScreen(t)
	r := NewTerminalRenderer(screen, 1000, 600)

	r.Clear()
	r.DrawHUD(&engine.GameState{
		Score:           12,
		Phase:           "running",
		DifficultyLabel: "Hard",
		Rocket:          engine.RocketState{Fuel: 4321, FuelConsumption: 2.5},
	})
	r.DrawBanner("GAME OVER")
	r.Present()

	top := row(screen, 0)
	for _, want := range []string{"SCORE 12", "FUEL 4321 kg", "RATE +2.5 kg/s", "Hard", "running"} {
		if !strings.Contains(top, want) {
			t.Errorf("HUD %q missing %q", top, want)
		}
	}
	if bottom := row(screen, 31); !strings.Contains(bottom, "q: quit") {
		t.Errorf("help row %q", bottom)
	}
	if mid := row(screen, 16); !strings.Contains(mid, "GAME OVER") {
		t.Errorf("banner row %q", mid)
	}
}

func TestHeadingGlyph(t *testing.T) {
	tests := []struct {
		heading float64
		want    rune
	}{
		{0, '^'},
		{0.3, '^'},
		{1.5708, '>'},
		{3.1416, 'v'},
		{-1.5708, '<'},
		{2 * 3.1416, '^'},
		{-0.7854, '\\'},
	}
	for _, tt := range tests {
		if got := headingGlyph(tt.heading); got != tt.want {
			t.Errorf("headingGlyph(%v) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}
func TestBanner(t *testing.T) {
	tests := []struct {
		name      string
		phase     string
		gameOver  bool
		lastScore int
		want      string
	}{
		{"running", "running", false, 0, ""},
		{"running after game over", "running", true, 9, ""},
		{"paused", "paused", false, 0, "PAUSED"},
		{"fresh idle", "idle", false, 0, "launch"},
		{"game over", "idle", true, 42, "GAME OVER - score 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Banner(tt.phase, tt.gameOver, tt.lastScore)
			if tt.want == "" {
				if got != "" {
					t.Errorf("Banner() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Banner() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

