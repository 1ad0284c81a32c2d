// pkg/render/engo/assets.go
package engo

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"
)

// fontURL is the virtual path the embedded HUD font is registered under.
const fontURL = "fonts/goregular.ttf"

// rocketPattern is the rocket sprite, nose up. 1 is hull, 2 is window,
// 3 is fin.
var rocketPattern = [][]int{
	{0, 0, 0, 0, 1, 1, 0, 0, 0, 0},
	{0, 0, 0, 1, 1, 1, 1, 0, 0, 0},
	{0, 0, 0, 1, 1, 1, 1, 0, 0, 0},
	{0, 0, 1, 1, 1, 1, 1, 1, 0, 0},
	{0, 0, 1, 1, 2, 2, 1, 1, 0, 0},
	{0, 0, 1, 1, 2, 2, 1, 1, 0, 0},
	{0, 0, 1, 1, 1, 1, 1, 1, 0, 0},
	{0, 0, 1, 1, 1, 1, 1, 1, 0, 0},
	{0, 0, 1, 1, 1, 1, 1, 1, 0, 0},
	{0, 0, 1, 1, 1, 1, 1, 1, 0, 0},
	{0, 0, 1, 1, 1, 1, 1, 1, 0, 0},
	{0, 0, 1, 1, 1, 1, 1, 1, 0, 0},
	{0, 3, 1, 1, 1, 1, 1, 1, 3, 0},
	{0, 3, 1, 1, 1, 1, 1, 1, 3, 0},
	{3, 3, 3, 1, 1, 1, 1, 3, 3, 3},
	{3, 3, 0, 0, 1, 1, 0, 0, 3, 3},
}

var paletteColors = map[int]color.NRGBA{
	1: {230, 230, 235, 255},
	2: {80, 170, 255, 255},
	3: {200, 40, 40, 255},
}

// Assets holds the sprites and font used by the scene. Textures need a
// GL context, so Load must run inside Scene.Setup; until then the
// accessors return untextured shapes.
type Assets struct {
	rocket common.Drawable
	font   *common.Font
}

// NewAssets creates an empty asset set
func NewAssets() *Assets {
	return &Assets{}
}

// Preload registers the embedded HUD font with engo's file loader.
func (a *Assets) Preload() error {
	if err := engo.Files.LoadReaderData(fontURL, bytes.NewReader(goregular.TTF)); err != nil {
		return fmt.Errorf("failed to load HUD font: %w", err)
	}
	return nil
}

// Load creates the textures and the HUD font face.
func (a *Assets) Load() error {
	a.rocket = common.NewTextureSingle(common.NewImageObject(patternImage(rocketPattern)))

	font := &common.Font{
		URL:  fontURL,
		FG:   color.White,
		Size: 18,
	}
	if err := font.CreatePreloaded(); err != nil {
		return fmt.Errorf("failed to create HUD font: %w", err)
	}
	a.font = font
	return nil
}

// Rocket returns the rocket sprite, or a plain rectangle before Load.
func (a *Assets) Rocket() common.Drawable {
	if a.rocket == nil {
		return common.Rectangle{}
	}
	return a.rocket
}

// Obstacle returns the obstacle shape
func (a *Assets) Obstacle() common.Drawable {
	return common.Circle{BorderWidth: 2, BorderColor: color.RGBA{90, 90, 100, 255}, Arc: 360}
}

// Font returns the HUD font, or nil before Load.
func (a *Assets) Font() *common.Font {
	return a.font
}

// patternImage paints a palette pattern onto a transparent image.
func patternImage(pattern [][]int) *image.NRGBA {
	height := len(pattern)
	width := 0
	for _, row := range pattern {
		if len(row) > width {
			width = len(row)
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y, row := range pattern {
		for x, pixel := range row {
			if c, ok := paletteColors[pixel]; ok {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}
