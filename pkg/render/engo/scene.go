// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-rocket/pkg/engine"
	"github.com/opd-ai/go-rocket/pkg/logging"
)

// Frontend bundles the pieces the controller needs before the scene
// exists: the keyboard is its ControlSource and the renderer its
// BodyObserver.
type Frontend struct {
	Camera   *Camera
	Assets   *Assets
	Renderer *EngoRenderer
	Input    *InputSystem
}

// NewFrontend creates the engo frontend for a world of the given size
func NewFrontend(worldWidth, worldHeight float64) *Frontend {
	camera := NewCamera(worldWidth, worldHeight)
	assets := NewAssets()
	return &Frontend{
		Camera:   camera,
		Assets:   assets,
		Renderer: NewEngoRenderer(camera, assets),
		Input:    NewInputSystem(),
	}
}

// GameScene is the engo scene that drives the simulation. Each frame it
// reads the keyboard, ticks the controller and syncs sprites.
type GameScene struct {
	controller *engine.Controller
	frontend   *Frontend
	logger     *logging.Logger

	world *ecs.World
	hud   *HUDSystem
	tick  func(time.Duration)
}

// NewGameScene creates a scene for controller
func NewGameScene(controller *engine.Controller, frontend *Frontend, logger *logging.Logger) *GameScene {
	if logger == nil {
		logger = logging.NewLogger()
	}
	scene := &GameScene{
		controller: controller,
		frontend:   frontend,
		logger:     logger,
		hud:        NewHUDSystem(controller),
	}
	scene.tick = func(frame time.Duration) {
		controller.Tick(frame)
		controller.Render(frontend.Renderer)
	}
	frontend.Input.SetSink(controller)
	return scene
}

// Type returns the scene type (required by Engo)
func (scene *GameScene) Type() string {
	return "GameScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *GameScene) Preload() {
	if err := scene.frontend.Assets.Preload(); err != nil {
		scene.logger.Warn(context.Background(), "HUD disabled", "error", err)
	}
}

// Setup is called when the scene starts (required by Engo)
func (scene *GameScene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		panic("GameScene requires an *ecs.World updater")
	}
	scene.world = world
	common.SetBackground(color.RGBA{10, 10, 30, 255})

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	if err := scene.frontend.Assets.Load(); err != nil {
		scene.logger.Warn(context.Background(), "using untextured sprites", "error", err)
	}
	scene.frontend.Renderer.Attach(renderSystem)

	SetupInputBindings()
	world.AddSystem(scene.frontend.Input)
	world.AddSystem(&simulationSystem{scene: scene})

	scene.hud.Attach(renderSystem, scene.frontend.Assets.Font())
	scene.hud.Listen(scene.controller.EventBus())
	world.AddSystem(scene.hud)

	scene.logger.Info(context.Background(), "engo scene ready",
		"width", engo.GameWidth(),
		"height", engo.GameHeight(),
	)
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *GameScene) Exit() {
	scene.hud.Close()
	scene.logger.Info(context.Background(), "engo scene closed",
		"score", scene.controller.Score(),
		"phase", scene.controller.Phase().String(),
	)
}

// simulationSystem advances the controller by the engine's frame time.
type simulationSystem struct {
	scene *GameScene
}

func (s *simulationSystem) Remove(basic ecs.BasicEntity) {}

func (s *simulationSystem) Update(dt float32) {
	s.scene.frontend.Camera.Resize(engo.GameWidth(), engo.GameHeight())
	s.scene.tick(frameDuration(dt))
}

func frameDuration(dt float32) time.Duration {
	return time.Duration(float64(dt) * float64(time.Second))
}

// Options configures the engo window
type Options struct {
	Title    string
	Width    int
	Height   int
	FPSLimit int
}

// Run opens the window and blocks until it is closed.
func Run(scene *GameScene, opts Options) {
	engo.Run(engo.RunOptions{
		Title:          opts.Title,
		Width:          opts.Width,
		Height:         opts.Height,
		FPSLimit:       opts.FPSLimit,
		ScaleOnResize:  true,
		StandardInputs: false,
	}, scene)
}

// Quit closes the window. It is safe to call from any goroutine.
func Quit() {
	engo.Exit()
}
