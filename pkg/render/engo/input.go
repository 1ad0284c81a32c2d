// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/engine"
	"github.com/opd-ai/go-rocket/pkg/physics"
)

// Button names registered with engo.Input.
const (
	ButtonForward     = "forward"
	ButtonReverse     = "reverse"
	ButtonRotateLeft  = "rotateLeft"
	ButtonRotateRight = "rotateRight"
	ButtonStart       = "start"
	ButtonStop        = "stop"
	ButtonContinue    = "continue"
	ButtonEasy        = "easy"
	ButtonMedium      = "medium"
	ButtonHard        = "hard"
	ButtonQuit        = "quit"
)

// Buttons reports button state by name.
type Buttons interface {
	Down(name string) bool
	JustPressed(name string) bool
}

type engoButtons struct{}

func (engoButtons) Down(name string) bool        { return engo.Input.Button(name).Down() }
func (engoButtons) JustPressed(name string) bool { return engo.Input.Button(name).JustPressed() }

// CommandSink receives run commands triggered from the keyboard.
type CommandSink interface {
	Post(cmd engine.Command)
}

var commandBindings = []struct {
	button  string
	command engine.Command
}{
	{ButtonStart, engine.Start()},
	{ButtonStop, engine.Stop()},
	{ButtonContinue, engine.Continue()},
	{ButtonEasy, engine.SetDifficulty(config.Easy)},
	{ButtonMedium, engine.SetDifficulty(config.Medium)},
	{ButtonHard, engine.SetDifficulty(config.Hard)},
}

// SetupInputBindings registers the rocket key bindings with engo.Input.
func SetupInputBindings() {
	engo.Input.RegisterButton(ButtonForward, engo.KeyArrowUp, engo.KeyW)
	engo.Input.RegisterButton(ButtonReverse, engo.KeyArrowDown, engo.KeyX)
	engo.Input.RegisterButton(ButtonRotateLeft, engo.KeyArrowLeft, engo.KeyA)
	engo.Input.RegisterButton(ButtonRotateRight, engo.KeyArrowRight, engo.KeyD)

	engo.Input.RegisterButton(ButtonStart, engo.KeyEnter, engo.KeyS)
	engo.Input.RegisterButton(ButtonStop, engo.KeyP, engo.KeySpace)
	engo.Input.RegisterButton(ButtonContinue, engo.KeyC)
	engo.Input.RegisterButton(ButtonEasy, engo.KeyOne)
	engo.Input.RegisterButton(ButtonMedium, engo.KeyTwo)
	engo.Input.RegisterButton(ButtonHard, engo.KeyThree)
	engo.Input.RegisterButton(ButtonQuit, engo.KeyEscape, engo.KeyQ)
}

// InputSystem reads the keyboard once per frame. It is the controller's
// ControlSource and posts run commands on key presses.
type InputSystem struct {
	buttons Buttons
	sink    CommandSink
	quit    func()
}

// NewInputSystem creates an input system reading engo.Input. Commands go
// to the controller set with SetSink.
func NewInputSystem() *InputSystem {
	return &InputSystem{
		buttons: engoButtons{},
		quit:    engo.Exit,
	}
}

// SetSink sets where run commands are posted
func (is *InputSystem) SetSink(sink CommandSink) {
	is.sink = sink
}

// Controls implements engine.ControlSource
func (is *InputSystem) Controls() physics.Controls {
	return physics.Controls{
		Forward:     is.buttons.Down(ButtonForward),
		Reverse:     is.buttons.Down(ButtonReverse),
		RotateLeft:  is.buttons.Down(ButtonRotateLeft),
		RotateRight: is.buttons.Down(ButtonRotateRight),
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update posts commands for buttons pressed this frame
func (is *InputSystem) Update(dt float32) {
	if is.buttons.JustPressed(ButtonQuit) {
		is.quit()
		return
	}
	if is.sink == nil {
		return
	}
	for _, b := range commandBindings {
		if is.buttons.JustPressed(b.button) {
			is.sink.Post(b.command)
		}
	}
}
