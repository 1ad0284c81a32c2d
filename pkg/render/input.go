package render

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sasha-s/go-deadlock"

	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/engine"
	"github.com/opd-ai/go-rocket/pkg/physics"
)

// DefaultHoldWindow is how long a key counts as held after its last press
// or auto-repeat. It must exceed the terminal's repeat interval.
const DefaultHoldWindow = 150 * time.Millisecond

// CommandSink receives run commands triggered from the keyboard.
type CommandSink interface {
	Post(cmd engine.Command)
}

type control int

const (
	controlForward control = iota
	controlReverse
	controlLeft
	controlRight
	controlCount
)

// TerminalInput turns tcell key events into held controls and run
// commands. Terminals report presses and auto-repeats but never releases,
// so a key stays held until no press has been seen for the hold window.
type TerminalInput struct {
	sink CommandSink
	hold time.Duration
	now  func() time.Time

	mu       deadlock.Mutex
	lastSeen [controlCount]time.Time
}

// NewTerminalInput creates an input posting commands to sink.
func NewTerminalInput(sink CommandSink, hold time.Duration) *TerminalInput {
	return &TerminalInput{sink: sink, hold: hold, now: time.Now}
}

// SetSink replaces the command sink. Commands are dropped while it is nil.
func (in *TerminalInput) SetSink(sink CommandSink) {
	in.mu.Lock()
	in.sink = sink
	in.mu.Unlock()
}

func (in *TerminalInput) post(cmd engine.Command) {
	in.mu.Lock()
	sink := in.sink
	in.mu.Unlock()
	if sink != nil {
		sink.Post(cmd)
	}
}

// Controls implements engine.ControlSource.
func (in *TerminalInput) Controls() physics.Controls {
	in.mu.Lock()
	defer in.mu.Unlock()

	now := in.now()
	held := func(c control) bool {
		seen := in.lastSeen[c]
		return !seen.IsZero() && now.Sub(seen) < in.hold
	}
	return physics.Controls{
		Forward:     held(controlForward),
		Reverse:     held(controlReverse),
		RotateLeft:  held(controlLeft),
		RotateRight: held(controlRight),
	}
}

// Release forgets every held key.
func (in *TerminalInput) Release() {
	in.mu.Lock()
	in.lastSeen = [controlCount]time.Time{}
	in.mu.Unlock()
}

// HandleEvent processes one terminal event and reports whether the user
// asked to quit.
func (in *TerminalInput) HandleEvent(ev tcell.Event) (quit bool) {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}

	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		in.press(controlForward)
	case tcell.KeyDown:
		in.press(controlReverse)
	case tcell.KeyLeft:
		in.press(controlLeft)
	case tcell.KeyRight:
		in.press(controlRight)
	case tcell.KeyEnter:
		in.post(engine.Start())
	case tcell.KeyRune:
		return in.handleRune(key.Rune())
	}
	return false
}

func (in *TerminalInput) handleRune(r rune) bool {
	switch r {
	case 'q', 'Q':
		return true
	case 'w', 'W':
		in.press(controlForward)
	case 'x', 'X':
		in.press(controlReverse)
	case 'a', 'A':
		in.press(controlLeft)
	case 'd', 'D':
		in.press(controlRight)
	case 's', 'S':
		in.post(engine.Start())
	case 'p', 'P', ' ':
		in.post(engine.Stop())
	case 'c', 'C':
		in.post(engine.Continue())
	case '1':
		in.post(engine.SetDifficulty(config.Easy))
	case '2':
		in.post(engine.SetDifficulty(config.Medium))
	case '3':
		in.post(engine.SetDifficulty(config.Hard))
	}
	return false
}

func (in *TerminalInput) press(c control) {
	in.mu.Lock()
	in.lastSeen[c] = in.now()
	in.mu.Unlock()
}
