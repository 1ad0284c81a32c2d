// cmd/rocket/terminal.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-rocket/pkg/engine"
	"github.com/opd-ai/go-rocket/pkg/event"
	"github.com/opd-ai/go-rocket/pkg/render"
)

// terminalFrame draws the HUD and banner over the playfield before the
// frame is shown.
type terminalFrame struct {
	*render.TerminalRenderer
	state  *engine.GameState
	banner string
}

func (f terminalFrame) Present() {
	f.DrawHUD(f.state)
	if f.banner != "" {
		f.DrawBanner(f.banner)
	}
	f.TerminalRenderer.Present()
}

func (a *app) runTerminal() error {
	ctx := a.manager.Context()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialise terminal: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	input := render.NewTerminalInput(nil, render.DefaultHoldWindow)
	c := a.build(input, nil)
	input.SetSink(c)
	view := render.NewTerminalRenderer(screen, a.cfg.World.Width, a.cfg.World.Height)

	// bus handlers run inside Tick on this goroutine
	var gameOver bool
	var lastScore int
	subs := []*event.Subscription{
		c.EventBus().Subscribe(event.GameOver, func(e event.Event) {
			if over, ok := e.(*event.GameOverEvent); ok {
				gameOver, lastScore = true, over.FinalScore
			}
		}),
		c.EventBus().Subscribe(event.RunStarted, func(event.Event) {
			gameOver = false
			input.Release()
		}),
	}
	defer func() {
		for _, sub := range subs {
			sub.Cancel()
		}
	}()

	events := make(chan tcell.Event, 16)
	if err := a.manager.Go("terminal-events", func(ctx context.Context) error {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}); err != nil {
		return err
	}
	if err := a.startServices(); err != nil {
		return err
	}

	ticker := time.NewTicker(a.frameInterval())
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
				continue
			}
			if input.HandleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			c.Tick(now.Sub(last))
			last = now
			state := c.Snapshot()
			c.Render(terminalFrame{
				TerminalRenderer: view,
				state:            state,
				banner:           render.Banner(state.Phase, gameOver, lastScore),
			})
		}
	}
}
