// cmd/rocket/headless.go
package main

import (
	"time"

	"github.com/opd-ai/go-rocket/pkg/event"
	"github.com/opd-ai/go-rocket/pkg/render"
)

// runHeadless drives the simulation without a display. A run starts
// immediately; after a game over the rocket waits for a remote start.
func (a *app) runHeadless() error {
	ctx := a.manager.Context()
	view := render.NewNullRenderer(a.logger)
	c := a.build(nil, nil)

	sub := c.EventBus().Subscribe(event.GameOver, func(e event.Event) {
		if over, ok := e.(*event.GameOverEvent); ok {
			a.logger.Info(ctx, "Run ended", "score", over.FinalScore, "obstacle_id", over.ObstacleID)
		}
	})
	defer sub.Cancel()

	if err := a.startServices(); err != nil {
		return err
	}
	c.Start()

	ticker := time.NewTicker(a.frameInterval())
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			c.Tick(now.Sub(last))
			last = now
			c.Render(view)
		}
	}
}
