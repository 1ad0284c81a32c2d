// cmd/rocket/engo.go
package main

import (
	"context"

	rengo "github.com/opd-ai/go-rocket/pkg/render/engo"
)

// runEngo opens the graphical window. It must run on the main goroutine
// and returns when the window closes.
func (a *app) runEngo() error {
	frontend := rengo.NewFrontend(a.cfg.World.Width, a.cfg.World.Height)
	c := a.build(frontend.Input, frontend.Renderer)
	scene := rengo.NewGameScene(c, frontend, a.logger)

	if err := a.startServices(); err != nil {
		return err
	}

	closed := make(chan struct{})
	defer close(closed)
	if err := a.manager.Go("engo-quit", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			rengo.Quit()
		case <-closed:
		}
		return nil
	}); err != nil {
		return err
	}

	rengo.Run(scene, rengo.Options{
		Title:    "go-rocket",
		Width:    int(a.cfg.World.Width),
		Height:   int(a.cfg.World.Height),
		FPSLimit: a.env.FrameRate,
	})
	return nil
}
