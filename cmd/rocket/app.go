// cmd/rocket/app.go
package main

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/opd-ai/go-rocket/pkg/audio"
	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/engine"
	"github.com/opd-ai/go-rocket/pkg/field"
	"github.com/opd-ai/go-rocket/pkg/health"
	"github.com/opd-ai/go-rocket/pkg/logging"
	"github.com/opd-ai/go-rocket/pkg/network"
	"github.com/opd-ai/go-rocket/pkg/resource"
)

const (
	// stallWindow is how long the frame loop may stop before the
	// simulation health check fails.
	stallWindow = 5 * time.Second

	throttleInterval = 50 * time.Millisecond
)

// app wires the controller to the services around it. Each frontend
// builds the controller with its own input and renderer, then starts
// the services.
type app struct {
	env    *config.EnvironmentConfig
	cfg    *config.GameConfig
	logger *logging.Logger

	manager    *resource.Manager
	checker    *health.HealthChecker
	controller *engine.Controller
	cleanup    []func()
}

func run(ctx context.Context, env *config.EnvironmentConfig, cfg *config.GameConfig, logger *logging.Logger) error {
	a := &app{
		env:     env,
		cfg:     cfg,
		logger:  logger,
		manager: resource.NewManager(ctx, resource.LimitsFrom(env), logger),
		checker: health.NewHealthChecker(),
	}
	if err := a.manager.Go("resource-monitor", a.manager.Monitor); err != nil {
		return err
	}

	logger.Info(ctx, "Starting rocket",
		"frontend", env.Frontend,
		"difficulty", string(cfg.Difficulty),
		"frame_rate", env.FrameRate,
	)

	var err error
	switch env.Frontend {
	case config.FrontendTerminal:
		err = a.runTerminal()
	case config.FrontendEngo:
		err = a.runEngo()
	case config.FrontendHeadless:
		err = a.runHeadless()
	default:
		err = fmt.Errorf("unknown frontend %q", env.Frontend)
	}

	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.ShutdownWindow)
	defer cancel()
	if serr := a.manager.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	if a.controller != nil {
		logger.Info(ctx, "Rocket stopped",
			"score", a.controller.Score(),
			"ticks", a.controller.Ticks(),
		)
	}
	if err != nil {
		return err
	}
	return a.manager.Err()
}

// build creates the controller. Nil arguments get the controller's
// defaults.
func (a *app) build(controls engine.ControlSource, observer field.BodyObserver) *engine.Controller {
	a.controller = engine.NewController(a.cfg, engine.Dependencies{
		Controls: controls,
		Observer: observer,
		Logger:   a.logger,
	})
	return a.controller
}

// startServices starts health checks, audio and the telemetry server.
func (a *app) startServices() error {
	c := a.controller
	a.checker.AddCheck(health.NewSimulationHealthCheck(c.Ticks, stallWindow))
	a.checker.AddCheck(resource.NewHealthCheck(a.manager))

	if a.env.Audio {
		if err := a.startAudio(); err != nil {
			return err
		}
	}
	if a.env.TelemetryAddr != "" {
		return a.startTelemetry()
	}
	return nil
}

func (a *app) startAudio() error {
	ctx := a.manager.Context()
	sounds := audio.NewSoundManager(audio.Speaker(), a.env.AudioVolume)
	if err := sounds.Initialize(); err != nil {
		a.logger.Warn(ctx, "Audio disabled", "error", err.Error())
		return nil
	}
	sounds.Attach(a.controller.EventBus())
	a.cleanup = append(a.cleanup, sounds.Cleanup)

	c := a.controller
	maxRate := a.cfg.Simulation.MaxFuelConsumption
	level := func() float64 {
		return math.Abs(c.Snapshot().Rocket.FuelConsumption) / maxRate
	}
	return a.manager.Go("audio-throttle", func(ctx context.Context) error {
		return sounds.FollowThrottle(ctx, level, throttleInterval)
	})
}

func (a *app) startTelemetry() error {
	c := a.controller
	server := network.NewTelemetryServer(c, c, c.EventBus(), a.env, a.logger)

	mux := http.NewServeMux()
	server.Routes(mux)
	a.checker.Register(mux)
	a.checker.AddCheck(health.NewTelemetryHealthCheck(server.Addr, server.OpenBreakers))

	return a.manager.Go("telemetry", func(ctx context.Context) error {
		return server.Serve(ctx, a.env.TelemetryAddr, mux)
	})
}

// frameInterval is the wall clock period of one frame
func (a *app) frameInterval() time.Duration {
	return time.Second / time.Duration(a.env.FrameRate)
}
