// pkg/engine/controller.go
package engine

import (
	"context"
	"time"

	"github.com/sasha-s/go-deadlock"

	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/entity"
	"github.com/opd-ai/go-rocket/pkg/event"
	"github.com/opd-ai/go-rocket/pkg/field"
	"github.com/opd-ai/go-rocket/pkg/logging"
	"github.com/opd-ai/go-rocket/pkg/physics"
)

// ControlSource reports which control keys are held. It is sampled once
// per tick.
type ControlSource interface {
	Controls() physics.Controls
}

// ControlFunc adapts a function to ControlSource.
type ControlFunc func() physics.Controls

// Controls implements ControlSource.
func (f ControlFunc) Controls() physics.Controls { return f() }

// Dependencies are the capabilities injected into a Controller. Nil
// fields get working defaults.
type Dependencies struct {
	Scheduler Scheduler
	Random    field.RandomSource
	Controls  ControlSource
	Observer  field.BodyObserver
	Bus       *event.Bus
	Logger    *logging.Logger
}

// Controller runs the rocket simulation: it owns the rocket, the obstacle
// field, the spawn and score tasks and the Idle/Running/Paused state
// machine.
//
// Tick and the command methods must be called from a single goroutine,
// normally the frame loop. Other goroutines use Post and read state with
// Snapshot, Phase and Score.
//
// Collisions arrive as Collision commands. The controller has a built-in
// overlap detector that stands in for an external notifier: after each
// running tick it posts a Collision for the first obstacle touching the
// rocket, and the command is handled at the start of the next Tick. A
// frontend with its own collision source may call NotifyCollision or post
// Collision itself; duplicates are ignored once the run has ended.
type Controller struct {
	cfg        config.GameConfig
	settings   config.SimulationSettings
	difficulty config.Difficulty

	rocket    *entity.Rocket
	field     *field.Field
	scheduler Scheduler
	controls  ControlSource
	bus       *event.Bus
	logger    *logging.Logger

	phase     Phase
	score     int
	tick      uint64
	spawnTask Task
	scoreTask Task
	runID     string

	// guards the fields above against concurrent readers
	mu     deadlock.RWMutex
	outbox []event.Event

	queueMu deadlock.Mutex
	queue   []Command
}

// NewController creates an idle controller for cfg.
func NewController(cfg *config.GameConfig, deps Dependencies) *Controller {
	if deps.Scheduler == nil {
		deps.Scheduler = NewFrameScheduler()
	}
	if deps.Random == nil {
		deps.Random = field.NewRand(uint64(time.Now().UnixNano()))
	}
	if deps.Controls == nil {
		deps.Controls = ControlFunc(func() physics.Controls { return physics.Controls{} })
	}
	if deps.Bus == nil {
		deps.Bus = event.NewEventBus()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewLogger()
	}

	c := &Controller{
		cfg:        *cfg,
		settings:   cfg.Simulation,
		difficulty: cfg.Difficulty,
		field:      field.New(field.SettingsFrom(cfg), deps.Random, deps.Observer),
		scheduler:  deps.Scheduler,
		controls:   deps.Controls,
		bus:        deps.Bus,
		logger:     deps.Logger,
	}
	c.rocket = entity.NewRocket(entity.GenerateID(), cfg.Simulation.FuelMass, cfg.Rocket.Pad(),
		cfg.Rocket.BodyWidth, cfg.Rocket.BodyHeight)
	return c
}

// EventBus returns the bus on which run events are published
func (c *Controller) EventBus() *event.Bus {
	return c.bus
}

// Start begins a fresh run from any phase.
func (c *Controller) Start() {
	c.apply(Start())
}

// Stop pauses a running simulation. It is a no-op in any other phase.
func (c *Controller) Stop() {
	c.apply(Stop())
}

// Continue resumes a paused simulation. It is a no-op in any other phase.
func (c *Controller) Continue() {
	c.apply(Continue())
}

// SetDifficulty changes the time step; it takes effect on the next tick.
func (c *Controller) SetDifficulty(level config.Difficulty) {
	c.apply(SetDifficulty(level))
}

// NotifyCollision ends a running simulation. Notifications outside the
// Running phase, including duplicates for the same crash, are ignored.
func (c *Controller) NotifyCollision(id entity.ID) {
	c.apply(Collision(id))
}

// Post queues a command from any goroutine. It is applied at the start of
// the next Tick.
func (c *Controller) Post(cmd Command) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	c.queue = append(c.queue, cmd)
}

// Tick advances the simulation by one frame. The rocket integrates one
// TimeStep of simulated time; obstacles and timers follow the frame
// duration.
func (c *Controller) Tick(frame time.Duration) {
	pending := c.drainQueue()

	c.mu.Lock()
	for _, cmd := range pending {
		c.handle(cmd)
	}
	if c.phase == PhaseRunning {
		c.step(frame)
	}
	c.scheduler.Advance(frame)
	if c.phase == PhaseRunning {
		c.detectCollision()
	}
	c.tick++
	events := c.takeOutbox()
	c.mu.Unlock()

	c.publish(events)
}

func (c *Controller) step(frame time.Duration) {
	controls := c.controls.Controls()
	c.rocket.Step(controls, c.settings.Propulsion(), c.cfg.Rocket.RotationRate, c.settings.TimeStep)
	if c.cfg.Rocket.KeepInBounds {
		c.rocket.KeepInside(c.cfg.World.Width, c.cfg.World.Height)
	}
	c.field.Advance(frame.Seconds())
	c.field.Reap()
}

// detectCollision queues a collision for the first overlapping obstacle.
// It is handled before the next tick integrates anything.
func (c *Controller) detectCollision() {
	hits := c.field.Overlapping(c.rocket.Body())
	if len(hits) == 0 {
		return
	}
	c.Post(Collision(hits[0].ID))
}

func (c *Controller) apply(cmd Command) {
	c.mu.Lock()
	c.handle(cmd)
	events := c.takeOutbox()
	c.mu.Unlock()

	c.publish(events)
}

func (c *Controller) handle(cmd Command) {
	switch cmd.Kind {
	case CommandStart:
		c.start()
	case CommandStop:
		c.stop()
	case CommandContinue:
		c.resume()
	case CommandDifficulty:
		c.setDifficulty(cmd.Difficulty)
	case CommandCollision:
		c.collide(cmd.ObstacleID)
	default:
		c.ignore(cmd)
	}
}

func (c *Controller) start() {
	c.cancelTasks()
	c.reset()
	c.runID = logging.GenerateRunID()
	c.phase = PhaseRunning
	c.startTasks()

	c.logger.Info(c.ctx(), "Run started", "difficulty", c.difficulty, "time_step", c.settings.TimeStep)
	c.emit(event.NewRunEvent(event.RunStarted, c, 0))
}

func (c *Controller) stop() {
	if c.phase != PhaseRunning {
		c.ignore(Stop())
		return
	}
	c.field.Freeze()
	c.cancelTasks()
	c.phase = PhasePaused

	c.logger.Info(c.ctx(), "Run stopped", "score", c.score, "fuel", c.rocket.State.Fuel)
	c.emit(event.NewRunEvent(event.RunStopped, c, c.score))
}

func (c *Controller) resume() {
	if c.phase != PhasePaused {
		c.ignore(Continue())
		return
	}
	c.field.Resume()
	c.phase = PhaseRunning
	c.startTasks()

	c.logger.Info(c.ctx(), "Run continued", "score", c.score)
	c.emit(event.NewRunEvent(event.RunContinued, c, c.score))
}

func (c *Controller) setDifficulty(level config.Difficulty) {
	if !level.Valid() {
		c.ignore(SetDifficulty(level))
		return
	}
	c.difficulty = level
	c.settings.TimeStep = level.TimeStep()

	c.logger.Info(c.ctx(), "Difficulty changed", "difficulty", level, "time_step", c.settings.TimeStep)
	c.emit(event.NewDifficultyEvent(c, string(level), c.settings.TimeStep))
}

func (c *Controller) collide(id entity.ID) {
	if c.phase != PhaseRunning {
		c.ignore(Collision(id))
		return
	}
	c.cancelTasks()
	final := c.score
	ctx := c.ctx()

	c.emit(event.NewCollisionEvent(c, uint64(id)))
	c.reset()
	c.phase = PhaseIdle
	c.runID = ""

	c.logger.Info(ctx, "Game over", "final_score", final, "obstacle_id", id)
	c.emit(event.NewGameOverEvent(c, final, uint64(id)))
}

// reset clears the field and puts a full rocket back on the pad.
func (c *Controller) reset() {
	c.field.Clear()
	c.rocket.Reset(c.cfg.Simulation.FuelMass, c.cfg.Rocket.Pad())
	c.score = 0
}

func (c *Controller) ignore(cmd Command) {
	c.logger.Debug(c.ctx(), "Command ignored", "command", cmd.Kind, "phase", c.phase)
}

// startTasks starts the spawn and score tasks unless they are already
// running.
func (c *Controller) startTasks() {
	if c.spawnTask == nil || !c.spawnTask.Active() {
		c.spawnTask = c.scheduler.Every(c.cfg.Obstacles.SpawnInterval, c.spawnObstacle)
	}
	if c.scoreTask == nil || !c.scoreTask.Active() {
		c.scoreTask = c.scheduler.Every(c.cfg.ScoreInterval, c.addScore)
	}
}

func (c *Controller) cancelTasks() {
	if c.spawnTask != nil {
		c.spawnTask.Cancel()
		c.spawnTask = nil
	}
	if c.scoreTask != nil {
		c.scoreTask.Cancel()
		c.scoreTask = nil
	}
}

func (c *Controller) spawnObstacle() {
	if c.phase != PhaseRunning {
		return
	}
	o := c.field.Spawn()
	c.logger.Debug(c.ctx(), "Obstacle spawned", "obstacle_id", o.ID, "x", o.Position.X, "speed", o.FallSpeed)
}

func (c *Controller) addScore() {
	if c.phase != PhaseRunning {
		return
	}
	c.score++
	c.emit(event.NewScoreEvent(c, c.score))
}

func (c *Controller) drainQueue() []Command {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	pending := c.queue
	c.queue = nil
	return pending
}

func (c *Controller) emit(e event.Event) {
	c.outbox = append(c.outbox, e)
}

func (c *Controller) takeOutbox() []event.Event {
	events := c.outbox
	c.outbox = nil
	return events
}

// publish runs outside the state lock so handlers may call back into the
// controller.
func (c *Controller) publish(events []event.Event) {
	for _, e := range events {
		c.bus.Publish(e)
	}
}

func (c *Controller) ctx() context.Context {
	if c.runID == "" {
		return context.Background()
	}
	return logging.WithRunID(context.Background(), c.runID)
}

// Phase returns the current run phase
func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Score returns the whole seconds survived in the current run
func (c *Controller) Score() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.score
}

// Difficulty returns the active difficulty level
func (c *Controller) Difficulty() config.Difficulty {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.difficulty
}

// Rocket returns the rocket entity. It must only be used from the frame
// goroutine; other goroutines use Snapshot.
func (c *Controller) Rocket() *entity.Rocket {
	return c.rocket
}

// Obstacles returns the live obstacles. Frame goroutine only.
func (c *Controller) Obstacles() []*entity.Obstacle {
	return c.field.Obstacles()
}

// Ticks returns the number of frames processed so far
func (c *Controller) Ticks() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tick
}

// Render draws the obstacles and then the rocket between r.Clear and
// r.Present. Frame goroutine only.
func (c *Controller) Render(r entity.Renderer) {
	r.Clear()
	for _, o := range c.field.Obstacles() {
		o.Render(r)
	}
	c.rocket.Render(r)
	r.Present()
}
