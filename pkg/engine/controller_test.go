// pkg/engine/controller_test.go
package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/entity"
	"github.com/opd-ai/go-rocket/pkg/event"
	"github.com/opd-ai/go-rocket/pkg/logging"
	"github.com/opd-ai/go-rocket/pkg/physics"
)

const frame = 100 * time.Millisecond

// fixedRandom always returns the lower bound, so obstacles spawn in the
// top-left corner far away from the pad.
type fixedRandom struct{}

func (fixedRandom) Uniform(lo, hi float64) float64 { return lo }

// heldKeys is a ControlSource whose keys tests flip directly
type heldKeys struct {
	held physics.Controls
}

func (h *heldKeys) Controls() physics.Controls { return h.held }

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) record(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(t event.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.GetType() == t {
			n++
		}
	}
	return n
}

func (r *recorder) gameOvers() []*event.GameOverEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*event.GameOverEvent
	for _, e := range r.events {
		if g, ok := e.(*event.GameOverEvent); ok {
			out = append(out, g)
		}
	}
	return out
}

type harness struct {
	c     *Controller
	sched *FrameScheduler
	keys  *heldKeys
	rec   *recorder
}

func newHarness(t *testing.T, mutate ...func(*config.GameConfig)) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	for _, m := range mutate {
		m(cfg)
	}
	h := &harness{sched: NewFrameScheduler(), keys: &heldKeys{}, rec: &recorder{}}
	h.c = NewController(cfg, Dependencies{
		Scheduler: h.sched,
		Random:    fixedRandom{},
		Controls:  h.keys,
		Logger:    logging.Discard(),
	})
	for _, typ := range []event.Type{
		event.RunStarted, event.RunStopped, event.RunContinued, event.GameOver,
		event.ScoreChanged, event.ObstacleCollision, event.DifficultyChanged,
	} {
		h.c.EventBus().Subscribe(typ, h.rec.record)
	}
	return h
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.c.Tick(frame)
	}
}

func TestController_StartsIdle(t *testing.T) {
	h := newHarness(t)

	h.ticks(30)

	if h.c.Phase() != PhaseIdle {
		t.Errorf("expected idle, got %v", h.c.Phase())
	}
	if h.c.Score() != 0 || len(h.c.Obstacles()) != 0 {
		t.Error("idle controller should neither score nor spawn")
	}
	if h.sched.Pending() != 0 {
		t.Errorf("idle controller has %d tasks", h.sched.Pending())
	}
}

func TestController_Start(t *testing.T) {
	h := newHarness(t)

	h.c.Start()

	if h.c.Phase() != PhaseRunning {
		t.Fatalf("expected running, got %v", h.c.Phase())
	}
	if len(h.c.Obstacles()) != 0 {
		t.Error("obstacles present right after Start")
	}
	if h.sched.Pending() != 2 {
		t.Errorf("expected spawn and score tasks, got %d", h.sched.Pending())
	}
	if h.rec.count(event.RunStarted) != 1 {
		t.Error("RunStarted not published")
	}
	if pos := h.c.Rocket().GetPosition(); pos != (physics.Vector2D{X: 500, Y: 475}) {
		t.Errorf("rocket not on the pad: %+v", pos)
	}
}

func TestController_ScoreOnePerSecond(t *testing.T) {
	h := newHarness(t)
	h.c.Start()

	tests := []struct {
		ticks int
		want  int
	}{
		{9, 0},
		{1, 1},
		{10, 2},
		{15, 3},
		{5, 4},
	}
	for _, tt := range tests {
		h.ticks(tt.ticks)
		if got := h.c.Score(); got != tt.want {
			t.Fatalf("score %d, want %d", got, tt.want)
		}
	}
	if h.rec.count(event.ScoreChanged) != 4 {
		t.Errorf("expected 4 score events, got %d", h.rec.count(event.ScoreChanged))
	}
	if len(h.c.Obstacles()) != 4 {
		t.Errorf("expected one obstacle per second, got %d", len(h.c.Obstacles()))
	}
}

func TestController_PauseFreezesScoreAndObstacles(t *testing.T) {
	h := newHarness(t)
	h.c.Start()
	h.ticks(10)

	h.c.Stop()
	frozen := h.c.Obstacles()[0].Position
	h.ticks(50)

	if h.c.Phase() != PhasePaused {
		t.Fatalf("expected paused, got %v", h.c.Phase())
	}
	if h.c.Score() != 1 {
		t.Errorf("score moved while paused: %d", h.c.Score())
	}
	if len(h.c.Obstacles()) != 1 || h.c.Obstacles()[0].Position != frozen {
		t.Error("obstacles changed while paused")
	}
	if h.sched.Pending() != 0 {
		t.Errorf("tasks still scheduled while paused: %d", h.sched.Pending())
	}

	h.c.Continue()
	h.ticks(10)
	if h.c.Score() != 2 {
		t.Errorf("expected score 2 after resuming, got %d", h.c.Score())
	}
	if h.c.Obstacles()[0].Position.Y <= frozen.Y {
		t.Error("obstacle did not fall after Continue")
	}
}

func TestController_StartResetsRun(t *testing.T) {
	for _, pause := range []bool{false, true} {
		h := newHarness(t)
		h.c.Start()
		h.keys.held.Forward = true
		h.ticks(25)
		if pause {
			h.c.Stop()
		}

		h.c.Start()

		if h.c.Score() != 0 || len(h.c.Obstacles()) != 0 {
			t.Errorf("pause=%v: score %d obstacles %d after restart", pause, h.c.Score(), len(h.c.Obstacles()))
		}
		state := h.c.Rocket().State
		if state.Fuel != 5000 || state.Speed != 0 || state.FuelConsumption != 0 {
			t.Errorf("pause=%v: rocket not reset: %+v", pause, state)
		}
		if h.sched.Pending() != 2 {
			t.Errorf("pause=%v: expected exactly 2 tasks, got %d", pause, h.sched.Pending())
		}
	}
}

func TestController_CollisionEndsRunOnce(t *testing.T) {
	h := newHarness(t)
	h.c.Start()
	h.ticks(10)

	obstacles := h.c.Obstacles()
	if len(obstacles) != 1 {
		t.Fatalf("expected one obstacle, got %d", len(obstacles))
	}
	obstacles[0].Position = h.c.Rocket().GetPosition()

	// the overlap is detected on this tick and handled on the next
	h.c.Tick(frame)
	if h.c.Phase() != PhaseRunning {
		t.Fatal("collision handled within the detecting tick")
	}
	h.c.Tick(frame)

	overs := h.rec.gameOvers()
	if len(overs) != 1 {
		t.Fatalf("expected one game over, got %d", len(overs))
	}
	if overs[0].FinalScore != 1 || overs[0].ObstacleID != uint64(obstacles[0].ID) {
		t.Errorf("unexpected game over %+v", overs[0])
	}
	if h.c.Phase() != PhaseIdle || h.c.Score() != 0 || len(h.c.Obstacles()) != 0 {
		t.Errorf("not reset after game over: phase %v score %d obstacles %d",
			h.c.Phase(), h.c.Score(), len(h.c.Obstacles()))
	}

	h.c.NotifyCollision(obstacles[0].ID)
	h.ticks(20)
	if len(h.rec.gameOvers()) != 1 {
		t.Error("late collision produced a second game over")
	}
	if h.sched.Pending() != 0 {
		t.Errorf("tasks survived the game over: %d", h.sched.Pending())
	}
}

func TestController_DuplicateCollisionNotifications(t *testing.T) {
	h := newHarness(t)
	h.c.Start()
	h.ticks(5)

	h.c.Post(Collision(1))
	h.c.Post(Collision(1))
	h.c.Post(Collision(2))
	h.c.Tick(frame)

	if n := len(h.rec.gameOvers()); n != 1 {
		t.Errorf("expected one game over, got %d", n)
	}
}

func TestController_ExternalCollisionNotifier(t *testing.T) {
	h := newHarness(t)
	h.c.Start()
	h.ticks(5)

	// no obstacle touches the rocket; the notification alone ends the run
	h.c.NotifyCollision(42)
	if h.c.Phase() != PhaseIdle {
		t.Fatalf("phase after NotifyCollision = %v, want idle", h.c.Phase())
	}
	overs := h.rec.gameOvers()
	if len(overs) != 1 || overs[0].ObstacleID != 42 {
		t.Fatalf("unexpected game overs %+v", overs)
	}

	h.c.NotifyCollision(42)
	h.ticks(3)
	if n := len(h.rec.gameOvers()); n != 1 {
		t.Errorf("notification after the run ended produced %d game overs", n)
	}
}

func TestController_StopContinuePreservesRocket(t *testing.T) {
	h := newHarness(t)
	h.c.Start()
	h.keys.held.Forward = true
	h.ticks(20)

	h.c.Stop()
	before := h.c.Rocket().State
	h.ticks(10)
	h.c.Continue()
	after := h.c.Rocket().State

	if before.Fuel != after.Fuel || before.Speed != after.Speed {
		t.Errorf("pause changed the rocket: before %+v after %+v", before, after)
	}
	if after.Fuel >= 5000 || after.Speed <= 0 {
		t.Errorf("expected a burning, climbing rocket, got %+v", after)
	}
}

func TestController_InvalidCommandsAreNoOps(t *testing.T) {
	h := newHarness(t)

	h.c.Stop()
	h.c.Continue()
	if h.c.Phase() != PhaseIdle {
		t.Fatalf("expected idle, got %v", h.c.Phase())
	}

	h.c.Start()
	h.c.Continue()
	if h.c.Phase() != PhaseRunning || h.sched.Pending() != 2 {
		t.Errorf("Continue while running changed state: %v, %d tasks", h.c.Phase(), h.sched.Pending())
	}

	h.c.Stop()
	h.c.Stop()
	if h.c.Phase() != PhasePaused {
		t.Errorf("expected paused, got %v", h.c.Phase())
	}
	if h.rec.count(event.RunStopped) != 1 {
		t.Errorf("expected one stop event, got %d", h.rec.count(event.RunStopped))
	}

	h.c.NotifyCollision(99)
	if h.c.Phase() != PhasePaused || len(h.rec.gameOvers()) != 0 {
		t.Error("collision while paused ended the run")
	}
}

func TestController_FuelDepletion(t *testing.T) {
	h := newHarness(t, func(c *config.GameConfig) { c.Simulation.FuelMass = 1 })
	h.c.Start()
	h.keys.held.Forward = true

	last := h.c.Rocket().State.Fuel
	empty := false
	for i := 0; i < 40; i++ {
		h.c.Tick(frame)
		state := h.c.Rocket().State
		if state.Fuel > last || state.Fuel < 0 {
			t.Fatalf("tick %d: fuel went from %v to %v", i, last, state.Fuel)
		}
		last = state.Fuel
		if snap := h.c.Snapshot(); snap.Rocket.Fuel == 0 && snap.Rocket.FuelConsumption != 0 {
			t.Fatalf("tick %d: burn rate %v with an empty tank", i, snap.Rocket.FuelConsumption)
		}
		if state.Fuel == 0 {
			empty = true
		}
	}
	if !empty {
		t.Fatal("tank never emptied")
	}

	h.c.Start()
	if h.c.Rocket().State.Fuel != 1 {
		t.Error("Start did not refuel the rocket")
	}
}

func TestController_ForwardBurnScenario(t *testing.T) {
	h := newHarness(t)
	h.c.Start()
	h.keys.held.Forward = true

	for i := 1; i <= 50; i++ {
		h.c.Tick(frame)
		want := physics.Clamp(0.2*float64(i), 0, 100)
		if got := h.c.Rocket().State.FuelConsumption; got < want-1e-9 || got > want+1e-9 {
			t.Fatalf("tick %d: rate %v, want %v", i, got, want)
		}
	}

	snap := h.c.Snapshot()
	if snap.Rocket.Fuel >= 5000 {
		t.Error("fuel not consumed")
	}
	if snap.Rocket.Speed <= 0 || snap.Rocket.Speed > physics.MaxSpeed {
		t.Errorf("speed %v outside (0, %v]", snap.Rocket.Speed, physics.MaxSpeed)
	}
	if snap.Rocket.Position.Y >= 475 {
		t.Errorf("rocket did not climb: y %v", snap.Rocket.Position.Y)
	}
}

func TestController_DifficultyTakesEffectNextTick(t *testing.T) {
	h := newHarness(t)
	h.c.Start()

	h.c.SetDifficulty(config.Hard)
	snap := h.c.Snapshot()
	if snap.TimeStep != 0.6 || snap.Difficulty != "hard" || snap.DifficultyLabel != "Hard" {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	h.keys.held.Forward = true
	h.c.Tick(frame)
	// one 0.6s burn at 0.2 kg/s
	if got := h.c.Rocket().State.Fuel; got < 5000-0.12-1e-9 || got > 5000-0.12+1e-9 {
		t.Errorf("fuel %v, want 4999.88", got)
	}

	h.c.SetDifficulty("ludicrous")
	if h.c.Difficulty() != config.Hard {
		t.Error("unknown level replaced the difficulty")
	}
	if h.rec.count(event.DifficultyChanged) != 1 {
		t.Errorf("expected one difficulty event, got %d", h.rec.count(event.DifficultyChanged))
	}
}

func TestController_PostFromManyGoroutines(t *testing.T) {
	h := newHarness(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.c.Post(Start())
			_ = h.c.Snapshot()
		}()
	}
	wg.Wait()

	if h.c.Phase() != PhaseIdle {
		t.Fatal("posted commands applied before the next tick")
	}
	h.c.Tick(frame)
	if h.c.Phase() != PhaseRunning || h.sched.Pending() != 2 {
		t.Errorf("phase %v with %d tasks after draining starts", h.c.Phase(), h.sched.Pending())
	}
}

func TestController_SnapshotWhileTicking(t *testing.T) {
	h := newHarness(t)
	h.c.Start()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s := h.c.Snapshot()
			if s.Phase != "running" {
				t.Errorf("unexpected phase %q", s.Phase)
				return
			}
		}
	}()
	h.ticks(100)
	<-done
}

func TestController_HandlerMayRestart(t *testing.T) {
	h := newHarness(t)
	h.c.EventBus().Subscribe(event.GameOver, func(event.Event) {
		h.c.Start()
	})
	h.c.Start()
	h.ticks(10)

	h.c.NotifyCollision(h.c.Obstacles()[0].ID)

	if h.c.Phase() != PhaseRunning {
		t.Errorf("auto restart left phase %v", h.c.Phase())
	}
	if h.rec.count(event.RunStarted) != 2 {
		t.Errorf("expected two starts, got %d", h.rec.count(event.RunStarted))
	}
}

func TestPhase_String(t *testing.T) {
	tests := map[Phase]string{
		PhaseIdle:    "idle",
		PhaseRunning: "running",
		PhasePaused:  "paused",
		Phase(42):    "unknown",
	}
	for p, want := range tests {
		if p.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(p), p.String(), want)
		}
	}
}

type drawLog struct {
	calls []string
}

func (d *drawLog) RenderRocket(*entity.Rocket)     { d.calls = append(d.calls, "rocket") }
func (d *drawLog) RenderObstacle(*entity.Obstacle) { d.calls = append(d.calls, "obstacle") }
func (d *drawLog) Clear()                          { d.calls = append(d.calls, "clear") }
func (d *drawLog) Present()                        { d.calls = append(d.calls, "present") }

func TestController_Render(t *testing.T) {
	h := newHarness(t)
	h.c.Start()
	h.ticks(30)

	obstacles := len(h.c.Obstacles())
	if obstacles == 0 {
		t.Fatal("expected obstacles after three seconds")
	}

	d := &drawLog{}
	h.c.Render(d)

	if len(d.calls) != obstacles+3 {
		t.Fatalf("calls = %v", d.calls)
	}
	if d.calls[0] != "clear" || d.calls[len(d.calls)-1] != "present" || d.calls[len(d.calls)-2] != "rocket" {
		t.Errorf("unexpected draw order %v", d.calls)
	}
}
