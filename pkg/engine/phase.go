// pkg/engine/phase.go
package engine

// Phase is the run state of the controller. Game over is not a phase: a
// collision moves a running controller straight back to Idle and publishes
// event.GameOver on the way.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}
