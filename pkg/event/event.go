// pkg/event/event.go
package event

import (
	"github.com/sasha-s/go-deadlock"
)

// Type represents the type of event
type Type string

// Run lifecycle event types
const (
	RunStarted        Type = "run_started"
	RunStopped        Type = "run_stopped"
	RunContinued      Type = "run_continued"
	GameOver          Type = "game_over"
	ScoreChanged      Type = "score_changed"
	ObstacleCollision Type = "obstacle_collision"
	DifficultyChanged Type = "difficulty_changed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription is returned by Subscribe. Cancel removes the handler and is
// safe to call more than once.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       deadlock.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			// copy so that a Publish iterating the old slice is unaffected
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = next
			}
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// RunEvent reports a phase transition of the run controller.
type RunEvent struct {
	BaseEvent
	Score int
}

// NewRunEvent creates a new run event
func NewRunEvent(eventType Type, source interface{}, score int) *RunEvent {
	return &RunEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		Score:     score,
	}
}

// GameOverEvent is the end-of-run notification. It is published exactly
// once per collision that ends a run.
type GameOverEvent struct {
	BaseEvent
	FinalScore int
	ObstacleID uint64
}

// NewGameOverEvent creates a new game over event
func NewGameOverEvent(source interface{}, finalScore int, obstacleID uint64) *GameOverEvent {
	return &GameOverEvent{
		BaseEvent:  BaseEvent{EventType: GameOver, Source: source},
		FinalScore: finalScore,
		ObstacleID: obstacleID,
	}
}

// ScoreEvent carries the score after a scoring tick.
type ScoreEvent struct {
	BaseEvent
	Score int
}

// NewScoreEvent creates a new score event
func NewScoreEvent(source interface{}, score int) *ScoreEvent {
	return &ScoreEvent{
		BaseEvent: BaseEvent{EventType: ScoreChanged, Source: source},
		Score:     score,
	}
}

// CollisionEvent contains the obstacle that touched the rocket
type CollisionEvent struct {
	BaseEvent
	ObstacleID uint64
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, obstacleID uint64) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent:  BaseEvent{EventType: ObstacleCollision, Source: source},
		ObstacleID: obstacleID,
	}
}

// DifficultyEvent reports a new difficulty level and its time step.
type DifficultyEvent struct {
	BaseEvent
	Level    string
	TimeStep float64
}

// NewDifficultyEvent creates a new difficulty event
func NewDifficultyEvent(source interface{}, level string, timeStep float64) *DifficultyEvent {
	return &DifficultyEvent{
		BaseEvent: BaseEvent{EventType: DifficultyChanged, Source: source},
		Level:     level,
		TimeStep:  timeStep,
	}
}
