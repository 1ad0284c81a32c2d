// pkg/engine/command.go
package engine

import (
	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/entity"
)

// CommandKind identifies a queued controller command.
type CommandKind int

const (
	CommandStart CommandKind = iota
	CommandStop
	CommandContinue
	CommandDifficulty
	CommandCollision
)

func (k CommandKind) String() string {
	switch k {
	case CommandStart:
		return "start"
	case CommandStop:
		return "stop"
	case CommandContinue:
		return "continue"
	case CommandDifficulty:
		return "difficulty"
	case CommandCollision:
		return "collision"
	default:
		return "unknown"
	}
}

// Command is a unit of work for the controller. Commands posted from other
// goroutines are applied at the start of the next tick.
type Command struct {
	Kind       CommandKind
	Difficulty config.Difficulty // CommandDifficulty only
	ObstacleID entity.ID         // CommandCollision only
}

// Start returns a start command.
func Start() Command { return Command{Kind: CommandStart} }

// Stop returns a stop command.
func Stop() Command { return Command{Kind: CommandStop} }

// Continue returns a continue command.
func Continue() Command { return Command{Kind: CommandContinue} }

// SetDifficulty returns a difficulty command.
func SetDifficulty(level config.Difficulty) Command {
	return Command{Kind: CommandDifficulty, Difficulty: level}
}

// Collision returns a collision notification for obstacle id.
func Collision(id entity.ID) Command {
	return Command{Kind: CommandCollision, ObstacleID: id}
}
