package config

import (
	"fmt"
	"strings"
)

// Difficulty selects the simulated duration of one tick. A larger step
// makes the rocket react more violently to the same input.
type Difficulty string

// Difficulty levels
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists the levels from easiest to hardest.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// TimeStep returns the tick length in seconds for the level.
func (d Difficulty) TimeStep() float64 {
	switch d {
	case Medium:
		return 0.3
	case Hard:
		return 0.6
	default:
		return 0.1
	}
}

// Label returns a human readable name for HUDs.
func (d Difficulty) Label() string {
	switch d {
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	default:
		return "Easy"
	}
}

// ParseDifficulty accepts a level name, or "" for Easy.
func ParseDifficulty(name string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(name))); d {
	case "":
		return Easy, nil
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", &ValidationError{Field: "Difficulty", Value: name, Message: fmt.Sprintf("must be one of %v", Difficulties)}
	}
}
