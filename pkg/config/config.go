// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/opd-ai/go-rocket/pkg/physics"
)

// EnvPrefix is prepended to every environment variable read by viper.
const EnvPrefix = "ROCKET"

// GameConfig contains configuration for a rocket run
type GameConfig struct {
	Simulation    SimulationSettings `json:"simulation" mapstructure:"simulation"`
	Difficulty    Difficulty         `json:"difficulty" mapstructure:"difficulty"`
	World         WorldConfig        `json:"world" mapstructure:"world"`
	Rocket        RocketConfig       `json:"rocket" mapstructure:"rocket"`
	Obstacles     ObstacleConfig     `json:"obstacles" mapstructure:"obstacles"`
	ScoreInterval time.Duration      `json:"scoreInterval" mapstructure:"scoreInterval"`
}

// SimulationSettings are the engine constants of the rocket. TimeStep is
// the simulated duration of one tick and doubles as the difficulty dial.
type SimulationSettings struct {
	FuelMass           float64 `json:"fuelMass" mapstructure:"fuelMass"`
	DryMass            float64 `json:"dryMass" mapstructure:"dryMass"`
	ExhaustVelocity    float64 `json:"exhaustVelocity" mapstructure:"exhaustVelocity"`
	MaxFuelConsumption float64 `json:"maxFuelConsumption" mapstructure:"maxFuelConsumption"`
	TimeStep           float64 `json:"timeStep" mapstructure:"timeStep"`
	// ClampFuelConsumption bounds the burn rate while thrust keys are held.
	ClampFuelConsumption bool `json:"clampFuelConsumption" mapstructure:"clampFuelConsumption"`
}

// Propulsion returns the engine constants in the form the physics
// package consumes.
func (s SimulationSettings) Propulsion() physics.Propulsion {
	return physics.Propulsion{
		DryMass:            s.DryMass,
		ExhaustVelocity:    s.ExhaustVelocity,
		MaxFuelConsumption: s.MaxFuelConsumption,
		ClampRate:          s.ClampFuelConsumption,
	}
}

// WorldConfig is the visible playfield in world units.
type WorldConfig struct {
	Width  float64 `json:"width" mapstructure:"width"`
	Height float64 `json:"height" mapstructure:"height"`
}

// RocketConfig places and sizes the rocket body.
type RocketConfig struct {
	PadX         float64 `json:"padX" mapstructure:"padX"`
	PadY         float64 `json:"padY" mapstructure:"padY"`
	BodyWidth    float64 `json:"bodyWidth" mapstructure:"bodyWidth"`
	BodyHeight   float64 `json:"bodyHeight" mapstructure:"bodyHeight"`
	RotationRate float64 `json:"rotationRate" mapstructure:"rotationRate"`
	// KeepInBounds stops the rocket body at the world edges.
	KeepInBounds bool `json:"keepInBounds" mapstructure:"keepInBounds"`
}

// Pad returns the launch position.
func (r RocketConfig) Pad() physics.Vector2D {
	return physics.Vector2D{X: r.PadX, Y: r.PadY}
}

// ObstacleConfig controls spawning and the forgiving hitbox of obstacles.
type ObstacleConfig struct {
	SpawnInterval time.Duration `json:"spawnInterval" mapstructure:"spawnInterval"`
	MinSpeed      float64       `json:"minSpeed" mapstructure:"minSpeed"`
	MaxSpeed      float64       `json:"maxSpeed" mapstructure:"maxSpeed"`
	MinScale      float64       `json:"minScale" mapstructure:"minScale"`
	MaxScale      float64       `json:"maxScale" mapstructure:"maxScale"`
	BaseRadius    float64       `json:"baseRadius" mapstructure:"baseRadius"`
	HitboxMargin  float64       `json:"hitboxMargin" mapstructure:"hitboxMargin"`
	ShrinkFactor  float64       `json:"shrinkFactor" mapstructure:"shrinkFactor"`
	SpawnY        float64       `json:"spawnY" mapstructure:"spawnY"`
	SpawnMargin   float64       `json:"spawnMargin" mapstructure:"spawnMargin"`
	ReapMargin    float64       `json:"reapMargin" mapstructure:"reapMargin"`
}

// DefaultConfig returns the stock configuration on the easy level
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Simulation: SimulationSettings{
			FuelMass:             5000,
			DryMass:              500,
			ExhaustVelocity:      2500,
			MaxFuelConsumption:   100,
			TimeStep:             Easy.TimeStep(),
			ClampFuelConsumption: true,
		},
		Difficulty: Easy,
		World: WorldConfig{
			Width:  1000,
			Height: 600,
		},
		Rocket: RocketConfig{
			PadX:         500,
			PadY:         475,
			BodyWidth:    30,
			BodyHeight:   60,
			RotationRate: 0.5,
			KeepInBounds: true,
		},
		Obstacles: ObstacleConfig{
			SpawnInterval: time.Second,
			MinSpeed:      50,
			MaxSpeed:      120,
			MinScale:      0.8,
			MaxScale:      1.1,
			BaseRadius:    32,
			HitboxMargin:  10,
			ShrinkFactor:  0.8,
			SpawnY:        -50,
			SpawnMargin:   50,
			ReapMargin:    50,
		},
		ScoreInterval: time.Second,
	}
}

// setDefaults registers every field of DefaultConfig with v so that file
// values and ROCKET_* environment variables can override any of them.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("simulation.fuelMass", d.Simulation.FuelMass)
	v.SetDefault("simulation.dryMass", d.Simulation.DryMass)
	v.SetDefault("simulation.exhaustVelocity", d.Simulation.ExhaustVelocity)
	v.SetDefault("simulation.maxFuelConsumption", d.Simulation.MaxFuelConsumption)
	v.SetDefault("simulation.clampFuelConsumption", d.Simulation.ClampFuelConsumption)
	v.SetDefault("difficulty", string(d.Difficulty))
	v.SetDefault("world.width", d.World.Width)
	v.SetDefault("world.height", d.World.Height)
	v.SetDefault("rocket.padX", d.Rocket.PadX)
	v.SetDefault("rocket.padY", d.Rocket.PadY)
	v.SetDefault("rocket.bodyWidth", d.Rocket.BodyWidth)
	v.SetDefault("rocket.bodyHeight", d.Rocket.BodyHeight)
	v.SetDefault("rocket.rotationRate", d.Rocket.RotationRate)
	v.SetDefault("rocket.keepInBounds", d.Rocket.KeepInBounds)
	v.SetDefault("obstacles.spawnInterval", d.Obstacles.SpawnInterval)
	v.SetDefault("obstacles.minSpeed", d.Obstacles.MinSpeed)
	v.SetDefault("obstacles.maxSpeed", d.Obstacles.MaxSpeed)
	v.SetDefault("obstacles.minScale", d.Obstacles.MinScale)
	v.SetDefault("obstacles.maxScale", d.Obstacles.MaxScale)
	v.SetDefault("obstacles.baseRadius", d.Obstacles.BaseRadius)
	v.SetDefault("obstacles.hitboxMargin", d.Obstacles.HitboxMargin)
	v.SetDefault("obstacles.shrinkFactor", d.Obstacles.ShrinkFactor)
	v.SetDefault("obstacles.spawnY", d.Obstacles.SpawnY)
	v.SetDefault("obstacles.spawnMargin", d.Obstacles.SpawnMargin)
	v.SetDefault("obstacles.reapMargin", d.Obstacles.ReapMargin)
	v.SetDefault("scoreInterval", d.ScoreInterval)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// No default: an unset time step falls back to the difficulty level.
	_ = v.BindEnv("simulation.timeStep")
	return v
}

// LoadConfig loads a configuration from a JSON or YAML file. Missing
// fields keep their defaults and ROCKET_<SECTION>_<FIELD> environment
// variables override both.
func LoadConfig(path string) (*GameConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return decode(v)
}

// LoadDefault returns the defaults with environment overrides applied.
func LoadDefault() (*GameConfig, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*GameConfig, error) {
	var cfg GameConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	level, err := ParseDifficulty(string(cfg.Difficulty))
	if err != nil {
		return nil, err
	}
	cfg.Difficulty = level
	if cfg.Simulation.TimeStep == 0 {
		cfg.Simulation.TimeStep = level.TimeStep()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig saves a configuration to a JSON file
func SaveConfig(config *GameConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the physical and geometric constraints of the config.
func (c *GameConfig) Validate() error {
	s := c.Simulation
	switch {
	case s.FuelMass < 0:
		return &ValidationError{Field: "Simulation.FuelMass", Value: s.FuelMass, Message: "must not be negative"}
	case s.DryMass <= 0:
		return &ValidationError{Field: "Simulation.DryMass", Value: s.DryMass, Message: "must be positive"}
	case s.ExhaustVelocity <= 0:
		return &ValidationError{Field: "Simulation.ExhaustVelocity", Value: s.ExhaustVelocity, Message: "must be positive"}
	case s.MaxFuelConsumption <= 0:
		return &ValidationError{Field: "Simulation.MaxFuelConsumption", Value: s.MaxFuelConsumption, Message: "must be positive"}
	case s.TimeStep <= 0 || s.TimeStep > 1:
		return &ValidationError{Field: "Simulation.TimeStep", Value: s.TimeStep, Message: "must be in (0, 1]"}
	case c.World.Width <= 0 || c.World.Height <= 0:
		return &ValidationError{Field: "World", Value: c.World, Message: "dimensions must be positive"}
	case c.Rocket.BodyWidth <= 0 || c.Rocket.BodyHeight <= 0:
		return &ValidationError{Field: "Rocket.Body", Value: c.Rocket, Message: "dimensions must be positive"}
	case c.Obstacles.SpawnInterval <= 0:
		return &ValidationError{Field: "Obstacles.SpawnInterval", Value: c.Obstacles.SpawnInterval, Message: "must be positive"}
	case c.Obstacles.MinSpeed > c.Obstacles.MaxSpeed:
		return &ValidationError{Field: "Obstacles.Speed", Value: c.Obstacles, Message: "minSpeed exceeds maxSpeed"}
	case c.Obstacles.MinScale <= 0 || c.Obstacles.MinScale > c.Obstacles.MaxScale:
		return &ValidationError{Field: "Obstacles.Scale", Value: c.Obstacles, Message: "scale range must be positive and ordered"}
	case c.Obstacles.SpawnMargin >= c.World.Width:
		return &ValidationError{Field: "Obstacles.SpawnMargin", Value: c.Obstacles.SpawnMargin, Message: "must be smaller than the world width"}
	case c.ScoreInterval <= 0:
		return &ValidationError{Field: "ScoreInterval", Value: c.ScoreInterval, Message: "must be positive"}
	}
	return nil
}

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}
