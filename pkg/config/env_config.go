// pkg/config/env_config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Frontend names accepted by EnvironmentConfig.Frontend.
const (
	FrontendTerminal = "terminal"
	FrontendEngo     = "engo"
	FrontendHeadless = "headless"
)

// EnvironmentConfig holds process level settings read from ROCKET_*
// environment variables: which frontend drives the simulation and how
// the optional telemetry server behaves.
type EnvironmentConfig struct {
	Frontend   string
	ConfigPath string
	LogLevel   string
	FrameRate  int

	// Audio plays the thruster hum and run cues on the system speaker
	Audio       bool
	AudioVolume float64

	// Telemetry server; empty address disables it
	TelemetryAddr  string
	BroadcastRate  int
	MaxSpectators  int
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	AllowCommands  bool
	CommandLimit   int
	CommandWindow  time.Duration
	ShutdownWindow time.Duration

	// Resource limits for supervised goroutines
	MaxMemoryMB           int64
	MaxGoroutines         int
	ResourceCheckInterval time.Duration

	// Circuit Breaker Configuration
	CircuitBreakerMaxRequests         int
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails int
}

var envDefaults = map[string]interface{}{
	"frontend":                              FrontendTerminal,
	"config_path":                           "",
	"log_level":                             "INFO",
	"frame_rate":                            60,
	"audio":                                 false,
	"audio_volume":                          0.5,
	"telemetry_addr":                        "",
	"broadcast_rate":                        20,
	"max_spectators":                        32,
	"write_timeout":                         5 * time.Second,
	"read_timeout":                          60 * time.Second,
	"allow_commands":                        false,
	"command_limit":                         10,
	"command_window":                        time.Second,
	"shutdown_window":                       5 * time.Second,
	"max_memory_mb":                         512,
	"max_goroutines":                        256,
	"resource_check_interval":               30 * time.Second,
	"circuit_breaker_max_requests":          3,
	"circuit_breaker_interval":              60 * time.Second,
	"circuit_breaker_timeout":               30 * time.Second,
	"circuit_breaker_max_consecutive_fails": 5,
}

// LoadConfigFromEnv reads ROCKET_* variables (for example
// ROCKET_TELEMETRY_ADDR or ROCKET_BROADCAST_RATE), applies defaults and
// validates the result.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for key, value := range envDefaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	cfg := &EnvironmentConfig{
		Frontend:                          strings.ToLower(v.GetString("frontend")),
		ConfigPath:                        v.GetString("config_path"),
		LogLevel:                          v.GetString("log_level"),
		FrameRate:                         v.GetInt("frame_rate"),
		Audio:                             v.GetBool("audio"),
		AudioVolume:                       v.GetFloat64("audio_volume"),
		TelemetryAddr:                     v.GetString("telemetry_addr"),
		BroadcastRate:                     v.GetInt("broadcast_rate"),
		MaxSpectators:                     v.GetInt("max_spectators"),
		WriteTimeout:                      v.GetDuration("write_timeout"),
		ReadTimeout:                       v.GetDuration("read_timeout"),
		AllowCommands:                     v.GetBool("allow_commands"),
		CommandLimit:                      v.GetInt("command_limit"),
		CommandWindow:                     v.GetDuration("command_window"),
		ShutdownWindow:                    v.GetDuration("shutdown_window"),
		MaxMemoryMB:                       v.GetInt64("max_memory_mb"),
		MaxGoroutines:                     v.GetInt("max_goroutines"),
		ResourceCheckInterval:             v.GetDuration("resource_check_interval"),
		CircuitBreakerMaxRequests:         v.GetInt("circuit_breaker_max_requests"),
		CircuitBreakerInterval:            v.GetDuration("circuit_breaker_interval"),
		CircuitBreakerTimeout:             v.GetDuration("circuit_breaker_timeout"),
		CircuitBreakerMaxConsecutiveFails: v.GetInt("circuit_breaker_max_consecutive_fails"),
	}

	if err := validateEnvironmentConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}
	return cfg, nil
}

// DefaultEnvironmentConfig returns the settings used when no ROCKET_*
// variables are set.
func DefaultEnvironmentConfig() *EnvironmentConfig {
	return &EnvironmentConfig{
		Frontend:                          FrontendTerminal,
		LogLevel:                          "INFO",
		FrameRate:                         60,
		AudioVolume:                       0.5,
		BroadcastRate:                     20,
		MaxSpectators:                     32,
		WriteTimeout:                      5 * time.Second,
		ReadTimeout:                       60 * time.Second,
		CommandLimit:                      10,
		CommandWindow:                     time.Second,
		ShutdownWindow:                    5 * time.Second,
		MaxMemoryMB:                       512,
		MaxGoroutines:                     256,
		ResourceCheckInterval:             30 * time.Second,
		CircuitBreakerMaxRequests:         3,
		CircuitBreakerInterval:            60 * time.Second,
		CircuitBreakerTimeout:             30 * time.Second,
		CircuitBreakerMaxConsecutiveFails: 5,
	}
}

func validateEnvironmentConfig(c *EnvironmentConfig) error {
	switch c.Frontend {
	case FrontendTerminal, FrontendEngo, FrontendHeadless:
	default:
		return &ValidationError{Field: "Frontend", Value: c.Frontend, Message: "must be terminal, engo or headless"}
	}
	if c.FrameRate < 1 || c.FrameRate > 240 {
		return &ValidationError{Field: "FrameRate", Value: c.FrameRate, Message: "must be between 1 and 240"}
	}
	if c.AudioVolume < 0 || c.AudioVolume > 1 {
		return &ValidationError{Field: "AudioVolume", Value: c.AudioVolume, Message: "must be between 0 and 1"}
	}
	if c.BroadcastRate < 1 || c.BroadcastRate > c.FrameRate {
		return &ValidationError{Field: "BroadcastRate", Value: c.BroadcastRate, Message: "must be between 1 and the frame rate"}
	}
	if c.MaxSpectators < 1 || c.MaxSpectators > 1000 {
		return &ValidationError{Field: "MaxSpectators", Value: c.MaxSpectators, Message: "must be between 1 and 1000"}
	}
	if c.WriteTimeout < 100*time.Millisecond || c.WriteTimeout > time.Minute {
		return &ValidationError{Field: "WriteTimeout", Value: c.WriteTimeout, Message: "must be between 100ms and 1m"}
	}
	if c.ReadTimeout < time.Second || c.ReadTimeout > 10*time.Minute {
		return &ValidationError{Field: "ReadTimeout", Value: c.ReadTimeout, Message: "must be between 1s and 10m"}
	}
	if c.CommandLimit < 1 {
		return &ValidationError{Field: "CommandLimit", Value: c.CommandLimit, Message: "must be at least 1"}
	}
	if c.CommandWindow < 10*time.Millisecond {
		return &ValidationError{Field: "CommandWindow", Value: c.CommandWindow, Message: "must be at least 10ms"}
	}
	if c.ShutdownWindow < 100*time.Millisecond {
		return &ValidationError{Field: "ShutdownWindow", Value: c.ShutdownWindow, Message: "must be at least 100ms"}
	}
	if c.MaxMemoryMB < 16 {
		return &ValidationError{Field: "MaxMemoryMB", Value: c.MaxMemoryMB, Message: "must be at least 16"}
	}
	if c.MaxGoroutines < 4 {
		return &ValidationError{Field: "MaxGoroutines", Value: c.MaxGoroutines, Message: "must be at least 4"}
	}
	if c.ResourceCheckInterval < time.Second {
		return &ValidationError{Field: "ResourceCheckInterval", Value: c.ResourceCheckInterval, Message: "must be at least 1s"}
	}
	if c.CircuitBreakerMaxRequests < 1 {
		return &ValidationError{Field: "CircuitBreakerMaxRequests", Value: c.CircuitBreakerMaxRequests, Message: "must be at least 1"}
	}
	if c.CircuitBreakerInterval < time.Second {
		return &ValidationError{Field: "CircuitBreakerInterval", Value: c.CircuitBreakerInterval, Message: "must be at least 1s"}
	}
	if c.CircuitBreakerTimeout < time.Second {
		return &ValidationError{Field: "CircuitBreakerTimeout", Value: c.CircuitBreakerTimeout, Message: "must be at least 1s"}
	}
	if c.CircuitBreakerMaxConsecutiveFails < 1 {
		return &ValidationError{Field: "CircuitBreakerMaxConsecutiveFails", Value: c.CircuitBreakerMaxConsecutiveFails, Message: "must be at least 1"}
	}
	return nil
}
