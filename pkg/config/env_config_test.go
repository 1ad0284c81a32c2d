// pkg/config/env_config_test.go
package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		config, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() failed: %v", err)
		}
		want := DefaultEnvironmentConfig()
		if *config != *want {
			t.Errorf("defaults mismatch:\n got %+v\nwant %+v", config, want)
		}
	})

	t.Run("CustomValues", func(t *testing.T) {
		t.Setenv("ROCKET_FRONTEND", "Headless")
		t.Setenv("ROCKET_TELEMETRY_ADDR", "127.0.0.1:4580")
		t.Setenv("ROCKET_BROADCAST_RATE", "10")
		t.Setenv("ROCKET_ALLOW_COMMANDS", "true")
		t.Setenv("ROCKET_WRITE_TIMEOUT", "2s")
		t.Setenv("ROCKET_CIRCUIT_BREAKER_MAX_CONSECUTIVE_FAILS", "7")
		t.Setenv("ROCKET_MAX_GOROUTINES", "64")
		t.Setenv("ROCKET_RESOURCE_CHECK_INTERVAL", "5s")

		config, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() failed: %v", err)
		}
		if config.Frontend != FrontendHeadless {
			t.Errorf("Expected headless frontend, got %q", config.Frontend)
		}
		if config.TelemetryAddr != "127.0.0.1:4580" {
			t.Errorf("Expected TelemetryAddr, got %q", config.TelemetryAddr)
		}
		if config.BroadcastRate != 10 {
			t.Errorf("Expected BroadcastRate 10, got %d", config.BroadcastRate)
		}
		if !config.AllowCommands {
			t.Error("Expected AllowCommands true")
		}
		if config.WriteTimeout != 2*time.Second {
			t.Errorf("Expected WriteTimeout 2s, got %v", config.WriteTimeout)
		}
		if config.CircuitBreakerMaxConsecutiveFails != 7 {
			t.Errorf("Expected 7 consecutive fails, got %d", config.CircuitBreakerMaxConsecutiveFails)
		}
		if config.MaxGoroutines != 64 || config.ResourceCheckInterval != 5*time.Second {
			t.Errorf("Expected resource limits 64/5s, got %d/%v", config.MaxGoroutines, config.ResourceCheckInterval)
		}
	})

	t.Run("InvalidValues", func(t *testing.T) {
		t.Setenv("ROCKET_FRONTEND", "vr-headset")
		_, err := LoadConfigFromEnv()
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "Frontend" {
			t.Errorf("Expected Frontend validation error, got %v", err)
		}
	})
}

func TestValidateEnvironmentConfig(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*EnvironmentConfig)
		errorField string
	}{
		{"ValidConfig", func(c *EnvironmentConfig) {}, ""},
		{"FrameRateTooLow", func(c *EnvironmentConfig) { c.FrameRate = 0 }, "FrameRate"},
		{"AudioTooLoud", func(c *EnvironmentConfig) { c.AudioVolume = 1.5 }, "AudioVolume"},
		{"BroadcastAboveFrameRate", func(c *EnvironmentConfig) { c.BroadcastRate = 61 }, "BroadcastRate"},
		{"NoSpectators", func(c *EnvironmentConfig) { c.MaxSpectators = 0 }, "MaxSpectators"},
		{"WriteTimeoutTooShort", func(c *EnvironmentConfig) { c.WriteTimeout = time.Millisecond }, "WriteTimeout"},
		{"ReadTimeoutTooLong", func(c *EnvironmentConfig) { c.ReadTimeout = time.Hour }, "ReadTimeout"},
		{"NoCommands", func(c *EnvironmentConfig) { c.CommandLimit = 0 }, "CommandLimit"},
		{"TinyCommandWindow", func(c *EnvironmentConfig) { c.CommandWindow = time.Millisecond }, "CommandWindow"},
		{"ShutdownWindowTooShort", func(c *EnvironmentConfig) { c.ShutdownWindow = 0 }, "ShutdownWindow"},
		{"MemoryLimitTooLow", func(c *EnvironmentConfig) { c.MaxMemoryMB = 8 }, "MaxMemoryMB"},
		{"GoroutineLimitTooLow", func(c *EnvironmentConfig) { c.MaxGoroutines = 2 }, "MaxGoroutines"},
		{"ResourceCheckTooOften", func(c *EnvironmentConfig) { c.ResourceCheckInterval = 10 * time.Millisecond }, "ResourceCheckInterval"},
		{"CircuitBreakerMaxRequestsTooLow", func(c *EnvironmentConfig) { c.CircuitBreakerMaxRequests = 0 }, "CircuitBreakerMaxRequests"},
		{"CircuitBreakerIntervalTooShort", func(c *EnvironmentConfig) { c.CircuitBreakerInterval = 500 * time.Millisecond }, "CircuitBreakerInterval"},
		{"CircuitBreakerTimeoutTooShort", func(c *EnvironmentConfig) { c.CircuitBreakerTimeout = 0 }, "CircuitBreakerTimeout"},
		{"CircuitBreakerFailsTooLow", func(c *EnvironmentConfig) { c.CircuitBreakerMaxConsecutiveFails = 0 }, "CircuitBreakerMaxConsecutiveFails"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEnvironmentConfig()
			tt.mutate(cfg)
			err := validateEnvironmentConfig(cfg)

			if tt.errorField == "" {
				if err != nil {
					t.Errorf("Expected no validation error, but got: %v", err)
				}
				return
			}
			if validationErr, ok := err.(*ValidationError); !ok {
				t.Errorf("Expected ValidationError, got %T: %v", err, err)
			} else if validationErr.Field != tt.errorField {
				t.Errorf("Expected error for field '%s', got error for field '%s'", tt.errorField, validationErr.Field)
			}
		})
	}
}
