// Package validation checks and decodes the commands remote clients send
// to the telemetry server.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/engine"
)

// Message size and content limits
const (
	MaxMessageSize   = 4 * 1024
	MaxClientNameLen = 32
)

// Sentinel errors returned (wrapped) by the validators
var (
	ErrMessageTooLarge   = errors.New("message too large")
	ErrInvalidJSON       = errors.New("invalid JSON format")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

var validClientNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.<>()]+$`)

// CommandMessage is the JSON shape of a remote command, for example
// {"type":"difficulty","level":"hard"}.
type CommandMessage struct {
	Type  string `json:"type"`
	Level string `json:"level,omitempty"`
}

// MessageValidator checks size, format and rate of incoming messages
type MessageValidator struct {
	rateLimiter *RateLimiter
	limit       int
	window      time.Duration
}

// NewMessageValidator allows each client limit messages per window.
func NewMessageValidator(limit int, window time.Duration) *MessageValidator {
	return &MessageValidator{
		rateLimiter: NewRateLimiter(limit, window),
		limit:       limit,
		window:      window,
	}
}

// Close releases resources used by the message validator
func (v *MessageValidator) Close() {
	if v.rateLimiter != nil {
		v.rateLimiter.Close()
	}
}

// Forget drops rate limiting state for a disconnected client
func (v *MessageValidator) Forget(clientID string) {
	v.rateLimiter.Forget(clientID)
}

// ValidateMessage validates a raw message against size and format constraints
func (v *MessageValidator) ValidateMessage(data []byte, clientID string) error {
	if len(data) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrMessageTooLarge, len(data), MaxMessageSize)
	}

	if !json.Valid(data) {
		return ErrInvalidJSON
	}

	if !v.rateLimiter.Allow(clientID) {
		return fmt.Errorf("%w: max %d messages per %v", ErrRateLimited, v.limit, v.window)
	}

	return nil
}

// DecodeCommand validates data and turns it into a controller command.
func (v *MessageValidator) DecodeCommand(data []byte, clientID string) (engine.Command, error) {
	if err := v.ValidateMessage(data, clientID); err != nil {
		return engine.Command{}, err
	}

	var msg CommandMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return engine.Command{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return ParseCommand(msg)
}

// ParseCommand maps a command message to a controller command. Collision
// notifications cannot be sent remotely.
func ParseCommand(msg CommandMessage) (engine.Command, error) {
	switch strings.ToLower(strings.TrimSpace(msg.Type)) {
	case "start":
		return engine.Start(), nil
	case "stop":
		return engine.Stop(), nil
	case "continue":
		return engine.Continue(), nil
	case "difficulty":
		level, err := config.ParseDifficulty(msg.Level)
		if err != nil || msg.Level == "" {
			return engine.Command{}, fmt.Errorf("%w: %q", ErrInvalidDifficulty, msg.Level)
		}
		return engine.SetDifficulty(level), nil
	default:
		return engine.Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, msg.Type)
	}
}

// ValidateClientName validates and sanitizes the display name a spectator
// connects with.
func ValidateClientName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("client name cannot be empty")
	}

	if len(name) > MaxClientNameLen {
		return "", fmt.Errorf("client name too long: %d characters (max %d)", len(name), MaxClientNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("client name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("client name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("client name contains control characters")
		}
	}

	if !validClientNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("client name contains invalid characters (only alphanumeric, spaces, hyphens, underscores, and basic punctuation allowed)")
	}

	return html.EscapeString(trimmed), nil
}
