// Package audio synthesises the rocket's engine hum and run cues with beep.
package audio

import (
	"context"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sasha-s/go-deadlock"

	"github.com/opd-ai/go-rocket/pkg/event"
)

// SampleRate is the output rate of every generated stream.
const SampleRate = beep.SampleRate(48000)

// Output plays the mixed stream. Lock and Unlock guard changes to
// streamers that are being played.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Lock()                { speaker.Lock() }
func (speakerOutput) Unlock()              { speaker.Unlock() }

// Speaker is the system audio device.
func Speaker() Output { return speakerOutput{} }

// SoundManager mixes the thruster hum with one-shot cues. Every method is
// safe to call before Initialize or after Cleanup; they do nothing then.
type SoundManager struct {
	mu          deadlock.Mutex
	out         Output
	volume      float64
	mixer       *beep.Mixer
	thruster    *Thruster
	hum         *beep.Ctrl
	subs        []*event.Subscription
	initialized bool
}

// NewSoundManager creates a manager playing to out at volume in [0, 1].
func NewSoundManager(out Output, volume float64) *SoundManager {
	thruster := NewThruster(SampleRate)
	return &SoundManager{
		out:      out,
		volume:   volume,
		mixer:    &beep.Mixer{},
		thruster: thruster,
		hum:      &beep.Ctrl{Streamer: thruster, Paused: true},
	}
}

// Initialize opens the output and starts the mixer.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := sm.out.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}

	sm.mixer.Add(newVolume(sm.hum, sm.volume))
	sm.out.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Attach plays cues for run events published on bus.
func (sm *SoundManager) Attach(bus *event.Bus) {
	subs := []*event.Subscription{
		bus.Subscribe(event.RunStarted, func(event.Event) {
			sm.PlayChime()
			sm.SetHum(true)
		}),
		bus.Subscribe(event.RunContinued, func(event.Event) { sm.SetHum(true) }),
		bus.Subscribe(event.RunStopped, func(event.Event) { sm.SetHum(false) }),
		bus.Subscribe(event.GameOver, func(event.Event) {
			sm.SetHum(false)
			sm.PlayCrash()
		}),
	}

	sm.mu.Lock()
	sm.subs = append(sm.subs, subs...)
	sm.mu.Unlock()
}

// SetThrottle sets the hum loudness from the current burn, as a fraction
// of the maximum consumption rate.
func (sm *SoundManager) SetThrottle(level float64) {
	sm.thruster.SetLevel(level)
}

// FollowThrottle samples level every interval and feeds it to the
// thruster until ctx is done.
func (sm *SoundManager) FollowThrottle(ctx context.Context, level func() float64, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sm.SetThrottle(level())
		}
	}
}

// SetHum pauses or resumes the thruster hum.
func (sm *SoundManager) SetHum(on bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	sm.out.Lock()
	sm.hum.Paused = !on
	sm.out.Unlock()
}

// Humming reports whether the hum is playing.
func (sm *SoundManager) Humming() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.initialized {
		return false
	}
	sm.out.Lock()
	defer sm.out.Unlock()
	return !sm.hum.Paused
}

// PlayCrash plays the collision sound.
func (sm *SoundManager) PlayCrash() {
	sm.play(CreateCrashSound(SampleRate, sm.volume))
}

// PlayChime plays the run start sound.
func (sm *SoundManager) PlayChime() {
	sm.play(CreateChimeSound(SampleRate, sm.volume))
}

func (sm *SoundManager) play(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	sm.out.Lock()
	sm.mixer.Add(s)
	sm.out.Unlock()
}

// Cleanup stops every sound and detaches from the event bus.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, sub := range sm.subs {
		sub.Cancel()
	}
	sm.subs = nil

	if !sm.initialized {
		return
	}
	sm.out.Lock()
	sm.hum.Paused = true
	sm.mixer.Clear()
	sm.out.Unlock()
	sm.initialized = false
}
