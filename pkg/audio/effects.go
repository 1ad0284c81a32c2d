package audio

import (
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a fixed length wave whose frequency may glide
// linearly from freq to endFreq.
type oscillator struct {
	freq     float64
	endFreq  float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	noise    *rand.Rand
}

// NewOscillator creates a constant pitch oscillator.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewGlide(freq, freq, duration, wave, rate)
}

// NewGlide creates an oscillator sweeping from freq to endFreq.
func NewGlide(freq, endFreq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		endFreq:  endFreq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		noise:    rand.New(rand.NewPCG(uint64(freq), uint64(endFreq)+1)),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = o.noise.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		progress := float64(o.position) / float64(o.duration)
		freq := o.freq + (o.endFreq-o.freq)*progress
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope fades s in over attack and out over the last release of
// duration.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if e.releaseSamples > 0 && e.position >= e.totalSamples-e.releaseSamples {
			vol = math.Min(vol, float64(e.totalSamples-e.position)/float64(e.releaseSamples))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// math.Log2(0) is -Inf, so zero volume is silent instead.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Effect durations
const (
	CrashDuration = 900 * time.Millisecond
	ChimeNote     = 120 * time.Millisecond
)

// CreateCrashSound is a falling saw over a decaying noise burst.
func CreateCrashSound(rate beep.SampleRate, volume float64) beep.Streamer {
	noise := NewEnvelope(NewOscillator(0, CrashDuration, WaveNoise, rate),
		CrashDuration, 5*time.Millisecond, 700*time.Millisecond, rate)
	fall := NewEnvelope(NewGlide(220, 40, CrashDuration, WaveSaw, rate),
		CrashDuration, 10*time.Millisecond, 500*time.Millisecond, rate)

	mixed := beep.Take(rate.N(CrashDuration), beep.Mix(newVolume(noise, 0.6), newVolume(fall, 0.4)))
	return newVolume(mixed, volume)
}

// CreateChimeSound is a rising two note chime played when a run starts.
func CreateChimeSound(rate beep.SampleRate, volume float64) beep.Streamer {
	n1 := NewEnvelope(NewOscillator(659.25, ChimeNote, WaveSine, rate), ChimeNote, 5*time.Millisecond, 60*time.Millisecond, rate)
	n2 := NewEnvelope(NewOscillator(987.77, ChimeNote, WaveSine, rate), ChimeNote, 5*time.Millisecond, 80*time.Millisecond, rate)
	return newVolume(beep.Seq(n1, n2), volume)
}

// Thruster is an endless engine rumble whose loudness follows the throttle
// level set from the frame loop. Level changes are slewed so the hum never
// clicks.
type Thruster struct {
	rate  beep.SampleRate
	level atomic.Uint64 // float64 bits, target in [0, 1]
	gain  float64
	phase float64
	noise *rand.Rand
	slew  float64
}

// NewThruster creates a silent thruster hum.
func NewThruster(rate beep.SampleRate) *Thruster {
	return &Thruster{
		rate:  rate,
		noise: rand.New(rand.NewPCG(1, 2)),
		slew:  1 / float64(rate.N(50*time.Millisecond)),
	}
}

// SetLevel sets the target loudness, clamped to [0, 1].
func (t *Thruster) SetLevel(level float64) {
	level = math.Max(0, math.Min(1, level))
	t.level.Store(math.Float64bits(level))
}

// Level returns the target loudness.
func (t *Thruster) Level() float64 {
	return math.Float64frombits(t.level.Load())
}

func (t *Thruster) Stream(samples [][2]float64) (n int, ok bool) {
	target := t.Level()
	for i := range samples {
		switch {
		case t.gain < target:
			t.gain = math.Min(target, t.gain+t.slew)
		case t.gain > target:
			t.gain = math.Max(target, t.gain-t.slew)
		}

		freq := 45 + 40*t.gain
		rumble := math.Sin(2*math.Pi*t.phase) + 0.5*(t.noise.Float64()*2-1)
		sample := 0.2 * t.gain * rumble

		samples[i][0] = sample
		samples[i][1] = sample
		t.phase += freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
	}
	return len(samples), true
}

func (t *Thruster) Err() error { return nil }
