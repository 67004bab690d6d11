// SPDX-License-Identifier: MIT
package synth

import (
	"math"
	"strings"
)

// Waveform selects the oscillator's wave shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	Sawtooth
)

// ParseWaveform maps a profile's waveform name onto a Waveform; unknown
// names fall back to sine.
func ParseWaveform(name string) Waveform {
	switch strings.ToLower(name) {
	case "triangle":
		return Triangle
	case "square":
		return Square
	case "sawtooth", "saw":
		return Sawtooth
	default:
		return Sine
	}
}

// waveSample evaluates one waveform at a phase in [0,1).
func waveSample(w Waveform, phase float64) float64 {
	switch w {
	case Triangle:
		return 2*math.Abs(2*(phase-math.Floor(phase+0.5))) - 1
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2 * (phase - math.Floor(phase+0.5))
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// oscVoice is one slot of the fixed voice pool: a phase accumulator, an
// envelope state machine, and the parameters set at noteOn time. The
// scheduled note-off lives here as a sample-clock deadline; retriggering
// the voice overwrites it, which is what makes a stale off from a stolen
// note a no-op.
type oscVoice struct {
	phase     float64
	frequency float64
	amplitude float64
	waveform  Waveform
	env       Envelope

	playing bool
	trigger uint64 // allocation order, lowest is stolen first
	offAt   int64  // sample clock of the deferred note-off
}

// noteOn resets the voice for a fresh note. Called only from the render
// goroutine after command drain.
func (v *oscVoice) noteOn(trigger uint64, freq, amp float64, wf Waveform, params ADSR, offAt int64) {
	v.phase = 0
	v.frequency = freq
	v.amplitude = amp
	v.waveform = wf
	v.playing = true
	v.trigger = trigger
	v.offAt = offAt
	v.env.Trigger(params)
}

// next produces one sample and advances phase and envelope. The phase
// increment frequency/sampleRate stays below 1 for the full MIDI range,
// so a single subtraction wraps it.
func (v *oscVoice) next(clock int64, sampleRate, dt float64) float64 {
	if !v.playing {
		return 0
	}
	if v.offAt > 0 && clock >= v.offAt {
		v.env.NoteOff()
		v.offAt = 0
	}

	level := v.env.Next(dt)
	if v.env.Stage() == StageIdle {
		v.playing = false
		return 0
	}

	out := waveSample(v.waveform, v.phase) * level * v.amplitude
	v.phase += v.frequency / sampleRate
	if v.phase >= 1 {
		v.phase -= 1
	}
	return out
}
