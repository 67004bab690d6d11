// SPDX-License-Identifier: MIT
/*
Package synth implements the polyphonic software synthesizer: a fixed
pool of oscillator voices with ADSR envelopes, a mixing bus, a one-pole
low-pass filter, and a Schroeder reverb stage.

Thread Safety:
- Render runs on the audio callback and never blocks, locks, or
  allocates. All voice state is owned by the render goroutine.
- The analysis path communicates through a buffered command channel
  (note triggers) and atomically swapped snapshots (profile, modulated
  voice, master gain). There is no shared mutable per-sample state.
*/
package synth

import (
	"math"
	"sync/atomic"

	"github.com/p-poss/bark/internal/music"
	"github.com/p-poss/bark/internal/voice"
)

// DefaultMaxPolyphony is the voice pool size when none is configured.
const DefaultMaxPolyphony = 12

// commandQueueSize bounds the note-trigger queue between the analysis
// path and the render callback. Overflow drops notes instead of blocking.
const commandQueueSize = 64

type noteCommand struct {
	pitch    int
	velocity int
	duration float64
}

// patch is the render-side snapshot of the note parameters derived from
// the active species profile.
type patch struct {
	waveform Waveform
	adsr     ADSR
}

// Synth owns the voice pool and effect chain. Exactly maxPolyphony
// oscillator voices exist for its whole lifetime.
type Synth struct {
	sampleRate float64
	voices     []oscVoice
	clock      int64  // samples rendered since construction
	triggers   uint64 // monotonic note-on counter, drives oldest-steal

	commands chan noteCommand
	patch    atomic.Pointer[patch]
	mod      atomic.Pointer[voice.Modulated]
	gainBits atomic.Uint64 // math.Float64bits of master gain

	filterState float64
	reverb      *Reverb
}

// New creates a Synth with a fixed pool of maxPolyphony voices.
func New(sampleRate float64, maxPolyphony int, masterGain float64) *Synth {
	if maxPolyphony < 1 {
		maxPolyphony = DefaultMaxPolyphony
	}
	s := &Synth{
		sampleRate: sampleRate,
		voices:     make([]oscVoice, maxPolyphony),
		commands:   make(chan noteCommand, commandQueueSize),
		reverb:     NewReverb(sampleRate),
	}
	s.patch.Store(&patch{waveform: Sine, adsr: ADSR{Attack: 0.02, Decay: 0.1, Sustain: 0.6, Release: 0.3}})
	s.SetMasterGain(masterGain)
	return s
}

// SetProfile swaps the note patch (waveform, envelope) for subsequent
// triggers. Notes already sounding keep the patch they started with.
func (s *Synth) SetProfile(p voice.Profile) {
	s.patch.Store(&patch{
		waveform: ParseWaveform(p.Waveform),
		adsr: ADSR{
			Attack:  p.Attack,
			Decay:   p.Decay,
			Sustain: p.Sustain,
			Release: p.Release,
		},
	})
}

// SetModulated swaps the modulated-voice snapshot driving the filter
// cutoff and reverb mix.
func (s *Synth) SetModulated(m voice.Modulated) {
	s.mod.Store(&m)
}

// SetMasterGain sets the output gain, clamped to [0,1].
func (s *Synth) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	if gain > 1 {
		gain = 1
	}
	s.gainBits.Store(math.Float64bits(gain))
}

// MasterGain returns the current output gain.
func (s *Synth) MasterGain() float64 {
	return math.Float64frombits(s.gainBits.Load())
}

// PlayNote queues a note trigger for the render path. Never blocks; a
// full queue drops the note, which is the degraded-not-failed behavior
// the rest of the pipeline relies on.
func (s *Synth) PlayNote(pitch, velocity int, duration float64) {
	cmd := noteCommand{
		pitch:    music.ClampPitch(pitch),
		velocity: music.ClampVelocity(velocity),
		duration: duration,
	}
	select {
	case s.commands <- cmd:
	default:
	}
}

// PlayNotes queues a batch of scheduler events.
func (s *Synth) PlayNotes(events []music.NoteEvent) {
	for _, ev := range events {
		s.PlayNote(ev.Pitch, ev.Velocity, ev.Duration)
	}
}

// Render fills out with mono samples. This is the hot path: it drains
// pending note commands, advances every voice, applies filter, reverb
// and gain, and clips. No allocations, no locks.
func (s *Synth) Render(out []float32) {
	s.drainCommands()

	var cutoff, mix float64 = 8000, 0
	if m := s.mod.Load(); m != nil {
		cutoff = m.FilterCutoff
		mix = m.EffectiveReverbMix()
	}
	filterCoef := 1 - math.Exp(-2*math.Pi*cutoff/s.sampleRate)
	gain := s.MasterGain()
	dt := 1 / s.sampleRate

	for i := range out {
		var sum float64
		for vi := range s.voices {
			sum += s.voices[vi].next(s.clock, s.sampleRate, dt)
		}

		s.filterState += filterCoef * (sum - s.filterState)
		dry := s.filterState
		wet := s.reverb.Process(dry)
		sample := (dry*(1-mix) + wet*mix) * gain

		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		out[i] = float32(sample)
		s.clock++
	}
}

// drainCommands consumes every queued note trigger without blocking.
func (s *Synth) drainCommands() {
	for {
		select {
		case cmd := <-s.commands:
			s.triggerNote(cmd)
		default:
			return
		}
	}
}

// triggerNote allocates a voice for a command: the first idle voice, or
// failing that the oldest playing voice. Stealing re-triggers the voice's
// envelope and overwrites its note-off deadline, so the stolen note's
// pending off cannot fire against the new note.
func (s *Synth) triggerNote(cmd noteCommand) {
	slot := -1
	for i := range s.voices {
		if !s.voices[i].playing {
			slot = i
			break
		}
	}
	if slot < 0 {
		oldest := uint64(math.MaxUint64)
		for i := range s.voices {
			if s.voices[i].trigger < oldest {
				oldest = s.voices[i].trigger
				slot = i
			}
		}
	}

	p := s.patch.Load()
	s.triggers++
	offAt := s.clock + int64(cmd.duration*s.sampleRate)
	if offAt <= s.clock {
		offAt = s.clock + 1
	}
	s.voices[slot].noteOn(
		s.triggers,
		music.MIDIToFrequency(cmd.pitch),
		float64(cmd.velocity)/127.0,
		p.waveform,
		p.adsr,
		offAt,
	)
}

// ActiveVoices counts the voices currently sounding.
func (s *Synth) ActiveVoices() int {
	n := 0
	for i := range s.voices {
		if s.voices[i].playing {
			n++
		}
	}
	return n
}

// MaxPolyphony returns the fixed pool size.
func (s *Synth) MaxPolyphony() int {
	return len(s.voices)
}
