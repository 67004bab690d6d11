// SPDX-License-Identifier: MIT
package synth

import (
	"math"
	"testing"
)

const testDt = 1.0 / 44100.0

// run advances the envelope n samples and returns the last level.
func run(e *Envelope, n int) float64 {
	var level float64
	for i := 0; i < n; i++ {
		level = e.Next(testDt)
	}
	return level
}

func TestEnvelopeAttackRamp(t *testing.T) {
	var e Envelope
	e.Trigger(ADSR{Attack: 0.1, Decay: 0.1, Sustain: 0.5, Release: 0.1})

	half := run(&e, 2205) // 50ms of samples
	if e.Stage() != StageAttack {
		t.Fatalf("stage = %v, want attack", e.Stage())
	}
	if math.Abs(half-0.5) > 0.01 {
		t.Errorf("level at attack midpoint = %v, want ~0.5", half)
	}

	// A few extra samples past the nominal attack time: the accumulated
	// float stage clock can land one sample short of the boundary.
	run(&e, 2210)
	if e.Stage() != StageDecay {
		t.Errorf("stage after attack time = %v, want decay", e.Stage())
	}
}

func TestEnvelopeZeroAttackJumps(t *testing.T) {
	var e Envelope
	e.Trigger(ADSR{Attack: 0, Decay: 0.1, Sustain: 0.5, Release: 0.1})

	if level := e.Next(testDt); level != 1 {
		t.Errorf("level after zero attack = %v, want 1", level)
	}
	if e.Stage() != StageDecay {
		t.Errorf("stage = %v, want decay", e.Stage())
	}
}

func TestEnvelopeDecayToSustain(t *testing.T) {
	var e Envelope
	e.Trigger(ADSR{Attack: 0, Decay: 0.05, Sustain: 0.4, Release: 0.1})

	level := run(&e, 4410) // 100ms, well past decay
	if e.Stage() != StageSustain {
		t.Fatalf("stage = %v, want sustain", e.Stage())
	}
	if math.Abs(level-0.4) > 1e-9 {
		t.Errorf("sustain level = %v, want 0.4", level)
	}

	// Sustain holds indefinitely.
	if held := run(&e, 44100); math.Abs(held-0.4) > 1e-9 {
		t.Errorf("held level = %v, want 0.4", held)
	}
}

func TestEnvelopeReleaseToIdle(t *testing.T) {
	var e Envelope
	e.Trigger(ADSR{Attack: 0, Decay: 0, Sustain: 0.8, Release: 0.05})
	run(&e, 10)

	e.NoteOff()
	if e.Stage() != StageRelease {
		t.Fatalf("stage after NoteOff = %v, want release", e.Stage())
	}

	level := run(&e, 4410) // 100ms, well past release
	if e.Stage() != StageIdle {
		t.Errorf("stage after release time = %v, want idle", e.Stage())
	}
	if level != 0 {
		t.Errorf("level after release = %v, want 0", level)
	}
}

func TestEnvelopeZeroReleaseCutsImmediately(t *testing.T) {
	var e Envelope
	e.Trigger(ADSR{Attack: 0, Decay: 0, Sustain: 0.8, Release: 0})
	run(&e, 10)

	e.NoteOff()
	if level := e.Next(testDt); level != 0 {
		t.Errorf("level = %v, want 0 immediately", level)
	}
	if e.Stage() != StageIdle {
		t.Errorf("stage = %v, want idle", e.Stage())
	}
}

func TestEnvelopeEpsilonReclaim(t *testing.T) {
	// A long release from a low level crosses the reclaim epsilon well
	// before its nominal end.
	var e Envelope
	e.Trigger(ADSR{Attack: 0, Decay: 0, Sustain: 0.01, Release: 1.0})
	run(&e, 10)
	e.NoteOff()

	// At 10% into the release the level would be 0.009; epsilon cuts in
	// once it dips below 1e-3, i.e. after ~90% of the release.
	run(&e, 44100) // a full second covers it
	if e.Stage() != StageIdle {
		t.Errorf("stage = %v, want idle after epsilon reclaim", e.Stage())
	}
}

func TestNoteOffIdempotentWhenIdle(t *testing.T) {
	var e Envelope
	e.NoteOff()
	if e.Stage() != StageIdle {
		t.Errorf("NoteOff on idle envelope moved stage to %v", e.Stage())
	}
}
