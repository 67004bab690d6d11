// SPDX-License-Identifier: MIT
package synth

// Stage is the current phase of an envelope's state machine.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// releaseEpsilon is the amplitude below which a releasing voice goes idle
// and its oscillator is reclaimed by the pool.
const releaseEpsilon = 1e-3

// ADSR holds envelope parameters: times in seconds (>= 0), sustain as a
// level in [0,1]. Immutable once attached to a voice.
type ADSR struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Envelope is a time-based ADSR state machine advanced once per audio
// sample. Times are measured from stage entry, so a zero attack or
// release jumps instantly instead of ramping.
type Envelope struct {
	params ADSR

	stage       Stage
	stageTime   float64
	level       float64
	releaseFrom float64
}

// Trigger starts the envelope at the attack stage (note on).
func (e *Envelope) Trigger(params ADSR) {
	e.params = params
	e.stage = StageAttack
	e.stageTime = 0
	e.level = 0
}

// NoteOff transitions to release from whatever level the envelope holds.
// A no-op when already idle or releasing.
func (e *Envelope) NoteOff() {
	if e.stage == StageIdle || e.stage == StageRelease {
		return
	}
	e.releaseFrom = e.level
	e.stage = StageRelease
	e.stageTime = 0
}

// Next advances the envelope by dt seconds and returns the new amplitude.
func (e *Envelope) Next(dt float64) float64 {
	switch e.stage {
	case StageIdle:
		e.level = 0

	case StageAttack:
		if e.params.Attack <= 0 {
			e.level = 1
			e.enter(StageDecay)
			break
		}
		e.stageTime += dt
		if e.stageTime >= e.params.Attack {
			e.level = 1
			e.enter(StageDecay)
			break
		}
		e.level = e.stageTime / e.params.Attack

	case StageDecay:
		if e.params.Decay <= 0 {
			e.level = e.params.Sustain
			e.enter(StageSustain)
			break
		}
		e.stageTime += dt
		if e.stageTime >= e.params.Decay {
			e.level = e.params.Sustain
			e.enter(StageSustain)
			break
		}
		e.level = 1 + (e.params.Sustain-1)*(e.stageTime/e.params.Decay)

	case StageSustain:
		e.level = e.params.Sustain

	case StageRelease:
		if e.params.Release <= 0 {
			e.level = 0
			e.enter(StageIdle)
			break
		}
		e.stageTime += dt
		if e.stageTime >= e.params.Release {
			e.level = 0
			e.enter(StageIdle)
			break
		}
		e.level = e.releaseFrom * (1 - e.stageTime/e.params.Release)
		if e.level < releaseEpsilon {
			e.level = 0
			e.enter(StageIdle)
		}
	}
	return e.level
}

func (e *Envelope) enter(stage Stage) {
	e.stage = stage
	e.stageTime = 0
}

// Stage returns the current envelope stage.
func (e *Envelope) Stage() Stage {
	return e.stage
}
