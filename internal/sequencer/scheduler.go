// SPDX-License-Identifier: MIT
/*
Package sequencer turns analyzed frames into the notes to sound this tick.
It owns beat gating against the modulated tempo, velocity-ranked candidate
selection, harmonic layering, and the active-note lifecycle bookkeeping
that the UI surface reads back.

A Scheduler is confined to the analysis goroutine. It never blocks and
never fails on malformed input; an empty frame simply emits nothing.
*/
package sequencer

import (
	"sort"
	"time"

	"github.com/p-poss/bark/internal/music"
	"github.com/p-poss/bark/internal/texture"
	"github.com/p-poss/bark/internal/voice"
)

// layerVelocityFloor discards harmonic layers attenuated to or below this
// velocity.
const layerVelocityFloor = 20

// layerVelocityStep is the per-layer velocity attenuation.
const layerVelocityStep = 10

// Scheduler holds the beat and active-note state between ticks.
type Scheduler struct {
	maxActive  int
	decayGrace float64 // seconds a note lingers past its duration

	lastBeat  time.Time
	beatCount uint64
	active    []music.NoteEvent
	window    []time.Time // emission timestamps inside the last second
}

// New creates a Scheduler with the given active-note cap and decay grace.
func New(maxActive int, decayGrace float64) *Scheduler {
	if maxActive < 1 {
		maxActive = 1
	}
	if decayGrace < 0 {
		decayGrace = 0
	}
	return &Scheduler{maxActive: maxActive, decayGrace: decayGrace}
}

// Tick processes one frame at time now under the current modulated voice
// and returns the events to render, or nil when the beat gate is closed.
// At most one scheduling decision happens per beat interval; off-beat
// ticks only refresh active-note expiry.
func (s *Scheduler) Tick(now time.Time, frame texture.Frame, mv voice.Modulated) []music.NoteEvent {
	interval := mv.BeatInterval()
	if interval <= 0 {
		s.prune(now)
		return nil
	}
	if !s.lastBeat.IsZero() && now.Sub(s.lastBeat).Seconds() < interval {
		s.prune(now)
		return nil
	}
	s.lastBeat = now
	s.beatCount++

	emitted := s.selectNotes(now, frame, mv)
	emitted = s.layer(emitted, mv)

	s.active = append(s.active, emitted...)
	s.prune(now)
	if len(s.active) > s.maxActive {
		// Over the cap, the most recently added survive.
		s.active = s.active[len(s.active)-s.maxActive:]
	}

	for range emitted {
		s.window = append(s.window, now)
	}
	s.pruneWindow(now)

	return emitted
}

// selectNotes picks the density-scaled top candidates by descending
// velocity (stable on the original scan order) and applies the modulated
// octave offset.
func (s *Scheduler) selectNotes(now time.Time, frame texture.Frame, mv voice.Modulated) []music.NoteEvent {
	target := int(float64(len(frame.Notes)) * mv.NoteDensity)
	if target <= 0 {
		return nil
	}
	if target > len(frame.Notes) {
		target = len(frame.Notes)
	}

	ranked := make([]music.NoteEvent, len(frame.Notes))
	copy(ranked, frame.Notes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Velocity > ranked[j].Velocity
	})

	selected := make([]music.NoteEvent, 0, target)
	for _, candidate := range ranked[:target] {
		ev := candidate.Transposed(mv.OctaveOffset*12, candidate.Velocity)
		ev.Timestamp = now
		selected = append(selected, ev)
	}
	return selected
}

// layer emits voiceCount-1 transposed copies per selected note. Layer k
// (1-indexed) shifts by (k+1)/2 octaves, alternating up and down, and is
// attenuated by 10*k velocity; layers at or below the velocity floor are
// discarded.
func (s *Scheduler) layer(selected []music.NoteEvent, mv voice.Modulated) []music.NoteEvent {
	if mv.VoiceCount <= 1 || len(selected) == 0 {
		return selected
	}
	out := selected
	for _, base := range selected {
		for k := 1; k < mv.VoiceCount; k++ {
			velocity := base.Velocity - layerVelocityStep*k
			if velocity <= layerVelocityFloor {
				continue
			}
			octaves := (k + 1) / 2
			if k%2 == 0 {
				octaves = -octaves
			}
			out = append(out, base.Transposed(octaves*12, velocity))
		}
	}
	return out
}

// prune drops events that are past their duration plus the decay grace.
func (s *Scheduler) prune(now time.Time) {
	kept := s.active[:0]
	for _, ev := range s.active {
		if ev.Elapsed(now) < ev.Duration+s.decayGrace {
			kept = append(kept, ev)
		}
	}
	s.active = kept
}

// pruneWindow trims the emission window to the trailing second.
func (s *Scheduler) pruneWindow(now time.Time) {
	cutoff := now.Add(-time.Second)
	i := 0
	for i < len(s.window) && !s.window[i].After(cutoff) {
		i++
	}
	s.window = s.window[i:]
}

// Active returns a copy of the current active-note set; events past their
// duration but inside the decay grace are included with Active(now) false.
func (s *Scheduler) Active() []music.NoteEvent {
	out := make([]music.NoteEvent, len(s.active))
	copy(out, s.active)
	return out
}

// NotesPerSecond reports how many notes were emitted in the trailing
// second as of now.
func (s *Scheduler) NotesPerSecond(now time.Time) int {
	s.pruneWindow(now)
	return len(s.window)
}

// BeatCount returns the number of open-gate scheduling decisions so far.
func (s *Scheduler) BeatCount() uint64 {
	return s.beatCount
}
