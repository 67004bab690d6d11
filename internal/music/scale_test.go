// SPDX-License-Identifier: MIT
package music

import (
	"math"
	"testing"
	"time"
)

func TestMIDIToFrequencyConcertA(t *testing.T) {
	if got := MIDIToFrequency(ConcertA); math.Abs(got-440.0) > 1e-9 {
		t.Errorf("MIDIToFrequency(69) = %v, want 440.0", got)
	}
}

func TestMIDIToFrequencyStrictlyIncreasing(t *testing.T) {
	prev := MIDIToFrequency(MinMIDINote)
	for note := MinMIDINote + 1; note <= MaxMIDINote; note++ {
		curr := MIDIToFrequency(note)
		if curr <= prev {
			t.Fatalf("MIDIToFrequency not strictly increasing at note %d: %v <= %v",
				note, curr, prev)
		}
		prev = curr
	}
}

func TestMIDIToFrequencyOctaveDoubling(t *testing.T) {
	low := MIDIToFrequency(57)
	high := MIDIToFrequency(69)
	if math.Abs(high/low-2.0) > 1e-9 {
		t.Errorf("octave ratio = %v, want 2.0", high/low)
	}
}

func TestQuantizeMonotonicAndMember(t *testing.T) {
	scale := MinorPentatonic
	root, lo, hi := 48, 0, 2

	members := make(map[int]bool)
	for _, n := range scale.MIDINotes(root, lo, hi) {
		members[n] = true
	}

	prev := MinMIDINote - 1
	for i := 0; i <= 1000; i++ {
		normalized := float64(i) / 1000.0
		note := scale.Quantize(normalized, root, lo, hi)
		if !members[note] {
			t.Fatalf("Quantize(%v) = %d, not a member of the scale note set", normalized, note)
		}
		if note < prev {
			t.Fatalf("Quantize not non-decreasing: %d after %d at %v", note, prev, normalized)
		}
		prev = note
	}
}

func TestQuantizeClampsInput(t *testing.T) {
	notes := Major.MIDINotes(60, 0, 1)
	if got := Major.Quantize(-3.0, 60, 0, 1); got != notes[0] {
		t.Errorf("Quantize(-3) = %d, want lowest note %d", got, notes[0])
	}
	if got := Major.Quantize(7.5, 60, 0, 1); got != notes[len(notes)-1] {
		t.Errorf("Quantize(7.5) = %d, want highest note %d", got, notes[len(notes)-1])
	}
}

func TestMIDINotesSortedAndClamped(t *testing.T) {
	// A range pushed past MIDI 127 must clamp by omission, not wrap.
	notes := Major.MIDINotes(120, 0, 2)
	for i, n := range notes {
		if n < MinMIDINote || n > MaxMIDINote {
			t.Errorf("note %d out of MIDI range: %d", i, n)
		}
		if i > 0 && notes[i] < notes[i-1] {
			t.Errorf("notes not ascending at %d: %v", i, notes)
		}
	}
}

func TestScaleByNameFallback(t *testing.T) {
	if got := ScaleByName("noSuchScale"); got.Name != Major.Name {
		t.Errorf("ScaleByName fallback = %q, want %q", got.Name, Major.Name)
	}
	if got := ScaleByName("blues"); got.Name != "blues" {
		t.Errorf("ScaleByName(blues) = %q", got.Name)
	}
}

func TestNewNoteEventClampsPitch(t *testing.T) {
	for _, pitch := range []int{-1000, -1, 0, 64, 127, 128, 100000} {
		ev := NewNoteEvent(pitch, 90, 0.2, Point{}, time.Now())
		if ev.Pitch < MinMIDINote || ev.Pitch > MaxMIDINote {
			t.Errorf("pitch %d clamped to %d, outside [0,127]", pitch, ev.Pitch)
		}
	}
}

func TestNewNoteEventClampsVelocityAndDuration(t *testing.T) {
	ev := NewNoteEvent(60, 300, -1.0, Point{}, time.Now())
	if ev.Velocity != 127 {
		t.Errorf("velocity = %d, want 127", ev.Velocity)
	}
	if ev.Duration != 0 {
		t.Errorf("duration = %v, want 0", ev.Duration)
	}
}

func TestNoteEventActivity(t *testing.T) {
	now := time.Now()
	ev := NewNoteEvent(60, 100, 0.5, Point{}, now)

	if !ev.Active(now.Add(100 * time.Millisecond)) {
		t.Error("event should be active before its duration elapses")
	}
	if ev.Active(now.Add(600 * time.Millisecond)) {
		t.Error("event should be inactive after its duration elapses")
	}
}

func TestTransposedKeepsIdentityFresh(t *testing.T) {
	ev := NewNoteEvent(60, 100, 0.5, Point{}, time.Now())
	up := ev.Transposed(12, 90)

	if up.ID == ev.ID {
		t.Error("Transposed should mint a new event identity")
	}
	if up.Pitch != 72 || up.Velocity != 90 {
		t.Errorf("Transposed = pitch %d vel %d, want 72/90", up.Pitch, up.Velocity)
	}
	if up := ev.Transposed(1000, 90); up.Pitch != 127 {
		t.Errorf("Transposed pitch should clamp at 127, got %d", up.Pitch)
	}
}
