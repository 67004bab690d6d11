// SPDX-License-Identifier: MIT
/*
Package music provides the pure musical primitives of the pipeline: scale
definitions, MIDI note enumeration, normalized-value-to-pitch quantization,
and the NoteEvent type exchanged between the analyzer, scheduler and
synthesizer. Everything here is stateless and allocation-predictable.
*/
package music

import "math"

// MIDI note number bounds and the concert pitch reference.
const (
	MinMIDINote = 0
	MaxMIDINote = 127
	ConcertA    = 69 // MIDI 69 = A4 = 440 Hz
)

// Scale is a fixed ascending interval set in semitones from a root note.
type Scale struct {
	Name      string
	Intervals []int
}

// The built-in scale catalog. Species voice profiles reference these by name.
var (
	Major           = Scale{"major", []int{0, 2, 4, 5, 7, 9, 11}}
	Minor           = Scale{"minor", []int{0, 2, 3, 5, 7, 8, 10}}
	MajorPentatonic = Scale{"majorPentatonic", []int{0, 2, 4, 7, 9}}
	MinorPentatonic = Scale{"minorPentatonic", []int{0, 3, 5, 7, 10}}
	Dorian          = Scale{"dorian", []int{0, 2, 3, 5, 7, 9, 10}}
	Lydian          = Scale{"lydian", []int{0, 2, 4, 6, 7, 9, 11}}
	Blues           = Scale{"blues", []int{0, 3, 5, 6, 7, 10}}
	WholeTone       = Scale{"wholeTone", []int{0, 2, 4, 6, 8, 10}}
)

var scaleCatalog = map[string]Scale{
	Major.Name:           Major,
	Minor.Name:           Minor,
	MajorPentatonic.Name: MajorPentatonic,
	MinorPentatonic.Name: MinorPentatonic,
	Dorian.Name:          Dorian,
	Lydian.Name:          Lydian,
	Blues.Name:           Blues,
	WholeTone.Name:       WholeTone,
}

// ScaleByName looks up a scale by its catalog name. Unknown names fall back
// to the major scale so a bad profile entry degrades rather than fails.
func ScaleByName(name string) Scale {
	if s, ok := scaleCatalog[name]; ok {
		return s
	}
	return Major
}

// MIDINotes enumerates all tones of the scale rooted at root across the
// inclusive octave range [lowOctave, highOctave], sorted ascending and
// clamped to the valid MIDI range. Octave 0 starts at the root itself.
func (s Scale) MIDINotes(root, lowOctave, highOctave int) []int {
	if highOctave < lowOctave {
		lowOctave, highOctave = highOctave, lowOctave
	}
	notes := make([]int, 0, (highOctave-lowOctave+1)*len(s.Intervals))
	for oct := lowOctave; oct <= highOctave; oct++ {
		for _, interval := range s.Intervals {
			note := root + oct*12 + interval
			if note < MinMIDINote || note > MaxMIDINote {
				continue
			}
			notes = append(notes, note)
		}
	}
	return notes
}

// Quantize maps a normalized value in [0,1] onto the scale's note set across
// the given octave range. The input is clamped, so the result is always a
// member of the set and monotonic in the input. Returns the root when the
// range yields no notes.
func (s Scale) Quantize(normalized float64, root, lowOctave, highOctave int) int {
	notes := s.MIDINotes(root, lowOctave, highOctave)
	if len(notes) == 0 {
		return ClampPitch(root)
	}
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}
	idx := int(normalized * float64(len(notes)-1))
	return notes[idx]
}

// MIDIToFrequency converts a MIDI note number to its equal-temperament
// frequency in Hz: f = 440 * 2^((n-69)/12).
func MIDIToFrequency(note int) float64 {
	return 440.0 * math.Pow(2, float64(note-ConcertA)/12.0)
}

// ClampPitch clamps a pitch to the valid MIDI range [0,127].
func ClampPitch(pitch int) int {
	if pitch < MinMIDINote {
		return MinMIDINote
	}
	if pitch > MaxMIDINote {
		return MaxMIDINote
	}
	return pitch
}

// ClampVelocity clamps a velocity to the valid MIDI range [0,127].
func ClampVelocity(velocity int) int {
	if velocity < 0 {
		return 0
	}
	if velocity > 127 {
		return 127
	}
	return velocity
}

// Lerp performs linear interpolation between a and b at position t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
