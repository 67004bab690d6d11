package music

import (
	"sync/atomic"
	"time"
)

// Point is a normalized 2-D screen coordinate, kept for visualization only.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NoteEvent is one playable note extracted from texture or synthesized by
// the scheduler's layering step. Pitch and velocity are clamped to [0,127]
// and duration to >= 0 at construction; apart from the derived activity
// state the event never mutates.
type NoteEvent struct {
	ID        uint64    `json:"id"`
	Pitch     int       `json:"pitch"`
	Velocity  int       `json:"velocity"`
	Duration  float64   `json:"duration"` // seconds
	Position  Point     `json:"position"`
	Timestamp time.Time `json:"-"`
}

var eventID atomic.Uint64

// NewNoteEvent constructs a clamped NoteEvent with a fresh identity.
// Out-of-range inputs are clamped, never an error.
func NewNoteEvent(pitch, velocity int, duration float64, pos Point, ts time.Time) NoteEvent {
	if duration < 0 {
		duration = 0
	}
	return NoteEvent{
		ID:        eventID.Add(1),
		Pitch:     ClampPitch(pitch),
		Velocity:  ClampVelocity(velocity),
		Duration:  duration,
		Position:  pos,
		Timestamp: ts,
	}
}

// Transposed returns a copy of the event shifted by semitones with a new
// velocity, re-clamped and re-identified. Used by the scheduler for octave
// offsets and harmonic layering.
func (e NoteEvent) Transposed(semitones, velocity int) NoteEvent {
	out := e
	out.ID = eventID.Add(1)
	out.Pitch = ClampPitch(e.Pitch + semitones)
	out.Velocity = ClampVelocity(velocity)
	return out
}

// Active reports whether the note is still sounding at now, i.e. less than
// its duration has elapsed since it was triggered.
func (e NoteEvent) Active(now time.Time) bool {
	return now.Sub(e.Timestamp).Seconds() < e.Duration
}

// Elapsed returns the seconds since the event was triggered.
func (e NoteEvent) Elapsed(now time.Time) float64 {
	return now.Sub(e.Timestamp).Seconds()
}
