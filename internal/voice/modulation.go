// SPDX-License-Identifier: MIT
package voice

import "math"

// Age modulation endpoints: young trees play fast, bright, and dry; old
// trees slow, dark, and wet.
const (
	tempoYoung  = 120.0 // BPM at age 0
	tempoOld    = 40.0  // BPM at full age
	octaveYoung = 1.0
	octaveOld   = -1.0
	reverbYoung = 0.1
	reverbOld   = 0.7
	cutoffYoung = 8000.0 // Hz
	cutoffOld   = 1500.0
	voicesYoung = 1.0
	voicesOld   = 5.0
)

// Modulated is the age-bent rendition of a species profile. It is built
// once per species/age change and then read continuously by the scheduler
// and synthesizer as an immutable snapshot.
type Modulated struct {
	Tempo        float64 // BPM
	OctaveOffset int     // signed octaves applied to scheduled pitches
	ReverbMix    float64 // age-modulated wet fraction
	FilterCutoff float64 // Hz
	VoiceCount   int     // polyphonic layer count, >= 1
	NoteDensity  float64 // multiplier on per-frame candidate count

	// BaseReverb carries the profile's unmodulated reverb so the
	// synthesizer can average the two (see EffectiveReverbMix).
	BaseReverb float64
}

// Modulate derives a Modulated voice from a profile and a normalized age
// in [0,1]. All laws are linear except note density, which peaks at the
// age midpoint and falls to half at either extreme.
func Modulate(p Profile, normalizedAge float64) Modulated {
	t := clamp01(normalizedAge)
	m := Modulated{
		Tempo:        lerp(tempoYoung, tempoOld, t),
		OctaveOffset: int(math.Round(lerp(octaveYoung, octaveOld, t))),
		ReverbMix:    lerp(reverbYoung, reverbOld, t),
		FilterCutoff: lerp(cutoffYoung, cutoffOld, t),
		VoiceCount:   int(math.Round(lerp(voicesYoung, voicesOld, t))),
		NoteDensity:  densityBell(t),
		BaseReverb:   p.ReverbMix,
	}
	if m.VoiceCount < 1 {
		m.VoiceCount = 1
	}
	return m
}

// EffectiveReverbMix averages the profile's base reverb with the
// age-modulated value; this is what drives the wet/dry stage.
func (m Modulated) EffectiveReverbMix() float64 {
	return (m.BaseReverb + m.ReverbMix) / 2
}

// BeatInterval returns the seconds per beat, or 0 for a non-positive
// tempo (which closes the scheduling gate entirely).
func (m Modulated) BeatInterval() float64 {
	if m.Tempo <= 0 {
		return 0
	}
	return 60.0 / m.Tempo
}

// densityBell is a symmetric triangle peaking at t=0.5: sparse output for
// very young or very old trees, densest mid-life.
func densityBell(t float64) float64 {
	return 0.5 + 0.5*(1-2*math.Abs(t-0.5))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
