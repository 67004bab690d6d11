// SPDX-License-Identifier: MIT
/*
Package voice holds the per-species instrument configuration and the age
modulation law that bends it. Profiles are immutable lookup data; the
Modulated snapshot derived from them is the only value the scheduler and
synthesizer ever read.
*/
package voice

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// minMaxAge is the single floor applied to species maximum age during
// registry loading. The age normalization everywhere else assumes
// MaxAge >= minMaxAge and applies no further ad-hoc floors.
const minMaxAge = 1.0

// Profile is the static instrument voice for one species. Immutable after
// registry load.
type Profile struct {
	Species    string  `yaml:"species"`
	Label      string  `yaml:"label"`
	Scale      string  `yaml:"scale"`       // music catalog name
	Root       int     `yaml:"root"`        // MIDI root note
	BaseOctave int     `yaml:"base_octave"` // low octave of the quantize range
	OctaveSpan int     `yaml:"octave_span"` // inclusive octaves above base
	Waveform   string  `yaml:"waveform"`    // sine|triangle|square|sawtooth
	Attack     float64 `yaml:"attack"`      // seconds
	Decay      float64 `yaml:"decay"`       // seconds
	Sustain    float64 `yaml:"sustain"`     // level 0..1
	Release    float64 `yaml:"release"`     // seconds
	Cutoff     float64 `yaml:"cutoff"`      // filter cutoff Hz
	Resonance  float64 `yaml:"resonance"`   // filter resonance 0..1
	ReverbMix  float64 `yaml:"reverb_mix"`  // wet fraction 0..1
	MaxAge     float64 `yaml:"max_age"`     // species maximum age (years)
}

// DefaultSpecies is the registry key of the fallback profile.
const DefaultSpecies = "default"

// builtinProfiles is the static voice table. A YAML asset can override or
// extend it at startup; the default entry always exists.
var builtinProfiles = []Profile{
	{
		Species: DefaultSpecies, Label: "Unknown Tree",
		Scale: "majorPentatonic", Root: 48, BaseOctave: 0, OctaveSpan: 2,
		Waveform: "sine",
		Attack:   0.02, Decay: 0.15, Sustain: 0.6, Release: 0.4,
		Cutoff: 5000, Resonance: 0.1, ReverbMix: 0.3, MaxAge: 300,
	},
	{
		Species: "oak", Label: "Oak",
		Scale: "minorPentatonic", Root: 43, BaseOctave: 0, OctaveSpan: 2,
		Waveform: "triangle",
		Attack:   0.05, Decay: 0.25, Sustain: 0.5, Release: 0.8,
		Cutoff: 3200, Resonance: 0.2, ReverbMix: 0.45, MaxAge: 1000,
	},
	{
		Species: "pine", Label: "Pine",
		Scale: "lydian", Root: 55, BaseOctave: 0, OctaveSpan: 2,
		Waveform: "sine",
		Attack:   0.01, Decay: 0.1, Sustain: 0.7, Release: 0.3,
		Cutoff: 6500, Resonance: 0.05, ReverbMix: 0.25, MaxAge: 400,
	},
	{
		Species: "birch", Label: "Birch",
		Scale: "major", Root: 60, BaseOctave: 0, OctaveSpan: 1,
		Waveform: "square",
		Attack:   0.005, Decay: 0.08, Sustain: 0.55, Release: 0.2,
		Cutoff: 7800, Resonance: 0.1, ReverbMix: 0.2, MaxAge: 120,
	},
	{
		Species: "willow", Label: "Willow",
		Scale: "dorian", Root: 50, BaseOctave: 0, OctaveSpan: 2,
		Waveform: "triangle",
		Attack:   0.08, Decay: 0.3, Sustain: 0.45, Release: 1.0,
		Cutoff: 2400, Resonance: 0.3, ReverbMix: 0.55, MaxAge: 75,
	},
	{
		Species: "maple", Label: "Maple",
		Scale: "blues", Root: 45, BaseOctave: 0, OctaveSpan: 2,
		Waveform: "sawtooth",
		Attack:   0.03, Decay: 0.2, Sustain: 0.5, Release: 0.5,
		Cutoff: 4100, Resonance: 0.15, ReverbMix: 0.35, MaxAge: 300,
	},
}

// Registry maps species keys to voice profiles with a guaranteed default
// fallback. Immutable after construction.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry builds a registry from the built-in voice table.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile, len(builtinProfiles))}
	for _, p := range builtinProfiles {
		r.profiles[p.Species] = sanitize(p)
	}
	return r
}

// LoadRegistry builds a registry from the built-in table plus a YAML asset
// that can override existing species or add new ones. The file holds a
// top-level `voices:` list of Profile entries.
func LoadRegistry(path string) (*Registry, error) {
	r := NewRegistry()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read voices file: %w", err)
	}
	var doc struct {
		Voices []Profile `yaml:"voices"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse voices file: %w", err)
	}
	for _, p := range doc.Voices {
		if p.Species == "" {
			return nil, fmt.Errorf("voices file entry missing species key")
		}
		r.profiles[p.Species] = sanitize(p)
	}
	return r, nil
}

// sanitize clamps profile fields to their documented ranges. Parameter
// violations are clamped, never an error.
func sanitize(p Profile) Profile {
	if p.Attack < 0 {
		p.Attack = 0
	}
	if p.Decay < 0 {
		p.Decay = 0
	}
	if p.Release < 0 {
		p.Release = 0
	}
	p.Sustain = clamp01(p.Sustain)
	p.ReverbMix = clamp01(p.ReverbMix)
	p.Resonance = clamp01(p.Resonance)
	if p.MaxAge < minMaxAge {
		p.MaxAge = minMaxAge
	}
	return p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lookup returns the profile for a species key, falling back to the
// default profile for unrecognized species.
func (r *Registry) Lookup(species string) Profile {
	if p, ok := r.profiles[species]; ok {
		return p
	}
	return r.profiles[DefaultSpecies]
}

// Species returns all registered species keys.
func (r *Registry) Species() []string {
	keys := make([]string, 0, len(r.profiles))
	for k := range r.profiles {
		keys = append(keys, k)
	}
	return keys
}

// NormalizedAge maps an age estimate onto [0,1] against the profile's
// species maximum.
func (p Profile) NormalizedAge(age float64) float64 {
	return clamp01(age / p.MaxAge)
}
