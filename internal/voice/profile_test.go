// SPDX-License-Identifier: MIT
package voice

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupFallsBackToDefault(t *testing.T) {
	r := NewRegistry()

	p := r.Lookup("sequoiadendron-unregistered")
	if p.Species != DefaultSpecies {
		t.Errorf("unrecognized species resolved to %q, want %q", p.Species, DefaultSpecies)
	}

	if oak := r.Lookup("oak"); oak.Species != "oak" {
		t.Errorf("Lookup(oak) = %q", oak.Species)
	}
}

func TestNormalizedAgeClamped(t *testing.T) {
	p := NewRegistry().Lookup("birch") // MaxAge 120

	tests := []struct {
		age  float64
		want float64
	}{
		{0, 0},
		{60, 0.5},
		{120, 1},
		{5000, 1},
		{-10, 0},
	}
	for _, tt := range tests {
		if got := p.NormalizedAge(tt.age); got != tt.want {
			t.Errorf("NormalizedAge(%v) = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestLoadRegistryOverridesAndExtends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voices.yaml")
	data := []byte(`
voices:
  - species: oak
    label: Ancient Oak
    scale: minor
    root: 40
    waveform: sine
    sustain: 0.5
    reverb_mix: 0.6
    max_age: 1500
  - species: yew
    label: Yew
    scale: dorian
    root: 47
    waveform: triangle
    sustain: 0.4
    reverb_mix: 0.7
    max_age: 2000
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	if oak := r.Lookup("oak"); oak.MaxAge != 1500 || oak.Label != "Ancient Oak" {
		t.Errorf("oak override not applied: %+v", oak)
	}
	if yew := r.Lookup("yew"); yew.Species != "yew" || yew.MaxAge != 2000 {
		t.Errorf("yew extension not applied: %+v", yew)
	}
	// Built-ins not named in the file survive.
	if pine := r.Lookup("pine"); pine.Species != "pine" {
		t.Errorf("pine lost after load: %+v", pine)
	}
}

func TestLoadRegistryErrors(t *testing.T) {
	if _, err := LoadRegistry("/nonexistent/voices.yaml"); err == nil {
		t.Error("missing file should error")
	}

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("voices:\n  - label: no species key\n"), 0o644)
	if _, err := LoadRegistry(bad); err == nil {
		t.Error("entry without species key should error")
	}
}

func TestSanitizeClampsAndFloors(t *testing.T) {
	p := sanitize(Profile{
		Species: "x",
		Attack:  -1, Decay: -1, Release: -1,
		Sustain: 3, ReverbMix: -0.5, Resonance: 2,
		MaxAge: 0,
	})

	if p.Attack != 0 || p.Decay != 0 || p.Release != 0 {
		t.Errorf("negative envelope times not clamped: %+v", p)
	}
	if p.Sustain != 1 || p.ReverbMix != 0 || p.Resonance != 1 {
		t.Errorf("levels not clamped: %+v", p)
	}
	if p.MaxAge != minMaxAge {
		t.Errorf("MaxAge = %v, want floor %v", p.MaxAge, minMaxAge)
	}
}
