// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir switches to dir for the duration of the test, restoring the
// previous working directory on cleanup (testing.T.Chdir needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	// Run from a temp dir so no stray bark.yaml is picked up.
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %v, want %v", cfg.Audio.SampleRate, DefaultSampleRate)
	}
	if cfg.Audio.MaxPolyphony != DefaultMaxPolyphony {
		t.Errorf("MaxPolyphony = %d, want %d", cfg.Audio.MaxPolyphony, DefaultMaxPolyphony)
	}
	if cfg.Analysis.RateHz != DefaultAnalysisRate {
		t.Errorf("Analysis.RateHz = %v, want %v", cfg.Analysis.RateHz, DefaultAnalysisRate)
	}
	if cfg.Scheduler.MaxActiveNotes != DefaultMaxActiveNotes {
		t.Errorf("MaxActiveNotes = %d, want %d", cfg.Scheduler.MaxActiveNotes, DefaultMaxActiveNotes)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bark.yaml")
	data := []byte(`
audio:
  sample_rate: 48000
  frames_per_buffer: 1024
  channels: 2
  master_gain: 0.5
  max_polyphony: 12
analysis:
  rate_hz: 10
species: oak
age: 250
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) failed: %v", path, err)
	}

	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("SampleRate = %v, want 48000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 2 {
		t.Errorf("Channels = %d, want 2", cfg.Audio.Channels)
	}
	if cfg.Analysis.RateHz != 10 {
		t.Errorf("Analysis.RateHz = %v, want 10", cfg.Analysis.RateHz)
	}
	if cfg.Species != "oak" || cfg.Age != 250 {
		t.Errorf("Species/Age = %q/%v, want oak/250", cfg.Species, cfg.Age)
	}
	// Unset fields keep their defaults.
	if cfg.Scheduler.DecayGrace != DefaultDecayGrace {
		t.Errorf("DecayGrace = %v, want default %v", cfg.Scheduler.DecayGrace, DefaultDecayGrace)
	}
	if cfg.Analysis.DepthNear != DefaultDepthNear || cfg.Analysis.DepthFar != DefaultDepthFar {
		t.Errorf("depth window = [%v, %v], want defaults [%v, %v]",
			cfg.Analysis.DepthNear, cfg.Analysis.DepthFar, DefaultDepthNear, DefaultDepthFar)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		desc   string
		mutate func(*Config)
	}{
		{"sample rate too low", func(c *Config) { c.Audio.SampleRate = 100 }},
		{"zero buffer", func(c *Config) { c.Audio.FramesPerBuffer = 0 }},
		{"non power-of-two buffer", func(c *Config) { c.Audio.FramesPerBuffer = 500 }},
		{"bad channels", func(c *Config) { c.Audio.Channels = 7 }},
		{"zero polyphony", func(c *Config) { c.Audio.MaxPolyphony = 0 }},
		{"zero analysis rate", func(c *Config) { c.Analysis.RateHz = 0 }},
		{"zero active cap", func(c *Config) { c.Scheduler.MaxActiveNotes = 0 }},
		{"ws without addr", func(c *Config) {
			c.Transport.WSEnabled = true
			c.Transport.WSAddr = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid configuration")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BARK_WS_ENABLED", "true")
	t.Setenv("BARK_WS_ADDR", ":9999")
	t.Setenv("BARK_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Transport.WSEnabled {
		t.Error("BARK_WS_ENABLED override not applied")
	}
	if cfg.Transport.WSAddr != ":9999" {
		t.Errorf("WSAddr = %q, want :9999", cfg.Transport.WSAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}
