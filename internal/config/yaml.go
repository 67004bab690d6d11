// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/p-poss/bark/pkg/bitint"
)

// Load builds a Config from a YAML file at path. If path is empty it
// searches default locations ("bark.yaml", "config.yaml"). If no file is
// found, built-in defaults are used. Environment variable overrides apply
// after file loading, and the final configuration is validated.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{"bark.yaml", "config.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for out-of-range values. Parameter
// violations that can be clamped are clamped by their consumers; this
// rejects only settings that have no sane recovery.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %v outside [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d outside (0, %d]",
			c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if !bitint.IsPowerOfTwo(c.Audio.FramesPerBuffer) {
		return fmt.Errorf("audio.frames_per_buffer %d is not a power of two",
			c.Audio.FramesPerBuffer)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	if c.Audio.MaxPolyphony < 1 {
		return fmt.Errorf("audio.max_polyphony must be >= 1, got %d", c.Audio.MaxPolyphony)
	}
	if c.Analysis.RateHz <= 0 {
		return fmt.Errorf("analysis.rate_hz must be positive, got %v", c.Analysis.RateHz)
	}
	if c.Scheduler.MaxActiveNotes < 1 {
		return fmt.Errorf("scheduler.max_active_notes must be >= 1, got %d",
			c.Scheduler.MaxActiveNotes)
	}
	if c.Transport.WSEnabled && c.Transport.WSAddr == "" {
		return fmt.Errorf("transport.ws_addr must be set when WebSocket is enabled")
	}
	return nil
}

// applyEnvOverrides applies BARK_* environment variables on top of the
// loaded configuration.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("BARK_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("BARK_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("BARK_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WSEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("BARK_WS_ADDR"); ok {
		cfg.Transport.WSAddr = val
	}
	if val, ok := os.LookupEnv("BARK_VOICES_FILE"); ok {
		cfg.VoicesFile = val
	}
}
