// SPDX-License-Identifier: MIT
/*
Package audio drives the real-time render path: a PortAudio output stream
whose callback pulls samples from the synthesizer, plus a WAV recording
tap on the mixed output.

Thread Safety:
- The render callback runs on a dedicated OS thread and uses only
  pre-allocated buffers.
- Recording state is an atomic flag plus a handle swap; stopping never
  truncates a write in progress because the flag flips before the
  encoder is torn down.
*/
package audio

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/p-poss/bark/internal/config"
	"github.com/p-poss/bark/internal/log"
)

// Renderer produces the mixed mono output for one callback buffer.
// Implementations must be real-time safe.
type Renderer interface {
	Render(out []float32)
}

// Sink is the playback/recording control surface the pipeline talks to.
// It exists so an audio-less environment degrades to a NullSink instead
// of taking the analysis path down with it.
type Sink interface {
	Start() error
	Stop() error
	StartRecording(filename string) error
	StopRecording() error
	Recording() bool
	Close() error
}

// Engine renders a Renderer to a PortAudio output stream.
type Engine struct {
	config *config.Config

	renderer      Renderer
	outputDevice  *portaudio.DeviceInfo
	outputLatency time.Duration
	stream        *portaudio.Stream

	// Pre-allocated mono scratch for channel interleaving.
	mono []float32

	// Recording tap state; see recording.go.
	isRecording atomic.Int32
	rec         recorder
}

// NewEngine resolves the output device and pre-allocates buffers. The
// stream is not opened until Start.
func NewEngine(cfg *config.Config, renderer Renderer) (*Engine, error) {
	device, err := OutputDevice(cfg.Audio.OutputDevice)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:       cfg,
		renderer:     renderer,
		outputDevice: device,
		mono:         make([]float32, cfg.Audio.FramesPerBuffer),
	}
	if cfg.Audio.LowLatency {
		e.outputLatency = device.DefaultLowOutputLatency
	} else {
		e.outputLatency = device.DefaultHighOutputLatency
	}
	return e, nil
}

// Start opens and starts the output stream. The first callback marks the
// start of the hot path.
func (e *Engine) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: e.config.Audio.Channels,
			Device:   e.outputDevice,
			Latency:  e.outputLatency,
		},
		FramesPerBuffer: e.config.Audio.FramesPerBuffer,
		SampleRate:      e.config.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processOutputStream)
	if err != nil {
		return err
	}
	e.stream = stream

	if err := e.stream.Start(); err != nil {
		e.stream.Close()
		e.stream = nil
		return err
	}
	return nil
}

// Stop stops and closes the output stream.
func (e *Engine) Stop() error {
	if e.stream == nil {
		return nil
	}
	if err := e.stream.Stop(); err != nil {
		return err
	}
	if err := e.stream.Close(); err != nil {
		return err
	}
	e.stream = nil
	return nil
}

// processOutputStream is the render callback.
// Performance critical: pre-allocated buffers only, no locks, and the
// recording tap is a passive observer of the buffer just produced.
func (e *Engine) processOutputStream(out []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	channels := e.config.Audio.Channels
	frames := len(out) / channels

	if channels == 1 {
		e.renderer.Render(out[:frames])
	} else {
		mono := e.mono[:frames]
		e.renderer.Render(mono)
		for i, s := range mono {
			out[2*i] = s
			out[2*i+1] = s
		}
	}

	if e.isRecording.Load() == 1 {
		if err := e.rec.write(out); err != nil {
			log.Errorf("audio: recording write failed: %v", err)
		}
	}
}

// Close stops recording and the stream.
func (e *Engine) Close() error {
	if e.isRecording.Load() == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}
	return e.Stop()
}

var _ Sink = (*Engine)(nil)

// NullSink is the degraded playback surface used when the audio engine
// cannot be created: playback silently does nothing and recording
// reports failure, while the analysis pipeline keeps running.
type NullSink struct{}

func (NullSink) Start() error { return nil }
func (NullSink) Stop() error  { return nil }
func (NullSink) StartRecording(string) error {
	return errNoEngine
}
func (NullSink) StopRecording() error { return nil }
func (NullSink) Recording() bool      { return false }
func (NullSink) Close() error         { return nil }

var _ Sink = NullSink{}
