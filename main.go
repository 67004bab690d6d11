package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/p-poss/bark/cmd"
	"github.com/p-poss/bark/internal/audio"
	"github.com/p-poss/bark/internal/build"
	"github.com/p-poss/bark/internal/log"
	"github.com/p-poss/bark/internal/pipeline"
	"github.com/p-poss/bark/internal/synth"
	"github.com/p-poss/bark/internal/transport"
	"github.com/p-poss/bark/internal/voice"
)

// main is the entry point for the bark sonification engine.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Initialize PortAudio
//   - Parse configuration (defaults, YAML, environment, flags)
//   - Execute one-off commands if requested
//   - Load the species voice registry
//
// 2. Concurrent Phase (Hot Path):
//   - Start the audio render stream
//   - Start recording if enabled
//   - Run the texture analysis pipeline
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop the analysis loop
//   - Stop recording if active
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		log.Fatalf("%v", err)
	}

	if err := audio.Initialize(); err != nil {
		log.Fatalf("%v", err)
	}
	defer audio.Terminate()

	cfg, err := cmd.ParseArgs()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if cfg.Debug {
		log.SetLevel(log.LevelDebug)
	} else if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}

	switch cfg.Command {
	case "list":
		if err := audio.ListDevices(); err != nil {
			log.Fatalf("%v", err)
		}
		return
	case "run":
		// Fall through to the concurrent phase.
	default:
		return
	}

	registry := voice.NewRegistry()
	if cfg.VoicesFile != "" {
		registry, err = voice.LoadRegistry(cfg.VoicesFile)
		if err != nil {
			log.Fatalf("voices: %v", err)
		}
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	sy := synth.New(cfg.Audio.SampleRate, cfg.Audio.MaxPolyphony, cfg.Audio.MasterGain)

	// A failed engine degrades to silence; the analysis path keeps
	// running so snapshots still flow to any connected UI.
	var sink audio.Sink
	engine, err := audio.NewEngine(cfg, sy)
	if err != nil {
		log.Errorf("audio engine unavailable, running silent: %v", err)
		sink = audio.NullSink{}
	} else {
		sink = engine
	}

	// CRITICAL: the first callback after Start marks the start of the
	// real-time hot path.
	if err := sink.Start(); err != nil {
		log.Errorf("audio start failed, running silent: %v", err)
		sink = audio.NullSink{}
	}

	if cfg.Recording.Enabled {
		if err := sink.StartRecording(cfg.Recording.OutputFile); err != nil {
			log.Errorf("recording unavailable: %v", err)
		}
	}

	var tr transport.Transport = transport.Nop{}
	if cfg.Transport.WSEnabled {
		tr = transport.NewWebSocketTransport(cfg.Transport.WSAddr)
	}

	var source pipeline.FrameSource = pipeline.NewSyntheticSource(320, 240, 1)
	p := pipeline.New(cfg, source, sy, registry, tr)

	ctx, cancel := context.WithCancel(context.Background())
	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		if err := p.Run(ctx); err != nil {
			log.Errorf("pipeline: %v", err)
		}
	}()

	log.Infof("%s listening. '%s --help' for usage information.",
		build.GetBuildFlags().Name, build.GetBuildFlags().Name)

	// Block until termination signal is received
	<-done

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	cancel()
	<-pipelineDone

	if sink.Recording() {
		if err := sink.StopRecording(); err != nil {
			log.Errorf("Error stopping recording: %v", err)
		} else {
			fmt.Printf("\nRecording saved to: %s\n", cfg.Recording.OutputFile)
		}
	}

	if err := tr.Close(); err != nil {
		log.Errorf("Error closing transport: %v", err)
	}

	if err := sink.Close(); err != nil {
		log.Errorf("Error closing audio engine: %v", err)
	}
}
