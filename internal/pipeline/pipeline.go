// SPDX-License-Identifier: MIT
/*
Package pipeline runs the throttled analysis path: frames in, scheduled
notes out, one tick snapshot published per pass. It owns the analyzer and
scheduler outright; everything it shares with the render path crosses via
the synthesizer's command queue and atomic snapshots, so the audio
callback never waits on analysis.
*/
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/p-poss/bark/internal/config"
	"github.com/p-poss/bark/internal/log"
	"github.com/p-poss/bark/internal/music"
	"github.com/p-poss/bark/internal/sequencer"
	"github.com/p-poss/bark/internal/synth"
	"github.com/p-poss/bark/internal/texture"
	"github.com/p-poss/bark/internal/transport"
	"github.com/p-poss/bark/internal/voice"
)

// Reading is one classification result: which species the bark belongs to
// and the estimated tree age in years. Classification and age estimation
// happen upstream; the pipeline only consumes their output.
type Reading struct {
	Species    string  `json:"species"`
	Confidence float64 `json:"confidence"`
	Age        float64 `json:"age"`
}

// Snapshot is the per-tick state published to UI consumers.
type Snapshot struct {
	Timestamp      time.Time         `json:"timestamp"`
	Species        string            `json:"species"`
	Age            float64           `json:"age"`
	Metrics        texture.Metrics   `json:"metrics"`
	ActiveNotes    []music.NoteEvent `json:"activeNotes"`
	NotesPerSecond int               `json:"notesPerSecond"`
	BeatCount      uint64            `json:"beatCount"`
	Tempo          float64           `json:"tempo"`
	VoiceCount     int               `json:"voiceCount"`
	ReverbMix      float64           `json:"reverbMix"`
	FilterCutoff   float64           `json:"filterCutoff"`
}

// Pipeline ties the analysis path together. Construct with New, feed
// classification results through SetReading, and drive it with Run.
type Pipeline struct {
	source    FrameSource
	analyzer  *texture.Analyzer
	scheduler *sequencer.Scheduler
	synth     *synth.Synth
	registry  *voice.Registry
	transport transport.Transport
	rate      float64

	// pending holds the latest unapplied reading; the tick loop swaps it
	// out so species changes land between passes, never mid-pass.
	pending atomic.Pointer[Reading]
	mod     atomic.Pointer[voice.Modulated]

	// current is owned by the tick goroutine after Run starts.
	current Reading
}

// New builds a pipeline from configuration. The initial species and age
// come from cfg and are applied immediately, so the modulation snapshot
// is valid before the first tick.
func New(cfg *config.Config, source FrameSource, sy *synth.Synth, registry *voice.Registry, tr transport.Transport) *Pipeline {
	if tr == nil {
		tr = transport.Nop{}
	}
	params := texture.Params{
		BlockSize:        cfg.Analysis.BlockSize,
		SliceHeight:      cfg.Analysis.SliceHeight,
		MaxSlices:        cfg.Analysis.MaxSlices,
		RegionThreshold:  cfg.Analysis.RegionThreshold,
		MinRegionWidth:   cfg.Analysis.MinRegionWidth,
		MinNoteVelocity:  cfg.Analysis.MinNoteVelocity,
		MaxNotesPerFrame: cfg.Analysis.MaxNotesPerFrame,
		DepthNear:        cfg.Analysis.DepthNear,
		DepthFar:         cfg.Analysis.DepthFar,
	}

	p := &Pipeline{
		source:    source,
		synth:     sy,
		registry:  registry,
		transport: tr,
		rate:      cfg.Analysis.RateHz,
		scheduler: sequencer.New(cfg.Scheduler.MaxActiveNotes, cfg.Scheduler.DecayGrace),
	}
	if p.rate <= 0 {
		p.rate = config.DefaultAnalysisRate
	}

	profile := registry.Lookup(cfg.Species)
	p.analyzer = texture.NewAnalyzer(params, pitchFor(profile))
	p.applyReading(Reading{Species: cfg.Species, Confidence: 1, Age: cfg.Age})
	return p
}

// SetReading hands a new classification result to the pipeline. Safe to
// call from any goroutine; the change takes effect at the next tick.
func (p *Pipeline) SetReading(r Reading) {
	p.pending.Store(&r)
}

// Modulated returns the current age-modulated voice snapshot.
func (p *Pipeline) Modulated() voice.Modulated {
	return *p.mod.Load()
}

// Run ticks the analysis loop until ctx is cancelled. The cadence is
// fixed by the configured analysis rate regardless of how fast the
// source delivers frames.
func (p *Pipeline) Run(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / p.rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Debugf("pipeline: running at %.1f Hz (interval %v)", p.rate, interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			p.tick(now)
		}
	}
}

// tick runs one full analysis pass.
func (p *Pipeline) tick(now time.Time) {
	if r := p.pending.Swap(nil); r != nil {
		p.applyReading(*r)
	}

	buf, ok := p.source.Next()
	if !ok {
		buf = texture.Buffer{}
	}

	frame := p.analyzer.Analyze(buf, now)
	mv := *p.mod.Load()

	events := p.scheduler.Tick(now, frame, mv)
	if len(events) > 0 {
		p.synth.PlayNotes(events)
	}

	p.publish(now, frame, mv)
}

// applyReading swaps the active species voice: pitch mapping on the
// analyzer, profile and modulation on the synthesizer, and the shared
// modulation snapshot.
func (p *Pipeline) applyReading(r Reading) {
	profile := p.registry.Lookup(r.Species)
	mv := voice.Modulate(profile, profile.NormalizedAge(r.Age))

	p.analyzer.SetPitch(pitchFor(profile))
	p.synth.SetProfile(profile)
	p.synth.SetModulated(mv)
	p.mod.Store(&mv)
	p.current = r

	log.Infof("pipeline: voice %s (age %.0f): tempo %.0f BPM, %d layers, reverb %.2f",
		profile.Species, r.Age, mv.Tempo, mv.VoiceCount, mv.EffectiveReverbMix())
}

// publish sends the tick snapshot to the transport. Dropped sends are a
// transport concern, not ours.
func (p *Pipeline) publish(now time.Time, frame texture.Frame, mv voice.Modulated) {
	snap := Snapshot{
		Timestamp:      now,
		Species:        p.current.Species,
		Age:            p.current.Age,
		Metrics:        frame.Metrics,
		ActiveNotes:    p.scheduler.Active(),
		NotesPerSecond: p.scheduler.NotesPerSecond(now),
		BeatCount:      p.scheduler.BeatCount(),
		Tempo:          mv.Tempo,
		VoiceCount:     mv.VoiceCount,
		ReverbMix:      mv.EffectiveReverbMix(),
		FilterCutoff:   mv.FilterCutoff,
	}
	if err := p.transport.Send(snap); err != nil {
		log.Debugf("pipeline: snapshot send failed: %v", err)
	}
}

func pitchFor(p voice.Profile) texture.Pitch {
	return texture.Pitch{
		Scale:      music.ScaleByName(p.Scale),
		Root:       p.Root,
		LowOctave:  p.BaseOctave,
		HighOctave: p.BaseOctave + p.OctaveSpan,
	}
}
