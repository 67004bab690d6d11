package config

// Core configuration constants that define the boundaries and defaults
// for the bark synthesis engine.
const (
	// Audio output defaults
	DefaultChannels        = 1           // Mono output
	DefaultDeviceID        = MinDeviceID // System default output device
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultLowLatency      = false       // Standard latency mode
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultMasterGain      = 0.8         // Headroom below full scale
	DefaultMaxPolyphony    = 12          // Fixed oscillator pool size

	// Texture analysis defaults
	DefaultAnalysisRate     = 15   // Analysis ticks per second
	DefaultBlockSize        = 15   // Adaptive threshold window side (px)
	DefaultSliceHeight      = 10   // Rows per horizontal analysis band
	DefaultMaxSlices        = 20   // Bounded per-frame slice cost
	DefaultRegionThreshold  = 0.4  // Dark-region detection threshold
	DefaultMinRegionWidth   = 5    // Minimum dark-region width (px)
	DefaultMinNoteVelocity  = 30   // Candidates below this are dropped
	DefaultMaxNotesPerFrame = 8    // Candidate cap per analysis pass
	DefaultDepthNear        = 0.2  // Depth boost window near edge (m)
	DefaultDepthFar         = 1.5  // Depth boost window far edge (m)

	// Scheduling defaults
	DefaultMaxActiveNotes = 12  // Active-note set cap
	DefaultDecayGrace     = 0.5 // Seconds kept past note duration

	// Recording defaults
	DefaultRecordEnabled = false
	DefaultOutputFile    = "" // Auto-generated filename
	DefaultBitDepth      = 16

	// Transport defaults
	DefaultWSEnabled = false
	DefaultWSAddr    = ":8080"

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 selects the system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)
)

// Config holds all runtime configuration for the engine. It is built from
// defaults, optionally a YAML file, environment overrides, and finally
// command line flags.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
	Command  string `yaml:"-"`

	Audio     AudioConfig     `yaml:"audio"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`

	// Species/voice selection. VoicesFile optionally overrides the
	// built-in species voice table.
	VoicesFile string  `yaml:"voices_file"`
	Species    string  `yaml:"species"`
	Age        float64 `yaml:"age"`
}

// AudioConfig holds settings for the audio render path.
type AudioConfig struct {
	OutputDevice    int     `yaml:"output_device"`     // PortAudio device index (-1 for default)
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per render callback
	Channels        int     `yaml:"channels"`          // Output channels (1=mono, 2=stereo)
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from PortAudio
	MasterGain      float64 `yaml:"master_gain"`       // Output gain 0..1
	MaxPolyphony    int     `yaml:"max_polyphony"`     // Oscillator pool size
}

// AnalysisConfig holds settings for the texture analysis path.
type AnalysisConfig struct {
	RateHz           float64 `yaml:"rate_hz"`             // Analysis cadence (ticks/s)
	BlockSize        int     `yaml:"block_size"`          // Adaptive threshold window (px)
	SliceHeight      int     `yaml:"slice_height"`        // Rows per analysis band
	MaxSlices        int     `yaml:"max_slices"`          // Slice count cap
	RegionThreshold  float64 `yaml:"region_threshold"`    // Dark-region threshold 0..1
	MinRegionWidth   int     `yaml:"min_region_width"`    // Minimum region width (px)
	MinNoteVelocity  int     `yaml:"min_note_velocity"`   // Candidate velocity floor
	MaxNotesPerFrame int     `yaml:"max_notes_per_frame"` // Candidate cap per frame
	DepthNear        float64 `yaml:"depth_near"`          // Depth boost window near edge (m)
	DepthFar         float64 `yaml:"depth_far"`           // Depth boost window far edge (m)
}

// SchedulerConfig holds settings for beat-gated note scheduling.
type SchedulerConfig struct {
	MaxActiveNotes int     `yaml:"max_active_notes"` // Active-note set cap
	DecayGrace     float64 `yaml:"decay_grace"`      // Seconds kept past duration
}

// RecordingConfig holds settings for the mixer-tap WAV recording.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"`
	BitDepth   int    `yaml:"bit_depth"`
}

// TransportConfig holds settings for publishing tick snapshots to UI consumers.
type TransportConfig struct {
	WSEnabled bool   `yaml:"ws_enabled"` // Serve tick snapshots over WebSocket
	WSAddr    string `yaml:"ws_addr"`    // Listen address, e.g. ":8080"
}

// NewConfig creates a Config populated with defaults. This is the base
// configuration before YAML, environment, or flag overrides apply.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			OutputDevice:    DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			Channels:        DefaultChannels,
			LowLatency:      DefaultLowLatency,
			MasterGain:      DefaultMasterGain,
			MaxPolyphony:    DefaultMaxPolyphony,
		},
		Analysis: AnalysisConfig{
			RateHz:           DefaultAnalysisRate,
			BlockSize:        DefaultBlockSize,
			SliceHeight:      DefaultSliceHeight,
			MaxSlices:        DefaultMaxSlices,
			RegionThreshold:  DefaultRegionThreshold,
			MinRegionWidth:   DefaultMinRegionWidth,
			MinNoteVelocity:  DefaultMinNoteVelocity,
			MaxNotesPerFrame: DefaultMaxNotesPerFrame,
			DepthNear:        DefaultDepthNear,
			DepthFar:         DefaultDepthFar,
		},
		Scheduler: SchedulerConfig{
			MaxActiveNotes: DefaultMaxActiveNotes,
			DecayGrace:     DefaultDecayGrace,
		},
		Recording: RecordingConfig{
			Enabled:    DefaultRecordEnabled,
			OutputFile: DefaultOutputFile,
			BitDepth:   DefaultBitDepth,
		},
		Transport: TransportConfig{
			WSEnabled: DefaultWSEnabled,
			WSAddr:    DefaultWSAddr,
		},
		Species: "default",
		Age:     100,
	}
}
