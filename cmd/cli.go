package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/p-poss/bark/internal/build"
	"github.com/p-poss/bark/internal/config"
)

// ParseArgs builds the runtime configuration: defaults, then YAML file,
// then environment, then command line flags. The --config path is
// pre-scanned so the file loads before flags bind over it.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	options, err := config.Load(configPathFromArgs(os.Args[1:]))
	if err != nil {
		return nil, err
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = "run"
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio output devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	// Config file (pre-scanned above; registered so cobra accepts it)
	var configPath string
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "",
		"Path to a YAML configuration file")

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&options.Audio.OutputDevice, "device", "d", options.Audio.OutputDevice,
		"Specify output device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&options.Audio.Channels, "channels", "c", options.Audio.Channels,
		"Number of output channels (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().Float64VarP(&options.Audio.SampleRate, "sample-rate", "s", options.Audio.SampleRate,
		"Sample rate, measured in Hertz (Hz)")

	rootCmd.PersistentFlags().IntVarP(&options.Audio.FramesPerBuffer, "frames-per-buffer", "b", options.Audio.FramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&options.Audio.LowLatency, "low-latency", "l", options.Audio.LowLatency,
		"Use low latency mode for real-time playback")
	rootCmd.PersistentFlags().Float64VarP(&options.Audio.MasterGain, "gain", "g", options.Audio.MasterGain,
		"Master output gain (0..1)")

	// Voice Configuration
	rootCmd.PersistentFlags().StringVarP(&options.Species, "species", "t", options.Species,
		"Tree species voice (oak, pine, birch, willow, maple)")
	rootCmd.PersistentFlags().Float64VarP(&options.Age, "age", "a", options.Age,
		"Estimated tree age in years")
	rootCmd.PersistentFlags().StringVar(&options.VoicesFile, "voices", options.VoicesFile,
		"Path to a YAML voice table overriding the built-in species")

	// Recording Configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Recording.Enabled, "record", "r", options.Recording.Enabled,
		"Record the mixed output to a WAV file")
	rootCmd.PersistentFlags().StringVarP(&options.Recording.OutputFile, "output", "o", options.Recording.OutputFile,
		"Output file name. Default is bark-MM-DD-YYYY-HHMMSS.wav")

	// Transport Configuration
	rootCmd.PersistentFlags().BoolVar(&options.Transport.WSEnabled, "ws", options.Transport.WSEnabled,
		"Serve tick snapshots over WebSocket")
	rootCmd.PersistentFlags().StringVar(&options.Transport.WSAddr, "ws-addr", options.Transport.WSAddr,
		"WebSocket listen address")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Debug, "verbose", "v", options.Debug,
		"Show verbose output")

	// Defaults
	if options.Recording.OutputFile == "" {
		options.Recording.OutputFile = "bark-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}

	// Execute the CLI
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}

// configPathFromArgs extracts the --config value without running cobra,
// so the YAML file can seed the flag defaults.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" || arg == "-f":
			if i+1 < len(args) {
				return args[i+1]
			}
		case len(arg) > len("--config=") && arg[:len("--config=")] == "--config=":
			return arg[len("--config="):]
		}
	}
	return ""
}
