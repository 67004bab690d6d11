package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/p-poss/bark/internal/config"
)

// Initialize sets up the PortAudio subsystem. Must be called before any
// audio operations and paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem. Defer this right
// after a successful Initialize.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// OutputDevice resolves an output device by index. MinDeviceID (-1)
// selects the system default output device.
func OutputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == config.MinDeviceID {
		device, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("no default output device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	return devices[deviceID], nil
}

// ListDevices prints every audio device with its index, direction,
// channel counts, and default sample rate.
func ListDevices() error {
	devices, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("failed to enumerate devices: %w", err)
	}

	for i, d := range devices {
		kind := "output"
		switch {
		case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
			kind = "input+output"
		case d.MaxInputChannels > 0:
			kind = "input"
		}
		fmt.Printf("[%d] %s (%s) in:%d out:%d @ %.0f Hz\n",
			i, d.Name, kind, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate)
	}
	return nil
}
