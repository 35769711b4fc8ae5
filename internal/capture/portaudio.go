package capture

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// Initialize prepares the PortAudio runtime. Must be called once before any
// source is started, paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return nil
}

// Terminate releases the PortAudio runtime.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate portaudio: %w", err)
	}
	return nil
}

// Info returns a human-readable listing of host APIs and their devices,
// used by the devices subcommand.
func Info() (string, error) {
	apis, err := portaudio.HostApis()
	if err != nil {
		return "", fmt.Errorf("failed to get portaudio host apis: %w", err)
	}

	var b strings.Builder
	for idxAPI, api := range apis {
		fmt.Fprintf(&b, "Host API #%d: %s (%s)\n", idxAPI, api.Name, api.Type)
		if api.DefaultInputDevice != nil {
			fmt.Fprintf(&b, "  default input:  %s\n", api.DefaultInputDevice.Name)
		}
		if api.DefaultOutputDevice != nil {
			fmt.Fprintf(&b, "  default output: %s\n", api.DefaultOutputDevice.Name)
		}
		for idxDevice, d := range api.Devices {
			fmt.Fprintf(&b, "  device #%d: %s (sample rate: %.0f Hz, input channels: %d)\n",
				idxDevice, d.Name, d.DefaultSampleRate, d.MaxInputChannels)
		}
	}

	return b.String(), nil
}

// findLoopbackIndex returns the index of the first input-capable device whose
// name contains the hint (case-insensitive), or -1. Loopback devices expose
// the system output as an input: PulseAudio "monitor" sources, Windows
// "Stereo Mix", macOS virtual devices like "BlackHole".
func findLoopbackIndex(names []string, inputChannels []int, hint string) int {
	hint = strings.ToLower(hint)
	for i, name := range names {
		if inputChannels[i] < 1 {
			continue
		}
		if strings.Contains(strings.ToLower(name), hint) {
			return i
		}
	}
	return -1
}

// loopbackDevice locates the system loopback device matching the hint.
func loopbackDevice(hint string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list portaudio devices: %w", err)
	}

	names := make([]string, len(devices))
	inputChannels := make([]int, len(devices))
	for i, d := range devices {
		names[i] = d.Name
		inputChannels[i] = d.MaxInputChannels
	}

	idx := findLoopbackIndex(names, inputChannels, hint)
	if idx < 0 {
		return nil, fmt.Errorf("no input device matching %q found; run the devices command to list devices", hint)
	}

	return devices[idx], nil
}
