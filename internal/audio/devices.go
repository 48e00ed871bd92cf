package audio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// ErrNoInputDevice is returned when no audio input device is available.
var ErrNoInputDevice = errors.New("no audio input device found")

// Devices returns all audio devices known to PortAudio. The library must
// already be initialized.
func Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for i, info := range infos {
		devices = append(devices, Device{
			Index:             i,
			Name:              info.Name,
			HostAPI:           hostAPIName(info),
			MaxInputChannels:  info.MaxInputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		})
	}
	return devices, nil
}

func hostAPIName(info *portaudio.DeviceInfo) string {
	if info.HostApi == nil {
		return ""
	}
	return info.HostApi.Name
}

// MatchesLineIn reports whether a device name looks like a line input.
// Matching is case-insensitive and covers the common "Line In", "Line-In"
// and "Stereo Mix" spellings.
func MatchesLineIn(name string) bool {
	low := strings.ToLower(name)
	return strings.Contains(low, "line") || strings.Contains(low, "stereo mix")
}

// ResolveInput picks the input device to capture from. An index >= 0 selects
// that device explicitly and fails if it cannot capture. With a negative
// index, the first input-capable device whose name matches the line-in
// heuristic wins, then the system default input.
func ResolveInput(index int) (*portaudio.DeviceInfo, int, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, 0, fmt.Errorf("list devices: %w", err)
	}

	if index >= 0 {
		if index >= len(infos) {
			return nil, 0, fmt.Errorf("invalid device index %d (have %d devices)", index, len(infos))
		}
		info := infos[index]
		if info.MaxInputChannels <= 0 {
			return nil, 0, fmt.Errorf("device %d (%s) has no input channels", index, info.Name)
		}
		return info, index, nil
	}

	for i, info := range infos {
		if info.MaxInputChannels > 0 && MatchesLineIn(info.Name) {
			return info, i, nil
		}
	}

	def, err := portaudio.DefaultInputDevice()
	if err != nil || def == nil {
		return nil, 0, ErrNoInputDevice
	}
	for i, info := range infos {
		if info == def {
			return def, i, nil
		}
	}
	return def, -1, nil
}
