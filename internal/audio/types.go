// Package audio provides PortAudio input capture, level metering and
// silence detection for the capture tool.
package audio

// Device describes an available audio device.
type Device struct {
	// Index is the PortAudio device index.
	Index int `json:"index"`
	// Name is the device display name.
	Name string `json:"name"`
	// HostAPI is the name of the host API providing the device.
	HostAPI string `json:"host_api"`
	// MaxInputChannels is the number of input channels the device supports.
	MaxInputChannels int `json:"max_input_channels"`
	// DefaultSampleRate is the device's default sample rate in Hz.
	DefaultSampleRate float64 `json:"default_sample_rate"`
}

// SilenceLevel represents the silence detection state.
type SilenceLevel string

// SilenceLevelActive indicates silence is confirmed.
const SilenceLevelActive SilenceLevel = "active"

// AudioLevels is the current audio level measurement pushed to monitors.
type AudioLevels struct {
	// Left is the left channel RMS level in dB.
	Left float64 `json:"left"`
	// Right is the right channel RMS level in dB.
	Right float64 `json:"right"`
	// PeakLeft is the held left channel peak level in dB.
	PeakLeft float64 `json:"peak_left"`
	// PeakRight is the held right channel peak level in dB.
	PeakRight float64 `json:"peak_right"`
	// Silence reports whether audio is below the configured silence threshold.
	Silence bool `json:"silence,omitzero"`
	// SilenceDurationMs is how long silence has lasted in milliseconds.
	SilenceDurationMs int64 `json:"silence_duration_ms,omitzero"`
	// SilenceLevel indicates the silence detection state (active or empty).
	SilenceLevel SilenceLevel `json:"silence_level,omitzero"`
	// ClipLeft is how many samples clipped on the left channel this frame.
	ClipLeft int `json:"clip_left,omitzero"`
	// ClipRight is how many samples clipped on the right channel this frame.
	ClipRight int `json:"clip_right,omitzero"`
}
