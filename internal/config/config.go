// Package config provides application configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/oszuidwest/zwfm-capture/internal/types"
	"github.com/oszuidwest/zwfm-capture/internal/util"
)

// Configuration defaults are used when values are not specified.
const (
	DefaultDeviceIndex      = -1 // auto-detect (line-in heuristic, then default input)
	DefaultSampleRate       = 44100.0
	DefaultChannels         = 2
	DefaultFramesPerBuffer  = 4096
	DefaultSilenceThreshold = -40.0
	DefaultSilenceDuration  = 15000 // milliseconds
	DefaultSilenceRecovery  = 5000  // milliseconds
	DefaultRetentionDays    = 30
)

// AudioConfig holds capture format and device settings.
type AudioConfig struct {
	DeviceIndex     int     `json:"device_index" validate:"gte=-1"`                  // PortAudio device index, -1 = auto
	SampleRate      float64 `json:"sample_rate" validate:"omitempty,gte=8000,lte=192000"` // Sample rate in Hz
	Channels        int     `json:"channels" validate:"omitempty,gte=1,lte=8"`       // Interleaved channel count
	FramesPerBuffer int     `json:"frames_per_buffer" validate:"omitempty,gte=64,lte=65536"` // Frames per blocking read
}

// SilenceConfig holds silence detection thresholds and timing parameters.
type SilenceConfig struct {
	ThresholdDB float64 `json:"threshold_db" validate:"omitempty,gte=-60,lte=0"`          // Silence threshold in dB
	DurationMs  int64   `json:"duration_ms" validate:"omitempty,gte=500,lte=300000"`      // Duration below threshold before alert
	RecoveryMs  int64   `json:"recovery_ms" validate:"omitempty,gte=500,lte=60000"`       // Duration above threshold before recovery
}

// MonitorConfig holds the live level monitor settings.
type MonitorConfig struct {
	Port int `json:"port" validate:"omitempty,gte=1,lte=65535"` // WebSocket monitor port, 0 = disabled
}

// S3Config holds S3-compatible upload settings for finished recordings.
type S3Config struct {
	Endpoint        string `json:"endpoint" validate:"omitempty,url,max=2048"` // Custom endpoint (empty = AWS)
	Bucket          string `json:"bucket" validate:"omitempty,max=255"`
	AccessKeyID     string `json:"access_key_id" validate:"omitempty,max=128"`
	SecretAccessKey string `json:"secret_access_key" validate:"omitempty,max=128"`
	Prefix          string `json:"prefix" validate:"omitempty,max=512"` // Key prefix inside the bucket
}

// IsConfigured reports whether the credentials and bucket are all set.
func (s *S3Config) IsConfigured() bool {
	return util.IsConfigured(s.Bucket, s.AccessKeyID, s.SecretAccessKey)
}

// RecordingConfig holds WAV recording settings.
type RecordingConfig struct {
	Directory     string   `json:"directory" validate:"omitempty,max=4096"`     // Where WAV files are written
	RetentionDays int      `json:"retention_days" validate:"omitempty,gte=1,lte=365"` // Local retention, 0 = keep forever
	S3            S3Config `json:"s3"`
}

// WebhookConfig holds webhook notification settings.
type WebhookConfig struct {
	URL string `json:"url" validate:"omitempty,url,max=2048"` // Webhook URL for silence alerts
}

// NotificationsConfig holds all notification channel settings.
type NotificationsConfig struct {
	Webhook WebhookConfig `json:"webhook"`
}

// LogConfig holds event log settings.
type LogConfig struct {
	Path string `json:"path" validate:"omitempty,max=4096"` // JSON-lines event log path, empty = disabled
}

// Config holds all application configuration for one invocation.
type Config struct {
	Audio         AudioConfig         `json:"audio"`
	Silence       SilenceConfig       `json:"silence"`
	Monitor       MonitorConfig       `json:"monitor"`
	Recording     RecordingConfig     `json:"recording"`
	Notifications NotificationsConfig `json:"notifications"`
	Log           LogConfig           `json:"log"`

	filePath string
}

// validate is the shared validator instance for configuration validation.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages instead of struct field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

// New creates a new Config with default values.
func New(filePath string) *Config {
	return &Config{
		Audio: AudioConfig{
			DeviceIndex:     DefaultDeviceIndex,
			SampleRate:      DefaultSampleRate,
			Channels:        DefaultChannels,
			FramesPerBuffer: DefaultFramesPerBuffer,
		},
		Silence: SilenceConfig{
			ThresholdDB: DefaultSilenceThreshold,
			DurationMs:  DefaultSilenceDuration,
			RecoveryMs:  DefaultSilenceRecovery,
		},
		filePath: filePath,
	}
}

// Load reads config from file, creating a default file if none exists.
// With an empty file path the built-in defaults apply unchanged.
func (c *Config) Load() error {
	if c.filePath == "" {
		return nil
	}

	data, err := os.ReadFile(c.filePath)
	if os.IsNotExist(err) {
		return c.save()
	}
	if err != nil {
		return util.WrapError("read config", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return util.WrapError("parse config", err)
	}

	c.applyDefaults()

	return c.Validate()
}

// Validate checks all configuration fields for correctness. Violations are
// collected into a types.ValidationError naming each offending field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verr := types.NewValidationError()
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			verr.Add(e.Field(), formatValidationMessage(e), e.Value())
		}
	} else {
		verr.Add("", err.Error(), nil)
	}
	return verr
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = DefaultSampleRate
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = DefaultChannels
	}
	if c.Audio.FramesPerBuffer == 0 {
		c.Audio.FramesPerBuffer = DefaultFramesPerBuffer
	}
	// Silence.ThresholdDB is deliberately absent here: 0 dB is a valid
	// threshold, and an omitted field already keeps the -40 seeded by New
	// because Load unmarshals over the defaults.
	if c.Silence.DurationMs == 0 {
		c.Silence.DurationMs = DefaultSilenceDuration
	}
	if c.Silence.RecoveryMs == 0 {
		c.Silence.RecoveryMs = DefaultSilenceRecovery
	}
	if c.Recording.Directory != "" && c.Recording.RetentionDays == 0 {
		c.Recording.RetentionDays = DefaultRetentionDays
	}
}

// save persists the configuration to its file path.
func (c *Config) save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return util.WrapError("marshal config", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapError("create config directory", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return util.WrapError("write config", err)
	}

	return nil
}

// formatValidationMessage creates a human-readable message from a validator error.
func formatValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	case "url":
		return "must be a valid URL"
	case "max":
		return "is too long"
	default:
		return "is invalid"
	}
}
