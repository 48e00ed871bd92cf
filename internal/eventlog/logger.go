// Package eventlog provides unified event logging for the capture tool.
// It records capture lifecycle, silence and recording events in a single
// JSON lines file so external tooling can follow a session after the fact.
package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event.
type EventType string

// Capture event types.
const (
	CaptureStarted EventType = "capture_started"
	CaptureStopped EventType = "capture_stopped"
	InputOverflow  EventType = "input_overflow"
)

// Silence event types.
const (
	SilenceStart EventType = "silence_start"
	SilenceEnd   EventType = "silence_end"
)

// Recording event types.
const (
	RecordingStarted  EventType = "recording_started"
	RecordingFinished EventType = "recording_finished"
	UploadCompleted   EventType = "upload_completed"
	UploadFailed      EventType = "upload_failed"
	CleanupCompleted  EventType = "cleanup_completed"
)

// Event represents a single log entry with type-specific details.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Type      EventType `json:"type"`
	Message   string    `json:"msg,omitempty"`
	Details   any       `json:"details,omitempty"`
}

// CaptureDetails contains capture-specific event details.
type CaptureDetails struct {
	Device          string  `json:"device,omitempty"`
	SampleRate      float64 `json:"sample_rate,omitempty"`
	Channels        int     `json:"channels,omitempty"`
	FramesPerBuffer int     `json:"frames_per_buffer,omitempty"`
	FramesCaptured  int64   `json:"frames_captured,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// SilenceDetails contains silence-specific event details.
type SilenceDetails struct {
	LevelLeftDB  float64 `json:"level_left_db"`
	LevelRightDB float64 `json:"level_right_db"`
	ThresholdDB  float64 `json:"threshold_db"`
	DurationMs   int64   `json:"duration_ms,omitempty"`
}

// RecordingDetails contains recording and upload event details.
type RecordingDetails struct {
	Filename     string `json:"filename,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
	S3Key        string `json:"s3_key,omitempty"`
	Error        string `json:"error,omitempty"`
	FilesDeleted int    `json:"files_deleted,omitempty"`
}

// Logger writes events to a JSON lines file. It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
}

// NewLogger creates a new event logger at the specified path.
func NewLogger(filePath string) (*Logger, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// Log writes an event to the log file. A nil Logger discards events, so
// callers do not need to guard every call site when logging is disabled.
func (l *Logger) Log(event *Event) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return l.encoder.Encode(event)
}

// LogCapture logs a capture lifecycle event.
func (l *Logger) LogCapture(eventType EventType, message string, details *CaptureDetails) error {
	return l.Log(&Event{Type: eventType, Message: message, Details: details})
}

// LogSilenceStart logs a silence start event.
func (l *Logger) LogSilenceStart(levelL, levelR, threshold float64) error {
	return l.Log(&Event{
		Type: SilenceStart,
		Details: &SilenceDetails{
			LevelLeftDB:  levelL,
			LevelRightDB: levelR,
			ThresholdDB:  threshold,
		},
	})
}

// LogSilenceEnd logs a silence end event.
func (l *Logger) LogSilenceEnd(durationMs int64, levelL, levelR, threshold float64) error {
	return l.Log(&Event{
		Type: SilenceEnd,
		Details: &SilenceDetails{
			LevelLeftDB:  levelL,
			LevelRightDB: levelR,
			ThresholdDB:  threshold,
			DurationMs:   durationMs,
		},
	})
}

// LogRecording logs a recording or upload event.
func (l *Logger) LogRecording(eventType EventType, details *RecordingDetails) error {
	return l.Log(&Event{Type: eventType, Details: details})
}

// Close closes the underlying log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
