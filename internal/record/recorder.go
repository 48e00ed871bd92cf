// Package record writes captured PCM to WAV files and optionally uploads
// finished recordings to S3-compatible storage.
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/oszuidwest/zwfm-capture/internal/util"
)

// wavBitDepth is the sample resolution of recordings; capture is 16-bit PCM.
const wavBitDepth = 16

// Recorder writes captured int16 blocks to a single WAV file.
type Recorder struct {
	file     *os.File
	enc      *wav.Encoder
	path     string
	channels int
	frames   int64
	intBuf   []int // reused per-block conversion buffer
}

// Filename returns the dated recording filename for the given time,
// e.g. "capture-2026-08-23-154500.wav".
func Filename(now time.Time) string {
	return fmt.Sprintf("capture-%s.wav", now.Format("2006-01-02-150405"))
}

// New creates a recorder writing to the exact file path.
func New(path string, sampleRate float64, channels int) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, util.WrapError("create recording file", err)
	}

	return &Recorder{
		file:     file,
		enc:      wav.NewEncoder(file, int(sampleRate), wavBitDepth, channels, 1),
		path:     path,
		channels: channels,
	}, nil
}

// NewInDirectory creates a recorder with a date-stamped filename inside dir,
// verifying first that the directory is writable.
func NewInDirectory(dir string, sampleRate float64, channels int) (*Recorder, error) {
	if err := util.CheckPathWritable(dir); err != nil {
		return nil, err
	}
	return New(filepath.Join(dir, Filename(time.Now())), sampleRate, channels)
}

// Write appends a block of interleaved samples to the recording.
func (r *Recorder) Write(samples []int16) error {
	if cap(r.intBuf) < len(samples) {
		r.intBuf = make([]int, len(samples))
	}
	r.intBuf = r.intBuf[:len(samples)]
	for i, s := range samples {
		r.intBuf[i] = int(s)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: r.channels,
			SampleRate:  r.enc.SampleRate,
		},
		Data:           r.intBuf,
		SourceBitDepth: wavBitDepth,
	}
	if err := r.enc.Write(buf); err != nil {
		return util.WrapError("write recording", err)
	}

	r.frames += int64(len(samples) / r.channels)
	return nil
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int64 { return r.frames }

// Path returns the recording file path.
func (r *Recorder) Path() string { return r.path }

// Close finalizes the WAV header and closes the file.
func (r *Recorder) Close() error {
	if err := r.enc.Close(); err != nil {
		_ = r.file.Close()
		return util.WrapError("finalize recording", err)
	}
	return r.file.Close()
}
