package record

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	now := time.Date(2026, 8, 23, 15, 45, 0, 0, time.UTC)
	assert.Equal(t, "capture-2026-08-23-154500.wav", Filename(now))
}

func TestRecorderWritesPlayableWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	r, err := New(path, 44100, 2)
	require.NoError(t, err)

	block := make([]int16, 512*2)
	for i := range block {
		block[i] = int16(i % 1000)
	}
	require.NoError(t, r.Write(block))
	require.NoError(t, r.Write(block))
	assert.Equal(t, int64(1024), r.Frames())
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint32(44100), dec.SampleRate)
	assert.Equal(t, uint16(16), dec.BitDepth)
}

func TestCleanupOldRecordings(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "capture-2020-01-01-120000.wav")
	recent := filepath.Join(dir, Filename(time.Now()))
	undated := filepath.Join(dir, "keep-me.wav")
	other := filepath.Join(dir, "capture-2020-01-01-120000.txt")
	for _, p := range []string{old, recent, undated, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	deleted, err := CleanupOldRecordings(dir, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)
	assert.FileExists(t, undated, "files without a date are never deleted")
	assert.FileExists(t, other, "only .wav files are cleaned up")
}

func TestCleanupDisabled(t *testing.T) {
	deleted, err := CleanupOldRecordings("", 30)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = CleanupOldRecordings(t.TempDir(), 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestS3Key(t *testing.T) {
	assert.Equal(t, "capture.wav", S3Key("", "capture.wav"))
	assert.Equal(t, "recordings/capture.wav", S3Key("recordings", "capture.wav"))
	assert.Equal(t, "a/b/capture.wav", S3Key("a/b/", "capture.wav"))
}
