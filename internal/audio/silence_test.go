package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var silenceCfg = SilenceConfig{
	Threshold:  -40,
	DurationMs: 1000,
	RecoveryMs: 500,
}

func TestSilenceEnterAndRecover(t *testing.T) {
	d := NewSilenceDetector()
	t0 := time.Now()

	// Below threshold but not yet long enough.
	ev := d.Update(-50, -50, silenceCfg, t0)
	assert.False(t, ev.InSilence)
	assert.False(t, ev.JustEntered)

	// Crosses the duration threshold.
	ev = d.Update(-50, -50, silenceCfg, t0.Add(1*time.Second))
	assert.True(t, ev.InSilence)
	assert.True(t, ev.JustEntered)
	assert.Equal(t, SilenceLevelActive, ev.Level)
	assert.Equal(t, int64(1000), ev.DurationMs)

	// Audio returns, still inside the recovery window.
	ev = d.Update(-10, -10, silenceCfg, t0.Add(1200*time.Millisecond))
	assert.True(t, ev.InSilence)
	assert.False(t, ev.JustRecovered)

	// Recovery window elapsed.
	ev = d.Update(-10, -10, silenceCfg, t0.Add(1800*time.Millisecond))
	assert.True(t, ev.JustRecovered)
	assert.False(t, ev.InSilence)
	assert.Equal(t, int64(1000), ev.TotalDurationMs)
}

func TestSilenceOneLoudChannelPreventsSilence(t *testing.T) {
	d := NewSilenceDetector()
	t0 := time.Now()

	d.Update(-50, -10, silenceCfg, t0)
	ev := d.Update(-50, -10, silenceCfg, t0.Add(2*time.Second))
	assert.False(t, ev.InSilence, "silence requires both channels below threshold")
}

func TestSilenceBlipDoesNotRecover(t *testing.T) {
	d := NewSilenceDetector()
	t0 := time.Now()

	d.Update(-50, -50, silenceCfg, t0)
	ev := d.Update(-50, -50, silenceCfg, t0.Add(1*time.Second))
	assert.True(t, ev.JustEntered)

	// Short blip of audio, then silence again before the recovery window.
	ev = d.Update(-10, -10, silenceCfg, t0.Add(1100*time.Millisecond))
	assert.True(t, ev.InSilence)
	ev = d.Update(-50, -50, silenceCfg, t0.Add(1300*time.Millisecond))
	assert.True(t, ev.InSilence)
	assert.False(t, ev.JustEntered, "re-entering from a blip is not a new event")
}

func TestSilenceReset(t *testing.T) {
	d := NewSilenceDetector()
	t0 := time.Now()

	d.Update(-50, -50, silenceCfg, t0)
	d.Update(-50, -50, silenceCfg, t0.Add(1*time.Second))
	d.Reset()

	ev := d.Update(-50, -50, silenceCfg, t0.Add(2*time.Second))
	assert.False(t, ev.InSilence, "reset forgets accumulated silence")
}
