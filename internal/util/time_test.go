package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractDateFromFilename(t *testing.T) {
	date, ok := ExtractDateFromFilename("capture-2026-08-23-154500.wav")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), date)

	_, ok = ExtractDateFromFilename("capture.wav")
	assert.False(t, ok)

	_, ok = ExtractDateFromFilename("capture-2026-99-99.wav")
	assert.False(t, ok, "impossible dates do not parse")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(500))
	assert.Equal(t, "45s", FormatDuration(45_000))
	assert.Equal(t, "2m 34s", FormatDuration(154_000))
	assert.Equal(t, "1h 23m", FormatDuration(4_980_000))
}

func TestFormatHumanTime(t *testing.T) {
	assert.Equal(t, "unknown", FormatHumanTime(""))
	assert.Equal(t, "unknown", FormatHumanTime("unknown"))
	assert.Equal(t, "not-a-time", FormatHumanTime("not-a-time"))

	out := FormatHumanTime("2026-08-23T12:00:00Z")
	assert.Contains(t, out, "2026")
}
