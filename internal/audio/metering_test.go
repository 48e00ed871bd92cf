package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateLevelsStereo(t *testing.T) {
	var data LevelData
	// Half scale left, quarter scale right, constant signal.
	block := make([]int16, 0, 200)
	for range 100 {
		block = append(block, 16384, 8192)
	}
	ProcessBlock(block, 2, &data)

	assert.Equal(t, 100, data.SampleCount)

	levels := CalculateLevels(&data)
	assert.InDelta(t, -6.02, levels.RMSLeft, 0.01)
	assert.InDelta(t, -12.04, levels.RMSRight, 0.01)
	assert.InDelta(t, -6.02, levels.PeakLeft, 0.01)
	assert.InDelta(t, -12.04, levels.PeakRight, 0.01)
}

func TestProcessBlockMonoFeedsBothChannels(t *testing.T) {
	var data LevelData
	ProcessBlock([]int16{16384, 16384, 16384, 16384}, 1, &data)

	levels := CalculateLevels(&data)
	assert.Equal(t, levels.RMSLeft, levels.RMSRight)
	assert.InDelta(t, -6.02, levels.RMSLeft, 0.01)
}

func TestClipCounting(t *testing.T) {
	var data LevelData
	ProcessBlock([]int16{32767, 100, -32768, 200, 32759, 300}, 2, &data)

	levels := CalculateLevels(&data)
	assert.Equal(t, 2, levels.ClipLeft, "32759 is below the clip threshold")
	assert.Equal(t, 0, levels.ClipRight)
}

func TestSilentBlockFloorsAtMinDB(t *testing.T) {
	var data LevelData
	ProcessBlock(make([]int16, 64), 2, &data)

	levels := CalculateLevels(&data)
	assert.Equal(t, MinDB, levels.RMSLeft)
	assert.Equal(t, MinDB, levels.PeakRight)
}

func TestCalculateLevelsEmpty(t *testing.T) {
	var data LevelData
	levels := CalculateLevels(&data)
	assert.Equal(t, MinDB, levels.RMSLeft)
	assert.Equal(t, MinDB, levels.RMSRight)
}

func TestLevelDataReset(t *testing.T) {
	var data LevelData
	ProcessBlock([]int16{1000, 1000}, 2, &data)
	data.Reset()
	assert.Zero(t, data.SampleCount)
	assert.Zero(t, data.SumSquaresL)
}
