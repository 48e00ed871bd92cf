package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDoublesUntilMax(t *testing.T) {
	b := NewBackoff(time.Second, 5*time.Second)

	assert.Equal(t, time.Second, b.Next())
	assert.Equal(t, 2*time.Second, b.Next())
	assert.Equal(t, 4*time.Second, b.Next())
	assert.Equal(t, 5*time.Second, b.Next())
	assert.Equal(t, 5*time.Second, b.Next())
	assert.Equal(t, 5, b.Attempts())
}

func TestBackoffReset(t *testing.T) {
	b := NewBackoff(time.Second, 10*time.Second)
	b.Next()
	b.Next()
	b.Reset()

	assert.Equal(t, time.Second, b.Next())
	assert.Equal(t, 1, b.Attempts())
}
