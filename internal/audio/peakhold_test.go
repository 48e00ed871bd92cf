package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeakHolderHoldsAndDecays(t *testing.T) {
	p := NewPeakHolder(3 * time.Second)
	t0 := time.Now()

	heldL, heldR := p.Update(-10, -12, t0)
	assert.Equal(t, -10.0, heldL)
	assert.Equal(t, -12.0, heldR)

	// Lower peak inside the hold window keeps the old value.
	heldL, heldR = p.Update(-20, -20, t0.Add(1*time.Second))
	assert.Equal(t, -10.0, heldL)
	assert.Equal(t, -12.0, heldR)

	// Higher peak always replaces.
	heldL, _ = p.Update(-5, -20, t0.Add(2*time.Second))
	assert.Equal(t, -5.0, heldL)

	// After the hold window the lower value takes over.
	_, heldR = p.Update(-20, -20, t0.Add(6*time.Second))
	assert.Equal(t, -20.0, heldR)
}

func TestPeakHolderReset(t *testing.T) {
	p := NewPeakHolder(0)
	t0 := time.Now()

	p.Update(-3, -3, t0)
	p.Reset()

	heldL, heldR := p.Update(-30, -30, t0.Add(time.Millisecond))
	assert.Equal(t, -30.0, heldL)
	assert.Equal(t, -30.0, heldR)
}
