package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/oszuidwest/zwfm-capture/internal/util"
)

// Capture open retry parameters. Devices that are briefly busy (another
// client holding the stream) usually free up within a few seconds.
const (
	openMaxAttempts    = 3
	openInitialBackoff = 500 * time.Millisecond
	openMaxBackoff     = 5 * time.Second
)

// Options configures an input capture stream.
type Options struct {
	// Device is the PortAudio input device to capture from.
	Device *portaudio.DeviceInfo
	// Channels is the number of interleaved input channels.
	Channels int
	// SampleRate is the capture sample rate in Hz.
	SampleRate float64
	// FramesPerBuffer is the number of frames delivered per blocking read.
	FramesPerBuffer int
	// OnOverflow, if set, is called whenever a read reports input overflow.
	OnOverflow func()
}

// ChunkFunc receives each captured block of interleaved int16 samples.
// The slice is reused between reads; copy it if it must outlive the call.
// Returning an error stops the capture loop.
type ChunkFunc func(samples []int16, frames int) error

// Capture is a blocking-read PCM capture stream.
type Capture struct {
	stream *portaudio.Stream
	buf    []int16
	opts   Options
}

// Open opens a capture stream for the given options. If the device supports
// fewer input channels than requested, the channel count is clamped with a
// warning, matching how the tool has always treated consumer devices.
func Open(opts Options) (*Capture, error) {
	if opts.Device == nil {
		return nil, ErrNoInputDevice
	}

	if opts.Device.MaxInputChannels < opts.Channels {
		slog.Warn("device supports fewer input channels than requested, clamping",
			"device", opts.Device.Name,
			"requested", opts.Channels,
			"available", opts.Device.MaxInputChannels)
		opts.Channels = opts.Device.MaxInputChannels
	}
	if opts.Channels <= 0 {
		return nil, ErrNoInputDevice
	}

	params := portaudio.LowLatencyParameters(opts.Device, nil)
	params.Input.Channels = opts.Channels
	params.SampleRate = opts.SampleRate
	params.FramesPerBuffer = opts.FramesPerBuffer

	buf := make([]int16, opts.FramesPerBuffer*opts.Channels)
	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, util.WrapError("open stream", err)
	}

	return &Capture{stream: stream, buf: buf, opts: opts}, nil
}

// OpenWithRetry opens a capture stream, retrying transient failures with
// exponential backoff until ctx is canceled or the attempts are exhausted.
func OpenWithRetry(ctx context.Context, opts Options) (*Capture, error) {
	backoff := util.NewBackoff(openInitialBackoff, openMaxBackoff)

	for {
		capture, err := Open(opts)
		if err == nil {
			return capture, nil
		}
		if errors.Is(err, ErrNoInputDevice) || backoff.Attempts() >= openMaxAttempts-1 {
			return nil, err
		}

		delay := backoff.Next()
		slog.Warn("failed to open capture stream, retrying", "error", err, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Channels returns the effective channel count after clamping.
func (c *Capture) Channels() int { return c.opts.Channels }

// SampleRate returns the capture sample rate in Hz.
func (c *Capture) SampleRate() float64 { return c.opts.SampleRate }

// FramesPerBuffer returns the block size in frames.
func (c *Capture) FramesPerBuffer() int { return c.opts.FramesPerBuffer }

// Run starts the stream and reads blocks until ctx is canceled, fn returns
// an error, or the stream fails. Input overflow and read timeouts are
// logged and skipped; capture continues with the next block.
func (c *Capture) Run(ctx context.Context, fn ChunkFunc) error {
	if err := c.stream.Start(); err != nil {
		return util.WrapError("start stream", err)
	}
	defer func() {
		if err := c.stream.Stop(); err != nil {
			slog.Error("error stopping stream", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := c.stream.Read()
		switch {
		case err == nil:
			if err := fn(c.buf, c.opts.FramesPerBuffer); err != nil {
				return err
			}
		case errors.Is(err, portaudio.InputOverflowed):
			slog.Warn("input overflow, samples dropped")
			if c.opts.OnOverflow != nil {
				c.opts.OnOverflow()
			}
		case errors.Is(err, portaudio.TimedOut):
			slog.Warn("stream read timed out")
		default:
			return util.WrapError("read stream", err)
		}
	}
}

// Close releases the stream.
func (c *Capture) Close() error {
	return c.stream.Close()
}

// S16LEBytes appends samples to dst as little-endian signed 16-bit PCM and
// returns the extended slice. Output byte order is fixed regardless of host
// endianness so redirected stdout is always s16le.
func S16LEBytes(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(s))
	}
	return dst
}
