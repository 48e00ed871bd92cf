// Package main provides a command-line tool that captures 16-bit PCM audio
// from a system input device and streams it to stdout or a WAV recording.
//
// Usage:
//
//	zwfm-capture [--device N] [--rate HZ] [--channels N] [--frames N] > out.raw
//
// Raw PCM (interleaved little-endian signed 16-bit) goes to stdout; all
// logging goes to stderr so redirected output stays clean.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/oszuidwest/zwfm-capture/internal/audio"
	"github.com/oszuidwest/zwfm-capture/internal/cli"
	"github.com/oszuidwest/zwfm-capture/internal/config"
	"github.com/oszuidwest/zwfm-capture/internal/eventlog"
	"github.com/oszuidwest/zwfm-capture/internal/monitor"
	"github.com/oszuidwest/zwfm-capture/internal/notify"
	"github.com/oszuidwest/zwfm-capture/internal/record"
	"github.com/oszuidwest/zwfm-capture/internal/util"
)

// meterInterval is how often levels are computed and published while capturing.
const meterInterval = 400 * time.Millisecond

// flagValues holds the destinations the command-line arguments are bound to.
type flagValues struct {
	version     bool
	listDevices bool
	verbose     bool

	device      int
	channels    int
	frames      int
	monitorPort int

	rate             float64
	silenceThreshold float64

	configPath string
	output     string
	duration   string
}

func main() {
	os.Exit(run())
}

func run() int {
	fl := &flagValues{
		device:           config.DefaultDeviceIndex,
		channels:         config.DefaultChannels,
		frames:           config.DefaultFramesPerBuffer,
		rate:             config.DefaultSampleRate,
		silenceThreshold: config.DefaultSilenceThreshold,
		output:           "-",
	}

	cmd, err := newCommandLine(fl)
	if err != nil {
		slog.Error("failed to register command line arguments", "error", err)
		return 1
	}

	if err := cmd.Parse(os.Args); err != nil {
		slog.Error("invalid command line", "error", err)
		return 1
	}

	if cmd.Seen("--help") {
		cmd.PrintHelp(os.Stdout)
		return 0
	}

	if fl.version {
		slog.Info("version info", "version", Version, "commit", Commit, "build_time", BuildTime)
		return 0
	}

	cfg := config.New(fl.configPath)
	if err := cfg.Load(); err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	applyFlagOverrides(cmd, fl, cfg)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}
	fl.output = resolveOutput(fl.output, cmd.Seen("--output"), cfg)

	if err := portaudio.Initialize(); err != nil {
		slog.Error("failed to initialize PortAudio", "error", err)
		return 1
	}
	defer func() {
		if err := portaudio.Terminate(); err != nil {
			slog.Error("error terminating PortAudio", "error", err)
		}
	}()

	if fl.listDevices {
		return listInputDevices()
	}

	return capture(fl, cfg)
}

// newCommandLine registers the full flag surface of the tool.
func newCommandLine(fl *flagValues) (*cli.CommandLine, error) {
	cmd := cli.New("zwfm-capture records 16-bit PCM audio from a system input device.")

	regs := []struct {
		flags []string
		value *cli.Value
		help  string
	}{
		{[]string{"--help", "-h"}, nil, "Print this help text and exit."},
		{[]string{"--version"}, cli.Bool(&fl.version), "Print version information and exit."},
		{[]string{"--list-devices", "-l"}, cli.Bool(&fl.listDevices), "List available audio input devices and exit."},
		{[]string{"--device", "-d"}, cli.Int(&fl.device), "Input device index as reported by --list-devices. The default -1 picks a line input if one exists, otherwise the system default input."},
		{[]string{"--rate", "-r"}, cli.Float64(&fl.rate), "Sample rate in Hz."},
		{[]string{"--channels", "-c"}, cli.Int(&fl.channels), "Number of input channels to capture."},
		{[]string{"--frames", "-f"}, cli.Int(&fl.frames), "Frames per buffer for each blocking read."},
		{[]string{"--config"}, cli.String(&fl.configPath), "Path to a JSON config file. Command line flags override values from the file."},
		{[]string{"--output", "-o"}, cli.String(&fl.output), "Where captured audio goes: \"-\" streams raw little-endian PCM to stdout, a path ending in .wav records to that file, any other path is treated as a recording directory."},
		{[]string{"--duration"}, cli.String(&fl.duration), "Stop capturing after this duration, e.g. 30s or 5m. Default is to run until interrupted."},
		{[]string{"--monitor"}, cli.Int(&fl.monitorPort), "Serve live level measurements over WebSocket on this port. 0 disables the monitor."},
		{[]string{"--silence-threshold"}, cli.Float64(&fl.silenceThreshold), "Level in dB below which audio counts as silence."},
		{[]string{"--verbose", "-v"}, cli.Bool(&fl.verbose), "Log level measurements to stderr while capturing."},
	}
	for _, r := range regs {
		if err := cmd.AddArgument(r.flags, r.value, r.help); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

// applyFlagOverrides copies flag values into the configuration, but only for
// flags that were actually supplied. Config file values survive otherwise.
func applyFlagOverrides(cmd *cli.CommandLine, fl *flagValues, cfg *config.Config) {
	if cmd.Seen("--device") {
		cfg.Audio.DeviceIndex = fl.device
	}
	if cmd.Seen("--rate") {
		cfg.Audio.SampleRate = fl.rate
	}
	if cmd.Seen("--channels") {
		cfg.Audio.Channels = fl.channels
	}
	if cmd.Seen("--frames") {
		cfg.Audio.FramesPerBuffer = fl.frames
	}
	if cmd.Seen("--silence-threshold") {
		cfg.Silence.ThresholdDB = fl.silenceThreshold
	}
	if cmd.Seen("--monitor") {
		cfg.Monitor.Port = fl.monitorPort
	}
}

// listInputDevices prints every input-capable device to stdout.
func listInputDevices() int {
	devices, err := audio.Devices()
	if err != nil {
		slog.Error("failed to list devices", "error", err)
		return 1
	}

	for _, d := range devices {
		if d.MaxInputChannels <= 0 {
			continue
		}
		marker := " "
		if audio.MatchesLineIn(d.Name) {
			marker = "*"
		}
		fmt.Printf("%s [%d] %s (%s, %d in, %.0f Hz)\n",
			marker, d.Index, d.Name, d.HostAPI, d.MaxInputChannels, d.DefaultSampleRate)
	}
	return 0
}

// capture runs the main capture loop until interrupted or the configured
// duration elapses.
func capture(fl *flagValues, cfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), util.ShutdownSignals()...)
	defer stop()

	if fl.duration != "" {
		d, err := time.ParseDuration(fl.duration)
		if err != nil || d <= 0 {
			slog.Error("invalid duration", "value", fl.duration)
			return 1
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	device, index, err := audio.ResolveInput(cfg.Audio.DeviceIndex)
	if err != nil {
		slog.Error("failed to resolve input device", "error", err)
		return 1
	}
	slog.Info("using input device", "index", index, "name", device.Name,
		"sample_rate", cfg.Audio.SampleRate, "channels", cfg.Audio.Channels,
		"frames_per_buffer", cfg.Audio.FramesPerBuffer)

	var events *eventlog.Logger
	if cfg.Log.Path != "" {
		events, err = eventlog.NewLogger(cfg.Log.Path)
		if err != nil {
			slog.Error("failed to open event log", "error", err)
			return 1
		}
		defer func() {
			_ = events.Close()
		}()
	}

	stream, err := audio.OpenWithRetry(ctx, audio.Options{
		Device:          device,
		Channels:        cfg.Audio.Channels,
		SampleRate:      cfg.Audio.SampleRate,
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		OnOverflow: func() {
			_ = events.LogCapture(eventlog.InputOverflow, "input overflow, samples dropped", nil)
		},
	})
	if err != nil {
		slog.Error("failed to open capture stream", "error", err)
		return 1
	}
	defer func() {
		if err := stream.Close(); err != nil {
			slog.Error("error closing stream", "error", err)
		}
	}()

	sink, recorder, err := openSink(fl.output, stream)
	if err != nil {
		slog.Error("failed to open output", "error", err)
		return 1
	}
	if recorder != nil {
		_ = events.LogRecording(eventlog.RecordingStarted, &eventlog.RecordingDetails{
			Filename: recorder.Path(),
		})
	}

	var levelServer *monitor.Server
	if cfg.Monitor.Port > 0 {
		levelServer = monitor.NewServer(cfg.Monitor.Port)
		levelServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := levelServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("monitor shutdown error", "error", err)
			}
		}()
	}

	versionChecker := NewVersionChecker()
	defer versionChecker.Stop()

	_ = events.LogCapture(eventlog.CaptureStarted, "capture started", &eventlog.CaptureDetails{
		Device:          device.Name,
		SampleRate:      stream.SampleRate(),
		Channels:        stream.Channels(),
		FramesPerBuffer: stream.FramesPerBuffer(),
	})

	loop := &captureLoop{
		fl:       fl,
		cfg:      cfg,
		sink:     sink,
		events:   events,
		monitor:  levelServer,
		detector: audio.NewSilenceDetector(),
		peaks:    audio.NewPeakHolder(0),
		channels: stream.Channels(),
	}

	runErr := stream.Run(ctx, loop.handleBlock)

	exitCode := 0
	if runErr != nil {
		slog.Error("capture failed", "error", runErr)
		_ = events.LogCapture(eventlog.CaptureStopped, "capture failed", &eventlog.CaptureDetails{
			FramesCaptured: loop.totalFrames,
			Error:          runErr.Error(),
		})
		exitCode = 1
	} else {
		slog.Info("capture stopped", "frames", loop.totalFrames)
		_ = events.LogCapture(eventlog.CaptureStopped, "capture stopped", &eventlog.CaptureDetails{
			FramesCaptured: loop.totalFrames,
		})
	}

	if err := sink.finish(); err != nil {
		slog.Error("error finalizing output", "error", err)
		exitCode = 1
	}

	if recorder != nil {
		finishRecording(cfg, events, recorder)
	}

	return exitCode
}

// outputSink delivers captured blocks to stdout or a WAV recorder.
type outputSink struct {
	write  func(samples []int16) error
	finish func() error
}

// resolveOutput decides where captured audio goes. A recording directory from
// the config replaces the default stdout stream only when --output was not
// supplied; an explicit "-o -" always streams to stdout.
func resolveOutput(output string, outputSeen bool, cfg *config.Config) string {
	if output == "-" && !outputSeen && cfg.Recording.Directory != "" {
		return cfg.Recording.Directory
	}
	return output
}

// openSink opens the capture destination. "-" streams raw PCM to stdout.
// A .wav path records to that exact file, any other path is a recording
// directory with a dated filename.
func openSink(output string, stream *audio.Capture) (*outputSink, *record.Recorder, error) {
	if output == "-" {
		w := bufio.NewWriterSize(os.Stdout, 1<<16)
		var pcm []byte
		return &outputSink{
			write: func(samples []int16) error {
				pcm = audio.S16LEBytes(pcm[:0], samples)
				_, err := w.Write(pcm)
				return err
			},
			finish: w.Flush,
		}, nil, nil
	}

	if err := util.ValidatePath("output", output); err != nil {
		return nil, nil, err
	}

	var rec *record.Recorder
	var err error
	if strings.HasSuffix(strings.ToLower(output), ".wav") {
		rec, err = record.New(output, stream.SampleRate(), stream.Channels())
	} else {
		rec, err = record.NewInDirectory(output, stream.SampleRate(), stream.Channels())
	}
	if err != nil {
		return nil, nil, err
	}
	slog.Info("recording to file", "path", rec.Path())
	return &outputSink{write: rec.Write, finish: rec.Close}, rec, nil
}

// captureLoop holds the per-session state threaded through each block.
type captureLoop struct {
	fl       *flagValues
	cfg      *config.Config
	sink     *outputSink
	events   *eventlog.Logger
	monitor  *monitor.Server
	detector *audio.SilenceDetector
	peaks    *audio.PeakHolder
	channels int

	levelData   audio.LevelData
	lastMeter   time.Time
	totalFrames int64
}

// handleBlock writes one captured block to the sink and updates metering.
func (l *captureLoop) handleBlock(samples []int16, frames int) error {
	if err := l.sink.write(samples); err != nil {
		return util.WrapError("write output", err)
	}
	l.totalFrames += int64(frames)

	audio.ProcessBlock(samples, l.channels, &l.levelData)

	now := time.Now()
	if now.Sub(l.lastMeter) < meterInterval {
		return nil
	}
	l.lastMeter = now

	levels := audio.CalculateLevels(&l.levelData)
	l.levelData.Reset()

	heldL, heldR := l.peaks.Update(levels.PeakLeft, levels.PeakRight, now)

	silCfg := audio.SilenceConfig{
		Threshold:  l.cfg.Silence.ThresholdDB,
		DurationMs: l.cfg.Silence.DurationMs,
		RecoveryMs: l.cfg.Silence.RecoveryMs,
	}
	event := l.detector.Update(levels.RMSLeft, levels.RMSRight, silCfg, now)

	if l.monitor != nil {
		l.monitor.Publish(audio.AudioLevels{
			Left:              levels.RMSLeft,
			Right:             levels.RMSRight,
			PeakLeft:          heldL,
			PeakRight:         heldR,
			Silence:           event.InSilence,
			SilenceDurationMs: event.DurationMs,
			SilenceLevel:      event.Level,
			ClipLeft:          levels.ClipLeft,
			ClipRight:         levels.ClipRight,
		})
	}

	if l.fl.verbose {
		slog.Info("levels",
			"left_db", fmt.Sprintf("%.1f", levels.RMSLeft),
			"right_db", fmt.Sprintf("%.1f", levels.RMSRight),
			"peak_left_db", fmt.Sprintf("%.1f", heldL),
			"peak_right_db", fmt.Sprintf("%.1f", heldR))
	}

	if event.JustEntered {
		slog.Warn("silence detected",
			"left_db", levels.RMSLeft, "right_db", levels.RMSRight,
			"threshold_db", silCfg.Threshold)
		_ = l.events.LogSilenceStart(levels.RMSLeft, levels.RMSRight, silCfg.Threshold)
		if url := l.cfg.Notifications.Webhook.URL; url != "" {
			go util.LogNotifyResult(func() error {
				return notify.SendSilenceWebhook(url, levels.RMSLeft, levels.RMSRight, silCfg.Threshold)
			}, "silence webhook")
		}
	}

	if event.JustRecovered {
		slog.Info("audio recovered", "silence_duration_ms", event.TotalDurationMs)
		_ = l.events.LogSilenceEnd(event.TotalDurationMs, levels.RMSLeft, levels.RMSRight, silCfg.Threshold)
		if url := l.cfg.Notifications.Webhook.URL; url != "" {
			go util.LogNotifyResult(func() error {
				return notify.SendRecoveryWebhook(url, event.TotalDurationMs, silCfg.Threshold)
			}, "recovery webhook")
		}
	}

	return nil
}

// finishRecording logs the finished file, uploads it when S3 is configured
// and prunes old recordings past the retention window.
func finishRecording(cfg *config.Config, events *eventlog.Logger, rec *record.Recorder) {
	info, err := os.Stat(rec.Path())
	var size int64
	if err == nil {
		size = info.Size()
	}
	slog.Info("recording finished", "path", rec.Path(), "frames", rec.Frames(), "size_bytes", size)
	_ = events.LogRecording(eventlog.RecordingFinished, &eventlog.RecordingDetails{
		Filename:  rec.Path(),
		SizeBytes: size,
	})

	if cfg.Recording.S3.IsConfigured() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		key, err := record.Upload(ctx, &cfg.Recording.S3, rec.Path())
		if err != nil {
			slog.Error("upload failed", "path", rec.Path(), "error", err)
			_ = events.LogRecording(eventlog.UploadFailed, &eventlog.RecordingDetails{
				Filename: rec.Path(),
				Error:    err.Error(),
			})
		} else {
			slog.Info("recording uploaded", "bucket", cfg.Recording.S3.Bucket, "key", key)
			_ = events.LogRecording(eventlog.UploadCompleted, &eventlog.RecordingDetails{
				Filename: rec.Path(),
				S3Key:    key,
			})
		}
	}

	if cfg.Recording.Directory != "" && cfg.Recording.RetentionDays > 0 {
		deleted, err := record.CleanupOldRecordings(cfg.Recording.Directory, cfg.Recording.RetentionDays)
		if err != nil {
			slog.Error("cleanup failed", "error", err)
			return
		}
		if deleted > 0 {
			slog.Info("old recordings removed", "count", deleted)
			_ = events.LogRecording(eventlog.CleanupCompleted, &eventlog.RecordingDetails{
				FilesDeleted: deleted,
			})
		}
	}
}
