package main

import (
	"os"
	"testing"

	"github.com/oszuidwest/zwfm-capture/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOutput(t *testing.T) {
	cfg := config.New("")
	cfg.Recording.Directory = "/var/lib/capture"

	// Default output falls through to the configured recording directory.
	assert.Equal(t, "/var/lib/capture", resolveOutput("-", false, cfg))

	// An explicit -o - keeps the stdout stream even with a directory configured.
	assert.Equal(t, "-", resolveOutput("-", true, cfg))

	// Explicit paths are never rewritten.
	assert.Equal(t, "out.wav", resolveOutput("out.wav", true, cfg))

	cfg.Recording.Directory = ""
	assert.Equal(t, "-", resolveOutput("-", false, cfg))
}

func TestExplicitStdoutOverridesRecordingDirectory(t *testing.T) {
	cfg := config.New("")
	cfg.Recording.Directory = t.TempDir()

	fl := &flagValues{output: "-"}
	cmd, err := newCommandLine(fl)
	require.NoError(t, err)
	cmd.SetDiagnostics(os.Stderr)

	require.NoError(t, cmd.Parse([]string{"zwfm-capture", "-o", "-"}))
	assert.True(t, cmd.Seen("--output"))
	assert.Equal(t, "-", resolveOutput(fl.output, cmd.Seen("--output"), cfg))
}
