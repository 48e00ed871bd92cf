package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath("output", "/var/lib/capture"))
	assert.NoError(t, ValidatePath("output", "recordings"))

	assert.Error(t, ValidatePath("output", ""))
	assert.Error(t, ValidatePath("output", "../etc/passwd"))
	assert.Error(t, ValidatePath("output", "recordings/../../secret"))
}

func TestCheckPathWritable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CheckPathWritable(dir))

	// Nested directories are created on demand.
	require.NoError(t, CheckPathWritable(filepath.Join(dir, "a", "b")))
	assert.DirExists(t, filepath.Join(dir, "a", "b"))
}
