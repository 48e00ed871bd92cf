package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpColumnsAlign(t *testing.T) {
	c := New("capture tool")
	var a, b bool
	// Alias blocks of 10 ("-l, --list" contributes 4+12... measured as
	// len+2 per alias) and a longer one; both columns must align to the
	// widest block.
	require.NoError(t, c.AddArgument([]string{"-l", "--list"}, Bool(&a), "list devices"))
	require.NoError(t, c.AddArgument([]string{"-d", "--device-index"}, Bool(&b), "device index"))

	var out bytes.Buffer
	c.PrintHelp(&out)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "capture tool", lines[0])

	// Widest block: (len("-d")+2) + (len("--device-index")+2) = 20.
	assert.Equal(t, 20, strings.Index(lines[1], "list devices"))
	assert.Equal(t, 20, strings.Index(lines[2], "device index"))
}

func TestHelpWrapsLongText(t *testing.T) {
	c := New("capture tool")
	var v bool
	help := "capture signed sixteen bit little endian audio from the selected " +
		"input device and stream the raw bytes to standard output for piping"
	require.NoError(t, c.AddArgument([]string{"--capture"}, Bool(&v), help))

	var out bytes.Buffer
	c.PrintHelp(&out)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Greater(t, len(lines), 2, "long help text must wrap onto continuation lines")

	// Continuation lines carry no alias text, only the column indent.
	indent := strings.Repeat(" ", len("--capture")+2)
	for _, line := range lines[2:] {
		assert.True(t, strings.HasPrefix(line, indent), "continuation line %q not indented", line)
	}

	// Every word survives wrapping.
	assert.ElementsMatch(t,
		strings.Fields(help),
		strings.Fields(strings.TrimPrefix(strings.Join(lines[1:], " "), "--capture")))
}

func TestHelpWithoutSpacesNeverWraps(t *testing.T) {
	c := New("capture tool")
	var v bool
	help := strings.Repeat("x", 80) // longer than the soft width, single word
	require.NoError(t, c.AddArgument([]string{"--flag"}, Bool(&v), help))

	var out bytes.Buffer
	c.PrintHelp(&out)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], help)
}

func TestHelpWithNoArguments(t *testing.T) {
	c := New("capture tool")

	var out bytes.Buffer
	c.PrintHelp(&out)

	assert.Equal(t, "capture tool\n", out.String())
}

func TestHelpShortTextSingleLine(t *testing.T) {
	c := New("capture tool")
	var v bool
	require.NoError(t, c.AddArgument([]string{"-v"}, Bool(&v), "short"))

	var out bytes.Buffer
	c.PrintHelp(&out)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "-v  short", lines[1])
}

// Registering an argument, rendering its help entry and re-parsing its
// primary alias must round-trip the value supplied on the command line.
func TestHelpRoundTrip(t *testing.T) {
	c := New("capture tool")
	var rate float64
	require.NoError(t, c.AddArgument([]string{"--rate", "-r"}, Float64(&rate), "sample rate in hertz"))

	var out bytes.Buffer
	c.PrintHelp(&out)

	entry := strings.Split(out.String(), "\n")[1]
	primary := strings.TrimSuffix(strings.Fields(entry)[0], ",")
	require.Equal(t, "--rate", primary)

	require.NoError(t, c.Parse([]string{"prog", primary + "=48000"}))
	assert.Equal(t, 48000.0, rate)
}
