package cli

import (
	"fmt"
	"io"
	"strings"
)

// helpWrapWidth is the soft line width for help text. A line is flushed once
// the accumulated help text exceeds this width, so the word that crosses the
// boundary still ends the line it started on.
const helpWrapWidth = 60

// PrintHelp writes the description followed by one entry per argument, in
// registration order. The comma-joined aliases are left-aligned into a column
// sized by the longest alias block across all arguments; help text is
// word-wrapped at a 60-character soft width with continuation lines indented
// to the alias column. With no arguments registered, only the description is
// printed.
func (c *CommandLine) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, c.description)

	// Column width: every alias contributes its length plus the ", "
	// separator, the trailing separator included (matches the historical
	// alignment of this tool's help output).
	maxFlagLength := 0
	for _, arg := range c.arguments {
		flagLength := 0
		for _, flag := range arg.flags {
			flagLength += len(flag) + 2
		}
		maxFlagLength = max(maxFlagLength, flagLength)
	}

	for _, arg := range c.arguments {
		line := fmt.Sprintf("%-*s", maxFlagLength, strings.Join(arg.flags, ", "))
		width := 0
		wrapped := false

		for _, word := range strings.Fields(arg.help) {
			if width > 0 {
				line += " "
			}
			line += word
			width += len(word) + 1

			if width > helpWrapWidth {
				fmt.Fprintln(w, line)
				line = strings.Repeat(" ", maxFlagLength)
				width = 0
				wrapped = true
			}
		}

		if width > 0 || !wrapped {
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}
}
