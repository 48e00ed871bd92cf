// Package cli implements the command-line argument parser for zwfm-capture.
//
// Arguments are registered once with their flag aliases, an optional typed
// destination and a help text, then Parse walks the raw arguments in a single
// left-to-right scan and writes decoded values into the bound destinations.
// Values attach either as --flag=value or as a separate token (--flag value).
// Unknown flags are reported on the diagnostics writer and skipped; a missing
// or malformed value for an argument that requires one aborts the parse.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Registration errors.
var (
	// ErrNoAliases is returned when an argument is registered without flag aliases.
	ErrNoAliases = errors.New("argument has no flag aliases")
	// ErrDuplicateFlag is returned when a flag alias is already registered.
	ErrDuplicateFlag = errors.New("duplicate flag alias")
)

// Parse errors.
var (
	// ErrMissingValue is returned when an argument that requires a value has none.
	ErrMissingValue = errors.New("missing value")
	// ErrInvalidValue is returned when a value cannot be decoded into its destination.
	ErrInvalidValue = errors.New("invalid value")
)

// Argument is a single registered command-line argument. It is immutable
// after registration, except for the found marker set during Parse.
type Argument struct {
	flags []string
	value *Value // nil for presence-only flags
	help  string
	found bool
}

// CommandLine accumulates argument definitions and parses raw command-line
// tokens against them. The registry preserves insertion order, which is also
// the help output order. A CommandLine is built and parsed within a single
// invocation; it is not safe for concurrent use.
type CommandLine struct {
	description string
	arguments   []*Argument
	diag        io.Writer
}

// New returns an empty CommandLine with the given one-line description.
// Diagnostics (unknown-flag warnings) go to os.Stderr by default.
func New(description string) *CommandLine {
	return &CommandLine{
		description: description,
		diag:        os.Stderr,
	}
}

// SetDiagnostics redirects unknown-flag warnings to w.
func (c *CommandLine) SetDiagnostics(w io.Writer) {
	c.diag = w
}

// AddArgument registers a new argument. The flags are the aliases that select
// it (e.g. "-l", "--list-devices"); matching is an exact string comparison, no
// prefix convention is enforced. A nil value registers a presence-only flag.
// Registration fails fast on an empty alias list, an empty alias string, or an
// alias that is already taken, so misconfiguration surfaces before parsing.
func (c *CommandLine) AddArgument(flags []string, value *Value, help string) error {
	if len(flags) == 0 {
		return ErrNoAliases
	}
	for _, flag := range flags {
		if flag == "" {
			return fmt.Errorf("%w: empty alias", ErrNoAliases)
		}
		if c.lookup(flag) != nil || countAlias(flags, flag) > 1 {
			return fmt.Errorf("%w: %q", ErrDuplicateFlag, flag)
		}
	}
	c.arguments = append(c.arguments, &Argument{
		flags: slices.Clone(flags),
		value: value,
		help:  help,
	})
	return nil
}

// Seen reports whether the argument selected by alias was matched during the
// last Parse. It returns false for unregistered aliases.
func (c *CommandLine) Seen(alias string) bool {
	arg := c.lookup(alias)
	return arg != nil && arg.found
}

// Parse scans rawArgs from index 1 onward (index 0 is the program name) and
// decodes each matched flag into its bound destination.
//
// Unknown tokens produce a warning on the diagnostics writer and parsing
// continues. A missing value for an argument that requires one, or a value
// that cannot be decoded, aborts the parse with an error naming the flag.
// Destinations written before the failing token keep their values.
func (c *CommandLine) Parse(rawArgs []string) error {
	i := 1
	for i < len(rawArgs) {
		flag := rawArgs[i]
		value := ""
		attached := false

		// The part after the first '=' is the value; anything beyond a
		// second '=' belongs to the value verbatim.
		if eq := strings.IndexByte(flag, '='); eq >= 0 {
			value = flag[eq+1:]
			flag = flag[:eq]
			attached = true
		}

		arg := c.lookup(flag)
		if arg == nil {
			fmt.Fprintf(c.diag, "Ignoring unknown command line argument %q.\n", flag)
			i++
			continue
		}
		arg.found = true

		advance := 1
		switch {
		case arg.value == nil:
			// Presence-only flag: nothing to decode, nothing consumed.

		case arg.value.kind == kindBool:
			// Booleans tolerate an absent value. A separate token is only
			// treated as the value when it is literally "true" or "false",
			// so "--verbose --list" keeps both flags intact.
			if !attached && i+1 < len(rawArgs) && (rawArgs[i+1] == "true" || rawArgs[i+1] == "false") {
				value = rawArgs[i+1]
				advance = 2
			}
			arg.value.setBool(value)

		default:
			if !attached && i+1 < len(rawArgs) {
				value = rawArgs[i+1]
				advance = 2
			}
			if value == "" {
				return fmt.Errorf("argument %q: %w", flag, ErrMissingValue)
			}
			if err := arg.value.set(value); err != nil {
				return fmt.Errorf("argument %q: %w", flag, err)
			}
		}

		i += advance
	}
	return nil
}

// lookup returns the registered argument containing the given alias, or nil.
func (c *CommandLine) lookup(flag string) *Argument {
	for _, arg := range c.arguments {
		if slices.Contains(arg.flags, flag) {
			return arg
		}
	}
	return nil
}

// countAlias counts occurrences of alias within a single registration.
func countAlias(flags []string, alias string) int {
	n := 0
	for _, f := range flags {
		if f == alias {
			n++
		}
	}
	return n
}
