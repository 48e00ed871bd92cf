package cli

import (
	"fmt"
	"strconv"
)

// valueKind identifies the destination type of a bound value.
type valueKind int

const (
	kindBool valueKind = iota
	kindInt
	kindFloat64
	kindString
)

// Value binds a command-line argument to caller-owned storage. It is a closed
// variant over bool, int, float64 and string destinations; use the Bool, Int,
// Float64 and String constructors to create one.
type Value struct {
	kind valueKind
	b    *bool
	i    *int
	f    *float64
	s    *string
}

// Bool binds an argument to a bool destination.
func Bool(dest *bool) *Value {
	return &Value{kind: kindBool, b: dest}
}

// Int binds an argument to an int destination.
func Int(dest *int) *Value {
	return &Value{kind: kindInt, i: dest}
}

// Float64 binds an argument to a float64 destination.
func Float64(dest *float64) *Value {
	return &Value{kind: kindFloat64, f: dest}
}

// String binds an argument to a string destination.
func String(dest *string) *Value {
	return &Value{kind: kindString, s: dest}
}

// setBool assigns a boolean from its literal. An omitted value means true,
// and any literal other than exactly "false" also means true ("1", "yes" and
// even "xyz" all enable the flag). This mirrors the long-standing behavior of
// the tool and is covered by tests; do not "fix" it quietly.
func (v *Value) setBool(literal string) {
	*v.b = literal != "false"
}

// set decodes literal into the bound destination. Boolean destinations are
// handled separately by the parser because they tolerate an absent value.
func (v *Value) set(literal string) error {
	switch v.kind {
	case kindInt:
		n, err := strconv.Atoi(literal)
		if err != nil {
			return fmt.Errorf("%w: %q is not a valid integer", ErrInvalidValue, literal)
		}
		*v.i = n
	case kindFloat64:
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a valid number", ErrInvalidValue, literal)
		}
		*v.f = f
	case kindString:
		*v.s = literal
	case kindBool:
		v.setBool(literal)
	}
	return nil
}
