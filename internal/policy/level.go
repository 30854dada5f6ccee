// Package policy resolves mismatch findings into diagnostics. The
// table keys severity on the origin axis of each mismatch, never on
// its kind: what the program did decides the wording, where the
// nullability came from decides how loudly to say it. Policy never
// feeds back into the lattice computation.
package policy

import (
	"errors"
	"fmt"
)

// Level is one axis setting: suppress, warn, or fail the compilation.
type Level uint8

const (
	LevelOff Level = iota
	LevelWarn
	LevelError
)

// ErrBadLevel reports an unknown level name in configuration.
var ErrBadLevel = errors.New("policy: unknown level")

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "invalid"
}

// ParseLevel reads a level name as written in manifests.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off":
		return LevelOff, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelOff, fmt.Errorf("%w: %q", ErrBadLevel, s)
}

// MarshalText lets manifests carry levels by name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
