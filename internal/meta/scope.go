package meta

import "nihil/internal/nullness"

// ScopeState is the checking marker attached to a unit or declaration.
// Inherit defers to the enclosing scope; the root scope defaults to
// Disabled when it inherits.
type ScopeState uint8

const (
	ScopeInherit ScopeState = iota
	ScopeEnabled
	ScopeDisabled
)

func (s ScopeState) String() string {
	switch s {
	case ScopeInherit:
		return "inherit"
	case ScopeEnabled:
		return "enabled"
	case ScopeDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the three declared states.
func (s ScopeState) Valid() bool {
	return s <= ScopeDisabled
}

// Scope is a resolved checking scope. Unlike ScopeState it has no
// inherit form: resolution happens when a scope is constructed, so a
// Scope always knows whether checking is on.
type Scope struct {
	enabled bool
}

// RootScope resolves a compilation-root marker. Inherit at the root
// means disabled.
func RootScope(marker ScopeState) Scope {
	return Scope{enabled: marker == ScopeEnabled}
}

// Child resolves a nested marker against s.
func (s Scope) Child(marker ScopeState) Scope {
	switch marker {
	case ScopeEnabled:
		return Scope{enabled: true}
	case ScopeDisabled:
		return Scope{enabled: false}
	default:
		return s
	}
}

// Enabled reports whether checking is on in this scope.
func (s Scope) Enabled() bool {
	return s.enabled
}

// Default is the nullness an unmarked reference position takes in this
// scope: non-null under checking, oblivious outside it.
func (s Scope) Default() nullness.Value {
	if s.enabled {
		return nullness.NonNull
	}
	return nullness.Oblivious
}
