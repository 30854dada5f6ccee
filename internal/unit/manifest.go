package unit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"nihil/internal/meta"
	"nihil/internal/policy"
)

// ManifestName is the file the engine looks for next to a bundle.
const ManifestName = "nihil.toml"

var (
	// ErrNoUnitSection marks a manifest without a [unit] table.
	ErrNoUnitSection = errors.New("unit: missing [unit]")
	// ErrNoUnitName marks a manifest whose [unit] names nothing.
	ErrNoUnitName = errors.New("unit: missing [unit].name")
	// ErrBadMode marks an unknown checking mode string.
	ErrBadMode = errors.New("unit: bad mode")
)

// Manifest mirrors nihil.toml. [unit] names the compilation unit and
// sets its checking mode; [nullness] sets diagnostic severity per
// origin axis.
type Manifest struct {
	Unit     ManifestUnit  `toml:"unit"`
	Nullness *policy.Table `toml:"nullness"`
}

// ManifestUnit is the [unit] table.
type ManifestUnit struct {
	Name string `toml:"name"`
	Mode string `toml:"mode"`
}

// ParseMode maps a manifest mode string to a scope marker. The empty
// string inherits, which at a compilation root means disabled.
func ParseMode(s string) (meta.ScopeState, error) {
	switch s {
	case "", "inherit":
		return meta.ScopeInherit, nil
	case "enabled":
		return meta.ScopeEnabled, nil
	case "disabled":
		return meta.ScopeDisabled, nil
	default:
		return meta.ScopeInherit, fmt.Errorf("%w: %q", ErrBadMode, s)
	}
}

// LoadManifest reads and validates a nihil.toml.
func LoadManifest(path string) (*Manifest, error) {
	var man Manifest
	md, err := toml.DecodeFile(path, &man)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !md.IsDefined("unit") {
		return nil, fmt.Errorf("%s: %w", path, ErrNoUnitSection)
	}
	if strings.TrimSpace(man.Unit.Name) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoUnitName)
	}
	if _, err := ParseMode(man.Unit.Mode); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &man, nil
}

// Mode returns the manifest's scope marker. LoadManifest rejects
// unknown mode strings; on a hand-built manifest they inherit.
func (m *Manifest) Mode() meta.ScopeState {
	if m == nil {
		return meta.ScopeInherit
	}
	mode, err := ParseMode(m.Unit.Mode)
	if err != nil {
		return meta.ScopeInherit
	}
	return mode
}

// Policy returns the severity table for the unit. Without a
// [nullness] section the mode decides: a unit that switched checking
// on warns on every axis, everything else stays silent.
func (m *Manifest) Policy() policy.Table {
	if m == nil {
		return policy.Legacy()
	}
	if m.Nullness != nil {
		return *m.Nullness
	}
	if m.Mode() == meta.ScopeEnabled {
		return policy.Fresh()
	}
	return policy.Legacy()
}
