package policy

import (
	"nihil/internal/nullness"
)

// Table holds the three independently tunable origin axes. It decodes
// directly from the [nullness] section of a unit manifest.
type Table struct {
	// Nullable governs mismatches whose offending value is tracked
	// nullable.
	Nullable Level `toml:"nullable"`
	// NonNull governs mismatches contradicting a non-null declaration.
	NonNull Level `toml:"nonnull"`
	// Oblivious governs mismatches rooted in unchecked foreign code.
	Oblivious Level `toml:"oblivious"`
}

// Legacy is the default for units that predate checking: everything
// off, so adopting the toolchain never makes an old build noisier.
func Legacy() Table {
	return Table{}
}

// Fresh is the default written into new unit manifests.
func Fresh() Table {
	return Table{Nullable: LevelWarn, NonNull: LevelWarn, Oblivious: LevelWarn}
}

// Resolve picks the axis setting for a mismatch origin.
func (t Table) Resolve(o nullness.Origin) Level {
	switch o {
	case nullness.OriginNullable:
		return t.Nullable
	case nullness.OriginNonNull:
		return t.NonNull
	case nullness.OriginOblivious:
		return t.Oblivious
	}
	return LevelOff
}
