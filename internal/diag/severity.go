package diag

// Severity ranks how much a diagnostic matters. Mismatch sites never
// fix it; classification resolves it from the unit's policy, so the
// same finding can be silent in one unit and fatal in another.
type Severity uint8

const (
	// SevInfo carries engine output such as timing reports.
	SevInfo Severity = iota
	// SevWarning marks findings the unit's policy tolerates.
	SevWarning
	// SevError marks findings that fail the check.
	SevError
)

// FailsCheck reports whether one diagnostic of this severity makes
// the unit fail its check.
func (s Severity) FailsCheck() bool {
	return s >= SevError
}

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
