package nullness

// Kind classifies a nullability mismatch by the operation that
// surfaced it.
type Kind uint8

const (
	// KindAssignedNonNull: a possibly null value flowed into a
	// non-null target (assignment, argument, return).
	KindAssignedNonNull Kind = iota
	// KindNullableDeref: member access on a value whose flow fact is
	// not NonNull.
	KindNullableDeref
	// KindUnsafeCast: an array or generic cast narrowed a container's
	// nullability without a check.
	KindUnsafeCast
	// KindGenericMismatch: a type argument violates the nullness
	// constraint of the parameter it instantiates.
	KindGenericMismatch
	// KindIntentConflict: a nullability annotation contradicts the
	// declared non-null type.
	KindIntentConflict
)

func (k Kind) String() string {
	switch k {
	case KindAssignedNonNull:
		return "NullAssignedToNonNull"
	case KindNullableDeref:
		return "NullableDereferenced"
	case KindUnsafeCast:
		return "UnsafeNullableCast"
	case KindGenericMismatch:
		return "GenericInstantiationMismatch"
	case KindIntentConflict:
		return "IntentConflict"
	}
	return "Unknown"
}

// Origin names the side of the lattice a mismatch traces back to. The
// policy table keys severity on it.
type Origin uint8

const (
	// OriginNullable: the offending value is tracked nullable.
	OriginNullable Origin = iota
	// OriginNonNull: a non-null declaration is being contradicted.
	OriginNonNull
	// OriginOblivious: the nullability came from unchecked code.
	OriginOblivious
)

func (o Origin) String() string {
	switch o {
	case OriginNullable:
		return "nullable"
	case OriginNonNull:
		return "nonnull"
	case OriginOblivious:
		return "oblivious"
	}
	return "invalid"
}

// Mismatch is the record Check produces for the warning classifier.
// It carries no severity; policy resolves that later.
type Mismatch struct {
	Kind   Kind
	Origin Origin
}

// WithForeignOrigin reattributes the mismatch to the oblivious axis.
// Used when the offending slot was defaulted from a foreign unit.
func (m Mismatch) WithForeignOrigin() Mismatch {
	m.Origin = OriginOblivious
	return m
}

// Check is the compatibility chokepoint: every expected/actual
// nullness decision in the engine goes through here. It returns the
// mismatch and false when the pair is incompatible for the given
// operation kind, or ok=true when the flow is silent.
//
// Constraint kinds (generic instantiation, intent) read expected as an
// exact demand: the argument must admit what expected names, in either
// direction. Flow kinds read expected as an upper bound on how
// nullable the actual may be. Unresolved always passes; it only
// reaches Check before commit, where no judgment is possible yet.
func Check(kind Kind, expected, actual Value) (Mismatch, bool) {
	switch kind {
	case KindGenericMismatch, KindIntentConflict:
		switch {
		case expected == NonNull && actual == Nullable:
			return Mismatch{Kind: kind, Origin: OriginNullable}, false
		case expected == Nullable && actual == NonNull:
			return Mismatch{Kind: kind, Origin: OriginNonNull}, false
		}

	case KindNullableDeref:
		// Oblivious dereference is silent by construction, not by
		// policy: no mismatch record exists to classify.
		if actual == Nullable {
			return Mismatch{Kind: kind, Origin: OriginNullable}, false
		}

	default:
		if expected == NonNull {
			switch actual {
			case Nullable:
				return Mismatch{Kind: kind, Origin: OriginNullable}, false
			case Oblivious:
				return Mismatch{Kind: kind, Origin: OriginOblivious}, false
			}
		}
	}
	return Mismatch{}, true
}
