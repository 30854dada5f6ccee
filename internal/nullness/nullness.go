// Package nullness defines the four-state nullability lattice and the
// single compatibility check every nullability decision flows through.
//
// The states order as NonNull < Nullable < Oblivious < Unresolved.
// Meet combines knowledge at narrowing points and picks the smaller
// state; with this order meet(Nullable, Oblivious) = Nullable, which is
// the consumer-facing choice: when tracked and untracked nullability
// disagree, the value stays warnable. Join combines facts at control
// flow merges and moves the other way: a binding is NonNull after a
// merge only when every incoming edge established it.
package nullness

// Value is the inferred or declared nullability of one reference
// position.
type Value uint8

const (
	// NonNull: the value is statically known to never be null here.
	NonNull Value = iota
	// Nullable: the value may be null and uses must be guarded.
	Nullable
	// Oblivious: the value comes from a unit compiled without
	// nullability checking; it mixes with both sides silently.
	Oblivious
	// Unresolved: inference has not committed this position yet.
	// Must not survive past a generalization boundary.
	Unresolved
)

func (v Value) String() string {
	switch v {
	case NonNull:
		return "nonnull"
	case Nullable:
		return "nullable"
	case Oblivious:
		return "oblivious"
	case Unresolved:
		return "unresolved"
	}
	return "invalid"
}

// IsConcrete reports whether v is a committed state.
func (v Value) IsConcrete() bool {
	return v < Unresolved
}

// Meet returns the greatest lower bound of a and b: the smaller state
// under NonNull < Nullable < Oblivious < Unresolved. NonNull absorbs
// everything.
func Meet(a, b Value) Value {
	if a <= b {
		return a
	}
	return b
}

// joinRank orders states by how much nullability they carry across a
// merge. Oblivious sits between NonNull and Nullable so a path that
// proved NonNull loses to an untracked path, and an untracked path
// loses to a tracked nullable one.
var joinRank = [4]uint8{
	NonNull:    0,
	Oblivious:  1,
	Nullable:   2,
	Unresolved: 3,
}

// Join combines facts arriving at a control flow merge. The result
// keeps a state only when no incoming edge carries a more nullable
// one; joining Nullable with Oblivious yields Nullable, same as Meet.
func Join(a, b Value) Value {
	if joinRank[a] >= joinRank[b] {
		return a
	}
	return b
}
