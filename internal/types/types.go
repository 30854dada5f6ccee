package types

import "fmt"

// TypeID uniquely identifies a structural type inside the interner.
// Nullability never participates in structural identity: string and
// nullable string share one TypeID and differ only in the slot vector
// carried alongside (see Ref).
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindString
	KindNamed
	KindArray
	KindOption
	KindFn
	KindParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindNamed:
		return "named"
	case KindArray:
		return "array"
	case KindOption:
		return "option"
	case KindFn:
		return "fn"
	case KindParam:
		return "param"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type. Content-bearing
// kinds (named, fn, param) keep their metadata in aux tables addressed
// by Payload.
type Type struct {
	Kind    Kind
	Elem    TypeID // array element / option payload
	Payload uint32 // aux table slot for named/fn/param kinds
}

// MakeArray describes an array of the element type.
func MakeArray(elem TypeID) Type {
	return Type{Kind: KindArray, Elem: elem}
}

// MakeOption describes an option wrapper around a value-kind payload.
// Nullability of reference kinds is not expressed this way; options
// exist for value payloads only.
func MakeOption(elem TypeID) Type {
	return Type{Kind: KindOption, Elem: elem}
}
