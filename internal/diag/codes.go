package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Metadata: nullability interface files and markers.
	MetaInfo            Code = 1000
	MetaBadSchema       Code = 1001
	MetaBadMarkerCount  Code = 1002
	MetaBadTypeNode     Code = 1003
	MetaUnknownBehavior Code = 1004
	MetaBadScopeState   Code = 1005
	MetaDuplicateEntry  Code = 1006

	// Unit: analysis bundles and manifests.
	UnitInfo          Code = 2000
	UnitBadBundle     Code = 2001
	UnitDuplicateSig  Code = 2002
	UnitUnknownSig    Code = 2003
	UnitUnknownImport Code = 2004
	UnitBadManifest   Code = 2005
	UnitBadFunc       Code = 2006

	// Nullability analysis.
	NulInfo             Code = 3000
	NulAssignedNonNull  Code = 3001
	NulNullableDeref    Code = 3002
	NulUnsafeCast       Code = 3003
	NulGenericMismatch  Code = 3004
	NulIntentConflict   Code = 3005
	NulParamKindUnknown Code = 3006
	NulUnresolvedEscape Code = 3007

	// I/O.
	IOLoadFileError Code = 4001

	// Observability.
	ObsInfo    Code = 5000
	ObsTimings Code = 5001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:         "Unknown error",
		MetaInfo:            "Metadata information",
		MetaBadSchema:       "Unsupported metadata schema version",
		MetaBadMarkerCount:  "Marker count does not match reference positions",
		MetaBadTypeNode:     "Malformed type node in metadata",
		MetaUnknownBehavior: "Unknown behavioral annotation",
		MetaBadScopeState:   "Invalid checking-scope state",
		MetaDuplicateEntry:  "Duplicate metadata entry",
		UnitInfo:            "Unit information",
		UnitBadBundle:       "Malformed analysis bundle",
		UnitDuplicateSig:    "Duplicate signature in unit",
		UnitUnknownSig:      "Call references unknown signature",
		UnitUnknownImport:   "Imported unit not found",
		UnitBadManifest:     "Malformed unit manifest",
		UnitBadFunc:         "Malformed function body",
		NulInfo:             "Nullability information",
		NulAssignedNonNull:  "possible null assigned to a non-null target",
		NulNullableDeref:    "dereference of a possibly null value",
		NulUnsafeCast:       "unsafe narrowing of container nullability",
		NulGenericMismatch:  "type argument violates nullness constraint",
		NulIntentConflict:   "nullability annotation conflicts with declared type",
		NulParamKindUnknown: "cannot apply nullable marker to a parameter of unknown kind",
		NulUnresolvedEscape: "unresolved nullability escaped a generalization boundary",
		IOLoadFileError:     "I/O load file error",
		ObsInfo:             "Observability information",
		ObsTimings:          "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("MET%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("UNT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("NUL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
