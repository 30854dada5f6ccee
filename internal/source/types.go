package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about how a source file was acquired.
	FileFlags uint8
)

const (
	// FileVirtual marks a file that came from memory rather than disk:
	// a test snippet or a file embedded in an analysis bundle.
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM marks a file whose UTF-8 byte order mark was stripped.
	FileHadBOM
	// FileNormalizedCRLF marks a file whose line endings were rewritten
	// to bare LF. Offsets always index the normalized content.
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string   // normalized with forward slashes
	Content []byte   // normalized bytes spans index into
	LineIdx []uint32 // byte offset of every '\n' in Content
	Hash    [32]byte // content fingerprint, folds identical re-adds
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
