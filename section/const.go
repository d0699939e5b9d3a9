package section

const (
	// BootstrapSize is the size of the fixed header at the start of a file.
	BootstrapSize = 88

	// MagicSize is the size of the magic literal.
	MagicSize = 8

	// TOCEntrySize is the size of one table-of-contents entry: a 16-byte
	// null-padded name, an 8-byte start offset and an 8-byte size.
	TOCEntrySize = SectionNameSize + 16

	// SectionNameSize is the fixed size of a section name field.
	SectionNameSize = 16

	// ValueRepSize is the size of an encoded value descriptor.
	ValueRepSize = 8
)

// Magic is the 8-byte literal every crate file starts with.
var Magic = [MagicSize]byte{'P', 'X', 'R', '-', 'U', 'S', 'D', 'C'}

// Supported version range: major 0, minor 4 through 10 inclusive. Files are
// written as 0.8.0.
const (
	SupportedMajor = 0
	MinMinor       = 4
	MaxMinor       = 10

	WriteMajor = 0
	WriteMinor = 8
	WritePatch = 0
)

// Structural section names, in dependency order: later sections reference
// tokens and strings resolved by earlier ones.
const (
	TokensSectionName    = "TOKENS"
	StringsSectionName   = "STRINGS"
	FieldsSectionName    = "FIELDS"
	FieldSetsSectionName = "FIELDSETS"
	PathsSectionName     = "PATHS"
	SpecsSectionName     = "SPECS"
)

// RequiredSections lists the sections a decoder must locate, in the order
// they must be processed regardless of their physical order in the TOC.
var RequiredSections = []string{
	TokensSectionName,
	StringsSectionName,
	FieldsSectionName,
	FieldSetsSectionName,
	PathsSectionName,
	SpecsSectionName,
}

// InvalidIndex is the all-ones index used wherever "no entry" must be
// representable: it terminates field-set runs and marks unresolvable slots.
const InvalidIndex uint32 = 0xFFFFFFFF
