package section

import (
	"bytes"
	"fmt"
	"math"

	"github.com/scenekit/crate/endian"
	"github.com/scenekit/crate/errs"
)

// Section is one table-of-contents entry: a named region of the file.
type Section struct {
	Name  string
	Start uint64
	Size  uint64
}

// End returns the absolute offset one past the section's last byte.
func (s Section) End() uint64 {
	return s.Start + s.Size
}

// TOC is the table of contents stored at the end of a crate file: an 8-byte
// section count followed by fixed-size entries.
type TOC struct {
	Sections []Section
}

// ParseTOC locates and parses the table of contents inside data at the
// given absolute offset, validating every section against the buffer
// bounds.
//
// Parameters:
//   - data: Whole file buffer
//   - offset: Absolute TOC offset from the bootstrap
//
// Returns:
//   - TOC: Parsed table of contents
//   - error: errs.ErrCorruptTOC or errs.ErrSectionBounds
func ParseTOC(data []byte, offset uint64) (TOC, error) {
	engine := endian.GetLittleEndianEngine()

	// The offset comes straight from the bootstrap; compare against the
	// remaining bytes rather than adding to it, so a near-2^64 value cannot
	// wrap past the check.
	if offset < BootstrapSize || offset > uint64(len(data)) || uint64(len(data))-offset < 8 {
		return TOC{}, fmt.Errorf("%w: offset %d outside buffer", errs.ErrCorruptTOC, offset)
	}

	count := engine.Uint64(data[offset : offset+8])
	if count > uint64(len(data))/TOCEntrySize {
		return TOC{}, fmt.Errorf("%w: implausible section count %d", errs.ErrCorruptTOC, count)
	}

	pos := offset + 8
	if pos+count*TOCEntrySize > uint64(len(data)) {
		return TOC{}, fmt.Errorf("%w: truncated entries", errs.ErrCorruptTOC)
	}

	toc := TOC{Sections: make([]Section, 0, count)}
	for i := uint64(0); i < count; i++ {
		entry := data[pos : pos+TOCEntrySize]
		pos += TOCEntrySize

		name := entry[:SectionNameSize]
		if n := bytes.IndexByte(name, 0); n >= 0 {
			name = name[:n]
		}

		sec := Section{
			Name:  string(name),
			Start: engine.Uint64(entry[16:24]),
			Size:  engine.Uint64(entry[24:32]),
		}
		if sec.Start > uint64(len(data)) || sec.Size > uint64(len(data))-sec.Start {
			return TOC{}, fmt.Errorf("%w: section %q [%d,+%d)", errs.ErrSectionBounds, sec.Name, sec.Start, sec.Size)
		}

		toc.Sections = append(toc.Sections, sec)
	}

	return toc, nil
}

// Find returns the section with the given name. Unknown names in the TOC
// are simply never asked for, which is how unrecognized sections are
// ignored.
func (t *TOC) Find(name string) (Section, bool) {
	for _, s := range t.Sections {
		if s.Name == name {
			return s, true
		}
	}

	return Section{}, false
}

// Bytes serializes the table of contents.
//
// Returns:
//   - []byte: Count header plus one fixed-size entry per section
//   - error: If a section name exceeds the fixed name field
func (t *TOC) Bytes() ([]byte, error) {
	engine := endian.GetLittleEndianEngine()

	out := make([]byte, 0, 8+len(t.Sections)*TOCEntrySize)
	out = engine.AppendUint64(out, uint64(len(t.Sections)))

	for _, s := range t.Sections {
		if len(s.Name) > SectionNameSize {
			return nil, fmt.Errorf("section name %q exceeds %d bytes", s.Name, SectionNameSize)
		}

		var name [SectionNameSize]byte
		copy(name[:], s.Name)
		out = append(out, name[:]...)
		out = engine.AppendUint64(out, s.Start)
		out = engine.AppendUint64(out, s.Size)
	}

	return out, nil
}

// CheckedCount validates an element count declared ahead of literal
// fixed-width elements: declared*elemSize must fit in the remaining buffer.
// This guards allocations before anything is read.
func CheckedCount(declared uint64, elemSize int, available int) (int, error) {
	if elemSize <= 0 || available < 0 {
		return 0, fmt.Errorf("%w: element size %d", errs.ErrInvalidCount, elemSize)
	}
	if declared > uint64(available)/uint64(elemSize) {
		return 0, fmt.Errorf("%w: %d elements of %d bytes in %d available", errs.ErrInvalidCount, declared, elemSize, available)
	}

	return int(declared), nil
}

// CheckedCompressedCount validates an element count declared ahead of a
// compressed run. Compression can legitimately describe far more elements
// than the stored bytes, so the bound is the scheme's maximum expansion (a
// length-extension byte adds at most 255 to a copy run, and the integer
// codec spends at least two selector bits per element) with an absolute
// ceiling to keep a corrupt count from driving allocation.
func CheckedCompressedCount(declared uint64, available int) (int, error) {
	const ceiling = 1 << 30

	if available < 0 {
		return 0, fmt.Errorf("%w: negative available size", errs.ErrInvalidCount)
	}

	limit := uint64(available+16) * 255 * 4
	if limit > ceiling {
		limit = ceiling
	}
	if declared > limit || declared > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d compressed elements in %d available", errs.ErrInvalidCount, declared, available)
	}

	return int(declared), nil
}
