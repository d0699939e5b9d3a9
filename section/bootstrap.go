package section

import (
	"bytes"
	"fmt"

	"github.com/scenekit/crate/endian"
	"github.com/scenekit/crate/errs"
)

// Bootstrap is the fixed 88-byte header at the start of every crate file:
// the magic literal, three version bytes (major/minor/patch) plus five
// reserved bytes, the absolute offset of the table of contents, and 64
// reserved bytes.
type Bootstrap struct {
	Major uint8
	Minor uint8
	Patch uint8

	// TOCOffset is the absolute byte offset of the table of contents.
	TOCOffset uint64
}

// NewBootstrap returns a Bootstrap carrying the version written by this
// implementation. The TOC offset is patched in once the writer knows it.
func NewBootstrap() Bootstrap {
	return Bootstrap{Major: WriteMajor, Minor: WriteMinor, Patch: WritePatch}
}

// Parse parses the bootstrap from the start of data and validates the magic
// and the version range.
//
// Parameters:
//   - data: File buffer (must be at least BootstrapSize bytes)
//
// Returns:
//   - error: errs.ErrInvalidBootstrapSize, errs.ErrInvalidMagic or
//     errs.ErrUnsupportedVersion
func (b *Bootstrap) Parse(data []byte) error {
	if len(data) < BootstrapSize {
		return errs.ErrInvalidBootstrapSize
	}
	if !bytes.Equal(data[:MagicSize], Magic[:]) {
		return errs.ErrInvalidMagic
	}

	b.Major = data[8]
	b.Minor = data[9]
	b.Patch = data[10]
	// Bytes 11-15 are reserved.

	engine := endian.GetLittleEndianEngine()
	b.TOCOffset = engine.Uint64(data[16:24])
	// Bytes 24-87 are reserved.

	if b.Major != SupportedMajor || b.Minor < MinMinor || b.Minor > MaxMinor {
		return fmt.Errorf("%w: %d.%d.%d", errs.ErrUnsupportedVersion, b.Major, b.Minor, b.Patch)
	}

	return nil
}

// Bytes serializes the bootstrap into a fresh BootstrapSize-byte slice with
// all reserved bytes zeroed.
func (b *Bootstrap) Bytes() []byte {
	out := make([]byte, BootstrapSize)
	copy(out, Magic[:])
	out[8] = b.Major
	out[9] = b.Minor
	out[10] = b.Patch

	engine := endian.GetLittleEndianEngine()
	engine.PutUint64(out[16:24], b.TOCOffset)

	return out
}

// Version returns the version as a printable string.
func (b *Bootstrap) Version() string {
	return fmt.Sprintf("%d.%d.%d", b.Major, b.Minor, b.Patch)
}
