// Package errs defines the sentinel errors shared across the crate codec.
//
// Errors come in two tiers. Format errors (bad magic, unsupported version,
// corrupt table of contents) are fatal: they abort the whole decode.
// Per-value corruption is never surfaced through this package at all; a
// malformed value descriptor decodes to scene.Placeholder and decoding of
// the remaining specs continues.
package errs

import "errors"

var (
	// ErrInvalidMagic indicates the buffer does not start with the crate magic.
	ErrInvalidMagic = errors.New("invalid crate magic")

	// ErrUnsupportedVersion indicates a file version outside the supported range.
	ErrUnsupportedVersion = errors.New("unsupported crate version")

	// ErrInvalidBootstrapSize indicates the buffer is shorter than the fixed bootstrap header.
	ErrInvalidBootstrapSize = errors.New("invalid bootstrap size")

	// ErrCorruptTOC indicates the table of contents cannot be located or parsed.
	ErrCorruptTOC = errors.New("corrupt table of contents")

	// ErrMissingSection indicates a required structural section is absent.
	ErrMissingSection = errors.New("missing required section")

	// ErrSectionBounds indicates a section extends past the end of the buffer.
	ErrSectionBounds = errors.New("section out of buffer bounds")

	// ErrCorruptSection indicates a structural section body cannot be decoded.
	ErrCorruptSection = errors.New("corrupt section")

	// ErrDecompressSize indicates decompressed output did not match the declared size.
	ErrDecompressSize = errors.New("unexpected decompressed size")

	// ErrInvalidCount indicates an element count that cannot fit in the buffer.
	ErrInvalidCount = errors.New("invalid element count")

	// ErrNilDocument indicates a nil document was passed to the writer.
	ErrNilDocument = errors.New("nil document")
)
