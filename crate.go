// Package crate reads and writes the binary scene-description container
// format: a sectioned file of interned tokens, strings, paths, fields and
// specs whose values are 64-bit descriptors carrying small values inline
// and larger ones as offsets into a shared, deduplicated payload region.
//
// ReadDocument decodes a complete file image into a scene.Document;
// WriteDocument encodes one back. Decoding is strict about structure (the
// header, the table of contents and the six required sections must be
// intact) and lenient about values: a descriptor that cannot be
// materialized decodes to scene.Placeholder rather than failing the file.
package crate

import (
	"github.com/scenekit/crate/scene"
)

// ReadDocument decodes a file image into a document.
//
// Parameters:
//   - data: Complete file image
//
// Returns:
//   - *scene.Document: The decoded document
//   - error: errs.ErrInvalidMagic, errs.ErrUnsupportedVersion,
//     errs.ErrCorruptTOC, errs.ErrMissingSection or errs.ErrCorruptSection
func ReadDocument(data []byte) (*scene.Document, error) {
	r, err := newFileReader(data)
	if err != nil {
		return nil, err
	}

	if err := r.readSections(); err != nil {
		return nil, err
	}

	return r.assemble(), nil
}

// WriteDocument encodes a document into a complete file image.
//
// Parameters:
//   - doc: The document to encode (must be non-nil with a root node)
//   - opts: Writer options (WithVersion, WithDeduplication,
//     WithArrayCompressionThreshold)
//
// Returns:
//   - []byte: The encoded file image
//   - error: errs.ErrNilDocument or an option validation error
func WriteDocument(doc *scene.Document, opts ...WriterOption) ([]byte, error) {
	return writeDocument(doc, opts...)
}

// Version reports the format version of a file image without decoding it.
func Version(data []byte) (major, minor, patch uint8, err error) {
	r, err := newFileReader(data)
	if err != nil {
		return 0, 0, 0, err
	}

	return r.bootstrap.Major, r.bootstrap.Minor, r.bootstrap.Patch, nil
}
