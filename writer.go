package crate

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/scenekit/crate/compress"
	"github.com/scenekit/crate/encoding"
	"github.com/scenekit/crate/endian"
	"github.com/scenekit/crate/errs"
	"github.com/scenekit/crate/internal/options"
	"github.com/scenekit/crate/internal/pool"
	"github.com/scenekit/crate/scene"
	"github.com/scenekit/crate/section"
)

// defaultArrayCompressionThreshold is the element count below which numeric
// arrays are stored literally: the codec headers cost more than they save
// on tiny arrays.
const defaultArrayCompressionThreshold = 16

// maxFloatTableSize caps the lookup-table float scheme: past this many
// distinct values the table plus index array stops beating literal storage.
const maxFloatTableSize = 1024

type writerConfig struct {
	dedup             bool
	compressThreshold int
	minor             uint8
	patch             uint8
}

// WriterOption configures the writer.
type WriterOption = options.Option[*writerConfig]

// WithDeduplication enables or disables payload deduplication. Enabled by
// default: identical payload runs (repeated defaults, shared arrays) are
// stored once and referenced by every descriptor that carries them.
func WithDeduplication(enabled bool) WriterOption {
	return options.NoError(func(cfg *writerConfig) {
		cfg.dedup = enabled
	})
}

// WithArrayCompressionThreshold sets the minimum element count at which
// numeric arrays are stored through the compressing codecs.
func WithArrayCompressionThreshold(n int) WriterOption {
	return options.New(func(cfg *writerConfig) error {
		if n < 1 {
			return fmt.Errorf("array compression threshold must be positive, got %d", n)
		}
		cfg.compressThreshold = n

		return nil
	})
}

// WithVersion sets the declared format version of the output file. The
// minor version must lie in the readable 0.4-0.10 range; the section
// layout written is the same at every declared version.
func WithVersion(minor, patch uint8) WriterOption {
	return options.New(func(cfg *writerConfig) error {
		if minor < section.MinMinor || minor > section.MaxMinor {
			return fmt.Errorf("version 0.%d.%d outside the writable 0.%d-0.%d range",
				minor, patch, section.MinMinor, section.MaxMinor)
		}
		cfg.minor = minor
		cfg.patch = patch

		return nil
	})
}

// blobSpan locates one deduplicated payload run in the output buffer.
type blobSpan struct {
	off  uint64
	size uint64
}

// fileWriter accumulates one output file. Payload runs are appended to buf
// directly after the bootstrap placeholder, so a descriptor's payload field
// is simply the run's absolute offset; the six sections, the table of
// contents and finally the patched bootstrap follow once every value is
// placed.
type fileWriter struct {
	engine endian.EndianEngine
	cfg    writerConfig
	buf    *pool.ByteBuffer

	tokens     []string
	tokenIndex map[string]uint32

	strs     []uint32
	strIndex map[string]uint32

	fields     []field
	fieldIndex map[field]uint32

	fieldSets     []uint32
	fieldSetIndex map[string]uint32

	specs []specRow

	// slots maps every collected path to its table slot, fixed before any
	// value is encoded so path-valued fields can resolve.
	slots map[scene.Path]uint32

	pathIndexes         []uint32
	elementTokenIndexes []int32
	jumps               []int32

	dedup map[uint64][]blobSpan
}

func newFileWriter(opts ...WriterOption) (*fileWriter, error) {
	cfg := writerConfig{
		dedup:             true,
		compressThreshold: defaultArrayCompressionThreshold,
		minor:             section.WriteMinor,
		patch:             section.WritePatch,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	w := &fileWriter{
		engine: endian.GetLittleEndianEngine(),
		cfg:    cfg,
		buf:    pool.GetFileBuffer(),

		tokenIndex:    make(map[string]uint32),
		strIndex:      make(map[string]uint32),
		fieldIndex:    make(map[field]uint32),
		fieldSetIndex: make(map[string]uint32),
		dedup:         make(map[uint64][]blobSpan),
	}

	// Bootstrap placeholder; patched with the TOC offset at the end.
	w.buf.MustWrite(make([]byte, section.BootstrapSize))

	// Token slot zero is the empty token, so a zero descriptor payload
	// never aliases a real name.
	w.internToken("")

	return w, nil
}

func (w *fileWriter) release() {
	pool.PutFileBuffer(w.buf)
	w.buf = nil
}

func (w *fileWriter) internToken(s string) uint32 {
	if i, ok := w.tokenIndex[s]; ok {
		return i
	}

	i := uint32(len(w.tokens)) //nolint:gosec
	w.tokens = append(w.tokens, s)
	w.tokenIndex[s] = i

	return i
}

func (w *fileWriter) internString(s string) uint32 {
	if i, ok := w.strIndex[s]; ok {
		return i
	}

	i := uint32(len(w.strs)) //nolint:gosec
	w.strs = append(w.strs, w.internToken(s))
	w.strIndex[s] = i

	return i
}

// addField interns one (token, descriptor) pair; identical fields across
// specs share a single table entry.
func (w *fileWriter) addField(f field) uint32 {
	if i, ok := w.fieldIndex[f]; ok {
		return i
	}

	i := uint32(len(w.fields)) //nolint:gosec
	w.fields = append(w.fields, f)
	w.fieldIndex[f] = i

	return i
}

// addFieldSet appends a sentinel-terminated run of field indices and
// returns the run's starting offset. Identical runs are shared.
func (w *fileWriter) addFieldSet(indices []uint32) uint32 {
	key := make([]byte, 0, len(indices)*4)
	for _, idx := range indices {
		key = w.engine.AppendUint32(key, idx)
	}

	if i, ok := w.fieldSetIndex[string(key)]; ok {
		return i
	}

	i := uint32(len(w.fieldSets)) //nolint:gosec
	w.fieldSets = append(w.fieldSets, indices...)
	w.fieldSets = append(w.fieldSets, section.InvalidIndex)
	w.fieldSetIndex[string(key)] = i

	return i
}

func (w *fileWriter) addSpec(pathIndex uint32, fieldSetIndex uint32, t section.SpecType) {
	w.specs = append(w.specs, specRow{
		PathIndex:     pathIndex,
		FieldSetIndex: fieldSetIndex,
		Type:          t,
	})
}

// writeBlob appends one payload run and returns its absolute offset. With
// deduplication enabled, a run whose bytes already exist in the buffer is
// not appended again; the hash narrows the candidates and an exact byte
// compare confirms, so collisions cannot alias distinct payloads.
func (w *fileWriter) writeBlob(data []byte) uint64 {
	if w.cfg.dedup {
		sum := xxhash.Sum64(data)
		for _, span := range w.dedup[sum] {
			if string(w.buf.Slice(int(span.off), int(span.off+span.size))) == string(data) {
				return span.off
			}
		}

		off := uint64(len(w.buf.B))
		w.buf.MustWrite(data)
		w.dedup[sum] = append(w.dedup[sum], blobSpan{off: off, size: uint64(len(data))})

		return off
	}

	off := uint64(len(w.buf.B))
	w.buf.MustWrite(data)

	return off
}

// finish serializes the six sections, the table of contents and the
// bootstrap, returning the complete file image.
func (w *fileWriter) finish() ([]byte, error) {
	sections := []struct {
		name  string
		bytes func() []byte
	}{
		{section.TokensSectionName, w.tokensSection},
		{section.StringsSectionName, w.stringsSection},
		{section.FieldsSectionName, w.fieldsSection},
		{section.FieldSetsSectionName, w.fieldSetsSection},
		{section.PathsSectionName, w.pathsSection},
		{section.SpecsSectionName, w.specsSection},
	}

	toc := section.TOC{Sections: make([]section.Section, 0, len(sections))}
	for _, s := range sections {
		body := s.bytes()
		start := uint64(len(w.buf.B))
		w.buf.MustWrite(body)
		toc.Sections = append(toc.Sections, section.Section{
			Name:  s.name,
			Start: start,
			Size:  uint64(len(body)),
		})
	}

	tocOffset := uint64(len(w.buf.B))
	tocBytes, err := toc.Bytes()
	if err != nil {
		return nil, err
	}
	w.buf.MustWrite(tocBytes)

	bootstrap := section.NewBootstrap()
	bootstrap.Minor = w.cfg.minor
	bootstrap.Patch = w.cfg.patch
	bootstrap.TOCOffset = tocOffset
	copy(w.buf.Slice(0, section.BootstrapSize), bootstrap.Bytes())

	out := make([]byte, w.buf.Len())
	copy(out, w.buf.B)

	return out, nil
}

// tokensSection serializes the token table: count, uncompressed size,
// compressed size, then the null-terminated names - block-compressed when
// that actually shrinks them.
func (w *fileWriter) tokensSection() []byte {
	raw := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(raw)

	for _, t := range w.tokens {
		raw.MustWrite([]byte(t))
		raw.MustWrite([]byte{0})
	}

	compressed := compress.Compress(raw.B)

	out := make([]byte, 0, 24+len(compressed))
	out = w.engine.AppendUint64(out, uint64(len(w.tokens)))
	out = w.engine.AppendUint64(out, uint64(raw.Len()))
	if len(compressed) < raw.Len() {
		out = w.engine.AppendUint64(out, uint64(len(compressed)))
		out = append(out, compressed...)
	} else {
		out = w.engine.AppendUint64(out, 0)
		out = append(out, raw.B...)
	}

	return out
}

func (w *fileWriter) stringsSection() []byte {
	out := make([]byte, 0, 8+len(w.strs)*4)
	out = w.engine.AppendUint64(out, uint64(len(w.strs)))
	for _, idx := range w.strs {
		out = w.engine.AppendUint32(out, idx)
	}

	return out
}

// fieldsSection serializes the field table: a delta-coded run of token
// indices followed by the block-compressed 8-byte descriptors.
func (w *fileWriter) fieldsSection() []byte {
	indices := make([]uint32, len(w.fields))
	reps := make([]byte, 0, len(w.fields)*section.ValueRepSize)
	for i, f := range w.fields {
		indices[i] = f.TokenIndex
		reps = w.engine.AppendUint64(reps, uint64(f.Rep))
	}

	out := w.engine.AppendUint64(nil, uint64(len(w.fields)))
	out = appendRun(w.engine, out, encoding.EncodeInts(indices))

	compressed := compress.Compress(reps)
	if len(compressed) < len(reps) {
		out = w.engine.AppendUint64(out, uint64(len(compressed)))
		out = append(out, compressed...)
	} else {
		out = w.engine.AppendUint64(out, uint64(len(reps)))
		out = append(out, reps...)
	}

	return out
}

func (w *fileWriter) fieldSetsSection() []byte {
	out := w.engine.AppendUint64(nil, uint64(len(w.fieldSets)))

	return appendRun(w.engine, out, encoding.EncodeInts(w.fieldSets))
}

func (w *fileWriter) pathsSection() []byte {
	out := w.engine.AppendUint64(nil, uint64(len(w.pathIndexes)))
	out = appendRun(w.engine, out, encoding.EncodeInts(w.pathIndexes))
	out = appendRun(w.engine, out, encoding.EncodeInts(asUint32(w.elementTokenIndexes)))

	return appendRun(w.engine, out, encoding.EncodeInts(asUint32(w.jumps)))
}

func (w *fileWriter) specsSection() []byte {
	pathIdx := make([]uint32, len(w.specs))
	fieldSetIdx := make([]uint32, len(w.specs))
	specTypes := make([]uint32, len(w.specs))
	for i, s := range w.specs {
		pathIdx[i] = s.PathIndex
		fieldSetIdx[i] = s.FieldSetIndex
		specTypes[i] = uint32(s.Type)
	}

	out := w.engine.AppendUint64(nil, uint64(len(w.specs)))
	out = appendRun(w.engine, out, encoding.EncodeInts(pathIdx))
	out = appendRun(w.engine, out, encoding.EncodeInts(fieldSetIdx))

	return appendRun(w.engine, out, encoding.EncodeInts(specTypes))
}

// appendRun appends a size-prefixed byte run.
func appendRun(engine endian.EndianEngine, dst, run []byte) []byte {
	dst = engine.AppendUint64(dst, uint64(len(run)))

	return append(dst, run...)
}

func asUint32(v []int32) []uint32 {
	out := make([]uint32, len(v))
	for i, x := range v {
		out[i] = uint32(x) //nolint:gosec
	}

	return out
}

// writeDocument encodes doc into a complete file image.
func writeDocument(doc *scene.Document, opts ...WriterOption) ([]byte, error) {
	if doc == nil || doc.Root == nil {
		return nil, errs.ErrNilDocument
	}

	w, err := newFileWriter(opts...)
	if err != nil {
		return nil, err
	}
	defer w.release()

	tree := collectPaths(doc)
	w.pathIndexes, w.elementTokenIndexes, w.jumps, w.slots = flattenPathTree(tree, w.internToken)

	w.flattenDocument(doc)

	return w.finish()
}
