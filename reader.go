package crate

import (
	"fmt"

	"github.com/scenekit/crate/compress"
	"github.com/scenekit/crate/encoding"
	"github.com/scenekit/crate/endian"
	"github.com/scenekit/crate/errs"
	"github.com/scenekit/crate/scene"
	"github.com/scenekit/crate/section"
)

// field is one (token, value descriptor) pair.
type field struct {
	TokenIndex uint32
	Rep        section.ValueRep
}

// specRow is one spec table entry: what exists at a path and which
// field-set run describes it.
type specRow struct {
	PathIndex     uint32
	FieldSetIndex uint32
	Type          section.SpecType
}

// fileReader holds the working tables of a single decode call. Every call
// allocates its own reader, so concurrent decodes of independent buffers
// need no locking. The cursor is always explicit: methods take absolute
// offsets into data rather than advancing shared state.
type fileReader struct {
	data   []byte
	engine endian.EndianEngine

	bootstrap section.Bootstrap
	toc       section.TOC

	tokens    []string
	strings   []uint32
	fields    []field
	fieldSets []uint32
	paths     []scene.Path
	specs     []specRow
}

func newFileReader(data []byte) (*fileReader, error) {
	r := &fileReader{
		data:   data,
		engine: endian.GetLittleEndianEngine(),
	}

	if err := r.bootstrap.Parse(data); err != nil {
		return nil, err
	}

	toc, err := section.ParseTOC(data, r.bootstrap.TOCOffset)
	if err != nil {
		return nil, err
	}
	r.toc = toc

	return r, nil
}

// readSections materializes the six structural tables in dependency order,
// regardless of the physical section order in the TOC: later sections
// reference tokens and strings resolved earlier.
func (r *fileReader) readSections() error {
	readers := map[string]func(body []byte) error{
		section.TokensSectionName:    r.readTokens,
		section.StringsSectionName:   r.readStrings,
		section.FieldsSectionName:    r.readFields,
		section.FieldSetsSectionName: r.readFieldSets,
		section.PathsSectionName:     r.readPaths,
		section.SpecsSectionName:     r.readSpecs,
	}

	for _, name := range section.RequiredSections {
		sec, ok := r.toc.Find(name)
		if !ok {
			return fmt.Errorf("%w: %s", errs.ErrMissingSection, name)
		}
		if err := readers[name](r.data[sec.Start:sec.End()]); err != nil {
			return fmt.Errorf("section %s: %w", name, err)
		}
	}

	return nil
}

// readTokens parses the token table: a count, the uncompressed size, a
// declared compressed size, and the bytes of count null-terminated strings.
// A compressed size of zero or one not smaller than the uncompressed size
// means the run is stored literally.
func (r *fileReader) readTokens(body []byte) error {
	if len(body) < 24 {
		return errs.ErrCorruptSection
	}

	declared := r.engine.Uint64(body[0:8])
	uncompressed := r.engine.Uint64(body[8:16])
	compressed := r.engine.Uint64(body[16:24])

	count, err := section.CheckedCompressedCount(declared, len(body))
	if err != nil {
		return err
	}
	size, err := section.CheckedCompressedCount(uncompressed, len(body))
	if err != nil {
		return err
	}

	var raw []byte
	if compressed == 0 || compressed >= uncompressed {
		if 24+size > len(body) {
			return fmt.Errorf("%w: literal token run truncated", errs.ErrCorruptSection)
		}
		raw = body[24 : 24+size]
	} else {
		if compressed > uint64(len(body)-24) {
			return fmt.Errorf("%w: compressed token run truncated", errs.ErrCorruptSection)
		}
		raw = compress.Decompress(body[24:24+compressed], size)
		if len(raw) != size {
			return fmt.Errorf("%w: token run", errs.ErrDecompressSize)
		}
	}

	r.tokens = make([]string, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		if start > len(raw) {
			return fmt.Errorf("%w: token table short of %d tokens", errs.ErrCorruptSection, count)
		}
		end := start
		for end < len(raw) && raw[end] != 0 {
			end++
		}
		if end >= len(raw) {
			return fmt.Errorf("%w: unterminated token", errs.ErrCorruptSection)
		}
		r.tokens = append(r.tokens, string(raw[start:end]))
		start = end + 1
	}

	return nil
}

// readStrings parses the string table: a literal array of token indices.
func (r *fileReader) readStrings(body []byte) error {
	if len(body) < 8 {
		return errs.ErrCorruptSection
	}

	count, err := section.CheckedCount(r.engine.Uint64(body[0:8]), 4, len(body)-8)
	if err != nil {
		return err
	}

	r.strings = make([]uint32, count)
	for i := 0; i < count; i++ {
		r.strings[i] = r.engine.Uint32(body[8+i*4:])
	}

	return nil
}

// readFields parses the field table: a delta-compressed token-index array
// and a block-compressed (never delta-coded: descriptors are not well
// modeled by small deltas) array of fixed 8-byte value descriptors.
func (r *fileReader) readFields(body []byte) error {
	if len(body) < 8 {
		return errs.ErrCorruptSection
	}

	count, err := section.CheckedCompressedCount(r.engine.Uint64(body[0:8]), len(body))
	if err != nil {
		return err
	}

	indexData, pos, err := compressedRun(r.engine, body, 8)
	if err != nil {
		return err
	}
	indexes, err := encoding.DecodeInts(indexData, count)
	if err != nil {
		return err
	}

	if pos+8 > len(body) {
		return fmt.Errorf("%w: field reps missing", errs.ErrCorruptSection)
	}
	repsSize := r.engine.Uint64(body[pos : pos+8])
	pos += 8

	rawSize := count * section.ValueRepSize
	var raw []byte
	if repsSize == 0 || repsSize >= uint64(rawSize) {
		if pos+rawSize > len(body) {
			return fmt.Errorf("%w: literal field reps truncated", errs.ErrCorruptSection)
		}
		raw = body[pos : pos+rawSize]
	} else {
		if repsSize > uint64(len(body)-pos) {
			return fmt.Errorf("%w: compressed field reps truncated", errs.ErrCorruptSection)
		}
		raw = compress.Decompress(body[pos:uint64(pos)+repsSize], rawSize)
		if len(raw) != rawSize {
			return fmt.Errorf("%w: field reps", errs.ErrDecompressSize)
		}
	}

	r.fields = make([]field, count)
	for i := 0; i < count; i++ {
		r.fields[i] = field{
			TokenIndex: indexes[i],
			Rep:        section.ValueRep(r.engine.Uint64(raw[i*8:])),
		}
	}

	return nil
}

// readFieldSets parses the flat field-index array whose runs, each
// terminated by the invalid-index sentinel, form the field-sets.
func (r *fileReader) readFieldSets(body []byte) error {
	if len(body) < 8 {
		return errs.ErrCorruptSection
	}

	count, err := section.CheckedCompressedCount(r.engine.Uint64(body[0:8]), len(body))
	if err != nil {
		return err
	}

	data, _, err := compressedRun(r.engine, body, 8)
	if err != nil {
		return err
	}

	r.fieldSets, err = encoding.DecodeInts(data, count)

	return err
}

// readPaths parses the three parallel path arrays and reconstructs the full
// path string for every slot.
func (r *fileReader) readPaths(body []byte) error {
	if len(body) < 8 {
		return errs.ErrCorruptSection
	}

	count, err := section.CheckedCompressedCount(r.engine.Uint64(body[0:8]), len(body))
	if err != nil {
		return err
	}

	pos := 8
	arrays := make([][]uint32, 3)
	for i := range arrays {
		var data []byte
		data, pos, err = compressedRun(r.engine, body, pos)
		if err != nil {
			return err
		}
		arrays[i], err = encoding.DecodeInts(data, count)
		if err != nil {
			return err
		}
	}

	r.paths = buildPaths(arrays[0], asInt32(arrays[1]), asInt32(arrays[2]), r.tokens)

	return nil
}

// readSpecs parses the spec table: path slot, field-set offset and spec
// type per addressable path.
func (r *fileReader) readSpecs(body []byte) error {
	if len(body) < 8 {
		return errs.ErrCorruptSection
	}

	count, err := section.CheckedCompressedCount(r.engine.Uint64(body[0:8]), len(body))
	if err != nil {
		return err
	}

	pos := 8
	arrays := make([][]uint32, 3)
	for i := range arrays {
		var data []byte
		data, pos, err = compressedRun(r.engine, body, pos)
		if err != nil {
			return err
		}
		arrays[i], err = encoding.DecodeInts(data, count)
		if err != nil {
			return err
		}
	}

	r.specs = make([]specRow, count)
	for i := 0; i < count; i++ {
		r.specs[i] = specRow{
			PathIndex:     arrays[0][i],
			FieldSetIndex: arrays[1][i],
			Type:          section.SpecType(arrays[2][i]), //nolint:gosec
		}
	}

	return nil
}

// compressedRun reads a size-prefixed compressed byte run starting at pos
// and returns the run plus the position after it.
func compressedRun(engine endian.EndianEngine, body []byte, pos int) ([]byte, int, error) {
	if pos+8 > len(body) {
		return nil, 0, fmt.Errorf("%w: missing run size", errs.ErrCorruptSection)
	}

	// Compare the declared size against the remaining bytes; adding it to
	// the cursor first would let an all-ones size wrap past the check.
	size := engine.Uint64(body[pos : pos+8])
	pos += 8
	if size > uint64(len(body)-pos) {
		return nil, 0, fmt.Errorf("%w: run extends past section", errs.ErrCorruptSection)
	}

	end := pos + int(size)

	return body[pos:end], end, nil
}

func asInt32(v []uint32) []int32 {
	out := make([]int32, len(v))
	for i, x := range v {
		out[i] = int32(x) //nolint:gosec
	}

	return out
}

// Bounds-safe accessors. Per-value corruption is recoverable: a bad index
// resolves to the empty token rather than aborting the decode.

func (r *fileReader) token(i uint32) string {
	if int(i) < len(r.tokens) {
		return r.tokens[i]
	}

	return ""
}

func (r *fileReader) str(i uint32) string {
	if int(i) < len(r.strings) {
		return r.token(r.strings[i])
	}

	return ""
}

func (r *fileReader) path(i uint32) scene.Path {
	if int(i) < len(r.paths) {
		return r.paths[i]
	}

	return ""
}

func (r *fileReader) inBounds(off, size uint64) bool {
	return off <= uint64(len(r.data)) && size <= uint64(len(r.data))-off
}

func (r *fileReader) u64At(off uint64) (uint64, bool) {
	if !r.inBounds(off, 8) {
		return 0, false
	}

	return r.engine.Uint64(r.data[off:]), true
}
