// Package encoding implements the integer delta codec used by the crate
// structural sections (field token indexes, field-set runs, path arrays,
// spec arrays).
//
// A sequence of uint32 values is transformed to deltas from the previous
// value (the value before the first element is 0), the most frequent delta
// becomes the "common value", and each element is then described by a 2-bit
// selector: 0 means the delta equals the common value and has no payload,
// 1/2/3 mean an 8/16/32-bit signed payload holding the delta. Selectors are
// packed four per byte ahead of the payload bytes, and the whole buffer is
// passed through the block compressor.
//
// Decoding always targets the fixed worst-case buffer size for the element
// count, so the block decompressor has a stable output size regardless of
// the compression actually achieved.
package encoding
