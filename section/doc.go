// Package section defines the fixed wire structures of a crate file: the
// 88-byte bootstrap header, the trailing table of contents, the names of
// the six structural sections, the 64-bit tagged value descriptor
// (ValueRep) and the spec-type enumeration.
//
// All multi-byte fields are little-endian. Offsets recorded here are
// absolute byte positions within the file buffer.
package section
