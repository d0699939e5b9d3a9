// Package compress implements the block compression scheme used by every
// compressed region of a crate file.
//
// The format is a sequence of sequences. Each sequence carries a token byte
// whose high nibble is the literal-run length (0-15) and whose low nibble is
// the match length minus 4 (0-15); a nibble that saturates at 15 is extended
// by a chain of continuation bytes, each adding 255 until a terminal byte
// below 255. The literal bytes follow, then - unless this is the final
// sequence of the block - a little-endian 16-bit backward offset and an
// optional extended match-length chain. There are no frame headers and no
// checksums.
//
// Matches may overlap their own source region; the decompressor copies them
// byte by byte so run-length patterns reproduce correctly. The block layout
// is bit-compatible with the LZ4 block format, which the tests exploit by
// round-tripping against the reference implementation in both directions.
//
// Container call sites wrap every block in a one-byte envelope (a reserved
// zero header byte); Compress and Decompress handle the envelope,
// CompressBlock and DecompressBlock operate on bare blocks.
package compress
