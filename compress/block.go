package compress

import (
	"github.com/scenekit/crate/endian"
)

const (
	minMatch  = 4     // shortest encodable match
	maxOffset = 65535 // backward offset is a 16-bit field
	hashLog   = 16

	// A match may not start within the last 12 bytes of the input, and the
	// last 5 bytes are always literals. Inputs shorter than 13 bytes are
	// therefore emitted as a single literal run.
	matchStartMargin = 12
	literalTail      = 5
)

// CompressBound returns the maximum size of a compressed block for an input
// of the given size: the worst case is all-literal output with one extension
// byte per 255 literals plus the token.
func CompressBound(srcSize int) int {
	return srcSize + srcSize/255 + 16
}

// CompressBlock compresses src into a bare block.
//
// Compression uses a fixed-size hash table over 4-byte windows to find the
// nearest prior occurrence within the 65535-byte offset window and greedily
// takes any match of length >= 4. The output always decodes back to src with
// DecompressBlock; ratio is secondary to that guarantee.
//
// Parameters:
//   - src: Input bytes (may be empty)
//
// Returns:
//   - []byte: Compressed block, newly allocated
func CompressBlock(src []byte) []byte {
	dst := make([]byte, 0, CompressBound(len(src)))
	if len(src) == 0 {
		// A block must contain at least one sequence; emit an empty literal run.
		return append(dst, 0)
	}

	engine := endian.GetLittleEndianEngine()

	table := make([]int32, 1<<hashLog)
	for i := range table {
		table[i] = -1
	}

	matchLimit := len(src) - literalTail
	anchor := 0

	for i := 0; i+matchStartMargin <= len(src); {
		cur := engine.Uint32(src[i:])
		h := hash4(cur)
		cand := int(table[h])
		table[h] = int32(i)

		if cand < 0 || i-cand > maxOffset || engine.Uint32(src[cand:]) != cur {
			i++
			continue
		}

		mlen := minMatch
		for i+mlen < matchLimit && src[cand+mlen] == src[i+mlen] {
			mlen++
		}

		dst = appendSequence(dst, engine, src[anchor:i], mlen, uint16(i-cand)) //nolint:gosec
		i += mlen
		anchor = i
	}

	return appendFinalSequence(dst, src[anchor:])
}

// DecompressBlock decompresses a bare block into at most expectedSize bytes.
//
// Corrupt or truncated input degrades gracefully: the decoder copies only
// what the source stream provides and stops, so the result may be shorter
// than expectedSize. Callers for whom a short result is fatal must compare
// lengths themselves.
//
// Parameters:
//   - src: Compressed block
//   - expectedSize: Size of the original input
//
// Returns:
//   - []byte: Decompressed bytes, at most expectedSize long
func DecompressBlock(src []byte, expectedSize int) []byte {
	if expectedSize <= 0 {
		return nil
	}

	engine := endian.GetLittleEndianEngine()
	dst := make([]byte, 0, expectedSize)
	i := 0

	for i < len(src) && len(dst) < expectedSize {
		token := src[i]
		i++

		litLen := int(token >> 4)
		if litLen == 15 {
			litLen, i = extendLength(src, i, litLen)
		}

		if litLen > 0 {
			avail := len(src) - i
			if litLen > avail {
				litLen = avail
			}
			room := expectedSize - len(dst)
			if litLen > room {
				litLen = room
			}
			dst = append(dst, src[i:i+litLen]...)
			i += litLen
		}

		if i+2 > len(src) {
			// Final sequence: literals only, no offset field.
			break
		}

		offset := int(engine.Uint16(src[i:]))
		i += 2
		if offset == 0 || offset > len(dst) {
			break
		}

		matchLen := int(token&0x0F) + minMatch
		if token&0x0F == 15 {
			var ext int
			ext, i = extendLength(src, i, 0)
			matchLen += ext
		}

		// Byte-by-byte so overlapping matches replicate run patterns.
		pos := len(dst) - offset
		for n := 0; n < matchLen && len(dst) < expectedSize; n++ {
			dst = append(dst, dst[pos+n])
		}
	}

	return dst
}

// Compress wraps CompressBlock in the container envelope: one reserved zero
// header byte ahead of the block.
func Compress(src []byte) []byte {
	block := CompressBlock(src)
	out := make([]byte, 0, len(block)+1)
	out = append(out, 0)

	return append(out, block...)
}

// Decompress strips the container envelope header byte and decompresses the
// remaining block. Empty input yields nil.
func Decompress(src []byte, expectedSize int) []byte {
	if len(src) == 0 {
		return nil
	}

	return DecompressBlock(src[1:], expectedSize)
}

func hash4(v uint32) uint32 {
	return (v * 2654435761) >> (32 - hashLog)
}

// extendLength accumulates a 255-continuation chain starting at src[i].
func extendLength(src []byte, i int, base int) (int, int) {
	for i < len(src) {
		b := src[i]
		i++
		base += int(b)
		if b < 255 {
			break
		}
	}

	return base, i
}

func appendLengthChain(dst []byte, v int) []byte {
	for v >= 255 {
		dst = append(dst, 255)
		v -= 255
	}

	return append(dst, byte(v))
}

func appendSequence(dst []byte, engine endian.EndianEngine, literals []byte, matchLen int, offset uint16) []byte {
	litLen := len(literals)
	mlToken := matchLen - minMatch

	token := byte(min(litLen, 15)) << 4
	token |= byte(min(mlToken, 15))
	dst = append(dst, token)

	if litLen >= 15 {
		dst = appendLengthChain(dst, litLen-15)
	}
	dst = append(dst, literals...)
	dst = engine.AppendUint16(dst, offset)
	if mlToken >= 15 {
		dst = appendLengthChain(dst, mlToken-15)
	}

	return dst
}

func appendFinalSequence(dst []byte, literals []byte) []byte {
	litLen := len(literals)
	dst = append(dst, byte(min(litLen, 15))<<4)
	if litLen >= 15 {
		dst = appendLengthChain(dst, litLen-15)
	}

	return append(dst, literals...)
}
