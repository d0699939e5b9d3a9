package encoding

import (
	"fmt"
	"math"

	"github.com/scenekit/crate/compress"
	"github.com/scenekit/crate/endian"
	"github.com/scenekit/crate/errs"
)

// WorstCaseBufferSize returns the size of the uncompressed integer-codec
// buffer for count elements when every selector takes the widest payload:
// 4 bytes of common value, the packed selector block, and 4 bytes per
// element.
func WorstCaseBufferSize(count int) int {
	return 4 + (count*2+7)/8 + count*4
}

// EncodeInts encodes values with the delta/common-value scheme and wraps the
// result in the compressed block envelope.
//
// Parameters:
//   - values: Sequence to encode (may be empty)
//
// Returns:
//   - []byte: Envelope-compressed codec buffer
func EncodeInts(values []uint32) []byte {
	engine := endian.GetLittleEndianEngine()

	diffs := make([]int32, len(values))
	freq := make(map[int32]int, len(values))

	var prev uint32
	for i, v := range values {
		d := int32(v - prev) //nolint:gosec
		diffs[i] = d
		freq[d]++
		prev = v
	}

	var common int32
	best := 0
	for d, n := range freq {
		if n > best || (n == best && d < common) {
			common = d
			best = n
		}
	}

	selBytes := (len(values)*2 + 7) / 8
	buf := make([]byte, 4+selBytes, WorstCaseBufferSize(len(values)))
	engine.PutUint32(buf[0:4], uint32(common))

	for i, d := range diffs {
		var code byte
		switch {
		case d == common:
			code = 0
		case d >= math.MinInt8 && d <= math.MaxInt8:
			code = 1
			buf = append(buf, byte(int8(d)))
		case d >= math.MinInt16 && d <= math.MaxInt16:
			code = 2
			buf = engine.AppendUint16(buf, uint16(int16(d))) //nolint:gosec
		default:
			code = 3
			buf = engine.AppendUint32(buf, uint32(d))
		}

		buf[4+i/4] |= code << ((i % 4) * 2)
	}

	return compress.Compress(buf)
}

// DecodeInts decompresses data and decodes count values.
//
// Parameters:
//   - data: Envelope-compressed codec buffer
//   - count: Number of elements to decode
//
// Returns:
//   - []uint32: Decoded sequence
//   - error: errs.ErrCorruptSection if the buffer is too short for count elements
func DecodeInts(data []byte, count int) ([]uint32, error) {
	if count == 0 {
		return nil, nil
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative element count", errs.ErrInvalidCount)
	}

	engine := endian.GetLittleEndianEngine()

	buf := compress.Decompress(data, WorstCaseBufferSize(count))
	selBytes := (count*2 + 7) / 8
	if len(buf) < 4+selBytes {
		return nil, fmt.Errorf("%w: integer codec buffer too short", errs.ErrCorruptSection)
	}

	common := int32(engine.Uint32(buf[0:4])) //nolint:gosec
	payload := buf[4+selBytes:]

	out := make([]uint32, count)
	var prev uint32
	pos := 0

	for i := 0; i < count; i++ {
		code := (buf[4+i/4] >> ((i % 4) * 2)) & 0x3

		var d int32
		switch code {
		case 0:
			d = common
		case 1:
			if pos+1 > len(payload) {
				return nil, fmt.Errorf("%w: integer codec payload too short", errs.ErrCorruptSection)
			}
			d = int32(int8(payload[pos]))
			pos++
		case 2:
			if pos+2 > len(payload) {
				return nil, fmt.Errorf("%w: integer codec payload too short", errs.ErrCorruptSection)
			}
			d = int32(int16(engine.Uint16(payload[pos:]))) //nolint:gosec
			pos += 2
		case 3:
			if pos+4 > len(payload) {
				return nil, fmt.Errorf("%w: integer codec payload too short", errs.ErrCorruptSection)
			}
			d = int32(engine.Uint32(payload[pos:])) //nolint:gosec
			pos += 4
		}

		prev += uint32(d)
		out[i] = prev
	}

	return out, nil
}
