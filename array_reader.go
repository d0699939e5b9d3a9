package crate

import (
	"math"

	"github.com/scenekit/crate/encoding"
	"github.com/scenekit/crate/scene"
	"github.com/scenekit/crate/section"
)

// Float-array compression schemes: 'i' stores the values through the
// integer codec (valid only when every value is integral and fits int32);
// 't' stores a lookup table of distinct values plus a coded index array.
const (
	floatSchemeInts  = 'i'
	floatSchemeTable = 't'
)

// arrayValue decodes an array descriptor. A zero payload is the canonical
// empty array; otherwise the payload is the offset of a count-prefixed
// element run, literal or compressed depending on the descriptor's
// compressed bit and element kind.
func (r *fileReader) arrayValue(rep section.ValueRep) scene.Value {
	payload := rep.Payload()

	switch rep.Type() {
	case section.TypeBool:
		if payload == 0 {
			return scene.Array[bool]{}
		}
		return decodeLiteralArray(r, payload, 1, func(b []byte) bool { return b[0] != 0 })
	case section.TypeUChar:
		if payload == 0 {
			return scene.Array[uint8]{}
		}
		return decodeLiteralArray(r, payload, 1, func(b []byte) uint8 { return b[0] })
	case section.TypeInt:
		if payload == 0 {
			return scene.Array[int32]{}
		}
		if rep.IsCompressed() {
			return decodeCompressedIntArray(r, payload, func(v uint32) int32 { return int32(v) }) //nolint:gosec
		}
		return decodeLiteralArray(r, payload, 4, func(b []byte) int32 { return int32(r.engine.Uint32(b)) }) //nolint:gosec
	case section.TypeUInt:
		if payload == 0 {
			return scene.Array[uint32]{}
		}
		if rep.IsCompressed() {
			return decodeCompressedIntArray(r, payload, func(v uint32) uint32 { return v })
		}
		return decodeLiteralArray(r, payload, 4, func(b []byte) uint32 { return r.engine.Uint32(b) })
	case section.TypeInt64:
		if payload == 0 {
			return scene.Array[int64]{}
		}
		if rep.IsCompressed() {
			return scene.Placeholder{}
		}
		return decodeLiteralArray(r, payload, 8, func(b []byte) int64 { return int64(r.engine.Uint64(b)) }) //nolint:gosec
	case section.TypeUInt64:
		if payload == 0 {
			return scene.Array[uint64]{}
		}
		if rep.IsCompressed() {
			return scene.Placeholder{}
		}
		return decodeLiteralArray(r, payload, 8, func(b []byte) uint64 { return r.engine.Uint64(b) })
	case section.TypeFloat:
		if payload == 0 {
			return scene.Array[float32]{}
		}
		if rep.IsCompressed() {
			return decodeCompressedFloatArray(r, payload, 4,
				func(v int32) float32 { return float32(v) },
				func(b []byte) float32 { return math.Float32frombits(r.engine.Uint32(b)) })
		}
		return decodeLiteralArray(r, payload, 4, func(b []byte) float32 { return math.Float32frombits(r.engine.Uint32(b)) })
	case section.TypeDouble:
		if payload == 0 {
			return scene.Array[float64]{}
		}
		if rep.IsCompressed() {
			return decodeCompressedFloatArray(r, payload, 8,
				func(v int32) float64 { return float64(v) },
				func(b []byte) float64 { return math.Float64frombits(r.engine.Uint64(b)) })
		}
		return decodeLiteralArray(r, payload, 8, func(b []byte) float64 { return math.Float64frombits(r.engine.Uint64(b)) })
	case section.TypeTimeCode:
		if payload == 0 {
			return scene.Array[scene.TimeCode]{}
		}
		return decodeLiteralArray(r, payload, 8, func(b []byte) scene.TimeCode {
			return scene.TimeCode(math.Float64frombits(r.engine.Uint64(b)))
		})
	case section.TypeToken:
		if payload == 0 {
			return scene.Array[scene.Token]{}
		}
		return decodeLiteralArray(r, payload, 4, func(b []byte) scene.Token {
			return scene.Token(r.token(r.engine.Uint32(b)))
		})
	case section.TypeString:
		if payload == 0 {
			return scene.Array[scene.String]{}
		}
		return decodeLiteralArray(r, payload, 4, func(b []byte) scene.String {
			return scene.String(r.str(r.engine.Uint32(b)))
		})
	case section.TypeAssetPath:
		if payload == 0 {
			return scene.Array[scene.AssetPath]{}
		}
		return decodeLiteralArray(r, payload, 4, func(b []byte) scene.AssetPath {
			return scene.AssetPath(r.token(r.engine.Uint32(b)))
		})
	case section.TypeVec2i:
		if payload == 0 {
			return scene.Array[scene.Vec2i]{}
		}
		return decodeLiteralArray(r, payload, 8, func(b []byte) scene.Vec2i {
			return scene.Vec2i{r.i32(b, 0), r.i32(b, 1)}
		})
	case section.TypeVec3i:
		if payload == 0 {
			return scene.Array[scene.Vec3i]{}
		}
		return decodeLiteralArray(r, payload, 12, func(b []byte) scene.Vec3i {
			return scene.Vec3i{r.i32(b, 0), r.i32(b, 1), r.i32(b, 2)}
		})
	case section.TypeVec4i:
		if payload == 0 {
			return scene.Array[scene.Vec4i]{}
		}
		return decodeLiteralArray(r, payload, 16, func(b []byte) scene.Vec4i {
			return scene.Vec4i{r.i32(b, 0), r.i32(b, 1), r.i32(b, 2), r.i32(b, 3)}
		})
	case section.TypeVec2f:
		if payload == 0 {
			return scene.Array[scene.Vec2f]{}
		}
		return decodeLiteralArray(r, payload, 8, func(b []byte) scene.Vec2f {
			return scene.Vec2f{r.f32(b, 0), r.f32(b, 1)}
		})
	case section.TypeVec3f:
		if payload == 0 {
			return scene.Array[scene.Vec3f]{}
		}
		return decodeLiteralArray(r, payload, 12, func(b []byte) scene.Vec3f {
			return scene.Vec3f{r.f32(b, 0), r.f32(b, 1), r.f32(b, 2)}
		})
	case section.TypeVec4f:
		if payload == 0 {
			return scene.Array[scene.Vec4f]{}
		}
		return decodeLiteralArray(r, payload, 16, func(b []byte) scene.Vec4f {
			return scene.Vec4f{r.f32(b, 0), r.f32(b, 1), r.f32(b, 2), r.f32(b, 3)}
		})
	case section.TypeVec2d:
		if payload == 0 {
			return scene.Array[scene.Vec2d]{}
		}
		return decodeLiteralArray(r, payload, 16, func(b []byte) scene.Vec2d {
			return scene.Vec2d{r.f64(b, 0), r.f64(b, 1)}
		})
	case section.TypeVec3d:
		if payload == 0 {
			return scene.Array[scene.Vec3d]{}
		}
		return decodeLiteralArray(r, payload, 24, func(b []byte) scene.Vec3d {
			return scene.Vec3d{r.f64(b, 0), r.f64(b, 1), r.f64(b, 2)}
		})
	case section.TypeVec4d:
		if payload == 0 {
			return scene.Array[scene.Vec4d]{}
		}
		return decodeLiteralArray(r, payload, 32, func(b []byte) scene.Vec4d {
			return scene.Vec4d{r.f64(b, 0), r.f64(b, 1), r.f64(b, 2), r.f64(b, 3)}
		})
	case section.TypeQuatf:
		if payload == 0 {
			return scene.Array[scene.Quatf]{}
		}
		return decodeLiteralArray(r, payload, 16, func(b []byte) scene.Quatf {
			return scene.Quatf{r.f32(b, 0), r.f32(b, 1), r.f32(b, 2), r.f32(b, 3)}
		})
	case section.TypeQuatd:
		if payload == 0 {
			return scene.Array[scene.Quatd]{}
		}
		return decodeLiteralArray(r, payload, 32, func(b []byte) scene.Quatd {
			return scene.Quatd{r.f64(b, 0), r.f64(b, 1), r.f64(b, 2), r.f64(b, 3)}
		})
	case section.TypeMatrix2d:
		if payload == 0 {
			return scene.Array[scene.Matrix2d]{}
		}
		return decodeLiteralArray(r, payload, 32, func(b []byte) scene.Matrix2d {
			var m scene.Matrix2d
			for i := range m {
				m[i] = r.f64(b, i)
			}
			return m
		})
	case section.TypeMatrix3d:
		if payload == 0 {
			return scene.Array[scene.Matrix3d]{}
		}
		return decodeLiteralArray(r, payload, 72, func(b []byte) scene.Matrix3d {
			var m scene.Matrix3d
			for i := range m {
				m[i] = r.f64(b, i)
			}
			return m
		})
	case section.TypeMatrix4d:
		if payload == 0 {
			return scene.Array[scene.Matrix4d]{}
		}
		return decodeLiteralArray(r, payload, 128, func(b []byte) scene.Matrix4d {
			var m scene.Matrix4d
			for i := range m {
				m[i] = r.f64(b, i)
			}
			return m
		})
	}

	// Arrays of nested descriptors and of half-precision or historical
	// kinds are not materialized.
	return scene.Placeholder{}
}

// decodeLiteralArray reads a count-prefixed run of fixed-width elements.
func decodeLiteralArray[T scene.ArrayElem](r *fileReader, off uint64, elemSize int, read func([]byte) T) scene.Value {
	count, pos, ok := r.countAt(off, elemSize)
	if !ok {
		return scene.Placeholder{}
	}

	out := make(scene.Array[T], count)
	for i := range out {
		out[i] = read(r.data[pos+uint64(i*elemSize):])
	}

	return out
}

// decodeCompressedIntArray reads a count followed by a size-prefixed
// delta-coded run.
func decodeCompressedIntArray[T int32 | uint32](r *fileReader, off uint64, conv func(uint32) T) scene.Value {
	count, ok := r.compressedCountAt(off)
	if !ok {
		return scene.Placeholder{}
	}

	raw, _, ok := r.runAt(off + 8)
	if !ok {
		return scene.Placeholder{}
	}

	decoded, err := encoding.DecodeInts(raw, count)
	if err != nil {
		return scene.Placeholder{}
	}

	out := make(scene.Array[T], count)
	for i, v := range decoded {
		out[i] = conv(v)
	}

	return out
}

// decodeCompressedFloatArray reads a count, a one-byte scheme, then either
// a delta-coded integer run ('i') or a value table plus a delta-coded index
// run ('t').
func decodeCompressedFloatArray[T float32 | float64](
	r *fileReader, off uint64, elemSize int,
	fromInt func(int32) T, fromBytes func([]byte) T,
) scene.Value {
	count, ok := r.compressedCountAt(off)
	if !ok {
		return scene.Placeholder{}
	}
	if !r.inBounds(off+8, 1) {
		return scene.Placeholder{}
	}

	scheme := r.data[off+8]
	pos := off + 9

	switch scheme {
	case floatSchemeInts:
		raw, _, ok := r.runAt(pos)
		if !ok {
			return scene.Placeholder{}
		}
		decoded, err := encoding.DecodeInts(raw, count)
		if err != nil {
			return scene.Placeholder{}
		}
		out := make(scene.Array[T], count)
		for i, v := range decoded {
			out[i] = fromInt(int32(v)) //nolint:gosec
		}
		return out

	case floatSchemeTable:
		if !r.inBounds(pos, 4) {
			return scene.Placeholder{}
		}
		lutCount := int(r.engine.Uint32(r.data[pos:]))
		pos += 4
		lutBytes := uint64(lutCount * elemSize)
		if lutCount < 0 || !r.inBounds(pos, lutBytes) {
			return scene.Placeholder{}
		}
		lut := make([]T, lutCount)
		for i := range lut {
			lut[i] = fromBytes(r.data[pos+uint64(i*elemSize):])
		}
		pos += lutBytes

		raw, _, ok := r.runAt(pos)
		if !ok {
			return scene.Placeholder{}
		}
		indexes, err := encoding.DecodeInts(raw, count)
		if err != nil {
			return scene.Placeholder{}
		}
		out := make(scene.Array[T], count)
		for i, idx := range indexes {
			if int(idx) >= lutCount {
				return scene.Placeholder{}
			}
			out[i] = lut[idx]
		}
		return out
	}

	return scene.Placeholder{}
}

// compressedCountAt reads a 64-bit element count whose elements are stored
// compressed, so the plain per-element bound does not apply; the codec's
// own expansion bound caps it instead.
func (r *fileReader) compressedCountAt(off uint64) (int, bool) {
	declared, ok := r.u64At(off)
	if !ok {
		return 0, false
	}

	count, err := section.CheckedCompressedCount(declared, len(r.data)-int(off))
	if err != nil {
		return 0, false
	}

	return count, true
}

// runAt reads a size-prefixed byte run at an absolute offset and returns
// the run plus the position after it.
func (r *fileReader) runAt(off uint64) ([]byte, uint64, bool) {
	size, ok := r.u64At(off)
	if !ok || !r.inBounds(off+8, size) {
		return nil, 0, false
	}

	start := off + 8

	return r.data[start : start+size], start + size, true
}
