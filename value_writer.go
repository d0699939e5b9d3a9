package crate

import (
	"math"
	"sort"

	"github.com/scenekit/crate/encoding"
	"github.com/scenekit/crate/scene"
	"github.com/scenekit/crate/section"
)

// writeValue encodes one value, appending any out-of-line payload, and
// returns its descriptor. Values with no wire representation (explicit
// placeholders, unrecognized shapes) encode as blocked values, so a write
// never fails on a value.
func (w *fileWriter) writeValue(v scene.Value) section.ValueRep {
	switch x := v.(type) {
	case scene.Bool:
		var bit uint64
		if x {
			bit = 1
		}
		return inlineRep(section.TypeBool, bit)
	case scene.UChar:
		return inlineRep(section.TypeUChar, uint64(x))
	case scene.Int:
		return inlineRep(section.TypeInt, uint64(uint32(x))) //nolint:gosec
	case scene.UInt:
		return inlineRep(section.TypeUInt, uint64(x))
	case scene.Int64:
		if int64(x) >= math.MinInt32 && int64(x) <= math.MaxInt32 {
			return inlineRep(section.TypeInt64, uint64(uint32(int32(x)))) //nolint:gosec
		}
		return offsetRep(section.TypeInt64, w.writeBlob(w.engine.AppendUint64(nil, uint64(x)))) //nolint:gosec
	case scene.UInt64:
		if uint64(x) <= math.MaxUint32 {
			return inlineRep(section.TypeUInt64, uint64(x))
		}
		return offsetRep(section.TypeUInt64, w.writeBlob(w.engine.AppendUint64(nil, uint64(x))))
	case scene.Float:
		return inlineRep(section.TypeFloat, uint64(math.Float32bits(float32(x))))
	case scene.Double:
		return w.writeDoubleKind(section.TypeDouble, float64(x))
	case scene.TimeCode:
		return w.writeDoubleKind(section.TypeTimeCode, float64(x))
	case scene.String:
		return inlineRep(section.TypeString, uint64(w.internString(string(x))))
	case scene.Token:
		return inlineRep(section.TypeToken, uint64(w.internToken(string(x))))
	case scene.AssetPath:
		return inlineRep(section.TypeAssetPath, uint64(w.internToken(string(x))))
	case scene.Specifier:
		return inlineRep(section.TypeSpecifier, uint64(x))
	case scene.Permission:
		return inlineRep(section.TypePermission, uint64(x))
	case scene.Variability:
		return inlineRep(section.TypeVariability, uint64(x))

	case scene.Vec2i:
		return w.writeVecInt(section.TypeVec2i, x[:])
	case scene.Vec3i:
		return w.writeVecInt(section.TypeVec3i, x[:])
	case scene.Vec4i:
		return w.writeVecInt(section.TypeVec4i, x[:])
	case scene.Vec2f:
		return w.writeVecFloat(section.TypeVec2f, x[:])
	case scene.Vec3f:
		return w.writeVecFloat(section.TypeVec3f, x[:])
	case scene.Vec4f:
		return w.writeVecFloat(section.TypeVec4f, x[:])
	case scene.Vec2d:
		return w.writeVecDouble(section.TypeVec2d, x[:])
	case scene.Vec3d:
		return w.writeVecDouble(section.TypeVec3d, x[:])
	case scene.Vec4d:
		return w.writeVecDouble(section.TypeVec4d, x[:])
	case scene.Quatf:
		blob := make([]byte, 0, 16)
		for _, c := range x {
			blob = w.engine.AppendUint32(blob, math.Float32bits(c))
		}
		return offsetRep(section.TypeQuatf, w.writeBlob(blob))
	case scene.Quatd:
		blob := make([]byte, 0, 32)
		for _, c := range x {
			blob = w.engine.AppendUint64(blob, math.Float64bits(c))
		}
		return offsetRep(section.TypeQuatd, w.writeBlob(blob))
	case scene.Matrix2d:
		return w.writeMatrix(section.TypeMatrix2d, x[:], []int{0, 3})
	case scene.Matrix3d:
		return w.writeMatrix(section.TypeMatrix3d, x[:], []int{0, 4, 8})
	case scene.Matrix4d:
		return w.writeMatrix(section.TypeMatrix4d, x[:], []int{0, 5, 10, 15})

	case scene.Dictionary:
		return w.writeDictionary(x)
	case scene.VariantSelections:
		return w.writeVariantSelections(x)
	case scene.TimeSamples:
		return w.writeTimeSamples(x)
	case *scene.ListOp:
		return w.writeListOp(x)

	case scene.Array[bool]:
		return writeLiteralArray(w, section.TypeBool, x, 1, func(b []byte, v bool) []byte {
			if v {
				return append(b, 1)
			}
			return append(b, 0)
		})
	case scene.Array[uint8]:
		return writeLiteralArray(w, section.TypeUChar, x, 1, func(b []byte, v uint8) []byte {
			return append(b, v)
		})
	case scene.Array[int32]:
		return writeIntArray(w, section.TypeInt, x, func(v int32) uint32 { return uint32(v) }) //nolint:gosec
	case scene.Array[uint32]:
		return writeIntArray(w, section.TypeUInt, x, func(v uint32) uint32 { return v })
	case scene.Array[int64]:
		return writeLiteralArray(w, section.TypeInt64, x, 8, func(b []byte, v int64) []byte {
			return w.engine.AppendUint64(b, uint64(v)) //nolint:gosec
		})
	case scene.Array[uint64]:
		return writeLiteralArray(w, section.TypeUInt64, x, 8, func(b []byte, v uint64) []byte {
			return w.engine.AppendUint64(b, v)
		})
	case scene.Array[float32]:
		return writeFloatArray(w, section.TypeFloat, x, 4,
			func(v float32) (int32, bool) {
				i := int32(v)
				return i, float32(i) == v
			},
			func(v float32) uint64 { return uint64(math.Float32bits(v)) },
			func(b []byte, v float32) []byte { return w.engine.AppendUint32(b, math.Float32bits(v)) })
	case scene.Array[float64]:
		return writeFloatArray(w, section.TypeDouble, x, 8,
			func(v float64) (int32, bool) {
				if v < math.MinInt32 || v > math.MaxInt32 {
					return 0, false
				}
				i := int32(v)
				return i, float64(i) == v
			},
			func(v float64) uint64 { return math.Float64bits(v) },
			func(b []byte, v float64) []byte { return w.engine.AppendUint64(b, math.Float64bits(v)) })
	case scene.Array[scene.TimeCode]:
		return writeLiteralArray(w, section.TypeTimeCode, x, 8, func(b []byte, v scene.TimeCode) []byte {
			return w.engine.AppendUint64(b, math.Float64bits(float64(v)))
		})
	case scene.Array[scene.Token]:
		return writeLiteralArray(w, section.TypeToken, x, 4, func(b []byte, v scene.Token) []byte {
			return w.engine.AppendUint32(b, w.internToken(string(v)))
		})
	case scene.Array[scene.String]:
		return writeLiteralArray(w, section.TypeString, x, 4, func(b []byte, v scene.String) []byte {
			return w.engine.AppendUint32(b, w.internString(string(v)))
		})
	case scene.Array[scene.AssetPath]:
		return writeLiteralArray(w, section.TypeAssetPath, x, 4, func(b []byte, v scene.AssetPath) []byte {
			return w.engine.AppendUint32(b, w.internToken(string(v)))
		})
	case scene.Array[scene.Path]:
		return w.writePathVector(x)

	case scene.Array[scene.Vec2i]:
		return writeLiteralArray(w, section.TypeVec2i, x, 8, func(b []byte, v scene.Vec2i) []byte {
			return appendInt32s(w, b, v[:])
		})
	case scene.Array[scene.Vec3i]:
		return writeLiteralArray(w, section.TypeVec3i, x, 12, func(b []byte, v scene.Vec3i) []byte {
			return appendInt32s(w, b, v[:])
		})
	case scene.Array[scene.Vec4i]:
		return writeLiteralArray(w, section.TypeVec4i, x, 16, func(b []byte, v scene.Vec4i) []byte {
			return appendInt32s(w, b, v[:])
		})
	case scene.Array[scene.Vec2f]:
		return writeLiteralArray(w, section.TypeVec2f, x, 8, func(b []byte, v scene.Vec2f) []byte {
			return appendFloat32s(w, b, v[:])
		})
	case scene.Array[scene.Vec3f]:
		return writeLiteralArray(w, section.TypeVec3f, x, 12, func(b []byte, v scene.Vec3f) []byte {
			return appendFloat32s(w, b, v[:])
		})
	case scene.Array[scene.Vec4f]:
		return writeLiteralArray(w, section.TypeVec4f, x, 16, func(b []byte, v scene.Vec4f) []byte {
			return appendFloat32s(w, b, v[:])
		})
	case scene.Array[scene.Vec2d]:
		return writeLiteralArray(w, section.TypeVec2d, x, 16, func(b []byte, v scene.Vec2d) []byte {
			return appendFloat64s(w, b, v[:])
		})
	case scene.Array[scene.Vec3d]:
		return writeLiteralArray(w, section.TypeVec3d, x, 24, func(b []byte, v scene.Vec3d) []byte {
			return appendFloat64s(w, b, v[:])
		})
	case scene.Array[scene.Vec4d]:
		return writeLiteralArray(w, section.TypeVec4d, x, 32, func(b []byte, v scene.Vec4d) []byte {
			return appendFloat64s(w, b, v[:])
		})
	case scene.Array[scene.Quatf]:
		return writeLiteralArray(w, section.TypeQuatf, x, 16, func(b []byte, v scene.Quatf) []byte {
			return appendFloat32s(w, b, v[:])
		})
	case scene.Array[scene.Quatd]:
		return writeLiteralArray(w, section.TypeQuatd, x, 32, func(b []byte, v scene.Quatd) []byte {
			return appendFloat64s(w, b, v[:])
		})
	case scene.Array[scene.Matrix2d]:
		return writeLiteralArray(w, section.TypeMatrix2d, x, 32, func(b []byte, v scene.Matrix2d) []byte {
			return appendFloat64s(w, b, v[:])
		})
	case scene.Array[scene.Matrix3d]:
		return writeLiteralArray(w, section.TypeMatrix3d, x, 72, func(b []byte, v scene.Matrix3d) []byte {
			return appendFloat64s(w, b, v[:])
		})
	case scene.Array[scene.Matrix4d]:
		return writeLiteralArray(w, section.TypeMatrix4d, x, 128, func(b []byte, v scene.Matrix4d) []byte {
			return appendFloat64s(w, b, v[:])
		})
	}

	// Explicit placeholders, scalar paths and anything unrecognized encode
	// as blocked values.
	return inlineRep(section.TypeValueBlock, 0)
}

func inlineRep(t section.ValueType, payload uint64) section.ValueRep {
	return section.NewValueRep(t, false, true, false, payload)
}

func offsetRep(t section.ValueType, off uint64) section.ValueRep {
	return section.NewValueRep(t, false, false, false, off)
}

// writeDoubleKind inlines a double as float bits when the cast is exact.
func (w *fileWriter) writeDoubleKind(t section.ValueType, v float64) section.ValueRep {
	if f := float32(v); float64(f) == v {
		return inlineRep(t, uint64(math.Float32bits(f)))
	}

	return offsetRep(t, w.writeBlob(w.engine.AppendUint64(nil, math.Float64bits(v))))
}

// fitsPackedByte reports whether a component can live in one signed byte of
// an inlined vector or matrix payload.
func fitsPackedByte(v float64) bool {
	return v >= -128 && v <= 127 && v == math.Trunc(v)
}

func packBytes(comps []float64) uint64 {
	var payload uint64
	for i, c := range comps {
		payload |= uint64(uint8(int8(c))) << (8 * i)
	}

	return payload
}

func (w *fileWriter) writeVecInt(t section.ValueType, comps []int32) section.ValueRep {
	f := make([]float64, len(comps))
	packable := true
	for i, c := range comps {
		f[i] = float64(c)
		packable = packable && c >= -128 && c <= 127
	}
	if packable {
		return inlineRep(t, packBytes(f))
	}

	blob := make([]byte, 0, len(comps)*4)
	blob = appendInt32s(w, blob, comps)

	return offsetRep(t, w.writeBlob(blob))
}

func (w *fileWriter) writeVecFloat(t section.ValueType, comps []float32) section.ValueRep {
	f := make([]float64, len(comps))
	packable := true
	for i, c := range comps {
		f[i] = float64(c)
		packable = packable && fitsPackedByte(f[i])
	}
	if packable {
		return inlineRep(t, packBytes(f))
	}

	blob := make([]byte, 0, len(comps)*4)
	blob = appendFloat32s(w, blob, comps)

	return offsetRep(t, w.writeBlob(blob))
}

func (w *fileWriter) writeVecDouble(t section.ValueType, comps []float64) section.ValueRep {
	packable := true
	for _, c := range comps {
		packable = packable && fitsPackedByte(c)
	}
	if packable {
		return inlineRep(t, packBytes(comps))
	}

	blob := make([]byte, 0, len(comps)*8)
	blob = appendFloat64s(w, blob, comps)

	return offsetRep(t, w.writeBlob(blob))
}

// writeMatrix inlines a matrix as its packed diagonal when every
// off-diagonal element is zero and the diagonal fits signed bytes.
func (w *fileWriter) writeMatrix(t section.ValueType, elems []float64, diagonal []int) section.ValueRep {
	diag := make([]float64, 0, len(diagonal))
	packable := true

	next := 0
	for i, e := range elems {
		if next < len(diagonal) && i == diagonal[next] {
			diag = append(diag, e)
			packable = packable && fitsPackedByte(e)
			next++
			continue
		}
		packable = packable && e == 0
	}
	if packable {
		return inlineRep(t, packBytes(diag))
	}

	blob := make([]byte, 0, len(elems)*8)
	blob = appendFloat64s(w, blob, elems)

	return offsetRep(t, w.writeBlob(blob))
}

func appendInt32s(w *fileWriter, b []byte, comps []int32) []byte {
	for _, c := range comps {
		b = w.engine.AppendUint32(b, uint32(c)) //nolint:gosec
	}

	return b
}

func appendFloat32s(w *fileWriter, b []byte, comps []float32) []byte {
	for _, c := range comps {
		b = w.engine.AppendUint32(b, math.Float32bits(c))
	}

	return b
}

func appendFloat64s(w *fileWriter, b []byte, comps []float64) []byte {
	for _, c := range comps {
		b = w.engine.AppendUint64(b, math.Float64bits(c))
	}

	return b
}

// writeLiteralArray appends a count-prefixed run of fixed-width elements.
// An empty array is the canonical zero descriptor with no payload.
func writeLiteralArray[T scene.ArrayElem](
	w *fileWriter, t section.ValueType, arr scene.Array[T], elemSize int,
	put func([]byte, T) []byte,
) section.ValueRep {
	if len(arr) == 0 {
		return section.NewValueRep(t, true, false, false, 0)
	}

	blob := make([]byte, 0, 8+len(arr)*elemSize)
	blob = w.engine.AppendUint64(blob, uint64(len(arr)))
	for _, v := range arr {
		blob = put(blob, v)
	}

	return section.NewValueRep(t, true, false, false, w.writeBlob(blob))
}

// writeIntArray stores 32-bit integer arrays through the delta codec once
// they reach the compression threshold.
func writeIntArray[T int32 | uint32](w *fileWriter, t section.ValueType, arr scene.Array[T], conv func(T) uint32) section.ValueRep {
	if len(arr) == 0 {
		return section.NewValueRep(t, true, false, false, 0)
	}

	if len(arr) < w.cfg.compressThreshold {
		return writeLiteralArray(w, t, arr, 4, func(b []byte, v T) []byte {
			return w.engine.AppendUint32(b, conv(v))
		})
	}

	vals := make([]uint32, len(arr))
	for i, v := range arr {
		vals[i] = conv(v)
	}

	blob := w.engine.AppendUint64(nil, uint64(len(arr)))
	blob = appendRun(w.engine, blob, encoding.EncodeInts(vals))

	return section.NewValueRep(t, true, false, true, w.writeBlob(blob))
}

// writeFloatArray stores float arrays through one of the two compression
// schemes when they reach the threshold: the integer scheme when every
// value is exactly integral, the lookup-table scheme when the distinct
// values are few, and literally otherwise.
func writeFloatArray[T float32 | float64](
	w *fileWriter, t section.ValueType, arr scene.Array[T], elemSize int,
	asInt func(T) (int32, bool),
	bits func(T) uint64,
	put func([]byte, T) []byte,
) section.ValueRep {
	if len(arr) == 0 {
		return section.NewValueRep(t, true, false, false, 0)
	}

	literal := func() section.ValueRep {
		return writeLiteralArray(w, t, arr, elemSize, put)
	}

	if len(arr) < w.cfg.compressThreshold {
		return literal()
	}

	ints := make([]uint32, len(arr))
	integral := true
	for i, v := range arr {
		n, ok := asInt(v)
		if !ok {
			integral = false
			break
		}
		ints[i] = uint32(n) //nolint:gosec
	}

	if integral {
		blob := w.engine.AppendUint64(nil, uint64(len(arr)))
		blob = append(blob, floatSchemeInts)
		blob = appendRun(w.engine, blob, encoding.EncodeInts(ints))

		return section.NewValueRep(t, true, false, true, w.writeBlob(blob))
	}

	// Lookup table keyed on exact bit patterns so NaN payloads and signed
	// zeros survive.
	lutIndex := make(map[uint64]uint32, maxFloatTableSize)
	var lut []T
	indexes := make([]uint32, len(arr))
	for i, v := range arr {
		b := bits(v)
		idx, ok := lutIndex[b]
		if !ok {
			if len(lut) >= maxFloatTableSize {
				return literal()
			}
			idx = uint32(len(lut)) //nolint:gosec
			lutIndex[b] = idx
			lut = append(lut, v)
		}
		indexes[i] = idx
	}

	blob := w.engine.AppendUint64(nil, uint64(len(arr)))
	blob = append(blob, floatSchemeTable)
	blob = w.engine.AppendUint32(blob, uint32(len(lut))) //nolint:gosec
	for _, v := range lut {
		blob = put(blob, v)
	}
	blob = appendRun(w.engine, blob, encoding.EncodeInts(indexes))

	return section.NewValueRep(t, true, false, true, w.writeBlob(blob))
}

// writePathVector encodes an array of paths as a vector of path-table
// slots. Every path was collected before value encoding, so the slot
// lookup cannot miss on writer-produced input.
func (w *fileWriter) writePathVector(paths scene.Array[scene.Path]) section.ValueRep {
	blob := w.engine.AppendUint64(nil, uint64(len(paths)))
	for _, p := range paths {
		blob = w.engine.AppendUint32(blob, w.slots[p])
	}

	return offsetRep(section.TypePathVector, w.writeBlob(blob))
}

// writeDictionary encodes entries in sorted key order. Each entry's value
// descriptor sits right after the entry's relative-offset field, which
// therefore always holds 8; nested payloads were already placed by the
// recursive writeValue calls.
func (w *fileWriter) writeDictionary(dict scene.Dictionary) section.ValueRep {
	if len(dict) == 0 {
		return inlineRep(section.TypeDictionary, 0)
	}

	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	blob := w.engine.AppendUint64(nil, uint64(len(dict)))
	for _, k := range keys {
		rep := w.writeValue(dict[k])
		blob = w.engine.AppendUint32(blob, w.internString(k))
		blob = w.engine.AppendUint64(blob, 8)
		blob = w.engine.AppendUint64(blob, uint64(rep))
	}

	return offsetRep(section.TypeDictionary, w.writeBlob(blob))
}

func (w *fileWriter) writeVariantSelections(sel scene.VariantSelections) section.ValueRep {
	keys := make([]string, 0, len(sel))
	for k := range sel {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	blob := w.engine.AppendUint64(nil, uint64(len(sel)))
	for _, k := range keys {
		blob = w.engine.AppendUint32(blob, w.internString(k))
		blob = w.engine.AppendUint32(blob, w.internString(sel[k]))
	}

	return offsetRep(section.TypeVariantSelectionMap, w.writeBlob(blob))
}

// writeTimeSamples lays out the two chained indirections, the times
// vector's descriptor and the contiguous value descriptors. Values are
// encoded first so their payloads precede the sample block.
func (w *fileWriter) writeTimeSamples(ts scene.TimeSamples) section.ValueRep {
	count := len(ts.Times)
	if len(ts.Values) < count {
		count = len(ts.Values)
	}

	timesRep := w.writeValue(scene.Array[float64](ts.Times[:count]))

	reps := make([]section.ValueRep, count)
	for i := 0; i < count; i++ {
		reps[i] = w.writeValue(ts.Values[i])
	}

	blob := make([]byte, 0, 32+count*section.ValueRepSize)
	blob = w.engine.AppendUint64(blob, 16) // times descriptor follows both offsets
	blob = w.engine.AppendUint64(blob, 16) // values area follows the times descriptor
	blob = w.engine.AppendUint64(blob, uint64(timesRep))
	blob = w.engine.AppendUint64(blob, uint64(count))
	for _, rep := range reps {
		blob = w.engine.AppendUint64(blob, uint64(rep))
	}

	return offsetRep(section.TypeTimeSamples, w.writeBlob(blob))
}

// writeListOp encodes the mode flag and whichever item vectors are
// non-empty. Items resolve through the table matching the op's item type.
func (w *fileWriter) writeListOp(op *scene.ListOp) section.ValueRep {
	var t section.ValueType
	switch op.ItemType {
	case scene.ListOpTokens:
		t = section.TypeTokenListOp
	case scene.ListOpStrings:
		t = section.TypeStringListOp
	case scene.ListOpPaths:
		t = section.TypePathListOp
	default:
		return inlineRep(section.TypeValueBlock, 0)
	}

	var flags byte
	if op.IsExplicit {
		flags |= listOpExplicitMode
	}

	vectors := []struct {
		bit   byte
		items []string
	}{
		{listOpHasExplicit, op.Explicit},
		{listOpHasAdded, op.Added},
		{listOpHasDeleted, op.Deleted},
		{listOpHasOrdered, op.Ordered},
		{listOpHasPrepended, op.Prepended},
		{listOpHasAppended, op.Appended},
	}
	for _, v := range vectors {
		if len(v.items) > 0 {
			flags |= v.bit
		}
	}

	blob := []byte{flags}
	for _, v := range vectors {
		if len(v.items) == 0 {
			continue
		}
		blob = w.engine.AppendUint64(blob, uint64(len(v.items)))
		for _, item := range v.items {
			var idx uint32
			switch op.ItemType {
			case scene.ListOpTokens:
				idx = w.internToken(item)
			case scene.ListOpStrings:
				idx = w.internString(item)
			case scene.ListOpPaths:
				idx = w.slots[scene.Path(item)]
			}
			blob = w.engine.AppendUint32(blob, idx)
		}
	}

	return offsetRep(t, w.writeBlob(blob))
}
