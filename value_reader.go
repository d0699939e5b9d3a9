package crate

import (
	"math"

	"github.com/scenekit/crate/scene"
	"github.com/scenekit/crate/section"
)

// maxValueDepth bounds recursion through nested dictionaries and
// descriptor indirections so cyclic offsets in corrupt input cannot
// overflow the stack.
const maxValueDepth = 64

// value decodes one descriptor. It never fails: every malformed descriptor
// (unknown tag, array-edit, offset past the buffer, truncated payload)
// decodes to scene.Placeholder so one corrupt field cannot abort the
// remaining specs.
func (r *fileReader) value(rep section.ValueRep) scene.Value {
	return r.valueAt(rep, 0)
}

func (r *fileReader) valueAt(rep section.ValueRep, depth int) scene.Value {
	if depth > maxValueDepth || rep.IsArrayEdit() || !rep.Type().IsKnown() {
		return scene.Placeholder{}
	}
	if rep.IsArray() {
		return r.arrayValue(rep)
	}

	payload := rep.Payload()
	inline := uint32(payload) //nolint:gosec

	switch rep.Type() {
	case section.TypeBool:
		return scene.Bool(inline&1 != 0)
	case section.TypeUChar:
		return scene.UChar(inline)
	case section.TypeInt:
		if rep.IsInlined() {
			return scene.Int(int32(inline)) //nolint:gosec
		}
		return r.scalarAt(payload, 4, func(b []byte) scene.Value { return scene.Int(int32(r.engine.Uint32(b))) }) //nolint:gosec
	case section.TypeUInt:
		if rep.IsInlined() {
			return scene.UInt(inline)
		}
		return r.scalarAt(payload, 4, func(b []byte) scene.Value { return scene.UInt(r.engine.Uint32(b)) })
	case section.TypeInt64:
		if rep.IsInlined() {
			return scene.Int64(int32(inline)) //nolint:gosec
		}
		return r.scalarAt(payload, 8, func(b []byte) scene.Value { return scene.Int64(int64(r.engine.Uint64(b))) }) //nolint:gosec
	case section.TypeUInt64:
		if rep.IsInlined() {
			return scene.UInt64(inline)
		}
		return r.scalarAt(payload, 8, func(b []byte) scene.Value { return scene.UInt64(r.engine.Uint64(b)) })
	case section.TypeFloat:
		if rep.IsInlined() {
			return scene.Float(math.Float32frombits(inline))
		}
		return r.scalarAt(payload, 4, func(b []byte) scene.Value { return scene.Float(math.Float32frombits(r.engine.Uint32(b))) })
	case section.TypeDouble:
		if rep.IsInlined() {
			// Doubles exactly representable as float inline as float bits.
			return scene.Double(math.Float32frombits(inline))
		}
		return r.scalarAt(payload, 8, func(b []byte) scene.Value { return scene.Double(math.Float64frombits(r.engine.Uint64(b))) })
	case section.TypeTimeCode:
		if rep.IsInlined() {
			return scene.TimeCode(math.Float32frombits(inline))
		}
		return r.scalarAt(payload, 8, func(b []byte) scene.Value { return scene.TimeCode(math.Float64frombits(r.engine.Uint64(b))) })
	case section.TypeString:
		return scene.String(r.str(inline))
	case section.TypeToken:
		return scene.Token(r.token(inline))
	case section.TypeAssetPath:
		return scene.AssetPath(r.token(inline))
	case section.TypeSpecifier:
		if inline <= uint32(scene.SpecifierClass) {
			return scene.Specifier(inline)
		}
	case section.TypePermission:
		if inline <= uint32(scene.PermissionPrivate) {
			return scene.Permission(inline)
		}
	case section.TypeVariability:
		if inline <= uint32(scene.VariabilityUniform) {
			return scene.Variability(inline)
		}
	case section.TypeVec2i, section.TypeVec3i, section.TypeVec4i,
		section.TypeVec2f, section.TypeVec3f, section.TypeVec4f,
		section.TypeVec2d, section.TypeVec3d, section.TypeVec4d:
		return r.vecValue(rep)
	case section.TypeMatrix2d, section.TypeMatrix3d, section.TypeMatrix4d:
		return r.matrixValue(rep)
	case section.TypeQuatf:
		return r.scalarAt(payload, 16, func(b []byte) scene.Value {
			var q scene.Quatf
			for i := range q {
				q[i] = math.Float32frombits(r.engine.Uint32(b[i*4:]))
			}
			return q
		})
	case section.TypeQuatd:
		return r.scalarAt(payload, 32, func(b []byte) scene.Value {
			var q scene.Quatd
			for i := range q {
				q[i] = math.Float64frombits(r.engine.Uint64(b[i*8:]))
			}
			return q
		})
	case section.TypeDictionary:
		if rep.IsInlined() {
			return scene.Dictionary{}
		}
		return r.dictionaryAt(payload, depth)
	case section.TypeTokenListOp:
		return r.listOpAt(payload, scene.ListOpTokens)
	case section.TypeStringListOp:
		return r.listOpAt(payload, scene.ListOpStrings)
	case section.TypePathListOp:
		return r.listOpAt(payload, scene.ListOpPaths)
	case section.TypeTokenVector:
		return indexVectorOf(r, payload, func(i uint32) scene.Token { return scene.Token(r.token(i)) })
	case section.TypeStringVector:
		return indexVectorOf(r, payload, func(i uint32) scene.String { return scene.String(r.str(i)) })
	case section.TypePathVector:
		return indexVectorOf(r, payload, func(i uint32) scene.Path { return r.path(i) })
	case section.TypeDoubleVector:
		count, off, ok := r.countAt(payload, 8)
		if !ok {
			return scene.Placeholder{}
		}
		out := make(scene.Array[float64], count)
		for i := range out {
			out[i] = math.Float64frombits(r.engine.Uint64(r.data[off+uint64(i*8):]))
		}
		return out
	case section.TypeVariantSelectionMap:
		return r.variantSelectionsAt(payload)
	case section.TypeTimeSamples:
		return r.timeSamplesAt(payload, depth)
	case section.TypeValueBlock:
		return scene.Placeholder{}
	case section.TypeValue:
		inner, ok := r.u64At(payload)
		if !ok {
			return scene.Placeholder{}
		}
		return r.valueAt(section.ValueRep(inner), depth+1)
	}

	// Half-precision kinds, reference/payload arcs and the remaining
	// historical kinds are not materialized.
	return scene.Placeholder{}
}

// scalarAt reads a fixed-width out-of-line scalar; an offset past the
// buffer fails softly.
func (r *fileReader) scalarAt(off, size uint64, read func([]byte) scene.Value) scene.Value {
	if !r.inBounds(off, size) {
		return scene.Placeholder{}
	}

	return read(r.data[off : off+size])
}

// countAt reads a 64-bit element count at off and bounds-checks the
// following count*elemSize element bytes, returning the element offset.
func (r *fileReader) countAt(off uint64, elemSize int) (int, uint64, bool) {
	declared, ok := r.u64At(off)
	if !ok {
		return 0, 0, false
	}

	avail := uint64(len(r.data)) - off - 8
	if declared > avail/uint64(elemSize) {
		return 0, 0, false
	}

	return int(declared), off + 8, true
}

func (r *fileReader) vecValue(rep section.ValueRep) scene.Value {
	payload := rep.Payload()

	if rep.IsInlined() {
		// Components packed as signed bytes in the low payload bytes.
		comp := func(i int) int8 { return int8(payload >> (8 * i)) } //nolint:gosec
		switch rep.Type() {
		case section.TypeVec2i:
			return scene.Vec2i{int32(comp(0)), int32(comp(1))}
		case section.TypeVec3i:
			return scene.Vec3i{int32(comp(0)), int32(comp(1)), int32(comp(2))}
		case section.TypeVec4i:
			return scene.Vec4i{int32(comp(0)), int32(comp(1)), int32(comp(2)), int32(comp(3))}
		case section.TypeVec2f:
			return scene.Vec2f{float32(comp(0)), float32(comp(1))}
		case section.TypeVec3f:
			return scene.Vec3f{float32(comp(0)), float32(comp(1)), float32(comp(2))}
		case section.TypeVec4f:
			return scene.Vec4f{float32(comp(0)), float32(comp(1)), float32(comp(2)), float32(comp(3))}
		case section.TypeVec2d:
			return scene.Vec2d{float64(comp(0)), float64(comp(1))}
		case section.TypeVec3d:
			return scene.Vec3d{float64(comp(0)), float64(comp(1)), float64(comp(2))}
		case section.TypeVec4d:
			return scene.Vec4d{float64(comp(0)), float64(comp(1)), float64(comp(2)), float64(comp(3))}
		}

		return scene.Placeholder{}
	}

	switch rep.Type() {
	case section.TypeVec2i:
		return r.scalarAt(payload, 8, func(b []byte) scene.Value {
			return scene.Vec2i{r.i32(b, 0), r.i32(b, 1)}
		})
	case section.TypeVec3i:
		return r.scalarAt(payload, 12, func(b []byte) scene.Value {
			return scene.Vec3i{r.i32(b, 0), r.i32(b, 1), r.i32(b, 2)}
		})
	case section.TypeVec4i:
		return r.scalarAt(payload, 16, func(b []byte) scene.Value {
			return scene.Vec4i{r.i32(b, 0), r.i32(b, 1), r.i32(b, 2), r.i32(b, 3)}
		})
	case section.TypeVec2f:
		return r.scalarAt(payload, 8, func(b []byte) scene.Value {
			return scene.Vec2f{r.f32(b, 0), r.f32(b, 1)}
		})
	case section.TypeVec3f:
		return r.scalarAt(payload, 12, func(b []byte) scene.Value {
			return scene.Vec3f{r.f32(b, 0), r.f32(b, 1), r.f32(b, 2)}
		})
	case section.TypeVec4f:
		return r.scalarAt(payload, 16, func(b []byte) scene.Value {
			return scene.Vec4f{r.f32(b, 0), r.f32(b, 1), r.f32(b, 2), r.f32(b, 3)}
		})
	case section.TypeVec2d:
		return r.scalarAt(payload, 16, func(b []byte) scene.Value {
			return scene.Vec2d{r.f64(b, 0), r.f64(b, 1)}
		})
	case section.TypeVec3d:
		return r.scalarAt(payload, 24, func(b []byte) scene.Value {
			return scene.Vec3d{r.f64(b, 0), r.f64(b, 1), r.f64(b, 2)}
		})
	case section.TypeVec4d:
		return r.scalarAt(payload, 32, func(b []byte) scene.Value {
			return scene.Vec4d{r.f64(b, 0), r.f64(b, 1), r.f64(b, 2), r.f64(b, 3)}
		})
	}

	return scene.Placeholder{}
}

func (r *fileReader) matrixValue(rep section.ValueRep) scene.Value {
	payload := rep.Payload()

	if rep.IsInlined() {
		// Diagonal components packed as signed bytes; off-diagonals zero.
		diag := func(i int) float64 { return float64(int8(payload >> (8 * i))) } //nolint:gosec
		switch rep.Type() {
		case section.TypeMatrix2d:
			var m scene.Matrix2d
			m[0], m[3] = diag(0), diag(1)
			return m
		case section.TypeMatrix3d:
			var m scene.Matrix3d
			m[0], m[4], m[8] = diag(0), diag(1), diag(2)
			return m
		case section.TypeMatrix4d:
			var m scene.Matrix4d
			m[0], m[5], m[10], m[15] = diag(0), diag(1), diag(2), diag(3)
			return m
		}

		return scene.Placeholder{}
	}

	switch rep.Type() {
	case section.TypeMatrix2d:
		return r.scalarAt(payload, 32, func(b []byte) scene.Value {
			var m scene.Matrix2d
			for i := range m {
				m[i] = r.f64(b, i)
			}
			return m
		})
	case section.TypeMatrix3d:
		return r.scalarAt(payload, 72, func(b []byte) scene.Value {
			var m scene.Matrix3d
			for i := range m {
				m[i] = r.f64(b, i)
			}
			return m
		})
	case section.TypeMatrix4d:
		return r.scalarAt(payload, 128, func(b []byte) scene.Value {
			var m scene.Matrix4d
			for i := range m {
				m[i] = r.f64(b, i)
			}
			return m
		})
	}

	return scene.Placeholder{}
}

func (r *fileReader) i32(b []byte, i int) int32 {
	return int32(r.engine.Uint32(b[i*4:])) //nolint:gosec
}

func (r *fileReader) f32(b []byte, i int) float32 {
	return math.Float32frombits(r.engine.Uint32(b[i*4:]))
}

func (r *fileReader) f64(b []byte, i int) float64 {
	return math.Float64frombits(r.engine.Uint64(b[i*8:]))
}

// indexVector decodes a count-prefixed array of 32-bit table indices.
func indexVectorOf[T scene.ArrayElem](r *fileReader, off uint64, resolve func(uint32) T) scene.Value {
	count, pos, ok := r.countAt(off, 4)
	if !ok {
		return scene.Placeholder{}
	}

	out := make(scene.Array[T], count)
	for i := range out {
		out[i] = resolve(r.engine.Uint32(r.data[pos+uint64(i*4):]))
	}

	return out
}

// dictionaryAt decodes a nested dictionary. Each entry stores its value as
// a signed relative offset from the offset field's own location to an
// 8-byte descriptor, so descriptors (and their payloads) can live anywhere
// in the buffer and dictionaries nest by recursive descent. A malformed
// entry ends the dictionary; entries decoded so far are kept.
func (r *fileReader) dictionaryAt(off uint64, depth int) scene.Value {
	declared, ok := r.u64At(off)
	if !ok {
		return scene.Placeholder{}
	}

	dict := make(scene.Dictionary)
	pos := off + 8

	for i := uint64(0); i < declared; i++ {
		if !r.inBounds(pos, 12) {
			break
		}
		key := r.str(r.engine.Uint32(r.data[pos:]))
		pos += 4

		// Entries advance monotonically: a backward descriptor offset would
		// let a forged count spin the cursor in place.
		rel := int64(r.engine.Uint64(r.data[pos:])) //nolint:gosec
		if rel < 0 {
			break
		}
		repPos := pos + uint64(rel)
		if !r.inBounds(repPos, 8) {
			break
		}

		inner := section.ValueRep(r.engine.Uint64(r.data[repPos:]))
		dict[key] = r.valueAt(inner, depth+1)
		pos = repPos + 8
	}

	return dict
}

// timeSamplesAt decodes the two chained relative-offset indirections: the
// first locates the times vector's descriptor, the second the values area
// holding a count and that many contiguous descriptors. Times and values
// zip positionally.
func (r *fileReader) timeSamplesAt(off uint64, depth int) scene.Value {
	timesPos, ok := r.relAt(off)
	if !ok {
		return scene.Placeholder{}
	}
	timesRep, ok := r.u64At(timesPos)
	if !ok {
		return scene.Placeholder{}
	}

	times, ok := r.valueAt(section.ValueRep(timesRep), depth+1).(scene.Array[float64])
	if !ok {
		return scene.Placeholder{}
	}

	valuesPos, ok := r.relAt(off + 8)
	if !ok {
		return scene.Placeholder{}
	}
	count, repsPos, ok := r.countAt(valuesPos, section.ValueRepSize)
	if !ok {
		return scene.Placeholder{}
	}

	if count > len(times) {
		count = len(times)
	}

	ts := scene.TimeSamples{
		Times:  times[:count],
		Values: make([]scene.Value, count),
	}
	for i := 0; i < count; i++ {
		rep := section.ValueRep(r.engine.Uint64(r.data[repsPos+uint64(i*8):]))
		ts.Values[i] = r.valueAt(rep, depth+1)
	}

	return ts
}

// relAt reads a signed 64-bit relative offset at off, measured from off
// itself, and returns the resulting absolute position.
func (r *fileReader) relAt(off uint64) (uint64, bool) {
	raw, ok := r.u64At(off)
	if !ok {
		return 0, false
	}

	target := int64(off) + int64(raw) //nolint:gosec
	if target < 0 || uint64(target) > uint64(len(r.data)) {
		return 0, false
	}

	return uint64(target), true
}

// List-operation wire flags.
const (
	listOpExplicitMode = 1 << 0
	listOpHasExplicit  = 1 << 1
	listOpHasAdded     = 1 << 2
	listOpHasDeleted   = 1 << 3
	listOpHasOrdered   = 1 << 4
	listOpHasPrepended = 1 << 5
	listOpHasAppended  = 1 << 6
)

// listOpAt decodes a list operation: a flag byte selecting up to six
// optional sub-vectors, each independently length-prefixed. A malformed
// sub-vector is dropped; the vectors before it are kept.
func (r *fileReader) listOpAt(off uint64, itemType scene.ListOpItemType) scene.Value {
	if !r.inBounds(off, 1) {
		return scene.Placeholder{}
	}

	flags := r.data[off]
	pos := off + 1

	op := &scene.ListOp{
		ItemType:   itemType,
		IsExplicit: flags&listOpExplicitMode != 0,
	}

	vectors := []struct {
		bit  byte
		dest *[]string
	}{
		{listOpHasExplicit, &op.Explicit},
		{listOpHasAdded, &op.Added},
		{listOpHasDeleted, &op.Deleted},
		{listOpHasOrdered, &op.Ordered},
		{listOpHasPrepended, &op.Prepended},
		{listOpHasAppended, &op.Appended},
	}

	for _, v := range vectors {
		if flags&v.bit == 0 {
			continue
		}

		count, itemsPos, ok := r.countAt(pos, 4)
		if !ok {
			break
		}

		items := make([]string, count)
		for i := range items {
			idx := r.engine.Uint32(r.data[itemsPos+uint64(i*4):])
			switch itemType {
			case scene.ListOpTokens:
				items[i] = r.token(idx)
			case scene.ListOpStrings:
				items[i] = r.str(idx)
			case scene.ListOpPaths:
				items[i] = string(r.path(idx))
			}
		}
		*v.dest = items
		pos = itemsPos + uint64(count*4)
	}

	return op
}

func (r *fileReader) variantSelectionsAt(off uint64) scene.Value {
	count, pos, ok := r.countAt(off, 8)
	if !ok {
		return scene.Placeholder{}
	}

	sel := make(scene.VariantSelections, count)
	for i := 0; i < count; i++ {
		entry := r.data[pos+uint64(i*8):]
		sel[r.str(r.engine.Uint32(entry))] = r.str(r.engine.Uint32(entry[4:]))
	}

	return sel
}
