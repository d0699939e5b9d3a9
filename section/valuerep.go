package section

// ValueType is the 8-bit type tag stored in bits 48-55 of a ValueRep. The
// enumeration is closed: tags outside it decode to the placeholder value.
type ValueType uint8

const (
	TypeInvalid                 ValueType = 0
	TypeBool                    ValueType = 1
	TypeUChar                   ValueType = 2
	TypeInt                     ValueType = 3
	TypeUInt                    ValueType = 4
	TypeInt64                   ValueType = 5
	TypeUInt64                  ValueType = 6
	TypeHalf                    ValueType = 7
	TypeFloat                   ValueType = 8
	TypeDouble                  ValueType = 9
	TypeString                  ValueType = 10
	TypeToken                   ValueType = 11
	TypeAssetPath               ValueType = 12
	TypeMatrix2d                ValueType = 13
	TypeMatrix3d                ValueType = 14
	TypeMatrix4d                ValueType = 15
	TypeQuatd                   ValueType = 16
	TypeQuatf                   ValueType = 17
	TypeQuath                   ValueType = 18
	TypeVec2d                   ValueType = 19
	TypeVec2f                   ValueType = 20
	TypeVec2h                   ValueType = 21
	TypeVec2i                   ValueType = 22
	TypeVec3d                   ValueType = 23
	TypeVec3f                   ValueType = 24
	TypeVec3h                   ValueType = 25
	TypeVec3i                   ValueType = 26
	TypeVec4d                   ValueType = 27
	TypeVec4f                   ValueType = 28
	TypeVec4h                   ValueType = 29
	TypeVec4i                   ValueType = 30
	TypeDictionary              ValueType = 31
	TypeTokenListOp             ValueType = 32
	TypeStringListOp            ValueType = 33
	TypePathListOp              ValueType = 34
	TypeReferenceListOp         ValueType = 35
	TypeIntListOp               ValueType = 36
	TypeInt64ListOp             ValueType = 37
	TypeUIntListOp              ValueType = 38
	TypeUInt64ListOp            ValueType = 39
	TypePathVector              ValueType = 40
	TypeTokenVector             ValueType = 41
	TypeSpecifier               ValueType = 42
	TypePermission              ValueType = 43
	TypeVariability             ValueType = 44
	TypeVariantSelectionMap     ValueType = 45
	TypeTimeSamples             ValueType = 46
	TypePayload                 ValueType = 47
	TypeDoubleVector            ValueType = 48
	TypeLayerOffsetVector       ValueType = 49
	TypeStringVector            ValueType = 50
	TypeValueBlock              ValueType = 51
	TypeValue                   ValueType = 52
	TypeUnregisteredValue       ValueType = 53
	TypeUnregisteredValueListOp ValueType = 54
	TypePayloadListOp           ValueType = 55
	TypeTimeCode                ValueType = 56
	TypePathExpression          ValueType = 57

	// typeCount is one past the highest known tag.
	typeCount = 58
)

var typeNames = [typeCount]string{
	"Invalid", "Bool", "UChar", "Int", "UInt", "Int64", "UInt64", "Half",
	"Float", "Double", "String", "Token", "AssetPath", "Matrix2d",
	"Matrix3d", "Matrix4d", "Quatd", "Quatf", "Quath", "Vec2d", "Vec2f",
	"Vec2h", "Vec2i", "Vec3d", "Vec3f", "Vec3h", "Vec3i", "Vec4d", "Vec4f",
	"Vec4h", "Vec4i", "Dictionary", "TokenListOp", "StringListOp",
	"PathListOp", "ReferenceListOp", "IntListOp", "Int64ListOp",
	"UIntListOp", "UInt64ListOp", "PathVector", "TokenVector", "Specifier",
	"Permission", "Variability", "VariantSelectionMap", "TimeSamples",
	"Payload", "DoubleVector", "LayerOffsetVector", "StringVector",
	"ValueBlock", "Value", "UnregisteredValue", "UnregisteredValueListOp",
	"PayloadListOp", "TimeCode", "PathExpression",
}

// IsKnown reports whether t is inside the closed enumeration.
func (t ValueType) IsKnown() bool {
	return t < typeCount
}

func (t ValueType) String() string {
	if t < typeCount {
		return typeNames[t]
	}

	return "Unknown"
}

// ValueRep is the 64-bit tagged descriptor stored for every value: an 8-bit
// type tag at bits 48-55, flag bits at the top of the word, and a 48-bit
// payload that is either a small inlined value or an absolute byte offset
// into the file, depending on the inlined flag. A descriptor is
// self-describing: no external context is needed to know how many bytes to
// read.
type ValueRep uint64

const (
	repArrayBit      ValueRep = 1 << 63
	repInlinedBit    ValueRep = 1 << 62
	repCompressedBit ValueRep = 1 << 61
	repArrayEditBit  ValueRep = 1 << 60

	repPayloadMask ValueRep = (1 << 48) - 1
)

// NewValueRep builds a descriptor from its parts. The payload is truncated
// to 48 bits.
func NewValueRep(t ValueType, array, inlined, compressed bool, payload uint64) ValueRep {
	r := ValueRep(payload)&repPayloadMask | ValueRep(t)<<48
	if array {
		r |= repArrayBit
	}
	if inlined {
		r |= repInlinedBit
	}
	if compressed {
		r |= repCompressedBit
	}

	return r
}

// Type returns the 8-bit type tag.
func (r ValueRep) Type() ValueType {
	return ValueType(r >> 48) //nolint:gosec
}

// Payload returns the low 48 bits: an inlined value or an absolute offset.
func (r ValueRep) Payload() uint64 {
	return uint64(r & repPayloadMask)
}

// IsArray reports the array flag.
func (r ValueRep) IsArray() bool {
	return r&repArrayBit != 0
}

// IsInlined reports the inlined flag.
func (r ValueRep) IsInlined() bool {
	return r&repInlinedBit != 0
}

// IsCompressed reports the compressed flag.
func (r ValueRep) IsCompressed() bool {
	return r&repCompressedBit != 0
}

// IsArrayEdit reports the array-edit flag. Array edits always decode to the
// placeholder value.
func (r ValueRep) IsArrayEdit() bool {
	return r&repArrayEditBit != 0
}

// SpecType classifies what a spec declares at its path.
type SpecType uint8

const (
	SpecTypeUnknown            SpecType = 0
	SpecTypeAttribute          SpecType = 1
	SpecTypeConnection         SpecType = 2
	SpecTypeExpression         SpecType = 3
	SpecTypeMapper             SpecType = 4
	SpecTypeMapperArg          SpecType = 5
	SpecTypePrim               SpecType = 6
	SpecTypePseudoRoot         SpecType = 7
	SpecTypeRelationship       SpecType = 8
	SpecTypeRelationshipTarget SpecType = 9
	SpecTypeVariant            SpecType = 10
	SpecTypeVariantSet         SpecType = 11
)

func (s SpecType) String() string {
	switch s {
	case SpecTypeAttribute:
		return "Attribute"
	case SpecTypeConnection:
		return "Connection"
	case SpecTypeExpression:
		return "Expression"
	case SpecTypeMapper:
		return "Mapper"
	case SpecTypeMapperArg:
		return "MapperArg"
	case SpecTypePrim:
		return "Prim"
	case SpecTypePseudoRoot:
		return "PseudoRoot"
	case SpecTypeRelationship:
		return "Relationship"
	case SpecTypeRelationshipTarget:
		return "RelationshipTarget"
	case SpecTypeVariant:
		return "Variant"
	case SpecTypeVariantSet:
		return "VariantSet"
	default:
		return "Unknown"
	}
}
