package scene

// Value is the closed sum of every value kind the codec materializes.
// Concrete variants are the scalar types below, fixed-size vectors and
// matrices, Array instantiations, Dictionary, VariantSelections, ListOp,
// TimeSamples and Placeholder.
type Value interface {
	isValue()
}

// Scalar variants.
type (
	Bool   bool
	UChar  uint8
	Int    int32
	UInt   uint32
	Int64  int64
	UInt64 uint64
	Float  float32
	Double float64

	// TimeCode is a double carrying time-coordinate semantics; it is a
	// distinct kind on the wire and stays distinct here so round trips
	// preserve it.
	TimeCode float64

	// String, Token and AssetPath all resolve through the token table but
	// are distinct kinds: strings intern through the string table, tokens
	// directly, asset paths carry resolver semantics.
	String    string
	Token     string
	AssetPath string
)

func (Bool) isValue()      {}
func (UChar) isValue()     {}
func (Int) isValue()       {}
func (UInt) isValue()      {}
func (Int64) isValue()     {}
func (UInt64) isValue()    {}
func (Float) isValue()     {}
func (Double) isValue()    {}
func (TimeCode) isValue()  {}
func (String) isValue()    {}
func (Token) isValue()     {}
func (AssetPath) isValue() {}

// Specifier states how a node composes: a concrete definition, an opinion
// overlay, or an abstract class.
type Specifier uint8

const (
	SpecifierDef Specifier = iota
	SpecifierOver
	SpecifierClass
)

func (Specifier) isValue() {}

func (s Specifier) String() string {
	switch s {
	case SpecifierDef:
		return "def"
	case SpecifierOver:
		return "over"
	case SpecifierClass:
		return "class"
	default:
		return "unknown"
	}
}

// Permission restricts where a property may be accessed from.
type Permission uint8

const (
	PermissionPublic Permission = iota
	PermissionPrivate
)

func (Permission) isValue() {}

// Variability states whether a property may vary over time.
type Variability uint8

const (
	VariabilityVarying Variability = iota
	VariabilityUniform
)

func (Variability) isValue() {}

// Fixed-size vector and matrix variants. Matrices are row-major.
type (
	Vec2i [2]int32
	Vec3i [3]int32
	Vec4i [4]int32

	Vec2f [2]float32
	Vec3f [3]float32
	Vec4f [4]float32

	Vec2d [2]float64
	Vec3d [3]float64
	Vec4d [4]float64

	Quatf [4]float32
	Quatd [4]float64

	Matrix2d [4]float64
	Matrix3d [9]float64
	Matrix4d [16]float64
)

func (Vec2i) isValue()    {}
func (Vec3i) isValue()    {}
func (Vec4i) isValue()    {}
func (Vec2f) isValue()    {}
func (Vec3f) isValue()    {}
func (Vec4f) isValue()    {}
func (Vec2d) isValue()    {}
func (Vec3d) isValue()    {}
func (Vec4d) isValue()    {}
func (Quatf) isValue()    {}
func (Quatd) isValue()    {}
func (Matrix2d) isValue() {}
func (Matrix3d) isValue() {}
func (Matrix4d) isValue() {}

// ArrayElem constrains the element types arrays may hold.
type ArrayElem interface {
	bool | uint8 | int32 | uint32 | int64 | uint64 | float32 | float64 |
		TimeCode | Token | String | AssetPath | Path |
		Vec2i | Vec3i | Vec4i | Vec2f | Vec3f | Vec4f | Vec2d | Vec3d | Vec4d |
		Quatf | Quatd | Matrix2d | Matrix3d | Matrix4d
}

// Array is a homogeneous sequence value. Array[T] for every permitted T is
// a Value variant.
type Array[T ArrayElem] []T

func (Array[T]) isValue() {}

// Dictionary is a nested string-keyed mapping; values may themselves be
// dictionaries to arbitrary depth.
type Dictionary map[string]Value

func (Dictionary) isValue() {}

// VariantSelections maps variant-set names to the selected variant.
type VariantSelections map[string]string

func (VariantSelections) isValue() {}

// TimeSamples is an ordered time-to-value mapping: Values[i] holds at
// Times[i]. Both slices always have equal length.
type TimeSamples struct {
	Times  []float64
	Values []Value
}

func (TimeSamples) isValue() {}

// Placeholder is the explicit variant standing in for array-edit values,
// unknown type tags, kinds the codec does not materialize, and values whose
// descriptors point outside the buffer. It is also what the writer emits
// (as a blocked-value descriptor) for any value shape it does not
// recognize.
type Placeholder struct{}

func (Placeholder) isValue() {}
