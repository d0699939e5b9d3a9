package crate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scenekit/crate/scene"
)

func buildTestDocument() *scene.Document {
	doc := scene.NewDocument()
	doc.Metadata["documentation"] = scene.String("round-trip fixture")
	doc.Metadata["startTimeCode"] = scene.Double(1)
	doc.Metadata["endTimeCode"] = scene.Double(24)
	doc.Metadata["customLayerData"] = scene.Dictionary{
		"author":  scene.String("scenekit"),
		"version": scene.Int(3),
		"nested": scene.Dictionary{
			"enabled": scene.Bool(true),
			"scale":   scene.Double(0.25),
		},
	}

	world := doc.NewNode(doc.Root, "World")
	world.Specifier = scene.SpecifierDef
	world.TypeName = "Xform"
	world.Metadata["kind"] = scene.Token("group")
	world.Metadata["apiSchemas"] = &scene.ListOp{
		ItemType:  scene.ListOpTokens,
		Prepended: []string{"CollectionAPI"},
	}

	mesh := doc.NewNode(world, "Mesh")
	mesh.Specifier = scene.SpecifierDef
	mesh.TypeName = "Mesh"

	points := mesh.EnsureProperty("points", scene.KindAttribute)
	points.TypeName = "point3f[]"
	points.Default = scene.Array[scene.Vec3f]{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	indices := mesh.EnsureProperty("faceVertexIndices", scene.KindAttribute)
	indices.TypeName = "int[]"
	indices.Default = scene.Array[int32]{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17}

	widths := mesh.EnsureProperty("widths", scene.KindAttribute)
	widths.TypeName = "float[]"
	widths.Default = scene.Array[float64]{
		0.1, 0.2, 0.1, 0.2, 0.1, 0.2, 0.1, 0.2,
		0.1, 0.2, 0.1, 0.2, 0.1, 0.2, 0.1, 0.2,
	}
	widths.Variability = scene.VariabilityUniform

	visibility := mesh.EnsureProperty("visibility", scene.KindAttribute)
	visibility.TypeName = "token"
	visibility.Default = scene.Token("inherited")
	visibility.Custom = true

	anim := mesh.EnsureProperty("xformOp:translate", scene.KindAttribute)
	anim.TypeName = "double3"
	anim.TimeSamples = &scene.TimeSamples{
		Times: []float64{1, 12, 24},
		Values: []scene.Value{
			scene.Vec3d{0, 0, 0},
			scene.Vec3d{0.5, 2.25, 0},
			scene.Vec3d{1, 4.5, 0},
		},
	}

	mat := doc.NewNode(doc.Root, "Materials")
	mat.Specifier = scene.SpecifierClass

	binding := mesh.EnsureProperty("material:binding", scene.KindRelationship)
	binding.Targets = &scene.ListOp{
		ItemType:   scene.ListOpPaths,
		IsExplicit: true,
		Explicit:   []string{"/Materials"},
	}

	return doc
}

func TestRoundTrip_Document(t *testing.T) {
	data, err := WriteDocument(buildTestDocument())
	require.NoError(t, err)

	doc, err := ReadDocument(data)
	require.NoError(t, err)

	require.Equal(t, scene.String("round-trip fixture"), doc.Metadata["documentation"])
	require.Equal(t, scene.Double(1), doc.Metadata["startTimeCode"])
	require.Equal(t, scene.Dictionary{
		"author":  scene.String("scenekit"),
		"version": scene.Int(3),
		"nested": scene.Dictionary{
			"enabled": scene.Bool(true),
			"scale":   scene.Double(0.25),
		},
	}, doc.Metadata["customLayerData"])

	world := doc.NodeAt("/World")
	require.NotNil(t, world)
	require.Equal(t, scene.SpecifierDef, world.Specifier)
	require.Equal(t, "Xform", world.TypeName)
	require.Equal(t, scene.Token("group"), world.Metadata["kind"])
	require.Equal(t, &scene.ListOp{
		ItemType:  scene.ListOpTokens,
		Prepended: []string{"CollectionAPI"},
	}, world.Metadata["apiSchemas"])

	mesh := doc.NodeAt("/World/Mesh")
	require.NotNil(t, mesh)
	require.Equal(t, "Mesh", mesh.TypeName)

	points := mesh.Property("points")
	require.NotNil(t, points)
	require.Equal(t, scene.KindAttribute, points.Kind)
	require.Equal(t, "point3f[]", points.TypeName)
	require.Equal(t, scene.Array[scene.Vec3f]{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, points.Default)

	indices := mesh.Property("faceVertexIndices")
	require.NotNil(t, indices)
	require.Equal(t, scene.Array[int32]{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17}, indices.Default)

	widths := mesh.Property("widths")
	require.NotNil(t, widths)
	require.Equal(t, scene.Array[float64]{
		0.1, 0.2, 0.1, 0.2, 0.1, 0.2, 0.1, 0.2,
		0.1, 0.2, 0.1, 0.2, 0.1, 0.2, 0.1, 0.2,
	}, widths.Default)
	require.Equal(t, scene.VariabilityUniform, widths.Variability)

	visibility := mesh.Property("visibility")
	require.NotNil(t, visibility)
	require.True(t, visibility.Custom)
	require.Equal(t, scene.Token("inherited"), visibility.Default)

	anim := mesh.Property("xformOp:translate")
	require.NotNil(t, anim)
	require.NotNil(t, anim.TimeSamples)
	require.Equal(t, []float64{1, 12, 24}, anim.TimeSamples.Times)
	require.Equal(t, []scene.Value{
		scene.Vec3d{0, 0, 0},
		scene.Vec3d{0.5, 2.25, 0},
		scene.Vec3d{1, 4.5, 0},
	}, anim.TimeSamples.Values)

	binding := mesh.Property("material:binding")
	require.NotNil(t, binding)
	require.Equal(t, scene.KindRelationship, binding.Kind)
	require.Equal(t, &scene.ListOp{
		ItemType:   scene.ListOpPaths,
		IsExplicit: true,
		Explicit:   []string{"/Materials"},
	}, binding.Targets)

	mat := doc.NodeAt("/Materials")
	require.NotNil(t, mat)
	require.Equal(t, scene.SpecifierClass, mat.Specifier)
}

func TestRoundTrip_Values(t *testing.T) {
	tests := []struct {
		name  string
		value scene.Value
	}{
		{name: "bool", value: scene.Bool(true)},
		{name: "uchar", value: scene.UChar(200)},
		{name: "int negative", value: scene.Int(-42)},
		{name: "uint", value: scene.UInt(4000000000)},
		{name: "int64 inline", value: scene.Int64(-7)},
		{name: "int64 wide", value: scene.Int64(1 << 40)},
		{name: "uint64 inline", value: scene.UInt64(12)},
		{name: "uint64 wide", value: scene.UInt64(1 << 60)},
		{name: "float", value: scene.Float(2.5)},
		{name: "double exact", value: scene.Double(1.5)},
		{name: "double inexact", value: scene.Double(0.1)},
		{name: "timecode", value: scene.TimeCode(101.25)},
		{name: "string", value: scene.String("hello world")},
		{name: "token", value: scene.Token("wrapMode")},
		{name: "asset path", value: scene.AssetPath("./textures/wood.png")},
		{name: "specifier", value: scene.SpecifierOver},
		{name: "permission", value: scene.PermissionPrivate},
		{name: "variability", value: scene.VariabilityUniform},
		{name: "vec3i packed", value: scene.Vec3i{1, -2, 127}},
		{name: "vec3i wide", value: scene.Vec3i{1000, -2, 3}},
		{name: "vec3f packed", value: scene.Vec3f{1, 2, 3}},
		{name: "vec3f fractional", value: scene.Vec3f{0.5, 1.5, 2.5}},
		{name: "vec4d", value: scene.Vec4d{0.25, 0.5, 0.75, 1}},
		{name: "quatf", value: scene.Quatf{0, 0, 0, 1}},
		{name: "quatd", value: scene.Quatd{0.1, 0.2, 0.3, 0.9}},
		{name: "matrix diagonal", value: scene.Matrix3d{2, 0, 0, 0, 2, 0, 0, 0, 2}},
		{name: "matrix full", value: scene.Matrix2d{1, 0.5, 0.5, 1}},
		{
			name: "matrix4d identity",
			value: scene.Matrix4d{
				1, 0, 0, 0,
				0, 1, 0, 0,
				0, 0, 1, 0,
				0, 0, 0, 1,
			},
		},
		{name: "empty dictionary", value: scene.Dictionary{}},
		{name: "empty int array", value: scene.Array[int32]{}},
		{name: "small int array", value: scene.Array[int32]{5, -3, 7}},
		{
			name:  "compressed uint array",
			value: scene.Array[uint32]{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150, 160},
		},
		{name: "int64 array", value: scene.Array[int64]{1 << 40, -5, 0}},
		{name: "bool array", value: scene.Array[bool]{true, false, true}},
		{
			name: "integral float array",
			value: scene.Array[float32]{
				0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
			},
		},
		{name: "token array", value: scene.Array[scene.Token]{"a", "b", "a"}},
		{name: "string array", value: scene.Array[scene.String]{"x", "y"}},
		{name: "timecode array", value: scene.Array[scene.TimeCode]{1, 2.5}},
		{name: "vec2f array", value: scene.Array[scene.Vec2f]{{0, 1}, {0.5, 0.25}}},
		{name: "variant selections", value: scene.VariantSelections{"shadingVariant": "red"}},
		{
			name: "time samples",
			value: scene.TimeSamples{
				Times:  []float64{0, 1},
				Values: []scene.Value{scene.Double(0.5), scene.Double(1.5)},
			},
		},
		{name: "placeholder", value: scene.Placeholder{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := scene.NewDocument()
			doc.Metadata["value"] = tt.value

			data, err := WriteDocument(doc)
			require.NoError(t, err)

			decoded, err := ReadDocument(data)
			require.NoError(t, err)
			require.Equal(t, tt.value, decoded.Metadata["value"])
		})
	}
}

func TestRoundTrip_EmptyDocument(t *testing.T) {
	data, err := WriteDocument(scene.NewDocument())
	require.NoError(t, err)

	doc, err := ReadDocument(data)
	require.NoError(t, err)
	require.Empty(t, doc.Metadata)
	require.Empty(t, doc.Root.Children)
}

func TestRoundTrip_PathArrayValue(t *testing.T) {
	doc := scene.NewDocument()
	n := doc.NewNode(doc.Root, "Rig")
	n.Metadata["sources"] = scene.Array[scene.Path]{"/Rig", "/Rig/Arm"}
	doc.NewNode(n, "Arm")

	data, err := WriteDocument(doc)
	require.NoError(t, err)

	decoded, err := ReadDocument(data)
	require.NoError(t, err)
	require.Equal(t,
		scene.Array[scene.Path]{"/Rig", "/Rig/Arm"},
		decoded.NodeAt("/Rig").Metadata["sources"])
}

func TestWriteDocument_NilDocument(t *testing.T) {
	_, err := WriteDocument(nil)
	require.Error(t, err)
}
