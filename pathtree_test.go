package crate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scenekit/crate/scene"
)

// testInterner returns an interning func plus the backing table, with slot
// zero reserved for the empty token the way the writer reserves it.
func testInterner() (func(string) uint32, *[]string) {
	tokens := []string{""}
	index := map[string]uint32{"": 0}

	return func(s string) uint32 {
		if i, ok := index[s]; ok {
			return i
		}
		i := uint32(len(tokens))
		tokens = append(tokens, s)
		index[s] = i
		return i
	}, &tokens
}

func flattenFor(t *testing.T, paths []scene.Path) ([]uint32, []int32, []int32, map[scene.Path]uint32, []string) {
	t.Helper()

	tree := newPathTree()
	for _, p := range paths {
		tree.insert(p)
	}

	intern, tokens := testInterner()
	pathIndexes, elementTokenIndexes, jumps, slots := flattenPathTree(tree, intern)

	return pathIndexes, elementTokenIndexes, jumps, slots, *tokens
}

func TestFlattenPathTree_SingleChain(t *testing.T) {
	pathIndexes, elems, jumps, slots, tokens := flattenFor(t, []scene.Path{
		"/World",
		"/World/Mesh",
		"/World/Mesh.points",
	})

	require.Equal(t, []uint32{0, 1, 2, 3}, pathIndexes)
	require.Equal(t, []int32{-1, -1, -1, -2}, jumps)

	// Root carries the reserved empty token; the property's token index is
	// negated.
	require.Equal(t, int32(0), elems[0])
	require.Equal(t, "World", tokens[elems[1]])
	require.Equal(t, "Mesh", tokens[elems[2]])
	require.Negative(t, elems[3])
	require.Equal(t, "points", tokens[-elems[3]])

	require.Equal(t, uint32(0), slots[scene.RootPath])
	require.Equal(t, uint32(3), slots[scene.Path("/World/Mesh.points")])
}

func TestFlattenPathTree_SiblingJump(t *testing.T) {
	_, _, jumps, slots, _ := flattenFor(t, []scene.Path{
		"/A/B",
		"/C",
	})

	// A has a child subtree of size 2 and a sibling, so its jump is the
	// subtree size; C is the final leaf.
	require.Equal(t, []int32{-1, 2, -2, -2}, jumps)
	require.Equal(t, uint32(1), slots[scene.Path("/A")])
	require.Equal(t, uint32(2), slots[scene.Path("/A/B")])
	require.Equal(t, uint32(3), slots[scene.Path("/C")])
}

func TestFlattenPathTree_PropertiesBeforeChildren(t *testing.T) {
	_, _, _, slots, _ := flattenFor(t, []scene.Path{
		"/World/Child",
		"/World.radius",
	})

	// Properties emit ahead of child nodes regardless of insertion order.
	require.Less(t, slots[scene.Path("/World.radius")], slots[scene.Path("/World/Child")])
}

func TestBuildPaths_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		paths []scene.Path
	}{
		{name: "root only", paths: nil},
		{name: "single chain", paths: []scene.Path{"/World", "/World/Mesh", "/World/Mesh.points"}},
		{name: "siblings", paths: []scene.Path{"/A/B", "/C", "/C/D", "/C/E"}},
		{
			name: "wide with properties",
			paths: []scene.Path{
				"/Scene/Geo/Mesh.points",
				"/Scene/Geo/Mesh.normals",
				"/Scene/Geo/Mesh",
				"/Scene/Lights/Key.intensity",
				"/Scene/Lights/Fill",
				"/Materials/Steel",
				"/Materials.note",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pathIndexes, elems, jumps, slots, tokens := flattenFor(t, tt.paths)

			decoded := buildPaths(pathIndexes, elems, jumps, tokens)
			require.Len(t, decoded, len(slots))

			for path, slot := range slots {
				require.Equal(t, path, decoded[slot], "slot %d", slot)
			}
		})
	}
}

func TestBuildPaths_MalformedEntriesKeepDecodedPrefix(t *testing.T) {
	pathIndexes, elems, jumps, _, tokens := flattenFor(t, []scene.Path{"/A", "/B"})

	// Point the second entry's token outside the table; its branch ends but
	// the root survives.
	elems[1] = int32(len(tokens) + 10)
	decoded := buildPaths(pathIndexes, elems, jumps, tokens)
	require.Equal(t, scene.RootPath, decoded[0])
}

func TestBuildPaths_MismatchedArrayLengths(t *testing.T) {
	decoded := buildPaths([]uint32{0, 1}, []int32{0}, []int32{-2, -2}, []string{""})
	require.Len(t, decoded, 1)
	require.Equal(t, scene.RootPath, decoded[0])
}
