package scene

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPath_Predicates(t *testing.T) {
	require.True(t, RootPath.IsRoot())
	require.False(t, RootPath.IsProperty())
	require.True(t, Path("").IsEmpty())
	require.True(t, Path("/World/Mesh.points").IsProperty())
	require.False(t, Path("/World/Mesh").IsProperty())
}

func TestPath_Name(t *testing.T) {
	require.Equal(t, "points", Path("/World/Mesh.points").Name())
	require.Equal(t, "Mesh", Path("/World/Mesh").Name())
	require.Equal(t, "World", Path("/World").Name())
}

func TestPath_Parent(t *testing.T) {
	require.Equal(t, Path("/World/Mesh"), Path("/World/Mesh.points").Parent())
	require.Equal(t, Path("/World"), Path("/World/Mesh").Parent())
	require.Equal(t, RootPath, Path("/World").Parent())
	require.Equal(t, Path(""), RootPath.Parent())
}

func TestPath_Append(t *testing.T) {
	require.Equal(t, Path("/World"), RootPath.AppendChild("World"))
	require.Equal(t, Path("/World/Mesh"), Path("/World").AppendChild("Mesh"))
	require.Equal(t, Path("/World/Mesh.points"), Path("/World/Mesh").AppendProperty("points"))
}

func TestDocument_Tree(t *testing.T) {
	doc := NewDocument()
	world := doc.NewNode(doc.Root, "World")
	mesh := doc.NewNode(world, "Mesh")

	require.Equal(t, Path("/World/Mesh"), mesh.Path)
	require.Same(t, mesh, doc.NodeAt("/World/Mesh"))
	require.Same(t, doc.Root, doc.NodeAt("/"))
	require.Nil(t, doc.NodeAt("/Nope"))
	require.Nil(t, doc.NodeAt("/World/Mesh.points"))

	p := mesh.EnsureProperty("points", KindAttribute)
	require.Equal(t, Path("/World/Mesh.points"), p.Path)
	require.Same(t, p, mesh.EnsureProperty("points", KindAttribute))
	require.Same(t, p, mesh.Property("points"))
}
