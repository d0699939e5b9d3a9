package scene

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListOp_Compose_Explicit(t *testing.T) {
	op := &ListOp{IsExplicit: true, Explicit: []string{"/b", "/a"}}
	require.Equal(t, []string{"/b", "/a"}, op.Compose())
}

func TestListOp_Compose_AddDeleteOrder(t *testing.T) {
	op := &ListOp{
		Added:   []string{"a", "b"},
		Deleted: []string{"b"},
		Ordered: []string{"a"},
	}
	require.Equal(t, []string{"a"}, op.Compose())
}

func TestListOp_Compose_Lexicographic(t *testing.T) {
	op := &ListOp{Added: []string{"c", "a"}, Appended: []string{"b"}}
	require.Equal(t, []string{"a", "b", "c"}, op.Compose())
}

func TestListOp_Compose_OrderedWithRest(t *testing.T) {
	op := &ListOp{
		Added:     []string{"x", "y"},
		Prepended: []string{"p"},
		Appended:  []string{"q"},
		Ordered:   []string{"q", "x"},
	}
	// Ordered items first in ordered order, the rest keep original order.
	require.Equal(t, []string{"q", "x", "y", "p"}, op.Compose())
}

func TestListOp_Compose_Duplicates(t *testing.T) {
	op := &ListOp{Added: []string{"a"}, Appended: []string{"a", "b"}}
	require.Equal(t, []string{"a", "b"}, op.Compose())
}

func TestListOp_IsEmpty(t *testing.T) {
	require.True(t, (&ListOp{}).IsEmpty())
	require.False(t, (&ListOp{IsExplicit: true}).IsEmpty())
	require.False(t, (&ListOp{Deleted: []string{"x"}}).IsEmpty())
}
