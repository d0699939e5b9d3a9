package crate

import (
	"github.com/scenekit/crate/scene"
)

// The path table stores an entire hierarchy's path strings as three
// parallel arrays with no pointers. pathIndexes[i] is the destination slot
// of entry i; elementTokenIndexes[i] names the segment (negated when the
// segment is a property rather than a child node - the sign is the only
// signal distinguishing "/a/b" from "/a.b"); jumps[i] describes structure:
//
//	> 0  entry has a child subtree at i+1 and a sibling at i+jumps[i]
//	  0  sibling only, immediately following
//	 -1  child only, immediately following
//	 -2  leaf
//
// The first entry is always the pseudo-root "/".

// buildPaths reconstructs the full path string for every slot.
//
// Reconstruction walks an explicit work stack instead of recursing, so
// pathological hierarchies cannot exhaust the goroutine stack. Sibling
// ranges are pushed for later and the child range is continued in place,
// which visits every child before its parent's siblings - the order the
// flattened layout assumes. Malformed entries (slots or token indices out
// of range, jumps outside the array) end their branch; everything decoded
// so far is kept.
func buildPaths(pathIndexes []uint32, elementTokenIndexes, jumps []int32, tokens []string) []scene.Path {
	count := len(pathIndexes)
	if len(elementTokenIndexes) < count {
		count = len(elementTokenIndexes)
	}
	if len(jumps) < count {
		count = len(jumps)
	}

	paths := make([]scene.Path, count)
	if count == 0 {
		return paths
	}

	type frame struct {
		start  int
		parent scene.Path
	}

	stack := []frame{{start: 0, parent: ""}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cur := f.start
		parent := f.parent

		for cur >= 0 && cur < count {
			this := cur
			cur++

			var p scene.Path
			if parent.IsEmpty() {
				p = scene.RootPath
			} else {
				tokenIndex := elementTokenIndexes[this]
				isProperty := tokenIndex < 0
				if isProperty {
					tokenIndex = -tokenIndex
				}
				if int(tokenIndex) >= len(tokens) {
					break
				}
				name := tokens[tokenIndex]
				if isProperty {
					p = parent.AppendProperty(name)
				} else {
					p = parent.AppendChild(name)
				}
			}

			if slot := pathIndexes[this]; int(slot) < count {
				paths[slot] = p
			}

			jump := jumps[this]
			hasChild := jump > 0 || jump == -1
			hasSibling := jump >= 0

			switch {
			case hasChild:
				if hasSibling {
					// The sibling subtree starts at this+jump and shares
					// this entry's parent; defer it and descend first.
					stack = append(stack, frame{start: this + int(jump), parent: parent})
				}
				parent = p
			case hasSibling:
				// Sibling immediately follows with the same parent.
			default:
				cur = -1 // leaf
			}
		}
	}

	return paths
}

// pathTreeNode is one node of the explicit tree the flattener builds before
// emitting the parallel arrays. Children are ordered deterministically:
// properties first, then child nodes, each in first-insertion order, so a
// property's table entry is contiguous with (and after) its owner's.
type pathTreeNode struct {
	name     string
	property bool
	children []*pathTreeNode
	size     int // flattened subtree size including self
}

type pathTreeKey struct {
	name     string
	property bool
}

type pathTree struct {
	root  *pathTreeNode
	index map[scene.Path]*pathTreeNode
}

func newPathTree() *pathTree {
	root := &pathTreeNode{}

	return &pathTree{
		root:  root,
		index: map[scene.Path]*pathTreeNode{scene.RootPath: root},
	}
}

// insert adds path and every missing ancestor to the tree.
func (t *pathTree) insert(path scene.Path) {
	if path.IsEmpty() || path.IsRoot() {
		return
	}
	if _, ok := t.index[path]; ok {
		return
	}

	parentPath := path.Parent()
	t.insert(parentPath)
	parent := t.index[parentPath]

	node := &pathTreeNode{name: path.Name(), property: path.IsProperty()}
	if node.property {
		// Properties sort ahead of child nodes under the same parent.
		i := 0
		for i < len(parent.children) && parent.children[i].property {
			i++
		}
		parent.children = append(parent.children, nil)
		copy(parent.children[i+1:], parent.children[i:])
		parent.children[i] = node
	} else {
		parent.children = append(parent.children, node)
	}
	t.index[path] = node
}

// flattenPathTree turns the collected paths into the three parallel arrays,
// assigning slots in emission order, and returns the slot of every path.
//
// Subtree sizes are computed bottom-up first so each entry's sibling jump
// distance is known when the entry is emitted; emission then follows the
// identical depth-first, child-before-sibling order the decoder walks, so
// decoding the arrays reproduces the exact path set.
func flattenPathTree(t *pathTree, internToken func(string) uint32) (pathIndexes []uint32, elementTokenIndexes, jumps []int32, slots map[scene.Path]uint32) {
	computeSubtreeSizes(t.root)

	n := t.root.size
	pathIndexes = make([]uint32, 0, n)
	elementTokenIndexes = make([]int32, 0, n)
	jumps = make([]int32, 0, n)
	slots = make(map[scene.Path]uint32, n)

	type emitFrame struct {
		node       *pathTreeNode
		path       scene.Path
		hasSibling bool
	}

	stack := []emitFrame{{node: t.root, path: scene.RootPath}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		slot := uint32(len(pathIndexes)) //nolint:gosec
		slots[f.path] = slot
		pathIndexes = append(pathIndexes, slot)

		var tokenIndex int32
		if f.node != t.root {
			tokenIndex = int32(internToken(f.node.name)) //nolint:gosec
			if f.node.property {
				tokenIndex = -tokenIndex
			}
		}
		elementTokenIndexes = append(elementTokenIndexes, tokenIndex)

		var jump int32
		switch {
		case len(f.node.children) > 0 && f.hasSibling:
			jump = int32(f.node.size) //nolint:gosec
		case len(f.node.children) > 0:
			jump = -1
		case f.hasSibling:
			jump = 0
		default:
			jump = -2
		}
		jumps = append(jumps, jump)

		// Push children in reverse so the first child pops first,
		// immediately after its parent.
		for i := len(f.node.children) - 1; i >= 0; i-- {
			c := f.node.children[i]
			var childPath scene.Path
			if c.property {
				childPath = f.path.AppendProperty(c.name)
			} else {
				childPath = f.path.AppendChild(c.name)
			}
			stack = append(stack, emitFrame{
				node:       c,
				path:       childPath,
				hasSibling: i < len(f.node.children)-1,
			})
		}
	}

	return pathIndexes, elementTokenIndexes, jumps, slots
}

func computeSubtreeSizes(n *pathTreeNode) {
	n.size = 1
	for _, c := range n.children {
		computeSubtreeSizes(c)
		n.size += c.size
	}
}
