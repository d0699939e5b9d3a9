package scene

import "strings"

// Path is a fully-resolved hierarchical path string: "/" for the
// pseudo-root, "/A/B" for a node, "/A/B.points" for a property. The
// property separator appears at most once and only in the final element.
type Path string

func (Path) isValue() {}

// RootPath addresses the pseudo-root.
const RootPath Path = "/"

// IsEmpty reports whether the path is the empty (invalid) path.
func (p Path) IsEmpty() bool {
	return p == ""
}

// IsRoot reports whether the path is the pseudo-root.
func (p Path) IsRoot() bool {
	return p == RootPath
}

// IsProperty reports whether the path addresses a property rather than a
// node.
func (p Path) IsProperty() bool {
	return strings.Contains(string(p), ".")
}

// Name returns the final segment: the node or property name. The root path
// has no name.
func (p Path) Name() string {
	if i := strings.LastIndexByte(string(p), '.'); i >= 0 {
		return string(p[i+1:])
	}
	if i := strings.LastIndexByte(string(p), '/'); i >= 0 {
		return string(p[i+1:])
	}

	return string(p)
}

// Parent returns the owning path: a property's node, a node's parent node,
// or the empty path for the root.
func (p Path) Parent() Path {
	if p.IsRoot() || p.IsEmpty() {
		return ""
	}
	if i := strings.LastIndexByte(string(p), '.'); i >= 0 {
		return p[:i]
	}
	if i := strings.LastIndexByte(string(p), '/'); i > 0 {
		return p[:i]
	}

	return RootPath
}

// AppendChild returns the path of a child node named name.
func (p Path) AppendChild(name string) Path {
	if p.IsRoot() {
		return Path("/" + name)
	}

	return p + Path("/"+name)
}

// AppendProperty returns the path of a property named name on this node.
func (p Path) AppendProperty(name string) Path {
	return p + Path("."+name)
}
