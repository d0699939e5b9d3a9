package scene

import "strings"

// PropertyKind distinguishes the two property flavors.
type PropertyKind uint8

const (
	// KindAttribute is a typed, possibly animated data property.
	KindAttribute PropertyKind = iota
	// KindRelationship is a property whose value is a set of target paths.
	KindRelationship
)

// Property is one named attribute or relationship on a node.
type Property struct {
	Name string
	Path Path
	Kind PropertyKind

	// TypeName is the declared value type of an attribute ("float3[]",
	// "token", ...); empty for relationships.
	TypeName string

	// Default is the attribute's static value; nil when only time samples
	// or targets exist.
	Default Value

	// TimeSamples holds per-frame animation samples, nil when absent.
	TimeSamples *TimeSamples

	// Targets holds a relationship's target-path edit, nil for attributes
	// without connections.
	Targets *ListOp

	// Variability marks uniform attributes.
	Variability Variability

	// Custom marks attributes outside the node's schema.
	Custom bool

	// Metadata carries every field with no structural meaning.
	Metadata map[string]Value
}

// Node is one named element of the hierarchy.
type Node struct {
	Name string
	Path Path

	Specifier Specifier

	// TypeName is the schema type ("Mesh", "Xform", ...); may be empty.
	TypeName string

	Metadata   map[string]Value
	Properties map[string]*Property

	// Children preserves declaration order.
	Children []*Node
}

// Child returns the child node with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// AddChild appends c to the node's children.
func (n *Node) AddChild(c *Node) {
	n.Children = append(n.Children, c)
}

// Property returns the named property, or nil.
func (n *Node) Property(name string) *Property {
	return n.Properties[name]
}

// EnsureProperty returns the named property, creating it with the given
// kind if absent.
func (n *Node) EnsureProperty(name string, kind PropertyKind) *Property {
	if p, ok := n.Properties[name]; ok {
		return p
	}

	p := &Property{
		Name:     name,
		Path:     n.Path.AppendProperty(name),
		Kind:     kind,
		Metadata: make(map[string]Value),
	}
	if n.Properties == nil {
		n.Properties = make(map[string]*Property)
	}
	n.Properties[name] = p

	return p
}

// Document is the in-memory model produced by a decode and consumed by an
// encode: pseudo-root metadata plus the node tree. It is built once per
// decode call and traversed read-only on encode.
type Document struct {
	// Metadata holds the pseudo-root fields (documentation, frame range,
	// default node, ...).
	Metadata map[string]Value

	// Root is the pseudo-root node at "/"; its children are the top-level
	// nodes.
	Root *Node
}

// NewDocument returns an empty document with an initialized pseudo-root.
func NewDocument() *Document {
	return &Document{
		Metadata: make(map[string]Value),
		Root: &Node{
			Path:       RootPath,
			Metadata:   make(map[string]Value),
			Properties: make(map[string]*Property),
		},
	}
}

// NewNode creates a node under parent, links it and returns it.
func (d *Document) NewNode(parent *Node, name string) *Node {
	n := &Node{
		Name:       name,
		Path:       parent.Path.AppendChild(name),
		Metadata:   make(map[string]Value),
		Properties: make(map[string]*Property),
	}
	parent.AddChild(n)

	return n
}

// NodeAt walks the tree to the node at path, returning nil when absent or
// when path addresses a property.
func (d *Document) NodeAt(path Path) *Node {
	if path.IsRoot() {
		return d.Root
	}
	if path.IsEmpty() || path.IsProperty() {
		return nil
	}

	n := d.Root
	rest := string(path[1:])
	for n != nil && rest != "" {
		name := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			name = rest[:i]
			rest = rest[i+1:]
		} else {
			rest = ""
		}
		n = n.Child(name)
	}

	return n
}
