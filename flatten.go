package crate

import (
	"sort"

	"github.com/scenekit/crate/scene"
	"github.com/scenekit/crate/section"
)

// Structural field names: these carry the document shape and route to
// dedicated model fields instead of the metadata maps.
const (
	fieldSpecifier       = "specifier"
	fieldTypeName        = "typeName"
	fieldDefault         = "default"
	fieldTimeSamples     = "timeSamples"
	fieldTargetPaths     = "targetPaths"
	fieldConnectionPaths = "connectionPaths"
	fieldVariability     = "variability"
	fieldCustom          = "custom"
)

// collectPaths gathers every path the file must address: the node and
// property hierarchy plus every path mentioned inside values, since
// path-valued payloads store table slots, not strings.
func collectPaths(doc *scene.Document) *pathTree {
	tree := newPathTree()

	var collectValue func(v scene.Value)
	collectValue = func(v scene.Value) {
		switch x := v.(type) {
		case scene.Array[scene.Path]:
			for _, p := range x {
				tree.insert(p)
			}
		case *scene.ListOp:
			if x.ItemType != scene.ListOpPaths {
				return
			}
			for _, items := range [][]string{x.Explicit, x.Added, x.Deleted, x.Ordered, x.Prepended, x.Appended} {
				for _, item := range items {
					tree.insert(scene.Path(item))
				}
			}
		case scene.Dictionary:
			for _, nested := range x {
				collectValue(nested)
			}
		case scene.TimeSamples:
			for _, nested := range x.Values {
				collectValue(nested)
			}
		}
	}

	collectMeta := func(meta map[string]scene.Value) {
		for _, v := range meta {
			collectValue(v)
		}
	}

	var collectNode func(n *scene.Node)
	collectNode = func(n *scene.Node) {
		tree.insert(n.Path)
		collectMeta(n.Metadata)

		for _, name := range sortedPropertyNames(n) {
			p := n.Properties[name]
			tree.insert(p.Path)
			collectValue(p.Default)
			if p.TimeSamples != nil {
				collectValue(*p.TimeSamples)
			}
			if p.Targets != nil {
				collectValue(p.Targets)
			}
			collectMeta(p.Metadata)
		}

		for _, c := range n.Children {
			collectNode(c)
		}
	}

	collectMeta(doc.Metadata)
	for _, c := range doc.Root.Children {
		collectNode(c)
	}
	for _, name := range sortedPropertyNames(doc.Root) {
		tree.insert(doc.Root.Properties[name].Path)
	}

	return tree
}

// flattenDocument emits one spec per addressable path: the pseudo-root
// carrying the document metadata, a prim spec per node, and an attribute
// or relationship spec per property. The path table was flattened first,
// so every spec's slot is already fixed.
func (w *fileWriter) flattenDocument(doc *scene.Document) {
	w.addSpec(w.slots[scene.RootPath], w.addFieldSet(w.metadataFields(doc.Metadata)), section.SpecTypePseudoRoot)

	var emit func(n *scene.Node)
	emit = func(n *scene.Node) {
		w.addSpec(w.slots[n.Path], w.addFieldSet(w.nodeFields(n)), section.SpecTypePrim)

		for _, name := range sortedPropertyNames(n) {
			p := n.Properties[name]
			specType := section.SpecTypeAttribute
			if p.Kind == scene.KindRelationship {
				specType = section.SpecTypeRelationship
			}
			w.addSpec(w.slots[p.Path], w.addFieldSet(w.propertyFields(p)), specType)
		}

		for _, c := range n.Children {
			emit(c)
		}
	}

	for _, c := range doc.Root.Children {
		emit(c)
	}
}

func (w *fileWriter) nodeFields(n *scene.Node) []uint32 {
	fields := []uint32{
		w.addField(field{
			TokenIndex: w.internToken(fieldSpecifier),
			Rep:        w.writeValue(n.Specifier),
		}),
	}

	if n.TypeName != "" {
		fields = append(fields, w.addField(field{
			TokenIndex: w.internToken(fieldTypeName),
			Rep:        w.writeValue(scene.Token(n.TypeName)),
		}))
	}

	return append(fields, w.metadataFields(n.Metadata)...)
}

func (w *fileWriter) propertyFields(p *scene.Property) []uint32 {
	var fields []uint32

	add := func(name string, v scene.Value) {
		fields = append(fields, w.addField(field{
			TokenIndex: w.internToken(name),
			Rep:        w.writeValue(v),
		}))
	}

	if p.TypeName != "" {
		add(fieldTypeName, scene.Token(p.TypeName))
	}
	if p.Default != nil {
		add(fieldDefault, p.Default)
	}
	if p.TimeSamples != nil {
		add(fieldTimeSamples, *p.TimeSamples)
	}
	if p.Targets != nil {
		if p.Kind == scene.KindRelationship {
			add(fieldTargetPaths, p.Targets)
		} else {
			add(fieldConnectionPaths, p.Targets)
		}
	}
	if p.Variability != scene.VariabilityVarying {
		add(fieldVariability, p.Variability)
	}
	if p.Custom {
		add(fieldCustom, scene.Bool(true))
	}

	return append(fields, w.metadataFields(p.Metadata)...)
}

// metadataFields emits metadata entries in sorted key order so encoding is
// deterministic regardless of map iteration.
func (w *fileWriter) metadataFields(meta map[string]scene.Value) []uint32 {
	if len(meta) == 0 {
		return nil
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]uint32, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, w.addField(field{
			TokenIndex: w.internToken(k),
			Rep:        w.writeValue(meta[k]),
		}))
	}

	return fields
}

func sortedPropertyNames(n *scene.Node) []string {
	if len(n.Properties) == 0 {
		return nil
	}

	names := make([]string, 0, len(n.Properties))
	for name := range n.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
