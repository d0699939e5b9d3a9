package crate

import (
	"sort"

	"github.com/scenekit/crate/scene"
	"github.com/scenekit/crate/section"
)

// assemble builds the document from the decoded tables. Specs are
// processed in slot order: slots are assigned depth-first with parents
// before children, so a node's spec is seen before any spec underneath it.
func (r *fileReader) assemble() *scene.Document {
	doc := scene.NewDocument()

	specs := make([]specRow, len(r.specs))
	copy(specs, r.specs)
	sort.Slice(specs, func(i, j int) bool { return specs[i].PathIndex < specs[j].PathIndex })

	for _, spec := range specs {
		if int(spec.PathIndex) >= len(r.paths) {
			continue
		}
		path := r.paths[spec.PathIndex]
		fields := r.fieldSetRun(spec.FieldSetIndex)

		switch spec.Type {
		case section.SpecTypePseudoRoot:
			for _, f := range fields {
				doc.Metadata[r.token(f.TokenIndex)] = r.value(f.Rep)
			}
		case section.SpecTypePrim:
			r.assembleNode(doc, path, fields)
		case section.SpecTypeAttribute:
			r.assembleProperty(doc, path, fields, scene.KindAttribute)
		case section.SpecTypeRelationship:
			r.assembleProperty(doc, path, fields, scene.KindRelationship)
		default:
			// Variant, connection and the other composition spec flavors
			// have no model representation.
		}
	}

	return doc
}

// fieldSetRun resolves one sentinel-terminated run of field indices.
func (r *fileReader) fieldSetRun(start uint32) []field {
	var fields []field
	for i := int(start); i < len(r.fieldSets); i++ {
		idx := r.fieldSets[i]
		if idx == section.InvalidIndex {
			break
		}
		if int(idx) < len(r.fields) {
			fields = append(fields, r.fields[idx])
		}
	}

	return fields
}

// ensureNode returns the node at path, creating it and any missing
// ancestors. Created ancestors start as empty over-specified nodes; their
// own specs fill them in if present.
func (r *fileReader) ensureNode(doc *scene.Document, path scene.Path) *scene.Node {
	if path.IsRoot() {
		return doc.Root
	}
	if path.IsEmpty() || path.IsProperty() {
		return nil
	}

	if n := doc.NodeAt(path); n != nil {
		return n
	}

	parent := r.ensureNode(doc, path.Parent())
	if parent == nil {
		return nil
	}

	n := doc.NewNode(parent, path.Name())
	n.Specifier = scene.SpecifierOver

	return n
}

func (r *fileReader) assembleNode(doc *scene.Document, path scene.Path, fields []field) {
	n := r.ensureNode(doc, path)
	if n == nil {
		return
	}

	for _, f := range fields {
		name := r.token(f.TokenIndex)
		v := r.value(f.Rep)

		switch name {
		case fieldSpecifier:
			if s, ok := v.(scene.Specifier); ok {
				n.Specifier = s
			}
		case fieldTypeName:
			if t, ok := v.(scene.Token); ok {
				n.TypeName = string(t)
			}
		default:
			n.Metadata[name] = v
		}
	}
}

func (r *fileReader) assembleProperty(doc *scene.Document, path scene.Path, fields []field, kind scene.PropertyKind) {
	if !path.IsProperty() {
		return
	}

	n := r.ensureNode(doc, path.Parent())
	if n == nil {
		return
	}
	p := n.EnsureProperty(path.Name(), kind)

	for _, f := range fields {
		name := r.token(f.TokenIndex)
		v := r.value(f.Rep)

		switch name {
		case fieldTypeName:
			if t, ok := v.(scene.Token); ok {
				p.TypeName = string(t)
			}
		case fieldDefault:
			p.Default = v
		case fieldTimeSamples:
			if ts, ok := v.(scene.TimeSamples); ok {
				p.TimeSamples = &ts
			}
		case fieldTargetPaths, fieldConnectionPaths:
			p.Targets = asPathListOp(v)
		case fieldVariability:
			if vb, ok := v.(scene.Variability); ok {
				p.Variability = vb
			}
		case fieldCustom:
			if b, ok := v.(scene.Bool); ok {
				p.Custom = bool(b)
			}
		default:
			p.Metadata[name] = v
		}
	}
}

// asPathListOp accepts the two wire shapes target paths arrive in: a path
// list operation, or a plain path vector, normalized to an explicit op.
func asPathListOp(v scene.Value) *scene.ListOp {
	switch x := v.(type) {
	case *scene.ListOp:
		if x.ItemType == scene.ListOpPaths {
			return x
		}
	case scene.Array[scene.Path]:
		items := make([]string, len(x))
		for i, p := range x {
			items[i] = string(p)
		}
		return &scene.ListOp{
			ItemType:   scene.ListOpPaths,
			IsExplicit: true,
			Explicit:   items,
		}
	}

	return nil
}
