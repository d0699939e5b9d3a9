// Package scene defines the in-memory document model shared by every
// serialization of a scene description: a tree of nodes rooted at the
// pseudo-root, each with a specifier, an optional type name, a metadata
// mapping, named properties and child nodes.
//
// Values attached to fields form a closed sum type: every kind the binary
// container materializes has a concrete Go type implementing Value, plus
// one explicit Placeholder for array-edits, unknown tags and kinds the
// codec does not materialize. Decoders never hand back an open-ended "any";
// a type switch over the Value variants is exhaustive.
//
// The model is write-once per decode call and read-only during encode, so
// independent documents can be processed concurrently without locking.
package scene
