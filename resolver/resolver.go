// Package resolver resolves $ref pointer references in loaded documents.
//
// Two concerns live here. Deref follows chains of $ref nodes - local
// ("#/components/schemas/Pet") or external ("./shared.yaml#/Pet") - to
// their structural target, rejecting chains that can never make progress
// (a reference defined as exactly itself). Tracker implements the
// per-node Unvisited -> InProgress -> Resolved state machine used by the
// type model builder to represent cyclic schema graphs: a node seen while
// InProgress hands back the arena slot reserved on entry instead of
// recursing forever.
package resolver

import (
	"strings"

	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/loader"
)

// MaxRefDepth is the maximum length of a pure $ref chain.
// This bounds pathological (but acyclic) chains of aliases.
const MaxRefDepth = 100

// Resolver resolves $ref references against a document table.
type Resolver struct {
	table *loader.Table
	// skipUnresolvedExternal makes unloadable external references resolve
	// to nil instead of failing the run.
	skipUnresolvedExternal bool
}

// New creates a resolver over the given document table.
func New(table *loader.Table) *Resolver {
	return &Resolver{table: table}
}

// SetSkipUnresolvedExternal configures soft failure for external
// references whose document cannot be loaded. When enabled, Deref
// returns a nil node for such references and the caller is expected to
// substitute a permissive default.
func (r *Resolver) SetSkipUnresolvedExternal(skip bool) {
	r.skipUnresolvedExternal = skip
}

// IsRef reports whether a node is a $ref object.
func IsRef(n *loader.Node) bool {
	return n != nil && n.Kind == loader.KindMapping && n.Has("$ref")
}

// CanonicalKey returns the identity key of a node: the owning document's
// source joined with the node's JSON pointer. Two references to the same
// document location share one key; structurally identical nodes declared
// separately do not.
func CanonicalKey(n *loader.Node) string {
	source := ""
	if n.Doc != nil {
		source = n.Doc.Source
	}
	return source + "#" + n.Path
}

// Deref follows $ref chains starting at node until it reaches a
// structural (non-$ref) node. It returns that node and its canonical key.
// A non-$ref input is returned as-is.
//
// A chain that revisits a node without ever reaching a structural anchor
// is a non-progressing cycle and fails with a circular ReferenceError.
// This is distinct from a structural cycle (an object whose property
// eventually references the object again), which is legal and handled by
// the Tracker in the type model builder.
//
// When an external document cannot be loaded and soft skipping is
// configured, Deref returns (nil, "", nil); otherwise the load failure is
// a fatal ReferenceError.
func (r *Resolver) Deref(node *loader.Node) (*loader.Node, string, error) {
	seen := map[string]bool{}
	depth := 0

	current := node
	for IsRef(current) {
		key := CanonicalKey(current)
		if seen[key] {
			return nil, "", &generrors.ReferenceError{
				Ref:        current.ChildString("$ref"),
				Path:       current.Path,
				IsCircular: true,
				Message:    "reference chain never reaches a structural definition",
			}
		}
		seen[key] = true

		depth++
		if depth > MaxRefDepth {
			return nil, "", &generrors.ReferenceError{
				Ref:     current.ChildString("$ref"),
				Path:    current.Path,
				Message: "reference chain too deep",
			}
		}

		refNode, _ := current.Get("$ref")
		ref, ok := refNode.AsString()
		if !ok {
			return nil, "", &generrors.ReferenceError{
				Path:    current.Path,
				Message: "$ref value is not a string",
			}
		}

		target, skipped, err := r.resolveOne(ref, current)
		if err != nil {
			return nil, "", err
		}
		if skipped {
			return nil, "", nil
		}
		current = target
	}

	return current, CanonicalKey(current), nil
}

// resolveOne resolves a single $ref string from the referencing node.
func (r *Resolver) resolveOne(ref string, from *loader.Node) (target *loader.Node, skipped bool, err error) {
	doc := from.Doc
	pointer := ref

	if !strings.HasPrefix(ref, "#") {
		// External reference: "path#pointer" or bare "path".
		parts := strings.SplitN(ref, "#", 2)
		pointer = "#"
		if len(parts) > 1 {
			pointer = "#" + parts[1]
		}

		doc, err = r.table.Load(parts[0])
		if err != nil {
			if r.skipUnresolvedExternal && !isPathTraversal(err) {
				return nil, true, nil
			}
			return nil, false, err
		}
	}

	node, err := Eval(doc, pointer)
	if err != nil {
		var refErr *generrors.ReferenceError
		if asReferenceError(err, &refErr) {
			refErr.Ref = ref
			refErr.Path = from.Path
			if doc != from.Doc {
				refErr.RefType = "file"
			} else {
				refErr.RefType = "local"
			}
		}
		return nil, false, err
	}
	return node, false, nil
}

func isPathTraversal(err error) bool {
	var refErr *generrors.ReferenceError
	return asReferenceError(err, &refErr) && refErr.IsPathTraversal
}
