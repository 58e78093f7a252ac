// Package namer assigns deterministic, collision-free output
// identifiers to every type and operation in the completed models.
//
// Names are a pure function of the input model and configuration:
// traversal follows arena insertion order for types and document
// declaration order for operations, so identical input always yields
// identical names. Within a scope the first occupant of a base name
// keeps the unadorned form; later colliders receive a suffix derived
// from their declaration path rather than a traversal-dependent counter.
package namer

import (
	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/loader"
	"github.com/oasforge/oasforge/opmodel"
	"github.com/oasforge/oasforge/typemodel"
)

// Config carries the naming inputs supplied by the caller.
type Config struct {
	// ReservedWords is the reserved-identifier set of the output
	// language. It is configuration, not hard-coded: the namer itself
	// is output-language agnostic.
	ReservedWords []string
}

// SymbolTable maps semantic keys (arena indices and operation
// identifiers) to their assigned output identifiers. It is read-only
// after Assign returns.
type SymbolTable struct {
	types map[typemodel.TypeID]string
	ops   map[string]string
}

// TypeName returns the identifier assigned to a type.
func (st *SymbolTable) TypeName(id typemodel.TypeID) (string, bool) {
	name, ok := st.types[id]
	return name, ok
}

// OperationName returns the identifier assigned to an operation,
// keyed by operation identifier.
func (st *SymbolTable) OperationName(opID string) (string, bool) {
	name, ok := st.ops[opID]
	return name, ok
}

// Assign names every arena type and every top-level operation.
// Types share one scope, operations another.
func Assign(arena *typemodel.Arena, model *opmodel.Model, cfg Config) (*SymbolTable, error) {
	reserved := newReservedSet(cfg.ReservedWords)
	st := &SymbolTable{
		types: make(map[typemodel.TypeID]string, arena.Len()),
		ops:   make(map[string]string, len(model.Operations)),
	}

	typeScope := newScope(reserved)
	for i := 0; i < arena.Len(); i++ {
		id := typemodel.TypeID(i)
		t := arena.Get(id)
		name, err := typeScope.assign(typeBaseName(t), t.Path, "types")
		if err != nil {
			return nil, err
		}
		st.types[id] = name
	}

	opScope := newScope(reserved)
	for i := range model.Operations {
		op := &model.Operations[i]
		name, err := opScope.assign(sanitize(op.ID, "Operation"), op.DeclPath, "operations")
		if err != nil {
			return nil, err
		}
		st.ops[op.ID] = name
	}

	return st, nil
}

// typeBaseName picks the base identifier for a type: its declared
// component name when it has one, a name derived from its declaration
// path for inline schemas, or a kind-derived name for the interned
// markers that have neither.
func typeBaseName(t *typemodel.Type) string {
	if t.Name != "" {
		return sanitize(t.Name, "Type")
	}
	if t.Path != "" {
		return sanitize(pathWords(t.Path), "Type")
	}
	switch t.Kind {
	case typemodel.KindAny:
		return "AnyValue"
	case typemodel.KindEmpty:
		return "EmptyBody"
	default:
		return "Inline" + sanitize(t.Kind.String(), "Type")
	}
}

// pathWords flattens a JSON pointer into a word soup for sanitize:
// "/paths/~1pets/get/responses/200" -> "paths /pets get responses 200".
func pathWords(path string) string {
	out := ""
	for _, token := range splitPointer(path) {
		out += " " + token
	}
	return out
}

func splitPointer(path string) []string {
	var tokens []string
	start := 0
	for i := 1; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start+1 {
				tokens = append(tokens, loader.UnescapePointerToken(path[start+1:i]))
			}
			start = i
		}
	}
	return tokens
}

// scope enforces per-scope uniqueness with the first-wins collision
// policy.
type scope struct {
	reserved reservedSet
	used     map[string]bool
}

func newScope(reserved reservedSet) *scope {
	return &scope{reserved: reserved, used: map[string]bool{}}
}

// assign claims a name in the scope. The first claimant of a base name
// keeps it; a collider is retried with a suffix derived from its
// declaration path. Failing that, the disambiguation strategy is
// exhausted and naming fails.
func (s *scope) assign(base, declPath, scopeName string) (string, error) {
	name := s.reserved.escape(base)
	if !s.used[name] {
		s.used[name] = true
		return name, nil
	}

	suffixed := s.reserved.escape(base + sanitize(pathWords(declPath), ""))
	if suffixed != name && !s.used[suffixed] {
		s.used[suffixed] = true
		return suffixed, nil
	}

	return "", &generrors.NamingError{
		Scope:   scopeName,
		Name:    base,
		Path:    declPath,
		Message: "disambiguation exhausted",
	}
}
