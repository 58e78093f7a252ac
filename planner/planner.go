// Package planner groups the named type and operation models into
// emission units and verifies that the resulting intermediate
// representation is closed: every type a declaration or operation
// references has a declaration of its own. The planner is the last
// core phase; the renderer consumes its IR and never reads the arena
// or the source document directly.
package planner

import (
	"sort"

	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/namer"
	"github.com/oasforge/oasforge/opmodel"
	"github.com/oasforge/oasforge/typemodel"
)

// GroupingPolicy selects how operations are distributed across
// emission units.
type GroupingPolicy int

const (
	// GroupByTag places each operation in a unit named after its first
	// tag, untagged operations in DefaultUnitName, and every type
	// declaration in ModelUnitName.
	GroupByTag GroupingPolicy = iota

	// GroupSingle places all declarations in one unit named
	// SingleUnitName.
	GroupSingle
)

// String returns the policy name as used in configuration.
func (p GroupingPolicy) String() string {
	switch p {
	case GroupByTag:
		return "tag"
	case GroupSingle:
		return "single"
	default:
		return "unknown"
	}
}

const (
	// DefaultUnitName holds operations that carry no tags under the
	// GroupByTag policy.
	DefaultUnitName = "operations"

	// ModelUnitName holds all type declarations under the GroupByTag
	// policy.
	ModelUnitName = "models"

	// SingleUnitName is the sole unit under the GroupSingle policy.
	// The name stays clear of the renderer's base client file.
	SingleUnitName = "api"
)

// TypeDecl is one named type declaration in an emission unit.
type TypeDecl struct {
	// Symbol is the identifier assigned by the namer.
	Symbol string

	// ID addresses the declared type in the frozen arena.
	ID typemodel.TypeID

	// Type is the declared type's payload.
	Type *typemodel.Type
}

// OperationDecl is one named operation declaration in an emission unit.
type OperationDecl struct {
	// Symbol is the identifier assigned by the namer.
	Symbol string

	// Operation is the declared operation's payload.
	Operation *opmodel.Operation
}

// Unit is a named group of declarations destined for one output file.
type Unit struct {
	// Name is the unit name, used by the renderer for file naming.
	Name string

	// Types lists the unit's type declarations in arena insertion
	// order.
	Types []TypeDecl

	// Operations lists the unit's operation declarations in document
	// declaration order.
	Operations []OperationDecl
}

// IR is the finalized, read-only intermediate representation handed to
// the renderer. Units appear in stable order: the model unit first,
// then tag units sorted by name, then the default unit.
type IR struct {
	// Units are the emission units.
	Units []Unit

	// Symbols resolves TypeIDs and operation identifiers to assigned
	// names so the renderer can reference declarations it does not own.
	Symbols *namer.SymbolTable

	// Arena is the frozen type model, retained so the renderer can
	// inline anonymous types that have no declaration of their own.
	Arena *typemodel.Arena
}

// Plan groups the named models into emission units under the given
// policy and verifies closure of the result.
func Plan(arena *typemodel.Arena, model *opmodel.Model, symbols *namer.SymbolTable, policy GroupingPolicy) (*IR, error) {
	if !arena.Frozen() {
		return nil, &generrors.EmissionError{
			Unit:    "planner",
			Message: "emission planning requires a frozen type model",
		}
	}

	reach := newReachability(arena, model)
	if err := reach.verify(symbols); err != nil {
		return nil, err
	}

	ir := &IR{Symbols: symbols, Arena: arena}
	types, err := typeDecls(arena, symbols, reach)
	if err != nil {
		return nil, err
	}
	ops, err := operationDecls(model, symbols)
	if err != nil {
		return nil, err
	}

	switch policy {
	case GroupSingle:
		ir.Units = []Unit{{Name: SingleUnitName, Types: types, Operations: ops}}
	default:
		ir.Units = groupByTag(types, ops)
	}
	return ir, nil
}

// typeDecls collects one declaration per reachable declarable type, in
// arena insertion order.
func typeDecls(arena *typemodel.Arena, symbols *namer.SymbolTable, reach *reachability) ([]TypeDecl, error) {
	var decls []TypeDecl
	for i := 0; i < arena.Len(); i++ {
		id := typemodel.TypeID(i)
		t := arena.Get(id)
		if !reach.reached(id) || !declarable(t) {
			continue
		}
		sym, ok := symbols.TypeName(id)
		if !ok {
			return nil, &generrors.EmissionError{
				Unit:    ModelUnitName,
				Message: "reachable type has no assigned symbol",
			}
		}
		decls = append(decls, TypeDecl{Symbol: sym, ID: id, Type: t})
	}
	return decls, nil
}

func operationDecls(model *opmodel.Model, symbols *namer.SymbolTable) ([]OperationDecl, error) {
	decls := make([]OperationDecl, 0, len(model.Operations))
	for i := range model.Operations {
		op := &model.Operations[i]
		sym, ok := symbols.OperationName(op.ID)
		if !ok {
			return nil, &generrors.EmissionError{
				Unit:    DefaultUnitName,
				Symbol:  op.ID,
				Message: "operation has no assigned symbol",
			}
		}
		decls = append(decls, OperationDecl{Symbol: sym, Operation: op})
	}
	return decls, nil
}

// declarable reports whether a type warrants its own declaration.
// Structural kinds always do; other kinds only when they carry a
// declared component name. Anonymous primitives, arrays, nullable
// wrappers, and the interned markers are inlined by the renderer.
func declarable(t *typemodel.Type) bool {
	switch t.Kind {
	case typemodel.KindObject, typemodel.KindEnum, typemodel.KindUnion, typemodel.KindIntersection:
		return true
	case typemodel.KindAny, typemodel.KindEmpty:
		return false
	default:
		return t.Name != ""
	}
}

// groupByTag distributes operations into per-tag units, keyed by each
// operation's first tag, and parks every type declaration in the
// shared model unit.
func groupByTag(types []TypeDecl, ops []OperationDecl) []Unit {
	byTag := map[string][]OperationDecl{}
	for _, decl := range ops {
		name := DefaultUnitName
		if len(decl.Operation.Tags) > 0 {
			name = decl.Operation.Tags[0]
		}
		byTag[name] = append(byTag[name], decl)
	}

	var tagNames []string
	for name := range byTag {
		if name != DefaultUnitName {
			tagNames = append(tagNames, name)
		}
	}
	sort.Strings(tagNames)

	units := make([]Unit, 0, len(byTag)+1)
	if len(types) > 0 {
		units = append(units, Unit{Name: ModelUnitName, Types: types})
	}
	for _, name := range tagNames {
		units = append(units, Unit{Name: name, Operations: byTag[name]})
	}
	if untagged, ok := byTag[DefaultUnitName]; ok {
		units = append(units, Unit{Name: DefaultUnitName, Operations: untagged})
	}
	return units
}
