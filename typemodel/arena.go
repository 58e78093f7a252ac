// Package typemodel builds a closed type model from resolved schema nodes.
//
// Every type lives in a single append-only Arena and is addressed by its
// TypeID index. Cyclic schema graphs are represented as TypeID back-edges
// into the arena, never as nested value ownership, so self-referential and
// mutually-referential schemas need no special casing downstream.
//
// The arena is frozen once the type model phase completes; later phases
// read it but never mutate it.
package typemodel

import (
	"sync"
)

// TypeID is an index into the Arena. TypeIDs are assigned in insertion
// order and are stable for a given input document and configuration.
type TypeID int

// Invalid is the TypeID returned alongside errors.
const Invalid TypeID = -1

// Kind discriminates the closed set of type variants. Every consumer
// switches exhaustively over this set, so adding a kind is a
// compile-time-visible change everywhere it matters.
type Kind int

const (
	// KindAny is the unconstrained type: a schema with no usable
	// structure, or a permissive default for missing schemas.
	KindAny Kind = iota
	// KindEmpty marks "no body at all", distinct from an unconstrained body.
	KindEmpty
	// KindPrimitive is a scalar type with an optional format.
	KindPrimitive
	// KindArray is a homogeneous sequence of Elem.
	KindArray
	// KindObject is a record with ordered named properties.
	KindObject
	// KindEnum is a closed set of literal values.
	KindEnum
	// KindUnion is a oneOf/anyOf composition of variants.
	KindUnion
	// KindIntersection is the structural merge of allOf members.
	// It carries the merged property mapping, like an object.
	KindIntersection
	// KindNullable wraps Elem as "a value of Elem or nothing",
	// kept distinct from an actual union member.
	KindNullable
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindEmpty:
		return "empty"
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindEnum:
		return "enum"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindNullable:
		return "nullable"
	default:
		return "unknown"
	}
}

// PrimitiveKind identifies the scalar family of a primitive type.
type PrimitiveKind string

const (
	PrimString  PrimitiveKind = "string"
	PrimInteger PrimitiveKind = "integer"
	PrimNumber  PrimitiveKind = "number"
	PrimBoolean PrimitiveKind = "boolean"
)

// Property is one named member of an object or intersection type.
type Property struct {
	// Name is the property name as declared
	Name string
	// Type is the property's type
	Type TypeID
	// Required is true when the owning schema lists the property as required
	Required bool
}

// Variant is one member of a union type.
type Variant struct {
	// Tag is the discriminator literal selecting this variant
	// (empty in open unions)
	Tag string
	// Type is the variant's type
	Type TypeID
}

// Type is one resolved type. Which fields are meaningful depends on Kind.
type Type struct {
	// Kind is the variant discriminator
	Kind Kind
	// Name is the declared component name, empty for inline schemas
	Name string
	// Path is the JSON pointer of the declaration, used for error
	// reporting and naming disambiguation
	Path string
	// Description is the schema description, carried for the renderer
	Description string

	// Prim and Format apply to KindPrimitive
	Prim   PrimitiveKind
	Format string

	// Elem is the array element (KindArray) or wrapped inner type (KindNullable)
	Elem TypeID

	// Props apply to KindObject and KindIntersection, in declaration order
	Props []Property
	// Additional is the value type for additional properties
	Additional TypeID
	// HasAdditional reports whether additional properties are allowed
	HasAdditional bool

	// EnumValues apply to KindEnum
	EnumValues []any

	// Variants apply to KindUnion, in declaration order
	Variants []Variant
	// Discriminator is the field whose literal value selects a variant
	// (empty for open unions)
	Discriminator string
	// Open is true for unions whose inhabiting variant is determined at
	// decode time by structural trial rather than a discriminator tag
	Open bool
}

// Arena is the append-only, index-addressed store of type nodes.
// Appends are serialized through a single mutex so independent schema
// subtrees may be built concurrently; once frozen, any further append
// or overwrite panics.
type Arena struct {
	mu     sync.Mutex
	nodes  []Type
	frozen bool
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Len returns the number of types in the arena.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nodes)
}

// Get returns the type at id. It panics on an out-of-range id, which is
// an internal invariant violation: TypeIDs only come from this arena.
// The returned pointer must be treated as read-only.
func (a *Arena) Get(id TypeID) *Type {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &a.nodes[id]
}

// append inserts a type and returns its id.
func (a *Arena) append(t Type) TypeID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		panic("typemodel: append to frozen arena")
	}
	a.nodes = append(a.nodes, t)
	return TypeID(len(a.nodes) - 1)
}

// set overwrites the type at id. This is the fix-up path for slots
// reserved while a cyclic schema was in progress.
func (a *Arena) set(id TypeID, t Type) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		panic("typemodel: write to frozen arena")
	}
	a.nodes[id] = t
}

// Freeze makes the arena read-only. This is the phase barrier: the
// operation model builder may only read TypeIDs after Freeze.
func (a *Arena) Freeze() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frozen = true
}

// Frozen reports whether the arena has been frozen.
func (a *Arena) Frozen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frozen
}
