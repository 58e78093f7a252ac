package typemodel

import (
	"fmt"
	"strings"

	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/internal/issues"
	"github.com/oasforge/oasforge/internal/severity"
	"github.com/oasforge/oasforge/loader"
	"github.com/oasforge/oasforge/resolver"
)

// Builder turns resolved schema nodes into arena types.
//
// Types are memoized by node identity (the canonical document+pointer
// key), not by structural equality: two structurally identical schemas
// declared separately get distinct TypeIDs unless one references the
// other.
type Builder struct {
	arena   *Arena
	res     *resolver.Resolver
	tracker *resolver.Tracker
	diags   *issues.Collector

	anyID    TypeID
	emptyID  TypeID
	stringID TypeID
}

// NewBuilder creates a type model builder over an empty arena.
// The diagnostics collector may be nil to discard notices.
func NewBuilder(arena *Arena, res *resolver.Resolver, diags *issues.Collector) *Builder {
	b := &Builder{
		arena:   arena,
		res:     res,
		tracker: resolver.NewTracker(),
		diags:   diags,
	}
	// Interned singletons, created first so their TypeIDs are stable and
	// available even after the arena is frozen.
	b.anyID = arena.append(Type{Kind: KindAny})
	b.emptyID = arena.append(Type{Kind: KindEmpty})
	b.stringID = arena.append(Type{Kind: KindPrimitive, Prim: PrimString})
	return b
}

// Arena returns the builder's arena.
func (b *Builder) Arena() *Arena {
	return b.arena
}

// AnyType returns the interned unconstrained type.
func (b *Builder) AnyType() TypeID { return b.anyID }

// EmptyType returns the interned empty-body marker type.
func (b *Builder) EmptyType() TypeID { return b.emptyID }

// StringType returns the interned unconstrained string type, the default
// for parameters declared without a schema.
func (b *Builder) StringType() TypeID { return b.stringID }

// Build returns the TypeID for a schema node, inserting a new type into
// the arena if the node has not been built yet.
//
// Cycle handling: the arena slot is reserved and recorded before the
// node's content is built, so a back-edge reaching this node while it is
// in progress is answered with the reserved slot immediately. The slot's
// content is fixed up when building completes.
func (b *Builder) Build(node *loader.Node) (TypeID, error) {
	target, key, err := b.res.Deref(node)
	if err != nil {
		return Invalid, err
	}
	if target == nil {
		// Soft-skipped unresolvable external reference.
		b.diags.Addf(severity.SeverityWarning, node.Path,
			"external reference skipped, modeled as unconstrained")
		return b.anyID, nil
	}

	switch b.tracker.StateOf(key) {
	case resolver.StateInProgress, resolver.StateResolved:
		slot, _ := b.tracker.Slot(key)
		return TypeID(slot), nil
	}

	id := b.arena.append(Type{
		Kind: KindAny,
		Name: componentName(target.Path),
		Path: target.Path,
	})
	b.tracker.Begin(key, int(id))

	t, err := b.buildType(target)
	if err != nil {
		return Invalid, err
	}
	t.Name = componentName(target.Path)
	t.Path = target.Path
	t.Description = target.ChildString("description")
	b.arena.set(id, t)
	b.tracker.Finish(key)
	return id, nil
}

// Lookup returns the TypeID previously built for a schema node. It is
// the read path used after the arena freezes; a miss means a phase ran
// against a model that was never completed, which is an internal
// invariant violation.
func (b *Builder) Lookup(node *loader.Node) (TypeID, error) {
	target, key, err := b.res.Deref(node)
	if err != nil {
		return Invalid, err
	}
	if target == nil {
		return b.anyID, nil
	}
	slot, ok := b.tracker.Slot(key)
	if !ok {
		return Invalid, &generrors.EmissionError{
			Symbol:  key,
			Message: "schema was never built during the type model phase",
		}
	}
	return TypeID(slot), nil
}

// buildType constructs the Type value for a structural (non-$ref) node.
func (b *Builder) buildType(node *loader.Node) (Type, error) {
	if node.Kind != loader.KindMapping {
		// Boolean and null schemas accept anything.
		return Type{Kind: KindAny}, nil
	}

	base, err := b.buildBase(node)
	if err != nil {
		return Type{}, err
	}

	// Explicit nullability wraps the base type rather than folding null
	// into an enum or union member. The wrapped type gets its own arena
	// entry with a synthetic path so it stays addressable and nameable.
	if node.ChildBool("nullable", false) {
		base.Path = node.Path + "/nullable"
		inner := b.arena.append(base)
		return Type{Kind: KindNullable, Elem: inner}, nil
	}
	return base, nil
}

// buildBase constructs the type ignoring nullability.
func (b *Builder) buildBase(node *loader.Node) (Type, error) {
	switch {
	case node.Has("allOf"):
		return b.buildAllOf(node)
	case node.Has("oneOf"):
		return b.buildUnion(node, "oneOf")
	case node.Has("anyOf"):
		return b.buildUnion(node, "anyOf")
	case node.Has("enum"):
		return b.buildEnum(node)
	}

	typ := node.ChildString("type")
	switch typ {
	case "string", "integer", "number", "boolean":
		return Type{
			Kind:   KindPrimitive,
			Prim:   PrimitiveKind(typ),
			Format: node.ChildString("format"),
		}, nil
	case "array":
		return b.buildArray(node)
	case "object":
		return b.buildObject(node)
	case "":
		// No explicit type: infer object shape from properties, else
		// fall through to unconstrained.
		if node.Has("properties") || node.Has("additionalProperties") || node.Has("required") {
			return b.buildObject(node)
		}
		if node.Has("items") {
			return b.buildArray(node)
		}
		b.diags.Addf(severity.SeverityInfo, node.Path,
			"schema without type or structure modeled as unconstrained")
		return Type{Kind: KindAny}, nil
	default:
		return Type{}, &generrors.ValidationError{
			Path:    node.Path,
			Field:   "type",
			Value:   typ,
			Message: "unknown schema type",
		}
	}
}

func (b *Builder) buildArray(node *loader.Node) (Type, error) {
	items, ok := node.Get("items")
	if !ok {
		// Arrays without an item schema hold unconstrained elements.
		b.diags.Addf(severity.SeverityInfo, node.Path,
			"array without items modeled with unconstrained elements")
		return Type{Kind: KindArray, Elem: b.anyID}, nil
	}
	elem, err := b.Build(items)
	if err != nil {
		return Type{}, err
	}
	return Type{Kind: KindArray, Elem: elem}, nil
}

func (b *Builder) buildObject(node *loader.Node) (Type, error) {
	t := Type{Kind: KindObject}

	required := map[string]bool{}
	if reqNode, ok := node.Get("required"); ok && reqNode.Kind == loader.KindSequence {
		for _, item := range reqNode.Items {
			if s, ok := item.AsString(); ok {
				required[s] = true
			}
		}
	}

	props, hasProps := node.Get("properties")
	if hasProps {
		if props.Kind != loader.KindMapping {
			return Type{}, &generrors.ValidationError{
				Path:    props.Path,
				Message: "properties must be a mapping",
			}
		}
		for _, name := range props.Keys {
			propID, err := b.Build(props.Children[name])
			if err != nil {
				return Type{}, err
			}
			t.Props = append(t.Props, Property{
				Name:     name,
				Type:     propID,
				Required: required[name],
			})
		}
	}

	if addl, ok := node.Get("additionalProperties"); ok {
		switch {
		case addl.Kind == loader.KindScalar && addl.Value == false:
			// Closed object.
		case addl.Kind == loader.KindScalar && addl.Value == true:
			t.HasAdditional = true
			t.Additional = b.anyID
		case addl.Kind == loader.KindMapping:
			addlID, err := b.Build(addl)
			if err != nil {
				return Type{}, err
			}
			t.HasAdditional = true
			t.Additional = addlID
		}
	}

	if !hasProps && !t.HasAdditional {
		// Objects without declared shape accept anything.
		b.diags.Addf(severity.SeverityInfo, node.Path,
			"object without properties modeled as unconstrained")
		return Type{Kind: KindAny}, nil
	}
	return t, nil
}

func (b *Builder) buildEnum(node *loader.Node) (Type, error) {
	enumNode, _ := node.Get("enum")
	if enumNode.Kind != loader.KindSequence {
		return Type{}, &generrors.ValidationError{
			Path:    enumNode.Path,
			Field:   "enum",
			Message: "enum must be a sequence of literal values",
		}
	}
	t := Type{Kind: KindEnum}
	for _, item := range enumNode.Items {
		switch item.Kind {
		case loader.KindScalar:
			t.EnumValues = append(t.EnumValues, item.Value)
		case loader.KindNull:
			t.EnumValues = append(t.EnumValues, nil)
		default:
			return Type{}, &generrors.ValidationError{
				Path:    item.Path,
				Field:   "enum",
				Message: "enum values must be literals",
			}
		}
	}
	return t, nil
}

// componentName derives a declared name from a declaration pointer.
// Only recognized reusable-component containers yield names; inline
// schemas stay anonymous and are named later from their paths.
func componentName(path string) string {
	for _, container := range []string{"/components/schemas/", "/definitions/"} {
		if rest, ok := strings.CutPrefix(path, container); ok && !strings.Contains(rest, "/") {
			return loader.UnescapePointerToken(rest)
		}
	}
	// Root-level declarations in external documents ("shared.yaml#/Pet").
	if rest, ok := strings.CutPrefix(path, "/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return loader.UnescapePointerToken(rest)
	}
	return ""
}

// describeType is used in diagnostics for composition conflicts.
func describeType(t *Type) string {
	if t.Kind == KindPrimitive {
		return fmt.Sprintf("%s primitive", t.Prim)
	}
	return t.Kind.String()
}
