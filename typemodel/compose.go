package typemodel

import (
	"fmt"

	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/internal/severity"
	"github.com/oasforge/oasforge/loader"
)

// buildAllOf merges the property mappings of all composition members
// into a single intersection type.
//
// Conflict policy: a property declared by more than one member is
// deduplicated when the declarations are compatible (same type, or
// primitives of the same kind), keeping the strictest required flag.
// Incompatible declarations are a validation error, never a silent merge.
func (b *Builder) buildAllOf(node *loader.Node) (Type, error) {
	members, _ := node.Get("allOf")
	if members.Kind != loader.KindSequence || len(members.Items) == 0 {
		return Type{}, &generrors.ValidationError{
			Path:    node.Path,
			Field:   "allOf",
			Message: "allOf must be a non-empty sequence",
		}
	}

	merged := Type{Kind: KindIntersection}
	index := map[string]int{}

	mergeProps := func(memberPath string, props []Property) error {
		for _, p := range props {
			at, dup := index[p.Name]
			if !dup {
				index[p.Name] = len(merged.Props)
				merged.Props = append(merged.Props, p)
				continue
			}
			existing := &merged.Props[at]
			if !b.compatible(existing.Type, p.Type) {
				return &generrors.ValidationError{
					Path:  memberPath,
					Field: p.Name,
					Message: fmt.Sprintf("property %q redeclared with incompatible type (%s vs %s)",
						p.Name, describeType(b.arena.Get(existing.Type)), describeType(b.arena.Get(p.Type))),
				}
			}
			// If any member marks the property required, it stays required.
			existing.Required = existing.Required || p.Required
		}
		return nil
	}

	for _, member := range members.Items {
		id, err := b.Build(member)
		if err != nil {
			return Type{}, err
		}
		mt := b.arena.Get(id)
		if mt.Kind != KindObject && mt.Kind != KindIntersection {
			return Type{}, &generrors.ValidationError{
				Path:    member.Path,
				Field:   "allOf",
				Message: fmt.Sprintf("allOf member must be an object schema, got %s", describeType(mt)),
			}
		}
		if err := mergeProps(member.Path, mt.Props); err != nil {
			return Type{}, err
		}
		if mt.HasAdditional && !merged.HasAdditional {
			merged.HasAdditional = true
			merged.Additional = mt.Additional
		}
	}

	// Sibling properties alongside allOf merge as one more member.
	if node.Has("properties") {
		sibling, err := b.buildObject(node)
		if err != nil {
			return Type{}, err
		}
		if err := mergeProps(node.Path, sibling.Props); err != nil {
			return Type{}, err
		}
	}

	return merged, nil
}

// compatible reports whether two property declarations may be merged:
// the same arena type, or primitives of the same kind.
func (b *Builder) compatible(a, c TypeID) bool {
	if a == c {
		return true
	}
	ta, tc := b.arena.Get(a), b.arena.Get(c)
	return ta.Kind == KindPrimitive && tc.Kind == KindPrimitive && ta.Prim == tc.Prim
}

// buildUnion builds a oneOf/anyOf composition as a union type.
//
// With a declared discriminator, each variant carries a literal tag and
// the union is tagged; without one, the union is open and the inhabiting
// variant is determined at decode time by structural trial.
func (b *Builder) buildUnion(node *loader.Node, keyword string) (Type, error) {
	members, _ := node.Get(keyword)
	if members.Kind != loader.KindSequence || len(members.Items) == 0 {
		return Type{}, &generrors.ValidationError{
			Path:    node.Path,
			Field:   keyword,
			Message: keyword + " must be a non-empty sequence",
		}
	}

	discField, discMapping := readDiscriminator(node)

	t := Type{
		Kind:          KindUnion,
		Discriminator: discField,
		Open:          discField == "",
	}

	seenTags := map[string]bool{}
	for _, member := range members.Items {
		refStr := member.ChildString("$ref")
		id, err := b.Build(member)
		if err != nil {
			return Type{}, err
		}

		v := Variant{Type: id}
		if discField != "" {
			v.Tag = variantTag(discMapping, refStr, b.arena.Get(id).Name)
			if v.Tag == "" {
				return Type{}, &generrors.ValidationError{
					Path:    member.Path,
					Field:   "discriminator",
					Message: "cannot determine discriminator tag for variant",
				}
			}
			if seenTags[v.Tag] {
				return Type{}, &generrors.ValidationError{
					Path:    member.Path,
					Field:   "discriminator",
					Value:   v.Tag,
					Message: "duplicate discriminator tag",
				}
			}
			seenTags[v.Tag] = true
		}
		t.Variants = append(t.Variants, v)
	}

	if t.Open {
		b.diags.Addf(severity.SeverityInfo, node.Path,
			"%s without discriminator modeled as open union (decoded by structural trial)", keyword)
	}
	return t, nil
}

// readDiscriminator extracts the discriminator field name and its
// explicit tag-to-reference mapping, if declared.
func readDiscriminator(node *loader.Node) (field string, mapping *loader.Node) {
	disc, ok := node.Get("discriminator")
	if !ok {
		return "", nil
	}
	field = disc.ChildString("propertyName")
	mapping, _ = disc.Get("mapping")
	return field, mapping
}

// variantTag finds the discriminator literal for a variant: an explicit
// mapping entry pointing at the variant's $ref wins, then the variant's
// component name (the implicit mapping).
func variantTag(mapping *loader.Node, refStr, name string) string {
	if mapping != nil && mapping.Kind == loader.KindMapping && refStr != "" {
		for _, tag := range mapping.Keys {
			if mapping.Children[tag].StringOr("") == refStr {
				return tag
			}
		}
	}
	return name
}
