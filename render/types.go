// types.go renders type declarations: structs for objects and merged
// intersections, defined types for enumerations, and tagged or open
// union containers.

package render

import (
	"bytes"
	"fmt"

	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/planner"
	"github.com/oasforge/oasforge/typemodel"
)

func (r *Renderer) writeTypeDecl(buf *bytes.Buffer, decl planner.TypeDecl) error {
	switch decl.Type.Kind {
	case typemodel.KindObject, typemodel.KindIntersection:
		r.writeStruct(buf, decl)
	case typemodel.KindEnum:
		r.writeEnum(buf, decl)
	case typemodel.KindUnion:
		if decl.Type.Discriminator != "" {
			r.writeTaggedUnion(buf, decl)
		} else {
			r.writeOpenUnion(buf, decl)
		}
	case typemodel.KindPrimitive:
		r.writeComment(buf, decl)
		fmt.Fprintf(buf, "type %s = %s\n\n", decl.Symbol, primitiveExpr(decl.Type))
	case typemodel.KindArray:
		r.writeComment(buf, decl)
		fmt.Fprintf(buf, "type %s = []%s\n\n", decl.Symbol, r.typeExpr(decl.Type.Elem))
	case typemodel.KindNullable:
		r.writeComment(buf, decl)
		fmt.Fprintf(buf, "type %s = *%s\n\n", decl.Symbol, r.typeExpr(decl.Type.Elem))
	default:
		return &generrors.EmissionError{
			Unit:    decl.Symbol,
			Symbol:  decl.Symbol,
			Message: fmt.Sprintf("cannot render declaration of kind %s", decl.Type.Kind),
		}
	}
	return nil
}

func (r *Renderer) writeComment(buf *bytes.Buffer, decl planner.TypeDecl) {
	if decl.Type.Description != "" {
		fmt.Fprintf(buf, "// %s %s\n", decl.Symbol, firstLine(decl.Type.Description))
	}
}

func (r *Renderer) writeStruct(buf *bytes.Buffer, decl planner.TypeDecl) {
	t := decl.Type

	// An object with no declared properties and a typed
	// additionalProperties shape is a plain map.
	if len(t.Props) == 0 && t.HasAdditional {
		r.writeComment(buf, decl)
		fmt.Fprintf(buf, "type %s map[string]%s\n\n", decl.Symbol, r.typeExpr(t.Additional))
		return
	}

	if t.Description != "" {
		fmt.Fprintf(buf, "// %s %s\n", decl.Symbol, firstLine(t.Description))
	} else {
		fmt.Fprintf(buf, "// %s is a generated model.\n", decl.Symbol)
	}
	fmt.Fprintf(buf, "type %s struct {\n", decl.Symbol)
	used := map[string]bool{}
	for _, p := range t.Props {
		fmt.Fprintf(buf, "\t%s %s `json:%q`\n",
			uniqueName(used, exportedName(p.Name)), r.fieldExpr(decl.ID, p), jsonTag(p))
	}
	buf.WriteString("}\n\n")
}

// fieldExpr picks the Go type for a struct field. Optional fields of
// non-slice, non-map shape become pointers, as does any field whose
// value embedding would make the declaring struct infinitely sized.
func (r *Renderer) fieldExpr(owner typemodel.TypeID, p typemodel.Property) string {
	expr := r.typeExpr(p.Type)
	if expr[0] == '*' || expr[0] == '[' || expr == "any" {
		return expr
	}
	if isMapExpr(r.ir.Arena.Get(p.Type)) {
		return expr
	}
	if !p.Required || r.valueCycle(p.Type, owner, nil) {
		return "*" + expr
	}
	return expr
}

func isMapExpr(t *typemodel.Type) bool {
	return t.Kind == typemodel.KindObject && len(t.Props) == 0 && t.HasAdditional
}

// valueCycle reports whether embedding id by value inside owner would
// reach owner again through required value fields. Slices, maps, and
// pointers break the cycle, so only required struct-valued properties
// are followed.
func (r *Renderer) valueCycle(id, owner typemodel.TypeID, seen map[typemodel.TypeID]bool) bool {
	if id == owner {
		return true
	}
	if seen[id] {
		return false
	}
	t := r.ir.Arena.Get(id)
	if t.Kind != typemodel.KindObject && t.Kind != typemodel.KindIntersection {
		return false
	}
	if seen == nil {
		seen = map[typemodel.TypeID]bool{}
	}
	seen[id] = true
	for _, p := range t.Props {
		if !p.Required {
			continue
		}
		pt := r.ir.Arena.Get(p.Type)
		if pt.Kind != typemodel.KindObject && pt.Kind != typemodel.KindIntersection {
			continue
		}
		if isMapExpr(pt) {
			continue
		}
		if r.valueCycle(p.Type, owner, seen) {
			return true
		}
	}
	return false
}

func jsonTag(p typemodel.Property) string {
	if p.Required {
		return p.Name
	}
	return p.Name + ",omitempty"
}

func (r *Renderer) writeEnum(buf *bytes.Buffer, decl planner.TypeDecl) {
	t := decl.Type

	allStrings := len(t.EnumValues) > 0
	for _, v := range t.EnumValues {
		if _, ok := v.(string); !ok {
			allStrings = false
			break
		}
	}
	if !allStrings {
		// Heterogeneous or non-string literal sets keep the raw value.
		r.writeComment(buf, decl)
		fmt.Fprintf(buf, "type %s = any\n\n", decl.Symbol)
		return
	}

	fmt.Fprintf(buf, "// %s is an enumerated string value.\n", decl.Symbol)
	fmt.Fprintf(buf, "type %s string\n\n", decl.Symbol)
	fmt.Fprintf(buf, "// Recognized %s values.\n", decl.Symbol)
	buf.WriteString("const (\n")
	used := map[string]bool{}
	for _, v := range t.EnumValues {
		s := v.(string)
		fmt.Fprintf(buf, "\t%s%s %s = %q\n", decl.Symbol, uniqueName(used, exportedName(s)), decl.Symbol, s)
	}
	buf.WriteString(")\n\n")
}

// writeTaggedUnion renders a discriminated union as a container with
// one pointer field per variant. Decoding reads the discriminator
// first and rejects unrecognized tags.
func (r *Renderer) writeTaggedUnion(buf *bytes.Buffer, decl planner.TypeDecl) {
	t := decl.Type
	fields := variantFieldNames(t)

	fmt.Fprintf(buf, "// %s is a tagged union discriminated by the %q field.\n", decl.Symbol, t.Discriminator)
	fmt.Fprintf(buf, "type %s struct {\n", decl.Symbol)
	for i, v := range t.Variants {
		fmt.Fprintf(buf, "\t%s *%s\n", fields[i], r.typeExpr(v.Type))
	}
	buf.WriteString("}\n\n")

	fmt.Fprintf(buf, "// UnmarshalJSON decodes the variant selected by the discriminator.\n")
	fmt.Fprintf(buf, "func (u *%s) UnmarshalJSON(data []byte) error {\n", decl.Symbol)
	buf.WriteString("\tvar probe struct {\n")
	fmt.Fprintf(buf, "\t\tTag string `json:%q`\n", t.Discriminator)
	buf.WriteString("\t}\n")
	buf.WriteString("\tif err := json.Unmarshal(data, &probe); err != nil {\n")
	buf.WriteString("\t\treturn err\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\tswitch probe.Tag {\n")
	for i, v := range t.Variants {
		field := fields[i]
		fmt.Fprintf(buf, "\tcase %q:\n", v.Tag)
		fmt.Fprintf(buf, "\t\tu.%s = new(%s)\n", field, r.typeExpr(v.Type))
		fmt.Fprintf(buf, "\t\treturn json.Unmarshal(data, u.%s)\n", field)
	}
	buf.WriteString("\tdefault:\n")
	fmt.Fprintf(buf, "\t\treturn fmt.Errorf(\"unrecognized %s value %%q\", probe.Tag)\n", t.Discriminator)
	buf.WriteString("\t}\n")
	buf.WriteString("}\n\n")

	fmt.Fprintf(buf, "// MarshalJSON encodes the populated variant.\n")
	fmt.Fprintf(buf, "func (u %s) MarshalJSON() ([]byte, error) {\n", decl.Symbol)
	buf.WriteString("\tswitch {\n")
	for i := range t.Variants {
		field := fields[i]
		fmt.Fprintf(buf, "\tcase u.%s != nil:\n", field)
		fmt.Fprintf(buf, "\t\treturn json.Marshal(u.%s)\n", field)
	}
	buf.WriteString("\t}\n")
	buf.WriteString("\treturn []byte(\"null\"), nil\n")
	buf.WriteString("}\n\n")
}

// variantFieldNames assigns one distinct exported field name per
// variant. Discriminator values are arbitrary strings and two of them
// can sanitize to the same identifier.
func variantFieldNames(t *typemodel.Type) []string {
	used := map[string]bool{}
	names := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		names[i] = uniqueName(used, exportedName(v.Tag))
	}
	return names
}

// writeOpenUnion renders an undiscriminated union as a raw container
// with trial-decode accessors, leaving variant selection to the
// caller.
func (r *Renderer) writeOpenUnion(buf *bytes.Buffer, decl planner.TypeDecl) {
	t := decl.Type

	fmt.Fprintf(buf, "// %s holds one of several untagged variants. The raw payload is\n", decl.Symbol)
	buf.WriteString("// retained; each accessor attempts a structural decode of one variant.\n")
	fmt.Fprintf(buf, "type %s struct {\n", decl.Symbol)
	buf.WriteString("\tRaw json.RawMessage\n")
	buf.WriteString("}\n\n")

	fmt.Fprintf(buf, "// UnmarshalJSON retains the raw payload.\n")
	fmt.Fprintf(buf, "func (u *%s) UnmarshalJSON(data []byte) error {\n", decl.Symbol)
	buf.WriteString("\tu.Raw = append(u.Raw[:0], data...)\n")
	buf.WriteString("\treturn nil\n")
	buf.WriteString("}\n\n")

	fmt.Fprintf(buf, "// MarshalJSON writes the raw payload back out.\n")
	fmt.Fprintf(buf, "func (u %s) MarshalJSON() ([]byte, error) {\n", decl.Symbol)
	buf.WriteString("\tif u.Raw == nil {\n")
	buf.WriteString("\t\treturn []byte(\"null\"), nil\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\treturn u.Raw, nil\n")
	buf.WriteString("}\n\n")

	used := map[string]bool{}
	for i, v := range t.Variants {
		expr := r.typeExpr(v.Type)
		accessor := v.Tag
		if accessor == "" {
			if sym, ok := r.ir.Symbols.TypeName(v.Type); ok {
				accessor = sym
			}
		}
		accessor = exportedName(accessor)
		if accessor == "Field" {
			accessor = fmt.Sprintf("Variant%d", i)
		}
		accessor = uniqueName(used, accessor)
		fmt.Fprintf(buf, "// As%s decodes the payload as %s.\n", accessor, expr)
		fmt.Fprintf(buf, "func (u %s) As%s() (%s, error) {\n", decl.Symbol, accessor, expr)
		fmt.Fprintf(buf, "\tvar v %s\n", expr)
		buf.WriteString("\terr := json.Unmarshal(u.Raw, &v)\n")
		buf.WriteString("\treturn v, err\n")
		buf.WriteString("}\n\n")
	}
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
