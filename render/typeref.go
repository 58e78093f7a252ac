package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/oasforge/oasforge/typemodel"
)

// goKeywords guards generated field and parameter identifiers. The
// namer already escapes declaration symbols with the configured
// reserved-word set; this set only covers the identifiers the renderer
// invents itself.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
}

// typeExpr returns the Go type expression for a type reference.
// Declared types are referenced by their assigned symbol; anonymous
// primitives, arrays, and nullable wrappers are spelled inline.
func (r *Renderer) typeExpr(id typemodel.TypeID) string {
	t := r.ir.Arena.Get(id)
	switch t.Kind {
	case typemodel.KindAny:
		return "any"
	case typemodel.KindEmpty:
		return "struct{}"
	case typemodel.KindPrimitive:
		return primitiveExpr(t)
	case typemodel.KindArray:
		return "[]" + r.typeExpr(t.Elem)
	case typemodel.KindNullable:
		return "*" + r.typeExpr(t.Elem)
	default:
		if sym, ok := r.ir.Symbols.TypeName(id); ok {
			return sym
		}
		return "any"
	}
}

func primitiveExpr(t *typemodel.Type) string {
	switch t.Prim {
	case typemodel.PrimString:
		return "string"
	case typemodel.PrimInteger:
		if t.Format == "int32" {
			return "int32"
		}
		return "int64"
	case typemodel.PrimNumber:
		if t.Format == "float" {
			return "float32"
		}
		return "float64"
	case typemodel.PrimBoolean:
		return "bool"
	default:
		return "any"
	}
}

// exportedName converts a declared property or parameter name into an
// exported Go identifier.
func exportedName(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return "Field"
	}
	if !unicode.IsLetter(rune(out[0])) {
		out = "F" + out
	}
	return out
}

// uniqueName claims name within the used set, appending a counter when
// an earlier member of the same declaration already sanitized to it.
func uniqueName(used map[string]bool, name string) string {
	out := name
	for n := 2; used[out]; n++ {
		out = fmt.Sprintf("%s%d", name, n)
	}
	used[out] = true
	return out
}

// paramName converts a declared parameter name into an unexported Go
// identifier, escaping language keywords.
func paramName(name string) string {
	exported := exportedName(name)
	out := strings.ToLower(exported[:1]) + exported[1:]
	if goKeywords[out] {
		out += "_"
	}
	return out
}
