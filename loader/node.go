package loader

import (
	"strings"
)

// Kind identifies the shape of a document node.
type Kind int

const (
	// KindMapping is an object/mapping node with ordered string keys.
	KindMapping Kind = iota
	// KindSequence is an array/sequence node.
	KindSequence
	// KindScalar is a leaf value: string, bool, integer, or float.
	KindScalar
	// KindNull is an explicit null value.
	KindNull
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindScalar:
		return "scalar"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Node is an untyped document node with a source location.
// Nodes are built once by the loader and are immutable afterwards;
// later phases only read them.
type Node struct {
	// Kind is the node shape
	Kind Kind
	// Keys holds mapping keys in document declaration order
	Keys []string
	// Children maps mapping keys to their value nodes
	Children map[string]*Node
	// Items holds sequence elements in order
	Items []*Node
	// Value is the decoded scalar value: string, bool, int64, or float64
	Value any
	// Path is the JSON pointer of this node from the document root (e.g. "/components/schemas/Pet")
	Path string
	// Line is the 1-based source line (0 if unknown)
	Line int
	// Column is the 1-based source column (0 if unknown)
	Column int
	// Doc is the owning document
	Doc *Document
}

// Get returns the child node for a mapping key.
// Returns nil, false for non-mapping nodes or missing keys.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMapping {
		return nil, false
	}
	child, ok := n.Children[key]
	return child, ok
}

// Has reports whether a mapping key is present.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// AsString returns the scalar string value.
// The second return is false for non-string nodes.
func (n *Node) AsString() (string, bool) {
	if n == nil || n.Kind != KindScalar {
		return "", false
	}
	s, ok := n.Value.(string)
	return s, ok
}

// StringOr returns the scalar string value, or def for non-string nodes.
func (n *Node) StringOr(def string) string {
	if s, ok := n.AsString(); ok {
		return s
	}
	return def
}

// AsBool returns the scalar boolean value.
func (n *Node) AsBool() (bool, bool) {
	if n == nil || n.Kind != KindScalar {
		return false, false
	}
	b, ok := n.Value.(bool)
	return b, ok
}

// BoolOr returns the scalar boolean value, or def for non-boolean nodes.
func (n *Node) BoolOr(def bool) bool {
	if b, ok := n.AsBool(); ok {
		return b
	}
	return def
}

// ChildString is shorthand for looking up a mapping key and reading it
// as a string. Returns "" when the key is absent or not a string.
func (n *Node) ChildString(key string) string {
	child, _ := n.Get(key)
	return child.StringOr("")
}

// ChildBool is shorthand for looking up a mapping key and reading it
// as a boolean. Returns def when the key is absent or not a boolean.
func (n *Node) ChildBool(key string, def bool) bool {
	child, ok := n.Get(key)
	if !ok {
		return def
	}
	return child.BoolOr(def)
}

// EscapePointerToken escapes a JSON pointer reference token per RFC 6901:
// "~" becomes "~0" and "/" becomes "~1".
func EscapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// UnescapePointerToken reverses EscapePointerToken.
// The order matters: "~1" must be unescaped before "~0" so that "~01"
// round-trips to "~1" the string, not "/" the separator.
func UnescapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

// JoinPointer appends a reference token to a JSON pointer path.
func JoinPointer(base, token string) string {
	return base + "/" + EscapePointerToken(token)
}
