// Package loader parses raw JSON or YAML text into a generic document
// tree of mappings, sequences, and scalars, with a JSON pointer path and
// source line/column attached to every node.
//
// The loader has no knowledge of the OpenAPI object model; malformed
// document syntax is the only failure class it reports. Semantic
// validation belongs to the later modeling phases.
package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/oasforge/oasforge/generrors"
)

// SourceFormat represents the format of a source document.
type SourceFormat string

const (
	// SourceFormatYAML indicates the source was in YAML format
	SourceFormatYAML SourceFormat = "yaml"
	// SourceFormatJSON indicates the source was in JSON format
	SourceFormatJSON SourceFormat = "json"
	// SourceFormatUnknown indicates the source format could not be determined
	SourceFormatUnknown SourceFormat = "unknown"
)

// Document is one loaded source document: the root node plus metadata.
// Immutable after load.
type Document struct {
	// Root is the document's root node
	Root *Node
	// Source is the file path or source identifier the document was read from
	Source string
	// Format is the detected source format
	Format SourceFormat
	// Size is the size of the raw input in bytes
	Size int64
}

// Parse parses raw text into a Document. The source string identifies the
// input in error messages; it does not need to be a real file path.
func Parse(data []byte, source string) (*Document, error) {
	format := detectFormat(data, source)

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &generrors.ParseError{
			Path:    source,
			Message: "malformed document",
			Cause:   err,
		}
	}

	doc := &Document{
		Source: source,
		Format: format,
		Size:   int64(len(data)),
	}

	// yaml.Unmarshal wraps the content in a document node.
	content := &root
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, &generrors.ParseError{
				Path:    source,
				Message: "empty document",
			}
		}
		content = root.Content[0]
	}

	node, err := convert(content, "", doc)
	if err != nil {
		return nil, err
	}
	doc.Root = node
	return doc, nil
}

// ParseFile reads and parses a document from the filesystem.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &generrors.ParseError{
			Path:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}
	return Parse(data, path)
}

// convert recursively translates a yaml.Node into a loader Node,
// assigning JSON pointer paths as it descends.
func convert(yn *yaml.Node, path string, doc *Document) (*Node, error) {
	// Follow alias nodes to their anchor target. The target keeps its own
	// source location; cycles via anchors are rejected by the yaml parser.
	if yn.Kind == yaml.AliasNode {
		yn = yn.Alias
	}

	n := &Node{
		Path:   path,
		Line:   yn.Line,
		Column: yn.Column,
		Doc:    doc,
	}

	switch yn.Kind {
	case yaml.MappingNode:
		n.Kind = KindMapping
		n.Children = make(map[string]*Node, len(yn.Content)/2)
		for i := 0; i+1 < len(yn.Content); i += 2 {
			keyNode := yn.Content[i]
			valNode := yn.Content[i+1]
			key := keyNode.Value
			if _, dup := n.Children[key]; dup {
				return nil, &generrors.ParseError{
					Path:    doc.Source,
					Line:    keyNode.Line,
					Column:  keyNode.Column,
					Message: fmt.Sprintf("duplicate mapping key %q at %s", key, path),
				}
			}
			child, err := convert(valNode, JoinPointer(path, key), doc)
			if err != nil {
				return nil, err
			}
			n.Keys = append(n.Keys, key)
			n.Children[key] = child
		}

	case yaml.SequenceNode:
		n.Kind = KindSequence
		n.Items = make([]*Node, 0, len(yn.Content))
		for i, item := range yn.Content {
			child, err := convert(item, path+"/"+strconv.Itoa(i), doc)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, child)
		}

	case yaml.ScalarNode:
		value, isNull := decodeScalar(yn)
		if isNull {
			n.Kind = KindNull
		} else {
			n.Kind = KindScalar
			n.Value = value
		}

	default:
		return nil, &generrors.ParseError{
			Path:    doc.Source,
			Line:    yn.Line,
			Column:  yn.Column,
			Message: fmt.Sprintf("unsupported node kind at %s", path),
		}
	}

	return n, nil
}

// decodeScalar decodes a YAML scalar into its Go value based on the
// resolved tag. Unrecognized tags decay to the raw string.
func decodeScalar(yn *yaml.Node) (value any, isNull bool) {
	switch yn.Tag {
	case "!!null":
		return nil, true
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(yn.Value))
		if err == nil {
			return b, false
		}
	case "!!int":
		i, err := strconv.ParseInt(yn.Value, 0, 64)
		if err == nil {
			return i, false
		}
	case "!!float":
		f, err := strconv.ParseFloat(yn.Value, 64)
		if err == nil {
			return f, false
		}
	}
	return yn.Value, false
}

// detectFormat determines the source format from content, falling back
// to the file extension. JSON objects/arrays start with '{' or '['.
func detectFormat(data []byte, source string) SourceFormat {
	trimmed := strings.TrimLeft(string(data[:min(len(data), 64)]), " \t\n\r")
	if trimmed != "" && (trimmed[0] == '{' || trimmed[0] == '[') {
		return SourceFormatJSON
	}
	switch {
	case strings.HasSuffix(source, ".json"):
		return SourceFormatJSON
	case strings.HasSuffix(source, ".yaml"), strings.HasSuffix(source, ".yml"):
		return SourceFormatYAML
	}
	if trimmed == "" {
		return SourceFormatUnknown
	}
	return SourceFormatYAML
}
