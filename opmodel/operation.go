// Package opmodel builds one Operation record per path+method pair from
// the paths section of a specification and the completed type model.
//
// The type model arena must be frozen before this phase runs: the
// operation builder only looks up TypeIDs that the type model phase
// already built, never inserting new types.
package opmodel

import (
	"github.com/oasforge/oasforge/typemodel"
)

// Location is where a parameter is carried.
type Location string

const (
	InPath   Location = "path"
	InQuery  Location = "query"
	InHeader Location = "header"
	InCookie Location = "cookie"
)

// Parameter is one operation parameter bound to its type.
type Parameter struct {
	// Name is the parameter name as declared
	Name string
	// In is the parameter location
	In Location
	// Required reports whether the parameter must be supplied
	Required bool
	// Style is the serialization style ("form", "simple", ...)
	Style string
	// Explode is the serialization explode flag
	Explode bool
	// Description is carried for the renderer
	Description string
	// Type is the bound type; parameters without a schema bind to the
	// unconstrained string primitive
	Type typemodel.TypeID
	// DeclPath is the JSON pointer of the declaration
	DeclPath string
}

// MediaType binds one content type to a payload type.
type MediaType struct {
	// ContentType is the media type key (e.g. "application/json");
	// empty for the no-body marker entry
	ContentType string
	// Type is the payload type
	Type typemodel.TypeID
}

// RequestBody is the request body variant set, keyed by content type.
// A body declared with multiple content types is retained as
// alternatives; choosing one is a request-time decision outside this
// model.
type RequestBody struct {
	Required    bool
	Description string
	// Content holds one entry per declared content type, in
	// declaration order
	Content []MediaType
}

// Response is one response variant, keyed by status code or
// status-range pattern ("200", "2XX", "default").
type Response struct {
	// Status is the status code or pattern
	Status      string
	Description string
	// Content holds one entry per content type. A response with no
	// content carries a single entry with the empty-body marker type,
	// which is distinct from an unconstrained body.
	Content []MediaType
	// Headers binds declared response headers to their types
	Headers []Parameter
}

// LinkParameter binds a target parameter name to a runtime expression.
type LinkParameter struct {
	Name       string
	Expression string
}

// Link is a design-time description of a follow-up call, resolved
// against other operations via operationId or operationRef. Links are
// preserved as data; the model does not act on them.
type Link struct {
	// Name is the link key as declared
	Name string
	// Status is the response the link was declared under
	Status string
	// OperationID references the target operation by identifier
	OperationID string
	// OperationRef references the target operation by pointer
	OperationRef string
	// Parameters are the runtime-expression bindings
	Parameters []LinkParameter
	// RequestBody is the runtime expression for the target body, if any
	RequestBody string
	Description string
}

// Callback is a named set of out-of-band operations keyed by a runtime
// expression. Callback operations are full Operation sub-models.
type Callback struct {
	// Name is the callback key as declared
	Name string
	// Expression is the runtime expression selecting the callback URL
	Expression string
	// Operations are the callback's operations
	Operations []Operation
}

// SecurityRequirement names one security scheme an operation requires.
type SecurityRequirement struct {
	Scheme string
	Scopes []string
}

// Operation is one callable: a method+path pair with its bound
// parameters, bodies, responses, callbacks, and links.
type Operation struct {
	// ID is the operation identifier, explicit or synthesized
	ID string
	// IDSynthesized is true when ID was derived from method and path
	IDSynthesized bool
	// Method is the upper-case HTTP method
	Method string
	// Path is the path template as declared
	Path string

	Summary     string
	Description string
	Tags        []string
	Deprecated  bool

	// Parameters is the ordered parameter list: path-level parameters
	// first, overridden by operation-level redeclarations
	Parameters []Parameter
	// RequestBody is nil when the operation takes no body
	RequestBody *RequestBody
	// Responses holds one entry per declared status, in declaration order
	Responses []Response
	Callbacks []Callback
	Links     []Link
	// Security holds the operation's requirements; nil means the
	// document default applies
	Security []SecurityRequirement

	// DeclPath is the JSON pointer of the operation object
	DeclPath string
}

// Model is the completed operation model.
type Model struct {
	// Operations in document declaration order
	Operations []Operation

	byID map[string]int
}

// ByID returns the top-level operation with the given identifier.
func (m *Model) ByID(id string) (*Operation, bool) {
	i, ok := m.byID[id]
	if !ok {
		return nil, false
	}
	return &m.Operations[i], true
}
