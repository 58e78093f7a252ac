package opmodel

import (
	"fmt"
	"strings"

	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/internal/issues"
	"github.com/oasforge/oasforge/internal/severity"
	"github.com/oasforge/oasforge/loader"
	"github.com/oasforge/oasforge/resolver"
	"github.com/oasforge/oasforge/typemodel"
)

// httpMethods is the fixed enumeration order for operations inside a
// path item. Using a fixed order (rather than map iteration) keeps the
// model deterministic.
var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Builder builds the operation model from a loaded document and the
// frozen type model.
type Builder struct {
	types *typemodel.Builder
	res   *resolver.Resolver
	diags *issues.Collector
	ids   *idRegistry
}

// NewBuilder creates an operation model builder. The type model arena
// must already be frozen; Build enforces this phase barrier.
func NewBuilder(types *typemodel.Builder, res *resolver.Resolver, diags *issues.Collector) *Builder {
	return &Builder{
		types: types,
		res:   res,
		diags: diags,
		ids:   newIDRegistry(),
	}
}

// Build enumerates all (path, method) pairs in document declaration
// order and produces one Operation per pair.
func (b *Builder) Build(doc *loader.Document) (*Model, error) {
	if !b.types.Arena().Frozen() {
		return nil, &generrors.EmissionError{
			Message: "operation model requires a frozen type model",
		}
	}

	model := &Model{byID: map[string]int{}}

	paths, ok := doc.Root.Get("paths")
	if !ok || paths.Kind != loader.KindMapping {
		return model, nil
	}

	for _, path := range paths.Keys {
		ops, err := b.buildPathItem(path, paths.Children[path], true)
		if err != nil {
			return nil, err
		}
		for _, op := range ops {
			model.byID[op.ID] = len(model.Operations)
			model.Operations = append(model.Operations, op)
		}
	}
	return model, nil
}

// buildPathItem builds every operation declared in a path item.
// register controls whether identifiers join the global registry;
// callback sub-operations register too, keeping identifiers unique
// across the whole model.
func (b *Builder) buildPathItem(path string, item *loader.Node, register bool) ([]Operation, error) {
	item, _, err := b.res.Deref(item)
	if err != nil {
		return nil, err
	}
	if item == nil || item.Kind != loader.KindMapping {
		return nil, nil
	}

	var shared []Parameter
	if params, ok := item.Get("parameters"); ok {
		shared, err = b.buildParameters(params)
		if err != nil {
			return nil, err
		}
	}

	var ops []Operation
	for _, method := range httpMethods {
		opNode, ok := item.Get(method)
		if !ok {
			continue
		}
		op, err := b.buildOperation(path, method, opNode, shared, register)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (b *Builder) buildOperation(path, method string, node *loader.Node, shared []Parameter, register bool) (Operation, error) {
	op := Operation{
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     node.ChildString("summary"),
		Description: node.ChildString("description"),
		Deprecated:  node.ChildBool("deprecated", false),
		DeclPath:    node.Path,
	}

	if err := b.assignID(&op, node, register); err != nil {
		return Operation{}, err
	}

	if tags, ok := node.Get("tags"); ok && tags.Kind == loader.KindSequence {
		for _, tag := range tags.Items {
			if s, ok := tag.AsString(); ok {
				op.Tags = append(op.Tags, s)
			}
		}
	}

	// Path-level parameters come first; an operation-level parameter
	// with the same (name, location) overrides its shared counterpart.
	var own []Parameter
	if params, ok := node.Get("parameters"); ok {
		var err error
		own, err = b.buildParameters(params)
		if err != nil {
			return Operation{}, err
		}
	}
	op.Parameters = mergeParameters(shared, own)

	if bodyNode, ok := node.Get("requestBody"); ok {
		body, err := b.buildRequestBody(bodyNode)
		if err != nil {
			return Operation{}, err
		}
		op.RequestBody = body
	}

	responses, ok := node.Get("responses")
	if !ok || responses.Kind != loader.KindMapping || len(responses.Keys) == 0 {
		return Operation{}, &generrors.ValidationError{
			Path:    node.Path,
			Field:   "responses",
			Message: "operation must declare at least one response",
		}
	}
	for _, status := range responses.Keys {
		resp, links, err := b.buildResponse(status, responses.Children[status])
		if err != nil {
			return Operation{}, err
		}
		op.Responses = append(op.Responses, resp)
		op.Links = append(op.Links, links...)
	}

	if callbacks, ok := node.Get("callbacks"); ok && callbacks.Kind == loader.KindMapping {
		for _, name := range callbacks.Keys {
			cbs, err := b.buildCallback(name, callbacks.Children[name])
			if err != nil {
				return Operation{}, err
			}
			op.Callbacks = append(op.Callbacks, cbs...)
		}
	}

	if security, ok := node.Get("security"); ok && security.Kind == loader.KindSequence {
		for _, req := range security.Items {
			if req.Kind != loader.KindMapping {
				continue
			}
			for _, scheme := range req.Keys {
				sr := SecurityRequirement{Scheme: scheme}
				if scopes := req.Children[scheme]; scopes.Kind == loader.KindSequence {
					for _, scope := range scopes.Items {
						if s, ok := scope.AsString(); ok {
							sr.Scopes = append(sr.Scopes, s)
						}
					}
				}
				op.Security = append(op.Security, sr)
			}
		}
	}

	return op, nil
}

// assignID resolves the operation identifier: an explicit operationId
// is used verbatim and must be globally unique; otherwise one is
// synthesized from the method and path, with numeric suffixes resolving
// residual collisions in declaration order.
func (b *Builder) assignID(op *Operation, node *loader.Node, register bool) error {
	if explicit := node.ChildString("operationId"); explicit != "" {
		if register && !b.ids.claim(explicit) {
			return &generrors.ValidationError{
				Path:    node.Path,
				Field:   "operationId",
				Value:   explicit,
				Message: "duplicate operationId",
			}
		}
		op.ID = explicit
		return nil
	}

	base := synthesizeID(op.Method, op.Path)
	if register {
		op.ID = b.ids.claimSynthesized(base)
		if op.ID != base {
			b.diags.Addf(severity.SeverityInfo, node.Path,
				"synthesized operation id %q collided, using %q", base, op.ID)
		}
	} else {
		op.ID = base
	}
	op.IDSynthesized = true
	return nil
}

func (b *Builder) buildParameters(params *loader.Node) ([]Parameter, error) {
	if params.Kind != loader.KindSequence {
		return nil, &generrors.ValidationError{
			Path:    params.Path,
			Field:   "parameters",
			Message: "parameters must be a sequence",
		}
	}
	var out []Parameter
	for _, raw := range params.Items {
		node, _, err := b.res.Deref(raw)
		if err != nil {
			return nil, err
		}
		if node == nil {
			b.diags.Addf(severity.SeverityWarning, raw.Path, "skipped unresolvable parameter reference")
			continue
		}
		p, err := b.buildParameter(node)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (b *Builder) buildParameter(node *loader.Node) (Parameter, error) {
	name := node.ChildString("name")
	if name == "" {
		return Parameter{}, &generrors.ValidationError{
			Path:    node.Path,
			Field:   "name",
			Message: "parameter missing name",
		}
	}

	in := Location(node.ChildString("in"))
	switch in {
	case InPath, InQuery, InHeader, InCookie:
	default:
		return Parameter{}, &generrors.ValidationError{
			Path:    node.Path,
			Field:   "in",
			Value:   string(in),
			Message: "parameter location must be path, query, header, or cookie",
		}
	}

	p := Parameter{
		Name:        name,
		In:          in,
		Required:    node.ChildBool("required", in == InPath),
		Style:       node.ChildString("style"),
		Description: node.ChildString("description"),
		DeclPath:    node.Path,
	}

	// Path parameters are always required; tolerate but flag documents
	// that say otherwise.
	if in == InPath && !p.Required {
		b.diags.Addf(severity.SeverityWarning, node.Path,
			"path parameter %q marked optional, treating as required", name)
		p.Required = true
	}

	if p.Style == "" {
		p.Style = defaultStyle(in)
	}
	if explode, ok := node.Get("explode"); ok {
		p.Explode = explode.BoolOr(false)
	} else {
		p.Explode = p.Style == "form"
	}

	if schema, ok := node.Get("schema"); ok {
		id, err := b.types.Lookup(schema)
		if err != nil {
			return Parameter{}, err
		}
		p.Type = id
	} else {
		b.diags.Addf(severity.SeverityInfo, node.Path,
			"parameter %q has no schema, defaulting to string", name)
		p.Type = b.types.StringType()
	}
	return p, nil
}

// defaultStyle is the OpenAPI default serialization style per location.
func defaultStyle(in Location) string {
	switch in {
	case InQuery, InCookie:
		return "form"
	default:
		return "simple"
	}
}

// mergeParameters combines path-level and operation-level parameters;
// operation-level declarations override shared ones with the same name
// and location.
func mergeParameters(shared, own []Parameter) []Parameter {
	if len(shared) == 0 {
		return own
	}
	out := make([]Parameter, 0, len(shared)+len(own))
	overridden := func(p Parameter) bool {
		for _, o := range own {
			if o.Name == p.Name && o.In == p.In {
				return true
			}
		}
		return false
	}
	for _, p := range shared {
		if !overridden(p) {
			out = append(out, p)
		}
	}
	return append(out, own...)
}

func (b *Builder) buildRequestBody(node *loader.Node) (*RequestBody, error) {
	node, _, err := b.res.Deref(node)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}

	body := &RequestBody{
		Required:    node.ChildBool("required", false),
		Description: node.ChildString("description"),
	}
	body.Content, err = b.buildContent(node)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// buildContent maps each declared content type to its payload type.
// A content type without a schema binds to the unconstrained type; a
// node without content at all yields the empty-body marker.
func (b *Builder) buildContent(node *loader.Node) ([]MediaType, error) {
	content, ok := node.Get("content")
	if !ok || content.Kind != loader.KindMapping || len(content.Keys) == 0 {
		return []MediaType{{Type: b.types.EmptyType()}}, nil
	}

	var out []MediaType
	for _, contentType := range content.Keys {
		mt := MediaType{ContentType: contentType}
		if schema, ok := content.Children[contentType].Get("schema"); ok {
			id, err := b.types.Lookup(schema)
			if err != nil {
				return nil, err
			}
			mt.Type = id
		} else {
			mt.Type = b.types.AnyType()
		}
		out = append(out, mt)
	}
	return out, nil
}

func (b *Builder) buildResponse(status string, node *loader.Node) (Response, []Link, error) {
	if !validStatus(status) {
		return Response{}, nil, &generrors.ValidationError{
			Path:    node.Path,
			Field:   "responses",
			Value:   status,
			Message: "status must be a 3-digit code, a pattern like 2XX, or default",
		}
	}

	node, _, err := b.res.Deref(node)
	if err != nil {
		return Response{}, nil, err
	}
	if node == nil {
		return Response{Status: status, Content: []MediaType{{Type: b.types.EmptyType()}}}, nil, nil
	}

	resp := Response{
		Status:      status,
		Description: node.ChildString("description"),
	}
	resp.Content, err = b.buildContent(node)
	if err != nil {
		return Response{}, nil, err
	}

	if headers, ok := node.Get("headers"); ok && headers.Kind == loader.KindMapping {
		for _, name := range headers.Keys {
			header, _, err := b.res.Deref(headers.Children[name])
			if err != nil {
				return Response{}, nil, err
			}
			if header == nil {
				continue
			}
			h := Parameter{
				Name:        name,
				In:          InHeader,
				Required:    header.ChildBool("required", false),
				Description: header.ChildString("description"),
				Style:       "simple",
				DeclPath:    header.Path,
				Type:        b.types.StringType(),
			}
			if schema, ok := header.Get("schema"); ok {
				id, err := b.types.Lookup(schema)
				if err != nil {
					return Response{}, nil, err
				}
				h.Type = id
			}
			resp.Headers = append(resp.Headers, h)
		}
	}

	var links []Link
	if linksNode, ok := node.Get("links"); ok && linksNode.Kind == loader.KindMapping {
		for _, name := range linksNode.Keys {
			link, err := b.buildLink(name, status, linksNode.Children[name])
			if err != nil {
				return Response{}, nil, err
			}
			links = append(links, link)
		}
	}

	return resp, links, nil
}

// validStatus accepts a 3-digit status code, a range pattern such as
// "2XX", or "default".
func validStatus(s string) bool {
	if s == "default" {
		return true
	}
	if len(s) != 3 {
		return false
	}
	if s[0] < '1' || s[0] > '5' {
		return false
	}
	digits := s[1] >= '0' && s[1] <= '9' && s[2] >= '0' && s[2] <= '9'
	wildcard := s[1] == 'X' && s[2] == 'X'
	return digits || wildcard
}

func (b *Builder) buildLink(name, status string, node *loader.Node) (Link, error) {
	node, _, err := b.res.Deref(node)
	if err != nil {
		return Link{}, err
	}
	if node == nil {
		return Link{Name: name, Status: status}, nil
	}

	link := Link{
		Name:         name,
		Status:       status,
		OperationID:  node.ChildString("operationId"),
		OperationRef: node.ChildString("operationRef"),
		RequestBody:  node.ChildString("requestBody"),
		Description:  node.ChildString("description"),
	}
	if params, ok := node.Get("parameters"); ok && params.Kind == loader.KindMapping {
		for _, pname := range params.Keys {
			link.Parameters = append(link.Parameters, LinkParameter{
				Name:       pname,
				Expression: params.Children[pname].StringOr(""),
			})
		}
	}
	if link.OperationID == "" && link.OperationRef == "" {
		return Link{}, &generrors.ValidationError{
			Path:    node.Path,
			Field:   "links",
			Message: fmt.Sprintf("link %q must declare operationId or operationRef", name),
		}
	}
	return link, nil
}

// buildCallback builds a callback's expression map; each value is a
// path-item-shaped sub-document whose operations become full Operation
// sub-models. One Callback is produced per runtime expression.
func (b *Builder) buildCallback(name string, node *loader.Node) ([]Callback, error) {
	node, _, err := b.res.Deref(node)
	if err != nil {
		return nil, err
	}
	if node == nil || node.Kind != loader.KindMapping {
		return []Callback{{Name: name}}, nil
	}
	var out []Callback
	for _, expression := range node.Keys {
		ops, err := b.buildPathItem(expression, node.Children[expression], true)
		if err != nil {
			return nil, err
		}
		out = append(out, Callback{
			Name:       name,
			Expression: expression,
			Operations: ops,
		})
	}
	return out, nil
}
