package typemodel

import (
	"github.com/oasforge/oasforge/loader"
	"github.com/oasforge/oasforge/resolver"
)

// BuildDocument builds every schema reachable from a specification
// document: the reusable components section first, then every schema
// bearing position under paths (parameters, request bodies, responses,
// headers, callbacks). This is the whole of the type model phase; the
// caller freezes the arena afterwards, and the operation model phase
// only looks up what was built here.
func (b *Builder) BuildDocument(doc *loader.Document) error {
	root := doc.Root

	if components, ok := root.Get("components"); ok {
		if schemas, ok := components.Get("schemas"); ok && schemas.Kind == loader.KindMapping {
			for _, name := range schemas.Keys {
				if _, err := b.Build(schemas.Children[name]); err != nil {
					return err
				}
			}
		}
	}
	// OAS 2 reusable schemas.
	if definitions, ok := root.Get("definitions"); ok && definitions.Kind == loader.KindMapping {
		for _, name := range definitions.Keys {
			if _, err := b.Build(definitions.Children[name]); err != nil {
				return err
			}
		}
	}

	paths, ok := root.Get("paths")
	if !ok || paths.Kind != loader.KindMapping {
		return nil
	}
	for _, path := range paths.Keys {
		if err := b.buildPathItem(paths.Children[path]); err != nil {
			return err
		}
	}
	return nil
}

// httpMethods are the operation keys recognized inside a path item.
var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

func (b *Builder) buildPathItem(item *loader.Node) error {
	item, _, err := b.res.Deref(item)
	if err != nil {
		return err
	}
	if item == nil || item.Kind != loader.KindMapping {
		return nil
	}

	if params, ok := item.Get("parameters"); ok {
		if err := b.buildParameters(params); err != nil {
			return err
		}
	}

	for _, method := range httpMethods {
		op, ok := item.Get(method)
		if !ok {
			continue
		}
		if err := b.buildOperationSchemas(op); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildOperationSchemas(op *loader.Node) error {
	if params, ok := op.Get("parameters"); ok {
		if err := b.buildParameters(params); err != nil {
			return err
		}
	}

	if body, ok := op.Get("requestBody"); ok {
		if err := b.buildContentSchemas(body); err != nil {
			return err
		}
	}

	if responses, ok := op.Get("responses"); ok && responses.Kind == loader.KindMapping {
		for _, status := range responses.Keys {
			if err := b.buildResponseSchemas(responses.Children[status]); err != nil {
				return err
			}
		}
	}

	if callbacks, ok := op.Get("callbacks"); ok && callbacks.Kind == loader.KindMapping {
		for _, name := range callbacks.Keys {
			if err := b.buildCallbackSchemas(callbacks.Children[name]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) buildParameters(params *loader.Node) error {
	if params.Kind != loader.KindSequence {
		return nil
	}
	for _, param := range params.Items {
		target, _, err := b.res.Deref(param)
		if err != nil {
			return err
		}
		if target == nil {
			continue
		}
		if schema, ok := target.Get("schema"); ok {
			if _, err := b.Build(schema); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildContentSchemas builds the schema under each content type of a
// request body or similar content-carrying node.
func (b *Builder) buildContentSchemas(node *loader.Node) error {
	target, _, err := b.res.Deref(node)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	content, ok := target.Get("content")
	if !ok || content.Kind != loader.KindMapping {
		return nil
	}
	for _, mediaType := range content.Keys {
		if schema, ok := content.Children[mediaType].Get("schema"); ok {
			if _, err := b.Build(schema); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) buildResponseSchemas(response *loader.Node) error {
	target, _, err := b.res.Deref(response)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	if err := b.buildContentSchemas(target); err != nil {
		return err
	}
	if headers, ok := target.Get("headers"); ok && headers.Kind == loader.KindMapping {
		for _, name := range headers.Keys {
			header, _, err := b.res.Deref(headers.Children[name])
			if err != nil {
				return err
			}
			if header == nil {
				continue
			}
			if schema, ok := header.Get("schema"); ok {
				if _, err := b.Build(schema); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// buildCallbackSchemas builds schemas under a callback's expression map,
// whose values are path-item-shaped sub-documents.
func (b *Builder) buildCallbackSchemas(callback *loader.Node) error {
	target, _, err := b.res.Deref(callback)
	if err != nil {
		return err
	}
	if target == nil || target.Kind != loader.KindMapping {
		return nil
	}
	for _, expression := range target.Keys {
		if err := b.buildPathItem(target.Children[expression]); err != nil {
			return err
		}
	}
	return nil
}

// Tracker exposes the builder's resolution tracker for tests.
func (b *Builder) Tracker() *resolver.Tracker {
	return b.tracker
}
