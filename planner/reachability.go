package planner

import (
	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/namer"
	"github.com/oasforge/oasforge/opmodel"
	"github.com/oasforge/oasforge/typemodel"
)

// reachability marks every type transitively referenced by an
// operation or by a named component. Anonymous types built during
// document traversal but referenced by nothing (for example schemas
// under an unused callback expression) stay unmarked and are excluded
// from the IR.
type reachability struct {
	arena *typemodel.Arena
	seen  []bool
}

func newReachability(arena *typemodel.Arena, model *opmodel.Model) *reachability {
	r := &reachability{arena: arena, seen: make([]bool, arena.Len())}
	for i := 0; i < arena.Len(); i++ {
		id := typemodel.TypeID(i)
		if arena.Get(id).Name != "" {
			r.markType(id)
		}
	}
	for i := range model.Operations {
		r.markOperation(&model.Operations[i])
	}
	return r
}

func (r *reachability) reached(id typemodel.TypeID) bool {
	return id >= 0 && int(id) < len(r.seen) && r.seen[id]
}

// markType walks the type graph from id. The seen set doubles as the
// cycle guard, so back-edges terminate the walk.
func (r *reachability) markType(id typemodel.TypeID) {
	if id == typemodel.Invalid || r.seen[id] {
		return
	}
	r.seen[id] = true

	t := r.arena.Get(id)
	switch t.Kind {
	case typemodel.KindArray, typemodel.KindNullable:
		r.markType(t.Elem)
	case typemodel.KindObject:
		for _, p := range t.Props {
			r.markType(p.Type)
		}
		if t.HasAdditional {
			r.markType(t.Additional)
		}
	case typemodel.KindUnion:
		for _, v := range t.Variants {
			r.markType(v.Type)
		}
	case typemodel.KindIntersection:
		for _, p := range t.Props {
			r.markType(p.Type)
		}
		if t.HasAdditional {
			r.markType(t.Additional)
		}
	}
}

func (r *reachability) markOperation(op *opmodel.Operation) {
	for _, p := range op.Parameters {
		r.markType(p.Type)
	}
	if op.RequestBody != nil {
		for _, mt := range op.RequestBody.Content {
			r.markType(mt.Type)
		}
	}
	for i := range op.Responses {
		resp := &op.Responses[i]
		for _, mt := range resp.Content {
			r.markType(mt.Type)
		}
		for _, h := range resp.Headers {
			r.markType(h.Type)
		}
	}
	for i := range op.Callbacks {
		for j := range op.Callbacks[i].Operations {
			r.markOperation(&op.Callbacks[i].Operations[j])
		}
	}
}

// verify checks IR closure: every reachable type must carry an
// assigned symbol, so no emitted declaration can reference a symbol
// that was never defined.
func (r *reachability) verify(symbols *namer.SymbolTable) error {
	for i := 0; i < r.arena.Len(); i++ {
		id := typemodel.TypeID(i)
		if !r.seen[id] {
			continue
		}
		if _, ok := symbols.TypeName(id); !ok {
			return &generrors.EmissionError{
				Unit:    ModelUnitName,
				Message: "reachable type was never named",
			}
		}
	}
	return nil
}
