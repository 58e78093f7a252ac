package typemodel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/internal/issues"
	"github.com/oasforge/oasforge/internal/severity"
	"github.com/oasforge/oasforge/loader"
	"github.com/oasforge/oasforge/resolver"
)

// testBuilder parses a document and returns a builder over it plus the
// node for a named component schema.
func testBuilder(t *testing.T, text string) (*Builder, *loader.Document, *issues.Collector) {
	t.Helper()
	doc, err := loader.Parse([]byte(text), "api.yaml")
	require.NoError(t, err)
	diags := issues.NewCollector()
	res := resolver.New(loader.NewTable(doc, t.TempDir()))
	return NewBuilder(NewArena(), res, diags), doc, diags
}

func schemaNode(t *testing.T, doc *loader.Document, name string) *loader.Node {
	t.Helper()
	node, err := resolver.Eval(doc, "#/components/schemas/"+name)
	require.NoError(t, err)
	return node
}

func TestBuildPrimitive(t *testing.T) {
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    Age:
      type: integer
      format: int64
`)
	id, err := b.Build(schemaNode(t, doc, "Age"))
	require.NoError(t, err)

	typ := b.Arena().Get(id)
	assert.Equal(t, KindPrimitive, typ.Kind)
	assert.Equal(t, PrimInteger, typ.Prim)
	assert.Equal(t, "int64", typ.Format)
	assert.Equal(t, "Age", typ.Name)
	assert.Equal(t, "/components/schemas/Age", typ.Path)
}

func TestBuildObject(t *testing.T) {
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
        tag:
          type: string
`)
	id, err := b.Build(schemaNode(t, doc, "Pet"))
	require.NoError(t, err)

	typ := b.Arena().Get(id)
	require.Equal(t, KindObject, typ.Kind)
	require.Len(t, typ.Props, 2)
	assert.Equal(t, "name", typ.Props[0].Name)
	assert.True(t, typ.Props[0].Required)
	assert.Equal(t, "tag", typ.Props[1].Name)
	assert.False(t, typ.Props[1].Required)
}

func TestBuildMemoizedByIdentityNotStructure(t *testing.T) {
	// Two structurally identical but separately declared schemas get
	// distinct TypeIDs.
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    A:
      type: object
      properties:
        x: {type: string}
    B:
      type: object
      properties:
        x: {type: string}
`)
	aID, err := b.Build(schemaNode(t, doc, "A"))
	require.NoError(t, err)
	bID, err := b.Build(schemaNode(t, doc, "B"))
	require.NoError(t, err)
	assert.NotEqual(t, aID, bID)

	// Rebuilding the same node returns the same TypeID.
	again, err := b.Build(schemaNode(t, doc, "A"))
	require.NoError(t, err)
	assert.Equal(t, aID, again)
}

func TestBuildCycleSafety(t *testing.T) {
	// A's property references B and B's property references back to A.
	// Both must resolve without unbounded recursion, appearing exactly
	// once in the arena with one back-edge each.
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    A:
      type: object
      properties:
        b:
          $ref: '#/components/schemas/B'
    B:
      type: object
      properties:
        a:
          $ref: '#/components/schemas/A'
`)
	before := b.Arena().Len()
	aID, err := b.Build(schemaNode(t, doc, "A"))
	require.NoError(t, err)

	// Exactly two new entries: A and B.
	assert.Equal(t, before+2, b.Arena().Len())

	aType := b.Arena().Get(aID)
	require.Equal(t, KindObject, aType.Kind)
	require.Len(t, aType.Props, 1)
	bID := aType.Props[0].Type

	bType := b.Arena().Get(bID)
	require.Equal(t, KindObject, bType.Kind)
	require.Len(t, bType.Props, 1)
	assert.Equal(t, aID, bType.Props[0].Type, "B's property must be a back-edge to A")

	// Building B directly is a lookup, not a new entry.
	direct, err := b.Build(schemaNode(t, doc, "B"))
	require.NoError(t, err)
	assert.Equal(t, bID, direct)
	assert.Equal(t, before+2, b.Arena().Len())
}

func TestBuildSelfReferential(t *testing.T) {
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    Node:
      type: object
      properties:
        children:
          type: array
          items:
            $ref: '#/components/schemas/Node'
`)
	id, err := b.Build(schemaNode(t, doc, "Node"))
	require.NoError(t, err)

	typ := b.Arena().Get(id)
	require.Len(t, typ.Props, 1)
	arr := b.Arena().Get(typ.Props[0].Type)
	require.Equal(t, KindArray, arr.Kind)
	assert.Equal(t, id, arr.Elem, "array element must be a back-edge to Node")
}

func TestBuildNullableWrapper(t *testing.T) {
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    MaybeName:
      type: string
      nullable: true
`)
	id, err := b.Build(schemaNode(t, doc, "MaybeName"))
	require.NoError(t, err)

	typ := b.Arena().Get(id)
	require.Equal(t, KindNullable, typ.Kind)
	inner := b.Arena().Get(typ.Elem)
	assert.Equal(t, KindPrimitive, inner.Kind)
	assert.Equal(t, PrimString, inner.Prim)
}

func TestBuildEnum(t *testing.T) {
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    Status:
      type: string
      enum: [available, pending, sold]
`)
	id, err := b.Build(schemaNode(t, doc, "Status"))
	require.NoError(t, err)

	typ := b.Arena().Get(id)
	require.Equal(t, KindEnum, typ.Kind)
	assert.Equal(t, []any{"available", "pending", "sold"}, typ.EnumValues)
}

func TestBuildUnconstrainedDefaults(t *testing.T) {
	b, doc, diags := testBuilder(t, `
components:
  schemas:
    Bare: {}
    LooseArray:
      type: array
    LooseObject:
      type: object
`)
	bareID, err := b.Build(schemaNode(t, doc, "Bare"))
	require.NoError(t, err)
	assert.Equal(t, KindAny, b.Arena().Get(bareID).Kind)

	arrID, err := b.Build(schemaNode(t, doc, "LooseArray"))
	require.NoError(t, err)
	arr := b.Arena().Get(arrID)
	require.Equal(t, KindArray, arr.Kind)
	assert.Equal(t, b.AnyType(), arr.Elem)

	objID, err := b.Build(schemaNode(t, doc, "LooseObject"))
	require.NoError(t, err)
	assert.Equal(t, KindAny, b.Arena().Get(objID).Kind)

	assert.Positive(t, diags.Count(severity.SeverityInfo))
}

func TestBuildAdditionalProperties(t *testing.T) {
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    Counts:
      type: object
      additionalProperties:
        type: integer
`)
	id, err := b.Build(schemaNode(t, doc, "Counts"))
	require.NoError(t, err)

	typ := b.Arena().Get(id)
	require.Equal(t, KindObject, typ.Kind)
	require.True(t, typ.HasAdditional)
	assert.Equal(t, KindPrimitive, b.Arena().Get(typ.Additional).Kind)
}

func TestBuildUnknownTypeFails(t *testing.T) {
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    Odd:
      type: flobble
`)
	_, err := b.Build(schemaNode(t, doc, "Odd"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, generrors.ErrValidation))
}

func TestBuildNonProgressingCycleFails(t *testing.T) {
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    A:
      $ref: '#/components/schemas/A'
`)
	_, err := b.Build(schemaNode(t, doc, "A"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, generrors.ErrCircularReference))
}

func TestInternedSingletons(t *testing.T) {
	b, _, _ := testBuilder(t, "openapi: 3.0.0\n")
	assert.Equal(t, KindAny, b.Arena().Get(b.AnyType()).Kind)
	assert.Equal(t, KindEmpty, b.Arena().Get(b.EmptyType()).Kind)

	str := b.Arena().Get(b.StringType())
	assert.Equal(t, KindPrimitive, str.Kind)
	assert.Equal(t, PrimString, str.Prim)
}

func TestArenaFreeze(t *testing.T) {
	arena := NewArena()
	id := arena.append(Type{Kind: KindAny})
	arena.Freeze()

	assert.True(t, arena.Frozen())
	assert.Equal(t, KindAny, arena.Get(id).Kind, "reads still allowed after freeze")
	assert.Panics(t, func() { arena.append(Type{Kind: KindAny}) })
	assert.Panics(t, func() { arena.set(id, Type{Kind: KindEmpty}) })
}

func TestLookupAfterFreeze(t *testing.T) {
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    Pet:
      type: object
      properties:
        name: {type: string}
`)
	node := schemaNode(t, doc, "Pet")
	id, err := b.Build(node)
	require.NoError(t, err)
	b.Arena().Freeze()

	got, err := b.Lookup(node)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestLookupUnbuiltIsInvariantViolation(t *testing.T) {
	b, doc, _ := testBuilder(t, `
components:
  schemas:
    Pet:
      type: object
      properties:
        name: {type: string}
`)
	b.Arena().Freeze()

	_, err := b.Lookup(schemaNode(t, doc, "Pet"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, generrors.ErrEmission))
}
