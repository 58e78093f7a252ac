package opmodel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/internal/issues"
	"github.com/oasforge/oasforge/loader"
	"github.com/oasforge/oasforge/resolver"
	"github.com/oasforge/oasforge/typemodel"
)

// buildModel runs the loader, type model, and operation model phases
// over a document, the way the orchestrator does.
func buildModel(t *testing.T, text string) (*Model, *typemodel.Builder, error) {
	t.Helper()
	doc, err := loader.Parse([]byte(text), "api.yaml")
	require.NoError(t, err)

	res := resolver.New(loader.NewTable(doc, t.TempDir()))
	diags := issues.NewCollector()
	types := typemodel.NewBuilder(typemodel.NewArena(), res, diags)
	if err := types.BuildDocument(doc); err != nil {
		return nil, types, err
	}
	types.Arena().Freeze()

	model, err := NewBuilder(types, res, diags).Build(doc)
	return model, types, err
}

func mustBuildModel(t *testing.T, text string) (*Model, *typemodel.Builder) {
	t.Helper()
	model, types, err := buildModel(t, text)
	require.NoError(t, err)
	return model, types
}

func TestOperationIDSynthesis(t *testing.T) {
	model, _ := mustBuildModel(t, `
openapi: 3.0.0
paths:
  /pets:
    get:
      responses:
        '200': {description: ok}
  /pets/{petId}:
    get:
      responses:
        '200': {description: ok}
`)
	require.Len(t, model.Operations, 2)

	list := model.Operations[0]
	assert.Equal(t, "getPets", list.ID)
	assert.True(t, list.IDSynthesized)
	assert.Equal(t, "GET", list.Method)
	assert.Equal(t, "/pets", list.Path)

	byID := model.Operations[1]
	assert.Equal(t, "getPetsPetId", byID.ID)
	assert.NotEqual(t, list.ID, byID.ID, "synthesized ids must be distinct per path")
}

func TestOperationIDExplicit(t *testing.T) {
	model, _ := mustBuildModel(t, `
openapi: 3.0.0
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        '200': {description: ok}
`)
	op := model.Operations[0]
	assert.Equal(t, "listPets", op.ID)
	assert.False(t, op.IDSynthesized)

	found, ok := model.ByID("listPets")
	require.True(t, ok)
	assert.Equal(t, "/pets", found.Path)
}

func TestOperationIDDuplicateExplicit(t *testing.T) {
	_, _, err := buildModel(t, `
openapi: 3.0.0
paths:
  /pets:
    get:
      operationId: same
      responses:
        '200': {description: ok}
  /owners:
    get:
      operationId: same
      responses:
        '200': {description: ok}
`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generrors.ErrValidation))
	assert.Contains(t, err.Error(), "duplicate operationId")
}

func TestOperationIDCollisionSuffix(t *testing.T) {
	// Both paths sanitize to getPetsPetId; the first-declared keeps the
	// unadorned form, the second gets a numeric suffix.
	model, _ := mustBuildModel(t, `
openapi: 3.0.0
paths:
  /pets/{petId}:
    get:
      responses:
        '200': {description: ok}
  /pets/{pet-id}:
    get:
      responses:
        '200': {description: ok}
`)
	require.Len(t, model.Operations, 2)
	assert.Equal(t, "getPetsPetId", model.Operations[0].ID)
	assert.Equal(t, "getPetsPetId2", model.Operations[1].ID)
}

func TestParameters(t *testing.T) {
	model, types := mustBuildModel(t, `
openapi: 3.0.0
paths:
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: integer
    get:
      parameters:
        - name: verbose
          in: query
          schema:
            type: boolean
        - name: bare
          in: query
      responses:
        '200': {description: ok}
`)
	op := model.Operations[0]
	require.Len(t, op.Parameters, 3)

	petID := op.Parameters[0]
	assert.Equal(t, "petId", petID.Name)
	assert.Equal(t, InPath, petID.In)
	assert.True(t, petID.Required)
	assert.Equal(t, "simple", petID.Style)
	assert.Equal(t, typemodel.PrimInteger, types.Arena().Get(petID.Type).Prim)

	verbose := op.Parameters[1]
	assert.Equal(t, InQuery, verbose.In)
	assert.False(t, verbose.Required)
	assert.Equal(t, "form", verbose.Style)
	assert.True(t, verbose.Explode)

	// A parameter without a schema defaults to the unconstrained string.
	bare := op.Parameters[2]
	assert.Equal(t, types.StringType(), bare.Type)
}

func TestParameterOverride(t *testing.T) {
	model, _ := mustBuildModel(t, `
openapi: 3.0.0
paths:
  /pets:
    parameters:
      - name: limit
        in: query
        schema:
          type: integer
    get:
      parameters:
        - name: limit
          in: query
          required: true
          schema:
            type: integer
      responses:
        '200': {description: ok}
`)
	op := model.Operations[0]
	require.Len(t, op.Parameters, 1, "operation-level parameter overrides the shared one")
	assert.True(t, op.Parameters[0].Required)
}

func TestParameterBadLocation(t *testing.T) {
	_, _, err := buildModel(t, `
openapi: 3.0.0
paths:
  /pets:
    get:
      parameters:
        - name: x
          in: body
      responses:
        '200': {description: ok}
`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generrors.ErrValidation))
}

func TestRequestBodyContentTypes(t *testing.T) {
	// Multiple content types are retained as alternatives, not collapsed.
	model, types := mustBuildModel(t, `
openapi: 3.0.0
components:
  schemas:
    Pet:
      type: object
      properties:
        name: {type: string}
paths:
  /pets:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
          application/xml:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        '201': {description: created}
`)
	body := model.Operations[0].RequestBody
	require.NotNil(t, body)
	assert.True(t, body.Required)
	require.Len(t, body.Content, 2)
	assert.Equal(t, "application/json", body.Content[0].ContentType)
	assert.Equal(t, "application/xml", body.Content[1].ContentType)
	assert.Equal(t, body.Content[0].Type, body.Content[1].Type, "both bind the shared Pet type")
	assert.Equal(t, typemodel.KindObject, types.Arena().Get(body.Content[0].Type).Kind)
}

func TestResponseEmptyBodyMarker(t *testing.T) {
	model, types := mustBuildModel(t, `
openapi: 3.0.0
paths:
  /pets/{petId}:
    delete:
      parameters:
        - name: petId
          in: path
          required: true
          schema: {type: integer}
      responses:
        '204':
          description: deleted
`)
	resp := model.Operations[0].Responses[0]
	assert.Equal(t, "204", resp.Status)
	require.Len(t, resp.Content, 1)
	assert.Equal(t, types.EmptyType(), resp.Content[0].Type,
		"a response without content carries the empty-body marker, not the unconstrained type")
}

func TestResponseStatusPatterns(t *testing.T) {
	model, _ := mustBuildModel(t, `
openapi: 3.0.0
paths:
  /pets:
    get:
      responses:
        '200': {description: ok}
        '4XX': {description: client error}
        default: {description: fallback}
`)
	resp := model.Operations[0].Responses
	require.Len(t, resp, 3)
	assert.Equal(t, "200", resp[0].Status)
	assert.Equal(t, "4XX", resp[1].Status)
	assert.Equal(t, "default", resp[2].Status)
}

func TestResponseBadStatus(t *testing.T) {
	_, _, err := buildModel(t, `
openapi: 3.0.0
paths:
  /pets:
    get:
      responses:
        ok: {description: nope}
`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generrors.ErrValidation))
}

func TestMissingResponses(t *testing.T) {
	_, _, err := buildModel(t, `
openapi: 3.0.0
paths:
  /pets:
    get: {}
`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generrors.ErrValidation))
	assert.Contains(t, err.Error(), "at least one response")
}

func TestLinks(t *testing.T) {
	model, _ := mustBuildModel(t, `
openapi: 3.0.0
paths:
  /users/{username}:
    get:
      operationId: getUser
      responses:
        '200':
          description: ok
          links:
            userRepositories:
              operationId: getRepositories
              parameters:
                username: $response.body#/username
  /repositories/{username}:
    get:
      operationId: getRepositories
      responses:
        '200': {description: ok}
`)
	op := model.Operations[0]
	require.Len(t, op.Links, 1)

	link := op.Links[0]
	assert.Equal(t, "userRepositories", link.Name)
	assert.Equal(t, "200", link.Status)
	assert.Equal(t, "getRepositories", link.OperationID)
	require.Len(t, link.Parameters, 1)
	assert.Equal(t, "username", link.Parameters[0].Name)
	assert.Equal(t, "$response.body#/username", link.Parameters[0].Expression)
}

func TestCallbacks(t *testing.T) {
	model, _ := mustBuildModel(t, `
openapi: 3.0.0
paths:
  /subscribe:
    post:
      operationId: subscribe
      responses:
        '202': {description: accepted}
      callbacks:
        onEvent:
          '{$request.body#/callbackUrl}':
            post:
              responses:
                '200': {description: ok}
`)
	op := model.Operations[0]
	require.Len(t, op.Callbacks, 1)

	cb := op.Callbacks[0]
	assert.Equal(t, "onEvent", cb.Name)
	assert.Equal(t, "{$request.body#/callbackUrl}", cb.Expression)
	require.Len(t, cb.Operations, 1)
	assert.Equal(t, "POST", cb.Operations[0].Method)
	assert.True(t, cb.Operations[0].IDSynthesized)
}

func TestSecurityRequirements(t *testing.T) {
	model, _ := mustBuildModel(t, `
openapi: 3.0.0
paths:
  /pets:
    get:
      security:
        - petstore_auth: [read:pets]
        - api_key: []
      responses:
        '200': {description: ok}
`)
	op := model.Operations[0]
	require.Len(t, op.Security, 2)
	assert.Equal(t, "petstore_auth", op.Security[0].Scheme)
	assert.Equal(t, []string{"read:pets"}, op.Security[0].Scopes)
	assert.Equal(t, "api_key", op.Security[1].Scheme)
	assert.Empty(t, op.Security[1].Scopes)
}

func TestPhaseBarrier(t *testing.T) {
	doc, err := loader.Parse([]byte("openapi: 3.0.0\npaths: {}\n"), "api.yaml")
	require.NoError(t, err)

	res := resolver.New(loader.NewTable(doc, t.TempDir()))
	types := typemodel.NewBuilder(typemodel.NewArena(), res, issues.NewCollector())
	// Arena deliberately not frozen.
	_, err = NewBuilder(types, res, issues.NewCollector()).Build(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generrors.ErrEmission))
}

func TestSynthesizeID(t *testing.T) {
	tests := []struct {
		method, path, want string
	}{
		{"GET", "/pets", "getPets"},
		{"GET", "/pets/{petId}", "getPetsPetId"},
		{"POST", "/pet/{petId}/uploadImage", "postPetPetIdUploadImage"},
		{"DELETE", "/store/order/{order-id}", "deleteStoreOrderOrderId"},
		{"GET", "/", "get"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, synthesizeID(tt.method, tt.path), "%s %s", tt.method, tt.path)
	}
}
