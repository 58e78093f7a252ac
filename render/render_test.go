package render

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasforge/oasforge/internal/issues"
	"github.com/oasforge/oasforge/loader"
	"github.com/oasforge/oasforge/namer"
	"github.com/oasforge/oasforge/opmodel"
	"github.com/oasforge/oasforge/planner"
	"github.com/oasforge/oasforge/resolver"
	"github.com/oasforge/oasforge/typemodel"
)

func renderSource(t *testing.T, text string, policy planner.GroupingPolicy) []File {
	t.Helper()
	doc, err := loader.Parse([]byte(text), "api.yaml")
	require.NoError(t, err)

	res := resolver.New(loader.NewTable(doc, t.TempDir()))
	diags := issues.NewCollector()
	types := typemodel.NewBuilder(typemodel.NewArena(), res, diags)
	require.NoError(t, types.BuildDocument(doc))
	types.Arena().Freeze()

	model, err := opmodel.NewBuilder(types, res, diags).Build(doc)
	require.NoError(t, err)

	symbols, err := namer.Assign(types.Arena(), model, namer.Config{})
	require.NoError(t, err)

	ir, err := planner.Plan(types.Arena(), model, symbols, policy)
	require.NoError(t, err)

	files, err := New(ir, "petstore", diags).Render()
	require.NoError(t, err)
	return files
}

func fileNamed(t *testing.T, files []File, name string) string {
	t.Helper()
	for _, f := range files {
		if f.Name == name {
			return string(f.Content)
		}
	}
	t.Fatalf("no generated file named %q; have %v", name, fileNames(files))
	return ""
}

func fileNames(files []File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

const petstore = `
openapi: 3.0.0
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name: {type: string}
        age: {type: integer}
paths:
  /pets:
    get:
      operationId: listPets
      tags: [pets]
      parameters:
        - name: limit
          in: query
          schema: {type: integer}
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: {$ref: '#/components/schemas/Pet'}
    post:
      operationId: createPet
      tags: [pets]
      requestBody:
        content:
          application/json:
            schema: {$ref: '#/components/schemas/Pet'}
      responses:
        '201':
          description: created
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Pet'}
  /pets/{petId}:
    delete:
      operationId: deletePet
      parameters:
        - name: petId
          in: path
          required: true
          schema: {type: integer}
      responses:
        '204': {description: deleted}
`

func TestRenderFileSet(t *testing.T) {
	files := renderSource(t, petstore, planner.GroupByTag)
	assert.Equal(t, []string{"client.go", "models.go", "pets.go", "operations.go"}, fileNames(files))
}

func TestRenderClientBoilerplate(t *testing.T) {
	files := renderSource(t, petstore, planner.GroupByTag)
	client := fileNamed(t, files, "client.go")

	assert.Contains(t, client, "package petstore")
	assert.Contains(t, client, "type Client struct")
	assert.Contains(t, client, "func NewClient(baseURL string, opts ...ClientOption) (*Client, error)")
	assert.Contains(t, client, "func WithHTTPClient(")
	assert.Contains(t, client, "func WithUserAgent(")
	assert.Contains(t, client, "type APIError struct")
}

func TestRenderModels(t *testing.T) {
	files := renderSource(t, petstore, planner.GroupByTag)
	models := fileNamed(t, files, "models.go")

	assert.Contains(t, models, "type Pet struct")
	assert.Contains(t, models, "`json:\"name\"`")
	// Optional properties become pointers with omitempty.
	assert.Contains(t, models, "*int64")
	assert.Contains(t, models, "`json:\"age,omitempty\"`")
}

func TestRenderOperations(t *testing.T) {
	files := renderSource(t, petstore, planner.GroupByTag)
	pets := fileNamed(t, files, "pets.go")

	assert.Contains(t, pets, "func (c *Client) ListPets(ctx context.Context, limit *int64) ([]Pet, *http.Response, error)")
	assert.Contains(t, pets, "func (c *Client) CreatePet(ctx context.Context, payload Pet) (Pet, *http.Response, error)")

	ops := fileNamed(t, files, "operations.go")
	// 204 with no content yields no result value.
	assert.Contains(t, ops, "func (c *Client) DeletePet(ctx context.Context, petId int64) (*http.Response, error)")
	assert.Contains(t, ops, `strings.ReplaceAll(path, "{petId}", url.PathEscape(fmt.Sprint(petId)))`)
}

func TestRenderedSourceParses(t *testing.T) {
	files := renderSource(t, petstore, planner.GroupByTag)
	for _, f := range files {
		fset := token.NewFileSet()
		_, err := parser.ParseFile(fset, f.Name, f.Content, parser.AllErrors)
		assert.NoError(t, err, "generated file %s must be valid Go source", f.Name)
	}
}

func TestRenderDeterminism(t *testing.T) {
	first := renderSource(t, petstore, planner.GroupByTag)
	second := renderSource(t, petstore, planner.GroupByTag)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, string(first[i].Content), string(second[i].Content))
	}
}

func TestRenderTaggedUnion(t *testing.T) {
	files := renderSource(t, `
openapi: 3.0.0
components:
  schemas:
    Cat:
      type: object
      properties:
        meow: {type: boolean}
    Dog:
      type: object
      properties:
        bark: {type: boolean}
    Animal:
      oneOf:
        - $ref: '#/components/schemas/Cat'
        - $ref: '#/components/schemas/Dog'
      discriminator:
        propertyName: kind
        mapping:
          cat: '#/components/schemas/Cat'
          dog: '#/components/schemas/Dog'
`, planner.GroupSingle)

	src := fileNamed(t, files, "api.go")
	assert.Contains(t, src, "type Animal struct")
	assert.Contains(t, src, "Cat *Cat")
	assert.Contains(t, src, `case "cat":`)
	assert.Contains(t, src, `case "dog":`)
	// Unrecognized tags fail at decode time.
	assert.Contains(t, src, "unrecognized kind value")
}

func TestRenderOpenUnion(t *testing.T) {
	files := renderSource(t, `
openapi: 3.0.0
components:
  schemas:
    Cat:
      type: object
      properties:
        meow: {type: boolean}
    Dog:
      type: object
      properties:
        bark: {type: boolean}
    Animal:
      anyOf:
        - $ref: '#/components/schemas/Cat'
        - $ref: '#/components/schemas/Dog'
`, planner.GroupSingle)

	src := fileNamed(t, files, "api.go")
	assert.Contains(t, src, "Raw json.RawMessage")
	assert.Contains(t, src, "func (u Animal) AsCat() (Cat, error)")
	assert.Contains(t, src, "func (u Animal) AsDog() (Dog, error)")
}

func TestRenderEnum(t *testing.T) {
	files := renderSource(t, `
openapi: 3.0.0
components:
  schemas:
    Status:
      type: string
      enum: [placed, shipped, delivered]
`, planner.GroupSingle)

	src := fileNamed(t, files, "api.go")
	assert.Contains(t, src, "type Status string")
	assert.Contains(t, src, `Status = "placed"`)
	assert.Contains(t, src, `Status = "shipped"`)
}

func TestRenderClientTagKeepsBaseFile(t *testing.T) {
	files := renderSource(t, `
openapi: 3.0.0
paths:
  /sessions:
    post:
      operationId: createSession
      tags: [client]
      responses:
        '204': {description: created}
`, planner.GroupByTag)

	assert.Equal(t, []string{"client.go", "client2.go"}, fileNames(files))

	base := fileNamed(t, files, "client.go")
	assert.Contains(t, base, "func NewClient(")

	unit := fileNamed(t, files, "client2.go")
	assert.Contains(t, unit, "func (c *Client) CreateSession(")
}

func TestUnitFileBaseNames(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"pets", "pets"},
		{"Pet Store", "pet_store"},
		{"v1.2", "v1_2"},
		{"9lives", "u9lives"},
		{"***", "unit"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, fileBaseName(tc.in), "fileBaseName(%q)", tc.in)
	}
}

func TestRenderDeduplicatesStructFields(t *testing.T) {
	files := renderSource(t, `
openapi: 3.0.0
components:
  schemas:
    Pet:
      type: object
      properties:
        pet_id: {type: string}
        petId: {type: string}
`, planner.GroupSingle)

	src := fileNamed(t, files, "api.go")
	assert.Contains(t, src, "PetId ")
	assert.Contains(t, src, "PetId2 ")
	// Each field keeps its own wire name.
	assert.Contains(t, src, "`json:\"pet_id,omitempty\"`")
	assert.Contains(t, src, "`json:\"petId,omitempty\"`")

	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "api.go", src, parser.AllErrors)
	assert.NoError(t, err)
}

func TestRenderRejectsIncompleteIR(t *testing.T) {
	_, err := New(&planner.IR{}, "petstore", nil).Render()
	require.Error(t, err)
}
