package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasforge/oasforge/generrors"
)

const petstore = `
openapi: 3.0.0
info:
  title: Petstore
  version: 1.0.0
components:
  schemas:
    Pet:
      type: object
      properties:
        name: {type: string}
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: {$ref: '#/components/schemas/Pet'}
`

func writeSpec(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return exitCode(err), stdout.String(), stderr.String()
}

func TestVersionCommand(t *testing.T) {
	code, out, _ := runCommand(t, "version")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "oasforge v")
}

func TestGenWritesFiles(t *testing.T) {
	spec := writeSpec(t, petstore)
	out := filepath.Join(t.TempDir(), "gen")

	code, stdout, _ := runCommand(t, "gen", spec, "--out", out, "--package", "petstore")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "Generated")

	data, err := os.ReadFile(filepath.Join(out, "client.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package petstore")
}

func TestGenLogLevelFromEnvironment(t *testing.T) {
	t.Setenv("OASFORGE_LOG_LEVEL", "debug")
	spec := writeSpec(t, petstore)
	out := filepath.Join(t.TempDir(), "gen")

	code, _, stderr := runCommand(t, "gen", spec, "--out", out)
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stderr, "document loaded")
}

func TestGenDefaultLogLevelHidesDebug(t *testing.T) {
	t.Setenv("OASFORGE_LOG_LEVEL", "info")
	spec := writeSpec(t, petstore)
	out := filepath.Join(t.TempDir(), "gen")

	code, _, stderr := runCommand(t, "gen", spec, "--out", out)
	require.Equal(t, ExitOK, code)
	assert.NotContains(t, stderr, "document loaded")
	assert.Contains(t, stderr, "generation complete")
}

func TestGenSingleGrouping(t *testing.T) {
	spec := writeSpec(t, petstore)
	out := filepath.Join(t.TempDir(), "gen")

	code, _, _ := runCommand(t, "gen", spec, "--out", out, "--group", "single")
	require.Equal(t, ExitOK, code)

	_, err := os.Stat(filepath.Join(out, "api.go"))
	assert.NoError(t, err)
}

func TestGenInvalidGrouping(t *testing.T) {
	spec := writeSpec(t, petstore)
	code, _, _ := runCommand(t, "gen", spec, "--group", "bogus")
	assert.Equal(t, ExitUsage, code)
}

func TestGenParseFailureExitCode(t *testing.T) {
	spec := writeSpec(t, "{not yaml: [")
	out := filepath.Join(t.TempDir(), "gen")
	code, _, _ := runCommand(t, "gen", spec, "--out", out)
	assert.Equal(t, ExitParse, code)
}

func TestGenModelFailureExitCode(t *testing.T) {
	spec := writeSpec(t, `
openapi: 3.0.0
paths:
  /pets:
    get:
      responses: {}
`)
	out := filepath.Join(t.TempDir(), "gen")
	code, _, _ := runCommand(t, "gen", spec, "--out", out)
	assert.Equal(t, ExitModel, code)
}

func TestGenRefusesOverwrite(t *testing.T) {
	spec := writeSpec(t, petstore)
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "client.go"), []byte("existing"), 0o644))

	code, _, _ := runCommand(t, "gen", spec, "--out", out)
	assert.Equal(t, ExitOutput, code)

	code, _, _ = runCommand(t, "gen", spec, "--out", out, "--overwrite")
	assert.Equal(t, ExitOK, code)
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"parse", &generrors.ParseError{Message: "bad"}, ExitParse},
		{"validation", &generrors.ValidationError{Message: "bad"}, ExitModel},
		{"reference", &generrors.ReferenceError{Message: "bad"}, ExitModel},
		{"naming", &generrors.NamingError{Message: "bad"}, ExitModel},
		{"emission", &generrors.EmissionError{Message: "bad"}, ExitModel},
		{"output", &exitError{code: ExitOutput, err: errors.New("disk full")}, ExitOutput},
		{"unknown", errors.New("other"), ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gen", cfg.OutputDir)
	assert.Equal(t, "client", cfg.PackageName)
	assert.Equal(t, "tag", cfg.Grouping)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OASFORGE_PACKAGE", "petsdk")
	t.Setenv("OASFORGE_GROUPING", "single")
	t.Setenv("OASFORGE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "petsdk", cfg.PackageName)
	assert.Equal(t, "single", cfg.Grouping)
	assert.Equal(t, "debug", cfg.LogLevel)
}
