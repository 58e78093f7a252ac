// Package render is the reference renderer: it turns the planner's IR
// into Go client source. One file is produced per emission unit plus a
// base client file. The renderer consumes only the IR contract; it
// never reads the source document.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/internal/issues"
	"github.com/oasforge/oasforge/internal/severity"
	"github.com/oasforge/oasforge/planner"
)

// File is one generated source file.
type File struct {
	// Name is the file name, without any directory component.
	Name string

	// Content is the formatted source.
	Content []byte
}

// Renderer renders a planned IR into Go source files.
type Renderer struct {
	ir    *planner.IR
	pkg   string
	diags *issues.Collector
}

// New creates a Renderer for the given IR. The package name must be a
// valid Go package identifier; diags may be nil.
func New(ir *planner.IR, packageName string, diags *issues.Collector) *Renderer {
	return &Renderer{ir: ir, pkg: packageName, diags: diags}
}

// Render produces the base client file followed by one file per
// emission unit, in the IR's unit order.
func (r *Renderer) Render() ([]File, error) {
	if r.ir == nil || r.ir.Arena == nil || r.ir.Symbols == nil {
		return nil, &generrors.EmissionError{
			Unit:    "render",
			Message: "renderer requires a complete IR",
		}
	}

	files := make([]File, 0, len(r.ir.Units)+1)

	var base bytes.Buffer
	r.writeHeader(&base)
	writeClientStruct(&base)
	writeClientConstructor(&base)
	writeClientOptions(&base)
	writeClientHelpers(&base)
	files = append(files, r.finish("client.go", &base))

	names := r.unitFileNames()
	for i := range r.ir.Units {
		unit := &r.ir.Units[i]
		var buf bytes.Buffer
		r.writeHeader(&buf)
		for _, decl := range unit.Types {
			if err := r.writeTypeDecl(&buf, decl); err != nil {
				return nil, err
			}
		}
		for _, decl := range unit.Operations {
			if err := r.writeOperationMethod(&buf, decl); err != nil {
				return nil, err
			}
		}
		files = append(files, r.finish(names[i], &buf))
	}

	return files, nil
}

// unitFileNames assigns each unit a distinct source file name.
// "client" is reserved for the base client file, and a unit whose
// sanitized name is already taken gets a positional suffix, so the
// file set is collision free and stable across runs.
func (r *Renderer) unitFileNames() []string {
	taken := map[string]bool{"client": true}
	names := make([]string, len(r.ir.Units))
	for i := range r.ir.Units {
		base := fileBaseName(r.ir.Units[i].Name)
		name := base
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s%d", base, n)
		}
		taken[name] = true
		names[i] = name + ".go"
	}
	return names
}

// fileBaseName sanitizes a unit name into a lowercase identifier safe
// to use as a file name. Tags are arbitrary strings, so anything
// outside [a-z0-9_] is folded away.
func fileBaseName(name string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteRune(c)
		case c == '-' || c == ' ' || c == '.':
			b.WriteByte('_')
		}
	}
	s := strings.Trim(b.String(), "_")
	if s == "" {
		return "unit"
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "u" + s
	}
	return s
}

// writeHeader writes the package clause and a generous import block.
// Formatting prunes the imports each file does not use.
func (r *Renderer) writeHeader(buf *bytes.Buffer) {
	buf.WriteString("// Code generated by oasforge. DO NOT EDIT.\n\n")
	fmt.Fprintf(buf, "package %s\n\n", r.pkg)
	buf.WriteString("import (\n")
	buf.WriteString("\t\"bytes\"\n")
	buf.WriteString("\t\"context\"\n")
	buf.WriteString("\t\"encoding/json\"\n")
	buf.WriteString("\t\"fmt\"\n")
	buf.WriteString("\t\"io\"\n")
	buf.WriteString("\t\"net/http\"\n")
	buf.WriteString("\t\"net/url\"\n")
	buf.WriteString("\t\"strings\"\n")
	buf.WriteString(")\n\n")
}

// finish formats a buffer into a File. A formatting failure is
// recorded as a warning and the unformatted source is kept, so a
// template regression never loses output.
func (r *Renderer) finish(name string, buf *bytes.Buffer) File {
	formatted, err := imports.Process(name, buf.Bytes(), nil)
	if err != nil {
		r.diags.Addf(severity.SeverityWarning, name, "failed to format generated code: %v", err)
		formatted = buf.Bytes()
	}
	return File{Name: name, Content: formatted}
}
