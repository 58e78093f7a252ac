// Package forge orchestrates the full generation pipeline: load,
// resolve, build the type and operation models, name, plan, and
// render. Each phase fails fast; a later phase never runs against a
// model a prior phase rejected.
package forge

import (
	"os"
	"path/filepath"
	"time"

	"github.com/oasforge/oasforge/internal/issues"
	"github.com/oasforge/oasforge/loader"
	"github.com/oasforge/oasforge/namer"
	"github.com/oasforge/oasforge/opmodel"
	"github.com/oasforge/oasforge/planner"
	"github.com/oasforge/oasforge/render"
	"github.com/oasforge/oasforge/resolver"
	"github.com/oasforge/oasforge/typemodel"
)

// GenerateResult holds the outcome of a generation run.
type GenerateResult struct {
	// Files are the generated source files, in deterministic order.
	Files []render.File

	// Issues are the non-fatal diagnostics collected across all
	// phases, sorted by document path.
	Issues []issues.Issue

	// SchemaCount is the number of type nodes in the frozen arena.
	SchemaCount int

	// OperationCount is the number of top-level operations modeled.
	OperationCount int

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Generate runs the full pipeline with the given options.
func Generate(opts ...Option) (*GenerateResult, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	log := cfg.logger

	doc, baseDir, err := loadInput(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("document loaded", "source", doc.Source, "format", doc.Format, "bytes", doc.Size)

	table := loader.NewTable(doc, baseDir)
	res := resolver.New(table)
	res.SetSkipUnresolvedExternal(cfg.skipUnresolvedExternal)
	diags := issues.NewCollector()

	types := typemodel.NewBuilder(typemodel.NewArena(), res, diags)
	if err := types.BuildDocument(doc); err != nil {
		return nil, err
	}
	types.Arena().Freeze()
	log.Debug("type model built", "schemas", types.Arena().Len())

	model, err := opmodel.NewBuilder(types, res, diags).Build(doc)
	if err != nil {
		return nil, err
	}
	log.Debug("operation model built", "operations", len(model.Operations))

	symbols, err := namer.Assign(types.Arena(), model, namer.Config{ReservedWords: cfg.reservedWords})
	if err != nil {
		return nil, err
	}

	ir, err := planner.Plan(types.Arena(), model, symbols, cfg.policy)
	if err != nil {
		return nil, err
	}
	log.Debug("emission planned", "policy", cfg.policy, "units", len(ir.Units))

	files, err := render.New(ir, cfg.packageName, diags).Render()
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Files:          files,
		Issues:         diags.Sorted(),
		SchemaCount:    types.Arena().Len(),
		OperationCount: len(model.Operations),
		Duration:       time.Since(start),
	}
	log.Info("generation complete",
		"files", len(result.Files),
		"operations", result.OperationCount,
		"issues", len(result.Issues),
		"duration", result.Duration)
	return result, nil
}

func loadInput(cfg *config) (*loader.Document, string, error) {
	switch {
	case cfg.parsed != nil:
		baseDir := cfg.baseDir
		if baseDir == "" {
			baseDir = "."
		}
		return cfg.parsed, baseDir, nil
	case cfg.filePath != nil:
		doc, err := loader.ParseFile(*cfg.filePath)
		if err != nil {
			return nil, "", err
		}
		baseDir := cfg.baseDir
		if baseDir == "" {
			baseDir = filepath.Dir(*cfg.filePath)
		}
		return doc, baseDir, nil
	default:
		name := cfg.sourceName
		if name == "" {
			name = "input.yaml"
		}
		doc, err := loader.Parse(cfg.bytes, name)
		if err != nil {
			return nil, "", err
		}
		baseDir := cfg.baseDir
		if baseDir == "" {
			baseDir = "."
		}
		return doc, baseDir, nil
	}
}

// WriteFiles publishes the generated files into outputDir. Files are
// first written to a staging directory and moved into place only when
// every write succeeded, so a failed write never touches the
// destination. A fresh destination is published with a single
// directory rename. An existing destination is updated with one
// atomic rename per file; each file is replaced whole, but a rename
// failure partway through the publish can leave the directory with a
// mix of old and new files. When overwrite is false, an existing
// target file aborts the publish before anything is moved.
func (r *GenerateResult) WriteFiles(outputDir string, overwrite bool) error {
	parent := filepath.Dir(filepath.Clean(outputDir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}

	staging, err := os.MkdirTemp(parent, ".oasforge-staging-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	for _, file := range r.Files {
		if filepath.Base(file.Name) != file.Name {
			return &os.PathError{Op: "write", Path: file.Name, Err: os.ErrInvalid}
		}
		if err := os.WriteFile(filepath.Join(staging, file.Name), file.Content, 0o644); err != nil {
			return err
		}
	}

	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		// Fresh destination: publish the whole tree in one rename.
		return os.Rename(staging, outputDir)
	}

	if !overwrite {
		for _, file := range r.Files {
			if _, err := os.Stat(filepath.Join(outputDir, file.Name)); err == nil {
				return &os.PathError{Op: "write", Path: filepath.Join(outputDir, file.Name), Err: os.ErrExist}
			}
		}
	}
	for _, file := range r.Files {
		if err := os.Rename(filepath.Join(staging, file.Name), filepath.Join(outputDir, file.Name)); err != nil {
			return err
		}
	}
	return nil
}
