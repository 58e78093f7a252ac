package forge

import (
	"github.com/oasforge/oasforge/generrors"
	"github.com/oasforge/oasforge/loader"
	"github.com/oasforge/oasforge/planner"
)

// Option is a function that configures a generation run.
type Option func(*config) error

// config holds configuration for a generation run.
type config struct {
	// Input source (exactly one must be set)
	filePath *string
	bytes    []byte
	parsed   *loader.Document

	sourceName  string
	baseDir     string
	packageName string
	policy      planner.GroupingPolicy

	reservedWords          []string
	skipUnresolvedExternal bool

	logger Logger
}

// GoReservedWords is the default reserved-word set, matching the Go
// language keywords the reference renderer targets.
var GoReservedWords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer",
	"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
	"interface", "map", "package", "range", "return", "select", "struct",
	"switch", "type", "var",
}

// applyOptions applies option functions and validates configuration.
func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		packageName:   "client",
		policy:        planner.GroupByTag,
		reservedWords: GoReservedWords,
		logger:        NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	sources := 0
	if cfg.filePath != nil {
		sources++
	}
	if cfg.bytes != nil {
		sources++
	}
	if cfg.parsed != nil {
		sources++
	}
	switch sources {
	case 0:
		return nil, &generrors.ConfigError{
			Message: "must specify an input source (use WithFilePath, WithBytes, or WithParsed)",
		}
	case 1:
	default:
		return nil, &generrors.ConfigError{
			Message: "must specify exactly one input source",
		}
	}
	return cfg, nil
}

// WithFilePath reads the source document from a file. External
// references resolve relative to the file's directory.
func WithFilePath(path string) Option {
	return func(cfg *config) error {
		cfg.filePath = &path
		return nil
	}
}

// WithBytes uses in-memory document text as the input source.
func WithBytes(data []byte) Option {
	return func(cfg *config) error {
		cfg.bytes = data
		return nil
	}
}

// WithParsed uses an already loaded document as the input source,
// skipping the parse step.
func WithParsed(doc *loader.Document) Option {
	return func(cfg *config) error {
		cfg.parsed = doc
		return nil
	}
}

// WithSourceName overrides the source name recorded for in-memory
// input. Defaults to "input.yaml".
func WithSourceName(name string) Option {
	return func(cfg *config) error {
		cfg.sourceName = name
		return nil
	}
}

// WithBaseDir sets the directory external file references resolve
// against. Defaults to the input file's directory, or the working
// directory for in-memory input.
func WithBaseDir(dir string) Option {
	return func(cfg *config) error {
		cfg.baseDir = dir
		return nil
	}
}

// WithPackageName sets the generated package name. Defaults to
// "client".
func WithPackageName(name string) Option {
	return func(cfg *config) error {
		if name == "" {
			return &generrors.ConfigError{Message: "package name must not be empty"}
		}
		cfg.packageName = name
		return nil
	}
}

// WithGroupingPolicy selects how declarations are grouped into output
// files. Defaults to grouping by tag.
func WithGroupingPolicy(policy planner.GroupingPolicy) Option {
	return func(cfg *config) error {
		cfg.policy = policy
		return nil
	}
}

// WithReservedWords replaces the reserved-word set the namer avoids.
// Defaults to GoReservedWords.
func WithReservedWords(words []string) Option {
	return func(cfg *config) error {
		cfg.reservedWords = words
		return nil
	}
}

// WithSkipUnresolvedExternal downgrades unresolvable external file
// references from fatal errors to warnings; the referenced schema is
// modeled as unconstrained.
func WithSkipUnresolvedExternal(enabled bool) Option {
	return func(cfg *config) error {
		cfg.skipUnresolvedExternal = enabled
		return nil
	}
}

// WithLogger sets the logger for the run. Defaults to NopLogger.
func WithLogger(l Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			l = NopLogger{}
		}
		cfg.logger = l
		return nil
	}
}
