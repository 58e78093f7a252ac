package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oasforge/oasforge/generrors"
)

const (
	// MaxCachedDocuments is the default maximum number of external documents to load.
	// This prevents memory exhaustion from documents with many external references.
	MaxCachedDocuments = 100

	// MaxFileSize is the default maximum size (in bytes) allowed for external
	// reference files. 10MB is sufficient for most OpenAPI documents.
	MaxFileSize = 10 * 1024 * 1024
)

// Table holds the root document plus every external document reachable
// from it. Documents are loaded lazily and cached by cleaned path.
// External paths are confined to the root document's base directory;
// traversal outside it is rejected.
type Table struct {
	root         *Document
	baseDir      string
	maxFileSize  int64
	maxDocuments int
	docs         map[string]*Document
}

// NewTable creates a document table rooted at doc. Relative external
// references resolve against baseDir.
func NewTable(doc *Document, baseDir string) *Table {
	return &Table{
		root:         doc,
		baseDir:      baseDir,
		maxFileSize:  MaxFileSize,
		maxDocuments: MaxCachedDocuments,
		docs:         map[string]*Document{},
	}
}

// SetLimits overrides the default file size and document count limits.
// Zero values keep the defaults.
func (t *Table) SetLimits(maxFileSize int64, maxDocuments int) {
	if maxFileSize > 0 {
		t.maxFileSize = maxFileSize
	}
	if maxDocuments > 0 {
		t.maxDocuments = maxDocuments
	}
}

// Root returns the root document.
func (t *Table) Root() *Document {
	return t.root
}

// Load returns the external document at the given path, relative to the
// table's base directory, loading and caching it on first use.
func (t *Table) Load(refPath string) (*Document, error) {
	full := refPath
	if !filepath.IsAbs(full) {
		full = filepath.Clean(filepath.Join(t.baseDir, refPath))
	}

	if err := t.checkWithinBase(full, refPath); err != nil {
		return nil, err
	}

	if doc, ok := t.docs[full]; ok {
		return doc, nil
	}

	if len(t.docs) >= t.maxDocuments {
		return nil, &generrors.ReferenceError{
			Ref:     refPath,
			RefType: "file",
			Message: fmt.Sprintf("too many external documents (limit %d)", t.maxDocuments),
		}
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, &generrors.ReferenceError{
			Ref:     refPath,
			RefType: "file",
			Message: "external document cannot be loaded",
			Cause:   err,
		}
	}
	if info.Size() > t.maxFileSize {
		return nil, &generrors.ReferenceError{
			Ref:     refPath,
			RefType: "file",
			Message: fmt.Sprintf("external document exceeds size limit (%d > %d bytes)", info.Size(), t.maxFileSize),
		}
	}

	doc, err := ParseFile(full)
	if err != nil {
		return nil, &generrors.ReferenceError{
			Ref:     refPath,
			RefType: "file",
			Message: "external document cannot be parsed",
			Cause:   err,
		}
	}

	t.docs[full] = doc
	return doc, nil
}

// checkWithinBase rejects paths that escape the base directory.
// filepath.Rel handles all the platform edge cases, including different
// volumes on Windows where it returns an error.
func (t *Table) checkWithinBase(full, refPath string) error {
	absBase, err := filepath.Abs(t.baseDir)
	if err != nil {
		return &generrors.ReferenceError{
			Ref: refPath, RefType: "file",
			Message: "failed to resolve base directory", Cause: err,
		}
	}
	absPath, err := filepath.Abs(full)
	if err != nil {
		return &generrors.ReferenceError{
			Ref: refPath, RefType: "file",
			Message: "failed to resolve file path", Cause: err,
		}
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &generrors.ReferenceError{
			Ref:             refPath,
			RefType:         "file",
			IsPathTraversal: true,
			Message:         "reference escapes the specification directory",
		}
	}
	return nil
}
