// Package issues provides a unified diagnostic type for problems and
// notices gathered while modeling and generating from a specification.
package issues

import (
	"fmt"
	"sort"

	"github.com/oasforge/oasforge/internal/severity"
)

// Issue represents a single diagnostic found during modeling or generation.
type Issue struct {
	// Path is the JSON pointer to the relevant node (e.g., "/paths/~1pets/get")
	Path string
	// Message is a human-readable description of the issue
	Message string
	// Severity indicates the severity level of the issue
	Severity severity.Severity
	// Field is the specific field name that has the issue (optional)
	Field string
	// Value is the problematic value (optional)
	Value any
}

// String returns a formatted string representation of the issue.
// Uses different symbols based on severity level:
// - "✗" for Error or Critical severity
// - "⚠" for Warning severity
// - "ℹ" for Info severity
func (i Issue) String() string {
	var symbol string
	switch i.Severity {
	case severity.SeverityError, severity.SeverityCritical:
		symbol = "✗"
	case severity.SeverityWarning:
		symbol = "⚠"
	default:
		symbol = "ℹ"
	}

	msg := symbol + " "
	if i.Path != "" {
		msg += i.Path
		if i.Field != "" {
			msg += "." + i.Field
		}
		msg += ": "
	}
	msg += i.Message
	if i.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", i.Value)
	}
	return msg
}

// Collector accumulates issues during a single pipeline run.
// It is threaded explicitly through the phases rather than being a
// process-wide singleton, keeping the pipeline re-entrant.
//
// The zero value is not usable; construct with NewCollector.
type Collector struct {
	issues []Issue
}

// NewCollector returns an empty issue collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends an issue to the collector. A nil collector discards issues,
// so phases can report unconditionally.
func (c *Collector) Add(issue Issue) {
	if c == nil {
		return
	}
	c.issues = append(c.issues, issue)
}

// Addf appends an issue with a formatted message.
func (c *Collector) Addf(sev severity.Severity, path, format string, args ...any) {
	c.Add(Issue{
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	})
}

// Issues returns the accumulated issues in insertion order.
func (c *Collector) Issues() []Issue {
	if c == nil {
		return nil
	}
	return c.issues
}

// Count returns the number of issues with the given severity.
func (c *Collector) Count(sev severity.Severity) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, i := range c.issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// Sorted returns a copy of the issues ordered by path, then message.
// Useful for stable presentation; the insertion order is preserved
// in Issues for callers that need declaration order.
func (c *Collector) Sorted() []Issue {
	if c == nil {
		return nil
	}
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Path != out[b].Path {
			return out[a].Path < out[b].Path
		}
		return out[a].Message < out[b].Message
	})
	return out
}
