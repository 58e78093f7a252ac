package issues

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oasforge/oasforge/internal/severity"
)

func TestIssueString(t *testing.T) {
	tests := []struct {
		name     string
		issue    Issue
		contains []string
	}{
		{
			name: "error with path and field",
			issue: Issue{
				Path:     "/components/schemas/Pet",
				Field:    "properties",
				Message:  "duplicate property",
				Severity: severity.SeverityError,
			},
			contains: []string{"✗", "/components/schemas/Pet.properties", "duplicate property"},
		},
		{
			name: "warning without path",
			issue: Issue{
				Message:  "anyOf without discriminator modeled as open union",
				Severity: severity.SeverityWarning,
			},
			contains: []string{"⚠", "open union"},
		},
		{
			name: "info with value",
			issue: Issue{
				Path:     "/paths/~1pets/get",
				Message:  "parameter has no schema, defaulting to string",
				Severity: severity.SeverityInfo,
				Value:    "limit",
			},
			contains: []string{"ℹ", "(value: limit)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.issue.String()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("String() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Addf(severity.SeverityWarning, "/b", "second")
	c.Addf(severity.SeverityInfo, "/a", "first")
	c.Addf(severity.SeverityWarning, "/a", "another")

	assert.Len(t, c.Issues(), 3)
	assert.Equal(t, 2, c.Count(severity.SeverityWarning))
	assert.Equal(t, 1, c.Count(severity.SeverityInfo))
	assert.Equal(t, 0, c.Count(severity.SeverityError))

	// Insertion order preserved.
	assert.Equal(t, "/b", c.Issues()[0].Path)

	// Sorted orders by path then message.
	sorted := c.Sorted()
	assert.Equal(t, "/a", sorted[0].Path)
	assert.Equal(t, "another", sorted[0].Message)
	assert.Equal(t, "first", sorted[1].Message)
	assert.Equal(t, "/b", sorted[2].Path)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.Add(Issue{Message: "dropped"})
	assert.Nil(t, c.Issues())
	assert.Equal(t, 0, c.Count(severity.SeverityError))
	assert.Nil(t, c.Sorted())
}
