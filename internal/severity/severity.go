// Package severity provides severity level constants for diagnostics
// reported by the modeling and generation packages.
//
// The severity levels are ordered from least to most severe:
// Info < Warning < Error < Critical
package severity

// Severity indicates the severity level of a diagnostic reported while
// resolving, modeling, or generating from a specification.
type Severity int

const (
	// SeverityError indicates a spec violation that makes the document invalid.
	SeverityError Severity = iota

	// SeverityWarning indicates permissive fallbacks or recommendations
	// that don't prevent processing but should be addressed.
	SeverityWarning

	// SeverityInfo indicates informational messages about processing choices.
	// These are non-actionable notices that may be useful for debugging.
	SeverityInfo

	// SeverityCritical indicates features that cannot be processed without data loss.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}
