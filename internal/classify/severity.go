package classify

import "strings"

// Severity is the normalized alert urgency.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ClassifySeverity maps a free-form severity string to critical, warning or info.
// Input is lowercased but not trimmed, so padded values fall through to info.
func ClassifySeverity(raw string) Severity {
	switch strings.ToLower(raw) {
	case "high", "critical", "severe":
		return SeverityCritical
	case "medium", "warn", "warning":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Rank orders severities for sorting: critical=3, warning=2, info=1, anything else 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}
