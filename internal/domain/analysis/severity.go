package analysis

import "strings"

// Severity is free text from the generator. The canonical levels are High,
// Medium and Low; anything else is kept verbatim and displayed in a fallback
// bucket.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"

	// SeverityOther is the display bucket for values outside the canonical set.
	SeverityOther Severity = "Other"
)

var severityAliases = map[string]Severity{
	"high":          SeverityHigh,
	"critical":      SeverityHigh,
	"severe":        SeverityHigh,
	"blocker":       SeverityHigh,
	"medium":        SeverityMedium,
	"moderate":      SeverityMedium,
	"warning":       SeverityMedium,
	"low":           SeverityLow,
	"minor":         SeverityLow,
	"info":          SeverityLow,
	"informational": SeverityLow,
	"trivial":       SeverityLow,
}

// NormalizeSeverity maps case variants and common synonyms onto the canonical
// levels. Unrecognised values are returned trimmed but otherwise unchanged.
func NormalizeSeverity(raw string) Severity {
	s := strings.TrimSpace(raw)
	if canon, ok := severityAliases[strings.ToLower(s)]; ok {
		return canon
	}
	return Severity(s)
}

// Level returns the display bucket: one of the canonical levels or SeverityOther.
func (s Severity) Level() Severity {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return s
	}
	if canon, ok := severityAliases[strings.ToLower(strings.TrimSpace(string(s)))]; ok {
		return canon
	}
	return SeverityOther
}

// Canonical reports whether s is exactly High, Medium or Low.
func (s Severity) Canonical() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}
