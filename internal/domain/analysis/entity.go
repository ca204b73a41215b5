package analysis

// CodeSubmission is one request: the snippet plus its declared language.
type CodeSubmission struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// BugFinding value object
type BugFinding struct {
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Severity    Severity `json:"severity"`
	Suggestion  string   `json:"suggestion"`
}

// BugReport keeps the producer's emission order.
type BugReport struct {
	Bugs []BugFinding `json:"bugs"`
}

type VulnerabilityReport struct {
	Vulnerabilities []string `json:"vulnerabilities"`
	Recommendations string   `json:"recommendations"`
}

type OptimizationReport struct {
	Suggestions    string `json:"suggestions"`
	ReferencesUsed string `json:"referencesUsed,omitempty"`
}

// SynthesizedReport only exists once the three first-stage reports do.
type SynthesizedReport struct {
	Report string `json:"report"`
}

// AnalysisResult aggregate. It is either complete or not returned at all.
type AnalysisResult struct {
	Bugs            BugReport           `json:"bugs"`
	Vulnerabilities VulnerabilityReport `json:"vulnerabilities"`
	Optimizations   OptimizationReport  `json:"optimizations"`
	Report          SynthesizedReport   `json:"report"`
}

// Normalize replaces nil sequences with empty ones so an empty finding list
// encodes as [] and never as null.
func (r *AnalysisResult) Normalize() {
	if r.Bugs.Bugs == nil {
		r.Bugs.Bugs = []BugFinding{}
	}
	if r.Vulnerabilities.Vulnerabilities == nil {
		r.Vulnerabilities.Vulnerabilities = []string{}
	}
}

// SeverityCounts value object
type SeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Other  int `json:"other"`
	Total  int `json:"total"`
}

// CountSeverities tallies bug findings per severity bucket.
func CountSeverities(bugs []BugFinding) SeverityCounts {
	var c SeverityCounts
	for _, b := range bugs {
		switch b.Severity.Level() {
		case SeverityHigh:
			c.High++
		case SeverityMedium:
			c.Medium++
		case SeverityLow:
			c.Low++
		default:
			c.Other++
		}
		c.Total++
	}
	return c
}
