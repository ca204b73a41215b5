package prompt

// BugInput is the input value of the bug detector.
type BugInput struct {
	Code string `json:"code"`
}

// VulnerabilityInput is the input value of the vulnerability scanner.
type VulnerabilityInput struct {
	Code string `json:"code"`
}

// OptimizationInput is the input value of the optimization advisor.
type OptimizationInput struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// ReportInput is the input value of the report synthesizer. Bugs and
// Vulnerabilities are already serialized findings.
type ReportInput struct {
	Code                    string `json:"code"`
	Bugs                    string `json:"bugs"`
	Vulnerabilities         string `json:"vulnerabilities"`
	OptimizationSuggestions string `json:"optimizationSuggestions"`
}
