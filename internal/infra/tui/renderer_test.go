package tui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/infra/tui"
)

func sampleResult() analysis.AnalysisResult {
	return analysis.AnalysisResult{
		Bugs: analysis.BugReport{Bugs: []analysis.BugFinding{
			{Description: "Division by zero", Location: "line 4", Severity: analysis.SeverityHigh, Suggestion: "Guard b == 0"},
			{Description: "Shadowed name", Location: "line 2", Severity: "Cosmetic", Suggestion: "Rename"},
		}},
		Vulnerabilities: analysis.VulnerabilityReport{Vulnerabilities: []string{"SQL injection"}, Recommendations: "Use placeholders."},
		Optimizations:   analysis.OptimizationReport{Suggestions: "Cache the query.", ReferencesUsed: "Effective Go"},
		Report:          analysis.SynthesizedReport{Report: "# Summary\n\nFix the injection first."},
	}
}

func TestRenderResult(t *testing.T) {
	out, err := tui.RenderResult(sampleResult(), tui.Options{})
	require.NoError(t, err)

	assert.Contains(t, out, "Division by zero")
	assert.Contains(t, out, "[High]")
	assert.Contains(t, out, "[Cosmetic]", "unknown severities are shown verbatim")
	assert.Contains(t, out, "SQL injection")
	assert.Contains(t, out, "Use placeholders.")
	assert.Contains(t, out, "References")
	assert.Contains(t, out, "Effective Go")
	assert.Contains(t, out, "Fix the injection first.")
	assert.NotContains(t, out, "No bugs found")
}

func TestRenderResult_EmptyStates(t *testing.T) {
	r := sampleResult()
	r.Bugs.Bugs = nil
	r.Vulnerabilities.Vulnerabilities = []string{}
	r.Optimizations.ReferencesUsed = ""

	out, err := tui.RenderResult(r, tui.Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "No bugs found")
	assert.Contains(t, out, "No security vulnerabilities found")
	assert.NotContains(t, out, "References")
}

func TestRenderResult_Markdown(t *testing.T) {
	out, err := tui.RenderResult(sampleResult(), tui.Options{Markdown: true, Style: "notty", Width: 60})
	require.NoError(t, err)
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Fix the injection first.")
}

func TestSeverityBadge(t *testing.T) {
	assert.Contains(t, tui.SeverityBadge(analysis.SeverityLow), "Low")
	assert.Contains(t, tui.SeverityBadge(""), "Unknown")
}
