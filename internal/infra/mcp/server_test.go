package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/domain/analyst"
)

type stubAnalyzer struct {
	err      error
	tenant   string
	language string
}

func (s *stubAnalyzer) Analyze(_ context.Context, tenant, code, language string) (*analyst.Analysis, error) {
	s.tenant, s.language = tenant, language
	if s.err != nil {
		return nil, s.err
	}
	return &analyst.Analysis{Result: analysis.AnalysisResult{
		Bugs:            analysis.BugReport{Bugs: []analysis.BugFinding{}},
		Vulnerabilities: analysis.VulnerabilityReport{Vulnerabilities: []string{}, Recommendations: "ok"},
		Optimizations:   analysis.OptimizationReport{Suggestions: "none"},
		Report:          analysis.SynthesizedReport{Report: "clean: " + code},
	}}, nil
}

func callRequest(args map[string]any) mcplib.CallToolRequest {
	var req mcplib.CallToolRequest
	req.Params.Name = "deepscan_analyze"
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewServer_Tools(t *testing.T) {
	s := NewServer(&stubAnalyzer{}, "test")
	tools := s.ListTools()
	assert.Contains(t, tools, "deepscan_analyze")
	assert.Contains(t, tools, "deepscan_languages")
	assert.Len(t, tools, 2)
}

func TestHandleAnalyze(t *testing.T) {
	stub := &stubAnalyzer{}
	res, err := handleAnalyze(stub)(context.Background(), callRequest(map[string]any{"code": "x = 1"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, LocalTenant, stub.tenant)
	assert.Equal(t, analysis.DefaultLanguage, stub.language)

	var out analysis.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, "clean: x = 1", out.Report.Report)
}

func TestHandleAnalyze_Errors(t *testing.T) {
	res, err := handleAnalyze(&stubAnalyzer{})(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = handleAnalyze(&stubAnalyzer{err: &analysis.AnalysisError{Stage: analysis.StageValidation, Err: analysis.ErrEmptyCode}})(
		context.Background(), callRequest(map[string]any{"code": " "}))
	require.NoError(t, err)
	assert.Equal(t, "code is required", text(t, res))

	res, err = handleAnalyze(&stubAnalyzer{err: errors.New("quota: 429 from upstream")})(
		context.Background(), callRequest(map[string]any{"code": "x", "language": "go"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "analysis failed, try again", text(t, res))
}

func TestHandleLanguages(t *testing.T) {
	res, err := handleLanguages(context.Background(), mcplib.CallToolRequest{})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"default": "javascript"`)
}
