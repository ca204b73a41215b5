// Package mcp exposes the analysis pipeline as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/domain/analyst"
)

// LocalTenant is the tenant analyses run under when invoked over MCP.
const LocalTenant = "local"

// Analyzer is the use-case the tools call; *ai.Service implements it.
type Analyzer interface {
	Analyze(ctx context.Context, tenant, code, language string) (*analyst.Analysis, error)
}

// NewServer creates an MCP server with the deepscan tools registered.
func NewServer(svc Analyzer, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"deepscan",
		version,
		server.WithToolCapabilities(true),
	)
	registerTools(s, svc)
	return s
}

func registerTools(s *server.MCPServer, svc Analyzer) {
	s.AddTool(
		mcplib.NewTool("deepscan_analyze",
			mcplib.WithDescription("Analyze a code snippet for bugs, security vulnerabilities and optimizations, and return a synthesized report as JSON"),
			mcplib.WithString("code",
				mcplib.Required(),
				mcplib.Description("The source code to analyze"),
			),
			mcplib.WithString("language",
				mcplib.Description("Programming language of the code (defaults to javascript)"),
			),
		),
		handleAnalyze(svc),
	)

	s.AddTool(
		mcplib.NewTool("deepscan_languages",
			mcplib.WithDescription("Lists the languages the optimization advice is tuned for"),
		),
		handleLanguages,
	)
}

func handleAnalyze(svc Analyzer) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		language := request.GetString("language", analysis.DefaultLanguage)

		a, err := svc.Analyze(ctx, LocalTenant, code, language)
		if errors.Is(err, analysis.ErrEmptyCode) {
			return errorResult("code is required"), nil
		}
		if err != nil {
			return errorResult("analysis failed, try again"), nil
		}
		return jsonResult(a.Result)
	}
}

func handleLanguages(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return jsonResult(map[string]any{
		"default":   analysis.DefaultLanguage,
		"supported": analysis.SupportedLanguages,
	})
}

func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
