package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/deepscan/internal/cli"
	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/aitest"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/prompt"
)

func fakeBackend() *aitest.Backend {
	return aitest.NewBackend(map[string]aitest.Reply{
		prompt.NameDetectBugs:           {Content: `{"bugs":[{"description":"off by one","location":"loop","severity":"high","suggestion":"use <"}]}`},
		prompt.NameScanVulnerabilities:  {Content: `{"vulnerabilities":["eval of input"],"recommendations":"avoid eval"}`},
		prompt.NameSuggestOptimizations: {Content: `{"suggestions":"cache the length"}`},
		prompt.NameSynthesizeReport:     {Content: `{"report":"# Summary\nTwo issues."}`},
	})
}

func writeSource(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func noConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.yaml")
}

func TestHelpCommands(t *testing.T) {
	for _, args := range [][]string{
		{"--help"},
		{"analyze", "--help"},
		{"serve", "--help"},
		{"mcp", "--help"},
		{"mcp", "serve", "--help"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			cmd := cli.NewRootCmdForTest()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetArgs(args)
			assert.NoError(t, cmd.Execute())
		})
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "deepscan dev")
}

func TestLanguagesCommand(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"languages"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "javascript\n")
	assert.Contains(t, buf.String(), "python\n")
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	backend := fakeBackend()
	cmd := cli.NewRootCmdWithBackend(backend)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"analyze", writeSource(t, "app.py", "print(eval(input()))"), "--json", "--config", noConfig(t)})
	require.NoError(t, cmd.Execute())

	var got analysis.AnalysisResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Bugs.Bugs, 1)
	assert.Equal(t, analysis.SeverityHigh, got.Bugs.Bugs[0].Severity)
	assert.Equal(t, "avoid eval", got.Vulnerabilities.Recommendations)
	assert.Equal(t, "cache the length", got.Optimizations.Suggestions)

	req, ok := backend.Request(prompt.NameSuggestOptimizations)
	require.True(t, ok)
	assert.Contains(t, req.Prompt, "python")
}

func TestAnalyzeCommand_Stdin(t *testing.T) {
	cmd := cli.NewRootCmdWithBackend(fakeBackend())
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("var x = 1"))
	cmd.SetArgs([]string{"analyze", "-", "--markdown=false", "--config", noConfig(t)})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "off by one")
	assert.Contains(t, buf.String(), "eval of input")
}

func TestAnalyzeCommand_EmptyInput(t *testing.T) {
	backend := fakeBackend()
	cmd := cli.NewRootCmdWithBackend(backend)
	cmd.SetIn(strings.NewReader("   \n"))
	cmd.SetArgs([]string{"analyze", "--config", noConfig(t)})
	err := cmd.Execute()
	assert.ErrorIs(t, err, analysis.ErrEmptyCode)
	assert.Zero(t, backend.TotalCalls())
}

func TestAnalyzeCommand_Failure(t *testing.T) {
	backend := fakeBackend()
	backend.Replies[prompt.NameSynthesizeReport] = aitest.Reply{Err: errors.New("boom")}
	cmd := cli.NewRootCmdWithBackend(backend)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"analyze", writeSource(t, "a.js", "let a"), "--json", "--config", noConfig(t)})
	err := cmd.Execute()
	assert.ErrorIs(t, err, cli.ErrAnalysisFailed)
	assert.Empty(t, buf.String())
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	cmd := cli.NewRootCmdWithBackend(fakeBackend())
	cmd.SetArgs([]string{"analyze", filepath.Join(t.TempDir(), "nope.js"), "--config", noConfig(t)})
	assert.Error(t, cmd.Execute())
}
