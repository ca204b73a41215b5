package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bryanwahyu/deepscan/internal/config"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/aitest"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/prompt"
)

func TestBuild_WithInjectedBackend(t *testing.T) {
	backend := aitest.NewBackend(map[string]aitest.Reply{
		prompt.NameDetectBugs:           {Content: `{"bugs":[]}`},
		prompt.NameScanVulnerabilities:  {Content: `{"vulnerabilities":[],"recommendations":"none"}`},
		prompt.NameSuggestOptimizations: {Content: `{"suggestions":"none"}`},
		prompt.NameSynthesizeReport:     {Content: `{"report":"all good"}`},
	})
	cfg := config.Default()
	cfg.Server.RateLimit = 0

	app, err := Build(context.Background(), cfg, zaptest.NewLogger(t), Options{Backend: backend})
	require.NoError(t, err)
	defer app.Close()
	assert.Equal(t, "fake", app.Orchestrator.Backend())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := httptest.NewServer(app.Handler(ctx))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/acme/analyze", "application/json", strings.NewReader(`{"code":"let a = 1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBuild_PromptOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, prompt.NameDetectBugs+".tmpl"), []byte("Find bugs in {{.Code}}"), 0o600))
	cfg := config.Default()
	cfg.AI.PromptsDir = dir

	app, err := Build(context.Background(), cfg, nil, Options{Backend: aitest.NewBackend(nil), NoArchive: true})
	require.NoError(t, err)
	assert.NotNil(t, app.Service)
}

func TestBuild_MissingKey(t *testing.T) {
	cfg := config.Default()
	cfg.AI.APIKey = ""
	_, err := Build(context.Background(), cfg, nil, Options{})
	assert.Error(t, err)
}
