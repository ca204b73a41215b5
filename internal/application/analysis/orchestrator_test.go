package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/bryanwahyu/deepscan/internal/application/analysis"
	"github.com/bryanwahyu/deepscan/internal/domain/ai"
	domain "github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/aitest"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/generator"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/prompt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sampleCode = "function add(a,b){ return a+b }"

func happyReplies() map[string]aitest.Reply {
	return map[string]aitest.Reply{
		prompt.NameDetectBugs: {Content: `{"bugs":[
			{"description":"No type checks on arguments","location":"add(a,b)","severity":"medium","suggestion":"Validate that a and b are numbers"},
			{"description":"Implicit string concatenation","location":"return a+b","severity":"Critical","suggestion":"Coerce with Number()"}
		]}`},
		prompt.NameScanVulnerabilities:  {Content: `{"vulnerabilities":[],"recommendations":"No issues found."}`},
		prompt.NameSuggestOptimizations: {Content: `{"suggestions":"Use an arrow function: const add = (a, b) => a + b;"}`},
		prompt.NameSynthesizeReport:     {Content: `{"report":"Two bugs (type checks, string concatenation), no vulnerabilities; consider an arrow function."}`},
	}
}

func newOrchestrator(t *testing.T, backend *aitest.Backend) *analysis.Orchestrator {
	t.Helper()
	producers := analysis.NewProducers(generator.New(backend), prompt.Default())
	return analysis.NewOrchestrator(producers, zaptest.NewLogger(t))
}

func TestAnalyze_Success(t *testing.T) {
	backend := aitest.NewBackend(happyReplies())
	o := newOrchestrator(t, backend)

	out := o.Analyze(context.Background(), sampleCode, "javascript")
	require.True(t, out.OK())
	require.NoError(t, out.Err())

	res, ok := out.Result()
	require.True(t, ok)
	require.Len(t, res.Bugs.Bugs, 2)
	assert.Equal(t, domain.SeverityMedium, res.Bugs.Bugs[0].Severity)
	assert.Equal(t, domain.SeverityHigh, res.Bugs.Bugs[1].Severity, "synonyms are coerced at the boundary")
	assert.NotNil(t, res.Vulnerabilities.Vulnerabilities)
	assert.Empty(t, res.Vulnerabilities.Vulnerabilities)
	assert.NotEmpty(t, res.Optimizations.Suggestions)
	assert.Empty(t, res.Optimizations.ReferencesUsed)
	assert.Contains(t, res.Report.Report, "arrow function")

	for _, name := range prompt.Default().Names() {
		assert.Equal(t, 1, backend.Calls(name), name)
	}
}

func TestAnalyze_ResultShape(t *testing.T) {
	backend := aitest.NewBackend(happyReplies())
	o := newOrchestrator(t, backend)

	for i := 0; i < 3; i++ {
		res := o.AnalyzeCode(context.Background(), sampleCode, "javascript")
		require.NotNil(t, res)

		raw, err := json.Marshal(res)
		require.NoError(t, err)
		var top map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &top))
		assert.Len(t, top, 4)
		for _, key := range []string{"bugs", "vulnerabilities", "optimizations", "report"} {
			assert.Contains(t, top, key)
		}

		var bugs struct {
			Bugs []map[string]any `json:"bugs"`
		}
		require.NoError(t, json.Unmarshal(top["bugs"], &bugs))
		for _, b := range bugs.Bugs {
			assert.Len(t, b, 4)
			for _, v := range b {
				assert.IsType(t, "", v)
			}
		}
		assert.JSONEq(t, `{"vulnerabilities":[],"recommendations":"No issues found."}`, string(top["vulnerabilities"]))
	}
}

func TestAnalyze_EmptyFindingsAreNotFailures(t *testing.T) {
	replies := happyReplies()
	replies[prompt.NameDetectBugs] = aitest.Reply{Content: `{"bugs":[]}`}
	backend := aitest.NewBackend(replies)

	res := newOrchestrator(t, backend).AnalyzeCode(context.Background(), "const x = 1;", "javascript")
	require.NotNil(t, res)
	assert.Empty(t, res.Bugs.Bugs)
	assert.Empty(t, res.Vulnerabilities.Vulnerabilities)

	req, ok := backend.Request(prompt.NameSynthesizeReport)
	require.True(t, ok)
	assert.Contains(t, req.Prompt, "Here are the bugs found in the code:\n[]")
}

func TestAnalyze_EmptyCodeMakesNoCalls(t *testing.T) {
	for _, code := range []string{"", "   \n\t"} {
		backend := aitest.NewBackend(happyReplies())
		out := newOrchestrator(t, backend).Analyze(context.Background(), code, "javascript")

		assert.False(t, out.OK())
		assert.ErrorIs(t, out.Err(), domain.ErrEmptyCode)
		assert.ErrorIs(t, out.Err(), domain.ErrAnalysisFailed)
		assert.Zero(t, backend.TotalCalls())
	}
}

func TestAnalyze_FirstStageFailureSkipsSynthesis(t *testing.T) {
	for _, failing := range []string{prompt.NameDetectBugs, prompt.NameScanVulnerabilities, prompt.NameSuggestOptimizations} {
		t.Run(failing, func(t *testing.T) {
			replies := happyReplies()
			replies[failing] = aitest.Reply{Err: errors.New("backend unavailable")}
			backend := aitest.NewBackend(replies)

			out := newOrchestrator(t, backend).Analyze(context.Background(), sampleCode, "javascript")
			require.False(t, out.OK())
			assert.ErrorIs(t, out.Err(), domain.ErrAnalysisFailed)
			assert.ErrorIs(t, out.Err(), domain.ErrGeneration)

			var aerr *domain.AnalysisError
			require.ErrorAs(t, out.Err(), &aerr)
			assert.Equal(t, domain.StageFirst, aerr.Stage)
			assert.Equal(t, failing, aerr.Producer)

			assert.Zero(t, backend.Calls(prompt.NameSynthesizeReport))
			_, ok := out.Result()
			assert.False(t, ok)
		})
	}
}

func TestAnalyze_VulnerabilityOutputMissingRecommendations(t *testing.T) {
	replies := happyReplies()
	replies[prompt.NameScanVulnerabilities] = aitest.Reply{Content: `{"vulnerabilities":["XSS via innerHTML"]}`}
	backend := aitest.NewBackend(replies)

	res := newOrchestrator(t, backend).AnalyzeCode(context.Background(), sampleCode, "javascript")
	assert.Nil(t, res)
	assert.Zero(t, backend.Calls(prompt.NameSynthesizeReport))
}

func TestAnalyze_SchemaFailureIsReported(t *testing.T) {
	replies := happyReplies()
	replies[prompt.NameDetectBugs] = aitest.Reply{Content: `{"bugs":[{"description":"x","location":"y","severity":3,"suggestion":"z"}]}`}
	backend := aitest.NewBackend(replies)

	out := newOrchestrator(t, backend).Analyze(context.Background(), sampleCode, "javascript")
	require.False(t, out.OK())
	assert.ErrorIs(t, out.Err(), domain.ErrSchemaValidation)
}

func TestAnalyze_SynthesisFailure(t *testing.T) {
	replies := happyReplies()
	replies[prompt.NameSynthesizeReport] = aitest.Reply{Err: ai.ErrQuotaExceeded}
	backend := aitest.NewBackend(replies)

	out := newOrchestrator(t, backend).Analyze(context.Background(), sampleCode, "javascript")
	require.False(t, out.OK())
	assert.ErrorIs(t, out.Err(), ai.ErrQuotaExceeded)

	var aerr *domain.AnalysisError
	require.ErrorAs(t, out.Err(), &aerr)
	assert.Equal(t, domain.StageSynthesis, aerr.Stage)
	assert.Equal(t, 1, backend.Calls(prompt.NameSynthesizeReport))
}

func TestAnalyze_FailureCancelsSiblings(t *testing.T) {
	replies := happyReplies()
	replies[prompt.NameDetectBugs] = aitest.Reply{Err: errors.New("boom")}
	replies[prompt.NameScanVulnerabilities] = aitest.Reply{Hook: aitest.BlockUntilDone}
	replies[prompt.NameSuggestOptimizations] = aitest.Reply{Hook: aitest.BlockUntilDone}
	backend := aitest.NewBackend(replies)

	out := newOrchestrator(t, backend).Analyze(context.Background(), sampleCode, "javascript")
	require.False(t, out.OK())

	var aerr *domain.AnalysisError
	require.ErrorAs(t, out.Err(), &aerr)
	assert.Equal(t, prompt.NameDetectBugs, aerr.Producer)
}

func TestAnalyze_CallerCancellation(t *testing.T) {
	replies := happyReplies()
	replies[prompt.NameDetectBugs] = aitest.Reply{Hook: aitest.BlockUntilDone}
	backend := aitest.NewBackend(replies)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := newOrchestrator(t, backend).Analyze(ctx, sampleCode, "javascript")
	require.False(t, out.OK())
	assert.ErrorIs(t, out.Err(), context.Canceled)
	assert.Zero(t, backend.Calls(prompt.NameSynthesizeReport))
}

func TestAnalyze_LanguageAndSerialization(t *testing.T) {
	replies := happyReplies()
	replies[prompt.NameScanVulnerabilities] = aitest.Reply{Content: `{"vulnerabilities":["SQL injection in query"],"recommendations":"Use prepared statements."}`}
	backend := aitest.NewBackend(replies)

	res := newOrchestrator(t, backend).AnalyzeCode(context.Background(), "q = 'SELECT ' + id", "")
	require.NotNil(t, res)

	opt, ok := backend.Request(prompt.NameSuggestOptimizations)
	require.True(t, ok)
	assert.Contains(t, opt.Prompt, "Language: "+domain.DefaultLanguage)

	rep, ok := backend.Request(prompt.NameSynthesizeReport)
	require.True(t, ok)
	assert.Contains(t, rep.Prompt, "[\n  \"SQL injection in query\"\n]")
	assert.Contains(t, rep.Prompt, `"severity": "Medium"`)
	assert.Contains(t, rep.Prompt, "Use an arrow function")
	assert.False(t, strings.Contains(rep.Prompt, "Use prepared statements."), "only the findings list is forwarded")
}

func TestEncodeFindings(t *testing.T) {
	s, err := analysis.EncodeFindings[string](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	s, err = analysis.EncodeFindings([]domain.BugFinding{{Description: "d", Location: "l", Severity: "High", Suggestion: "s"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"description":"d","location":"l","severity":"High","suggestion":"s"}]`, s)
	assert.Contains(t, s, "\n  {")
}
