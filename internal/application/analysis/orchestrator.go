// Package analysis runs the analysis pipeline: three independent producers
// fanned out concurrently, joined by a barrier, feeding the report
// synthesizer. The result is all-or-nothing.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domain "github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/prompt"
	"github.com/bryanwahyu/deepscan/internal/logging"
)

// Orchestrator is the single entry point of an analysis. It keeps no state
// between requests and is safe for concurrent use.
type Orchestrator struct {
	producers *Producers
	logger    *zap.Logger
}

func NewOrchestrator(producers *Producers, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{producers: producers, logger: logger}
}

// Analyze runs the pipeline for one submission. Any producer failure voids
// the whole result; the failure reason is logged and carried in the Outcome
// but callers should only present a generic failure.
func (o *Orchestrator) Analyze(ctx context.Context, code, language string) domain.Outcome {
	log := logging.FromContext(ctx, o.logger)

	if strings.TrimSpace(code) == "" {
		err := &domain.AnalysisError{Stage: domain.StageValidation, Err: domain.ErrEmptyCode}
		log.Warn("analysis rejected", zap.Error(err))
		return domain.Failure(err)
	}
	sub := domain.CodeSubmission{Code: code, Language: domain.NormalizeLanguage(language)}
	start := time.Now()

	var (
		bugs  domain.BugReport
		vulns domain.VulnerabilityReport
		opts  domain.OptimizationReport
	)

	// first stage: independent producers, no shared state, any order
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		r, err := o.producers.DetectBugs(egCtx, sub.Code)
		if err != nil {
			return &domain.AnalysisError{Stage: domain.StageFirst, Producer: prompt.NameDetectBugs, Err: err}
		}
		bugs = r
		return nil
	})
	eg.Go(func() error {
		r, err := o.producers.ScanVulnerabilities(egCtx, sub.Code)
		if err != nil {
			return &domain.AnalysisError{Stage: domain.StageFirst, Producer: prompt.NameScanVulnerabilities, Err: err}
		}
		vulns = r
		return nil
	})
	eg.Go(func() error {
		r, err := o.producers.SuggestOptimizations(egCtx, sub.Code, sub.Language)
		if err != nil {
			return &domain.AnalysisError{Stage: domain.StageFirst, Producer: prompt.NameSuggestOptimizations, Err: err}
		}
		opts = r
		return nil
	})
	if err := eg.Wait(); err != nil {
		o.logFailure(log, err)
		return domain.Failure(err)
	}
	log.Debug("first stage complete",
		zap.Int("bugs", len(bugs.Bugs)),
		zap.Int("vulnerabilities", len(vulns.Vulnerabilities)),
		zap.Duration("elapsed", time.Since(start)),
	)

	in, err := reportInput(sub.Code, bugs, vulns, opts)
	if err != nil {
		err = &domain.AnalysisError{Stage: domain.StageSynthesis, Producer: prompt.NameSynthesizeReport, Err: err}
		o.logFailure(log, err)
		return domain.Failure(err)
	}
	report, err := o.producers.SynthesizeReport(ctx, in)
	if err != nil {
		err = &domain.AnalysisError{Stage: domain.StageSynthesis, Producer: prompt.NameSynthesizeReport, Err: err}
		o.logFailure(log, err)
		return domain.Failure(err)
	}

	log.Info("analysis complete",
		zap.String("language", sub.Language),
		zap.Int("bugs", len(bugs.Bugs)),
		zap.Int("vulnerabilities", len(vulns.Vulnerabilities)),
		zap.Duration("duration", time.Since(start)),
	)
	return domain.Success(domain.AnalysisResult{
		Bugs:            bugs,
		Vulnerabilities: vulns,
		Optimizations:   opts,
		Report:          report,
	})
}

// AnalyzeCode is the caller-facing form of Analyze: nil signals failure.
func (o *Orchestrator) AnalyzeCode(ctx context.Context, code, language string) *domain.AnalysisResult {
	r, ok := o.Analyze(ctx, code, language).Result()
	if !ok {
		return nil
	}
	return &r
}

// Backend returns the name of the generation backend in use.
func (o *Orchestrator) Backend() string {
	return o.producers.gen.Backend().Name()
}

func (o *Orchestrator) logFailure(log *zap.Logger, err error) {
	fields := []zap.Field{zap.Error(err)}
	var aerr *domain.AnalysisError
	if errors.As(err, &aerr) {
		fields = append(fields, zap.String("stage", aerr.Stage), zap.String("producer", aerr.Producer))
	}
	log.Error("analysis failed", fields...)
}

// reportInput serializes the findings for the synthesizer. The encoding is
// indented JSON, which keeps every field and is stable for equal input.
func reportInput(code string, bugs domain.BugReport, vulns domain.VulnerabilityReport, opts domain.OptimizationReport) (prompt.ReportInput, error) {
	bugsText, err := EncodeFindings(bugs.Bugs)
	if err != nil {
		return prompt.ReportInput{}, fmt.Errorf("encode bugs: %w", err)
	}
	vulnsText, err := EncodeFindings(vulns.Vulnerabilities)
	if err != nil {
		return prompt.ReportInput{}, fmt.Errorf("encode vulnerabilities: %w", err)
	}
	return prompt.ReportInput{
		Code:                    code,
		Bugs:                    bugsText,
		Vulnerabilities:         vulnsText,
		OptimizationSuggestions: opts.Suggestions,
	}, nil
}

// EncodeFindings renders a finding list as 2-space indented JSON. A nil list
// encodes as [].
func EncodeFindings[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
