package analysis

import (
	"context"

	domain "github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/generator"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/prompt"
)

// Producers are the four analysis producers, each one structured generation
// call built on the same generator.
type Producers struct {
	gen     *generator.Generator
	prompts prompt.Set
}

func NewProducers(gen *generator.Generator, prompts prompt.Set) *Producers {
	return &Producers{gen: gen, prompts: prompts}
}

// DetectBugs returns the bug report. An empty list means no findings.
// Severities are normalised onto High/Medium/Low where they can be.
func (p *Producers) DetectBugs(ctx context.Context, code string) (domain.BugReport, error) {
	out, err := generator.Run[prompt.BugInput, domain.BugReport](ctx, p.gen, p.prompts.DetectBugs, prompt.BugInput{Code: code})
	if err != nil {
		return domain.BugReport{}, err
	}
	if out.Bugs == nil {
		out.Bugs = []domain.BugFinding{}
	}
	for i := range out.Bugs {
		out.Bugs[i].Severity = domain.NormalizeSeverity(string(out.Bugs[i].Severity))
	}
	return out, nil
}

// ScanVulnerabilities returns the vulnerability report. An empty list means
// no issues were found.
func (p *Producers) ScanVulnerabilities(ctx context.Context, code string) (domain.VulnerabilityReport, error) {
	out, err := generator.Run[prompt.VulnerabilityInput, domain.VulnerabilityReport](ctx, p.gen, p.prompts.ScanVulnerabilities, prompt.VulnerabilityInput{Code: code})
	if err != nil {
		return domain.VulnerabilityReport{}, err
	}
	if out.Vulnerabilities == nil {
		out.Vulnerabilities = []string{}
	}
	return out, nil
}

// SuggestOptimizations returns language-tailored suggestions. ReferencesUsed
// stays empty when the generator does not supply it.
func (p *Producers) SuggestOptimizations(ctx context.Context, code, language string) (domain.OptimizationReport, error) {
	return generator.Run[prompt.OptimizationInput, domain.OptimizationReport](ctx, p.gen, p.prompts.SuggestOptimizations,
		prompt.OptimizationInput{Code: code, Language: language})
}

// SynthesizeReport joins the three first-stage reports into one narrative.
func (p *Producers) SynthesizeReport(ctx context.Context, in prompt.ReportInput) (domain.SynthesizedReport, error) {
	return generator.Run[prompt.ReportInput, domain.SynthesizedReport](ctx, p.gen, p.prompts.SynthesizeReport, in)
}

// Prompts exposes the prompt set the producers were built with.
func (p *Producers) Prompts() prompt.Set { return p.prompts }
