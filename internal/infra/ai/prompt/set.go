// Package prompt holds the instruction templates and shapes of the four
// analysis producers. They are data: the orchestration code never builds
// prompt text itself, and templates can be replaced from files.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bryanwahyu/deepscan/internal/infra/ai/generator"
)

// Set is the full group of producer prompts.
type Set struct {
	DetectBugs           generator.Prompt
	ScanVulnerabilities  generator.Prompt
	SuggestOptimizations generator.Prompt
	SynthesizeReport     generator.Prompt
}

// Default returns the built-in prompts, compiled.
func Default() Set {
	s := Set{
		DetectBugs:           detectBugs(),
		ScanVulnerabilities:  scanVulnerabilities(),
		SuggestOptimizations: suggestOptimizations(),
		SynthesizeReport:     synthesizeReport(),
	}
	if err := s.compile(); err != nil {
		panic(err)
	}
	return s
}

// Load returns the default set with templates overridden by <dir>/<name>.tmpl
// files where present. An empty dir means no overrides.
func Load(dir string) (Set, error) {
	s := Set{
		DetectBugs:           detectBugs(),
		ScanVulnerabilities:  scanVulnerabilities(),
		SuggestOptimizations: suggestOptimizations(),
		SynthesizeReport:     synthesizeReport(),
	}
	if dir != "" {
		for _, p := range s.all() {
			data, err := os.ReadFile(filepath.Join(dir, p.Name+".tmpl"))
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return Set{}, fmt.Errorf("read template %s: %w", p.Name, err)
			}
			p.Template = string(data)
		}
	}
	if err := s.compile(); err != nil {
		return Set{}, err
	}
	return s, nil
}

// Names lists the prompt names in pipeline order.
func (s Set) Names() []string {
	names := make([]string, 0, 4)
	for _, p := range s.all() {
		names = append(names, p.Name)
	}
	return names
}

func (s *Set) all() []*generator.Prompt {
	return []*generator.Prompt{&s.DetectBugs, &s.ScanVulnerabilities, &s.SuggestOptimizations, &s.SynthesizeReport}
}

func (s *Set) compile() error {
	for _, p := range s.all() {
		compiled, err := p.Compile()
		if err != nil {
			return err
		}
		*p = compiled
	}
	return nil
}

func systemPrompt(role string) string {
	return "You are " + role + ". Respond with one valid JSON object only, no markdown and no commentary, " +
		"that conforms to the requested schema."
}
