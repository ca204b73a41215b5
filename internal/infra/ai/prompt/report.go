package prompt

import (
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/bryanwahyu/deepscan/internal/infra/ai/generator"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/schema"
)

const NameSynthesizeReport = "synthesize_report"

const synthesizeReportTemplate = `Write a comprehensive summary report of the code analysis findings below.
Summarize the bugs, the security vulnerabilities and the optimization suggestions, and order the work
so a developer knows what to fix first. Keep it easy to read.

Here is the code:
{{.Code}}

Here are the bugs found in the code:
{{.Bugs}}

Here are the security vulnerabilities found in the code:
{{.Vulnerabilities}}

Here are the suggestions for optimizing and refactoring the code:
{{.OptimizationSuggestions}}
`

func synthesizeReport() generator.Prompt {
	return generator.Prompt{
		Name:     NameSynthesizeReport,
		System:   systemPrompt("an expert in code analysis and security"),
		Template: synthesizeReportTemplate,
		InputSchema: schema.Object(map[string]jsonschema.Definition{
			"code":                    schema.String("The code that was analyzed."),
			"bugs":                    schema.String("The bugs found in the code, serialized."),
			"vulnerabilities":         schema.String("The security vulnerabilities found in the code, serialized."),
			"optimizationSuggestions": schema.String("Suggestions for optimizing and refactoring the code."),
		}, "code", "bugs", "vulnerabilities", "optimizationSuggestions"),
		OutputSchema: schema.Object(map[string]jsonschema.Definition{
			"report": schema.String("A comprehensive, prioritized summary report of the findings."),
		}, "report"),
	}
}
