package prompt

import (
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/bryanwahyu/deepscan/internal/infra/ai/generator"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/schema"
)

const NameSuggestOptimizations = "suggest_optimizations"

const suggestOptimizationsTemplate = "Given the following code snippet and its language, suggest how to refactor and " +
	"optimize it to improve readability and performance. Follow the idioms and best practices of the language.\n\n" +
	"Language: {{.Language}}\n" +
	"Code:\n```\n{{.Code}}\n```\n\n" +
	"If third-party references (documentation, libraries, articles) informed the suggestions, list them in referencesUsed."

func suggestOptimizations() generator.Prompt {
	return generator.Prompt{
		Name:     NameSuggestOptimizations,
		System:   systemPrompt("an AI code optimization expert"),
		Template: suggestOptimizationsTemplate,
		InputSchema: schema.Object(map[string]jsonschema.Definition{
			"code":     schema.String("The code snippet to be optimized and refactored."),
			"language": schema.String("The programming language of the code snippet."),
		}, "code", "language"),
		OutputSchema: schema.Object(map[string]jsonschema.Definition{
			"suggestions":    schema.String("Suggestions for optimizing and refactoring the code."),
			"referencesUsed": schema.String("Optional. Third-party references used in the suggestions, if any."),
		}, "suggestions"),
	}
}
