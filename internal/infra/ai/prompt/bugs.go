package prompt

import (
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/bryanwahyu/deepscan/internal/infra/ai/generator"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/schema"
)

const NameDetectBugs = "detect_bugs"

const detectBugsTemplate = "Analyze the following code for bugs, including defects that have security impact. " +
	"For every bug give a detailed description, its location in the code (function name, line or expression), " +
	"its severity (High, Medium or Low) and a concrete suggestion on how to fix it.\n\n" +
	"Code:\n```\n{{.Code}}\n```\n\n" +
	"Return the bugs as JSON. If there are no bugs, return an empty bugs list."

func detectBugs() generator.Prompt {
	return generator.Prompt{
		Name:     NameDetectBugs,
		System:   systemPrompt("an AI code analyzer that detects bugs in source code"),
		Template: detectBugsTemplate,
		InputSchema: schema.Object(map[string]jsonschema.Definition{
			"code": schema.String("The code to analyze for bugs."),
		}, "code"),
		OutputSchema: schema.Object(map[string]jsonschema.Definition{
			"bugs": schema.ArrayOf(schema.Object(map[string]jsonschema.Definition{
				"description": schema.String("Description of the bug."),
				"location":    schema.String("The location of the bug in the code."),
				"severity":    schema.String("The severity of the bug: High, Medium or Low."),
				"suggestion":  schema.String("Suggestion on how to fix the bug."),
			}, "description", "location", "severity", "suggestion"), "List of bugs found in the code."),
		}, "bugs"),
	}
}
