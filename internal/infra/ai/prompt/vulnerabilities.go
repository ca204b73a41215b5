package prompt

import (
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/bryanwahyu/deepscan/internal/infra/ai/generator"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/schema"
)

const NameScanVulnerabilities = "scan_vulnerabilities"

const scanVulnerabilitiesTemplate = "Analyze the following code for security vulnerabilities such as SQL injection, " +
	"cross-site scripting (XSS), buffer overflows, command injection, insecure deserialization, hardcoded secrets " +
	"and any other common vulnerability class. List each vulnerability found as one short sentence, and give " +
	"separate recommendations for fixing them.\n\n" +
	"Code:\n```\n{{.Code}}\n```\n\n" +
	"If no vulnerabilities are found, return an empty vulnerabilities list and say so in the recommendations."

func scanVulnerabilities() generator.Prompt {
	return generator.Prompt{
		Name:     NameScanVulnerabilities,
		System:   systemPrompt("a security expert tasked with identifying security vulnerabilities in code"),
		Template: scanVulnerabilitiesTemplate,
		InputSchema: schema.Object(map[string]jsonschema.Definition{
			"code": schema.String("The code to be scanned for vulnerabilities."),
		}, "code"),
		OutputSchema: schema.Object(map[string]jsonschema.Definition{
			"vulnerabilities": schema.ArrayOf(schema.String("One vulnerability."), "A list of security vulnerabilities found in the code."),
			"recommendations": schema.String("Recommendations for fixing the identified vulnerabilities."),
		}, "vulnerabilities", "recommendations"),
	}
}
