package ai

import (
	"context"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Request is one structured generation call.
type Request struct {
	// Name identifies the prompt, e.g. "detect_bugs".
	Name   string
	System string
	Prompt string
	// Schema is the output shape the backend is asked to produce.
	Schema jsonschema.Definition
}

// Backend is the external text-generation capability. It returns the raw
// model output; validation against Schema happens in the caller.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}
