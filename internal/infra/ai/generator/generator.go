// Package generator wraps a single call to a generation backend with a
// declared input shape, a declared output shape and an instruction template.
// The backend is untrusted: its output is validated against the output shape
// before anything is decoded, and a response that does not conform is a
// failure, never an empty result. There are no retries at this layer.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/bryanwahyu/deepscan/internal/domain/ai"
	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/schema"
)

// Prompt is a named instruction template with its input and output shapes.
type Prompt struct {
	Name         string
	System       string
	Template     string
	InputSchema  jsonschema.Definition
	OutputSchema jsonschema.Definition

	tmpl *template.Template
}

// Compile parses the template. Placeholders use text/template syntax against
// the input value's exported fields, e.g. {{.Code}}; unknown fields are errors.
func (p Prompt) Compile() (Prompt, error) {
	t, err := template.New(p.Name).Option("missingkey=error").Parse(p.Template)
	if err != nil {
		return p, fmt.Errorf("parse template %s: %w", p.Name, err)
	}
	p.tmpl = t
	return p, nil
}

// Render substitutes each placeholder with the matching field of input.
func (p Prompt) Render(input any) (string, error) {
	if p.tmpl == nil {
		var err error
		if p, err = p.Compile(); err != nil {
			return "", err
		}
	}
	var b strings.Builder
	if err := p.tmpl.Execute(&b, input); err != nil {
		return "", fmt.Errorf("render template %s: %w", p.Name, err)
	}
	return b.String(), nil
}

// Generator issues structured generation calls against one backend.
type Generator struct {
	backend ai.Backend
	timeout time.Duration
	logger  *zap.Logger
}

type Option func(*Generator)

// WithTimeout bounds every generation call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func New(backend ai.Backend, opts ...Option) *Generator {
	g := &Generator{backend: backend, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Backend returns the underlying generation backend.
func (g *Generator) Backend() ai.Backend { return g.backend }

// Generate renders p with input, invokes the backend once and decodes the
// validated response into out. Failures are *analysis.GenerationError.
func (g *Generator) Generate(ctx context.Context, p Prompt, input, out any) error {
	if err := schema.Value(p.InputSchema, input); err != nil {
		return &analysis.GenerationError{Prompt: p.Name, Kind: analysis.KindSchema, Err: fmt.Errorf("input: %w", err)}
	}
	text, err := p.Render(input)
	if err != nil {
		return &analysis.GenerationError{Prompt: p.Name, Kind: analysis.KindGeneration, Err: err}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := g.backend.Generate(ctx, ai.Request{
		Name:   p.Name,
		System: p.System,
		Prompt: text,
		Schema: p.OutputSchema,
	})
	g.logger.Debug("generation call finished",
		zap.String("prompt", p.Name),
		zap.String("backend", g.backend.Name()),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return &analysis.GenerationError{Prompt: p.Name, Kind: analysis.KindGeneration, Err: err}
	}

	content := StripFences(raw)
	if content == "" {
		return &analysis.GenerationError{Prompt: p.Name, Kind: analysis.KindSchema, Err: ai.ErrEmptyResponse}
	}
	if err := schema.Decode(p.OutputSchema, []byte(content), out); err != nil {
		var verr *schema.ValidationError
		if !errors.As(err, &verr) {
			err = fmt.Errorf("decode output: %w", err)
		}
		return &analysis.GenerationError{Prompt: p.Name, Kind: analysis.KindSchema, Err: err}
	}
	return nil
}

// Run is the typed form of Generate.
func Run[In, Out any](ctx context.Context, g *Generator, p Prompt, in In) (Out, error) {
	var out Out
	if err := g.Generate(ctx, p, in, &out); err != nil {
		var zero Out
		return zero, err
	}
	return out, nil
}

// StripFences removes a surrounding markdown code fence that some models
// wrap JSON in.
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return strings.Trim(content, "`")
	}
	body := lines[1:]
	last := strings.TrimSpace(body[len(body)-1])
	if last == "```" {
		body = body[:len(body)-1]
	} else {
		// closing fence glued to the payload
		body[len(body)-1] = strings.TrimSuffix(last, "```")
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}
