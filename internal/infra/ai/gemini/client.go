// Package gemini implements the generation backend on the Google Gen AI SDK
// with a response schema.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
	"google.golang.org/genai"

	"github.com/bryanwahyu/deepscan/internal/domain/ai"
)

const defaultModel = "gemini-2.0-flash"

type Options struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	HTTPClient  *http.Client
}

type Client struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		client:      client,
		model:       model,
		maxTokens:   int32(opts.MaxTokens),
		temperature: opts.Temperature,
	}, nil
}

func (c *Client) Name() string { return "gemini/" + c.model }

func (c *Client) Generate(ctx context.Context, r ai.Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ToSchema(r.Schema),
		Temperature:      genai.Ptr(c.temperature),
	}
	if r.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(r.System, genai.RoleUser)
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(r.Prompt), cfg)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

// ToSchema converts the structural schema into the SDK's OpenAPI subset.
// Properties are ordered required-first so the model emits them in a stable
// order.
func ToSchema(def jsonschema.Definition) *genai.Schema {
	s := &genai.Schema{
		Type:        toType(def.Type),
		Description: def.Description,
		Enum:        def.Enum,
		Required:    def.Required,
	}
	if def.Items != nil {
		s.Items = ToSchema(*def.Items)
	}
	if len(def.Properties) > 0 {
		s.Properties = make(map[string]*genai.Schema, len(def.Properties))
		for name, p := range def.Properties {
			s.Properties[name] = ToSchema(p)
		}
		s.PropertyOrdering = propertyOrder(def)
	}
	return s
}

func propertyOrder(def jsonschema.Definition) []string {
	order := make([]string, 0, len(def.Properties))
	seen := make(map[string]bool, len(def.Properties))
	for _, name := range def.Required {
		if _, ok := def.Properties[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range def.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func toType(t jsonschema.DataType) genai.Type {
	switch t {
	case jsonschema.Object:
		return genai.TypeObject
	case jsonschema.Array:
		return genai.TypeArray
	case jsonschema.Number:
		return genai.TypeNumber
	case jsonschema.Integer:
		return genai.TypeInteger
	case jsonschema.Boolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func isQuota(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == "RESOURCE_EXHAUSTED"
	}
	return strings.Contains(err.Error(), "RESOURCE_EXHAUSTED")
}
