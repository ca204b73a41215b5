// Package ollama implements the generation backend on a local Ollama server.
// Requests use JSON mode; the schema itself is spelled out in the system
// prompt and the caller validates the answer.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/JexSrs/go-ollama"

	"github.com/bryanwahyu/deepscan/internal/domain/ai"
)

const (
	DefaultHost  = "http://localhost:11434"
	defaultModel = "llama3.1"
)

type Options struct {
	Host  string
	Model string
	// Temperature is sent when positive; zero keeps the model default.
	Temperature float32
}

type Client struct {
	client      *ollama.Ollama
	model       string
	temperature float32
}

func NewClient(opts Options) (*Client, error) {
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	ollamaURL, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	if ollamaURL.Scheme == "" || ollamaURL.Host == "" {
		return nil, fmt.Errorf("invalid ollama url %q", host)
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{client: ollama.New(*ollamaURL), model: model, temperature: opts.Temperature}, nil
}

func (c *Client) Name() string { return "ollama/" + c.model }

type result struct {
	text string
	err  error
}

// Generate blocks until Ollama answers or ctx is done. The underlying client
// takes no context, so a cancelled call returns early while the HTTP request
// finishes in the background.
func (c *Client) Generate(ctx context.Context, r ai.Request) (string, error) {
	system, err := systemWithSchema(r)
	if err != nil {
		return "", err
	}
	done := make(chan result, 1)
	go func() {
		gen := c.client.Generate
		if c.temperature > 0 {
			res, err := gen(gen.WithModel(c.model), gen.WithSystem(system), gen.WithPrompt(r.Prompt),
				gen.WithFormat("json"), gen.WithTemperature(float64(c.temperature)))
			if err != nil {
				done <- result{err: fmt.Errorf("ollama generate: %w", err)}
				return
			}
			done <- finished(res.Done, res.Response)
			return
		}
		res, err := gen(gen.WithModel(c.model), gen.WithSystem(system), gen.WithPrompt(r.Prompt),
			gen.WithFormat("json"))
		if err != nil {
			done <- result{err: fmt.Errorf("ollama generate: %w", err)}
			return
		}
		done <- finished(res.Done, res.Response)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		if res.text == "" {
			return "", ai.ErrEmptyResponse
		}
		return res.text, nil
	}
}

func finished(ok bool, text string) result {
	if !ok {
		return result{err: errors.New("ollama generate: response not finished")}
	}
	return result{text: strings.TrimSpace(text)}
}

func systemWithSchema(r ai.Request) (string, error) {
	b, err := json.MarshalIndent(r.Schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode schema: %w", err)
	}
	var sb strings.Builder
	if r.System != "" {
		sb.WriteString(r.System)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Respond with a single JSON object and nothing else. It must conform to this JSON schema:\n")
	sb.Write(b)
	return sb.String(), nil
}
