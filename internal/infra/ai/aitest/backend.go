// Package aitest provides an in-memory ai.Backend for tests.
package aitest

import (
	"context"
	"fmt"
	"sync"

	"github.com/bryanwahyu/deepscan/internal/domain/ai"
)

// Reply is the canned answer for one prompt name.
type Reply struct {
	Content string
	Err     error
	// Hook runs before the reply is returned, e.g. to block until ctx is done.
	Hook func(ctx context.Context, req ai.Request) error
}

// Backend answers each request from Replies keyed by ai.Request.Name and
// counts calls per name. It is safe for concurrent use.
type Backend struct {
	Replies map[string]Reply

	mu       sync.Mutex
	calls    map[string]int
	requests []ai.Request
}

func NewBackend(replies map[string]Reply) *Backend {
	return &Backend{Replies: replies, calls: map[string]int{}}
}

func (b *Backend) Name() string { return "fake" }

func (b *Backend) Generate(ctx context.Context, req ai.Request) (string, error) {
	b.mu.Lock()
	b.calls[req.Name]++
	b.requests = append(b.requests, req)
	b.mu.Unlock()

	r, ok := b.Replies[req.Name]
	if !ok {
		return "", fmt.Errorf("no reply for prompt %q", req.Name)
	}
	if r.Hook != nil {
		if err := r.Hook(ctx, req); err != nil {
			return "", err
		}
	}
	return r.Content, r.Err
}

// Calls returns how often the prompt name was requested.
func (b *Backend) Calls(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

// TotalCalls returns the number of requests across all prompts.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// Request returns the last request seen for name.
func (b *Backend) Request(name string) (ai.Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].Name == name {
			return b.requests[i], true
		}
	}
	return ai.Request{}, false
}

// BlockUntilDone is a Hook that waits for cancellation.
func BlockUntilDone(ctx context.Context, _ ai.Request) error {
	<-ctx.Done()
	return ctx.Err()
}
