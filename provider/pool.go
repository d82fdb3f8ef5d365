package provider

import (
	"context"
	"time"
)

// Pool wraps a Backend with bounded concurrency and a per-call timeout so a
// slow or unreachable model API cannot block request threads indefinitely.
type Pool struct {
	backend   Backend
	semaphore chan struct{}
	timeout   time.Duration
}

// NewPool creates a pool around the given backend. maxConcurrency <= 0
// defaults to 10; timeout <= 0 means calls are bounded only by the caller's
// context.
func NewPool(backend Backend, maxConcurrency int, timeout time.Duration) *Pool {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &Pool{
		backend:   backend,
		semaphore: make(chan struct{}, maxConcurrency),
		timeout:   timeout,
	}
}

// Generate acquires a slot and delegates to the wrapped backend with the
// configured timeout applied.
func (p *Pool) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	select {
	case p.semaphore <- struct{}{}:
		defer func() { <-p.semaphore }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	return p.backend.Generate(ctx, systemPrompt, userPrompt)
}
