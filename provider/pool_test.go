package provider

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolDelegates(t *testing.T) {
	backend := Func(func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return systemPrompt + "|" + userPrompt, nil
	})
	p := NewPool(backend, 2, 0)

	out, err := p.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "sys|user" {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestPoolAppliesTimeout(t *testing.T) {
	backend := Func(func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			return "", errors.New("expected a deadline")
		}
		if time.Until(deadline) > time.Minute {
			return "", errors.New("deadline too far out")
		}
		return "ok", nil
	})
	p := NewPool(backend, 1, 30*time.Second)

	if _, err := p.Generate(context.Background(), "", ""); err != nil {
		t.Errorf("Generate failed: %v", err)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var current, peak int64
	release := make(chan struct{})

	backend := Func(func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		n := atomic.AddInt64(&current, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		<-release
		atomic.AddInt64(&current, -1)
		return "", nil
	})
	p := NewPool(backend, 2, 0)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Generate(context.Background(), "", "")
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt64(&peak); got > 2 {
		t.Errorf("Concurrency exceeded the bound: peak %d", got)
	}
}

func TestPoolRespectsCancelledContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	backend := Func(func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		<-release
		return "", nil
	})
	p := NewPool(backend, 1, 0)

	// Occupy the only slot.
	go func() {
		_, _ = p.Generate(context.Background(), "", "")
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Generate(ctx, "", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
