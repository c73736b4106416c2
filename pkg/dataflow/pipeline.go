// Package dataflow runs small concurrent pipelines: a source, worker-pool
// stages with retry, and a blocking sink. The first unhandled error cancels the
// whole pipeline and is reported by the sink.
package dataflow

import (
	"context"
	"sync"
	"time"
)

// Pipeline carries the context and the first error shared by all stages.
type Pipeline struct {
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	err    error
}

// New starts a pipeline bound to ctx.
func New(ctx context.Context) *Pipeline {
	ctx, cancel := context.WithCancel(ctx)
	return &Pipeline{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the pipeline fails or the parent is done.
func (p *Pipeline) Context() context.Context {
	return p.ctx
}

func (p *Pipeline) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
		p.cancel()
	}
}

// Err returns the first stage error, or the context error.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	return p.ctx.Err()
}

// Stop releases the pipeline context. Call it once the sink has returned.
func (p *Pipeline) Stop() {
	p.cancel()
}

// Stream is a read-only channel of messages.
type Stream[T any] <-chan T

// From creates a stream from a slice of data.
func From[T any](p *Pipeline, items ...T) Stream[T] {
	out := make(chan T, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case <-p.ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}

// Map transforms the stream with fn on cfg.workers goroutines. Output order is
// not preserved when more than one worker runs.
func Map[In, Out any](p *Pipeline, input Stream[In], fn func(context.Context, In) (Out, error), opts ...Option) Stream[Out] {
	cfg := newConfig(opts)
	out := make(chan Out, cfg.bufferSize)

	var wg sync.WaitGroup
	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go func() {
			defer wg.Done()
			for msg := range receive(p, input) {
				var res Out
				err := attempt(p.ctx, cfg, func() error {
					var err error
					res, err = fn(p.ctx, msg)
					return err
				})
				if err != nil {
					if cfg.handled(err) {
						continue
					}
					p.fail(err)
					return
				}
				select {
				case <-p.ctx.Done():
					return
				case out <- res:
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// ForEach executes fn for every item and blocks until the stream is drained
// or the pipeline fails.
func ForEach[T any](p *Pipeline, input Stream[T], fn func(context.Context, T) error, opts ...Option) error {
	cfg := newConfig(opts)

	var wg sync.WaitGroup
	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go func() {
			defer wg.Done()
			for msg := range receive(p, input) {
				err := attempt(p.ctx, cfg, func() error { return fn(p.ctx, msg) })
				if err != nil && !cfg.handled(err) {
					p.fail(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	return p.Err()
}

// Collect drains the stream into a slice.
func Collect[T any](p *Pipeline, input Stream[T]) ([]T, error) {
	var out []T
	for msg := range receive(p, input) {
		out = append(out, msg)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// receive forwards input until it closes or the pipeline is cancelled.
func receive[T any](p *Pipeline, input Stream[T]) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			select {
			case <-p.ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}
				select {
				case <-p.ctx.Done():
					return
				case out <- msg:
				}
			}
		}
	}()
	return out
}

// attempt runs fn once plus up to cfg.maxRetries retries.
func attempt(ctx context.Context, cfg *config, fn func() error) error {
	err := fn()
	for i := 1; err != nil && i <= cfg.maxRetries && cfg.shouldRetry(err); i++ {
		if cfg.backoff != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.backoff(i)):
			}
		}
		err = fn()
	}
	return err
}
