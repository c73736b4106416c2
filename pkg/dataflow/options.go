package dataflow

import (
	"time"
)

// Option configures the behavior of pipeline stages.
type Option func(*config)

type config struct {
	workers    int
	maxRetries int
	backoff    func(int) time.Duration
	// retryable limits retries to matching errors; nil retries every error.
	retryable  func(error) bool
	bufferSize int
	// errorHandler returns true when the failed item may be skipped.
	errorHandler func(error) bool
}

func newConfig(opts []Option) *config {
	cfg := &config{workers: 1}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

func (c *config) shouldRetry(err error) bool {
	return c.retryable == nil || c.retryable(err)
}

func (c *config) handled(err error) bool {
	return c.errorHandler != nil && c.errorHandler(err)
}

// WithWorkers sets the number of concurrent workers for a stage.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithBufferSize sets the buffer size for the output channel of a stage.
func WithBufferSize(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.bufferSize = n
		}
	}
}

// WithRetry retries a failed item up to maxRetries times, waiting backoff(attempt)
// before each retry.
func WithRetry(maxRetries int, backoff func(attempt int) time.Duration) Option {
	return func(c *config) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// WithRetryIf restricts WithRetry to errors for which pred returns true.
// Other errors fail the item on the first attempt.
func WithRetryIf(pred func(error) bool) Option {
	return func(c *config) {
		c.retryable = pred
	}
}

// WithErrorHandler sets a handler for items that still fail after retries.
// Returning true skips the item; returning false fails the pipeline.
func WithErrorHandler(h func(error) bool) Option {
	return func(c *config) {
		c.errorHandler = h
	}
}
