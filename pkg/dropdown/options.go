package dropdown

import "github.com/rs/zerolog"

// Defaults for the placement caps. Rows are zero-based, row 0 is the header.
const (
	DefaultInlineLimit    = 10
	DefaultMaxRows        = 1000
	DefaultMaxCascadeRows = 100
)

// Option configures a Placer.
type Option func(*config)

type config struct {
	inlineLimit    int
	maxRows        int
	maxCascadeRows int
	messages       Messages
	logger         zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		inlineLimit:    DefaultInlineLimit,
		maxRows:        DefaultMaxRows,
		maxCascadeRows: DefaultMaxCascadeRows,
		messages:       DefaultMessages(),
		logger:         zerolog.Nop(),
	}
}

// WithInlineLimit sets the largest option count that is still written inline
// into the validation formula.
func WithInlineLimit(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.inlineLimit = n
		}
	}
}

// WithMaxRows sets the last data row receiving single-level validations.
func WithMaxRows(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxRows = n
		}
	}
}

// WithMaxCascadeRows sets the last data row receiving a second-level validation.
// Each of these rows gets its own rule.
func WithMaxCascadeRows(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxCascadeRows = n
		}
	}
}

// WithMessages overrides the prompt and error texts shown to the user.
func WithMessages(m Messages) Option {
	return func(c *config) {
		c.messages = m
	}
}

// WithLogger attaches a logger for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
