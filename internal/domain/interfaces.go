package domain

import (
	"context"
	"errors"
)

// ErrDictionaryNotFound is returned when a dictionary has no items.
var ErrDictionaryNotFound = errors.New("dictionary not found")

// DictionaryRepository provides the values offered by dropdown columns.
type DictionaryRepository interface {
	// Options returns the top-level values of dict in display order.
	Options(ctx context.Context, dict string) ([]string, error)
	// Children returns the second-level values of dict keyed by parent value.
	Children(ctx context.Context, dict string) (map[string][]string, error)
}

// DictionaryWriter stores dictionary items, replacing items with the same key.
type DictionaryWriter interface {
	SaveItems(ctx context.Context, items []DictionaryItem) error
}

// DictionaryStore is a dictionary source that can also be seeded.
type DictionaryStore interface {
	DictionaryRepository
	DictionaryWriter
}
