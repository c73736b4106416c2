package repository

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/locvowork/dropdown_export/internal/domain"
	"gopkg.in/yaml.v3"
)

// StaticDictionary is an in-memory dictionary store, typically loaded from a
// YAML file of the form:
//
//	category:
//	  - value: Fruit
//	  - value: Veg
//	product:
//	  - {parent: Fruit, value: Apple}
//	  - {parent: Veg, value: Carrot}
type StaticDictionary struct {
	mu    sync.RWMutex
	items map[string][]domain.DictionaryItem
}

var (
	_ domain.DictionaryRepository = (*StaticDictionary)(nil)
	_ domain.DictionaryWriter     = (*StaticDictionary)(nil)
)

// NewStaticDictionary returns an empty store.
func NewStaticDictionary() *StaticDictionary {
	return &StaticDictionary{items: make(map[string][]domain.DictionaryItem)}
}

// LoadStaticDictionary reads a YAML dictionary file.
func LoadStaticDictionary(path string) (*StaticDictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary file: %w", err)
	}
	return ParseStaticDictionary(data)
}

// ParseStaticDictionary parses YAML dictionary content. Items without an
// explicit sort order keep their file order.
func ParseStaticDictionary(data []byte) (*StaticDictionary, error) {
	var raw map[string][]domain.DictionaryItem
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary file: %w", err)
	}

	d := NewStaticDictionary()
	var all []domain.DictionaryItem
	for dict, items := range raw {
		for i := range items {
			items[i].DictType = dict
			if items[i].SortOrder == 0 {
				items[i].SortOrder = i + 1
			}
		}
		all = append(all, items...)
	}
	if err := d.SaveItems(context.Background(), all); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *StaticDictionary) Options(_ context.Context, dict string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	options := domain.TopLevel(d.items[dict])
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDictionaryNotFound, dict)
	}
	return options, nil
}

func (d *StaticDictionary) Children(_ context.Context, dict string) (map[string][]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	children := domain.GroupByParent(d.items[dict])
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDictionaryNotFound, dict)
	}
	return children, nil
}

// SaveItems upserts items keyed by dictionary, parent and value.
func (d *StaticDictionary) SaveItems(_ context.Context, items []domain.DictionaryItem) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	touched := make(map[string]bool)
	for _, it := range items {
		if it.DictType == "" || it.Value == "" {
			return fmt.Errorf("dictionary item needs a type and a value: %+v", it)
		}
		list := d.items[it.DictType]
		replaced := false
		for i := range list {
			if list[i].ParentValue == it.ParentValue && list[i].Value == it.Value {
				list[i] = it
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, it)
		}
		d.items[it.DictType] = list
		touched[it.DictType] = true
	}
	for dict := range touched {
		domain.SortItems(d.items[dict])
	}
	return nil
}

// Items returns a copy of every stored item.
func (d *StaticDictionary) Items() []domain.DictionaryItem {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []domain.DictionaryItem
	for _, items := range d.items {
		out = append(out, items...)
	}
	domain.SortItems(out)
	return out
}
