package domain

import "sort"

// DictionaryItem is one selectable value of a dictionary. Top-level values have
// an empty ParentValue; second-level values name the top-level value they
// belong to.
type DictionaryItem struct {
	DictType    string `json:"dict_type" db:"dict_type" datastore:"DictType" yaml:"-"`
	ParentValue string `json:"parent_value,omitempty" db:"parent_value" datastore:"ParentValue" yaml:"parent,omitempty"`
	Value       string `json:"value" db:"value" datastore:"Value" yaml:"value"`
	SortOrder   int    `json:"sort_order" db:"sort_order" datastore:"SortOrder" yaml:"sort,omitempty"`
}

// SortItems orders items by parent, sort order and value.
func SortItems(items []DictionaryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ParentValue != b.ParentValue {
			return a.ParentValue < b.ParentValue
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Value < b.Value
	})
}

// TopLevel returns the values without a parent, in item order.
func TopLevel(items []DictionaryItem) []string {
	var out []string
	for _, it := range items {
		if it.ParentValue == "" {
			out = append(out, it.Value)
		}
	}
	return out
}

// GroupByParent returns the values that have a parent, keyed by parent, in item order.
func GroupByParent(items []DictionaryItem) map[string][]string {
	out := make(map[string][]string)
	for _, it := range items {
		if it.ParentValue != "" {
			out[it.ParentValue] = append(out[it.ParentValue], it.Value)
		}
	}
	return out
}

// TemplateSummary describes a template available for download.
type TemplateSummary struct {
	Name   string   `json:"name"`
	Sheets []string `json:"sheets"`
}
