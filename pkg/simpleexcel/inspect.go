package simpleexcel

import (
	"fmt"

	"github.com/locvowork/dropdown_export/pkg/dropdown"
)

// DictionaryLookup names dictionary values a template needs. Children selects
// the second-level values keyed by parent instead of the top-level list.
type DictionaryLookup struct {
	Dictionary string
	Children   bool
}

// DictionaryValues holds resolved dictionary content.
type DictionaryValues struct {
	Options  []string
	Children map[string][]string
}

// lookups returns the dictionary lookups the columns need, in column order.
func lookups(cols []ColumnConfig) []DictionaryLookup {
	var out []DictionaryLookup
	for _, col := range cols {
		dd := col.Dropdown
		if dd == nil || dd.Dictionary == "" {
			continue
		}
		if dd.DependsOn != "" {
			if len(dd.Children) == 0 {
				out = append(out, DictionaryLookup{Dictionary: dd.Dictionary, Children: true})
			}
			continue
		}
		if len(dd.Options) == 0 {
			out = append(out, DictionaryLookup{Dictionary: dd.Dictionary})
		}
	}
	return out
}

// Descriptors turns the dropdown settings of cols into placement descriptors.
// Column positions are zero-based, matching the sheet layout written by
// BuildExcel. A column referenced by DependsOn becomes the first level of a
// cascading descriptor instead of a plain list.
func Descriptors(cols []ColumnConfig, dicts map[DictionaryLookup]DictionaryValues) ([]dropdown.Descriptor, error) {
	index := make(map[string]int, len(cols))
	parents := make(map[string]bool)
	for i, col := range cols {
		index[col.FieldName] = i
		if col.Dropdown != nil && col.Dropdown.DependsOn != "" {
			parents[col.Dropdown.DependsOn] = true
		}
	}

	var out []dropdown.Descriptor
	for i, col := range cols {
		dd := col.Dropdown
		if dd == nil {
			continue
		}

		if dd.DependsOn == "" {
			if parents[col.FieldName] {
				continue
			}
			options, err := columnOptions(col, dicts)
			if err != nil {
				return nil, err
			}
			out = append(out, dropdown.NewListDescriptor(i, options...))
			continue
		}

		p, ok := index[dd.DependsOn]
		if !ok {
			return nil, fmt.Errorf("%w: column %q depends on unknown column %q", dropdown.ErrDescriptorConflict, col.FieldName, dd.DependsOn)
		}
		parent := cols[p]
		if parent.Dropdown == nil || parent.Dropdown.DependsOn != "" {
			return nil, fmt.Errorf("%w: column %q must be a first-level dropdown", dropdown.ErrDescriptorConflict, parent.FieldName)
		}
		options, err := columnOptions(parent, dicts)
		if err != nil {
			return nil, err
		}
		children, err := columnChildren(col, dicts)
		if err != nil {
			return nil, err
		}
		out = append(out, dropdown.NewCascadingDescriptor(p, i, options, children))
	}
	return out, nil
}

func columnOptions(col ColumnConfig, dicts map[DictionaryLookup]DictionaryValues) ([]string, error) {
	dd := col.Dropdown
	if len(dd.Options) > 0 {
		return dd.Options, nil
	}
	if dd.Dictionary == "" {
		return nil, fmt.Errorf("%w: column %q has a dropdown without options", dropdown.ErrDescriptorConflict, col.FieldName)
	}
	v, ok := dicts[DictionaryLookup{Dictionary: dd.Dictionary}]
	if !ok {
		return nil, fmt.Errorf("%w: dictionary %q of column %q is not resolved", dropdown.ErrDescriptorConflict, dd.Dictionary, col.FieldName)
	}
	return v.Options, nil
}

func columnChildren(col ColumnConfig, dicts map[DictionaryLookup]DictionaryValues) (map[string][]string, error) {
	dd := col.Dropdown
	if len(dd.Children) > 0 {
		return dd.Children, nil
	}
	if dd.Dictionary == "" {
		return nil, fmt.Errorf("%w: column %q has no second-level options", dropdown.ErrDescriptorConflict, col.FieldName)
	}
	v, ok := dicts[DictionaryLookup{Dictionary: dd.Dictionary, Children: true}]
	if !ok {
		return nil, fmt.Errorf("%w: dictionary %q of column %q is not resolved", dropdown.ErrDescriptorConflict, dd.Dictionary, col.FieldName)
	}
	return v.Children, nil
}
