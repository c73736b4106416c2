package simpleexcel

import (
	"testing"

	"github.com/locvowork/dropdown_export/pkg/dropdown"
	"github.com/stretchr/testify/require"
)

func TestParseExcelTag(t *testing.T) {
	var col ColumnConfig
	parseExcelTag(&col, "header:Item, width:18.5, options:Apple|Banana, depends:Category, hidden:true")
	require.Equal(t, "Item", col.Header)
	require.Equal(t, 18.5, col.Width)
	require.True(t, col.Hidden)
	require.Equal(t, &DropdownConfig{Options: []string{"Apple", "Banana"}, DependsOn: "Category"}, col.Dropdown)
}

func TestDescriptors(t *testing.T) {
	cols := []ColumnConfig{
		{FieldName: "ID"},
		{FieldName: "Category", Dropdown: &DropdownConfig{Dictionary: "category"}},
		{FieldName: "Item", Dropdown: &DropdownConfig{Dictionary: "product", DependsOn: "Category"}},
		{FieldName: "Status", Dropdown: &DropdownConfig{Options: []string{"Open", "Closed"}}},
	}
	dicts := map[DictionaryLookup]DictionaryValues{
		{Dictionary: "category"}:                {Options: []string{"Fruit"}},
		{Dictionary: "product", Children: true}: {Children: map[string][]string{"Fruit": {"Apple"}}},
	}

	got, err := Descriptors(cols, dicts)
	require.NoError(t, err)
	require.Equal(t, []dropdown.Descriptor{
		dropdown.NewCascadingDescriptor(1, 2, []string{"Fruit"}, map[string][]string{"Fruit": {"Apple"}}),
		dropdown.NewListDescriptor(3, "Open", "Closed"),
	}, got)
}

func TestDescriptorsErrors(t *testing.T) {
	tests := map[string][]ColumnConfig{
		"unknown parent": {
			{FieldName: "Item", Dropdown: &DropdownConfig{DependsOn: "Nope", Children: map[string][]string{"a": {"b"}}}},
		},
		"parent without dropdown": {
			{FieldName: "Category"},
			{FieldName: "Item", Dropdown: &DropdownConfig{DependsOn: "Category", Children: map[string][]string{"a": {"b"}}}},
		},
		"unresolved dictionary": {
			{FieldName: "Code", Dropdown: &DropdownConfig{Dictionary: "codes"}},
		},
		"no source": {
			{FieldName: "Code", Dropdown: &DropdownConfig{}},
		},
	}
	for name, cols := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Descriptors(cols, nil)
			require.ErrorIs(t, err, dropdown.ErrDescriptorConflict)
		})
	}
}

func TestParseTemplateErrors(t *testing.T) {
	for _, src := range []string{"", "sheets: []", "sheets: [{columns: []}]", "sheets: [{name: A}, {name: A}]", "sheets: ["} {
		_, err := ParseTemplate([]byte(src))
		require.Error(t, err, src)
	}
}
