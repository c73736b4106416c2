package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDictionaryGrouping(t *testing.T) {
	items := []DictionaryItem{
		{Value: "Veg", SortOrder: 2},
		{ParentValue: "Fruit", Value: "Banana", SortOrder: 2},
		{Value: "Fruit", SortOrder: 1},
		{ParentValue: "Fruit", Value: "Apple", SortOrder: 1},
		{ParentValue: "Veg", Value: "Carrot"},
	}
	SortItems(items)

	require.Equal(t, []string{"Fruit", "Veg"}, TopLevel(items))
	require.Equal(t, map[string][]string{
		"Fruit": {"Apple", "Banana"},
		"Veg":   {"Carrot"},
	}, GroupByParent(items))
}
