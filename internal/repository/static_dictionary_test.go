package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/locvowork/dropdown_export/internal/domain"
	"github.com/stretchr/testify/require"
)

const dictionaryYAML = `
category:
  - value: Veg
  - value: Fruit
product:
  - {parent: Fruit, value: Banana}
  - {parent: Fruit, value: Apple}
  - {parent: Veg, value: Carrot}
size:
  - {value: L, sort: 3}
  - {value: S, sort: 1}
  - {value: M, sort: 2}
`

func TestStaticDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dictionaryYAML), 0o600))

	d, err := LoadStaticDictionary(path)
	require.NoError(t, err)
	ctx := context.Background()

	options, err := d.Options(ctx, "category")
	require.NoError(t, err)
	require.Equal(t, []string{"Veg", "Fruit"}, options, "file order is kept")

	options, err = d.Options(ctx, "size")
	require.NoError(t, err)
	require.Equal(t, []string{"S", "M", "L"}, options)

	children, err := d.Children(ctx, "product")
	require.NoError(t, err)
	require.Equal(t, map[string][]string{
		"Fruit": {"Banana", "Apple"},
		"Veg":   {"Carrot"},
	}, children)

	_, err = d.Options(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrDictionaryNotFound)
	_, err = d.Children(ctx, "size")
	require.ErrorIs(t, err, domain.ErrDictionaryNotFound)

	require.Len(t, d.Items(), 8)
}

func TestStaticDictionarySaveItemsReplaces(t *testing.T) {
	d := NewStaticDictionary()
	ctx := context.Background()
	require.NoError(t, d.SaveItems(ctx, []domain.DictionaryItem{
		{DictType: "status", Value: "Open", SortOrder: 1},
		{DictType: "status", Value: "Closed", SortOrder: 2},
	}))
	require.NoError(t, d.SaveItems(ctx, []domain.DictionaryItem{
		{DictType: "status", Value: "Open", SortOrder: 3},
	}))

	options, err := d.Options(ctx, "status")
	require.NoError(t, err)
	require.Equal(t, []string{"Closed", "Open"}, options)

	require.Error(t, d.SaveItems(ctx, []domain.DictionaryItem{{DictType: "status"}}))
}

func TestParseStaticDictionaryInvalid(t *testing.T) {
	_, err := ParseStaticDictionary([]byte("category: [unclosed"))
	require.Error(t, err)
}
