package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/locvowork/dropdown_export/internal/domain"
	"github.com/locvowork/dropdown_export/internal/repository"
	"github.com/locvowork/dropdown_export/pkg/dropdown"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const dictionaryYAML = `
category:
  - value: Fruit
  - value: Veg
product:
  - {parent: Fruit, value: Apple}
  - {parent: Fruit, value: Banana}
  - {parent: Veg, value: Carrot}
status:
  - value: Open
  - value: Closed
`

const orderTemplate = `
sheets:
  - name: Orders
    columns:
      - field_name: Category
        header: Category
        dropdown:
          dictionary: category
      - field_name: Product
        header: Product
        dropdown:
          dictionary: product
          depends_on: Category
      - field_name: Status
        header: Status
        dropdown:
          dictionary: status
`

func newService(t *testing.T, files map[string]string) *TemplateService {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	dict, err := repository.ParseStaticDictionary([]byte(dictionaryYAML))
	require.NoError(t, err)
	return NewTemplateService(dict, dir, 3, dropdown.WithMaxCascadeRows(10))
}

func TestRender(t *testing.T) {
	svc := newService(t, map[string]string{"orders.yaml": orderTemplate})

	data, err := svc.Render(context.Background(), "orders")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	dvs, err := f.GetDataValidations("Orders")
	require.NoError(t, err)
	formulas := make(map[string]string, len(dvs))
	for _, dv := range dvs {
		formulas[dv.Sqref] = dv.Formula1
	}
	require.Len(t, formulas, 1+10+1)
	require.Equal(t, "dd_cascade_1_0", formulas["A2:A1001"])
	require.Equal(t, "INDIRECT($A11)", formulas["B11"])
	require.Equal(t, `"Open,Closed"`, formulas["C2:C1001"])

	rows, err := f.GetRows("dd_cascade_1_0")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"Fruit", "Veg"}, {"Apple", "Carrot"}, {"Banana"}}, rows)
}

func TestRenderErrors(t *testing.T) {
	svc := newService(t, map[string]string{
		"broken.yaml":  "sheets: [",
		"missing.yaml": "sheets: [{name: S, columns: [{field_name: X, dropdown: {dictionary: nope}}]}]",
	})
	ctx := context.Background()

	_, err := svc.Render(ctx, "absent")
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = svc.Render(ctx, "../orders")
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = svc.Render(ctx, "broken")
	require.ErrorIs(t, err, ErrInvalidTemplate)

	_, err = svc.Render(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrDictionaryNotFound)

	_, err = svc.RenderYAML(ctx, nil)
	require.ErrorIs(t, err, ErrInvalidTemplate)
}

type countingRepository struct {
	domain.DictionaryRepository
	calls int32
}

func (r *countingRepository) Options(ctx context.Context, dict string) ([]string, error) {
	atomic.AddInt32(&r.calls, 1)
	return r.DictionaryRepository.Options(ctx, dict)
}

func TestRenderDoesNotRetryMissingDictionary(t *testing.T) {
	dict, err := repository.ParseStaticDictionary([]byte(dictionaryYAML))
	require.NoError(t, err)
	repo := &countingRepository{DictionaryRepository: dict}
	svc := NewTemplateService(repo, t.TempDir(), 1)

	_, err = svc.RenderYAML(context.Background(), []byte(
		"sheets: [{name: S, columns: [{field_name: X, dropdown: {dictionary: nope}}]}]"))
	require.ErrorIs(t, err, domain.ErrDictionaryNotFound)
	require.EqualValues(t, 1, atomic.LoadInt32(&repo.calls))
}

func TestRenderYAML(t *testing.T) {
	svc := newService(t, nil)
	data, err := svc.RenderYAML(context.Background(), []byte(orderTemplate))
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestListTemplates(t *testing.T) {
	svc := newService(t, map[string]string{
		"orders.yaml": orderTemplate,
		"status.yml":  "sheets: [{name: Status}, {name: Notes}]",
		"broken.yaml": "sheets: [",
		"readme.txt":  "not a template",
	})

	got, err := svc.ListTemplates(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.TemplateSummary{
		{Name: "orders", Sheets: []string{"Orders"}},
		{Name: "status", Sheets: []string{"Status", "Notes"}},
	}, got)
}

func TestRenderBundledTemplate(t *testing.T) {
	dict, err := repository.LoadStaticDictionary(filepath.Join("..", "..", "dictionaries.yaml"))
	require.NoError(t, err)
	svc := NewTemplateService(dict, filepath.Join("..", "..", "templates"), 2)

	data, err := svc.Render(context.Background(), "orders")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{"Orders", "dd_cascade_1_1", "dd_list_1_4"}, f.GetSheetList())
}
