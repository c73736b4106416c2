package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/locvowork/dropdown_export/internal/domain"
	"github.com/locvowork/dropdown_export/internal/repository/builder"
)

const (
	dictionaryTable = "dictionary_item"
	saveBatchSize   = 500

	// undefined_table
	pqUndefinedTable = "42P01"
)

// ErrDictionaryTableMissing is returned when the dictionary table does not exist.
var ErrDictionaryTableMissing = errors.New("dictionary table is missing")

// DB abstracts *sql.DB and *sql.Tx.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DictionaryRepository reads dictionaries from PostgreSQL.
type DictionaryRepository struct {
	db DB
}

// NewDictionaryRepository creates a new instance of DictionaryRepository
func NewDictionaryRepository(db DB) *DictionaryRepository {
	return &DictionaryRepository{db: db}
}

var (
	_ domain.DictionaryRepository = (*DictionaryRepository)(nil)
	_ domain.DictionaryWriter     = (*DictionaryRepository)(nil)
)

func (r *DictionaryRepository) Options(ctx context.Context, dict string) ([]string, error) {
	query, args, err := builder.NewSQLBuilder().
		Select("value").
		From(dictionaryTable).
		Where("dict_type = ?", dict).
		Where("parent_value = ?", "").
		OrderBy("sort_order ASC", "value ASC").
		BuildSafe()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError(dict, err)
	}
	defer rows.Close()

	var options []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan dictionary %q: %w", dict, err)
		}
		options = append(options, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(dict, err)
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDictionaryNotFound, dict)
	}
	return options, nil
}

func (r *DictionaryRepository) Children(ctx context.Context, dict string) (map[string][]string, error) {
	query, args, err := builder.NewSQLBuilder().
		Select("parent_value", "value").
		From(dictionaryTable).
		Where("dict_type = ?", dict).
		Where("parent_value <> ?", "").
		OrderBy("parent_value ASC", "sort_order ASC", "value ASC").
		BuildSafe()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError(dict, err)
	}
	defer rows.Close()

	var items []domain.DictionaryItem
	for rows.Next() {
		var it domain.DictionaryItem
		if err := rows.Scan(&it.ParentValue, &it.Value); err != nil {
			return nil, fmt.Errorf("failed to scan dictionary %q: %w", dict, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(dict, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDictionaryNotFound, dict)
	}
	return domain.GroupByParent(items), nil
}

// SaveItems upserts items in batches.
func (r *DictionaryRepository) SaveItems(ctx context.Context, items []domain.DictionaryItem) error {
	for start := 0; start < len(items); start += saveBatchSize {
		end := start + saveBatchSize
		if end > len(items) {
			end = len(items)
		}

		b := builder.NewSQLBuilder().
			Insert(dictionaryTable, "dict_type", "parent_value", "value", "sort_order").
			OnConflict("(dict_type, parent_value, value) DO UPDATE SET sort_order = EXCLUDED.sort_order")
		for _, it := range items[start:end] {
			b.Values(it.DictType, it.ParentValue, it.Value, it.SortOrder)
		}
		query, args := b.Build()

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return wrapQueryError(items[start].DictType, err)
		}
	}
	return nil
}

func wrapQueryError(dict string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable {
		return fmt.Errorf("%w: %s", ErrDictionaryTableMissing, pqErr.Message)
	}
	return fmt.Errorf("failed to query dictionary %q: %w", dict, err)
}
