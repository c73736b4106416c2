package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/datastore"
	"github.com/locvowork/dropdown_export/internal/domain"
)

const (
	dictionaryKind = "DictionaryItem"
	// Datastore accepts at most 500 entities per PutMulti.
	datastoreBatchSize = 500
)

// DatastoreClient wraps the cloud datastore client and serves dictionaries
// stored as DictionaryItem entities.
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient connects to the given project.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{client: client}, nil
}

// WrapDatastoreClient wraps existing datastore client
func WrapDatastoreClient(client *datastore.Client) *DatastoreClient {
	if client == nil {
		return nil
	}
	return &DatastoreClient{client: client}
}

var (
	_ domain.DictionaryRepository = (*DatastoreClient)(nil)
	_ domain.DictionaryWriter     = (*DatastoreClient)(nil)
)

func (dc *DatastoreClient) Options(ctx context.Context, dict string) ([]string, error) {
	items, err := dc.items(ctx, dict)
	if err != nil {
		return nil, err
	}
	options := domain.TopLevel(items)
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDictionaryNotFound, dict)
	}
	return options, nil
}

func (dc *DatastoreClient) Children(ctx context.Context, dict string) (map[string][]string, error) {
	items, err := dc.items(ctx, dict)
	if err != nil {
		return nil, err
	}
	children := domain.GroupByParent(items)
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDictionaryNotFound, dict)
	}
	return children, nil
}

// items loads every entity of dict. Ordering is done in memory so the query
// needs no composite index.
func (dc *DatastoreClient) items(ctx context.Context, dict string) ([]domain.DictionaryItem, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}

	var result []domain.DictionaryItem
	q := datastore.NewQuery(dictionaryKind).FilterField("DictType", "=", dict)
	if _, err := dc.client.GetAll(ctx, q, &result); err != nil {
		return nil, fmt.Errorf("failed to query dictionary %q: %w", dict, err)
	}
	domain.SortItems(result)
	return result, nil
}

// SaveItems upserts items keyed by dictionary, parent and value.
func (dc *DatastoreClient) SaveItems(ctx context.Context, items []domain.DictionaryItem) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil")
	}

	for start := 0; start < len(items); start += datastoreBatchSize {
		end := start + datastoreBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		keys := make([]*datastore.Key, len(batch))
		for i := range batch {
			keys[i] = datastore.NameKey(dictionaryKind, itemKey(batch[i]), nil)
		}
		if _, err := dc.client.PutMulti(ctx, keys, batch); err != nil {
			return fmt.Errorf("failed to save dictionary items: %w", err)
		}
	}
	return nil
}

// Close releases the underlying client.
func (dc *DatastoreClient) Close() error {
	if dc == nil || dc.client == nil {
		return nil
	}
	return dc.client.Close()
}

// itemKey identifies an item across stores.
func itemKey(it domain.DictionaryItem) string {
	return it.DictType + "/" + it.ParentValue + "/" + it.Value
}
