package database

import (
	"context"
	"fmt"

	"github.com/locvowork/dropdown_export/internal/domain"
	"github.com/olivere/elastic/v7"
)

const (
	valuesAgg   = "values"
	parentsAgg  = "parents"
	minSortAgg  = "min_sort"
	maxBuckets  = 10000
	elasticBulk = 1000
)

// ElasticSearchClient serves dictionaries from an index of DictionaryItem
// documents. dict_type, parent_value and value must be keyword fields.
type ElasticSearchClient struct {
	client *elastic.Client
	index  string
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url, index string) (*ElasticSearchClient, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticSearchClient{client: client, index: index}, nil
}

var (
	_ domain.DictionaryRepository = (*ElasticSearchClient)(nil)
	_ domain.DictionaryWriter     = (*ElasticSearchClient)(nil)
)

// valuesAggregation buckets values ordered by their smallest sort_order.
func valuesAggregation() *elastic.TermsAggregation {
	return elastic.NewTermsAggregation().
		Field("value").
		Size(maxBuckets).
		OrderByAggregation(minSortAgg, true).
		SubAggregation(minSortAgg, elastic.NewMinAggregation().Field("sort_order"))
}

func (es *ElasticSearchClient) Options(ctx context.Context, dict string) ([]string, error) {
	query := elastic.NewBoolQuery().
		Filter(elastic.NewTermQuery("dict_type", dict)).
		MustNot(elastic.NewExistsQuery("parent_value"))

	res, err := es.client.Search().
		Index(es.index).
		Query(query).
		Size(0).
		Aggregation(valuesAgg, valuesAggregation()).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search dictionary %q: %w", dict, err)
	}

	options := optionsFromResult(res)
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDictionaryNotFound, dict)
	}
	return options, nil
}

func (es *ElasticSearchClient) Children(ctx context.Context, dict string) (map[string][]string, error) {
	query := elastic.NewBoolQuery().
		Filter(elastic.NewTermQuery("dict_type", dict)).
		Filter(elastic.NewExistsQuery("parent_value"))

	parents := elastic.NewTermsAggregation().
		Field("parent_value").
		Size(maxBuckets).
		SubAggregation(valuesAgg, valuesAggregation())

	res, err := es.client.Search().
		Index(es.index).
		Query(query).
		Size(0).
		Aggregation(parentsAgg, parents).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search dictionary %q: %w", dict, err)
	}

	children := childrenFromResult(res)
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDictionaryNotFound, dict)
	}
	return children, nil
}

func optionsFromResult(res *elastic.SearchResult) []string {
	terms, ok := res.Aggregations.Terms(valuesAgg)
	if !ok {
		return nil
	}
	return bucketKeys(terms)
}

func childrenFromResult(res *elastic.SearchResult) map[string][]string {
	terms, ok := res.Aggregations.Terms(parentsAgg)
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(terms.Buckets))
	for _, parent := range terms.Buckets {
		values, ok := parent.Terms(valuesAgg)
		if !ok {
			continue
		}
		out[fmt.Sprint(parent.Key)] = bucketKeys(values)
	}
	return out
}

func bucketKeys(terms *elastic.AggregationBucketKeyItems) []string {
	keys := make([]string, 0, len(terms.Buckets))
	for _, b := range terms.Buckets {
		keys = append(keys, fmt.Sprint(b.Key))
	}
	return keys
}

// SaveItems bulk indexes items using a deterministic document id.
func (es *ElasticSearchClient) SaveItems(ctx context.Context, items []domain.DictionaryItem) error {
	for start := 0; start < len(items); start += elasticBulk {
		end := start + elasticBulk
		if end > len(items) {
			end = len(items)
		}

		bulkRequest := es.client.Bulk()
		for _, it := range items[start:end] {
			bulkRequest = bulkRequest.Add(elastic.NewBulkIndexRequest().
				Index(es.index).
				Id(itemKey(it)).
				Doc(it))
		}

		bulkResponse, err := bulkRequest.Refresh("wait_for").Do(ctx)
		if err != nil {
			return fmt.Errorf("bulk index failed: %w", err)
		}
		if bulkResponse.Errors {
			for _, item := range bulkResponse.Items {
				for _, op := range item {
					if op.Error != nil {
						return fmt.Errorf("bulk item failed: %s", op.Error.Reason)
					}
				}
			}
		}
	}
	return nil
}
