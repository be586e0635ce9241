// internal/catalog/source_elasticsearch.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"yojana-engine/internal/common/errors"
	"yojana-engine/internal/models"
)

const esPageSize = 500

// ElasticsearchSource reads scheme definitions from the index the retrieval
// pipeline writes to. Fetches page through the whole index with
// search_after so a catalog larger than one page is never silently
// truncated.
type ElasticsearchSource struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSource(client *elasticsearch.Client, index string) *ElasticsearchSource {
	return &ElasticsearchSource{client: client, index: index}
}

func (s *ElasticsearchSource) Name() string { return "elasticsearch" }

type esHit struct {
	ID     string            `json:"_id"`
	Source json.RawMessage   `json:"_source"`
	Sort   []json.RawMessage `json:"sort"`
}

func (s *ElasticsearchSource) FetchSchemes(ctx context.Context) ([]*models.Scheme, error) {
	var schemes []*models.Scheme
	var searchAfter []json.RawMessage

	for {
		hits, err := s.fetchPage(ctx, searchAfter)
		if err != nil {
			return nil, err
		}

		for _, hit := range hits {
			var sc models.Scheme
			if err := json.Unmarshal(hit.Source, &sc); err != nil {
				return nil, errors.NewCatalogValidationFailedError(hit.ID, err.Error())
			}
			if sc.ID == "" {
				sc.ID = hit.ID
			}
			schemes = append(schemes, &sc)
		}

		if len(hits) < esPageSize {
			return schemes, nil
		}
		last := hits[len(hits)-1]
		if len(last.Sort) == 0 {
			// Without a cursor the next page would repeat this one.
			return nil, errors.NewSourceQueryFailedError(s.Name(),
				fmt.Errorf("full page without sort cursor, cannot paginate"))
		}
		searchAfter = last.Sort
	}
}

func (s *ElasticsearchSource) fetchPage(ctx context.Context, searchAfter []json.RawMessage) ([]esHit, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"size":  esPageSize,
		"sort":  []map[string]string{{"id": "asc"}},
	}
	if searchAfter != nil {
		query["search_after"] = searchAfter
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.NewSourceQueryFailedError(s.Name(), err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.NewSourceQueryFailedError(s.Name(), err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSourceQueryFailedError(s.Name(), fmt.Errorf("search failed: %s", res.Status()))
	}

	var r struct {
		Hits struct {
			Hits []esHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewSourceQueryFailedError(s.Name(), err)
	}

	return r.Hits.Hits, nil
}
