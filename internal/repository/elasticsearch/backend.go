package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/common/database"
	"jobmarket-workers/internal/models"
	"jobmarket-workers/internal/search"
)

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source JobPostingDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchBackend runs composed job searches against the postings index.
type SearchBackend struct {
	es    *database.ElasticsearchClient
	index string
}

func NewSearchBackend(es *database.ElasticsearchClient, index string) *SearchBackend {
	return &SearchBackend{es: es, index: index}
}

func (b *SearchBackend) Name() string {
	return "elasticsearch"
}

func (b *SearchBackend) Search(ctx context.Context, q search.Query) ([]models.JobPostingSummary, int64, error) {
	body, err := json.Marshal(search.BuildElasticsearchQuery(q))
	if err != nil {
		return nil, 0, apperrors.NewInternalError(fmt.Errorf("encode search body: %w", err))
	}

	res, err := esapi.SearchRequest{
		Index: []string{b.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, b.es.Client)
	if err != nil {
		return nil, 0, apperrors.NewUnavailableError("search job index", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, apperrors.NewUnavailableError("search job index", fmt.Errorf("%s", res.Status()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, apperrors.NewUnavailableError("decode search response", err)
	}

	items := make([]models.JobPostingSummary, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		items = append(items, hit.Source.Summary())
	}
	return items, r.Hits.Total.Value, nil
}
