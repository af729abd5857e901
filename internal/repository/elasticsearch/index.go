package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/common/database"
	"jobmarket-workers/internal/models"
)

// PostingIndex writes job postings into the search index.
type PostingIndex struct {
	es    *database.ElasticsearchClient
	index string
}

func NewPostingIndex(es *database.ElasticsearchClient, index string) *PostingIndex {
	return &PostingIndex{es: es, index: index}
}

// EnsureIndex creates the index with IndexMapping if it is missing.
func (i *PostingIndex) EnsureIndex(ctx context.Context) error {
	if err := i.es.EnsureIndex(ctx, i.index, IndexMapping); err != nil {
		return apperrors.NewUnavailableError("ensure job index", err)
	}
	return nil
}

// Index upserts one posting under its id.
func (i *PostingIndex) Index(ctx context.Context, p *models.JobPosting) error {
	body, err := json.Marshal(NewJobPostingDocument(p))
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("encode posting %s: %w", p.ID, err))
	}

	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.es.Client)
	if err != nil {
		return apperrors.NewUnavailableError("index job posting", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewUnavailableError("index job posting", fmt.Errorf("%s", res.Status()))
	}
	return nil
}

// Delete removes a posting. A missing document is not an error.
func (i *PostingIndex) Delete(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: i.index, DocumentID: id}.Do(ctx, i.es.Client)
	if err != nil {
		return apperrors.NewUnavailableError("delete job posting", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return apperrors.NewUnavailableError("delete job posting", fmt.Errorf("%s", res.Status()))
	}
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
	} `json:"items"`
}

// BulkIndex upserts a batch and returns how many documents failed.
func (i *PostingIndex) BulkIndex(ctx context.Context, postings []models.JobPosting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for idx := range postings {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": i.index, "_id": postings[idx].ID}}
		if err := enc.Encode(meta); err != nil {
			return 0, apperrors.NewInternalError(err)
		}
		if err := enc.Encode(NewJobPostingDocument(&postings[idx])); err != nil {
			return 0, apperrors.NewInternalError(err)
		}
	}

	res, err := esapi.BulkRequest{Body: &buf}.Do(ctx, i.es.Client)
	if err != nil {
		return 0, apperrors.NewUnavailableError("bulk index job postings", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, apperrors.NewUnavailableError("bulk index job postings", fmt.Errorf("%s: %s", res.Status(), msg))
	}

	var r bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, apperrors.NewUnavailableError("decode bulk response", err)
	}
	if !r.Errors {
		return 0, nil
	}

	failed := 0
	for _, item := range r.Items {
		for _, result := range item {
			if result.Status >= 300 {
				failed++
			}
		}
	}
	return failed, nil
}
