package search

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/metrics"
	"jobmarket-workers/internal/common/observability"
	"jobmarket-workers/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Query is a fully validated search ready for a backend.
type Query struct {
	Predicates []Predicate
	Sort       Sort
	Page       Page
}

// Backend executes a query and returns one page plus the total match count.
type Backend interface {
	Name() string
	Search(ctx context.Context, q Query) ([]models.JobPostingSummary, int64, error)
}

// Request is the caller-facing search input.
type Request struct {
	Filters
	Page    int    `json:"page"`
	Size    int    `json:"size"`
	SortBy  string `json:"sortBy,omitempty"`
	SortDir string `json:"sortDir,omitempty"`
}

type Service struct {
	backend         Backend
	logger          logger.Logger
	defaultPageSize int
	maxPageSize     int
}

// NewService wires a backend. Non-positive sizes fall back to 20 and 100.
func NewService(backend Backend, log logger.Logger, defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}
	return &Service{
		backend:         backend,
		logger:          log.WithFields(map[string]interface{}{"component": "search", "backend": backend.Name()}),
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// SearchJobs validates the request, composes predicates and runs them on the
// configured backend.
func (s *Service) SearchJobs(ctx context.Context, req Request) (result *models.JobPostingPage, err error) {
	ctx, span := observability.StartSpan(ctx, "search.SearchJobs", attribute.String("backend", s.backend.Name()))
	defer func() { observability.EndSpan(span, err) }()

	q, err := s.buildQuery(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	items, total, err := s.backend.Search(ctx, q)
	metrics.JobSearchDuration.WithLabelValues(s.backend.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("job search failed", map[string]interface{}{"error": err})
		return nil, err
	}
	if items == nil {
		items = []models.JobPostingSummary{}
	}

	s.logger.Debug("job search executed", map[string]interface{}{
		"predicates": len(q.Predicates),
		"page":       q.Page.Index,
		"size":       q.Page.Size,
		"total":      total,
	})

	return &models.JobPostingPage{
		Items:         items,
		Page:          q.Page.Index,
		PageSize:      q.Page.Size,
		TotalElements: total,
		TotalPages:    models.TotalPages(total, q.Page.Size),
	}, nil
}

func (s *Service) buildQuery(req Request) (Query, error) {
	preds, err := Compose(req.Filters)
	if err != nil {
		return Query{}, err
	}
	sort, err := ParseSort(req.SortBy, req.SortDir)
	if err != nil {
		return Query{}, err
	}
	page, err := ResolvePage(req.Page, req.Size, s.defaultPageSize, s.maxPageSize)
	if err != nil {
		return Query{}, err
	}
	return Query{Predicates: preds, Sort: sort, Page: page}, nil
}
