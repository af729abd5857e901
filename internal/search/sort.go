package search

import (
	"fmt"
	"strings"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/models"
)

type SortField string

const (
	SortCreatedAt           SortField = "createdAt"
	SortUpdatedAt           SortField = "updatedAt"
	SortTitle               SortField = "title"
	SortLocation            SortField = "location"
	SortMinSalary           SortField = "minSalary"
	SortMaxSalary           SortField = "maxSalary"
	SortApplicationDeadline SortField = "applicationDeadline"
)

var sortFields = []SortField{
	SortCreatedAt,
	SortUpdatedAt,
	SortTitle,
	SortLocation,
	SortMinSalary,
	SortMaxSalary,
	SortApplicationDeadline,
}

// Sort orders a result set. Backends always append id in the same direction
// so pages are stable.
type Sort struct {
	Field SortField
	Desc  bool
}

// ParseSort validates a user supplied sort. Blank values fall back to
// createdAt descending.
func ParseSort(by, dir string) (Sort, error) {
	s := Sort{Field: SortCreatedAt, Desc: true}

	if by = strings.TrimSpace(by); by != "" {
		found := false
		for _, f := range sortFields {
			if strings.EqualFold(by, string(f)) {
				s.Field = f
				found = true
				break
			}
		}
		if !found {
			return Sort{}, apperrors.NewInvalidArgumentError("Unsupported sort field", fmt.Sprintf("sortBy: %s", by))
		}
	}

	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "desc":
		s.Desc = true
	case "asc":
		s.Desc = false
	default:
		return Sort{}, apperrors.NewInvalidArgumentError("Sort direction must be asc or desc", fmt.Sprintf("sortDir: %s", dir))
	}

	return s, nil
}

func (s Sort) Direction() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// Page is a resolved zero-based page with a bounded size.
type Page struct {
	Index int
	Size  int
}

func (p Page) Offset() int {
	return p.Index * p.Size
}

// ResolvePage rejects negative input, maps size 0 to defaultSize and caps at
// maxSize. Pages ending past models.MaxResultWindow are rejected.
func ResolvePage(index, size, defaultSize, maxSize int) (Page, error) {
	if index < 0 {
		return Page{}, apperrors.NewInvalidArgumentError("page must not be negative", fmt.Sprintf("page: %d", index))
	}
	if size < 0 {
		return Page{}, apperrors.NewInvalidArgumentError("size must not be negative", fmt.Sprintf("size: %d", size))
	}
	if size == 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	if !models.WithinResultWindow(index, size) {
		return Page{}, apperrors.NewInvalidArgumentError("page is beyond the result window",
			fmt.Sprintf("page: %d, size: %d, max results: %d", index, size, models.MaxResultWindow))
	}
	return Page{Index: index, Size: size}, nil
}
