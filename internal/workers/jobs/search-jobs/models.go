package searchjobs

import (
	"jobmarket-workers/internal/models"
	"jobmarket-workers/internal/search"
)

type Input struct {
	Filters search.Filters `json:"filters"`
	Page    int            `json:"page"`
	Size    int            `json:"size"`
	SortBy  string         `json:"sortBy,omitempty"`
	SortDir string         `json:"sortDir,omitempty"`
}

type Output struct {
	Results       []models.JobPostingSummary `json:"results"`
	Page          int                        `json:"page"`
	PageSize      int                        `json:"pageSize"`
	TotalElements int64                      `json:"totalElements"`
	TotalPages    int                        `json:"totalPages"`
}
