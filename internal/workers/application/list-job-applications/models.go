package listjobapplications

import "jobmarket-workers/internal/models"

type Input struct {
	ActorEmail   string `json:"actorEmail"`
	JobPostingID string `json:"jobPostingId"`
	Status       string `json:"status,omitempty"`
	Page         int    `json:"page"`
	PageSize     int    `json:"pageSize"`
}

type Output struct {
	Applications  []models.ApplicationView `json:"applications"`
	Page          int                      `json:"page"`
	PageSize      int                      `json:"pageSize"`
	TotalElements int64                    `json:"totalElements"`
	TotalPages    int                      `json:"totalPages"`
}
