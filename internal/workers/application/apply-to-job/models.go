package applytojob

import "jobmarket-workers/internal/models"

type Input struct {
	ActorEmail   string `json:"actorEmail"`
	JobPostingID string `json:"jobPostingId"`
}

type Output struct {
	ApplicationID     string                   `json:"applicationId"`
	ApplicationStatus models.ApplicationStatus `json:"applicationStatus"`
	Application       *models.ApplicationView  `json:"application"`
}
