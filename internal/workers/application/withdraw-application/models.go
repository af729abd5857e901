package withdrawapplication

import "jobmarket-workers/internal/models"

type Input struct {
	ActorEmail    string `json:"actorEmail"`
	ApplicationID string `json:"applicationId"`
}

type Output struct {
	ApplicationID     string                   `json:"applicationId"`
	ApplicationStatus models.ApplicationStatus `json:"applicationStatus"`
	Application       *models.ApplicationView  `json:"application"`
}
