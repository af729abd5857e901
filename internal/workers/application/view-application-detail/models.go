package viewapplicationdetail

import "jobmarket-workers/internal/models"

type Input struct {
	ActorEmail    string `json:"actorEmail"`
	ApplicationID string `json:"applicationId"`
}

type Output struct {
	Application *models.ApplicationView `json:"application"`
}
