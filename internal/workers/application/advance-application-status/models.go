package advanceapplicationstatus

import "jobmarket-workers/internal/models"

type Input struct {
	ActorEmail    string `json:"actorEmail"`
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
}

type Output struct {
	ApplicationID     string                   `json:"applicationId"`
	ApplicationStatus models.ApplicationStatus `json:"applicationStatus"`
	Final             bool                     `json:"final"`
	Application       *models.ApplicationView  `json:"application"`
}
