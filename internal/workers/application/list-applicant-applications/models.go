package listapplicantapplications

import "jobmarket-workers/internal/models"

type Input struct {
	ActorEmail string `json:"actorEmail"`
}

type Output struct {
	Applications []models.ApplicationView `json:"applications"`
	Count        int                      `json:"count"`
}
