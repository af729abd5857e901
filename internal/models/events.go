package models

import "time"

// Application event types.
const (
	EventApplicationSubmitted   = "application.submitted"
	EventApplicationResubmitted = "application.resubmitted"
	EventApplicationWithdrawn   = "application.withdrawn"
	EventApplicationStatus      = "application.status_changed"
	EventApplicationViewed      = "application.viewed"
)

// ApplicationEvent is emitted after a successful lifecycle write.
type ApplicationEvent struct {
	ID                 string            `json:"id"`
	Type               string            `json:"type"`
	ApplicationID      string            `json:"applicationId"`
	JobPostingID       string            `json:"jobPostingId"`
	ApplicantProfileID string            `json:"applicantProfileId"`
	From               ApplicationStatus `json:"from,omitempty"`
	To                 ApplicationStatus `json:"to"`
	Actor              string            `json:"actor"`
	OccurredAt         time.Time         `json:"occurredAt"`
}
