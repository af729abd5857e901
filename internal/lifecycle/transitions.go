package lifecycle

import "jobmarket-workers/internal/models"

// Role is the side of the marketplace requesting a transition.
type Role string

const (
	RoleEmployer Role = "employer"
	RoleSeeker   Role = "seeker"
)

// transitions lists every allowed from→to move per role. OFFERED and REJECTED
// have no outgoing edges.
var transitions = map[Role]map[models.ApplicationStatus][]models.ApplicationStatus{
	RoleEmployer: {
		models.ApplicationStatusSent:      {models.ApplicationStatusViewed, models.ApplicationStatusInterview},
		models.ApplicationStatusViewed:    {models.ApplicationStatusInterview, models.ApplicationStatusRejected},
		models.ApplicationStatusInterview: {models.ApplicationStatusOffered, models.ApplicationStatusRejected},
	},
	RoleSeeker: {
		models.ApplicationStatusSent:      {models.ApplicationStatusWithdrawn},
		models.ApplicationStatusViewed:    {models.ApplicationStatusWithdrawn},
		models.ApplicationStatusWithdrawn: {models.ApplicationStatusSent},
	},
}

// CanTransition reports whether role may move an application from → to.
func CanTransition(role Role, from, to models.ApplicationStatus) bool {
	for _, target := range transitions[role][from] {
		if target == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses role may move an application to from
// the given status.
func AllowedTargets(role Role, from models.ApplicationStatus) []models.ApplicationStatus {
	targets := transitions[role][from]
	out := make([]models.ApplicationStatus, len(targets))
	copy(out, targets)
	return out
}
