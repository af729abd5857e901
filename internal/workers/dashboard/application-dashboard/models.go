package applicationdashboard

import "jobmarket-workers/internal/models"

// Dashboard audiences.
const (
	RoleSeeker   = "seeker"
	RoleEmployer = "employer"
)

type Input struct {
	ActorEmail string `json:"actorEmail"`
	Role       string `json:"role"`
}

// Output carries exactly one of the two dashboards.
type Output struct {
	Role     string                    `json:"role"`
	Seeker   *models.SeekerDashboard   `json:"seekerDashboard,omitempty"`
	Employer *models.EmployerDashboard `json:"employerDashboard,omitempty"`
}
