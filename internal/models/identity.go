package models

// Principal is the authenticated caller as asserted by the upstream process.
type Principal struct {
	Email string `json:"email"`
}

// ResolvedIdentity carries the profiles a principal owns. Either profile may
// be absent.
type ResolvedIdentity struct {
	UserID             string  `json:"userId"`
	ApplicantProfileID *string `json:"applicantProfileId,omitempty"`
	EmployerProfileID  *string `json:"employerProfileId,omitempty"`
}

func (r *ResolvedIdentity) IsApplicant() bool {
	return r != nil && r.ApplicantProfileID != nil && *r.ApplicantProfileID != ""
}

func (r *ResolvedIdentity) IsEmployer() bool {
	return r != nil && r.EmployerProfileID != nil && *r.EmployerProfileID != ""
}
