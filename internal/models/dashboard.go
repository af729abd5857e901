package models

// SeekerDashboard aggregates one applicant's applications.
type SeekerDashboard struct {
	TotalApplications int64                       `json:"totalApplications"`
	StatusBreakdown   map[ApplicationStatus]int64 `json:"applicationStatusBreakdown"`
	RecentAppliedJobs []JobPostingSummary         `json:"recentAppliedJobs"`
}

// StatusCount is one row of a status histogram.
type StatusCount struct {
	Status ApplicationStatus `json:"status"`
	Count  int64             `json:"count"`
}

// JobApplicationStats is the applicant count for one owned posting.
type JobApplicationStats struct {
	JobPostingID string    `json:"jobPostingId"`
	Title        string    `json:"title"`
	Status       JobStatus `json:"status"`
	Applicants   int64     `json:"applicants"`
}

// EmployerDashboard aggregates an employer's postings and their applications.
type EmployerDashboard struct {
	TotalJobPostings  int64                 `json:"totalJobPostings"`
	ActiveJobs        int64                 `json:"activeJobs"`
	ClosedJobs        int64                 `json:"closedJobs"`
	DraftJobs         int64                 `json:"draftJobs"`
	TotalApplications int64                 `json:"totalApplications"`
	StatusCounts      []StatusCount         `json:"applicationStatusCounts"`
	JobStats          []JobApplicationStats `json:"jobWiseStats"`
}
