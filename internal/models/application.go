package models

import (
	"strings"
	"time"
)

// ApplicationStatus is the lifecycle state of a job application.
type ApplicationStatus string

const (
	ApplicationStatusSent      ApplicationStatus = "SENT"
	ApplicationStatusViewed    ApplicationStatus = "VIEWED"
	ApplicationStatusInterview ApplicationStatus = "INTERVIEW"
	ApplicationStatusOffered   ApplicationStatus = "OFFERED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
	ApplicationStatusWithdrawn ApplicationStatus = "WITHDRAWN"
)

// ApplicationStatuses lists every status in lifecycle order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusSent,
	ApplicationStatusViewed,
	ApplicationStatusInterview,
	ApplicationStatusOffered,
	ApplicationStatusRejected,
	ApplicationStatusWithdrawn,
}

// ParseApplicationStatus accepts any casing and surrounding whitespace.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	candidate := ApplicationStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, status := range ApplicationStatuses {
		if status == candidate {
			return status, true
		}
	}
	return "", false
}

// IsFinal reports whether no party may change the status any more.
func (s ApplicationStatus) IsFinal() bool {
	return s == ApplicationStatusOffered || s == ApplicationStatusRejected
}

// Application is one applicant's application to one job posting. There is at
// most one per (JobPostingID, ApplicantProfileID); re-applying after a
// withdrawal reactivates the same row.
type Application struct {
	ID                 string            `json:"id"`
	JobPostingID       string            `json:"jobPostingId"`
	ApplicantProfileID string            `json:"applicantProfileId"`
	Status             ApplicationStatus `json:"status"`
	AppliedAt          time.Time         `json:"appliedAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
	Version            int               `json:"version"`
}

// ApplicationView is an application joined with its posting and applicant.
type ApplicationView struct {
	ID                 string            `json:"id"`
	JobPostingID       string            `json:"jobPostingId"`
	JobTitle           string            `json:"jobTitle"`
	CompanyName        string            `json:"companyName"`
	CompanyLocation    string            `json:"companyLocation"`
	JobType            JobType           `json:"jobType"`
	Status             ApplicationStatus `json:"status"`
	AppliedAt          time.Time         `json:"appliedAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
	ApplicantProfileID string            `json:"applicantId"`
	ApplicantName      string            `json:"applicantName"`
	ApplicantEmail     string            `json:"applicantEmail"`
	ResumeURL          string            `json:"resumeUrl,omitempty"`
	AdditionalFileURL  string            `json:"additionalFileUrl,omitempty"`
	Version            int               `json:"version"`
}

// ApplicationPage is one page of applications for a job posting.
type ApplicationPage struct {
	Items         []ApplicationView `json:"items"`
	Page          int               `json:"page"`
	PageSize      int               `json:"pageSize"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

// TotalPages is ceil(total / size), zero for an empty result.
// MaxResultWindow bounds offset+size for every paged read. It matches the
// Elasticsearch index.max_result_window default.
const MaxResultWindow = 10000

// WithinResultWindow reports whether page index of the given size ends at or
// before MaxResultWindow. size must be positive.
func WithinResultWindow(index, size int) bool {
	if index < 0 || size <= 0 || size > MaxResultWindow {
		return false
	}
	return index <= (MaxResultWindow-size)/size
}

func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
