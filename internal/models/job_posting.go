package models

import (
	"strings"
	"time"
)

type JobStatus string

const (
	JobStatusActive JobStatus = "ACTIVE"
	JobStatusClosed JobStatus = "CLOSED"
	JobStatusDraft  JobStatus = "DRAFT"
)

type JobType string

const (
	JobTypeFullTime   JobType = "FULL_TIME"
	JobTypePartTime   JobType = "PART_TIME"
	JobTypeContract   JobType = "CONTRACT"
	JobTypeInternship JobType = "INTERNSHIP"
	JobTypeFreelance  JobType = "FREELANCE"
)

var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeFreelance}

// ParseJobType accepts any casing and surrounding whitespace.
func ParseJobType(s string) (JobType, bool) {
	candidate := JobType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range JobTypes {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

// JobPosting is a published, draft or closed job offer owned by an employer.
type JobPosting struct {
	ID                  string     `json:"id"`
	EmployerProfileID   string     `json:"employerProfileId"`
	CompanyName         string     `json:"companyName"`
	Title               string     `json:"title"`
	Location            string     `json:"location"`
	JobType             JobType    `json:"jobType"`
	MinSalary           *float64   `json:"minSalary,omitempty"`
	MaxSalary           *float64   `json:"maxSalary,omitempty"`
	SalaryCurrency      string     `json:"salaryCurrency"`
	Description         string     `json:"description"`
	Responsibilities    string     `json:"responsibilities,omitempty"`
	Qualifications      string     `json:"qualifications,omitempty"`
	ExperienceRequired  string     `json:"experienceRequired,omitempty"`
	Skills              []string   `json:"skills"`
	Status              JobStatus  `json:"status"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// AcceptsApplicationsAt reports whether the deadline, if any, has not passed.
func (p *JobPosting) AcceptsApplicationsAt(now time.Time) bool {
	return p.ApplicationDeadline == nil || !p.ApplicationDeadline.Before(now)
}

// Summary projects the posting onto its search result shape.
func (p *JobPosting) Summary() JobPostingSummary {
	return JobPostingSummary{
		ID:                  p.ID,
		Title:               p.Title,
		CompanyName:         p.CompanyName,
		Location:            p.Location,
		JobType:             p.JobType,
		MinSalary:           p.MinSalary,
		MaxSalary:           p.MaxSalary,
		SalaryCurrency:      p.SalaryCurrency,
		ExperienceRequired:  p.ExperienceRequired,
		Skills:              p.Skills,
		Status:              p.Status,
		ApplicationDeadline: p.ApplicationDeadline,
		CreatedAt:           p.CreatedAt,
	}
}

type JobPostingSummary struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	CompanyName         string     `json:"companyName"`
	Location            string     `json:"location"`
	JobType             JobType    `json:"jobType"`
	MinSalary           *float64   `json:"minSalary,omitempty"`
	MaxSalary           *float64   `json:"maxSalary,omitempty"`
	SalaryCurrency      string     `json:"salaryCurrency"`
	ExperienceRequired  string     `json:"experienceRequired,omitempty"`
	Skills              []string   `json:"skills,omitempty"`
	Status              JobStatus  `json:"status"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

type JobPostingPage struct {
	Items         []JobPostingSummary `json:"items"`
	Page          int                 `json:"page"`
	PageSize      int                 `json:"pageSize"`
	TotalElements int64               `json:"totalElements"`
	TotalPages    int                 `json:"totalPages"`
}
