// Package elasticsearch indexes job postings and serves job search from the
// index.
package elasticsearch

import (
	"time"

	"jobmarket-workers/internal/models"
)

// JobPostingDocument is the indexed shape of a posting. Field names match
// the ones search.RenderElasticsearch filters on.
type JobPostingDocument struct {
	ID                  string     `json:"id"`
	EmployerProfileID   string     `json:"employer_profile_id"`
	CompanyName         string     `json:"company_name"`
	Title               string     `json:"title"`
	Location            string     `json:"location"`
	JobType             string     `json:"job_type"`
	MinSalary           *float64   `json:"min_salary,omitempty"`
	MaxSalary           *float64   `json:"max_salary,omitempty"`
	SalaryCurrency      string     `json:"salary_currency"`
	ExperienceRequired  string     `json:"experience_required,omitempty"`
	Skills              []string   `json:"skills"`
	Status              string     `json:"status"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func NewJobPostingDocument(p *models.JobPosting) JobPostingDocument {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return JobPostingDocument{
		ID:                  p.ID,
		EmployerProfileID:   p.EmployerProfileID,
		CompanyName:         p.CompanyName,
		Title:               p.Title,
		Location:            p.Location,
		JobType:             string(p.JobType),
		MinSalary:           p.MinSalary,
		MaxSalary:           p.MaxSalary,
		SalaryCurrency:      p.SalaryCurrency,
		ExperienceRequired:  p.ExperienceRequired,
		Skills:              skills,
		Status:              string(p.Status),
		ApplicationDeadline: p.ApplicationDeadline,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func (d JobPostingDocument) Summary() models.JobPostingSummary {
	return models.JobPostingSummary{
		ID:                  d.ID,
		Title:               d.Title,
		CompanyName:         d.CompanyName,
		Location:            d.Location,
		JobType:             models.JobType(d.JobType),
		MinSalary:           d.MinSalary,
		MaxSalary:           d.MaxSalary,
		SalaryCurrency:      d.SalaryCurrency,
		ExperienceRequired:  d.ExperienceRequired,
		Skills:              d.Skills,
		Status:              models.JobStatus(d.Status),
		ApplicationDeadline: d.ApplicationDeadline,
		CreatedAt:           d.CreatedAt,
	}
}

// IndexMapping is the create-index body for the postings index.
var IndexMapping = []byte(`{
  "mappings": {
    "properties": {
      "id":                   {"type": "keyword"},
      "employer_profile_id":  {"type": "keyword"},
      "company_name":         {"type": "text", "fields": {"keyword": {"type": "keyword", "ignore_above": 256}, "pattern": {"type": "wildcard"}}},
      "title":                {"type": "text", "fields": {"keyword": {"type": "keyword", "ignore_above": 256}, "pattern": {"type": "wildcard"}}},
      "location":             {"type": "text", "fields": {"keyword": {"type": "keyword", "ignore_above": 256}, "pattern": {"type": "wildcard"}}},
      "job_type":             {"type": "keyword"},
      "min_salary":           {"type": "double"},
      "max_salary":           {"type": "double"},
      "salary_currency":      {"type": "keyword"},
      "experience_required":  {"type": "text"},
      "skills":               {"type": "keyword"},
      "status":               {"type": "keyword"},
      "application_deadline": {"type": "date"},
      "created_at":           {"type": "date"},
      "updated_at":           {"type": "date"}
    }
  }
}`)
