// Package search composes optional job filters into backend-neutral
// predicates and renders them for PostgreSQL and Elasticsearch.
package search

import (
	"fmt"
	"strings"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/models"
)

// Field names a filterable attribute of a job posting.
type Field string

const (
	FieldStatus      Field = "status"
	FieldTitle       Field = "title"
	FieldLocation    Field = "location"
	FieldJobType     Field = "jobType"
	FieldMinSalary   Field = "minSalary"
	FieldMaxSalary   Field = "maxSalary"
	FieldSkills      Field = "skills"
	FieldCompanyName Field = "companyName"
)

type Operator string

const (
	OpEquals   Operator = "eq"
	OpContains Operator = "contains" // case-insensitive substring
	OpGTE      Operator = "gte"
	OpLTE      Operator = "lte"
	OpHas      Operator = "has" // exact membership in a list field
)

// Predicate is one AND-ed condition on a posting.
type Predicate struct {
	Field    Field       `json:"field"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value"`
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", p.Field, p.Operator, p.Value)
}

// Filters are the optional user-supplied search criteria. Blank strings and
// nil bounds are ignored.
type Filters struct {
	Keyword     string   `json:"keyword,omitempty"`
	Location    string   `json:"location,omitempty"`
	JobType     string   `json:"jobType,omitempty"`
	MinSalary   *float64 `json:"minSalary,omitempty"`
	MaxSalary   *float64 `json:"maxSalary,omitempty"`
	Skill       string   `json:"skill,omitempty"`
	CompanyName string   `json:"companyName,omitempty"`
}

// Compose turns filters into predicates. The first predicate is always
// status = ACTIVE; every present filter adds exactly one more.
func Compose(f Filters) ([]Predicate, error) {
	preds := []Predicate{{Field: FieldStatus, Operator: OpEquals, Value: string(models.JobStatusActive)}}

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		preds = append(preds, Predicate{Field: FieldTitle, Operator: OpContains, Value: kw})
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		preds = append(preds, Predicate{Field: FieldLocation, Operator: OpContains, Value: loc})
	}
	if raw := strings.TrimSpace(f.JobType); raw != "" {
		jt, ok := models.ParseJobType(raw)
		if !ok {
			return nil, apperrors.NewInvalidArgumentError("Unknown job type", fmt.Sprintf("jobType: %s", raw))
		}
		preds = append(preds, Predicate{Field: FieldJobType, Operator: OpEquals, Value: string(jt)})
	}

	// A seeker's minimum is satisfied by any posting that can pay at least that
	// much, and vice versa for the maximum.
	if f.MinSalary != nil {
		if *f.MinSalary < 0 {
			return nil, apperrors.NewInvalidArgumentError("minSalary must not be negative", fmt.Sprintf("minSalary: %v", *f.MinSalary))
		}
		preds = append(preds, Predicate{Field: FieldMaxSalary, Operator: OpGTE, Value: *f.MinSalary})
	}
	if f.MaxSalary != nil {
		if *f.MaxSalary < 0 {
			return nil, apperrors.NewInvalidArgumentError("maxSalary must not be negative", fmt.Sprintf("maxSalary: %v", *f.MaxSalary))
		}
		preds = append(preds, Predicate{Field: FieldMinSalary, Operator: OpLTE, Value: *f.MaxSalary})
	}

	if skill := strings.TrimSpace(f.Skill); skill != "" {
		preds = append(preds, Predicate{Field: FieldSkills, Operator: OpHas, Value: skill})
	}
	if company := strings.TrimSpace(f.CompanyName); company != "" {
		preds = append(preds, Predicate{Field: FieldCompanyName, Operator: OpContains, Value: company})
	}

	return preds, nil
}
