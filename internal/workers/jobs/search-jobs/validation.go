package searchjobs

import (
	"jobmarket-workers/internal/common/validation"
	"jobmarket-workers/internal/models"
)

func GetInputSchema() validation.JSONSchema {
	text := func(desc string) validation.Property {
		return validation.Property{Type: "string", Description: desc, MaxLength: validation.Int(200), Nullable: true}
	}
	salary := func(desc string) validation.Property {
		return validation.Property{Type: "number", Description: desc, Minimum: validation.Float(0), Nullable: true}
	}

	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"filters": {
				Type:        "object",
				Description: "Optional search criteria; absent or blank values are ignored",
				Properties: map[string]validation.Property{
					"keyword":     text("Case-insensitive substring of the title"),
					"location":    text("Case-insensitive substring of the location"),
					"jobType":     text("FULL_TIME, PART_TIME, CONTRACT, INTERNSHIP or FREELANCE"),
					"skill":       text("Exact skill the posting must list"),
					"companyName": text("Case-insensitive substring of the company name"),
					"minSalary":   salary("Lowest acceptable pay"),
					"maxSalary":   salary("Highest expected pay"),
				},
				Nullable: true,
			},
			"page": {
				Type:        "integer",
				Description: "Zero-based page index",
				Minimum:     validation.Float(0),
				Maximum:     validation.Float(models.MaxResultWindow - 1),
				Nullable:    true,
			},
			"size": {
				Type:        "integer",
				Description: "Page size; zero selects the default, larger values are capped",
				Minimum:     validation.Float(0),
				Nullable:    true,
			},
			"sortBy":  text("Sort field, createdAt by default"),
			"sortDir": text("asc or desc"),
		},
		AdditionalProperties: true,
	}
}
