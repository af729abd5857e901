package listjobapplications

import (
	"jobmarket-workers/internal/common/validation"
	"jobmarket-workers/internal/models"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"actorEmail", "jobPostingId"},
		Properties: map[string]validation.Property{
			"actorEmail": {
				Type:        "string",
				Description: "Email of the employer owning the posting",
				MinLength:   validation.Int(3),
				MaxLength:   validation.Int(254),
			},
			"jobPostingId": {
				Type:      "string",
				MinLength: validation.Int(1),
				MaxLength: validation.Int(64),
			},
			"status": {
				Type:        "string",
				Description: "Optional status filter",
				MaxLength:   validation.Int(32),
				Nullable:    true,
			},
			"page": {
				Type:        "integer",
				Description: "Zero-based page index",
				Minimum:     validation.Float(0),
				Maximum:     validation.Float(models.MaxResultWindow - 1),
				Nullable:    true,
			},
			"pageSize": {
				Type:        "integer",
				Description: "Page size; zero selects the default",
				Minimum:     validation.Float(0),
				Nullable:    true,
			},
		},
		AdditionalProperties: true,
	}
}
