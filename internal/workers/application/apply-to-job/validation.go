package applytojob

import "jobmarket-workers/internal/common/validation"

// GetInputSchema accepts extra process variables; only the listed ones are read.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"actorEmail", "jobPostingId"},
		Properties: map[string]validation.Property{
			"actorEmail": {
				Type:        "string",
				Description: "Email of the authenticated job seeker",
				MinLength:   validation.Int(3),
				MaxLength:   validation.Int(254),
			},
			"jobPostingId": {
				Type:        "string",
				Description: "Job posting to apply to",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(64),
			},
		},
		AdditionalProperties: true,
	}
}
