package listapplicantapplications

import "jobmarket-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"actorEmail"},
		Properties: map[string]validation.Property{
			"actorEmail": {
				Type:        "string",
				Description: "Email of the job seeker",
				MinLength:   validation.Int(3),
				MaxLength:   validation.Int(254),
			},
		},
		AdditionalProperties: true,
	}
}
