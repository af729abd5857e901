package indexjobposting

import "jobmarket-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"jobPostingId"},
		Properties: map[string]validation.Property{
			"jobPostingId": {
				Type:        "string",
				Description: "Posting that was created, edited or removed",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(64),
			},
		},
		AdditionalProperties: true,
	}
}
