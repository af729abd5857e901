package viewapplicationdetail

import "jobmarket-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"actorEmail", "applicationId"},
		Properties: map[string]validation.Property{
			"actorEmail": {
				Type:      "string",
				MinLength: validation.Int(3),
				MaxLength: validation.Int(254),
			},
			"applicationId": {
				Type:      "string",
				MinLength: validation.Int(1),
				MaxLength: validation.Int(64),
			},
		},
		AdditionalProperties: true,
	}
}
