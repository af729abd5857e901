package applicationdashboard

import "jobmarket-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"actorEmail", "role"},
		Properties: map[string]validation.Property{
			"actorEmail": {
				Type:      "string",
				MinLength: validation.Int(3),
				MaxLength: validation.Int(254),
			},
			"role": {
				Type:        "string",
				Description: "Which dashboard to build",
				Enum:        []string{RoleSeeker, RoleEmployer},
			},
		},
		AdditionalProperties: true,
	}
}
