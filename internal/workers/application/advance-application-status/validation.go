package advanceapplicationstatus

import "jobmarket-workers/internal/common/validation"

// GetInputSchema leaves status as free text: casing is normalized and unknown
// values are rejected by the engine with a precise message.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"actorEmail", "applicationId", "status"},
		Properties: map[string]validation.Property{
			"actorEmail": {
				Type:        "string",
				Description: "Email of the employer reviewing the application",
				MinLength:   validation.Int(3),
				MaxLength:   validation.Int(254),
			},
			"applicationId": {
				Type:        "string",
				Description: "Application to update",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(64),
			},
			"status": {
				Type:        "string",
				Description: "Target status, e.g. VIEWED, INTERVIEW, OFFERED or REJECTED",
				MaxLength:   validation.Int(32),
			},
		},
		AdditionalProperties: true,
	}
}
