package sendnotification

import (
	"jobmarket-workers/internal/common/validation"
	"jobmarket-workers/internal/models"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicationId", "eventType"},
		Properties: map[string]validation.Property{
			"applicationId": {
				Type:      "string",
				MinLength: validation.Int(1),
				MaxLength: validation.Int(64),
			},
			"eventType": {
				Type:        "string",
				Description: "Application event that triggered the notification",
				Enum: []string{
					models.EventApplicationSubmitted,
					models.EventApplicationResubmitted,
					models.EventApplicationWithdrawn,
					models.EventApplicationStatus,
					models.EventApplicationViewed,
				},
			},
			"status": {
				Type:        "string",
				Description: "Status the application moved to",
				MaxLength:   validation.Int(32),
				Nullable:    true,
			},
		},
		AdditionalProperties: true,
	}
}
