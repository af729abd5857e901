package sendnotification

import (
	"fmt"
	"strings"

	"jobmarket-workers/internal/models"
)

var templates = map[string]models.NotificationTemplate{
	TypeNewApplication: {
		Subject: "New application for {{jobTitle}}",
		Body:    "Hello {{employerName}}, {{applicantName}} applied to {{jobTitle}} at {{companyName}}. Application: {{applicationId}}.",
	},
	TypeApplicationWithdrawn: {
		Subject: "Application withdrawn for {{jobTitle}}",
		Body:    "Hello {{employerName}}, {{applicantName}} withdrew their application to {{jobTitle}}.",
	},
	TypeStatusChanged: {
		Subject: "Your application to {{companyName}} was updated",
		Body:    "Hello {{applicantName}}, your application to {{jobTitle}} at {{companyName}} is now {{status}}.",
	},
	TypeOfferSMS: {
		Body: "{{companyName}} sent you an offer for {{jobTitle}}. Check your email for details.",
	},
}

// notificationType maps an application event to the template sent for it.
func notificationType(eventType string) (string, bool) {
	switch eventType {
	case models.EventApplicationSubmitted, models.EventApplicationResubmitted:
		return TypeNewApplication, true
	case models.EventApplicationWithdrawn:
		return TypeApplicationWithdrawn, true
	case models.EventApplicationStatus, models.EventApplicationViewed:
		return TypeStatusChanged, true
	default:
		return "", false
	}
}

// renderTemplate substitutes {{key}} markers and drops markers with no value.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
