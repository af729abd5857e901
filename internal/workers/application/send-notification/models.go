// internal/workers/application/send-notification/models.go
package sendnotification

type Input struct {
	ApplicationID string `json:"applicationId"`
	EventType     string `json:"eventType"` // e.g. "application.submitted"
	Status        string `json:"status,omitempty"`
	// DeliveryKey identifies the notification task across job retries. Set
	// from the job, never from process variables.
	DeliveryKey string `json:"-"`
}

type Output struct {
	NotificationID   string   `json:"notificationId"`
	NotificationType string   `json:"notificationType"`
	Status           string   `json:"status"` // "sent", "failed", "disabled"
	Channels         []string `json:"channels"`
	SentAt           string   `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeNewApplication       = "new_application"
	TypeApplicationWithdrawn = "application_withdrawn"
	TypeStatusChanged        = "application_status_changed"
	TypeOfferSMS             = "application_offer_sms"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
