package models

// Notification channels.
const (
	ChannelEmail = "EMAIL"
	ChannelSMS   = "SMS"
)

// NotificationRecord is one delivery attempt written to notification_log.
type NotificationRecord struct {
	ID            string `json:"id"`
	ApplicationID string `json:"applicationId"`
	Recipient     string `json:"recipient"`
	Channel       string `json:"channel"`
	Template      string `json:"template"`
	Status        string `json:"status"`
	ProviderID    string `json:"providerId,omitempty"`
	// DeliveryKey groups the attempts made for one notification task across
	// job retries.
	DeliveryKey string `json:"deliveryKey,omitempty"`
}

// NotificationTemplate is a subject/body pair with {{placeholder}} markers.
type NotificationTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NotificationRecipients is everything needed to address both parties of an
// application.
type NotificationRecipients struct {
	ApplicationID  string `json:"applicationId"`
	JobTitle       string `json:"jobTitle"`
	CompanyName    string `json:"companyName"`
	ApplicantName  string `json:"applicantName"`
	ApplicantEmail string `json:"applicantEmail"`
	ApplicantPhone string `json:"applicantPhone,omitempty"`
	EmployerName   string `json:"employerName"`
	EmployerEmail  string `json:"employerEmail"`
}
