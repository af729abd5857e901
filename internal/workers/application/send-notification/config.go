// internal/workers/application/send-notification/config.go
package sendnotification

import (
	"time"

	"jobmarket-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	Timeout      time.Duration
}

func LoadConfig(cfg config.NotificationConfig) *Config {
	return &Config{
		EmailEnabled: cfg.Email.Enabled,
		SMSEnabled:   cfg.SMS.Enabled,
		FromEmail:    cfg.Email.FromEmail,
		Timeout:      30 * time.Second,
	}
}
