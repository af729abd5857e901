// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	awsclient "jobmarket-workers/internal/common/aws"
	"jobmarket-workers/internal/common/camunda"
	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/metrics"
	"jobmarket-workers/internal/common/validation"
	"jobmarket-workers/internal/models"
)

const (
	TaskType = "send-notification"
)

type RecipientStore interface {
	Recipients(ctx context.Context, applicationID string) (*models.NotificationRecipients, error)
}

// DeliveryLog records every attempt. SentChannels lets a retried job skip
// channels that already went out.
type DeliveryLog interface {
	Record(ctx context.Context, rec *models.NotificationRecord) error
	SentChannels(ctx context.Context, deliveryKey string) (map[string]bool, error)
}

type Handler struct {
	config     *Config
	recipients RecipientStore
	deliveries DeliveryLog
	sesClient  awsclient.SESService
	snsClient  awsclient.SNSService
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, recipients RecipientStore, deliveries DeliveryLog, sesClient awsclient.SESService, snsClient awsclient.SNSService, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		recipients: recipients,
		deliveries: deliveries,
		sesClient:  sesClient,
		snsClient:  snsClient,
		errHandler: apperrors.NewErrorHandler(scoped),
		logger:     scoped,
		now:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	output, err := h.process(job)
	camunda.Finish(context.Background(), client, job, TaskType, output, err, h.errHandler, h.logger)
}

func (h *Handler) process(job entities.Job) (*Output, error) {
	if result := validation.ValidateJSON(job.Variables, GetInputSchema()); !result.Valid {
		return nil, apperrors.NewInvalidArgumentError("Invalid notification input", strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		return nil, err
	}
	input.DeliveryKey = deliveryKey(job)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	return h.Execute(ctx, &input)
}

// Execute emails the party the event concerns: the employer for new and
// withdrawn applications, the applicant for status changes. Offers also go out
// by SMS. Delivery failures are retryable; channels already sent under the
// same delivery key are not sent again.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	nt, ok := notificationType(input.EventType)
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("Unsupported event type", fmt.Sprintf("eventType: %s", input.EventType))
	}

	output := &Output{
		NotificationID:   uuid.New().String(),
		NotificationType: nt,
		Status:           StatusDisabled,
		Channels:         []string{},
		SentAt:           h.now().UTC().Format(time.RFC3339),
	}

	rc, err := h.recipients.Recipients(ctx, input.ApplicationID)
	if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		h.logger.Warn("application not found, nothing to notify", map[string]interface{}{
			"applicationId": input.ApplicationID,
		})
		return output, nil
	}
	if err != nil {
		return nil, err
	}

	status, _ := models.ParseApplicationStatus(input.Status)
	data := map[string]interface{}{
		"applicationId": rc.ApplicationID,
		"jobTitle":      rc.JobTitle,
		"companyName":   rc.CompanyName,
		"applicantName": rc.ApplicantName,
		"employerName":  rc.EmployerName,
		"status":        strings.ToLower(string(status)),
	}

	sent := h.sentChannels(ctx, input.DeliveryKey)

	to := rc.EmployerEmail
	if nt == TypeStatusChanged {
		to = rc.ApplicantEmail
	}

	wantEmail := h.config.EmailEnabled && to != ""
	if wantEmail && sent[models.ChannelEmail] {
		output.Channels = append(output.Channels, models.ChannelEmail)
	} else if wantEmail {
		tmpl := templates[nt]
		subject := renderTemplate(tmpl.Subject, data)
		body := renderTemplate(tmpl.Body, data)

		messageID, err := awsclient.SendEmail(ctx, h.sesClient, h.config.FromEmail, to, subject, body)
		h.record(ctx, input.DeliveryKey, rc.ApplicationID, to, models.ChannelEmail, nt, messageID, err)
		if err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":         err,
				"applicationId": rc.ApplicationID,
			})
			return nil, apperrors.NewNotificationSendFailedError(models.ChannelEmail, err)
		}
		output.Channels = append(output.Channels, models.ChannelEmail)
	}

	wantSMS := h.config.SMSEnabled && nt == TypeStatusChanged && status == models.ApplicationStatusOffered && rc.ApplicantPhone != ""
	if wantSMS && sent[models.ChannelSMS] {
		output.Channels = append(output.Channels, models.ChannelSMS)
	} else if wantSMS {
		body := renderTemplate(templates[TypeOfferSMS].Body, data)

		messageID, err := awsclient.PublishSMS(ctx, h.snsClient, rc.ApplicantPhone, body)
		h.record(ctx, input.DeliveryKey, rc.ApplicationID, rc.ApplicantPhone, models.ChannelSMS, TypeOfferSMS, messageID, err)
		if err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":         err,
				"applicationId": rc.ApplicationID,
			})
			return nil, apperrors.NewNotificationSendFailedError(models.ChannelSMS, err)
		}
		output.Channels = append(output.Channels, models.ChannelSMS)
	}

	if len(output.Channels) > 0 {
		output.Status = StatusSent
	}
	return output, nil
}

// deliveryKey is stable across retries of the same service task.
func deliveryKey(job entities.Job) string {
	key := job.GetElementInstanceKey()
	if key == 0 {
		key = job.GetKey()
	}
	return strconv.FormatInt(key, 10)
}

// sentChannels reads the channels delivered by earlier attempts. A failed
// read sends everything again.
func (h *Handler) sentChannels(ctx context.Context, key string) map[string]bool {
	if key == "" {
		return nil
	}
	sent, err := h.deliveries.SentChannels(ctx, key)
	if err != nil {
		h.logger.Warn("failed to read delivery log", map[string]interface{}{
			"error":       err,
			"deliveryKey": key,
		})
		return nil
	}
	if len(sent) > 0 {
		h.logger.Info("skipping channels already delivered", map[string]interface{}{
			"deliveryKey": key,
			"channels":    len(sent),
		})
	}
	return sent
}

// record writes the delivery log. A failed write is logged, never returned.
func (h *Handler) record(ctx context.Context, deliveryKey, applicationID, recipient, channel, template, providerID string, sendErr error) {
	status := StatusSent
	if sendErr != nil {
		status = StatusFailed
	}
	metrics.NotificationsSent.WithLabelValues(channel, status).Inc()

	err := h.deliveries.Record(ctx, &models.NotificationRecord{
		ApplicationID: applicationID,
		Recipient:     recipient,
		Channel:       channel,
		Template:      template,
		Status:        status,
		ProviderID:    providerID,
		DeliveryKey:   deliveryKey,
	})
	if err != nil {
		h.logger.Warn("failed to record notification", map[string]interface{}{
			"error":         err,
			"applicationId": applicationID,
			"channel":       channel,
		})
	}
}
