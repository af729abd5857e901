package events

import (
	"context"
	"encoding/json"
	"fmt"

	awsclient "jobmarket-workers/internal/common/aws"
	"jobmarket-workers/internal/models"
)

// SNSSink publishes events as JSON to an SNS topic. Subscribers can filter
// on the eventType and status message attributes.
type SNSSink struct {
	svc      awsclient.SNSService
	topicARN string
}

func NewSNSSink(svc awsclient.SNSService, topicARN string) *SNSSink {
	return &SNSSink{svc: svc, topicARN: topicARN}
}

func (s *SNSSink) Name() string { return "sns" }

func (s *SNSSink) Send(ctx context.Context, event models.ApplicationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = awsclient.PublishToTopic(ctx, s.svc, s.topicARN, "", string(body), map[string]string{
		"eventType": event.Type,
		"status":    string(event.To),
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", s.topicARN, err)
	}
	return nil
}

// MessagePublisher is the Zeebe message API used by ZeebeSink.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, name, correlationKey string, variables interface{}) error
}

// ZeebeSink publishes each event as a Zeebe message named after the event
// type and correlated by application id, so waiting process instances resume.
type ZeebeSink struct {
	client MessagePublisher
}

func NewZeebeSink(client MessagePublisher) *ZeebeSink {
	return &ZeebeSink{client: client}
}

func (s *ZeebeSink) Name() string { return "zeebe" }

func (s *ZeebeSink) Send(ctx context.Context, event models.ApplicationEvent) error {
	return s.client.PublishMessage(ctx, event.Type, event.ApplicationID, map[string]interface{}{
		"applicationId":     event.ApplicationID,
		"jobPostingId":      event.JobPostingID,
		"applicationStatus": string(event.To),
		"previousStatus":    string(event.From),
		"eventId":           event.ID,
	})
}
