package camunda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "jobmarket-workers/internal/common/errors"
)

// DefaultMessageTTL keeps an application message buffered long enough for a
// process instance that has not reached its catch event yet.
const DefaultMessageTTL = 10 * time.Minute

type Client struct {
	client zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	MessageTTL             time.Duration
	RetryConfig            *RetryConfig
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  500 * time.Millisecond,
	MaxDelay:   5 * time.Second,
}

// NewClientWithConfig dials the gateway and fails unless the broker answers a
// topology request within ConnectionTimeout.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}
	if config.MessageTTL <= 0 {
		config.MessageTTL = DefaultMessageTTL
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}

	return &Client{client: zeebeClient, config: config}, nil
}

func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// PublishMessage publishes a message correlated by key, typically an
// application id, so a process waiting on a status change can resume.
func (c *Client) PublishMessage(ctx context.Context, name, correlationKey string, variables interface{}) error {
	return c.withRetry(ctx, "publish-message:"+name, func(ctx context.Context) error {
		cmd, err := c.client.NewPublishMessageCommand().
			MessageName(name).
			CorrelationKey(correlationKey).
			VariablesFromObject(variables)
		if err != nil {
			return apperrors.NewInvalidArgumentError("message variables are not serializable", err.Error())
		}
		if c.config.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
			defer cancel()
		}
		_, err = cmd.TimeToLive(c.config.MessageTTL).Send(ctx)
		return err
	})
}

// withRetry runs fn until it succeeds, returns a non-transient error or the
// retry budget runs out. Delays double from BaseDelay up to MaxDelay.
func (c *Client) withRetry(ctx context.Context, operation string, fn func(context.Context) error) error {
	rc := c.config.RetryConfig
	var err error

	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		var appErr *apperrors.StandardError
		if errors.As(err, &appErr) {
			return err
		}
		if !isTransient(err) || attempt >= rc.MaxRetries {
			return mapZeebeError(err, operation, attempt)
		}

		delay := rc.BaseDelay << attempt
		if delay > rc.MaxDelay {
			delay = rc.MaxDelay
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return apperrors.NewUnavailableError(operation, ctx.Err())
		}
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	}
	return false
}

func mapZeebeError(err error, operation string, attempt int) error {
	details := fmt.Sprintf("zeebe %s failed", operation)
	if attempt > 0 {
		details += fmt.Sprintf(" after %d retries", attempt)
	}
	details += ": " + err.Error()

	switch status.Code(err) {
	case codes.NotFound:
		return apperrors.NewNotFoundError("zeebe resource", operation)
	case codes.AlreadyExists:
		return apperrors.NewConflictError("Zeebe resource already exists", details)
	case codes.PermissionDenied, codes.Unauthenticated:
		return apperrors.NewForbiddenError("Zeebe rejected the request", details)
	case codes.InvalidArgument, codes.FailedPrecondition:
		return apperrors.NewInvalidArgumentError("Zeebe rejected the command", details)
	default:
		return apperrors.NewUnavailableError("zeebe:"+operation, errors.New(details))
	}
}

// HealthCheck requires at least one broker in the topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	topology, err := c.client.NewTopologyCommand().Send(ctx)
	if err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	if len(topology.GetBrokers()) == 0 {
		return errors.New("zeebe health check failed: no brokers in topology")
	}
	return nil
}
