package lifecycle

import (
	"context"
	"time"

	"jobmarket-workers/internal/models"
)

// IdentityResolver maps an authenticated principal to the profiles it owns.
// An unknown principal resolves to an identity with no profiles.
type IdentityResolver interface {
	Resolve(ctx context.Context, principal models.Principal) (*models.ResolvedIdentity, error)
}

// JobPostingStore reads job postings. Get returns a NOT_FOUND error for
// unknown ids.
type JobPostingStore interface {
	Get(ctx context.Context, id string) (*models.JobPosting, error)
}

// ApplicationStore persists applications.
//
// Insert reports a duplicate (job, applicant) pair as CONFLICT. UpdateStatus
// applies only when the stored version equals expectedVersion and reports a
// lost race as a retryable CONFLICT. FindByJobAndApplicant returns nil, nil
// when there is no application.
type ApplicationStore interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindByJobAndApplicant(ctx context.Context, jobPostingID, applicantProfileID string) (*models.Application, error)
	Insert(ctx context.Context, app *models.Application) error
	UpdateStatus(ctx context.Context, id string, expectedVersion int, status models.ApplicationStatus, updatedAt time.Time) (*models.Application, error)
	View(ctx context.Context, id string) (*models.ApplicationView, error)
	ListByApplicant(ctx context.Context, applicantProfileID string) ([]models.ApplicationView, error)
	ListByJob(ctx context.Context, jobPostingID string, status *models.ApplicationStatus, limit, offset int) ([]models.ApplicationView, int64, error)
}

// EventPublisher delivers application events without blocking the caller.
// Delivery failures never reach the lifecycle operation.
type EventPublisher interface {
	Publish(ctx context.Context, event models.ApplicationEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.ApplicationEvent) {}
