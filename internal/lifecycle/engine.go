// Package lifecycle implements the job application state machine: applying,
// withdrawing, employer review and the listings built on top of it.
package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/metrics"
	"jobmarket-workers/internal/common/observability"
	"jobmarket-workers/internal/identity"
	"jobmarket-workers/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Engine runs lifecycle operations. Every operation takes the acting
// principal explicitly.
type Engine struct {
	identities   IdentityResolver
	postings     JobPostingStore
	applications ApplicationStore
	events       EventPublisher
	logger       logger.Logger

	now             func() time.Time
	newID           func() string
	defaultPageSize int
	maxPageSize     int
}

type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces uuid generation for new applications.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithPageSizes overrides the default and maximum page size for ListForJob.
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(e *Engine) {
		if defaultSize > 0 {
			e.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			e.maxPageSize = maxSize
		}
	}
}

func NewEngine(identities IdentityResolver, postings JobPostingStore, applications ApplicationStore, events EventPublisher, log logger.Logger, opts ...Option) *Engine {
	if events == nil {
		events = noopPublisher{}
	}
	e := &Engine{
		identities:      identities,
		postings:        postings,
		applications:    applications,
		events:          events,
		logger:          log.WithFields(map[string]interface{}{"component": "lifecycle"}),
		now:             func() time.Time { return time.Now().UTC() },
		newID:           func() string { return uuid.New().String() },
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ==========================
// Seeker operations
// ==========================

// Apply submits an application to an ACTIVE posting, or reactivates a
// withdrawn one.
func (e *Engine) Apply(ctx context.Context, actor models.Principal, jobPostingID string) (view *models.ApplicationView, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.Apply", attribute.String("jobPostingId", jobPostingID))
	defer func() { observability.EndSpan(span, err) }()

	applicantID, err := e.requireApplicant(ctx, actor)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(jobPostingID) == "" {
		return nil, apperrors.NewInvalidArgumentError("jobPostingId is required", "")
	}

	posting, err := e.postings.Get(ctx, jobPostingID)
	if err != nil {
		return nil, err
	}

	switch posting.Status {
	case models.JobStatusActive:
	case models.JobStatusDraft:
		return nil, apperrors.NewInvalidStateError("This job is not published yet", fmt.Sprintf("jobPostingId: %s", jobPostingID))
	case models.JobStatusClosed:
		return nil, apperrors.NewInvalidStateError("This job is closed and no longer accepting applications", fmt.Sprintf("jobPostingId: %s", jobPostingID))
	default:
		return nil, apperrors.NewInvalidStateError("This job is not accepting applications", fmt.Sprintf("jobPostingId: %s, status: %s", jobPostingID, posting.Status))
	}

	now := e.now()
	if !posting.AcceptsApplicationsAt(now) {
		return nil, apperrors.NewInvalidStateError("Application deadline has passed",
			fmt.Sprintf("jobPostingId: %s, deadline: %s", jobPostingID, posting.ApplicationDeadline.Format(time.RFC3339)))
	}

	existing, err := e.applications.FindByJobAndApplicant(ctx, jobPostingID, applicantID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		app := &models.Application{
			ID:                 e.newID(),
			JobPostingID:       jobPostingID,
			ApplicantProfileID: applicantID,
			Status:             models.ApplicationStatusSent,
			AppliedAt:          now,
			UpdatedAt:          now,
		}
		if err := e.applications.Insert(ctx, app); err != nil {
			e.countConflict("apply", err)
			return nil, err
		}
		metrics.ApplicationTransitions.WithLabelValues("NONE", string(models.ApplicationStatusSent)).Inc()
		e.publish(ctx, models.EventApplicationSubmitted, app, "", actor)
		e.logger.Info("application submitted", map[string]interface{}{
			"applicationId": app.ID,
			"jobPostingId":  jobPostingID,
		})
		return e.applications.View(ctx, app.ID)
	}

	if !CanTransition(RoleSeeker, existing.Status, models.ApplicationStatusSent) {
		return nil, apperrors.NewConflictError("You have already applied to this job",
			fmt.Sprintf("applicationId: %s, status: %s", existing.ID, existing.Status)).
			WithMetadata("applicationId", existing.ID)
	}

	updated, err := e.transition(ctx, "apply", existing, models.ApplicationStatusSent)
	if err != nil {
		return nil, err
	}
	e.publish(ctx, models.EventApplicationResubmitted, updated, existing.Status, actor)
	return e.applications.View(ctx, updated.ID)
}

// Withdraw moves the caller's own SENT or VIEWED application to WITHDRAWN.
func (e *Engine) Withdraw(ctx context.Context, actor models.Principal, applicationID string) (view *models.ApplicationView, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.Withdraw", attribute.String("applicationId", applicationID))
	defer func() { observability.EndSpan(span, err) }()

	applicantID, err := e.requireApplicant(ctx, actor)
	if err != nil {
		return nil, err
	}

	app, err := e.findApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantProfileID != applicantID {
		return nil, apperrors.NewForbiddenError("You are not allowed to withdraw this application",
			fmt.Sprintf("applicationId: %s", applicationID))
	}

	switch app.Status {
	case models.ApplicationStatusWithdrawn:
		return nil, apperrors.NewInvalidStateError("Application is already withdrawn", fmt.Sprintf("applicationId: %s", applicationID))
	case models.ApplicationStatusInterview, models.ApplicationStatusOffered, models.ApplicationStatusRejected:
		return nil, apperrors.NewInvalidStateError("You cannot withdraw a reviewed or finalized application",
			fmt.Sprintf("applicationId: %s, status: %s", applicationID, app.Status))
	}
	if !CanTransition(RoleSeeker, app.Status, models.ApplicationStatusWithdrawn) {
		return nil, apperrors.NewTransitionError(string(app.Status), string(models.ApplicationStatusWithdrawn))
	}

	updated, err := e.transition(ctx, "withdraw", app, models.ApplicationStatusWithdrawn)
	if err != nil {
		return nil, err
	}
	e.publish(ctx, models.EventApplicationWithdrawn, updated, app.Status, actor)
	return e.applications.View(ctx, updated.ID)
}

// ListForApplicant returns the caller's applications, newest first.
func (e *Engine) ListForApplicant(ctx context.Context, actor models.Principal) (views []models.ApplicationView, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.ListForApplicant")
	defer func() { observability.EndSpan(span, err) }()

	applicantID, err := e.requireApplicant(ctx, actor)
	if err != nil {
		return nil, err
	}

	views, err = e.applications.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []models.ApplicationView{}
	}
	return views, nil
}

// ==========================
// Employer operations
// ==========================

// AdvanceStatus moves an application on one of the caller's postings along
// the employer transition table.
func (e *Engine) AdvanceStatus(ctx context.Context, actor models.Principal, applicationID, target string) (view *models.ApplicationView, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.AdvanceStatus",
		attribute.String("applicationId", applicationID),
		attribute.String("target", target))
	defer func() { observability.EndSpan(span, err) }()

	if strings.TrimSpace(target) == "" {
		return nil, apperrors.NewInvalidArgumentError("Status is required", "")
	}
	to, ok := models.ParseApplicationStatus(target)
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("Unknown application status", fmt.Sprintf("status: %s", target))
	}

	employerID, err := e.requireEmployer(ctx, actor)
	if err != nil {
		return nil, err
	}

	app, err := e.ownedApplication(ctx, employerID, applicationID, "You are not allowed to update this application")
	if err != nil {
		return nil, err
	}

	if to == models.ApplicationStatusWithdrawn {
		return nil, apperrors.NewInvalidStateError("Only the applicant can withdraw an application",
			fmt.Sprintf("applicationId: %s", applicationID))
	}
	if app.Status.IsFinal() {
		return nil, apperrors.NewInvalidStateError("Application is finalized and cannot be modified",
			fmt.Sprintf("applicationId: %s, status: %s", applicationID, app.Status))
	}
	if !CanTransition(RoleEmployer, app.Status, to) {
		return nil, apperrors.NewTransitionError(string(app.Status), string(to)).
			WithMetadata("applicationId", applicationID)
	}

	updated, err := e.transition(ctx, "advance_status", app, to)
	if err != nil {
		return nil, err
	}
	e.publish(ctx, models.EventApplicationStatus, updated, app.Status, actor)
	return e.applications.View(ctx, updated.ID)
}

// ViewDetail returns an application on one of the caller's postings, marking
// a SENT application as VIEWED on first sight.
func (e *Engine) ViewDetail(ctx context.Context, actor models.Principal, applicationID string) (view *models.ApplicationView, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.ViewDetail", attribute.String("applicationId", applicationID))
	defer func() { observability.EndSpan(span, err) }()

	employerID, err := e.requireEmployer(ctx, actor)
	if err != nil {
		return nil, err
	}

	app, err := e.ownedApplication(ctx, employerID, applicationID, "You are not allowed to view this application")
	if err != nil {
		return nil, err
	}

	if app.Status == models.ApplicationStatusSent {
		updated, err := e.transition(ctx, "view_detail", app, models.ApplicationStatusViewed)
		switch {
		case err == nil:
			e.publish(ctx, models.EventApplicationViewed, updated, app.Status, actor)
		case apperrors.IsCode(err, apperrors.ErrCodeConflict):
			// someone else moved it first; return whatever is stored now
			e.logger.Debug("auto-view lost a concurrent update", map[string]interface{}{"applicationId": applicationID})
		default:
			return nil, err
		}
	}

	return e.applications.View(ctx, applicationID)
}

// ListForJob pages through applications on one of the caller's postings,
// newest first, optionally restricted to one status.
func (e *Engine) ListForJob(ctx context.Context, actor models.Principal, jobPostingID, statusFilter string, page, pageSize int) (result *models.ApplicationPage, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.ListForJob", attribute.String("jobPostingId", jobPostingID))
	defer func() { observability.EndSpan(span, err) }()

	if page < 0 {
		return nil, apperrors.NewInvalidArgumentError("page must not be negative", fmt.Sprintf("page: %d", page))
	}
	if pageSize < 0 {
		return nil, apperrors.NewInvalidArgumentError("pageSize must not be negative", fmt.Sprintf("pageSize: %d", pageSize))
	}

	var status *models.ApplicationStatus
	if strings.TrimSpace(statusFilter) != "" {
		parsed, ok := models.ParseApplicationStatus(statusFilter)
		if !ok {
			return nil, apperrors.NewInvalidArgumentError("Unknown application status", fmt.Sprintf("status: %s", statusFilter))
		}
		status = &parsed
	}

	employerID, err := e.requireEmployer(ctx, actor)
	if err != nil {
		return nil, err
	}

	posting, err := e.postings.Get(ctx, jobPostingID)
	if err != nil {
		return nil, err
	}
	if posting.EmployerProfileID != employerID {
		return nil, apperrors.NewForbiddenError("You are not allowed to view applications for this job",
			fmt.Sprintf("jobPostingId: %s", jobPostingID))
	}

	size := e.pageSize(pageSize)
	if !models.WithinResultWindow(page, size) {
		return nil, apperrors.NewInvalidArgumentError("page is beyond the result window",
			fmt.Sprintf("page: %d, pageSize: %d, max results: %d", page, size, models.MaxResultWindow))
	}
	items, total, err := e.applications.ListByJob(ctx, jobPostingID, status, size, page*size)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ApplicationView{}
	}

	return &models.ApplicationPage{
		Items:         items,
		Page:          page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    models.TotalPages(total, size),
	}, nil
}

// ==========================
// Helpers
// ==========================

func (e *Engine) resolve(ctx context.Context, actor models.Principal, has func(*models.ResolvedIdentity) bool) (*models.ResolvedIdentity, error) {
	if strings.TrimSpace(actor.Email) == "" {
		return nil, apperrors.NewInvalidArgumentError("Principal email is required", "")
	}
	return identity.ResolveWith(ctx, e.identities, actor, has)
}

func (e *Engine) requireApplicant(ctx context.Context, actor models.Principal) (string, error) {
	resolved, err := e.resolve(ctx, actor, (*models.ResolvedIdentity).IsApplicant)
	if err != nil {
		return "", err
	}
	if !resolved.IsApplicant() {
		return "", apperrors.NewPreconditionFailedError("Please create your job seeker profile first",
			fmt.Sprintf("principal: %s", actor.Email))
	}
	return *resolved.ApplicantProfileID, nil
}

func (e *Engine) requireEmployer(ctx context.Context, actor models.Principal) (string, error) {
	resolved, err := e.resolve(ctx, actor, (*models.ResolvedIdentity).IsEmployer)
	if err != nil {
		return "", err
	}
	if !resolved.IsEmployer() {
		return "", apperrors.NewPreconditionFailedError("Please create your employer profile first",
			fmt.Sprintf("principal: %s", actor.Email))
	}
	return *resolved.EmployerProfileID, nil
}

func (e *Engine) findApplication(ctx context.Context, applicationID string) (*models.Application, error) {
	if strings.TrimSpace(applicationID) == "" {
		return nil, apperrors.NewInvalidArgumentError("applicationId is required", "")
	}
	return e.applications.FindByID(ctx, applicationID)
}

// ownedApplication loads the application and checks that its posting belongs
// to employerID.
func (e *Engine) ownedApplication(ctx context.Context, employerID, applicationID, forbiddenMsg string) (*models.Application, error) {
	app, err := e.findApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	posting, err := e.postings.Get(ctx, app.JobPostingID)
	if err != nil {
		return nil, err
	}
	if posting.EmployerProfileID != employerID {
		return nil, apperrors.NewForbiddenError(forbiddenMsg, fmt.Sprintf("applicationId: %s", applicationID))
	}
	return app, nil
}

// transition persists one status change under the optimistic lock.
func (e *Engine) transition(ctx context.Context, operation string, app *models.Application, to models.ApplicationStatus) (*models.Application, error) {
	updated, err := e.applications.UpdateStatus(ctx, app.ID, app.Version, to, e.now())
	if err != nil {
		e.countConflict(operation, err)
		return nil, err
	}

	metrics.ApplicationTransitions.WithLabelValues(string(app.Status), string(to)).Inc()
	e.logger.Info("application status changed", map[string]interface{}{
		"applicationId": app.ID,
		"from":          string(app.Status),
		"to":            string(to),
		"operation":     operation,
	})
	return updated, nil
}

func (e *Engine) countConflict(operation string, err error) {
	if apperrors.IsCode(err, apperrors.ErrCodeConflict) {
		metrics.ApplicationConflicts.WithLabelValues(operation).Inc()
	}
}

func (e *Engine) publish(ctx context.Context, eventType string, app *models.Application, from models.ApplicationStatus, actor models.Principal) {
	e.events.Publish(ctx, models.ApplicationEvent{
		ID:                 e.newID(),
		Type:               eventType,
		ApplicationID:      app.ID,
		JobPostingID:       app.JobPostingID,
		ApplicantProfileID: app.ApplicantProfileID,
		From:               from,
		To:                 app.Status,
		Actor:              strings.ToLower(actor.Email),
		OccurredAt:         e.now(),
	})
}

func (e *Engine) pageSize(requested int) int {
	switch {
	case requested == 0:
		return e.defaultPageSize
	case requested > e.maxPageSize:
		return e.maxPageSize
	default:
		return requested
	}
}
