// Package dashboard builds the seeker and employer summary views. Each
// audience has a single aggregation: seekers are keyed by applicant profile,
// employers by the postings they own.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/observability"
	"jobmarket-workers/internal/identity"
	"jobmarket-workers/internal/models"
)

const RecentJobsLimit = 5

type IdentityResolver interface {
	Resolve(ctx context.Context, principal models.Principal) (*models.ResolvedIdentity, error)
}

type Store interface {
	ApplicantStatusCounts(ctx context.Context, applicantProfileID string) ([]models.StatusCount, error)
	RecentAppliedJobs(ctx context.Context, applicantProfileID string, limit int) ([]models.JobPostingSummary, error)
	PostingStatusCounts(ctx context.Context, employerProfileID string) (map[models.JobStatus]int64, error)
	EmployerStatusCounts(ctx context.Context, employerProfileID string) ([]models.StatusCount, error)
	JobStats(ctx context.Context, employerProfileID string) ([]models.JobApplicationStats, error)
}

type Service struct {
	identities IdentityResolver
	store      Store
	logger     logger.Logger
}

func NewService(identities IdentityResolver, store Store, log logger.Logger) *Service {
	return &Service{
		identities: identities,
		store:      store,
		logger:     log.WithFields(map[string]interface{}{"component": "dashboard"}),
	}
}

func (s *Service) resolve(ctx context.Context, actor models.Principal, has func(*models.ResolvedIdentity) bool) (*models.ResolvedIdentity, error) {
	if strings.TrimSpace(actor.Email) == "" {
		return nil, apperrors.NewInvalidArgumentError("Principal email is required", "")
	}
	return identity.ResolveWith(ctx, s.identities, actor, has)
}

// Seeker summarizes the caller's own applications.
func (s *Service) Seeker(ctx context.Context, actor models.Principal) (result *models.SeekerDashboard, err error) {
	ctx, span := observability.StartSpan(ctx, "dashboard.Seeker")
	defer func() { observability.EndSpan(span, err) }()

	resolved, err := s.resolve(ctx, actor, (*models.ResolvedIdentity).IsApplicant)
	if err != nil {
		return nil, err
	}
	if !resolved.IsApplicant() {
		return nil, apperrors.NewPreconditionFailedError("Please create your job seeker profile first",
			fmt.Sprintf("principal: %s", actor.Email))
	}
	applicantID := *resolved.ApplicantProfileID

	counts, err := s.store.ApplicantStatusCounts(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.RecentAppliedJobs(ctx, applicantID, RecentJobsLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []models.JobPostingSummary{}
	}

	breakdown := make(map[models.ApplicationStatus]int64, len(models.ApplicationStatuses))
	for _, st := range models.ApplicationStatuses {
		breakdown[st] = 0
	}
	var total int64
	for _, c := range counts {
		breakdown[c.Status] += c.Count
		total += c.Count
	}

	return &models.SeekerDashboard{
		TotalApplications: total,
		StatusBreakdown:   breakdown,
		RecentAppliedJobs: recent,
	}, nil
}

// Employer summarizes the caller's postings and the applications on them.
func (s *Service) Employer(ctx context.Context, actor models.Principal) (result *models.EmployerDashboard, err error) {
	ctx, span := observability.StartSpan(ctx, "dashboard.Employer")
	defer func() { observability.EndSpan(span, err) }()

	resolved, err := s.resolve(ctx, actor, (*models.ResolvedIdentity).IsEmployer)
	if err != nil {
		return nil, err
	}
	if !resolved.IsEmployer() {
		return nil, apperrors.NewPreconditionFailedError("Please create your employer profile first",
			fmt.Sprintf("principal: %s", actor.Email))
	}
	employerID := *resolved.EmployerProfileID

	postingCounts, err := s.store.PostingStatusCounts(ctx, employerID)
	if err != nil {
		return nil, err
	}
	statusCounts, err := s.store.EmployerStatusCounts(ctx, employerID)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.JobStats(ctx, employerID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []models.JobApplicationStats{}
	}

	d := &models.EmployerDashboard{
		ActiveJobs:   postingCounts[models.JobStatusActive],
		ClosedJobs:   postingCounts[models.JobStatusClosed],
		DraftJobs:    postingCounts[models.JobStatusDraft],
		StatusCounts: orderedCounts(statusCounts),
		JobStats:     stats,
	}
	for _, n := range postingCounts {
		d.TotalJobPostings += n
	}
	for _, c := range statusCounts {
		d.TotalApplications += c.Count
	}

	s.logger.Debug("employer dashboard built", map[string]interface{}{
		"employerProfileId": employerID,
		"postings":          d.TotalJobPostings,
		"applications":      d.TotalApplications,
	})
	return d, nil
}

// orderedCounts lists every status in lifecycle order, zero-filled.
func orderedCounts(counts []models.StatusCount) []models.StatusCount {
	byStatus := make(map[models.ApplicationStatus]int64, len(counts))
	for _, c := range counts {
		byStatus[c.Status] += c.Count
	}
	out := make([]models.StatusCount, 0, len(models.ApplicationStatuses))
	for _, st := range models.ApplicationStatuses {
		out = append(out, models.StatusCount{Status: st, Count: byStatus[st]})
	}
	return out
}
