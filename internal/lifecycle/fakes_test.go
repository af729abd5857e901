package lifecycle

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/models"
)

// ==========================
// Identity fake
// ==========================

type fakeIdentities struct {
	byEmail map[string]*models.ResolvedIdentity
}

func (f *fakeIdentities) Resolve(_ context.Context, p models.Principal) (*models.ResolvedIdentity, error) {
	if id, ok := f.byEmail[strings.ToLower(p.Email)]; ok {
		return id, nil
	}
	return &models.ResolvedIdentity{}, nil
}

// staleIdentities serves an outdated identity until refreshed.
type staleIdentities struct {
	cached, fresh *models.ResolvedIdentity
	refreshes     int
}

func (s *staleIdentities) Resolve(context.Context, models.Principal) (*models.ResolvedIdentity, error) {
	return s.cached, nil
}

func (s *staleIdentities) Refresh(context.Context, models.Principal) (*models.ResolvedIdentity, error) {
	s.refreshes++
	s.cached = s.fresh
	return s.fresh, nil
}

func applicantIdentity(userID, profileID string) *models.ResolvedIdentity {
	return &models.ResolvedIdentity{UserID: userID, ApplicantProfileID: &profileID}
}

func employerIdentity(userID, profileID string) *models.ResolvedIdentity {
	return &models.ResolvedIdentity{UserID: userID, EmployerProfileID: &profileID}
}

// ==========================
// Posting fake
// ==========================

type fakePostings struct {
	byID map[string]*models.JobPosting
}

func (f *fakePostings) Get(_ context.Context, id string) (*models.JobPosting, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("jobPosting", id)
	}
	cp := *p
	return &cp, nil
}

// ==========================
// Application fake
// ==========================

type memApplications struct {
	mu       sync.Mutex
	byID     map[string]*models.Application
	postings *fakePostings
	names    map[string]string

	// failNextUpdate forces the next UpdateStatus to lose the version race.
	failNextUpdate bool
}

func newMemApplications(postings *fakePostings) *memApplications {
	return &memApplications{
		byID:     make(map[string]*models.Application),
		postings: postings,
		names:    make(map[string]string),
	}
}

func (m *memApplications) FindByID(_ context.Context, id string) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("application", id)
	}
	cp := *app
	return &cp, nil
}

func (m *memApplications) FindByJobAndApplicant(_ context.Context, jobID, applicantID string) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.byID {
		if app.JobPostingID == jobID && app.ApplicantProfileID == applicantID {
			cp := *app
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memApplications) Insert(_ context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.JobPostingID == app.JobPostingID && existing.ApplicantProfileID == app.ApplicantProfileID {
			return apperrors.NewConflictError("You have already applied to this job", "")
		}
	}
	cp := *app
	m.byID[app.ID] = &cp
	return nil
}

func (m *memApplications) UpdateStatus(_ context.Context, id string, expectedVersion int, status models.ApplicationStatus, updatedAt time.Time) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("application", id)
	}
	if m.failNextUpdate {
		m.failNextUpdate = false
		return nil, apperrors.NewConcurrentUpdateError("application", id)
	}
	if app.Version != expectedVersion {
		return nil, apperrors.NewConcurrentUpdateError("application", id)
	}
	app.Status = status
	app.UpdatedAt = updatedAt
	app.Version++
	cp := *app
	return &cp, nil
}

func (m *memApplications) View(ctx context.Context, id string) (*models.ApplicationView, error) {
	app, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.toView(app), nil
}

func (m *memApplications) toView(app *models.Application) *models.ApplicationView {
	v := &models.ApplicationView{
		ID:                 app.ID,
		JobPostingID:       app.JobPostingID,
		Status:             app.Status,
		AppliedAt:          app.AppliedAt,
		UpdatedAt:          app.UpdatedAt,
		ApplicantProfileID: app.ApplicantProfileID,
		ApplicantName:      m.names[app.ApplicantProfileID],
		Version:            app.Version,
	}
	if p, ok := m.postings.byID[app.JobPostingID]; ok {
		v.JobTitle = p.Title
		v.CompanyName = p.CompanyName
		v.JobType = p.JobType
	}
	return v
}

func (m *memApplications) ListByApplicant(_ context.Context, applicantID string) ([]models.ApplicationView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ApplicationView
	for _, app := range m.byID {
		if app.ApplicantProfileID == applicantID {
			out = append(out, *m.toView(app))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *memApplications) ListByJob(_ context.Context, jobID string, status *models.ApplicationStatus, limit, offset int) ([]models.ApplicationView, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.ApplicationView
	for _, app := range m.byID {
		if app.JobPostingID != jobID {
			continue
		}
		if status != nil && app.Status != *status {
			continue
		}
		all = append(all, *m.toView(app))
	}
	sortNewestFirst(all)

	total := int64(len(all))
	if offset >= len(all) {
		return []models.ApplicationView{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func sortNewestFirst(views []models.ApplicationView) {
	sort.Slice(views, func(i, j int) bool {
		if views[i].AppliedAt.Equal(views[j].AppliedAt) {
			return views[i].ID < views[j].ID
		}
		return views[i].AppliedAt.After(views[j].AppliedAt)
	})
}

// ==========================
// Publisher mock
// ==========================

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event models.ApplicationEvent) {
	m.Called(ctx, event)
}

func (m *MockPublisher) eventTypes() []string {
	var types []string
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			types = append(types, call.Arguments.Get(1).(models.ApplicationEvent).Type)
		}
	}
	return types
}
