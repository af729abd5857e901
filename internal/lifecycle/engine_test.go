package lifecycle

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/models"
)

var (
	seeker      = models.Principal{Email: "seeker@example.com"}
	otherSeeker = models.Principal{Email: "second@example.com"}
	employer    = models.Principal{Email: "Boss@Example.com"}
	rival       = models.Principal{Email: "rival@example.com"}
	nobody      = models.Principal{Email: "nobody@example.com"}
)

type fixture struct {
	engine       *Engine
	applications *memApplications
	postings     *fakePostings
	publisher    *MockPublisher
	now          time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	past := base.Add(-24 * time.Hour)
	future := base.Add(30 * 24 * time.Hour)

	postings := &fakePostings{byID: map[string]*models.JobPosting{
		"job-active":  {ID: "job-active", EmployerProfileID: "ep-1", Title: "Go Engineer", CompanyName: "Acme", Status: models.JobStatusActive, JobType: models.JobTypeFullTime, ApplicationDeadline: &future},
		"job-open":    {ID: "job-open", EmployerProfileID: "ep-1", Title: "SRE", CompanyName: "Acme", Status: models.JobStatusActive},
		"job-closed":  {ID: "job-closed", EmployerProfileID: "ep-1", Status: models.JobStatusClosed},
		"job-draft":   {ID: "job-draft", EmployerProfileID: "ep-1", Status: models.JobStatusDraft},
		"job-expired": {ID: "job-expired", EmployerProfileID: "ep-1", Status: models.JobStatusActive, ApplicationDeadline: &past},
		"job-rival":   {ID: "job-rival", EmployerProfileID: "ep-2", Status: models.JobStatusActive},
	}}

	identities := &fakeIdentities{byEmail: map[string]*models.ResolvedIdentity{
		"seeker@example.com": applicantIdentity("u-1", "ap-1"),
		"second@example.com": applicantIdentity("u-2", "ap-2"),
		"boss@example.com":   employerIdentity("u-3", "ep-1"),
		"rival@example.com":  employerIdentity("u-4", "ep-2"),
	}}

	apps := newMemApplications(postings)
	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return()

	f := &fixture{applications: apps, postings: postings, publisher: publisher, now: base}

	var mu sync.Mutex
	seq := 0
	tick := 0
	f.engine = NewEngine(identities, postings, apps, publisher, logger.NewNoOpLogger(),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}),
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
		WithPageSizes(2, 3),
	)
	return f
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.CodeOf(err), err.Error())
}

// ==========================
// Apply Tests
// ==========================

func TestApply_CreatesSentApplication(t *testing.T) {
	f := newFixture(t)

	view, err := f.engine.Apply(context.Background(), seeker, "job-active")
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusSent, view.Status)
	assert.Equal(t, "job-active", view.JobPostingID)
	assert.Equal(t, "ap-1", view.ApplicantProfileID)
	assert.Equal(t, "Go Engineer", view.JobTitle)
	assert.Equal(t, 0, view.Version)
	assert.Equal(t, []string{models.EventApplicationSubmitted}, f.publisher.eventTypes())
}

func TestApply_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)

	_, err = f.engine.Apply(ctx, seeker, "job-active")
	assertCode(t, err, apperrors.ErrCodeConflict)
	assert.Len(t, f.applications.byID, 1)
}

func TestApply_RejectsUnavailablePostings(t *testing.T) {
	tests := []struct {
		name string
		job  string
		code apperrors.ErrorCode
	}{
		{"closed", "job-closed", apperrors.ErrCodeInvalidState},
		{"draft", "job-draft", apperrors.ErrCodeInvalidState},
		{"deadline passed", "job-expired", apperrors.ErrCodeInvalidState},
		{"unknown", "job-missing", apperrors.ErrCodeNotFound},
		{"blank", "  ", apperrors.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.engine.Apply(context.Background(), seeker, tt.job)
			assertCode(t, err, tt.code)
			assert.Empty(t, f.applications.byID)
			assert.Empty(t, f.publisher.eventTypes())
		})
	}
}

func TestApply_ClosedMessage(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Apply(context.Background(), seeker, "job-closed")

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Contains(t, stdErr.Message, "closed")
}

func TestApply_RequiresSeekerProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Apply(ctx, nobody, "job-active")
	assertCode(t, err, apperrors.ErrCodePreconditionFailed)

	_, err = f.engine.Apply(ctx, employer, "job-active")
	assertCode(t, err, apperrors.ErrCodePreconditionFailed)

	_, err = f.engine.Apply(ctx, models.Principal{}, "job-active")
	assertCode(t, err, apperrors.ErrCodeInvalidArgument)
}

func TestApply_ReapplyAfterWithdrawReusesRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)

	_, err = f.engine.Withdraw(ctx, seeker, first.ID)
	require.NoError(t, err)

	again, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, models.ApplicationStatusSent, again.Status)
	assert.Equal(t, 2, again.Version)
	assert.Len(t, f.applications.byID, 1)
	assert.Equal(t, []string{
		models.EventApplicationSubmitted,
		models.EventApplicationWithdrawn,
		models.EventApplicationResubmitted,
	}, f.publisher.eventTypes())
}

func TestApply_AfterReviewIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)
	_, err = f.engine.AdvanceStatus(ctx, employer, app.ID, "INTERVIEW")
	require.NoError(t, err)

	_, err = f.engine.Apply(ctx, seeker, "job-active")
	assertCode(t, err, apperrors.ErrCodeConflict)
}

// ==========================
// Withdraw Tests
// ==========================

func TestWithdraw_FromSentAndViewed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)
	out, err := f.engine.Withdraw(ctx, seeker, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusWithdrawn, out.Status)

	viewed, err := f.engine.Apply(ctx, seeker, "job-open")
	require.NoError(t, err)
	_, err = f.engine.ViewDetail(ctx, employer, viewed.ID)
	require.NoError(t, err)
	out, err = f.engine.Withdraw(ctx, seeker, viewed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusWithdrawn, out.Status)
}

func TestWithdraw_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)

	_, err = f.engine.Withdraw(ctx, otherSeeker, app.ID)
	assertCode(t, err, apperrors.ErrCodeForbidden)

	_, err = f.engine.Withdraw(ctx, seeker, "missing")
	assertCode(t, err, apperrors.ErrCodeNotFound)

	_, err = f.engine.Withdraw(ctx, seeker, app.ID)
	require.NoError(t, err)
	_, err = f.engine.Withdraw(ctx, seeker, app.ID)
	assertCode(t, err, apperrors.ErrCodeInvalidState)
}

func TestWithdraw_AfterInterviewIsInvalidState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)
	_, err = f.engine.AdvanceStatus(ctx, employer, app.ID, "INTERVIEW")
	require.NoError(t, err)

	_, err = f.engine.Withdraw(ctx, seeker, app.ID)
	assertCode(t, err, apperrors.ErrCodeInvalidState)

	stored, _ := f.applications.FindByID(ctx, app.ID)
	assert.Equal(t, models.ApplicationStatusInterview, stored.Status)
}

// ==========================
// AdvanceStatus Tests
// ==========================

func TestLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusSent, app.Status)

	view, err := f.engine.AdvanceStatus(ctx, employer, app.ID, "VIEWED")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusViewed, view.Status)

	_, err = f.engine.AdvanceStatus(ctx, employer, app.ID, "OFFERED")
	assertCode(t, err, apperrors.ErrCodeInvalidState)

	view, err = f.engine.AdvanceStatus(ctx, employer, app.ID, "interview")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusInterview, view.Status)

	view, err = f.engine.AdvanceStatus(ctx, employer, app.ID, "OFFERED")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusOffered, view.Status)

	_, err = f.engine.Withdraw(ctx, seeker, app.ID)
	assertCode(t, err, apperrors.ErrCodeInvalidState)

	_, err = f.engine.AdvanceStatus(ctx, employer, app.ID, "REJECTED")
	assertCode(t, err, apperrors.ErrCodeInvalidState)

	assert.Equal(t, 3, view.Version)
}

func TestAdvanceStatus_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)

	tests := []struct {
		name   string
		actor  models.Principal
		target string
		code   apperrors.ErrorCode
	}{
		{"blank target", employer, "", apperrors.ErrCodeInvalidArgument},
		{"unknown target", employer, "HIRED", apperrors.ErrCodeInvalidArgument},
		{"not an employer", seeker, "VIEWED", apperrors.ErrCodePreconditionFailed},
		{"other employer", rival, "VIEWED", apperrors.ErrCodeForbidden},
		{"withdraw by employer", employer, "WITHDRAWN", apperrors.ErrCodeInvalidState},
		{"skip to offer", employer, "OFFERED", apperrors.ErrCodeInvalidState},
		{"reject unseen", employer, "REJECTED", apperrors.ErrCodeInvalidState},
		{"back to sent", employer, "SENT", apperrors.ErrCodeInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.AdvanceStatus(ctx, tt.actor, app.ID, tt.target)
			assertCode(t, err, tt.code)
		})
	}

	stored, _ := f.applications.FindByID(ctx, app.ID)
	assert.Equal(t, models.ApplicationStatusSent, stored.Status)
	assert.Equal(t, 0, stored.Version)
}

func TestAdvanceStatus_LostRaceIsRetryableConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)

	f.applications.failNextUpdate = true
	_, err = f.engine.AdvanceStatus(ctx, employer, app.ID, "INTERVIEW")
	assertCode(t, err, apperrors.ErrCodeConflict)

	stdErr, _ := apperrors.AsStandardError(err)
	assert.True(t, stdErr.Retryable)
}

func TestAdvanceStatus_ConcurrentWritersOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)
	snapshot, _ := f.applications.FindByID(ctx, app.ID)

	// both writers read version 0; only the first write may land
	_, err = f.applications.UpdateStatus(ctx, app.ID, snapshot.Version, models.ApplicationStatusInterview, f.now)
	require.NoError(t, err)
	_, err = f.applications.UpdateStatus(ctx, app.ID, snapshot.Version, models.ApplicationStatusViewed, f.now)
	assertCode(t, err, apperrors.ErrCodeConflict)

	stored, _ := f.applications.FindByID(ctx, app.ID)
	assert.Equal(t, models.ApplicationStatusInterview, stored.Status)
	assert.Equal(t, 1, stored.Version)
}

// ==========================
// ViewDetail Tests
// ==========================

func TestViewDetail_MarksSentAsViewedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)

	first, err := f.engine.ViewDetail(ctx, employer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusViewed, first.Status)
	assert.Equal(t, 1, first.Version)

	second, err := f.engine.ViewDetail(ctx, employer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusViewed, second.Status)
	assert.Equal(t, 1, second.Version)

	assert.Equal(t, []string{models.EventApplicationSubmitted, models.EventApplicationViewed}, f.publisher.eventTypes())
}

func TestViewDetail_LeavesReviewedStatusAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)
	_, err = f.engine.AdvanceStatus(ctx, employer, app.ID, "INTERVIEW")
	require.NoError(t, err)

	view, err := f.engine.ViewDetail(ctx, employer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusInterview, view.Status)
}

func TestViewDetail_ConflictReturnsStoredRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)

	f.applications.failNextUpdate = true
	view, err := f.engine.ViewDetail(ctx, employer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusSent, view.Status)
}

func TestViewDetail_Forbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)

	_, err = f.engine.ViewDetail(ctx, rival, app.ID)
	assertCode(t, err, apperrors.ErrCodeForbidden)

	stored, _ := f.applications.FindByID(ctx, app.ID)
	assert.Equal(t, models.ApplicationStatusSent, stored.Status)
}

// ==========================
// Listing Tests
// ==========================

func TestListForApplicant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.engine.ListForApplicant(ctx, seeker)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	a, err := f.engine.Apply(ctx, seeker, "job-active")
	require.NoError(t, err)
	b, err := f.engine.Apply(ctx, seeker, "job-open")
	require.NoError(t, err)
	_, err = f.engine.Apply(ctx, otherSeeker, "job-open")
	require.NoError(t, err)

	views, err := f.engine.ListForApplicant(ctx, seeker)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, b.ID, views[0].ID)
	assert.Equal(t, a.ID, views[1].ID)

	_, err = f.engine.ListForApplicant(ctx, employer)
	assertCode(t, err, apperrors.ErrCodePreconditionFailed)
}

func TestListForJob_PagingAndFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.engine.Apply(ctx, seeker, "job-open")
	require.NoError(t, err)
	_, err = f.engine.Apply(ctx, otherSeeker, "job-open")
	require.NoError(t, err)
	_, err = f.engine.ViewDetail(ctx, employer, first.ID)
	require.NoError(t, err)

	page, err := f.engine.ListForJob(ctx, employer, "job-open", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Items, 2)

	page, err = f.engine.ListForJob(ctx, employer, "job-open", "viewed", 0, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, page.PageSize)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)

	page, err = f.engine.ListForJob(ctx, employer, "job-open", "", 5, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 2, page.TotalPages)
}

func TestListForJob_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.ListForJob(ctx, employer, "job-open", "", -1, 10)
	assertCode(t, err, apperrors.ErrCodeInvalidArgument)

	_, err = f.engine.ListForJob(ctx, employer, "job-open", "", 0, -5)
	assertCode(t, err, apperrors.ErrCodeInvalidArgument)

	_, err = f.engine.ListForJob(ctx, employer, "job-open", "PENDING", 0, 10)
	assertCode(t, err, apperrors.ErrCodeInvalidArgument)

	_, err = f.engine.ListForJob(ctx, employer, "job-open", "", models.MaxResultWindow/10, 10)
	assertCode(t, err, apperrors.ErrCodeInvalidArgument)

	_, err = f.engine.ListForJob(ctx, employer, "job-open", "", math.MaxInt64/50, 100)
	assertCode(t, err, apperrors.ErrCodeInvalidArgument)

	_, err = f.engine.ListForJob(ctx, rival, "job-open", "", 0, 10)
	assertCode(t, err, apperrors.ErrCodeForbidden)

	_, err = f.engine.ListForJob(ctx, employer, "job-missing", "", 0, 10)
	assertCode(t, err, apperrors.ErrCodeNotFound)

	_, err = f.engine.ListForJob(ctx, seeker, "job-open", "", 0, 10)
	assertCode(t, err, apperrors.ErrCodePreconditionFailed)
}

func TestListForJob_RefreshesIdentityMissingEmployerProfile(t *testing.T) {
	f := newFixture(t)
	both := applicantIdentity("u-3", "ap-3")
	employerID := "ep-1"
	both.EmployerProfileID = &employerID
	identities := &staleIdentities{cached: applicantIdentity("u-3", "ap-3"), fresh: both}

	engine := NewEngine(identities, f.postings, f.applications, nil, logger.NewNoOpLogger())

	page, err := engine.ListForJob(context.Background(), employer, "job-open", "", 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Equal(t, 1, identities.refreshes)

	_, err = engine.ListForJob(context.Background(), employer, "job-open", "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, identities.refreshes)
}

func TestNewEngine_NilPublisher(t *testing.T) {
	postings := &fakePostings{byID: map[string]*models.JobPosting{
		"job-1": {ID: "job-1", EmployerProfileID: "ep-1", Status: models.JobStatusActive},
	}}
	identities := &fakeIdentities{byEmail: map[string]*models.ResolvedIdentity{
		"seeker@example.com": applicantIdentity("u-1", "ap-1"),
	}}
	engine := NewEngine(identities, postings, newMemApplications(postings), nil, logger.NewNoOpLogger())

	view, err := engine.Apply(context.Background(), seeker, "job-1")
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
}
