package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/models"
	"jobmarket-workers/internal/search"
)

var (
	fixedTime          = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	applicationCols    = []string{"id", "job_posting_id", "applicant_profile_id", "status", "applied_at", "updated_at", "version"}
	applicationViewCol = []string{"id", "job_posting_id", "title", "company_name", "location", "job_type", "status", "applied_at", "updated_at",
		"applicant_profile_id", "name", "email", "resume_url", "additional_file_url", "version"}
	jobPostingCols = []string{"id", "employer_profile_id", "company_name", "title", "location", "job_type",
		"min_salary", "max_salary", "salary_currency", "description", "responsibilities", "qualifications", "experience_required",
		"skills", "status", "application_deadline", "created_at", "updated_at"}
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// ==========================
// Application Repository Tests
// ==========================

func TestApplicationRepository_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("FROM applications WHERE id").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(applicationCols).
			AddRow("app-1", "job-1", "ap-1", "VIEWED", fixedTime, fixedTime, 2))

	app, err := repo.FindByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusViewed, app.Status)
	assert.Equal(t, 2, app.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("FROM applications WHERE id").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestApplicationRepository_FindByJobAndApplicant_Absent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("WHERE job_posting_id = \\$1 AND applicant_profile_id = \\$2").
		WithArgs("job-1", "ap-1").
		WillReturnRows(sqlmock.NewRows(applicationCols))

	app, err := repo.FindByJobAndApplicant(context.Background(), "job-1", "ap-1")
	assert.NoError(t, err)
	assert.Nil(t, app)
}

func TestApplicationRepository_Insert_DuplicateIsConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uk_job_applicant"})

	err := repo.Insert(context.Background(), &models.Application{
		ID: "app-1", JobPostingID: "job-1", ApplicantProfileID: "ap-1",
		Status: models.ApplicationStatusSent, AppliedAt: fixedTime, UpdatedAt: fixedTime,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConflict))
	stdErr, _ := apperrors.AsStandardError(err)
	assert.False(t, stdErr.Retryable)
}

func TestApplicationRepository_Insert_StorageFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").WillReturnError(errors.New("connection reset"))

	err := repo.Insert(context.Background(), &models.Application{ID: "app-1"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnavailable))
}

func TestApplicationRepository_UpdateStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications").
		WithArgs("INTERVIEW", fixedTime, "app-1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM applications WHERE id").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(applicationCols).
			AddRow("app-1", "job-1", "ap-1", "INTERVIEW", fixedTime, fixedTime, 2))

	app, err := repo.UpdateStatus(context.Background(), "app-1", 1, models.ApplicationStatusInterview, fixedTime)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusInterview, app.Status)
	assert.Equal(t, 2, app.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_UpdateStatus_StaleVersion(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications").
		WithArgs("VIEWED", fixedTime, "app-1", 0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateStatus(context.Background(), "app-1", 0, models.ApplicationStatusViewed, fixedTime)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConflict))
	stdErr, _ := apperrors.AsStandardError(err)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_ListByJob(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepository(db)
	status := models.ApplicationStatusSent

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("job-1", "SENT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("LIMIT \\$3 OFFSET \\$4").
		WithArgs("job-1", "SENT", 2, 2).
		WillReturnRows(sqlmock.NewRows(applicationViewCol).
			AddRow("app-3", "job-1", "Go Engineer", "Acme", "Berlin", "FULL_TIME", "SENT", fixedTime, fixedTime,
				"ap-3", "Ada Lovelace", "ada@example.com", "", "", 0))

	views, total, err := repo.ListByJob(context.Background(), "job-1", &status, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, views, 1)
	assert.Equal(t, "Ada Lovelace", views[0].ApplicantName)
	assert.Equal(t, "Berlin", views[0].CompanyLocation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_ListByJob_EmptySkipsPageQuery(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	views, total, err := repo.ListByJob(context.Background(), "job-1", nil, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Job Posting Repository Tests
// ==========================

func jobPostingRow(rows *sqlmock.Rows, id string, minSalary, maxSalary interface{}) *sqlmock.Rows {
	return rows.AddRow(id, "ep-1", "Acme", "Go Engineer", "Berlin", "FULL_TIME",
		minSalary, maxSalary, "USD", "Build things", "", "", "3 years",
		"{Go,PostgreSQL}", "ACTIVE", nil, fixedTime, fixedTime)
}

func TestJobPostingRepository_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobPostingRepository(db)

	mock.ExpectQuery("WHERE j.id = \\$1").
		WithArgs("job-1").
		WillReturnRows(jobPostingRow(sqlmock.NewRows(jobPostingCols), "job-1", "40000.00", nil))

	p, err := repo.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.CompanyName)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, p.Skills)
	require.NotNil(t, p.MinSalary)
	assert.Equal(t, 40000.0, *p.MinSalary)
	assert.Nil(t, p.MaxSalary)
	assert.Nil(t, p.ApplicationDeadline)
}

func TestJobPostingRepository_Get_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobPostingRepository(db)

	mock.ExpectQuery("WHERE j.id = \\$1").WillReturnRows(sqlmock.NewRows(jobPostingCols))

	_, err := repo.Get(context.Background(), "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestJobPostingRepository_Search(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobPostingRepository(db)

	preds, err := search.Compose(search.Filters{MinSalary: ptr(50000)})
	require.NoError(t, err)
	q := search.Query{
		Predicates: preds,
		Sort:       search.Sort{Field: search.SortCreatedAt, Desc: true},
		Page:       search.Page{Index: 0, Size: 20},
	}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM job_postings j JOIN employer_profiles e").
		WithArgs("ACTIVE", 50000.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("ORDER BY j.created_at DESC NULLS LAST, j.id DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs("ACTIVE", 50000.0, 20, 0).
		WillReturnRows(jobPostingRow(sqlmock.NewRows(jobPostingCols), "job-1", "40000", "60000"))

	items, total, err := repo.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, 60000.0, *items[0].MaxSalary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobPostingRepository_Search_PageBeyondTotal(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobPostingRepository(db)

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	items, total, err := repo.Search(context.Background(), search.Query{
		Predicates: []search.Predicate{{Field: search.FieldStatus, Operator: search.OpEquals, Value: "ACTIVE"}},
		Page:       search.Page{Index: 3, Size: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr(v float64) *float64 { return &v }

// ==========================
// Identity Repository Tests
// ==========================

func TestIdentityRepository_Resolve(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIdentityRepository(db)

	mock.ExpectQuery("FROM users u").
		WithArgs("seeker@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "ap", "ep"}).AddRow("u-1", "ap-1", nil))

	identity, err := repo.Resolve(context.Background(), models.Principal{Email: " Seeker@Example.com "})
	require.NoError(t, err)
	assert.True(t, identity.IsApplicant())
	assert.False(t, identity.IsEmployer())
	assert.Equal(t, "ap-1", *identity.ApplicantProfileID)
}

func TestIdentityRepository_Resolve_UnknownUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIdentityRepository(db)

	mock.ExpectQuery("FROM users u").WillReturnRows(sqlmock.NewRows([]string{"id", "ap", "ep"}))

	identity, err := repo.Resolve(context.Background(), models.Principal{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.False(t, identity.IsApplicant())
	assert.False(t, identity.IsEmployer())
}

// ==========================
// Dashboard Repository Tests
// ==========================

func TestDashboardRepository_StatusCounts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDashboardRepository(db)

	mock.ExpectQuery("GROUP BY status").
		WithArgs("ap-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("SENT", 2).AddRow("OFFERED", 1))

	counts, err := repo.ApplicantStatusCounts(context.Background(), "ap-1")
	require.NoError(t, err)
	assert.Equal(t, []models.StatusCount{
		{Status: models.ApplicationStatusSent, Count: 2},
		{Status: models.ApplicationStatusOffered, Count: 1},
	}, counts)
}

func TestDashboardRepository_JobStats(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDashboardRepository(db)

	mock.ExpectQuery("LEFT JOIN applications a").
		WithArgs("ep-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "count"}).
			AddRow("job-2", "SRE", "DRAFT", 0).
			AddRow("job-1", "Go Engineer", "ACTIVE", 4))

	stats, err := repo.JobStats(context.Background(), "ep-1")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(0), stats[0].Applicants)
	assert.Equal(t, models.JobStatusActive, stats[1].Status)
}

// ==========================
// Notification Repository Tests
// ==========================

func TestNotificationRepository_Record(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectExec("INSERT INTO notification_log").
		WithArgs(sqlmock.AnyArg(), "app-1", "ada@example.com", "EMAIL", "application.status_changed", "sent", "msg-1", "2251799813685300").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &models.NotificationRecord{
		ApplicationID: "app-1",
		Recipient:     "ada@example.com",
		Channel:       models.ChannelEmail,
		Template:      "application.status_changed",
		Status:        "sent",
		ProviderID:    "msg-1",
		DeliveryKey:   "2251799813685300",
	}
	require.NoError(t, repo.Record(context.Background(), rec))
	assert.NotEmpty(t, rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_SentChannels(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT DISTINCT channel FROM notification_log").
		WithArgs("2251799813685300").
		WillReturnRows(sqlmock.NewRows([]string{"channel"}).AddRow("EMAIL"))

	sent, err := repo.SentChannels(context.Background(), "2251799813685300")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{models.ChannelEmail: true}, sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
