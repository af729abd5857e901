package postgres

import (
	"context"
	"database/sql"

	"jobmarket-workers/internal/models"
)

// DashboardRepository runs the aggregate queries behind seeker and employer
// dashboards.
type DashboardRepository struct {
	db *sql.DB
}

func NewDashboardRepository(db *sql.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) ApplicantStatusCounts(ctx context.Context, applicantProfileID string) ([]models.StatusCount, error) {
	return r.statusCounts(ctx, "applicant status counts", `
		SELECT status, COUNT(*)
		FROM applications
		WHERE applicant_profile_id = $1
		GROUP BY status`, applicantProfileID)
}

func (r *DashboardRepository) EmployerStatusCounts(ctx context.Context, employerProfileID string) ([]models.StatusCount, error) {
	return r.statusCounts(ctx, "employer status counts", `
		SELECT a.status, COUNT(*)
		FROM applications a
		JOIN job_postings j ON j.id = a.job_posting_id
		WHERE j.employer_profile_id = $1
		GROUP BY a.status`, employerProfileID)
}

func (r *DashboardRepository) statusCounts(ctx context.Context, operation, query string, arg string) ([]models.StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, storageError(operation, err)
	}
	defer rows.Close()

	counts := []models.StatusCount{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, storageError(operation, err)
		}
		counts = append(counts, models.StatusCount{Status: models.ApplicationStatus(status), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(operation, err)
	}
	return counts, nil
}

// RecentAppliedJobs returns the postings an applicant most recently applied to.
func (r *DashboardRepository) RecentAppliedJobs(ctx context.Context, applicantProfileID string, limit int) ([]models.JobPostingSummary, error) {
	rows, err := r.db.QueryContext(ctx, jobPostingSelect+`
		JOIN applications a ON a.job_posting_id = j.id
		WHERE a.applicant_profile_id = $1
		ORDER BY a.applied_at DESC, a.id DESC
		LIMIT $2`, applicantProfileID, limit)
	if err != nil {
		return nil, storageError("recent applied jobs", err)
	}
	defer rows.Close()

	items := []models.JobPostingSummary{}
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, storageError("recent applied jobs", err)
		}
		items = append(items, p.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("recent applied jobs", err)
	}
	return items, nil
}

// PostingStatusCounts counts an employer's postings per posting status.
func (r *DashboardRepository) PostingStatusCounts(ctx context.Context, employerProfileID string) (map[models.JobStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM job_postings
		WHERE employer_profile_id = $1
		GROUP BY status`, employerProfileID)
	if err != nil {
		return nil, storageError("posting status counts", err)
	}
	defer rows.Close()

	counts := make(map[models.JobStatus]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, storageError("posting status counts", err)
		}
		counts[models.JobStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("posting status counts", err)
	}
	return counts, nil
}

// JobStats returns the applicant count for every posting the employer owns,
// newest posting first. Postings without applications report zero.
func (r *DashboardRepository) JobStats(ctx context.Context, employerProfileID string) ([]models.JobApplicationStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT j.id, j.title, j.status, COUNT(a.id)
		FROM job_postings j
		LEFT JOIN applications a ON a.job_posting_id = j.id
		WHERE j.employer_profile_id = $1
		GROUP BY j.id
		ORDER BY j.created_at DESC, j.id DESC`, employerProfileID)
	if err != nil {
		return nil, storageError("job stats", err)
	}
	defer rows.Close()

	stats := []models.JobApplicationStats{}
	for rows.Next() {
		var s models.JobApplicationStats
		var status string
		if err := rows.Scan(&s.JobPostingID, &s.Title, &status, &s.Applicants); err != nil {
			return nil, storageError("job stats", err)
		}
		s.Status = models.JobStatus(status)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("job stats", err)
	}
	return stats, nil
}
