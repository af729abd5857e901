package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/models"
)

const applicationColumns = `id, job_posting_id, applicant_profile_id, status, applied_at, updated_at, version`

const applicationViewSelect = `
	SELECT a.id, a.job_posting_id, j.title, e.company_name, e.location, j.job_type,
	       a.status, a.applied_at, a.updated_at,
	       a.applicant_profile_id, TRIM(p.first_name || ' ' || p.last_name), p.email,
	       COALESCE(p.resume_url, ''), COALESCE(p.additional_file_url, ''), a.version
	FROM applications a
	JOIN job_postings j ON j.id = a.job_posting_id
	JOIN employer_profiles e ON e.id = j.employer_profile_id
	JOIN applicant_profiles p ON p.id = a.applicant_profile_id`

// ApplicationRepository stores applications in the applications table.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var status string
	if err := row.Scan(&app.ID, &app.JobPostingID, &app.ApplicantProfileID, &status,
		&app.AppliedAt, &app.UpdatedAt, &app.Version); err != nil {
		return nil, err
	}
	app.Status = models.ApplicationStatus(status)
	return &app, nil
}

func scanApplicationView(row rowScanner) (*models.ApplicationView, error) {
	var v models.ApplicationView
	var jobType, status string
	if err := row.Scan(&v.ID, &v.JobPostingID, &v.JobTitle, &v.CompanyName, &v.CompanyLocation, &jobType,
		&status, &v.AppliedAt, &v.UpdatedAt,
		&v.ApplicantProfileID, &v.ApplicantName, &v.ApplicantEmail,
		&v.ResumeURL, &v.AdditionalFileURL, &v.Version); err != nil {
		return nil, err
	}
	v.JobType = models.JobType(jobType)
	v.Status = models.ApplicationStatus(status)
	return &v, nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("application", id)
	}
	if err != nil {
		return nil, storageError("find application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) FindByJobAndApplicant(ctx context.Context, jobPostingID, applicantProfileID string) (*models.Application, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE job_posting_id = $1 AND applicant_profile_id = $2`, jobPostingID, applicantProfileID)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("find application by job and applicant", err)
	}
	return app, nil
}

// Insert relies on uk_job_applicant to serialize concurrent applies.
func (r *ApplicationRepository) Insert(ctx context.Context, app *models.Application) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		app.ID, app.JobPostingID, app.ApplicantProfileID, string(app.Status),
		app.AppliedAt, app.UpdatedAt, app.Version)
	if err != nil {
		err = storageError("insert application", err)
		if apperrors.IsCode(err, apperrors.ErrCodeConflict) {
			return apperrors.NewConflictError("You have already applied to this job",
				fmt.Sprintf("jobPostingId: %s, applicantProfileId: %s", app.JobPostingID, app.ApplicantProfileID))
		}
		return err
	}
	return nil
}

// UpdateStatus writes the new status only if the row still has
// expectedVersion, bumping the version by one.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int, status models.ApplicationStatus, updatedAt time.Time) (*models.Application, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $1, updated_at = $2, version = version + 1
		WHERE id = $3 AND version = $4`,
		string(status), updatedAt, id, expectedVersion)
	if err != nil {
		return nil, storageError("update application status", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, storageError("update application status", err)
	}
	if affected == 0 {
		return nil, apperrors.NewConcurrentUpdateError("application", id).
			WithMetadata("expectedVersion", expectedVersion)
	}

	return r.FindByID(ctx, id)
}

func (r *ApplicationRepository) View(ctx context.Context, id string) (*models.ApplicationView, error) {
	row := r.db.QueryRowContext(ctx, applicationViewSelect+` WHERE a.id = $1`, id)
	v, err := scanApplicationView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("application", id)
	}
	if err != nil {
		return nil, storageError("load application view", err)
	}
	return v, nil
}

func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantProfileID string) ([]models.ApplicationView, error) {
	rows, err := r.db.QueryContext(ctx, applicationViewSelect+`
		WHERE a.applicant_profile_id = $1
		ORDER BY a.applied_at DESC, a.id DESC`, applicantProfileID)
	if err != nil {
		return nil, storageError("list applications by applicant", err)
	}
	defer rows.Close()

	return collectViews(rows, "list applications by applicant")
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobPostingID string, status *models.ApplicationStatus, limit, offset int) ([]models.ApplicationView, int64, error) {
	where := ` WHERE a.job_posting_id = $1`
	args := []interface{}{jobPostingID}
	if status != nil {
		where += ` AND a.status = $2`
		args = append(args, string(*status))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications a`+where, args...).Scan(&total); err != nil {
		return nil, 0, storageError("count applications by job", err)
	}
	if total == 0 {
		return []models.ApplicationView{}, 0, nil
	}

	n := len(args)
	query := fmt.Sprintf("%s%s ORDER BY a.applied_at DESC, a.id DESC LIMIT $%d OFFSET $%d", applicationViewSelect, where, n+1, n+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, storageError("list applications by job", err)
	}
	defer rows.Close()

	views, err := collectViews(rows, "list applications by job")
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func collectViews(rows *sql.Rows, operation string) ([]models.ApplicationView, error) {
	views := []models.ApplicationView{}
	for rows.Next() {
		v, err := scanApplicationView(rows)
		if err != nil {
			return nil, storageError(operation, err)
		}
		views = append(views, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(operation, err)
	}
	return views, nil
}
