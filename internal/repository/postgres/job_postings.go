package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/models"
	"jobmarket-workers/internal/search"
)

const jobPostingSelect = `
	SELECT j.id, j.employer_profile_id, e.company_name, j.title, j.location, j.job_type,
	       j.min_salary, j.max_salary, j.salary_currency, j.description,
	       COALESCE(j.responsibilities, ''), COALESCE(j.qualifications, ''), COALESCE(j.experience_required, ''),
	       j.skills, j.status, j.application_deadline, j.created_at, j.updated_at
	FROM job_postings j
	JOIN employer_profiles e ON e.id = j.employer_profile_id`

// JobPostingRepository reads job postings joined with the owning employer's
// company name. It also serves as the postgres search backend.
type JobPostingRepository struct {
	db *sql.DB
}

func NewJobPostingRepository(db *sql.DB) *JobPostingRepository {
	return &JobPostingRepository{db: db}
}

func scanJobPosting(row rowScanner) (*models.JobPosting, error) {
	var p models.JobPosting
	var jobType, status string
	var minSalary, maxSalary sql.NullFloat64
	var deadline sql.NullTime
	var skills pq.StringArray

	if err := row.Scan(&p.ID, &p.EmployerProfileID, &p.CompanyName, &p.Title, &p.Location, &jobType,
		&minSalary, &maxSalary, &p.SalaryCurrency, &p.Description,
		&p.Responsibilities, &p.Qualifications, &p.ExperienceRequired,
		&skills, &status, &deadline, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	p.JobType = models.JobType(jobType)
	p.Status = models.JobStatus(status)
	p.Skills = []string(skills)
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if minSalary.Valid {
		v := minSalary.Float64
		p.MinSalary = &v
	}
	if maxSalary.Valid {
		v := maxSalary.Float64
		p.MaxSalary = &v
	}
	if deadline.Valid {
		t := deadline.Time
		p.ApplicationDeadline = &t
	}
	return &p, nil
}

func (r *JobPostingRepository) Get(ctx context.Context, id string) (*models.JobPosting, error) {
	p, err := scanJobPosting(r.db.QueryRowContext(ctx, jobPostingSelect+` WHERE j.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("jobPosting", id)
	}
	if err != nil {
		return nil, storageError("get job posting", err)
	}
	return p, nil
}

// ListAfter returns up to limit postings with id greater than afterID, in id
// order. It drives batch re-indexing.
func (r *JobPostingRepository) ListAfter(ctx context.Context, afterID string, limit int) ([]models.JobPosting, error) {
	var rows *sql.Rows
	var err error
	if afterID == "" {
		rows, err = r.db.QueryContext(ctx, jobPostingSelect+` ORDER BY j.id LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, jobPostingSelect+` WHERE j.id > $1 ORDER BY j.id LIMIT $2`, afterID, limit)
	}
	if err != nil {
		return nil, storageError("list job postings", err)
	}
	defer rows.Close()

	var postings []models.JobPosting
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, storageError("list job postings", err)
		}
		postings = append(postings, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list job postings", err)
	}
	return postings, nil
}

func (r *JobPostingRepository) Name() string {
	return "postgres"
}

// Search runs a COUNT and a page query with the same rendered predicates.
func (r *JobPostingRepository) Search(ctx context.Context, q search.Query) ([]models.JobPostingSummary, int64, error) {
	where, args := search.RenderSQL(q.Predicates, 1)

	var total int64
	countQuery := `SELECT COUNT(*) FROM job_postings j JOIN employer_profiles e ON e.id = j.employer_profile_id WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, storageError("count job postings", err)
	}
	if total == 0 || q.Page.Offset() >= int(total) {
		return []models.JobPostingSummary{}, total, nil
	}

	n := len(args)
	pageQuery := fmt.Sprintf("%s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		jobPostingSelect, where, search.RenderSQLOrder(q.Sort), n+1, n+2)
	rows, err := r.db.QueryContext(ctx, pageQuery, append(args, q.Page.Size, q.Page.Offset())...)
	if err != nil {
		return nil, 0, storageError("search job postings", err)
	}
	defer rows.Close()

	items := []models.JobPostingSummary{}
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, 0, storageError("search job postings", err)
		}
		items = append(items, p.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageError("search job postings", err)
	}
	return items, total, nil
}
