package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/models"
)

// NotificationRepository looks up notification recipients and writes the
// delivery log.
type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Recipients(ctx context.Context, applicationID string) (*models.NotificationRecipients, error) {
	var rc models.NotificationRecipients
	err := r.db.QueryRowContext(ctx, `
		SELECT a.id, j.title, e.company_name,
		       TRIM(p.first_name || ' ' || p.last_name), p.email, p.phone_number,
		       e.full_name, u.email
		FROM applications a
		JOIN job_postings j ON j.id = a.job_posting_id
		JOIN employer_profiles e ON e.id = j.employer_profile_id
		JOIN users u ON u.id = e.user_id
		JOIN applicant_profiles p ON p.id = a.applicant_profile_id
		WHERE a.id = $1`, applicationID).
		Scan(&rc.ApplicationID, &rc.JobTitle, &rc.CompanyName,
			&rc.ApplicantName, &rc.ApplicantEmail, &rc.ApplicantPhone,
			&rc.EmployerName, &rc.EmployerEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("application", applicationID)
	}
	if err != nil {
		return nil, storageError("load notification recipients", err)
	}
	return &rc, nil
}

// Record appends one delivery attempt. An empty ID is filled in.
func (r *NotificationRepository) Record(ctx context.Context, rec *models.NotificationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	var providerID sql.NullString
	if rec.ProviderID != "" {
		providerID = sql.NullString{String: rec.ProviderID, Valid: true}
	}

	var deliveryKey sql.NullString
	if rec.DeliveryKey != "" {
		deliveryKey = sql.NullString{String: rec.DeliveryKey, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_log (id, application_id, recipient, channel, template, status, provider_id, delivery_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.ApplicationID, rec.Recipient, rec.Channel, rec.Template, rec.Status, providerID, deliveryKey)
	if err != nil {
		return storageError("record notification", err)
	}
	return nil
}

// SentChannels returns the channels already delivered under deliveryKey.
func (r *NotificationRepository) SentChannels(ctx context.Context, deliveryKey string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT channel FROM notification_log
		WHERE delivery_key = $1 AND status = 'sent'`, deliveryKey)
	if err != nil {
		return nil, storageError("load sent channels", err)
	}
	defer rows.Close()

	sent := make(map[string]bool)
	for rows.Next() {
		var channel string
		if err := rows.Scan(&channel); err != nil {
			return nil, storageError("scan sent channel", err)
		}
		sent[channel] = true
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("load sent channels", err)
	}
	return sent, nil
}
