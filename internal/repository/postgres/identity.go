package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"jobmarket-workers/internal/models"
)

// IdentityRepository resolves a principal's email to the profiles it owns.
type IdentityRepository struct {
	db *sql.DB
}

func NewIdentityRepository(db *sql.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Resolve returns an empty identity for an unknown email so callers report a
// missing profile rather than a missing user.
func (r *IdentityRepository) Resolve(ctx context.Context, principal models.Principal) (*models.ResolvedIdentity, error) {
	var userID string
	var applicantID, employerID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT u.id, ap.id, ep.id
		FROM users u
		LEFT JOIN applicant_profiles ap ON ap.user_id = u.id
		LEFT JOIN employer_profiles ep ON ep.user_id = u.id
		WHERE LOWER(u.email) = $1`, strings.ToLower(strings.TrimSpace(principal.Email))).
		Scan(&userID, &applicantID, &employerID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.ResolvedIdentity{}, nil
	}
	if err != nil {
		return nil, storageError("resolve identity", err)
	}

	identity := &models.ResolvedIdentity{UserID: userID}
	if applicantID.Valid {
		identity.ApplicantProfileID = &applicantID.String
	}
	if employerID.Valid {
		identity.EmployerProfileID = &employerID.String
	}
	return identity, nil
}
