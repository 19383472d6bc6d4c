package repository

import (
	"context"
	"database/sql"

	"github.com/seatsupply/ticketing-backend/internal/model"
)

// PromoterRepo provides lookups on promoters and their memberships.
// Event and offer mutations consult IsMember before touching anything
// owned by a promoter; a missing membership row is a Forbidden, not a
// NotFound, so callers can tell the two apart.
type PromoterRepo struct {
	db *sql.DB
}

// NewPromoterRepo returns a new PromoterRepo bound to the given database.
func NewPromoterRepo(db *sql.DB) *PromoterRepo { return &PromoterRepo{db: db} }

// IsMember reports whether the user belongs to the promoter.
func (r *PromoterRepo) IsMember(ctx context.Context, userID, promoterID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM promoter_members WHERE user_id = ? AND promoter_id = ? LIMIT 1`,
		userID, promoterID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PromoterForUser returns the first promoter the user is a member of.
// Promoter-facing handlers use it to scope event creation when the
// client does not name a promoter explicitly.
func (r *PromoterRepo) PromoterForUser(ctx context.Context, userID uint64) (*model.Promoter, error) {
	var p model.Promoter
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.name, p.created_at, p.updated_at
		 FROM promoters p
		 JOIN promoter_members m ON m.promoter_id = p.id
		 WHERE m.user_id = ?
		 ORDER BY p.id ASC LIMIT 1`, userID).Scan(
		&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
