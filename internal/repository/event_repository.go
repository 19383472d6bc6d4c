package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatsupply/ticketing-backend/internal/model"
)

// EventRepo manages persistence for events.  Events are read-only from
// the checkout flow's perspective; mutations happen through the
// promoter-facing handlers.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, promoter_id, name, description, venue, timezone, slug,
	start_date, end_date, publish_date, status, created_at, updated_at`

type eventRowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row eventRowScanner) (*model.Event, error) {
	var (
		e                   model.Event
		venue, slug, descr  sql.NullString
		start, end, publish sql.NullTime
	)
	err := row.Scan(
		&e.ID, &e.PromoterID, &e.Name, &descr, &venue, &e.Timezone, &slug,
		&start, &end, &publish, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Description = descr.String
	e.Venue = venue.String
	e.Slug = slug.String
	if start.Valid {
		t := start.Time
		e.StartDate = &t
	}
	if end.Valid {
		t := end.Time
		e.EndDate = &t
	}
	if publish.Valid {
		t := publish.Time
		e.PublishDate = &t
	}
	return &e, nil
}

// Create inserts a new event in draft status and populates the
// generated ID and DB default fields on the given model.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events
		(promoter_id, name, description, venue, timezone, slug, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		e.PromoterID, e.Name, e.Description, e.Venue, e.Timezone, e.Slug,
		e.StartDate, e.EndDate,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	created, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

// GetByID retrieves an event by its ID.  It returns ErrEventNotFound
// when no matching row exists.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetActiveTx retrieves an event inside an existing transaction,
// constrained to active status.  The checkout flow treats an event that
// is absent or not active the same way: not sellable, ErrEventNotFound.
func (r *EventRepo) GetActiveTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
	e, err := scanEvent(tx.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ? AND status = ?`,
		id, model.EventStatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// UpdateStatus transitions an event to the given status and stamps the
// publish date the first time it goes active.
func (r *EventRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	const q = `UPDATE events
		SET status = ?,
		    publish_date = IF(? = 'active' AND publish_date IS NULL, NOW(), publish_date),
		    updated_at = NOW()
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ListByPromoter returns all events owned by a promoter ordered by
// start date ascending.  When none exist it returns an empty slice.
func (r *EventRepo) ListByPromoter(ctx context.Context, promoterID uint64) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE promoter_id = ? ORDER BY start_date ASC`,
		promoterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListActive returns all active events for public browsing, ordered by
// start date ascending.
func (r *EventRepo) ListActive(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE status = ? ORDER BY start_date ASC`,
		model.EventStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
