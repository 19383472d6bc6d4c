// Package repository contains data access logic for the ticketing
// domain. This file holds the offer repository, which doubles as the
// inventory ledger: the remaining quantity of an offer is only ever
// decremented through ReserveTx, a single conditional UPDATE that the
// database serializes across concurrent checkouts.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatsupply/ticketing-backend/internal/model"
)

// OfferRepo manages persistence for offers.
type OfferRepo struct {
	db *sql.DB
}

// NewOfferRepo constructs an OfferRepo with the given DB handle.
func NewOfferRepo(db *sql.DB) *OfferRepo { return &OfferRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *OfferRepo) DB() *sql.DB { return r.db }

const offerColumns = `id, event_id, name, description, price, quantity,
	min_order_quantity, max_order_quantity, start_sale_date, end_sale_date,
	created_at, updated_at`

func scanOffer(row *sql.Row) (*model.Offer, error) {
	var (
		o          model.Offer
		start, end sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.EventID, &o.Name, &o.Description, &o.Price, &o.Quantity,
		&o.MinOrderQuantity, &o.MaxOrderQuantity, &start, &end,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	if start.Valid {
		t := start.Time
		o.StartSaleDate = &t
	}
	if end.Valid {
		t := end.Time
		o.EndSaleDate = &t
	}
	return &o, nil
}

// Create inserts a new offer and populates the generated ID and DB
// default fields on the given model.  Price is stored exactly as
// submitted; it is never adjusted on the way in.
func (r *OfferRepo) Create(ctx context.Context, o *model.Offer) error {
	const q = `INSERT INTO offers
		(event_id, name, description, price, quantity, min_order_quantity, max_order_quantity, start_sale_date, end_sale_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		o.EventID, o.Name, o.Description, o.Price, o.Quantity,
		o.MinOrderQuantity, o.MaxOrderQuantity, o.StartSaleDate, o.EndSaleDate,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	created, err := r.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	*o = *created
	return nil
}

// GetByID retrieves an offer by its ID.  It returns ErrOfferNotFound
// when no matching row exists.
func (r *OfferRepo) GetByID(ctx context.Context, id uint64) (*model.Offer, error) {
	return scanOffer(r.db.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = ?`, id))
}

// GetTx retrieves an offer inside an existing transaction.  The checkout
// flow uses this to re-read the remaining quantity after the transaction
// has started, guarding the race between pre-validation and commit.
func (r *OfferRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Offer, error) {
	return scanOffer(tx.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = ?`, id))
}

// ReserveTx atomically decrements the offer's remaining quantity by qty.
// The WHERE clause only matches rows with enough stock, so the database
// serializes concurrent reservations and the quantity column can never
// go negative.  A zero-row update means another checkout got there
// first; it is reported as ErrInsufficientInventory and the caller must
// abort its transaction.
func (r *OfferRepo) ReserveTx(ctx context.Context, tx *sql.Tx, offerID uint64, qty int) error {
	const q = `UPDATE offers
		SET quantity = quantity - ?, updated_at = NOW()
		WHERE id = ? AND quantity >= ?`
	res, err := tx.ExecContext(ctx, q, qty, offerID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientInventory
	}
	return nil
}

// ListByEvent returns all offers for an event ordered by creation time.
// When no offers exist it returns an empty slice and nil error.
func (r *OfferRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Offer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE event_id = ? ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Offer
	for rows.Next() {
		var (
			o          model.Offer
			start, end sql.NullTime
		)
		if err := rows.Scan(
			&o.ID, &o.EventID, &o.Name, &o.Description, &o.Price, &o.Quantity,
			&o.MinOrderQuantity, &o.MaxOrderQuantity, &start, &end,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if start.Valid {
			t := start.Time
			o.StartSaleDate = &t
		}
		if end.Valid {
			t := end.Time
			o.EndSaleDate = &t
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
