package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatsupply/ticketing-backend/internal/model"
)

// OrderRepo provides persistence for orders.  Orders are only ever
// created inside the checkout transaction; the repository exposes no
// way to mutate one after commit apart from the refund flag.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, event_id, user_id, first_name, last_name, email,
	mobile_number, charge_id, is_refunded, created_at, updated_at`

// CreateTx inserts a new order within the scope of an existing
// transaction.  It populates the generated ID and DB default fields on
// the provided model and returns any error from the database.  The
// caller must commit or roll back the transaction.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders
		(event_id, user_id, first_name, last_name, email, mobile_number, charge_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		o.EventID, o.UserID, o.FirstName, o.LastName, o.Email, o.MobileNumber, o.ChargeID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	return tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, o.ID).Scan(
		&o.ID, &o.EventID, &o.UserID, &o.FirstName, &o.LastName, &o.Email,
		&o.MobileNumber, &o.ChargeID, &o.IsRefunded, &o.CreatedAt, &o.UpdatedAt,
	)
}

// GetByID retrieves an order without its tickets.  It returns
// ErrOrderNotFound when no matching row exists.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id).Scan(
		&o.ID, &o.EventID, &o.UserID, &o.FirstName, &o.LastName, &o.Email,
		&o.MobileNumber, &o.ChargeID, &o.IsRefunded, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// GetWithTickets loads an order together with all of its tickets.  The
// checkout flow returns its result through this method so the caller
// always sees the committed rows.
func (r *OrderRepo) GetWithTickets(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, offer_id, event_id, price, barcode, status, scanned_at, created_at, updated_at
		 FROM tickets WHERE order_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t       model.Ticket
			scanned sql.NullTime
		)
		if err := rows.Scan(
			&t.ID, &t.OrderID, &t.OfferID, &t.EventID, &t.Price, &t.Barcode,
			&t.Status, &scanned, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if scanned.Valid {
			ts := scanned.Time
			t.ScannedAt = &ts
		}
		o.Tickets = append(o.Tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByUser returns all orders placed by a user, newest first.  The
// tickets are not loaded; use GetWithTickets for a single order.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.EventID, &o.UserID, &o.FirstName, &o.LastName, &o.Email,
			&o.MobileNumber, &o.ChargeID, &o.IsRefunded, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
