package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/seatsupply/ticketing-backend/internal/model"
)

// TicketRepo provides persistence for tickets.  Tickets are created in
// a batch inside the checkout transaction and afterwards only change
// status (scanned at the door, or flipped to refunded together with
// their order).
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// BarcodeExistsTx reports whether a barcode is already taken within an
// event.  The barcode generator probes through this before settling on
// a token; the (event_id, barcode) unique constraint remains the
// authoritative guard at insert time.
func (r *TicketRepo) BarcodeExistsTx(ctx context.Context, tx *sql.Tx, eventID uint64, barcode string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM tickets WHERE event_id = ? AND barcode = ? LIMIT 1`,
		eventID, barcode).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertBatchTx inserts multiple ticket rows in a single statement
// within the provided transaction.  A violation of the
// uq_tickets_event_barcode constraint is reported as
// ErrDuplicateBarcode so the caller can regenerate barcodes and retry.
// Passing an empty slice has no effect and returns nil.
func (r *TicketRepo) InsertBatchTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets (order_id, offer_id, event_id, price, barcode, status) VALUES `
	args := make([]interface{}, 0, len(tickets)*6)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, t.OrderID, t.OfferID, t.EventID, t.Price, t.Barcode, t.Status)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		// MySQL error 1062: duplicate entry for a unique key.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateBarcode
		}
		return err
	}
	return nil
}

// FindByBarcode looks a ticket up by its event-scoped barcode.  It
// returns ErrTicketNotFound when no matching row exists.
func (r *TicketRepo) FindByBarcode(ctx context.Context, eventID uint64, barcode string) (*model.Ticket, error) {
	var (
		t       model.Ticket
		scanned sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, order_id, offer_id, event_id, price, barcode, status, scanned_at, created_at, updated_at
		 FROM tickets WHERE event_id = ? AND barcode = ?`,
		eventID, barcode).Scan(
		&t.ID, &t.OrderID, &t.OfferID, &t.EventID, &t.Price, &t.Barcode,
		&t.Status, &scanned, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if scanned.Valid {
		ts := scanned.Time
		t.ScannedAt = &ts
	}
	return &t, nil
}

// MarkUsed transitions an unused ticket to used and stamps scanned_at.
// The conditional WHERE serializes concurrent scans of the same
// barcode: the second scanner matches zero rows and gets ErrConflict.
func (r *TicketRepo) MarkUsed(ctx context.Context, eventID uint64, barcode string) error {
	const q = `UPDATE tickets
		SET status = ?, scanned_at = NOW(), updated_at = NOW()
		WHERE event_id = ? AND barcode = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q,
		model.TicketStatusUsed, eventID, barcode, model.TicketStatusUnused)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing barcode from an already-scanned one.
		if _, ferr := r.FindByBarcode(ctx, eventID, barcode); ferr != nil {
			return ferr
		}
		return ErrConflict
	}
	return nil
}
