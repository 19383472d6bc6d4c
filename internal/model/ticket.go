package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket statuses as stored in the `tickets.status` enum column.
const (
	TicketStatusUnused   = "unused"
	TicketStatusUsed     = "used"
	TicketStatusRefunded = "refunded"
)

// Ticket is a single admission unit.  Tickets are created in a batch
// sized to the purchased quantity but each one is an independent
// sellable unit.  The price is copied from the offer at sale time, and
// the barcode is unique within the ticket's event (enforced by the
// uq_tickets_event_barcode constraint).
//
// Fields:
//  ID        – primary key identifier.
//  OrderID   – owning order.
//  OfferID   – offer the ticket was sold under.
//  EventID   – event the ticket admits to.
//  Price     – unit price at the moment of sale.
//  Barcode   – per-event unique scan token.
//  Status    – one of the TicketStatus* constants.
//  ScannedAt – when the ticket was scanned at the door (nullable).
//  CreatedAt – row creation timestamp.
//  UpdatedAt – last modification timestamp.
type Ticket struct {
	ID        uint64          // tickets.id
	OrderID   uint64          // tickets.order_id
	OfferID   uint64          // tickets.offer_id
	EventID   uint64          // tickets.event_id
	Price     decimal.Decimal // tickets.price
	Barcode   string          // tickets.barcode
	Status    string          // tickets.status
	ScannedAt *time.Time      // tickets.scanned_at (nullable)
	CreatedAt time.Time       // tickets.created_at
	UpdatedAt time.Time       // tickets.updated_at
}
