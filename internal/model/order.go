package model

import "time"

// Order records a completed checkout.  An order row exists if and only
// if the payment charge succeeded; the checkout transaction never
// persists an order for a failed charge.  Orders are immutable after
// creation except for the refund flag.
//
// The contact fields are a snapshot taken at checkout time and are
// intentionally independent of the buyer's live profile.
//
// Fields:
//  ID           – primary key identifier.
//  EventID      – event the tickets belong to.
//  UserID       – buyer account.
//  FirstName    – contact snapshot, max 50 chars.
//  LastName     – contact snapshot, max 50 chars.
//  Email        – contact snapshot, max 50 chars.
//  MobileNumber – contact snapshot, max 15 chars.
//  ChargeID     – payment gateway charge reference.
//  IsRefunded   – refund flag, the only mutable field.
//  CreatedAt    – row creation timestamp.
//  UpdatedAt    – last modification timestamp.
type Order struct {
	ID           uint64    // orders.id
	EventID      uint64    // orders.event_id
	UserID       uint64    // orders.user_id
	FirstName    string    // orders.first_name
	LastName     string    // orders.last_name
	Email        string    // orders.email
	MobileNumber string    // orders.mobile_number
	ChargeID     string    // orders.charge_id
	IsRefunded   bool      // orders.is_refunded
	CreatedAt    time.Time // orders.created_at
	UpdatedAt    time.Time // orders.updated_at

	// Tickets holds the order's tickets when loaded through
	// OrderRepo.GetWithTickets.  Not populated by plain row scans.
	Tickets []Ticket
}
