// Package queue defines message payloads exchanged over the message
// broker, plus the consumer that turns them into buyer notifications.
package queue

// OrderConfirmedEvent is published after a checkout transaction has
// committed. It carries enough information for the notification
// consumer to render a confirmation without querying the primary
// database. Dates are pre-formatted in the event's timezone by the
// publisher so consumers stay free of timezone handling.
type OrderConfirmedEvent struct {
	OrderID        uint64   `json:"order_id"`
	UserID         uint64   `json:"user_id"`
	EventID        uint64   `json:"event_id"`
	EventName      string   `json:"event_name"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          string   `json:"email"`
	Quantity       int      `json:"quantity"`
	UnitPrice      string   `json:"unit_price"`
	Total          string   `json:"total"`
	Currency       string   `json:"currency"`
	Barcodes       []string `json:"barcodes"`
	OrderDate      string   `json:"order_date"`
	EventStartDate string   `json:"event_start_date"`
}
