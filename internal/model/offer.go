package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offer is a purchasable ticket tier for an event with a finite quantity
// and a unit price.  Quantity is the remaining inventory; it is mutated
// exclusively through the conditional decrement in the offer repository
// so it can never go below zero, even under concurrent checkouts.
//
// Fields:
//  ID               – primary key identifier.
//  EventID          – owning event.
//  Name             – tier name (max 100 chars).
//  Description      – free-form description.
//  Price            – unit price, DECIMAL(8,2) in the DB.  Copied onto
//                     each ticket at sale time; later price changes never
//                     alter past orders.
//  Quantity         – remaining inventory (>= 0 invariant).
//  MinOrderQuantity – smallest quantity a single order may purchase.
//  MaxOrderQuantity – largest quantity a single order may purchase.
//  StartSaleDate    – when the offer goes on sale.
//  EndSaleDate      – when the offer leaves sale.
//  CreatedAt        – row creation timestamp.
//  UpdatedAt        – last modification timestamp.
type Offer struct {
	ID               uint64          // offers.id
	EventID          uint64          // offers.event_id
	Name             string          // offers.name
	Description      string          // offers.description
	Price            decimal.Decimal // offers.price
	Quantity         int             // offers.quantity
	MinOrderQuantity int             // offers.min_order_quantity
	MaxOrderQuantity int             // offers.max_order_quantity
	StartSaleDate    *time.Time      // offers.start_sale_date (nullable)
	EndSaleDate      *time.Time      // offers.end_sale_date (nullable)
	CreatedAt        time.Time       // offers.created_at
	UpdatedAt        time.Time       // offers.updated_at
}

// OnSale reports whether the offer's sale window contains now.  A nil
// boundary leaves that side of the window open.
func (o *Offer) OnSale(now time.Time) bool {
	if o.StartSaleDate != nil && now.Before(*o.StartSaleDate) {
		return false
	}
	if o.EndSaleDate != nil && now.After(*o.EndSaleDate) {
		return false
	}
	return true
}
