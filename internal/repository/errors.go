// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// checkout service and handlers to distinguish between different failure
// scenarios without matching on message strings. For example,
// ErrForbidden indicates that the current user is not a member of the
// promoter that owns a resource, while ErrInsufficientInventory signals
// that a conditional inventory decrement matched zero rows.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they are not a promoter member for. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as scanning a ticket that has already been
// used. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInsufficientInventory is returned by OfferRepo.ReserveTx when the
// offer's remaining quantity is smaller than the requested amount. The
// conditional UPDATE guarantees the quantity column never goes negative,
// so a zero-row update is the authoritative out-of-stock signal.
var ErrInsufficientInventory = errors.New("insufficient inventory")

// ErrDuplicateBarcode is returned when a ticket insert violates the
// (event_id, barcode) unique constraint. Callers should regenerate the
// colliding barcode and retry rather than fail the checkout.
var ErrDuplicateBarcode = errors.New("duplicate barcode")

// Not-found sentinels for the core entities. Handlers map these to 404.
var (
	ErrEventNotFound  = errors.New("event not found")
	ErrOfferNotFound  = errors.New("offer not found")
	ErrOrderNotFound  = errors.New("order not found")
	ErrTicketNotFound = errors.New("ticket not found")
)
