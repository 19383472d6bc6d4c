// Package checkout implements the order-fulfillment transaction: it
// validates input, reserves inventory, captures payment, persists the
// order with its tickets and notifies the buyer, unwinding local state
// on any failure before commit.
package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthenticated is returned when checkout is attempted without an
// authenticated buyer. The JWT middleware normally catches this first;
// the service re-checks so it cannot be bypassed by wiring mistakes.
var ErrUnauthenticated = errors.New("checkout requires an authenticated buyer")

// ErrOfferNotOnSale is returned when the offer exists but its sale
// window does not contain the current time.
var ErrOfferNotOnSale = errors.New("offer is not on sale")

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates all field violations found in one pass so
// the caller can fix everything in a single round trip instead of
// playing whack-a-mole with fail-fast errors.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add appends a violation and returns the receiver for chaining.
func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil returns the error when it holds violations, nil otherwise.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
