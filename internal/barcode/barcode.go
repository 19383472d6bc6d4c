// Package barcode generates the short random tokens printed on tickets.
// A barcode only has to be unique within its event; the tickets table
// carries a unique constraint on (event_id, barcode) as the final
// authority, and the generator merely makes collisions at insert time
// astronomically unlikely.
package barcode

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
)

// Length is the fixed barcode length in characters.
const Length = 12

// maxAttempts bounds the regenerate-and-recheck loop.  With 9 random
// bytes behind every token a single collision is already a freak
// occurrence, so hitting this bound means the exists probe is broken.
const maxAttempts = 10

// ErrExhausted is returned when maxAttempts tokens in a row collided.
var ErrExhausted = errors.New("barcode: generation attempts exhausted")

// ExistsFunc probes whether a barcode is already taken within an event.
// The checkout flow wires this to the ticket repository so the probe
// runs inside the checkout transaction.
type ExistsFunc func(ctx context.Context, eventID uint64, barcode string) (bool, error)

// Generator produces event-scoped unique barcodes.
type Generator struct {
	exists ExistsFunc
}

// NewGenerator returns a Generator using the given uniqueness probe.
func NewGenerator(exists ExistsFunc) *Generator {
	return &Generator{exists: exists}
}

// Token returns a single random candidate barcode without checking
// uniqueness: Length characters of base64 from crypto/rand, with the
// two non-alphanumeric base64 characters mapped to '0'.
func Token() (string, error) {
	buf := make([]byte, (Length*3+3)/4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	s := base64.StdEncoding.EncodeToString(buf)[:Length]
	s = strings.ReplaceAll(s, "+", "0")
	s = strings.ReplaceAll(s, "/", "0")
	return s, nil
}

// Generate returns a barcode that is not currently taken within the
// event.  On a collision it regenerates and rechecks, up to
// maxAttempts.  The probe and the eventual ticket insert are not atomic
// with each other; callers must treat a duplicate-key error at insert
// time as retryable and call Generate again.
func (g *Generator) Generate(ctx context.Context, eventID uint64) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		tok, err := Token()
		if err != nil {
			return "", err
		}
		taken, err := g.exists(ctx, eventID, tok)
		if err != nil {
			return "", err
		}
		if !taken {
			return tok, nil
		}
	}
	return "", ErrExhausted
}
