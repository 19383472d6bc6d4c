package checkout

import (
	"regexp"

	"github.com/seatsupply/ticketing-backend/internal/model"
)

var (
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	mobileRe = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,17}$`)
)

// validateInput performs the format checks that need no database state.
// All violations are collected into one ValidationError rather than
// failing on the first.
func validateInput(in Input) error {
	var v ValidationError

	if in.Token == "" {
		v.add("token", "The token field cannot be empty.")
	}
	if in.Quantity <= 0 {
		v.add("quantity", "The quantity field must be greater than 0.")
	}
	if len(in.FirstName) > 50 {
		v.add("firstName", "The firstName field cannot be longer than 50 characters long.")
	}
	if len(in.LastName) > 50 {
		v.add("lastName", "The lastName field cannot be longer than 50 characters long.")
	}
	if in.Email != "" {
		if len(in.Email) > 50 || !emailRe.MatchString(in.Email) {
			v.add("email", "The email field must be a valid email.")
		}
	}
	if in.MobileNumber != "" {
		if len(in.MobileNumber) > 15 || !mobileRe.MatchString(in.MobileNumber) {
			v.add("mobileNumber", "The mobileNumber field must be a valid phone number.")
		}
	}

	return v.orNil()
}

// validateAgainstOffer checks the quantity against the offer's
// per-order bounds. It runs after the offer has been resolved but
// before any mutation.
func validateAgainstOffer(offer *model.Offer, quantity int) error {
	var v ValidationError

	if offer.MinOrderQuantity > 0 && quantity < offer.MinOrderQuantity {
		v.add("quantity", "The quantity field is below this offer's minimum per order.")
	}
	if offer.MaxOrderQuantity > 0 && quantity > offer.MaxOrderQuantity {
		v.add("quantity", "The quantity field exceeds this offer's maximum per order.")
	}

	return v.orNil()
}
