package checkout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatsupply/ticketing-backend/internal/model"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	out := make([]string, 0, len(vErr.Fields))
	for _, f := range vErr.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestValidateInputAccepted(t *testing.T) {
	assert.NoError(t, validateInput(validInput()))
}

func TestValidateInputOptionalContactFields(t *testing.T) {
	in := validInput()
	in.FirstName = ""
	in.LastName = ""
	in.Email = ""
	in.MobileNumber = ""
	assert.NoError(t, validateInput(in))
}

func TestValidateInputMissingToken(t *testing.T) {
	in := validInput()
	in.Token = ""
	assert.Equal(t, []string{"token"}, fieldsOf(t, validateInput(in)))
}

func TestValidateInputQuantity(t *testing.T) {
	in := validInput()
	in.Quantity = 0
	assert.Equal(t, []string{"quantity"}, fieldsOf(t, validateInput(in)))

	in.Quantity = -3
	assert.Equal(t, []string{"quantity"}, fieldsOf(t, validateInput(in)))
}

func TestValidateInputNameLength(t *testing.T) {
	in := validInput()
	in.FirstName = strings.Repeat("a", 51)
	in.LastName = strings.Repeat("b", 51)
	assert.ElementsMatch(t, []string{"firstName", "lastName"}, fieldsOf(t, validateInput(in)))

	in.FirstName = strings.Repeat("a", 50)
	in.LastName = strings.Repeat("b", 50)
	assert.NoError(t, validateInput(in))
}

func TestValidateInputEmail(t *testing.T) {
	bad := []string{"plain", "missing@tld", "@no-local.com", "two@@at.com", strings.Repeat("a", 45) + "@long.com"}
	for _, email := range bad {
		in := validInput()
		in.Email = email
		assert.Equal(t, []string{"email"}, fieldsOf(t, validateInput(in)), "email %q", email)
	}
}

func TestValidateInputMobileNumber(t *testing.T) {
	good := []string{"+12125550100", "212 555 0100", "212-555-0100"}
	for _, m := range good {
		in := validInput()
		in.MobileNumber = m
		assert.NoError(t, validateInput(in), "mobile %q", m)
	}

	bad := []string{"letters", "12345", "+1 212 555 0100 ext 12345"}
	for _, m := range bad {
		in := validInput()
		in.MobileNumber = m
		assert.Equal(t, []string{"mobileNumber"}, fieldsOf(t, validateInput(in)), "mobile %q", m)
	}
}

func TestValidateAgainstOfferBounds(t *testing.T) {
	offer := &model.Offer{MinOrderQuantity: 2, MaxOrderQuantity: 4}

	assert.NoError(t, validateAgainstOffer(offer, 2))
	assert.NoError(t, validateAgainstOffer(offer, 4))
	assert.Equal(t, []string{"quantity"}, fieldsOf(t, validateAgainstOffer(offer, 1)))
	assert.Equal(t, []string{"quantity"}, fieldsOf(t, validateAgainstOffer(offer, 5)))
}

func TestValidateAgainstOfferZeroBoundsOpen(t *testing.T) {
	offer := &model.Offer{}
	assert.NoError(t, validateAgainstOffer(offer, 100))
}

func TestValidationErrorMessage(t *testing.T) {
	var v ValidationError
	v.add("token", "The token field cannot be empty.")
	v.add("quantity", "The quantity field must be greater than 0.")

	msg := v.Error()
	assert.Contains(t, msg, "token")
	assert.Contains(t, msg, "quantity")
}
