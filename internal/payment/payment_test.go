package payment_test

import (
	"testing"

	"github.com/ramyakv/ecom-store/internal/payment"
	"github.com/stretchr/testify/assert"
)

func validDetails() payment.Details {
	return payment.Details{
		DeliveryAddress: "221B Baker Street, London",
		CardNumber:      "4111111111111111",
		CardHolderName:  "John Watson",
		ExpiryDate:      "12/27",
		CVV:             "123",
	}
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, payment.Validate(validDetails()), "Valid details should pass")
}

func TestValidate_CardNumberWithSpaces(t *testing.T) {
	d := validDetails()
	d.CardNumber = "4111 1111 1111 1111"
	assert.NoError(t, payment.Validate(d), "Spaces inside the card number should be stripped")
}

func TestValidate_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*payment.Details)
	}{
		{"empty address", func(d *payment.Details) { d.DeliveryAddress = "" }},
		{"empty card number", func(d *payment.Details) { d.CardNumber = "" }},
		{"empty holder name", func(d *payment.Details) { d.CardHolderName = "  " }},
		{"empty expiry", func(d *payment.Details) { d.ExpiryDate = "" }},
		{"empty cvv", func(d *payment.Details) { d.CVV = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDetails()
			tc.mutate(&d)
			assert.ErrorIs(t, payment.Validate(d), payment.ErrMissingField)
		})
	}
}

// 15 цифр — недостаточно, ровно 16 обязательны
func TestValidate_FifteenDigitCard(t *testing.T) {
	d := validDetails()
	d.CardNumber = "411111111111111"
	assert.ErrorIs(t, payment.Validate(d), payment.ErrInvalidCardNumber)
}

func TestValidate_CardWithLetters(t *testing.T) {
	d := validDetails()
	d.CardNumber = "4111abcd11111111"
	assert.ErrorIs(t, payment.Validate(d), payment.ErrInvalidCardNumber)
}

func TestValidate_CVV(t *testing.T) {
	d := validDetails()

	d.CVV = "12"
	assert.ErrorIs(t, payment.Validate(d), payment.ErrInvalidCVV, "2 digits are too short")

	d.CVV = "12345"
	assert.ErrorIs(t, payment.Validate(d), payment.ErrInvalidCVV, "5 digits are too long")

	d.CVV = "1234"
	assert.NoError(t, payment.Validate(d), "4-digit cvv is allowed")
}

func TestLastFour(t *testing.T) {
	assert.Equal(t, "1111", payment.LastFour("4111111111111111"))
	assert.Equal(t, "4242", payment.LastFour("4242 4242 4242 4242"))
}
