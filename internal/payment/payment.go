package payment

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrMissingField      = errors.New("missing required payment field")
	ErrInvalidCardNumber = errors.New("card number must be 16 digits")
	ErrInvalidCVV        = errors.New("cvv must be 3 or 4 digits")
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
)

// Details — платежные реквизиты, переданные на оформление заказа
type Details struct {
	DeliveryAddress string
	CardNumber      string
	CardHolderName  string
	ExpiryDate      string
	CVV             string
}

// Validate выполняет структурную проверку реквизитов без побочных эффектов.
// Срок действия карты принимается как есть и не сверяется с текущей датой,
// реальная авторизация платежа не выполняется — оплата симулируется.
func Validate(d Details) error {
	if strings.TrimSpace(d.DeliveryAddress) == "" ||
		strings.TrimSpace(d.CardNumber) == "" ||
		strings.TrimSpace(d.CardHolderName) == "" ||
		strings.TrimSpace(d.ExpiryDate) == "" ||
		strings.TrimSpace(d.CVV) == "" {
		return ErrMissingField
	}

	if !cardNumberRe.MatchString(stripSpaces(d.CardNumber)) {
		return ErrInvalidCardNumber
	}

	if !cvvRe.MatchString(d.CVV) {
		return ErrInvalidCVV
	}

	return nil
}

// LastFour возвращает последние 4 цифры номера карты — единственное,
// что из карточных данных попадает в запись заказа
func LastFour(cardNumber string) string {
	stripped := stripSpaces(cardNumber)
	if len(stripped) < 4 {
		return stripped
	}
	return stripped[len(stripped)-4:]
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "")
}
