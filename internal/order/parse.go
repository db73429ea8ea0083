package order

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-pagamentocerto/internal/payerr"
)

// Parsers for raw inputs arriving from outside the process (JSON bodies,
// query strings). They raise the same error kinds as the aggregate itself.

// ParseQuantity parses a product quantity, which must be a whole number.
func ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, payerr.Missing("product quantity not specified")
	}
	q, err := strconv.Atoi(raw)
	if err != nil {
		return 0, payerr.Invalid("product quantity must be an integer number")
	}
	return q, nil
}

// ParseAmount parses a monetary value. field names the value in error messages.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, payerr.Missing("%s not specified", field)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, payerr.Invalid("%s %q is not valid", field, raw)
	}
	return d, nil
}

// ParseOrderID parses the store's order number.
func ParseOrderID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, payerr.Invalid("order id must be an integer")
	}
	return id, nil
}

// ParseDiscountType maps the textual discount type used by API clients.
// An empty value means a flat discount.
func ParseDiscountType(raw string) (DiscountType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "flat":
		return DiscountFlat, nil
	case "percentage":
		return DiscountPercentage, nil
	default:
		return 0, payerr.Invalid("discount type %q is not valid", raw)
	}
}

// ParseBuyerType maps "person" / "company"; empty means person.
func ParseBuyerType(raw string) (BuyerType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "person":
		return BuyerPerson, nil
	case "company":
		return BuyerCompany, nil
	default:
		return 0, payerr.Invalid("buyer type %q is not valid", raw)
	}
}

// ParsePaymentMethod maps "invoice" / "credit_card_visa"; empty means invoice.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "invoice":
		return PaymentInvoice, nil
	case "credit_card_visa":
		return PaymentCreditCardVisa, nil
	default:
		return 0, payerr.Invalid("payment method %q is not valid", raw)
	}
}
