package payerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure raised by the order aggregate or the gateway client.
type Kind int

const (
	KindMissingParameter Kind = iota + 1
	KindInvalidParameter
	KindProductValueMismatch
	KindNoProducts
	KindGatewayRejected
	KindNoTransactionID
)

func (k Kind) String() string {
	switch k {
	case KindMissingParameter:
		return "missing_parameter"
	case KindInvalidParameter:
		return "invalid_parameter"
	case KindProductValueMismatch:
		return "product_value_mismatch"
	case KindNoProducts:
		return "no_products"
	case KindGatewayRejected:
		return "gateway_rejected"
	case KindNoTransactionID:
		return "no_transaction_id"
	default:
		return "unknown"
	}
}

// Error is the single error type of the payment core. Code is only
// meaningful for KindGatewayRejected, where it carries the gateway's CodRetorno.
type Error struct {
	Kind    Kind
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Kind == KindGatewayRejected {
		return fmt.Sprintf("%s (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrMissingParameter     = &Error{Kind: KindMissingParameter}
	ErrInvalidParameter     = &Error{Kind: KindInvalidParameter}
	ErrProductValueMismatch = &Error{Kind: KindProductValueMismatch}
	ErrNoProducts           = &Error{Kind: KindNoProducts}
	ErrGatewayRejected      = &Error{Kind: KindGatewayRejected}
	ErrNoTransactionID      = &Error{Kind: KindNoTransactionID}
)

func Missing(format string, args ...any) error {
	return &Error{Kind: KindMissingParameter, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) error {
	return &Error{Kind: KindInvalidParameter, Message: fmt.Sprintf(format, args...)}
}

func Mismatch(format string, args ...any) error {
	return &Error{Kind: KindProductValueMismatch, Message: fmt.Sprintf(format, args...)}
}

func NoProducts(msg string) error {
	return &Error{Kind: KindNoProducts, Message: msg}
}

func NoTransactionID(msg string) error {
	return &Error{Kind: KindNoTransactionID, Message: msg}
}

// Rejected builds a GatewayRejected error with the gateway's message and return code.
func Rejected(msg string, code int) error {
	return &Error{Kind: KindGatewayRejected, Message: msg, Code: code}
}

// KindOf returns the Kind of err, or 0 when err is not (and does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
