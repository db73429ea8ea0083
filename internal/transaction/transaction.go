// Package transaction decodes the transaction status document returned by the
// seller web service.
package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-pagamentocerto/internal/order"
)

// StatusCode is the gateway's CodRetorno. Codes outside the known set are kept as-is.
type StatusCode int

const (
	StatusNotFound           StatusCode = 11
	StatusNotProcessed       StatusCode = 12
	StatusInProcess          StatusCode = 13
	StatusExpired            StatusCode = 14
	StatusProcessed          StatusCode = 15
	StatusError              StatusCode = 16
	StatusPaymentExpired     StatusCode = 17
	StatusUserExit           StatusCode = 18
	StatusUserCancelled      StatusCode = 19
	StatusRetryLimitExceeded StatusCode = 20
)

var statusNames = map[StatusCode]string{
	StatusNotFound:           "not_found",
	StatusNotProcessed:       "not_processed",
	StatusInProcess:          "in_process",
	StatusExpired:            "expired",
	StatusProcessed:          "processed",
	StatusError:              "error",
	StatusPaymentExpired:     "payment_expired",
	StatusUserExit:           "user_exit",
	StatusUserCancelled:      "user_cancelled",
	StatusRetryLimitExceeded: "retry_limit_exceeded",
}

// Known reports whether c is one of the documented status codes.
func (c StatusCode) Known() bool {
	_, ok := statusNames[c]
	return ok
}

func (c StatusCode) String() string {
	if n, ok := statusNames[c]; ok {
		return n
	}
	return "unknown"
}

// BuyerInfo is the subset of buyer data echoed back by the gateway. Only one
// of TaxID (CPF) and CompanyTaxID (CNPJ) is filled, depending on BuyerType.
type BuyerInfo struct {
	Name         string
	Email        string
	TaxID        string
	CompanyTaxID string
}

// Transaction is an immutable snapshot of a gateway transaction.
type Transaction struct {
	ID            string
	Timestamp     time.Time
	StatusCode    StatusCode
	StatusMessage string
	Buyer         BuyerInfo
	BuyerType     order.BuyerType
	PaymentType   order.PaymentMethod
	OrderID       int
	TotalAmount   decimal.Decimal
}
