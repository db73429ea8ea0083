package transactions

import "time"

// RefreshMessage is the payload sent from API -> SQS -> worker asking for a
// transaction status to be re-read from the gateway.
type RefreshMessage struct {
	TransactionID string    `json:"transaction_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	RequestedAt   time.Time `json:"requested_at"`
}
