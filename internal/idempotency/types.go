package idempotency

import "time"

// Status values for idempotency entries
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// Record is the shape persisted in the idempotency table. One record guards
// one checkout submission: the first request with a key starts the gateway
// transaction, replays get the stored response back.
type Record struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status"`
	RequestHash    string    `dynamodbav:"request_hash,omitempty"`
	TransactionID  string    `dynamodbav:"transaction_id,omitempty"`
	ResponseBody   string    `dynamodbav:"response_body,omitempty"`
	ResponseStatus int       `dynamodbav:"response_status,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL epoch seconds
	Note           string    `dynamodbav:"note,omitempty"`
}

// Matches reports whether hash is the request hash the record was created with.
// Records written without a hash match anything.
func (r *Record) Matches(hash string) bool {
	return r.RequestHash == "" || r.RequestHash == hash
}
