package transactions

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-pagamentocerto/internal/order"
	"github.com/imrishuroy/go-pagamentocerto/internal/transaction"
)

// Record is the last known gateway status of a transaction, as stored in
// the transactions DynamoDB table.
type Record struct {
	TransactionID    string    `dynamodbav:"transaction_id"` // PK
	OrderID          int       `dynamodbav:"order_id"`
	StatusCode       int       `dynamodbav:"status_code"`
	StatusName       string    `dynamodbav:"status_name"`
	StatusMessage    string    `dynamodbav:"status_message,omitempty"`
	BuyerName        string    `dynamodbav:"buyer_name,omitempty"`
	BuyerEmail       string    `dynamodbav:"buyer_email,omitempty"`
	BuyerTaxID       string    `dynamodbav:"buyer_tax_id,omitempty"`
	CompanyTaxID     string    `dynamodbav:"company_tax_id,omitempty"`
	BuyerType        string    `dynamodbav:"buyer_type"`
	PaymentType      string    `dynamodbav:"payment_type"`
	TotalAmount      string    `dynamodbav:"total_amount"` // decimal string, e.g. "49.5"
	GatewayTimestamp time.Time `dynamodbav:"gateway_timestamp,omitempty"`
	CreatedAt        time.Time `dynamodbav:"created_at,omitempty"`
	UpdatedAt        time.Time `dynamodbav:"updated_at,omitempty"`
	Refreshes        int       `dynamodbav:"refreshes,omitempty"`
}

// RecordFrom flattens a decoded transaction into its stored shape.
func RecordFrom(tx transaction.Transaction) Record {
	return Record{
		TransactionID:    tx.ID,
		OrderID:          tx.OrderID,
		StatusCode:       int(tx.StatusCode),
		StatusName:       tx.StatusCode.String(),
		StatusMessage:    tx.StatusMessage,
		BuyerName:        tx.Buyer.Name,
		BuyerEmail:       tx.Buyer.Email,
		BuyerTaxID:       tx.Buyer.TaxID,
		CompanyTaxID:     tx.Buyer.CompanyTaxID,
		BuyerType:        tx.BuyerType.String(),
		PaymentType:      tx.PaymentType.String(),
		TotalAmount:      tx.TotalAmount.String(),
		GatewayTimestamp: tx.Timestamp,
	}
}

// Transaction rebuilds the snapshot held by r.
func (r Record) Transaction() (transaction.Transaction, error) {
	buyerType, err := order.ParseBuyerType(r.BuyerType)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("record %s: %w", r.TransactionID, err)
	}
	paymentType, err := order.ParsePaymentMethod(r.PaymentType)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("record %s: %w", r.TransactionID, err)
	}
	total := decimal.Zero
	if r.TotalAmount != "" {
		if total, err = decimal.NewFromString(r.TotalAmount); err != nil {
			return transaction.Transaction{}, fmt.Errorf("record %s: total_amount: %w", r.TransactionID, err)
		}
	}
	return transaction.Transaction{
		ID:            r.TransactionID,
		Timestamp:     r.GatewayTimestamp,
		StatusCode:    transaction.StatusCode(r.StatusCode),
		StatusMessage: r.StatusMessage,
		Buyer: transaction.BuyerInfo{
			Name:         r.BuyerName,
			Email:        r.BuyerEmail,
			TaxID:        r.BuyerTaxID,
			CompanyTaxID: r.CompanyTaxID,
		},
		BuyerType:   buyerType,
		PaymentType: paymentType,
		OrderID:     r.OrderID,
		TotalAmount: total,
	}, nil
}
