package gateway

import (
	"context"
	"fmt"
	"net/url"

	"github.com/imrishuroy/go-pagamentocerto/internal/order"
	"github.com/imrishuroy/go-pagamentocerto/internal/payerr"
	"github.com/imrishuroy/go-pagamentocerto/internal/transaction"
	"github.com/imrishuroy/go-pagamentocerto/internal/xmlbuilder"
)

// Transport performs the two remote calls of the seller web service and
// returns the raw result documents.
type Transport interface {
	StartTransaction(ctx context.Context, requestXML, sellerKey, returnURL string) (string, error)
	QueryTransaction(ctx context.Context, sellerKey, transactionID string) (string, error)
}

// Client starts gateway transactions for orders and reads their status.
// It remembers the id of the last transaction it started, so it must not be
// shared between concurrent requests.
type Client struct {
	transport     Transport
	cfg           Config
	transactionID string
}

// NewClient returns a Client bound to a transport and seller configuration.
func NewClient(transport Transport, cfg Config) *Client {
	return &Client{transport: transport, cfg: cfg}
}

// StartTransaction encodes o, submits it and returns the transaction id
// assigned by the gateway. A non-zero CodRetorno is returned as a
// GatewayRejected error carrying the gateway message and code.
func (c *Client) StartTransaction(ctx context.Context, o *order.Order) (string, error) {
	reqXML, err := xmlbuilder.Build(o)
	if err != nil {
		return "", err
	}

	result, err := c.transport.StartTransaction(ctx, reqXML, c.cfg.SellerAPIKey, c.cfg.ReturnURL)
	if err != nil {
		return "", fmt.Errorf("start transaction: %w", err)
	}

	res, err := transaction.Decode([]byte(result))
	if err != nil {
		return "", fmt.Errorf("start transaction: %w", err)
	}
	if res.StatusCode != 0 {
		return "", payerr.Rejected(res.StatusMessage, int(res.StatusCode))
	}

	c.transactionID = res.ID
	return res.ID, nil
}

// TransactionInfo queries the gateway for a transaction. An empty id falls
// back to the last transaction started by this client.
func (c *Client) TransactionInfo(ctx context.Context, transactionID string) (transaction.Transaction, error) {
	tid, err := c.resolve(transactionID)
	if err != nil {
		return transaction.Transaction{}, err
	}

	result, err := c.transport.QueryTransaction(ctx, c.cfg.SellerAPIKey, tid)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("query transaction %s: %w", tid, err)
	}

	tx, err := transaction.Decode([]byte(result))
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("query transaction %s: %w", tid, err)
	}
	return tx, nil
}

// RedirectURL is the payment page the buyer must be sent to, carrying the
// transaction id in the tid query parameter.
func (c *Client) RedirectURL(transactionID string) (string, error) {
	tid, err := c.resolve(transactionID)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(c.cfg.PaymentURL)
	if err != nil {
		return "", fmt.Errorf("parse payment url: %w", err)
	}
	q := u.Query()
	q.Set("tid", tid)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// TransactionID returns the id of the last transaction started, if any.
func (c *Client) TransactionID() string { return c.transactionID }

func (c *Client) resolve(transactionID string) (string, error) {
	if transactionID != "" {
		return transactionID, nil
	}
	if c.transactionID == "" {
		return "", payerr.NoTransactionID("transaction id not specified")
	}
	return c.transactionID, nil
}
