package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-pagamentocerto/internal/aws"
	"github.com/imrishuroy/go-pagamentocerto/internal/gateway"
	"github.com/imrishuroy/go-pagamentocerto/internal/transactions"
)

// Processor handles status refresh messages: it reads the transaction from
// the gateway and stores the decoded snapshot.
type Processor struct {
	transport  gateway.Transport
	gatewayCfg gateway.Config
	store      *transactions.Store
	metrics    *aws.Metrics
}

// NewProcessor creates a new worker processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, transport gateway.Transport, cfg Config) *Processor {
	return &Processor{
		transport:  transport,
		gatewayCfg: cfg.Gateway,
		store:      transactions.NewStore(clients.DynamoDB, cfg.TransactionsTable),
		metrics:    clients.Metrics(cfg.MetricsNamespace),
	}
}

// Handle processes an SQS batch. Failed messages are reported individually
// so only they are redelivered (and eventually moved to the DLQ).
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.Printf("[worker] message=%s: %v", rec.MessageId, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg transactions.RefreshMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		// redelivery cannot fix a malformed body
		log.Printf("[worker] dropping malformed message=%s: %v", rec.MessageId, err)
		return nil
	}
	if msg.TransactionID == "" {
		log.Printf("[worker] dropping message=%s without transaction id", rec.MessageId)
		return nil
	}

	log.Printf("[worker] received tid=%s corr=%s", msg.TransactionID, msg.CorrelationID)

	existing, err := p.store.Get(ctx, msg.TransactionID)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if existing != nil && !msg.RequestedAt.IsZero() && existing.UpdatedAt.After(msg.RequestedAt) {
		// duplicate delivery, or another refresh already ran after this request
		log.Printf("[worker] snapshot for tid=%s is newer than request, skipping", msg.TransactionID)
		return nil
	}

	client := gateway.NewClient(p.transport, p.gatewayCfg)
	tx, err := client.TransactionInfo(ctx, msg.TransactionID)
	if err != nil {
		return fmt.Errorf("query gateway: %w", err)
	}
	if tx.ID == "" {
		tx.ID = msg.TransactionID
	}

	if err := p.store.Save(ctx, tx); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := p.metrics.Count(ctx, aws.MetricStatusRefreshed, map[string]string{"Status": tx.StatusCode.String()}); err != nil {
		log.Printf("[worker] metric: %v", err)
	}

	log.Printf("[worker] refreshed tid=%s status=%d (%s)", tx.ID, tx.StatusCode, tx.StatusCode)
	return nil
}
