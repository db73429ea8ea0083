package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-pagamentocerto/internal/aws"
	"github.com/imrishuroy/go-pagamentocerto/internal/gateway"
)

func main() {
	cfg := loadConfig()

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}
	p := NewProcessor(clients, gateway.NewSOAPTransport(cfg.Gateway), cfg)

	// If RUN_LOCAL=true, process a single simulated SQS event and exit.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"transaction_id":"local-tid-1"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{MessageId: "local-1", Body: testBody},
			},
		}
		resp, err := p.Handle(context.Background(), event)
		if err != nil || len(resp.BatchItemFailures) > 0 {
			log.Fatalf("local handler failed: err=%v failures=%d", err, len(resp.BatchItemFailures))
		}
		return
	}

	lambda.Start(p.Handle)
}
