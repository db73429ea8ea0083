package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// AWSClients bundles the service clients used by the API and the worker.
type AWSClients struct {
	DynamoDB   DynamoDBAPI
	SQS        SQSAPI
	CloudWatch CloudWatchAPI
}

// NewAWSClients loads the shared config and builds concrete clients for it.
func NewAWSClients(ctx context.Context) (*AWSClients, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &AWSClients{
		DynamoDB:   dynamodb.NewFromConfig(cfg),
		SQS:        sqs.NewFromConfig(cfg),
		CloudWatch: cloudwatch.NewFromConfig(cfg),
	}, nil
}

// Metrics returns a CloudWatch publisher for namespace. Without a CloudWatch
// client the returned Metrics discards everything.
func (c *AWSClients) Metrics(namespace string) *Metrics {
	return NewMetrics(c.CloudWatch, namespace)
}

// Publisher returns an SQS publisher bound to queueURL.
func (c *AWSClients) Publisher(queueURL string) *Publisher {
	return NewPublisher(c.SQS, queueURL)
}
