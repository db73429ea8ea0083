package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// maxDelay is the SQS limit for per-message delivery delay.
const maxDelay = 15 * time.Minute

// Publisher sends status-refresh requests to the worker queue.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
	// Delay postpones delivery, giving the gateway time to settle a payment
	// the buyer just confirmed. Capped at 15 minutes.
	Delay time.Duration
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// SendStatusRefresh JSON-encodes payload and enqueues it. Non-empty
// attributes are sent as String message attributes.
func (p *Publisher) SendStatusRefresh(ctx context.Context, payload any, attributes map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	input := &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(p.QueueURL),
		MessageBody: sdkaws.String(string(body)),
	}
	if p.Delay > 0 {
		d := p.Delay
		if d > maxDelay {
			d = maxDelay
		}
		input.DelaySeconds = int32(d / time.Second)
	}

	msgAttrs := map[string]sqstypes.MessageAttributeValue{}
	for k, v := range attributes {
		if v == "" {
			// SQS rejects empty attribute values
			continue
		}
		msgAttrs[k] = sqstypes.MessageAttributeValue{
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String(v),
		}
	}
	if len(msgAttrs) > 0 {
		input.MessageAttributes = msgAttrs
	}

	if _, err := p.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
