package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-pagamentocerto/internal/aws"
)

const (
	keyAttr = "idempotency_key"

	// A key can be claimed when it is new or when the previous attempt with
	// the same request body failed.
	claimCondition = "attribute_not_exists(idempotency_key) OR (#s = :failed AND #rh = :rh)"
	// Completion only moves a claimed key forward.
	completeCondition = "#s = :in_progress"
)

// ErrNotInProgress is returned when a completion targets a key that is not
// IN_PROGRESS (already completed, or never claimed).
var ErrNotInProgress = errors.New("idempotency record not in progress")

// Store encapsulates idempotency operations against DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewStore returns a configured Store. ttlWindow is how long a key is kept
// before DynamoDB TTL expires it (e.g. 48*time.Hour).
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// CreateIfNotExists claims key with status IN_PROGRESS. It returns
// (true, nil) when the claim succeeded and (false, nil) when another request
// already holds or completed the key; callers should Get to inspect it.
// Keys whose previous attempt FAILED can be claimed again, but only with the
// same request hash.
func (s *Store) CreateIfNotExists(ctx context.Context, key, requestHash string) (bool, error) {
	now := s.nowFunc()
	rec := Record{
		IdempotencyKey: key,
		Status:         StatusInProgress,
		RequestHash:    requestHash,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.ttlWindow).Unix(),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                &s.tableName,
		Item:                     item,
		ConditionExpression:      awsString(claimCondition),
		ExpressionAttributeNames: map[string]string{"#s": "status", "#rh": "request_hash"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
			":rh":     &types.AttributeValueMemberS{Value: requestHash},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}
	return true, nil
}

// Get retrieves a record by key. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            keyOf(key),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

// MarkDone records the started transaction and the response to replay.
func (s *Store) MarkDone(ctx context.Context, key, transactionID, responseBody string, responseStatus int) error {
	err := s.complete(ctx, key,
		"SET #s = :done, transaction_id = :tid, response_body = :rb, response_status = :rs, updated_at = :ua",
		map[string]types.AttributeValue{
			":done": &types.AttributeValueMemberS{Value: StatusDone},
			":tid":  &types.AttributeValueMemberS{Value: transactionID},
			":rb":   &types.AttributeValueMemberS{Value: responseBody},
			":rs":   &types.AttributeValueMemberN{Value: strconv.Itoa(responseStatus)},
		})
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	return nil
}

// MarkFailed marks the record FAILED with a note, freeing the key for a retry.
func (s *Store) MarkFailed(ctx context.Context, key, note string) error {
	err := s.complete(ctx, key,
		"SET #s = :failed, note = :n, updated_at = :ua",
		map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
			":n":      &types.AttributeValueMemberS{Value: note},
		})
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

func (s *Store) complete(ctx context.Context, key, update string, values map[string]types.AttributeValue) error {
	values[":in_progress"] = &types.AttributeValueMemberS{Value: StatusInProgress}
	values[":ua"] = &types.AttributeValueMemberS{Value: s.nowFunc().UTC().Format(time.RFC3339)}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       keyOf(key),
		UpdateExpression:          awsString(update),
		ConditionExpression:       awsString(completeCondition),
		ExpressionAttributeNames:  map[string]string{"#s": "status"},
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrNotInProgress
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func isConditionFailed(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

func keyOf(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		keyAttr: &types.AttributeValueMemberS{Value: key},
	}
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
