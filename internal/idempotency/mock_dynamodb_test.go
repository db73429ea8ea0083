package idempotency

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// simpleMock is a small in-memory DynamoDB table keyed by idempotency_key.
// It understands the two condition expressions used by Store.
type simpleMock struct {
	mu          sync.Mutex
	table       map[string]map[string]types.AttributeValue
	putCalls    int
	getCalls    int
	updateCalls int
	failNext    error
}

func newSimpleMock() *simpleMock {
	return &simpleMock{
		table: map[string]map[string]types.AttributeValue{},
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (m *simpleMock) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	k := stringAttr(params.Item, keyAttr)
	if k == "" {
		return nil, errors.New("missing key")
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == claimCondition {
		if existing, ok := m.table[k]; ok {
			rh := stringAttr(params.ExpressionAttributeValues, ":rh")
			if stringAttr(existing, "status") != StatusFailed || stringAttr(existing, "request_hash") != rh {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}
	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	item, ok := m.table[stringAttr(params.Key, keyAttr)]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

// attributes set by Store.MarkDone / Store.MarkFailed, by placeholder
var updatePlaceholders = map[string]string{
	":done":   "status",
	":failed": "status",
	":tid":    "transaction_id",
	":rb":     "response_body",
	":rs":     "response_status",
	":n":      "note",
	":ua":     "updated_at",
}

func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	k := stringAttr(params.Key, keyAttr)
	item, ok := m.table[k]
	if params.ConditionExpression != nil && *params.ConditionExpression == completeCondition {
		if !ok || stringAttr(item, "status") != StatusInProgress {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if !ok {
		item = map[string]types.AttributeValue{keyAttr: params.Key[keyAttr]}
	}
	for placeholder, attr := range updatePlaceholders {
		if v, ok := params.ExpressionAttributeValues[placeholder]; ok {
			item[attr] = v
		}
	}
	m.table[k] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}
