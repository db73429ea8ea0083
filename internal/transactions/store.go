package transactions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-pagamentocerto/internal/aws"
	"github.com/imrishuroy/go-pagamentocerto/internal/transaction"
)

const keyAttr = "transaction_id"

// ErrEmptyTransactionID is returned when saving a snapshot without an id.
var ErrEmptyTransactionID = errors.New("transaction id is empty")

// Store keeps the latest status snapshot of each gateway transaction.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new transactions Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Save upserts the snapshot of tx. created_at is set on first save only and
// refreshes counts how many times the status was written.
func (s *Store) Save(ctx context.Context, tx transaction.Transaction) error {
	if tx.ID == "" {
		return ErrEmptyTransactionID
	}
	rec := RecordFrom(tx)
	rec.UpdatedAt = s.nowFunc().UTC()

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	// key and server-maintained attributes are not part of the SET list
	delete(item, keyAttr)
	delete(item, "created_at")
	delete(item, "refreshes")

	names := make([]string, 0, len(item))
	for name := range item {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+2)
	attrNames := make(map[string]string, len(names))
	values := map[string]types.AttributeValue{
		":zero": &types.AttributeValueMemberN{Value: "0"},
		":inc":  &types.AttributeValueMemberN{Value: "1"},
	}
	for _, name := range names {
		sets = append(sets, fmt.Sprintf("#%s = :%s", name, name))
		attrNames["#"+name] = name
		values[":"+name] = item[name]
	}
	sets = append(sets,
		"created_at = if_not_exists(created_at, :updated_at)",
		"refreshes = if_not_exists(refreshes, :zero) + :inc",
	)

	_, err = s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			keyAttr: &types.AttributeValueMemberS{Value: tx.ID},
		},
		UpdateExpression:          awsString("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  attrNames,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueNone,
	})
	if err != nil {
		return fmt.Errorf("save transaction %s: %w", tx.ID, err)
	}
	return nil
}

// Get fetches a snapshot by transaction id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, transactionID string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			keyAttr: &types.AttributeValueMemberS{Value: transactionID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &rec, nil
}

func awsString(s string) *string { return &s }
