package handlers

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// mockDynamo is an in-memory, multi-table stand-in for DynamoDB that
// understands the expressions issued by the idempotency and transactions
// stores.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) table(name string) map[string]map[string]types.AttributeValue {
	if _, ok := m.tables[name]; !ok {
		m.tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return m.tables[name]
}

func pkOf(item map[string]types.AttributeValue) string {
	for _, attr := range []string{"idempotency_key", "transaction_id"} {
		if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

func statusOf(item map[string]types.AttributeValue) string {
	if v, ok := item["status"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// hashOf reads the request hash attribute, or the named placeholder.
func hashOf(item map[string]types.AttributeValue, attr ...string) string {
	name := "request_hash"
	if len(attr) > 0 {
		name = attr[0]
	}
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(*in.TableName)
	k := pkOf(in.Item)
	if k == "" {
		return nil, errors.New("no primary key in put item")
	}
	if in.ConditionExpression != nil && strings.Contains(*in.ConditionExpression, "attribute_not_exists") {
		if existing, ok := t[k]; ok {
			retryable := strings.Contains(*in.ConditionExpression, ":failed") && statusOf(existing) == "FAILED" &&
				hashOf(existing) == hashOf(in.ExpressionAttributeValues, ":rh")
			if !retryable {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}
	t[k] = in.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, in *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.table(*in.TableName)[pkOf(in.Key)]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

var (
	ifNotExistsRe = regexp.MustCompile(`^if_not_exists\((\w+), (:\w+)\)$`)
	counterRe     = regexp.MustCompile(`^if_not_exists\((\w+), (:\w+)\) \+ (:\w+)$`)
)

func (m *mockDynamo) UpdateItem(ctx context.Context, in *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(*in.TableName)
	k := pkOf(in.Key)
	item, exists := t[k]
	if in.ConditionExpression != nil && *in.ConditionExpression == "#s = :in_progress" {
		if !exists || statusOf(item) != "IN_PROGRESS" {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if !exists {
		item = map[string]types.AttributeValue{}
		for attr, v := range in.Key {
			item[attr] = v
		}
	}

	for _, assignment := range splitTopLevel(strings.TrimPrefix(*in.UpdateExpression, "SET ")) {
		lhs, rhs, _ := strings.Cut(assignment, " = ")
		if name, ok := in.ExpressionAttributeNames[lhs]; ok {
			lhs = name
		}
		switch {
		case strings.HasPrefix(rhs, ":"):
			item[lhs] = in.ExpressionAttributeValues[rhs]
		case counterRe.MatchString(rhs):
			g := counterRe.FindStringSubmatch(rhs)
			base := numberOf(in.ExpressionAttributeValues[g[2]])
			if cur, ok := item[g[1]]; ok {
				base = numberOf(cur)
			}
			inc := numberOf(in.ExpressionAttributeValues[g[3]])
			item[lhs] = &types.AttributeValueMemberN{Value: strconv.Itoa(base + inc)}
		case ifNotExistsRe.MatchString(rhs):
			g := ifNotExistsRe.FindStringSubmatch(rhs)
			if _, ok := item[g[1]]; !ok {
				item[lhs] = in.ExpressionAttributeValues[g[2]]
			}
		default:
			return nil, errors.New("mock: unsupported update " + assignment)
		}
	}
	t[k] = item
	return &dyn.UpdateItemOutput{}, nil
}

func numberOf(v types.AttributeValue) int {
	if n, ok := v.(*types.AttributeValueMemberN); ok {
		i, _ := strconv.Atoi(n.Value)
		return i
	}
	return 0
}

// splitTopLevel splits on commas outside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

type mockSQS struct {
	mu       sync.Mutex
	messages []*sqs.SendMessageInput
	err      error
}

func (m *mockSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.messages = append(m.messages, in)
	return &sqs.SendMessageOutput{}, nil
}

type mockCloudWatch struct {
	mu      sync.Mutex
	metrics []string
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range in.MetricData {
		m.metrics = append(m.metrics, *d.MetricName)
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// fakeTransport replays canned gateway documents.
type fakeTransport struct {
	mu          sync.Mutex
	startResult string
	queryResult string
	err         error
	startCalls  int
	queryCalls  []string
}

func (f *fakeTransport) StartTransaction(ctx context.Context, requestXML, sellerKey, returnURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	return f.startResult, f.err
}

func (f *fakeTransport) QueryTransaction(ctx context.Context, sellerKey, transactionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls = append(f.queryCalls, transactionID)
	return f.queryResult, f.err
}
