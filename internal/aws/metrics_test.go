package aws

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetrics_Count(t *testing.T) {
	cw := &mockCloudWatch{}
	m := NewMetrics(cw, "")
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m.nowFunc = func() time.Time { return fixed }

	if err := m.Count(context.Background(), MetricTransactionStarted, map[string]string{"PaymentType": "invoice"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cw.inputs) != 1 {
		t.Fatalf("expected 1 put, got %d", len(cw.inputs))
	}
	in := cw.inputs[0]
	if *in.Namespace != "PagamentoCerto" {
		t.Fatalf("namespace mismatch: %s", *in.Namespace)
	}
	d := in.MetricData[0]
	if *d.MetricName != MetricTransactionStarted || *d.Value != 1 || !d.Timestamp.Equal(fixed) {
		t.Fatalf("unexpected datum: %+v", d)
	}
	if len(d.Dimensions) != 1 || *d.Dimensions[0].Value != "invoice" {
		t.Fatalf("unexpected dimensions: %+v", d.Dimensions)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	if err := m.Count(context.Background(), MetricTransactionRejected, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NewMetrics(nil, "x").Count(context.Background(), MetricTransactionRejected, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
