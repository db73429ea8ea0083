package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the API and the worker.
const (
	MetricTransactionStarted  = "TransactionStarted"
	MetricTransactionRejected = "TransactionRejected"
	MetricStatusRefreshed     = "TransactionStatusRefreshed"
)

// Metrics publishes counters to CloudWatch. A nil *Metrics or one without a
// client is a no-op, so local runs need no AWS credentials.
type Metrics struct {
	CW        CloudWatchAPI
	Namespace string
	nowFunc   func() time.Time
}

func NewMetrics(cw CloudWatchAPI, namespace string) *Metrics {
	if namespace == "" {
		namespace = "PagamentoCerto"
	}
	return &Metrics{CW: cw, Namespace: namespace, nowFunc: time.Now}
}

// Count publishes a single count of 1 for name with the given dimensions.
func (m *Metrics) Count(ctx context.Context, name string, dims map[string]string) error {
	if m == nil || m.CW == nil {
		return nil
	}
	datum := cwtypes.MetricDatum{
		MetricName: sdkaws.String(name),
		Unit:       cwtypes.StandardUnitCount,
		Value:      sdkaws.Float64(1),
		Timestamp:  sdkaws.Time(m.nowFunc()),
	}
	for k, v := range dims {
		datum.Dimensions = append(datum.Dimensions, cwtypes.Dimension{
			Name:  sdkaws.String(k),
			Value: sdkaws.String(v),
		})
	}
	_, err := m.CW.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(m.Namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", name, err)
	}
	return nil
}
