package dispatch

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"matchday/internal/types"
)

// CloudWatchClient is the narrow slice of the CloudWatch API the worker uses.
type CloudWatchClient interface {
	PutMetricData(
		ctx context.Context,
		params *cloudwatch.PutMetricDataInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsPublisher records per-run counters. Publishing is best-effort;
// implementations never fail the run.
type MetricsPublisher interface {
	PublishRunMetrics(ctx context.Context, matchedUsers int, report Report)
}

// CloudWatchMetrics publishes run counters to CloudWatch.
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

// NewCloudWatchMetrics creates a publisher writing into the given namespace.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger types.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// PublishRunMetrics emits the matched-user count and send outcome counters.
// A publish failure is logged and swallowed.
func (m *CloudWatchMetrics) PublishRunMetrics(ctx context.Context, matchedUsers int, report Report) {
	data := []cwtypes.MetricDatum{
		datum("MatchedUsers", matchedUsers),
		datum("DigestsSent", report.Sent),
		datum("DigestsFailed", report.Failed),
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Warn("failed to publish run metrics", "error", err)
	}
}

func datum(name string, value int) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(float64(value)),
		Unit:       cwtypes.StandardUnitCount,
	}
}

// NoopMetrics discards all metrics. Used in local mode and when metrics are
// disabled.
type NoopMetrics struct{}

// PublishRunMetrics does nothing.
func (NoopMetrics) PublishRunMetrics(context.Context, int, Report) {}

var (
	_ MetricsPublisher = (*CloudWatchMetrics)(nil)
	_ MetricsPublisher = NoopMetrics{}
)
