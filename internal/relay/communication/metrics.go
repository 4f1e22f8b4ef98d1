package communication

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	relayRequestTotal    metric.Int64Counter
	relayRequestDuration metric.Float64Histogram
	metricsInitialized   bool
	metricsMutex         sync.Mutex
)

func initMetrics() {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	if metricsInitialized {
		return
	}

	meter := otel.GetMeterProvider().Meter("cfguard-bot")

	var err error
	relayRequestTotal, err = meter.Int64Counter(
		fmt.Sprintf("%s.%s", "cfguard_bot", "relay.requests"),
		metric.WithDescription("Total number of backend relay requests"),
	)
	if err != nil {
		panic(err)
	}

	relayRequestDuration, err = meter.Float64Histogram(
		fmt.Sprintf("%s.%s", "cfguard_bot", "relay.request.duration.seconds"),
		metric.WithDescription("Duration of backend relay requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		panic(err)
	}

	metricsInitialized = true
}
