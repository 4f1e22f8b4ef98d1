package usecases

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	fallbackTotal      metric.Int64Counter
	metricsInitialized bool
	metricsMutex       sync.Mutex
)

func initMetrics() {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	if metricsInitialized {
		return
	}

	meter := otel.GetMeterProvider().Meter("cfguard-bot")

	var err error
	fallbackTotal, err = meter.Int64Counter(
		fmt.Sprintf("%s.%s", "cfguard_bot", "relay.fallbacks"),
		metric.WithDescription("Task events written to the local log because the backend was unreachable"),
	)
	if err != nil {
		panic(err)
	}

	metricsInitialized = true
}
