package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const documentRoute = "document"

var (
	commandTotal       metric.Int64Counter
	commandDuration    metric.Float64Histogram
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
	commandTotal, err = meter.Int64Counter(
		fmt.Sprintf("%s.%s", "cfguard_bot", "commands"),
		metric.WithDescription("Total number of dispatched chat commands"),
	)
	if err != nil {
		panic(err)
	}

	commandDuration, err = meter.Float64Histogram(
		fmt.Sprintf("%s.%s", "cfguard_bot", "command.duration.seconds"),
		metric.WithDescription("Duration of chat command handlers"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(err)
	}

	metricsInitialized = true
}

// CommandMux routes requests to the handler registered for their command name.
// Documents go to the single document handler.
type CommandMux struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	document HandlerFunc
}

func NewCommandMux(controllers ...Controller) *CommandMux {
	initMetrics()

	mux := &CommandMux{
		handlers: make(map[string]HandlerFunc),
	}
	for _, controller := range controllers {
		controller.AddCommands(mux)
	}
	return mux
}

func (m *CommandMux) Handle(handler HandlerFunc, names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range names {
		name = NormalizeName(name)
		if _, exists := m.handlers[name]; exists {
			panic(fmt.Sprintf("chat: multiple registrations for /%s", name))
		}
		m.handlers[name] = handler
	}
}

func (m *CommandMux) HandleDocument(handler HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.document = handler
}

// Commands returns the registered command names, sorted.
func (m *CommandMux) Commands() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.handlers))
	for name := range m.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *CommandMux) lookup(req Request) (string, HandlerFunc) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if req.Document != nil {
		return documentRoute, m.document
	}
	name := NormalizeName(req.Name)
	return name, m.handlers[name]
}

// Dispatch runs the handler for req and returns its replies. Unknown commands
// yield no replies. Handler errors and panics become a single error reply.
func (m *CommandMux) Dispatch(ctx context.Context, req Request) (replies []Reply) {
	route, handler := m.lookup(req)
	if handler == nil {
		slog.Debug("no handler for request", slog.String("command", route), slog.String("session", req.Session))
		return nil
	}

	ctx, span := otel.Tracer("cfguard-bot").Start(ctx, "chat.command",
		trace.WithAttributes(
			attribute.String("chat.command", route),
			attribute.String("chat.session", req.Session),
			attribute.String("chat.request_id", req.ID),
		),
	)
	start := time.Now()
	outcome := "ok"

	defer func() {
		if r := recover(); r != nil {
			outcome = "panic"
			err := fmt.Errorf("panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("command handler panicked",
				slog.String("command", route),
				slog.String("request_id", req.ID),
				slog.Any("panic", r),
			)
			replies = []Reply{errorReply(err)}
		}

		attrs := metric.WithAttributes(
			attribute.String("command", route),
			attribute.String("outcome", outcome),
		)
		commandTotal.Add(ctx, 1, attrs)
		commandDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		span.End()
	}()

	replies, err := handler(ctx, req)
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("command handler failed",
			slog.String("command", route),
			slog.String("request_id", req.ID),
			slog.Any("error", err),
		)
		Release(replies)
		return []Reply{errorReply(err)}
	}

	return replies
}

func errorReply(err error) Reply {
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if len(msg) > 300 {
		msg = msg[:297] + "..."
	}
	return Text("Error: " + msg)
}
