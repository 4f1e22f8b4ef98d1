package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cfguard-bot/internal/infra/utils"
	"cfguard-bot/internal/relay/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RecordedEvent tells where an accepted event ended up.
type RecordedEvent struct {
	Event domain.TaskEvent
	Local bool
}

func NewTaskEventService(backend Backend, log EventLog) *SimpleTaskEventService {
	initMetrics()

	return &SimpleTaskEventService{
		backend: backend,
		log:     log,
		now:     time.Now,
	}
}

var _ TaskEventService = &SimpleTaskEventService{}

type SimpleTaskEventService struct {
	backend Backend
	log     EventLog
	now     func() time.Time
}

// WithClock replaces the clock used to resolve relative timestamps.
func (s *SimpleTaskEventService) WithClock(now func() time.Time) *SimpleTaskEventService {
	s.now = now
	return s
}

// Record relays a start/stop event to the backend. When the backend cannot be
// reached the event is appended to the local log exactly once, with the same
// task, kind and timestamp. An unparseable rawTime records nothing.
func (s *SimpleTaskEventService) Record(ctx context.Context, taskID string, kind domain.EventKind, rawTime string) (RecordedEvent, error) {
	builder := domain.NewTaskEventBuilder().WithTask(taskID).WithKind(kind)

	if rawTime != "" {
		at, err := utils.NormalizeTimestamp(rawTime, s.now())
		if err != nil {
			return RecordedEvent{}, fmt.Errorf("%w %q: %v", ErrUnparseableTimestamp, rawTime, err)
		}
		builder = builder.WithTime(at)
	}

	event, err := builder.Build()
	if err != nil {
		return RecordedEvent{}, fmt.Errorf("building task event: %w", err)
	}

	relayErr := s.backend.PostEvent(ctx, event)
	if relayErr == nil {
		slog.Debug("task event relayed",
			slog.String("task", event.TaskID),
			slog.String("event", event.Kind.String()))
		return RecordedEvent{Event: event}, nil
	}

	slog.Warn("relaying task event failed, writing to local log",
		slog.String("task", event.TaskID),
		slog.String("event", event.Kind.String()),
		slog.Any("error", relayErr))

	if err := s.log.Append(ctx, event); err != nil {
		slog.Error("appending task event to local log", slog.Any("error", err))
		return RecordedEvent{}, fmt.Errorf("appending to local log: %w", errors.Join(relayErr, err))
	}

	fallbackTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event.Kind.String())))

	return RecordedEvent{Event: event, Local: true}, nil
}
