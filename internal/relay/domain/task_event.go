package domain

import (
	"errors"
	"strings"
	"time"

	"cfguard-bot/internal/infra/utils"
)

// TaskEvent is a start or stop mark for a task. A nil At means the event
// happened when it was submitted and the store that persists it stamps the time.
type TaskEvent struct {
	ID     ID
	TaskID string
	Kind   EventKind
	At     *time.Time
}

// Timestamp returns the canonical form of At, or "" when the event is stamped on write.
func (e TaskEvent) Timestamp() string {
	if e.At == nil {
		return ""
	}
	return utils.FormatTimestamp(*e.At)
}

// StampedAt returns At, or now when the event carries no explicit time.
func (e TaskEvent) StampedAt(now time.Time) time.Time {
	if e.At == nil {
		return now.UTC()
	}
	return e.At.UTC()
}

func NewTaskEventBuilder() *taskEventBuilder {
	return &taskEventBuilder{}
}

type taskEventBuilder struct {
	actions []taskEventHandler
}

type taskEventHandler func(v *TaskEvent) error

func (b *taskEventBuilder) WithTask(value string) *taskEventBuilder {
	b.actions = append(b.actions, func(e *TaskEvent) error {
		e.TaskID = strings.TrimSpace(value)
		return nil
	})
	return b
}

func (b *taskEventBuilder) WithKind(value EventKind) *taskEventBuilder {
	b.actions = append(b.actions, func(e *TaskEvent) error {
		if !value.Valid() {
			return errors.New("event kind must be start or stop")
		}
		e.Kind = value
		return nil
	})
	return b
}

func (b *taskEventBuilder) WithTime(value time.Time) *taskEventBuilder {
	b.actions = append(b.actions, func(e *TaskEvent) error {
		e.At = utils.TimePtr(value.UTC())
		return nil
	})
	return b
}

func (b *taskEventBuilder) Build() (TaskEvent, error) {
	result := TaskEvent{
		ID: ID(utils.GenerateUUID()),
	}

	for _, a := range b.actions {
		if err := a(&result); err != nil {
			return TaskEvent{}, err
		}
	}

	if result.TaskID == "" {
		return TaskEvent{}, errors.New("task id is required")
	}

	if result.Kind == "" {
		return TaskEvent{}, errors.New("event kind is required")
	}

	return result, nil
}

// LoggedEvent is a task event as stored in the local log.
type LoggedEvent struct {
	Task      string
	Kind      EventKind
	Timestamp string
}
