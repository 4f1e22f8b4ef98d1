package persistence

import (
	"context"
	"fmt"
	"time"

	"cfguard-bot/internal/infra/sql"
	"cfguard-bot/internal/infra/utils"
	"cfguard-bot/internal/relay/domain"
	"cfguard-bot/internal/relay/persistence/internal"
	"cfguard-bot/internal/relay/usecases"
)

func NewSQLEventLog(orm sql.ORM) (*SQLEventLog, error) {
	err := orm.AutoMigrate(&internal.LogRecord{})
	if err != nil {
		return nil, fmt.Errorf("auto migrating: %w", err)
	}

	return &SQLEventLog{
		orm: orm,
		now: time.Now,
	}, nil
}

var _ usecases.EventLog = (*SQLEventLog)(nil)

// SQLEventLog is the append-only fallback store for task events.
type SQLEventLog struct {
	orm sql.ORM
	now func() time.Time
}

func (l *SQLEventLog) Append(ctx context.Context, event domain.TaskEvent) error {
	record := internal.FromTaskEvent(event, utils.FormatTimestamp(event.StampedAt(l.now())))

	err := l.orm.
		WithContext(ctx).
		Create(&record).
		Error()
	if err != nil {
		return fmt.Errorf("inserting log record: %w", err)
	}

	return nil
}

// Tasks returns every task present in the log, once, sorted.
func (l *SQLEventLog) Tasks(ctx context.Context) ([]string, error) {
	var tasks []string
	err := l.orm.
		WithContext(ctx).
		Model(&internal.LogRecord{}).
		Group("task").
		Order("task").
		Pluck("task", &tasks).
		Error()
	if err != nil {
		return nil, fmt.Errorf("database query: %w", err)
	}

	return tasks, nil
}

func (l *SQLEventLog) Count(ctx context.Context) (int64, error) {
	var count int64
	err := l.orm.
		WithContext(ctx).
		Model(&internal.LogRecord{}).
		Count(&count).
		Error()
	if err != nil {
		return 0, fmt.Errorf("database query: %w", err)
	}

	return count, nil
}

// Records returns the raw log rows of task in insertion order.
func (l *SQLEventLog) Records(ctx context.Context, task string) ([]domain.LoggedEvent, error) {
	var entities []internal.LogRecord
	err := l.orm.
		WithContext(ctx).
		Where("task = ?", task).
		Order("id").
		Find(&entities).
		Error()
	if err != nil {
		return nil, fmt.Errorf("database query: %w", err)
	}

	result := make([]domain.LoggedEvent, len(entities))
	for i, entity := range entities {
		result[i] = entity.ToDomain()
	}
	return result, nil
}
