package internal

import (
	"cfguard-bot/internal/relay/domain"
)

// LogRecord is a row of the local durable log. TS keeps the canonical
// ISO-8601 text so the table stays readable with any sqlite client.
type LogRecord struct {
	ID    uint   `gorm:"primaryKey;autoIncrement"`
	Task  string `gorm:"index;not null"`
	Event string `gorm:"not null"`
	TS    string `gorm:"column:ts;not null"`
}

func (LogRecord) TableName() string {
	return "log"
}

func FromTaskEvent(event domain.TaskEvent, ts string) LogRecord {
	return LogRecord{
		Task:  event.TaskID,
		Event: event.Kind.String(),
		TS:    ts,
	}
}

func (r LogRecord) ToDomain() domain.LoggedEvent {
	return domain.LoggedEvent{
		Task:      r.Task,
		Kind:      domain.EventKind(r.Event),
		Timestamp: r.TS,
	}
}
