package usecases

import (
	"context"

	"cfguard-bot/internal/relay/domain"
)

type TaskEventService interface {
	Record(ctx context.Context, taskID string, kind domain.EventKind, rawTime string) (RecordedEvent, error)
}

type ReportService interface {
	Elapsed(ctx context.Context) (ElapsedReport, error)
	Render(ctx context.Context, request domain.ReportRequest) (Delivery, error)
	Diff(ctx context.Context, request domain.DiffRequest) (Delivery, error)
}

type ImportService interface {
	Begin(session, project string)
	Cancel(session string) bool
	Ingest(ctx context.Context, session string, upload Upload) (ImportOutcome, error)
}

type ProjectService interface {
	Projects(ctx context.Context) ([]string, error)
	Snapshots(ctx context.Context, project string) ([]domain.ProjectSnapshots, error)
	SetStatus(ctx context.Context, status domain.SnapshotStatus) error
	Reset(ctx context.Context, force bool) error
}
