package usecases

import (
	"context"

	"cfguard-bot/internal/relay/domain"
)

//go:generate mockgen -source=port.go -destination=../../../test/unit/doubles/relay/usecases/port_mock.go -package=usecases -mock_names=Backend=MockBackend,EventLog=MockEventLog,PendingImportStore=MockPendingImportStore,FileFetcher=MockFileFetcher

// Backend is the task-tracking API. Every method resolves transport failures,
// timeouts and non-2xx answers to ErrBackendUnavailable or *StatusError.
type Backend interface {
	PostEvent(ctx context.Context, event domain.TaskEvent) error
	Elapsed(ctx context.Context) ([]domain.ElapsedRow, error)
	Report(ctx context.Context, request domain.ReportRequest) (domain.ReportPayload, error)
	Diff(ctx context.Context, request domain.DiffRequest) (string, error)
	Projects(ctx context.Context) ([]string, error)
	Snapshots(ctx context.Context, project string) ([]string, error)
	Import(ctx context.Context, request domain.ImportRequest) (domain.ImportResult, error)
	SetSnapshotStatus(ctx context.Context, status domain.SnapshotStatus) error
	Reset(ctx context.Context, force bool) error
}

// EventLog is the local append-only fallback for task events.
type EventLog interface {
	Append(ctx context.Context, event domain.TaskEvent) error
	Tasks(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

// PendingImportStore maps a chat session to the project of an import that
// waits for its file. Take is atomic: a pending entry is handed out once.
type PendingImportStore interface {
	Begin(session, project string)
	Take(session string) (string, bool)
	Cancel(session string) bool
	Len() int
	Sweep() int
}

type FileFetcher interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}
