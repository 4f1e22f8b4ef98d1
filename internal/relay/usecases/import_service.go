package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cfguard-bot/internal/relay/domain"
)

// Upload is a document that arrived in a chat session.
type Upload struct {
	FileID   string
	FileName string
	Caption  string
}

type ImportOutcome struct {
	Project string
	Result  domain.ImportResult
	// Status is the caption applied to the new snapshot, empty when none was set.
	Status    string
	StatusErr error
}

func NewImportService(backend Backend, store PendingImportStore, fetcher FileFetcher) *SimpleImportService {
	return &SimpleImportService{
		backend: backend,
		store:   store,
		fetcher: fetcher,
	}
}

var _ ImportService = &SimpleImportService{}

type SimpleImportService struct {
	backend Backend
	store   PendingImportStore
	fetcher FileFetcher
}

// Begin marks session as waiting for a file for project. A previous pending
// import of the same session is replaced.
func (s *SimpleImportService) Begin(session, project string) {
	s.store.Begin(session, project)
	slog.Info("import pending", slog.String("session", session), slog.String("project", project))
}

func (s *SimpleImportService) Cancel(session string) bool {
	return s.store.Cancel(session)
}

// Ingest consumes the pending import of session with upload. Without a
// pending import it returns ErrNoPendingImport and touches nothing. The
// pending entry is consumed even when the download or the import fails.
func (s *SimpleImportService) Ingest(ctx context.Context, session string, upload Upload) (ImportOutcome, error) {
	project, ok := s.store.Take(session)
	if !ok {
		return ImportOutcome{}, ErrNoPendingImport
	}

	outcome := ImportOutcome{Project: project}

	content, err := s.fetcher.Download(ctx, upload.FileID)
	if err != nil {
		return outcome, fmt.Errorf("downloading %s: %w", upload.FileName, err)
	}
	if len(content) == 0 {
		return outcome, ErrEmptyUpload
	}

	result, err := s.backend.Import(ctx, domain.ImportRequest{
		Project:  project,
		FileName: upload.FileName,
		Content:  content,
	})
	if err != nil {
		return outcome, fmt.Errorf("importing %s into %s: %w", upload.FileName, project, err)
	}
	outcome.Result = result

	slog.Info("import completed",
		slog.String("project", project),
		slog.String("file", upload.FileName),
		slog.Int("imported", result.Imported),
		slog.String("snapshot_id", result.SnapshotID))

	caption := strings.TrimSpace(upload.Caption)
	if result.SnapshotID == "" || caption == "" {
		return outcome, nil
	}

	err = s.backend.SetSnapshotStatus(ctx, domain.SnapshotStatus{
		Project:    project,
		SnapshotID: result.SnapshotID,
		Status:     caption,
	})
	if err != nil {
		slog.Warn("setting snapshot status from caption", slog.Any("error", err))
		outcome.StatusErr = err
		return outcome, nil
	}
	outcome.Status = caption

	return outcome, nil
}
