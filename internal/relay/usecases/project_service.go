package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"cfguard-bot/internal/relay/domain"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentSnapshotQueries = 4

func NewProjectService(backend Backend) *SimpleProjectService {
	return &SimpleProjectService{
		backend: backend,
	}
}

var _ ProjectService = &SimpleProjectService{}

type SimpleProjectService struct {
	backend Backend
}

func (s *SimpleProjectService) Projects(ctx context.Context) ([]string, error) {
	projects, err := s.backend.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Snapshots lists the snapshots of project, or of every project when project is empty.
func (s *SimpleProjectService) Snapshots(ctx context.Context, project string) ([]domain.ProjectSnapshots, error) {
	if project != "" {
		snapshots, err := s.backend.Snapshots(ctx, project)
		if err != nil {
			return nil, fmt.Errorf("listing snapshots of %s: %w", project, err)
		}
		return []domain.ProjectSnapshots{{Project: project, Snapshots: snapshots}}, nil
	}

	projects, err := s.Projects(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ProjectSnapshots, len(projects))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentSnapshotQueries)

	for i, name := range projects {
		group.Go(func() error {
			snapshots, err := s.backend.Snapshots(groupCtx, name)
			if err != nil {
				return fmt.Errorf("listing snapshots of %s: %w", name, err)
			}
			result[i] = domain.ProjectSnapshots{Project: name, Snapshots: snapshots}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Project < result[j].Project
	})

	return result, nil
}

func (s *SimpleProjectService) SetStatus(ctx context.Context, status domain.SnapshotStatus) error {
	if err := s.backend.SetSnapshotStatus(ctx, status); err != nil {
		return fmt.Errorf("setting status of %s/%s: %w", status.Project, status.SnapshotID, err)
	}
	slog.Info("snapshot status updated",
		slog.String("project", status.Project),
		slog.String("snapshot_id", status.SnapshotID))
	return nil
}

func (s *SimpleProjectService) Reset(ctx context.Context, force bool) error {
	if err := s.backend.Reset(ctx, force); err != nil {
		return fmt.Errorf("resetting backend: %w", err)
	}
	slog.Warn("backend reset", slog.Bool("force", force))
	return nil
}
