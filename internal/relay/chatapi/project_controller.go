package chatapi

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cfguard-bot/internal/infra/chat"
	"cfguard-bot/internal/relay/domain"
	"cfguard-bot/internal/relay/usecases"

	"github.com/spf13/pflag"
)

func NewProjectController(service usecases.ProjectService) *ProjectController {
	return &ProjectController{
		service: service,
	}
}

var _ chat.Controller = &ProjectController{}

type ProjectController struct {
	service usecases.ProjectService
}

func (c *ProjectController) AddCommands(mux *chat.CommandMux) {
	mux.Handle(c.projects(), "projects", "list")
	mux.Handle(c.snapshots(), "snapshots")
	mux.Handle(c.setStatus(), "setstatus")
	mux.Handle(c.reset(), "reset")
}

func newFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	return flags
}

func (c *ProjectController) projects() chat.HandlerFunc {
	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		projects, err := c.service.Projects(ctx)
		if err != nil {
			return failureReply(err)
		}

		if len(projects) == 0 {
			return []chat.Reply{chat.Text(noProjectsMessage)}, nil
		}

		lines := make([]string, 0, len(projects)+1)
		lines = append(lines, "Projects:")
		for _, project := range projects {
			lines = append(lines, "• "+project)
		}
		return []chat.Reply{chat.Text(strings.Join(lines, "\n"))}, nil
	}
}

func (c *ProjectController) snapshots() chat.HandlerFunc {
	const syntax = "/snapshots [--project <name>]"

	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		flags := newFlagSet("snapshots")
		project := flags.StringP("project", "p", "", "project to list")
		if err := flags.Parse(req.Args); err != nil || flags.NArg() > 0 {
			return usage(syntax), nil
		}

		result, err := c.service.Snapshots(ctx, strings.TrimSpace(*project))
		if err != nil {
			return failureReply(err)
		}

		if len(result) == 0 {
			return []chat.Reply{chat.Text(noProjectsMessage)}, nil
		}

		return []chat.Reply{chat.Text(formatSnapshots(result))}, nil
	}
}

func formatSnapshots(result []domain.ProjectSnapshots) string {
	lines := make([]string, 0, len(result))
	for _, entry := range result {
		if len(entry.Snapshots) == 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", entry.Project, noSnapshotsMessage))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", entry.Project, strings.Join(entry.Snapshots, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (c *ProjectController) setStatus() chat.HandlerFunc {
	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		if len(req.Args) < 3 {
			return usage("/setstatus <project> <snapshot_id> <status text...>"), nil
		}

		status := domain.SnapshotStatus{
			Project:    req.Args[0],
			SnapshotID: req.Args[1],
			Status:     strings.Join(req.Args[2:], " "),
		}

		if err := c.service.SetStatus(ctx, status); err != nil {
			return failureReply(err)
		}

		return []chat.Reply{chat.Text(fmt.Sprintf("Status of %s/%s set to %q", status.Project, status.SnapshotID, status.Status))}, nil
	}
}

func (c *ProjectController) reset() chat.HandlerFunc {
	const syntax = "/reset [--force]"

	return func(ctx context.Context, req chat.Request) ([]chat.Reply, error) {
		flags := newFlagSet("reset")
		force := flags.BoolP("force", "f", false, "reset even when the backend refuses")
		if err := flags.Parse(req.Args); err != nil || flags.NArg() > 0 {
			return usage(syntax), nil
		}

		if err := c.service.Reset(ctx, *force); err != nil {
			return failureReply(err)
		}

		if *force {
			return []chat.Reply{chat.Text(backendForcedResetMessage)}, nil
		}
		return []chat.Reply{chat.Text(backendResetMessage)}, nil
	}
}
